// Package events publica los hechos de movimiento ya confirmados para los
// colaboradores downstream (auditoría, notificaciones). El core solo emite
// el hecho; decidir si se notifica a alguien es problema del consumidor.
package events

import (
	"context"
	"encoding/json"
	"time"

	"equipment-service/internal/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MovementFact es el mensaje publicado por cada movimiento confirmado.
type MovementFact struct {
	AssetCode  string                 `json:"asset_code"`
	Action     models.Action          `json:"action"`
	Record     *models.MovementRecord `json:"record"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Publisher escribe hechos de movimiento a Kafka, keyed por asset code para
// preservar el orden por equipo.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewPublisher crea un publisher sobre el topic dado
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Publisher{writer: writer, logger: logger}
}

// MovementRecorded publica el hecho. El registro ya es durable en el
// ledger, así que un fallo de publicación se loguea y no se propaga: el
// movimiento nunca falla por culpa del broker.
func (p *Publisher) MovementRecorded(ctx context.Context, record *models.MovementRecord) {
	fact := MovementFact{
		AssetCode:  record.AssetCode,
		Action:     record.Action,
		Record:     record,
		OccurredAt: record.CreatedAt,
	}

	data, err := json.Marshal(fact)
	if err != nil {
		p.logger.Error("Failed to marshal movement fact",
			zap.String("asset_code", record.AssetCode),
			zap.Error(err))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(record.AssetCode),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		p.logger.Error("Failed to publish movement fact",
			zap.String("asset_code", record.AssetCode),
			zap.String("action", string(record.Action)),
			zap.Error(err))
		return
	}

	p.logger.Debug("Movement fact published",
		zap.String("asset_code", record.AssetCode),
		zap.String("action", string(record.Action)))
}

// Close cierra el writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
