package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"equipment-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// FeedHandler transmite cada movimiento confirmado a los clientes
// websocket conectados (el dashboard de pañol). Implementa
// services.MovementListener.
type FeedHandler struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	clientsMutex sync.Mutex
	clients      map[*websocket.Conn]bool
}

// NewFeedHandler crea una nueva instancia del feed
func NewFeedHandler(logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // el gateway interno ya filtra orígenes
			},
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeWS maneja GET /movements/ws
func (h *FeedHandler) ServeWS(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "movement_feed"))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Error upgrading to WebSocket", zap.Error(err))
		return
	}

	h.clientsMutex.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.clientsMutex.Unlock()

	logger.Info("WebSocket client connected", zap.Int("clients", total))

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Drenar lecturas para detectar el cierre del cliente.
	go func() {
		defer h.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// MovementRecorded difunde el movimiento a todos los clientes conectados
func (h *FeedHandler) MovementRecorded(_ context.Context, record *models.MovementRecord) {
	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(record); err != nil {
			h.logger.Debug("Dropping dead WebSocket client", zap.Error(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Close cierra todas las conexiones del feed
func (h *FeedHandler) Close() {
	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *FeedHandler) dropClient(conn *websocket.Conn) {
	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()

	if h.clients[conn] {
		conn.Close()
		delete(h.clients, conn)
	}
}
