package movement

import (
	"errors"
	"fmt"
)

// ErrorKind identifica cada rechazo de validación
//
// Validation rejections are always recoverable by the caller choosing a
// different request; they never leave partial state behind. Infrastructure
// failures are a separate taxonomy and are wrapped with %w by the executor.
type ErrorKind string

const (
	KindInvalidAction        ErrorKind = "invalid_action"
	KindNotCheckoutable      ErrorKind = "not_checkoutable"
	KindCheckoutDisallowed   ErrorKind = "checkout_disallowed"
	KindMissingActor         ErrorKind = "missing_actor"
	KindMissingLocation      ErrorKind = "missing_location"
	KindNotAvailable         ErrorKind = "not_available"
	KindInsufficientQuantity ErrorKind = "insufficient_quantity"
	KindNotReturnable        ErrorKind = "not_returnable"
	KindNotCheckedOut        ErrorKind = "not_checked_out"
	KindOverReturn           ErrorKind = "over_return"
	KindNotConsumable        ErrorKind = "not_consumable"
	KindInvalidQuantity      ErrorKind = "invalid_quantity"
	KindNotApplicable        ErrorKind = "not_applicable"
	KindEquipmentNotFound    ErrorKind = "equipment_not_found"
)

// ValidationError es un rechazo del validador con contexto suficiente para
// que el caller arme un mensaje preciso.
type ValidationError struct {
	Kind      ErrorKind
	AssetCode string
	Requested int
	Available int
	Reason    string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("movement rejected (%s): %s", e.Kind, e.Reason)
	if e.AssetCode != "" {
		msg += fmt.Sprintf(" [asset %s]", e.AssetCode)
	}
	return msg
}

// newError crea un ValidationError con la razón formateada.
func newError(kind ErrorKind, assetCode, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Kind:      kind,
		AssetCode: assetCode,
		Reason:    fmt.Sprintf(format, args...),
	}
}

// NewNotFound construye el rechazo para un equipo inexistente.
func NewNotFound(assetCode string) *ValidationError {
	return newError(KindEquipmentNotFound, assetCode, "equipment %s not found", assetCode)
}

// IsValidation reporta si err (o algo en su cadena) es un rechazo de
// validación, en oposición a un fallo de infraestructura.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// KindOf devuelve el ErrorKind de err, o "" si no es un rechazo de
// validación.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
