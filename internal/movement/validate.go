// Package movement contiene la lógica pura de decisión del subsistema de
// movimientos: dada una foto inmutable del equipo y la acción solicitada,
// decide si la transición es legal y qué delta produce sobre el ledger.
//
// No hay I/O aquí. El mismo input produce siempre el mismo output, lo que
// permite probar cada regla de forma aislada y revalidar tras esperar un
// lock de fila.
package movement

import (
	"fmt"

	"equipment-service/internal/models"
)

// Request es la acción solicitada contra un equipo.
type Request struct {
	Action      models.Action
	Quantity    int // 0 means "default": 1 for OUT/IN
	LocationID  *int
	CustomerID  *int
	PersonnelID *int
}

// Delta describe el estado resultante que el executor debe aplicar a la
// fila del ledger dentro de la misma transacción que inserta el registro.
type Delta struct {
	Status         models.EquipmentStatus
	LocationID     *int
	HolderID       *int
	AvailableDelta int // signed adjustment on available_quantity
	TotalDelta     int // signed adjustment on total_quantity
	Quantity       int // normalized quantity actually moved
}

// Validate evalúa las reglas en orden; el primer fallo gana.
//
// Rule order per action:
//
//	OUT:     NotCheckoutable, CheckoutDisallowed, MissingActor,
//	         NotAvailable, InsufficientQuantity
//	IN:      NotReturnable, MissingLocation, NotCheckedOut / OverReturn
//	ISSUE:   NotConsumable, InvalidQuantity, InsufficientQuantity
//	RESTOCK: NotConsumable, InvalidQuantity
func Validate(eq *models.Equipment, req Request) (*Delta, error) {
	switch req.Action {
	case models.ActionOut:
		return validateOut(eq, req)
	case models.ActionIn:
		return validateIn(eq, req)
	case models.ActionIssue:
		return validateIssue(eq, req)
	case models.ActionRestock:
		return validateRestock(eq, req)
	default:
		return nil, newError(KindInvalidAction, eq.AssetCode, "unknown action %q", req.Action)
	}
}

// ValidateHandover chequea las precondiciones del traspaso antes de que
// corra cualquiera de las dos mitades.
func ValidateHandover(eq *models.Equipment) error {
	if eq.IsConsumable {
		return newError(KindNotApplicable, eq.AssetCode, "handover does not apply to consumables")
	}
	if eq.Status != models.StatusCheckedOut {
		return newError(KindNotCheckedOut, eq.AssetCode, "status is %q, want %q", eq.Status, models.StatusCheckedOut)
	}
	return nil
}

func validateOut(eq *models.Equipment, req Request) (*Delta, error) {
	code := eq.AssetCode
	qty := normalizeQuantity(req.Quantity)

	if eq.IsConsumable {
		return nil, newError(KindNotCheckoutable, code, "consumables are issued by quantity, not checked out")
	}
	if !eq.IsCheckoutAllowed {
		return nil, newError(KindCheckoutDisallowed, code, "category does not allow checkout")
	}
	hasLocation := req.LocationID != nil
	hasCustomer := req.CustomerID != nil
	if hasLocation == hasCustomer || req.PersonnelID == nil {
		return nil, newError(KindMissingActor, code,
			"checkout needs exactly one of location or customer, plus responsible personnel")
	}
	if eq.Status != models.StatusAvailable {
		return nil, newError(KindNotAvailable, code, "status is %q, want %q", eq.Status, models.StatusAvailable)
	}
	if eq.IsQuantityTracked && qty > eq.AvailableQuantity {
		return nil, &ValidationError{
			Kind:      KindInsufficientQuantity,
			AssetCode: code,
			Requested: qty,
			Available: eq.AvailableQuantity,
			Reason:    fmt.Sprintf("requested %d, available %d", qty, eq.AvailableQuantity),
		}
	}

	delta := &Delta{
		Status:     models.StatusCheckedOut,
		LocationID: req.LocationID, // nil when checked out to a customer site
		HolderID:   req.PersonnelID,
		Quantity:   qty,
	}
	if eq.IsQuantityTracked {
		delta.AvailableDelta = -qty
		// Pooled units stay available until the last one leaves.
		if eq.AvailableQuantity-qty > 0 {
			delta.Status = models.StatusAvailable
		}
	}
	return delta, nil
}

func validateIn(eq *models.Equipment, req Request) (*Delta, error) {
	code := eq.AssetCode
	qty := normalizeQuantity(req.Quantity)

	if eq.IsConsumable {
		return nil, newError(KindNotReturnable, code, "consumables are restocked, not checked in")
	}
	if req.LocationID == nil {
		return nil, newError(KindMissingLocation, code, "check-in needs a return location")
	}
	if !eq.IsQuantityTracked {
		if eq.Status != models.StatusCheckedOut {
			return nil, newError(KindNotCheckedOut, code, "status is %q, want %q", eq.Status, models.StatusCheckedOut)
		}
	} else {
		outstanding := eq.TotalQuantity - eq.AvailableQuantity
		if qty > outstanding {
			return nil, &ValidationError{
				Kind:      KindOverReturn,
				AssetCode: code,
				Requested: qty,
				Available: outstanding,
				Reason:    fmt.Sprintf("returning %d, only %d outstanding", qty, outstanding),
			}
		}
	}

	delta := &Delta{
		Status:     models.StatusAvailable,
		LocationID: req.LocationID,
		HolderID:   nil,
		Quantity:   qty,
	}
	if eq.IsQuantityTracked {
		delta.AvailableDelta = qty
	}
	return delta, nil
}

func validateIssue(eq *models.Equipment, req Request) (*Delta, error) {
	code := eq.AssetCode
	if !eq.IsConsumable {
		return nil, newError(KindNotConsumable, code, "only consumables can be issued")
	}
	if req.Quantity < 1 {
		return nil, newError(KindInvalidQuantity, code, "issue quantity must be >= 1, got %d", req.Quantity)
	}
	if req.Quantity > eq.AvailableQuantity {
		return nil, &ValidationError{
			Kind:      KindInsufficientQuantity,
			AssetCode: code,
			Requested: req.Quantity,
			Available: eq.AvailableQuantity,
			Reason:    fmt.Sprintf("requested %d, available %d", req.Quantity, eq.AvailableQuantity),
		}
	}
	// Issued units are consumed: they leave both counters.
	return &Delta{
		Status:         eq.Status,
		LocationID:     eq.CurrentLocationID,
		HolderID:       eq.CurrentHolderID,
		AvailableDelta: -req.Quantity,
		TotalDelta:     -req.Quantity,
		Quantity:       req.Quantity,
	}, nil
}

func validateRestock(eq *models.Equipment, req Request) (*Delta, error) {
	code := eq.AssetCode
	if !eq.IsConsumable {
		return nil, newError(KindNotConsumable, code, "only consumables can be restocked")
	}
	if req.Quantity < 1 {
		return nil, newError(KindInvalidQuantity, code, "restock quantity must be >= 1, got %d", req.Quantity)
	}
	return &Delta{
		Status:         eq.Status,
		LocationID:     eq.CurrentLocationID,
		HolderID:       eq.CurrentHolderID,
		AvailableDelta: req.Quantity,
		TotalDelta:     req.Quantity,
		Quantity:       req.Quantity,
	}, nil
}

// normalizeQuantity aplica el default de cantidad 1 para OUT/IN.
func normalizeQuantity(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}
