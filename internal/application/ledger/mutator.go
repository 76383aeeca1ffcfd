package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/ledger"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// AppliedDelta par (cantidad previa, cantidad nueva) producido por el mutador
// y consumido tal cual por el registrador de movimientos.
type AppliedDelta struct {
	Previous decimal.Decimal
	New      decimal.Decimal
}

// ApplyStockDelta es el único punto por el que cambia una cantidad viva.
// Aplica el delta con un incremento atómico en la base (el repositorio emite
// una sola sentencia upsert-incremento), deriva la cantidad previa del valor
// devuelto y aplica la política de stock negativo. La política solo restringe
// extracciones (delta negativo): una reposición siempre acerca la cantidad a
// cero y debe aceptarse aunque el resultado siga en negativo, si no una venta
// en déficit dejaría la fila sin camino de vuelta. Si la política rechaza el
// resultado, el error revierte el incremento junto con la transacción.
func ApplyStockDelta(
	stockRepo repository.StockRepository,
	productID, branchID string,
	delta decimal.Decimal,
	policy ledger.StockPolicy,
) (*AppliedDelta, *entity.Stock, error) {
	stock, err := stockRepo.ApplyDelta(productID, branchID, delta)
	if err != nil {
		return nil, nil, err
	}
	if delta.IsNegative() && !policy.AllowNegative && stock.CurrentQuantity.IsNegative() {
		return nil, nil, domain.ErrInsufficientStock
	}
	applied := &AppliedDelta{
		Previous: stock.CurrentQuantity.Sub(delta),
		New:      stock.CurrentQuantity,
	}
	return applied, stock, nil
}

// MovementRef enlace del movimiento con la operación que lo causó.
type MovementRef struct {
	ID    string
	Type  string
	Notes string
}

// RecordMovement inserta la entrada inmutable del libro para un delta ya
// aplicado, con el par exacto (previa, nueva) del mutador y dentro de la misma
// transacción. Devuelve el ID del movimiento para que entradas emparejadas
// (TRANSFER_OUT/TRANSFER_IN) puedan referenciarse entre sí.
func RecordMovement(
	movRepo repository.StockMovementRepository,
	productID, branchID, movementType string,
	delta decimal.Decimal,
	applied *AppliedDelta,
	ref MovementRef,
	createdBy string,
	now time.Time,
) (string, error) {
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      productID,
		BranchID:       branchID,
		MovementType:   movementType,
		QuantityChange: delta,
		PreviousQty:    applied.Previous,
		NewQty:         applied.New,
		ReferenceID:    ref.ID,
		ReferenceType:  ref.Type,
		Notes:          ref.Notes,
		CreatedBy:      createdBy,
		CreatedAt:      now,
	}
	if err := movRepo.Create(mov); err != nil {
		return "", err
	}
	return mov.ID, nil
}
