package repository

import (
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// StockMovementRepository persistencia del libro de movimientos (solo inserción).
type StockMovementRepository interface {
	// Create inserta una entrada inmutable. Asigna ID si viene vacío.
	Create(movement *entity.StockMovement) error

	// ListByProduct movimientos de un producto en una sucursal, más recientes primero.
	ListByProduct(productID, branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)

	// ListByBranch movimientos de una sucursal en un rango de fechas.
	ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
