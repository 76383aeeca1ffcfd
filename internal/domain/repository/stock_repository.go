package repository

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// StockRepository acceso a la fila de stock por (producto, sucursal).
type StockRepository interface {
	// Get obtiene el stock actual; si la fila no existe devuelve una fila
	// en cero (la fila real se crea recién en ApplyDelta).
	Get(productID, branchID string) (*entity.Stock, error)

	// ApplyDelta aplica un incremento atómico en la base de datos
	// (upsert-incremento en una sola sentencia) y devuelve la fila resultante.
	// Crea la fila si no existe (get-or-create dentro de la misma transacción).
	// El bloqueo de fila que toma el UPDATE serializa a los escritores
	// concurrentes del mismo (producto, sucursal) hasta el commit.
	ApplyDelta(productID, branchID string, delta decimal.Decimal) (*entity.Stock, error)

	// ListByBranch stock de todos los productos de una sucursal.
	ListByBranch(branchID string) ([]*entity.Stock, error)
}
