package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// Máximo por defecto al crear una fila de stock de forma perezosa.
var defaultMaximumQuantity = decimal.NewFromInt(999999)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una sucursal.
// Si la fila no existe devuelve una fila en cero (se creará en ApplyDelta).
func (r *StockRepo) Get(productID, branchID string) (*entity.Stock, error) {
	query := `
		SELECT product_id, branch_id, current_quantity, reserved_quantity,
		       minimum_quantity, maximum_quantity, last_updated
		FROM stock WHERE product_id = $1 AND branch_id = $2`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productID, branchID).Scan(
		&s.ProductID, &s.BranchID, &s.CurrentQuantity, &s.ReservedQuantity,
		&s.MinimumQuantity, &s.MaximumQuantity, &s.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{
				ProductID:       productID,
				BranchID:        branchID,
				CurrentQuantity: decimal.Zero,
				MaximumQuantity: defaultMaximumQuantity,
			}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// ApplyDelta incrementa la cantidad en una sola sentencia atómica
// (upsert-incremento) y devuelve la fila resultante. Crea la fila si no
// existe. El lock de fila del UPDATE serializa a los escritores concurrentes
// del mismo (producto, sucursal) hasta el commit: dos ventas simultáneas no
// pueden pisarse el valor (nunca leer-calcular-escribir valor absoluto).
func (r *StockRepo) ApplyDelta(productID, branchID string, delta decimal.Decimal) (*entity.Stock, error) {
	query := `
		INSERT INTO stock (product_id, branch_id, current_quantity, reserved_quantity,
		                   minimum_quantity, maximum_quantity, last_updated)
		VALUES ($1, $2, $3, 0, 0, $4, now())
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET current_quantity = stock.current_quantity + EXCLUDED.current_quantity,
		              last_updated = now()
		RETURNING product_id, branch_id, current_quantity, reserved_quantity,
		          minimum_quantity, maximum_quantity, last_updated`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productID, branchID, delta, defaultMaximumQuantity).Scan(
		&s.ProductID, &s.BranchID, &s.CurrentQuantity, &s.ReservedQuantity,
		&s.MinimumQuantity, &s.MaximumQuantity, &s.LastUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("apply stock delta: %w", err)
	}
	return &s, nil
}

// ListByBranch stock de todos los productos de una sucursal.
func (r *StockRepo) ListByBranch(branchID string) ([]*entity.Stock, error) {
	query := `
		SELECT product_id, branch_id, current_quantity, reserved_quantity,
		       minimum_quantity, maximum_quantity, last_updated
		FROM stock WHERE branch_id = $1
		ORDER BY product_id`
	rows, err := r.q.Query(context.Background(), query, branchID)
	if err != nil {
		return nil, fmt.Errorf("list stock by branch: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ProductID, &s.BranchID, &s.CurrentQuantity, &s.ReservedQuantity,
			&s.MinimumQuantity, &s.MaximumQuantity, &s.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
