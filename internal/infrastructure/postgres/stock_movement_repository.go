package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// Solo inserta: las entradas del libro nunca se actualizan ni se borran.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste una entrada del libro de movimientos.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, product_id, branch_id, movement_type,
		    quantity_change, previous_qty, new_qty, reference_id, reference_type,
		    notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	referenceID := (*string)(nil)
	if movement.ReferenceID != "" {
		referenceID = &movement.ReferenceID
	}
	referenceType := (*string)(nil)
	if movement.ReferenceType != "" {
		referenceType = &movement.ReferenceType
	}
	notes := (*string)(nil)
	if movement.Notes != "" {
		notes = &movement.Notes
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ProductID, movement.BranchID, movement.MovementType,
		movement.QuantityChange, movement.PreviousQty, movement.NewQty,
		referenceID, referenceType, notes, movement.CreatedBy, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

const movementColumns = `id, product_id, branch_id, movement_type, quantity_change,
	previous_qty, new_qty, reference_id, reference_type, notes, created_by, created_at`

// ListByProduct movimientos de un producto en una sucursal, más recientes primero.
func (r *StockMovementRepo) ListByProduct(productID, branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_id = $1 AND branch_id = $2`
	args := []any{productID, branchID}
	query, args = appendDateRange(query, args, from, to)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return r.list(query, args)
}

// ListByBranch movimientos de una sucursal en un rango de fechas.
func (r *StockMovementRepo) ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE branch_id = $1`
	args := []any{branchID}
	query, args = appendDateRange(query, args, from, to)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return r.list(query, args)
}

func appendDateRange(query string, args []any, from, to *time.Time) (string, []any) {
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", len(args)+1)
		args = append(args, *from)
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", len(args)+1)
		args = append(args, *to)
	}
	return query, args
}

func (r *StockMovementRepo) list(query string, args []any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var referenceID, referenceType, notes *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.BranchID, &m.MovementType,
			&m.QuantityChange, &m.PreviousQty, &m.NewQty,
			&referenceID, &referenceType, &notes, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		if referenceID != nil {
			m.ReferenceID = *referenceID
		}
		if referenceType != nil {
			m.ReferenceType = *referenceType
		}
		if notes != nil {
			m.Notes = *notes
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
