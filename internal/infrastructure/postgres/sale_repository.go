package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de una venta. Una colisión en idempotency_key
// (índice único parcial) se reporta como domain.ErrDuplicate para que el
// orquestador recupere la venta ya creada.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales (id, branch_id, customer_id, payment_method, status,
		    total_amount, original_sale_id, idempotency_key, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	customerID := (*string)(nil)
	if sale.CustomerID != "" {
		customerID = &sale.CustomerID
	}
	originalSaleID := (*string)(nil)
	if sale.OriginalSaleID != "" {
		originalSaleID = &sale.OriginalSaleID
	}
	idempotencyKey := (*string)(nil)
	if sale.IdempotencyKey != "" {
		idempotencyKey = &sale.IdempotencyKey
	}
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.BranchID, customerID, sale.PaymentMethod, sale.Status,
		sale.TotalAmount, originalSaleID, idempotencyKey, sale.CreatedBy,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de venta.
func (r *SaleRepo) CreateItem(item *entity.SaleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, item_type, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SaleID, item.ProductID, item.ItemType,
		item.Quantity, item.UnitPrice, item.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}
	return nil
}

const saleColumns = `id, branch_id, customer_id, payment_method, status, total_amount,
	original_sale_id, idempotency_key, created_by, created_at, updated_at`

// GetByID obtiene una venta por ID, o nil si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	return r.getOne(query, id)
}

// GetByIdempotencyKey obtiene la venta creada con esa clave, o nil.
func (r *SaleRepo) GetByIdempotencyKey(key string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE idempotency_key = $1`
	return r.getOne(query, key)
}

func (r *SaleRepo) getOne(query string, arg any) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, originalSaleID, idempotencyKey *string
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&s.ID, &s.BranchID, &customerID, &s.PaymentMethod, &s.Status, &s.TotalAmount,
		&originalSaleID, &idempotencyKey, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if customerID != nil {
		s.CustomerID = *customerID
	}
	if originalSaleID != nil {
		s.OriginalSaleID = *originalSaleID
	}
	if idempotencyKey != nil {
		s.IdempotencyKey = *idempotencyKey
	}
	return &s, nil
}

// GetItemsBySaleID líneas de una venta.
func (r *SaleRepo) GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, item_type, quantity, unit_price, line_total
		FROM sale_items WHERE sale_id = $1`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleItem
	for rows.Next() {
		var item entity.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ItemType,
			&item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// TransitionStatus cambia el estado de una venta de forma condicional (flujo
// de anulación). El predicado sobre el estado actual cierra la carrera de dos
// anulaciones simultáneas: la segunda no coincide, afecta cero filas y la
// transacción que la contiene revierte sus reintegros de stock.
func (r *SaleRepo) TransitionStatus(id, from, to string) error {
	query := `UPDATE sales SET status = $2, updated_at = now() WHERE id = $1 AND status = $3`
	tag, err := r.q.Exec(context.Background(), query, id, to, from)
	if err != nil {
		return fmt.Errorf("transition sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}
