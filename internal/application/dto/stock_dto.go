package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// TransferRequest body para POST /api/stock/transfers.
type TransferRequest struct {
	ProductID    string          `json:"product_id"`
	FromBranchID string          `json:"from_branch_id"`
	ToBranchID   string          `json:"to_branch_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Notes        string          `json:"notes,omitempty"`
	CreatedBy    string          `json:"created_by"`
}

// TransferResponse resultado del traslado.
type TransferResponse struct {
	FromQty       decimal.Decimal `json:"from_qty"`
	ToQty         decimal.Decimal `json:"to_qty"`
	OutMovementID string          `json:"out_movement_id"`
	InMovementID  string          `json:"in_movement_id"`
}

// RegisterMovementRequest body para POST /api/stock/movements
// (PURCHASE, ADJUSTMENT con signo, DAMAGE).
type RegisterMovementRequest struct {
	ProductID string          `json:"product_id"`
	BranchID  string          `json:"branch_id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
	CreatedBy string          `json:"created_by"`
}

// StockResponse instantánea de stock.
type StockResponse struct {
	ProductID        string          `json:"product_id"`
	BranchID         string          `json:"branch_id"`
	CurrentQuantity  decimal.Decimal `json:"current_quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	MinimumQuantity  decimal.Decimal `json:"minimum_quantity"`
	MaximumQuantity  decimal.Decimal `json:"maximum_quantity"`
	LastUpdated      time.Time       `json:"last_updated"`
}

// ToStockResponse convierte la entidad a la respuesta HTTP.
func ToStockResponse(s *entity.Stock) StockResponse {
	return StockResponse{
		ProductID:        s.ProductID,
		BranchID:         s.BranchID,
		CurrentQuantity:  s.CurrentQuantity,
		ReservedQuantity: s.ReservedQuantity,
		MinimumQuantity:  s.MinimumQuantity,
		MaximumQuantity:  s.MaximumQuantity,
		LastUpdated:      s.LastUpdated,
	}
}

// MovementResponse entrada del libro de movimientos.
type MovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	BranchID       string          `json:"branch_id"`
	MovementType   string          `json:"movement_type"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	PreviousQty    decimal.Decimal `json:"previous_qty"`
	NewQty         decimal.Decimal `json:"new_qty"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToMovementResponse convierte la entidad a la respuesta HTTP.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		BranchID:       m.BranchID,
		MovementType:   m.MovementType,
		QuantityChange: m.QuantityChange,
		PreviousQty:    m.PreviousQty,
		NewQty:         m.NewQty,
		ReferenceID:    m.ReferenceID,
		ReferenceType:  m.ReferenceType,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}
