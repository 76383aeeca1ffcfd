package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// SaleLineRequest línea de venta o de intercambio. unit_price en cero toma el
// precio de lista del producto.
type SaleLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price,omitempty"`
}

// ReturnLineRequest línea devuelta; el precio se toma de la venta original.
type ReturnLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	BranchID       string            `json:"branch_id"`
	CustomerID     string            `json:"customer_id,omitempty"`
	PaymentMethod  string            `json:"payment_method"`
	Items          []SaleLineRequest `json:"items"`
	CreatedBy      string            `json:"created_by"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

// ReturnExchangeRequest body para POST /api/sales/:id/returns.
type ReturnExchangeRequest struct {
	BranchID       string              `json:"branch_id"`
	CustomerID     string              `json:"customer_id,omitempty"`
	ReturnedItems  []ReturnLineRequest `json:"returned_items,omitempty"`
	ExchangedItems []SaleLineRequest   `json:"exchanged_items,omitempty"`
	CreatedBy      string              `json:"created_by"`
}

// SaleItemResponse línea de venta persistida.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	ItemType  string          `json:"item_type"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleResponse venta persistida.
type SaleResponse struct {
	ID             string             `json:"id"`
	BranchID       string             `json:"branch_id"`
	CustomerID     string             `json:"customer_id,omitempty"`
	PaymentMethod  string             `json:"payment_method"`
	Status         string             `json:"status"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	OriginalSaleID string             `json:"original_sale_id,omitempty"`
	CreatedBy      string             `json:"created_by"`
	CreatedAt      time.Time          `json:"created_at"`
	Items          []SaleItemResponse `json:"items,omitempty"`
}

// ToSaleResponse convierte la entidad a la respuesta HTTP.
func ToSaleResponse(sale *entity.Sale, items []*entity.SaleItem) SaleResponse {
	resp := SaleResponse{
		ID:             sale.ID,
		BranchID:       sale.BranchID,
		CustomerID:     sale.CustomerID,
		PaymentMethod:  sale.PaymentMethod,
		Status:         sale.Status,
		TotalAmount:    sale.TotalAmount,
		OriginalSaleID: sale.OriginalSaleID,
		CreatedBy:      sale.CreatedBy,
		CreatedAt:      sale.CreatedAt,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			ItemType:  item.ItemType,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return resp
}

// ErrorResponse cuerpo de error de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
