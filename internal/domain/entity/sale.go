package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. COMPLETED, CANCELLED, REFUNDED y EXCHANGED son terminales;
// la única transición desde un estado terminal es COMPLETED -> CANCELLED vía el
// flujo explícito de anulación (que reintegra el stock).
const (
	SaleStatusPending   = "PENDING"
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
	SaleStatusRefunded  = "REFUNDED"
	SaleStatusExchanged = "EXCHANGED"
)

// Tipos de línea de venta.
const (
	SaleItemTypeOriginal = "ORIGINAL"
	SaleItemTypeReturn   = "RETURN"
	SaleItemTypeExchange = "EXCHANGE"
)

// Sale representa la cabecera de una venta (o de una devolución/intercambio,
// en cuyo caso OriginalSaleID enlaza la venta original).
type Sale struct {
	ID             string
	BranchID       string
	CustomerID     string // opcional: venta de mostrador sin cliente
	PaymentMethod  string
	Status         string
	TotalAmount    decimal.Decimal
	OriginalSaleID string // solo devoluciones/intercambios
	IdempotencyKey string // opcional: clave del cliente para reintentos seguros
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SaleItem representa una línea de venta. En devoluciones LineTotal es negativo.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	ItemType  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}
