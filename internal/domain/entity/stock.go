package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa la cantidad actual de un producto en una sucursal.
// Clave natural (ProductID, BranchID); la fila se crea de forma perezosa
// en la primera operación que afecta stock (compra, venta, traslado entrante).
// CurrentQuantity puede ser negativa cuando la política de la operación lo permite.
type Stock struct {
	ProductID        string
	BranchID         string
	CurrentQuantity  decimal.Decimal
	ReservedQuantity decimal.Decimal
	MinimumQuantity  decimal.Decimal
	MaximumQuantity  decimal.Decimal
	LastUpdated      time.Time
}

// Available cantidad disponible para venta (actual menos reservada).
func (s *Stock) Available() decimal.Decimal {
	return s.CurrentQuantity.Sub(s.ReservedQuantity)
}
