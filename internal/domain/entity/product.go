package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Su CRUD vive fuera de este núcleo;
// aquí solo se lee para validar ventas, devoluciones y traslados.
type Product struct {
	ID        string
	SKU       string
	Name      string
	Price     decimal.Decimal
	Cost      decimal.Decimal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
