package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock (conjunto cerrado).
const (
	MovementTypePURCHASE    = "PURCHASE"     // compra / recepción
	MovementTypeSALE        = "SALE"         // venta (incluye salida por intercambio)
	MovementTypeRETURN      = "RETURN"       // devolución de cliente
	MovementTypeTRANSFEROUT = "TRANSFER_OUT" // traslado: salida en origen
	MovementTypeTRANSFERIN  = "TRANSFER_IN"  // traslado: entrada en destino
	MovementTypeADJUSTMENT  = "ADJUSTMENT"   // ajuste de conteo
	MovementTypeDAMAGE      = "DAMAGE"       // baja por daño
)

// Tipos de referencia para enlazar el movimiento con la operación que lo causó.
// Los traslados referencian a su movimiento par (TRANSFER_OUT <-> TRANSFER_IN),
// de ahí MOVEMENT y no un tipo propio.
const (
	ReferenceTypeSale     = "SALE"
	ReferenceTypeMovement = "MOVEMENT"
)

// StockMovement es una entrada inmutable del libro de movimientos: documenta
// exactamente un cambio de cantidad. Nunca se actualiza ni se borra.
// Invariante: NewQty = PreviousQty + QuantityChange, fila por fila, y la suma de
// QuantityChange por (producto, sucursal) reproduce siempre CurrentQuantity.
type StockMovement struct {
	ID             string
	ProductID      string
	BranchID       string
	MovementType   string
	QuantityChange decimal.Decimal // con signo: negativo salida, positivo entrada
	PreviousQty    decimal.Decimal
	NewQty         decimal.Decimal
	ReferenceID    string // venta, traslado u otro movimiento que lo causó
	ReferenceType  string
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
}
