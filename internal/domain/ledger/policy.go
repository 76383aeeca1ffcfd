// Package ledger contiene las reglas puras del libro de stock: política de
// stock negativo, evaluación de stock bajo y consolidación de líneas.
package ledger

import "github.com/shopspring/decimal"

// StockPolicy define si una extracción (delta negativo) tolera dejar la
// cantidad en negativo. Es un parámetro explícito por operación: las ventas lo
// permiten por defecto (vender antes de registrar físicamente el stock), los
// traslados y las bajas no. Las reposiciones (delta positivo) no se restringen
// nunca: un resultado aún negativo solo puede venir de un déficit previo ya
// permitido, y rechazarlas dejaría ese déficit sin camino de vuelta.
type StockPolicy struct {
	AllowNegative bool
}

// Políticas por defecto por tipo de operación.
var (
	PolicySale = StockPolicy{AllowNegative: true}
	// El origen del traslado no puede quedar en negativo; el lado entrante
	// es reposición y no lo toca la política.
	PolicyTransfer = StockPolicy{AllowNegative: false}
	// Compras y devoluciones son reposiciones puras: la bandera nunca llega
	// a aplicarse, se declara por simetría.
	PolicyPurchase = StockPolicy{AllowNegative: true}
	PolicyReturn   = StockPolicy{AllowNegative: true}
	// Un ajuste de conteo puede dejar la cantidad en negativo: corrige la realidad.
	PolicyAdjustment = StockPolicy{AllowNegative: true}
	PolicyDamage     = StockPolicy{AllowNegative: false}
)

// Severidades de alerta de stock bajo.
const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"
)

// EvaluateLowStock decide si una cantidad dispara alerta de stock bajo.
// <= 0 es crítico; <= mínimo es advertencia.
func EvaluateLowStock(current, minimum decimal.Decimal) (severity string, alert bool) {
	if current.LessThanOrEqual(decimal.Zero) {
		return SeverityCritical, true
	}
	if current.LessThanOrEqual(minimum) {
		return SeverityWarning, true
	}
	return "", false
}
