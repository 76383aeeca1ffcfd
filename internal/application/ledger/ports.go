package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor del libro:
// o se persisten todos los cambios de stock, movimientos y venta, o ninguno.
type TxRunner interface {
	// Run transacción con los repos de stock y movimientos (traslados, compras, ajustes).
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error) error

	// RunSale transacción que además incluye el repo de ventas
	// (ventas, devoluciones, intercambios, anulaciones).
	RunSale(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// LowStockAlert datos que el núcleo entrega al notificador cuando el stock
// queda en nivel crítico (<= 0) o de advertencia (<= mínimo).
type LowStockAlert struct {
	ProductID    string
	ProductName  string
	BranchID     string
	CurrentStock decimal.Decimal
	MinStock     decimal.Decimal
	Severity     string
}

// Notifier colaborador externo invocado después del commit. Best-effort:
// sus errores se registran en el log y nunca afectan la operación que los disparó.
type Notifier interface {
	NotifyLowStock(ctx context.Context, alert LowStockAlert) error
	NotifySaleCreated(ctx context.Context, sale *entity.Sale) error
	NotifyReturnProcessed(ctx context.Context, sale *entity.Sale) error
	NotifyExchangeProcessed(ctx context.Context, sale *entity.Sale) error
}

// NoopNotifier implementación nula para entornos sin mensajería.
type NoopNotifier struct{}

func (NoopNotifier) NotifyLowStock(context.Context, LowStockAlert) error        { return nil }
func (NoopNotifier) NotifySaleCreated(context.Context, *entity.Sale) error      { return nil }
func (NoopNotifier) NotifyReturnProcessed(context.Context, *entity.Sale) error  { return nil }
func (NoopNotifier) NotifyExchangeProcessed(context.Context, *entity.Sale) error { return nil }
