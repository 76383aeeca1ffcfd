package ledger

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/ledger"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/cache"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// postCommit agrupa los colaboradores best-effort que corren después del
// commit: notificador de eventos y caché de instantáneas. Compartido por los
// orquestadores; sus fallas se registran y nunca se propagan al caller.
type postCommit struct {
	notifier   Notifier
	stockCache cache.StockCache
	log        *logger.Logger
}

// afterStockMutation invalida el caché y evalúa stock bajo para cada producto
// tocado por una mutación ya confirmada.
func (p *postCommit) afterStockMutation(ctx context.Context, touched []touchedStock) {
	for _, t := range touched {
		if err := p.stockCache.Invalidate(ctx, t.stock.ProductID, t.stock.BranchID); err != nil {
			p.log.Warn().Err(err).
				Str("product_id", t.stock.ProductID).
				Str("branch_id", t.stock.BranchID).
				Msg("invalidación de caché de stock falló")
		}
		severity, alert := ledger.EvaluateLowStock(t.stock.CurrentQuantity, t.stock.MinimumQuantity)
		if !alert {
			continue
		}
		err := p.notifier.NotifyLowStock(ctx, LowStockAlert{
			ProductID:    t.stock.ProductID,
			ProductName:  t.productName,
			BranchID:     t.stock.BranchID,
			CurrentStock: t.stock.CurrentQuantity,
			MinStock:     t.stock.MinimumQuantity,
			Severity:     severity,
		})
		if err != nil {
			p.log.Warn().Err(err).
				Str("product_id", t.stock.ProductID).
				Str("branch_id", t.stock.BranchID).
				Msg("notificación de stock bajo falló")
		}
	}
}
