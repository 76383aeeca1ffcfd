package cache

import (
	"context"
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// StockCache caché de lectura de instantáneas de stock por (producto, sucursal).
// Los orquestadores invalidan la entrada después del commit; las consultas
// leen a través del caché. Nunca participa en la transacción.
type StockCache interface {
	GetStock(ctx context.Context, productID, branchID string) (*entity.Stock, bool, error)
	SetStock(ctx context.Context, stock *entity.Stock, ttl time.Duration) error
	Invalidate(ctx context.Context, productID, branchID string) error
}

// NoopStockCache implementación nula para entornos sin Redis.
type NoopStockCache struct{}

func (NoopStockCache) GetStock(_ context.Context, _, _ string) (*entity.Stock, bool, error) {
	return nil, false, nil
}

func (NoopStockCache) SetStock(_ context.Context, _ *entity.Stock, _ time.Duration) error {
	return nil
}

func (NoopStockCache) Invalidate(_ context.Context, _, _ string) error {
	return nil
}
