package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/cache"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// TTL de la instantánea de stock en caché. Corto: la fuente de verdad es la
// fila viva y los orquestadores invalidan tras cada commit.
const stockSnapshotTTL = 30 * time.Second

// StockQueryUseCase consultas de solo lectura: instantánea de stock (con caché
// de lectura) e historial de movimientos.
type StockQueryUseCase struct {
	stockRepo  repository.StockRepository
	movRepo    repository.StockMovementRepository
	stockCache cache.StockCache
	log        *logger.Logger
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	stockCache cache.StockCache,
	log *logger.Logger,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		stockRepo:  stockRepo,
		movRepo:    movRepo,
		stockCache: stockCache,
		log:        log,
	}
}

// GetStock instantánea de stock de un producto en una sucursal, a través del caché.
func (uc *StockQueryUseCase) GetStock(ctx context.Context, productID, branchID string) (*entity.Stock, error) {
	cached, ok, err := uc.stockCache.GetStock(ctx, productID, branchID)
	if err != nil {
		uc.log.Warn().Err(err).Msg("lectura de caché de stock falló")
	}
	if ok {
		return cached, nil
	}
	stock, err := uc.stockRepo.Get(productID, branchID)
	if err != nil {
		return nil, err
	}
	if err := uc.stockCache.SetStock(ctx, stock, stockSnapshotTTL); err != nil {
		uc.log.Warn().Err(err).Msg("escritura de caché de stock falló")
	}
	return stock, nil
}

// ListStockByBranch stock de todos los productos de una sucursal (sin caché).
func (uc *StockQueryUseCase) ListStockByBranch(_ context.Context, branchID string) ([]*entity.Stock, error) {
	return uc.stockRepo.ListByBranch(branchID)
}

// ListMovementsByProduct historial de movimientos de un producto en una sucursal.
func (uc *StockQueryUseCase) ListMovementsByProduct(_ context.Context, productID, branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movRepo.ListByProduct(productID, branchID, from, to, limit, offset)
}

// ListMovementsByBranch historial de movimientos de una sucursal.
func (uc *StockQueryUseCase) ListMovementsByBranch(_ context.Context, branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movRepo.ListByBranch(branchID, from, to, limit, offset)
}
