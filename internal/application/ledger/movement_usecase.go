package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/ledger"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/cache"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// RegisterMovementUseCase registra movimientos de stock fuera del flujo de
// venta: compras (PURCHASE), ajustes de conteo (ADJUSTMENT) y bajas por daño
// (DAMAGE). Mismo camino mutador+registrador, una transacción por operación.
type RegisterMovementUseCase struct {
	postCommit
	txRunner    TxRunner
	branchRepo  repository.BranchRepository
	productRepo repository.ProductRepository
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	notifier Notifier,
	stockCache cache.StockCache,
	log *logger.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		postCommit:  postCommit{notifier: notifier, stockCache: stockCache, log: log},
		txRunner:    txRunner,
		branchRepo:  branchRepo,
		productRepo: productRepo,
	}
}

// MovementInput entrada para registrar un movimiento directo.
// PURCHASE y DAMAGE: Quantity > 0 (el signo lo pone la operación).
// ADJUSTMENT: Quantity con signo, distinta de cero.
type MovementInput struct {
	ProductID string
	BranchID  string
	Type      string
	Quantity  decimal.Decimal
	Notes     string
	CreatedBy string
}

// RegisterMovement valida, aplica el delta según el tipo y persiste la entrada
// del libro. Una compra crea la fila de stock en la primera recepción; un
// ajuste puede dejar la cantidad en negativo (corrige el conteo real); una baja
// por daño exige stock suficiente.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if in.ProductID == "" || in.BranchID == "" || in.CreatedBy == "" {
		return nil, domain.ErrInvalidInput
	}

	var delta decimal.Decimal
	var policy ledger.StockPolicy
	switch in.Type {
	case entity.MovementTypePURCHASE:
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		delta = in.Quantity
		policy = ledger.PolicyPurchase
	case entity.MovementTypeADJUSTMENT:
		if in.Quantity.IsZero() {
			return nil, domain.ErrInvalidInput
		}
		delta = in.Quantity
		policy = ledger.PolicyAdjustment
	case entity.MovementTypeDAMAGE:
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		delta = in.Quantity.Neg()
		policy = ledger.PolicyDamage
	default:
		return nil, domain.ErrInvalidInput
	}

	branch, err := uc.branchRepo.GetByID(in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	var movement *entity.StockMovement
	var touched []touchedStock

	err = runWithConflictRetry(uc.log, "register_movement", func() error {
		now := time.Now()
		touched = touched[:0]

		return uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			stockRepo repository.StockRepository,
		) error {
			applied, stock, err := ApplyStockDelta(stockRepo, in.ProductID, in.BranchID, delta, policy)
			if err != nil {
				return err
			}
			movement = &entity.StockMovement{
				ID:             uuid.New().String(),
				ProductID:      in.ProductID,
				BranchID:       in.BranchID,
				MovementType:   in.Type,
				QuantityChange: delta,
				PreviousQty:    applied.Previous,
				NewQty:         applied.New,
				Notes:          in.Notes,
				CreatedBy:      in.CreatedBy,
				CreatedAt:      now,
			}
			if err := movRepo.Create(movement); err != nil {
				return err
			}
			touched = append(touched, touchedStock{stock: stock, productName: product.Name})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.afterStockMutation(ctx, touched)
	return movement, nil
}
