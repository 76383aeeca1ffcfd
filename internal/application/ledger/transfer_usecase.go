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

// TransferStockUseCase traslada cantidad de una sucursal a otra: -cantidad en
// origen y +cantidad en destino (creando la fila destino si no existe), con un
// par de movimientos TRANSFER_OUT/TRANSFER_IN que se referencian entre sí,
// ambos lados en una sola transacción.
type TransferStockUseCase struct {
	postCommit
	txRunner    TxRunner
	branchRepo  repository.BranchRepository
	productRepo repository.ProductRepository
}

// NewTransferStockUseCase construye el caso de uso.
func NewTransferStockUseCase(
	txRunner TxRunner,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	notifier Notifier,
	stockCache cache.StockCache,
	log *logger.Logger,
) *TransferStockUseCase {
	return &TransferStockUseCase{
		postCommit:  postCommit{notifier: notifier, stockCache: stockCache, log: log},
		txRunner:    txRunner,
		branchRepo:  branchRepo,
		productRepo: productRepo,
	}
}

// TransferInput entrada para un traslado entre sucursales.
type TransferInput struct {
	ProductID    string
	FromBranchID string
	ToBranchID   string
	Quantity     decimal.Decimal
	Notes        string
	CreatedBy    string
}

// TransferResult cantidades resultantes y los movimientos emparejados.
type TransferResult struct {
	FromQty       decimal.Decimal
	ToQty         decimal.Decimal
	OutMovementID string
	InMovementID  string
}

// TransferStock valida origen != destino y cantidad > 0; a diferencia de las
// ventas, el origen no tolera quedar en negativo (ErrInsufficientStock).
func (uc *TransferStockUseCase) TransferStock(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.ProductID == "" || in.FromBranchID == "" || in.ToBranchID == "" || in.CreatedBy == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.FromBranchID == in.ToBranchID || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	from, err := uc.branchRepo.GetByID(in.FromBranchID)
	if err != nil {
		return nil, err
	}
	to, err := uc.branchRepo.GetByID(in.ToBranchID)
	if err != nil {
		return nil, err
	}
	if from == nil || to == nil {
		return nil, domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	var result *TransferResult
	var touched []touchedStock

	err = runWithConflictRetry(uc.log, "transfer_stock", func() error {
		now := time.Now()
		// IDs pregenerados para que cada movimiento referencie a su par.
		outID := uuid.New().String()
		inID := uuid.New().String()
		touched = touched[:0]

		return uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			stockRepo repository.StockRepository,
		) error {
			outApplied, fromStock, err := ApplyStockDelta(
				stockRepo, in.ProductID, in.FromBranchID, in.Quantity.Neg(), ledger.PolicyTransfer,
			)
			if err != nil {
				return err
			}
			inApplied, toStock, err := ApplyStockDelta(
				stockRepo, in.ProductID, in.ToBranchID, in.Quantity, ledger.PolicyTransfer,
			)
			if err != nil {
				return err
			}

			outMov := &entity.StockMovement{
				ID:             outID,
				ProductID:      in.ProductID,
				BranchID:       in.FromBranchID,
				MovementType:   entity.MovementTypeTRANSFEROUT,
				QuantityChange: in.Quantity.Neg(),
				PreviousQty:    outApplied.Previous,
				NewQty:         outApplied.New,
				ReferenceID:    inID,
				ReferenceType:  entity.ReferenceTypeMovement,
				Notes:          in.Notes,
				CreatedBy:      in.CreatedBy,
				CreatedAt:      now,
			}
			if err := movRepo.Create(outMov); err != nil {
				return err
			}
			inMov := &entity.StockMovement{
				ID:             inID,
				ProductID:      in.ProductID,
				BranchID:       in.ToBranchID,
				MovementType:   entity.MovementTypeTRANSFERIN,
				QuantityChange: in.Quantity,
				PreviousQty:    inApplied.Previous,
				NewQty:         inApplied.New,
				ReferenceID:    outID,
				ReferenceType:  entity.ReferenceTypeMovement,
				Notes:          in.Notes,
				CreatedBy:      in.CreatedBy,
				CreatedAt:      now,
			}
			if err := movRepo.Create(inMov); err != nil {
				return err
			}

			result = &TransferResult{
				FromQty:       outApplied.New,
				ToQty:         inApplied.New,
				OutMovementID: outID,
				InMovementID:  inID,
			}
			touched = append(touched,
				touchedStock{stock: fromStock, productName: product.Name},
				touchedStock{stock: toStock, productName: product.Name},
			)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.afterStockMutation(ctx, touched)
	return result, nil
}
