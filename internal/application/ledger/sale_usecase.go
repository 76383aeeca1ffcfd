package ledger

import (
	"context"
	"errors"
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

// CreateSaleUseCase crea una venta multi-línea y descuenta el stock de cada
// producto en una sola transacción. Después del commit publica eventos y evalúa
// stock bajo (best-effort, fuera de la transacción).
type CreateSaleUseCase struct {
	postCommit
	txRunner     TxRunner
	branchRepo   repository.BranchRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner TxRunner,
	branchRepo repository.BranchRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	notifier Notifier,
	stockCache cache.StockCache,
	log *logger.Logger,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		postCommit:   postCommit{notifier: notifier, stockCache: stockCache, log: log},
		txRunner:     txRunner,
		branchRepo:   branchRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		saleRepo:     saleRepo,
	}
}

// SaleLineInput línea de venta tal como llega del punto de venta.
// UnitPrice en cero toma el precio de lista del producto.
type SaleLineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// CreateSaleInput entrada para crear una venta.
type CreateSaleInput struct {
	BranchID       string
	CustomerID     string // opcional
	PaymentMethod  string
	Items          []SaleLineInput
	CreatedBy      string
	IdempotencyKey string // opcional: reintento seguro de una creación con timeout
}

// touchedStock instantánea post-mutación de un producto afectado, capturada
// dentro de la transacción para la evaluación de stock bajo tras el commit.
type touchedStock struct {
	stock       *entity.Stock
	productName string
}

// CreateSale valida la solicitud, consolida líneas duplicadas en deltas netos
// por producto, aplica un mutador+movimiento por producto distinto y persiste
// la venta con sus líneas, todo en una unidad atómica. Las ventas toleran
// resultado negativo por política (vender por delante del stock registrado).
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, in CreateSaleInput) (*entity.Sale, error) {
	if in.BranchID == "" || in.CreatedBy == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range in.Items {
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}

	// Reintento idempotente: si la clave ya creó una venta, devolverla sin aplicar nada.
	if in.IdempotencyKey != "" {
		existing, err := uc.saleRepo.GetByIdempotencyKey(in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	branch, err := uc.branchRepo.GetByID(in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	if in.CustomerID != "" {
		customer, err := uc.customerRepo.GetByID(in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, domain.ErrNotFound
		}
	}

	// Resolver todos los productos antes de la transacción; un ID desconocido
	// aborta la operación completa, no se crea venta parcial.
	productsByID := make(map[string]*entity.Product, len(in.Items))
	for i := range in.Items {
		item := &in.Items[i]
		if _, ok := productsByID[item.ProductID]; ok {
			continue
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		productsByID[item.ProductID] = product
	}
	for i := range in.Items {
		if in.Items[i].UnitPrice.IsZero() {
			in.Items[i].UnitPrice = productsByID[in.Items[i].ProductID].Price
		}
	}

	// Consolidar líneas duplicadas: un solo delta neto (y un solo movimiento)
	// por producto distinto, no uno por línea.
	lines := make([]ledger.Line, 0, len(in.Items))
	for _, item := range in.Items {
		lines = append(lines, ledger.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	merged := ledger.MergeLines(lines)

	var sale *entity.Sale
	var touched []touchedStock

	err = runWithConflictRetry(uc.log, "create_sale", func() error {
		now := time.Now()
		saleID := uuid.New().String()
		touched = touched[:0]

		return uc.txRunner.RunSale(ctx, func(
			movRepo repository.StockMovementRepository,
			stockRepo repository.StockRepository,
			saleRepo repository.SaleRepository,
		) error {
			// Un mutador + un movimiento SALE por producto distinto.
			for _, line := range merged {
				applied, stock, err := ApplyStockDelta(
					stockRepo, line.ProductID, in.BranchID, line.Quantity.Neg(), ledger.PolicySale,
				)
				if err != nil {
					return err
				}
				ref := MovementRef{ID: saleID, Type: entity.ReferenceTypeSale}
				if _, err := RecordMovement(
					movRepo, line.ProductID, in.BranchID, entity.MovementTypeSALE,
					line.Quantity.Neg(), applied, ref, in.CreatedBy, now,
				); err != nil {
					return err
				}
				touched = append(touched, touchedStock{
					stock:       stock,
					productName: productsByID[line.ProductID].Name,
				})
			}

			// Totales desde la solicitud, no re-derivados del stock.
			var total decimal.Decimal
			items := make([]*entity.SaleItem, 0, len(in.Items))
			for _, item := range in.Items {
				lineTotal := item.Quantity.Mul(item.UnitPrice)
				total = total.Add(lineTotal)
				items = append(items, &entity.SaleItem{
					ID:        uuid.New().String(),
					SaleID:    saleID,
					ProductID: item.ProductID,
					ItemType:  entity.SaleItemTypeOriginal,
					Quantity:  item.Quantity,
					UnitPrice: item.UnitPrice,
					LineTotal: lineTotal,
				})
			}

			sale = &entity.Sale{
				ID:             saleID,
				BranchID:       in.BranchID,
				CustomerID:     in.CustomerID,
				PaymentMethod:  in.PaymentMethod,
				Status:         entity.SaleStatusCompleted,
				TotalAmount:    total,
				IdempotencyKey: in.IdempotencyKey,
				CreatedBy:      in.CreatedBy,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := saleRepo.Create(sale); err != nil {
				return err
			}
			for _, item := range items {
				if err := saleRepo.CreateItem(item); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		// Carrera sobre la clave idempotente: otro worker creó la venta primero.
		if errors.Is(err, domain.ErrDuplicate) && in.IdempotencyKey != "" {
			if existing, getErr := uc.saleRepo.GetByIdempotencyKey(in.IdempotencyKey); getErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	// Fuera de la transacción: eventos y evaluación de stock bajo, best-effort.
	if err := uc.notifier.NotifySaleCreated(ctx, sale); err != nil {
		uc.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("notificación de venta creada falló")
	}
	uc.afterStockMutation(ctx, touched)

	return sale, nil
}

// CancelSale anula una venta COMPLETED: reintegra el stock de cada línea
// ORIGINAL con movimientos RETURN que referencian la venta y marca la venta
// como CANCELLED, todo en una transacción. Los demás estados terminales rechazan.
func (uc *CreateSaleUseCase) CancelSale(ctx context.Context, saleID, cancelledBy string) (*entity.Sale, error) {
	if saleID == "" || cancelledBy == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.Status != entity.SaleStatusCompleted {
		return nil, domain.ErrConflict
	}
	items, err := uc.saleRepo.GetItemsBySaleID(saleID)
	if err != nil {
		return nil, err
	}

	lines := make([]ledger.Line, 0, len(items))
	for _, item := range items {
		if item.ItemType != entity.SaleItemTypeOriginal {
			continue
		}
		lines = append(lines, ledger.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	merged := ledger.MergeLines(lines)

	var touched []touchedStock
	err = runWithConflictRetry(uc.log, "cancel_sale", func() error {
		now := time.Now()
		touched = touched[:0]
		return uc.txRunner.RunSale(ctx, func(
			movRepo repository.StockMovementRepository,
			stockRepo repository.StockRepository,
			saleRepo repository.SaleRepository,
		) error {
			for _, line := range merged {
				applied, stock, err := ApplyStockDelta(
					stockRepo, line.ProductID, sale.BranchID, line.Quantity, ledger.PolicyReturn,
				)
				if err != nil {
					return err
				}
				ref := MovementRef{ID: sale.ID, Type: entity.ReferenceTypeSale, Notes: "anulación de venta"}
				if _, err := RecordMovement(
					movRepo, line.ProductID, sale.BranchID, entity.MovementTypeRETURN,
					line.Quantity, applied, ref, cancelledBy, now,
				); err != nil {
					return err
				}
				touched = append(touched, touchedStock{stock: stock})
			}
			// Condicional sobre COMPLETED: si otra anulación ganó entre la
			// lectura inicial y esta transacción, cero filas -> ErrConflict
			// y los reintegros de arriba se revierten con la transacción.
			return saleRepo.TransitionStatus(sale.ID, entity.SaleStatusCompleted, entity.SaleStatusCancelled)
		})
	})
	if err != nil {
		return nil, err
	}
	sale.Status = entity.SaleStatusCancelled

	uc.afterStockMutation(ctx, touched)
	return sale, nil
}

// GetSale venta con sus líneas.
func (uc *CreateSaleUseCase) GetSale(_ context.Context, saleID string) (*entity.Sale, []*entity.SaleItem, error) {
	if saleID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, nil, err
	}
	if sale == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := uc.saleRepo.GetItemsBySaleID(saleID)
	if err != nil {
		return nil, nil, err
	}
	return sale, items, nil
}

