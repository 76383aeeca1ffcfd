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

// ReturnExchangeUseCase procesa devoluciones e intercambios contra una venta
// original: reintegra stock por las líneas devueltas, descuenta por las
// entregadas en intercambio y crea una venta derivada enlazada a la original,
// todo en una unidad atómica.
type ReturnExchangeUseCase struct {
	postCommit
	txRunner    TxRunner
	branchRepo  repository.BranchRepository
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
}

// NewReturnExchangeUseCase construye el caso de uso.
func NewReturnExchangeUseCase(
	txRunner TxRunner,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	notifier Notifier,
	stockCache cache.StockCache,
	log *logger.Logger,
) *ReturnExchangeUseCase {
	return &ReturnExchangeUseCase{
		postCommit:  postCommit{notifier: notifier, stockCache: stockCache, log: log},
		txRunner:    txRunner,
		branchRepo:  branchRepo,
		productRepo: productRepo,
		saleRepo:    saleRepo,
	}
}

// ReturnLineInput línea devuelta: el precio se toma de la línea original.
type ReturnLineInput struct {
	ProductID string
	Quantity  decimal.Decimal
}

// ReturnExchangeInput entrada para una devolución y/o intercambio.
type ReturnExchangeInput struct {
	OriginalSaleID string
	BranchID       string
	CustomerID     string // opcional
	ReturnedItems  []ReturnLineInput
	ExchangedItems []SaleLineInput
	CreatedBy      string
}

// CreateExchangeOrReturnSale valida cada línea devuelta contra la venta
// original (cantidad devuelta <= cantidad original por producto, todo o nada),
// aplica +cantidad con movimientos RETURN por lo devuelto y -cantidad con
// movimientos SALE por lo intercambiado, y crea la venta derivada:
// solo devoluciones -> REFUNDED; con intercambio -> EXCHANGED.
// TotalAmount es la suma con signo de las líneas nuevas (no se fuerza a cero).
func (uc *ReturnExchangeUseCase) CreateExchangeOrReturnSale(ctx context.Context, in ReturnExchangeInput) (*entity.Sale, error) {
	if in.OriginalSaleID == "" || in.BranchID == "" || in.CreatedBy == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(in.ReturnedItems) == 0 && len(in.ExchangedItems) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, item := range in.ReturnedItems {
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}
	for _, item := range in.ExchangedItems {
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}

	branch, err := uc.branchRepo.GetByID(in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}

	original, err := uc.saleRepo.GetByID(in.OriginalSaleID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, domain.ErrNotFound
	}
	originalItems, err := uc.saleRepo.GetItemsBySaleID(in.OriginalSaleID)
	if err != nil {
		return nil, err
	}

	// Cantidad y precio original por producto (líneas ORIGINAL de la venta base).
	originalQty := make(map[string]decimal.Decimal)
	originalPrice := make(map[string]decimal.Decimal)
	for _, item := range originalItems {
		if item.ItemType != entity.SaleItemTypeOriginal {
			continue
		}
		if _, ok := originalPrice[item.ProductID]; !ok {
			originalPrice[item.ProductID] = item.UnitPrice
		}
		originalQty[item.ProductID] = originalQty[item.ProductID].Add(item.Quantity)
	}

	// Validar el tope de devolución por producto; una violación aborta todo.
	returnedLines := make([]ledger.Line, 0, len(in.ReturnedItems))
	for _, item := range in.ReturnedItems {
		returnedLines = append(returnedLines, ledger.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	mergedReturns := ledger.MergeLines(returnedLines)
	for _, line := range mergedReturns {
		limit, sold := originalQty[line.ProductID]
		if !sold {
			return nil, domain.ErrNotFound
		}
		if line.Quantity.GreaterThan(limit) {
			return nil, domain.ErrReturnExceeded
		}
	}

	// Resolver productos intercambiados y completar precios de lista.
	exchangeProducts := make(map[string]*entity.Product, len(in.ExchangedItems))
	for i := range in.ExchangedItems {
		item := &in.ExchangedItems[i]
		if _, ok := exchangeProducts[item.ProductID]; !ok {
			product, err := uc.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, domain.ErrNotFound
			}
			exchangeProducts[item.ProductID] = product
		}
		if item.UnitPrice.IsZero() {
			item.UnitPrice = exchangeProducts[item.ProductID].Price
		}
	}

	// Nombres de producto para las alertas de stock bajo de las salidas.
	returnProductNames := make(map[string]string, len(mergedReturns))
	for _, line := range mergedReturns {
		product, err := uc.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product != nil {
			returnProductNames[line.ProductID] = product.Name
		}
	}

	exchangedLines := make([]ledger.Line, 0, len(in.ExchangedItems))
	for _, item := range in.ExchangedItems {
		exchangedLines = append(exchangedLines, ledger.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	mergedExchanges := ledger.MergeLines(exchangedLines)

	status := entity.SaleStatusRefunded
	if len(in.ExchangedItems) > 0 {
		status = entity.SaleStatusExchanged
	}

	var sale *entity.Sale
	var touched []touchedStock

	err = runWithConflictRetry(uc.log, "return_exchange", func() error {
		now := time.Now()
		saleID := uuid.New().String()
		touched = touched[:0]

		return uc.txRunner.RunSale(ctx, func(
			movRepo repository.StockMovementRepository,
			stockRepo repository.StockRepository,
			saleRepo repository.SaleRepository,
		) error {
			// Reintegro de stock por lo devuelto (movimiento RETURN, +cantidad).
			for _, line := range mergedReturns {
				applied, stock, err := ApplyStockDelta(
					stockRepo, line.ProductID, in.BranchID, line.Quantity, ledger.PolicyReturn,
				)
				if err != nil {
					return err
				}
				ref := MovementRef{ID: saleID, Type: entity.ReferenceTypeSale}
				if _, err := RecordMovement(
					movRepo, line.ProductID, in.BranchID, entity.MovementTypeRETURN,
					line.Quantity, applied, ref, in.CreatedBy, now,
				); err != nil {
					return err
				}
				touched = append(touched, touchedStock{
					stock:       stock,
					productName: returnProductNames[line.ProductID],
				})
			}

			// Salida de stock por lo entregado en intercambio (movimiento SALE,
			// misma política que una venta: el negativo se tolera).
			for _, line := range mergedExchanges {
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
					productName: exchangeProducts[line.ProductID].Name,
				})
			}

			// Venta derivada: líneas RETURN con total negativo al precio original,
			// líneas EXCHANGE con total positivo.
			var total decimal.Decimal
			items := make([]*entity.SaleItem, 0, len(in.ReturnedItems)+len(in.ExchangedItems))
			for _, item := range in.ReturnedItems {
				price := originalPrice[item.ProductID]
				lineTotal := item.Quantity.Mul(price).Neg()
				total = total.Add(lineTotal)
				items = append(items, &entity.SaleItem{
					ID:        uuid.New().String(),
					SaleID:    saleID,
					ProductID: item.ProductID,
					ItemType:  entity.SaleItemTypeReturn,
					Quantity:  item.Quantity,
					UnitPrice: price,
					LineTotal: lineTotal,
				})
			}
			for _, item := range in.ExchangedItems {
				lineTotal := item.Quantity.Mul(item.UnitPrice)
				total = total.Add(lineTotal)
				items = append(items, &entity.SaleItem{
					ID:        uuid.New().String(),
					SaleID:    saleID,
					ProductID: item.ProductID,
					ItemType:  entity.SaleItemTypeExchange,
					Quantity:  item.Quantity,
					UnitPrice: item.UnitPrice,
					LineTotal: lineTotal,
				})
			}

			sale = &entity.Sale{
				ID:             saleID,
				BranchID:       in.BranchID,
				CustomerID:     in.CustomerID,
				PaymentMethod:  original.PaymentMethod,
				Status:         status,
				TotalAmount:    total,
				OriginalSaleID: original.ID,
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
		return nil, err
	}

	// Eventos y stock bajo, fuera de la transacción.
	if len(in.ReturnedItems) > 0 {
		if err := uc.notifier.NotifyReturnProcessed(ctx, sale); err != nil {
			uc.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("notificación de devolución falló")
		}
	}
	if len(in.ExchangedItems) > 0 {
		if err := uc.notifier.NotifyExchangeProcessed(ctx, sale); err != nil {
			uc.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("notificación de intercambio falló")
		}
	}
	uc.afterStockMutation(ctx, touched)

	return sale, nil
}
