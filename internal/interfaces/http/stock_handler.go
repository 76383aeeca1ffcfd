package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/ledger"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP de stock: traslados, movimientos
// directos y consultas.
type StockHandler struct {
	transfer *ledger.TransferStockUseCase
	movement *ledger.RegisterMovementUseCase
	query    *ledger.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(
	transfer *ledger.TransferStockUseCase,
	movement *ledger.RegisterMovementUseCase,
	query *ledger.StockQueryUseCase,
) *StockHandler {
	return &StockHandler{transfer: transfer, movement: movement, query: query}
}

// Transfer POST /api/stock/transfers — traslado entre sucursales.
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.transfer.TransferStock(c.Context(), ledger.TransferInput{
		ProductID:    in.ProductID,
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		Quantity:     in.Quantity,
		Notes:        in.Notes,
		CreatedBy:    in.CreatedBy,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		FromQty:       result.FromQty,
		ToQty:         result.ToQty,
		OutMovementID: result.OutMovementID,
		InMovementID:  result.InMovementID,
	})
}

// RegisterMovement POST /api/stock/movements — PURCHASE, ADJUSTMENT o DAMAGE.
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movement, err := h.movement.RegisterMovement(c.Context(), ledger.MovementInput{
		ProductID: in.ProductID,
		BranchID:  in.BranchID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Notes:     in.Notes,
		CreatedBy: in.CreatedBy,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(movement))
}

// GetStock GET /api/stock/:branch_id/:product_id — instantánea de stock.
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	stock, err := h.query.GetStock(c.Context(), c.Params("product_id"), c.Params("branch_id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToStockResponse(stock))
}

// ListMovements GET /api/stock/:branch_id/movements — historial de una sucursal,
// filtrable por producto y rango de fechas.
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	branchID := c.Params("branch_id")
	productID := c.Query("product_id")
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha 'from' inválida"})
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha 'to' inválida"})
		}
		to = &t
	}

	var (
		movements []*entity.StockMovement
		err       error
	)
	if productID != "" {
		movements, err = h.query.ListMovementsByProduct(c.Context(), productID, branchID, from, to, limit, offset)
	} else {
		movements, err = h.query.ListMovementsByBranch(c.Context(), branchID, from, to, limit, offset)
	}
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.ToMovementResponse(m))
	}
	return c.JSON(out)
}

// ListStock GET /api/stock/:branch_id — stock de toda la sucursal.
func (h *StockHandler) ListStock(c *fiber.Ctx) error {
	stocks, err := h.query.ListStockByBranch(c.Context(), c.Params("branch_id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.StockResponse, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, dto.ToStockResponse(s))
	}
	return c.JSON(out)
}
