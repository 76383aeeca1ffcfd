package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/ledger"
)

// SaleHandler maneja las peticiones HTTP de ventas, devoluciones y anulaciones.
type SaleHandler struct {
	createSale     *ledger.CreateSaleUseCase
	returnExchange *ledger.ReturnExchangeUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(createSale *ledger.CreateSaleUseCase, returnExchange *ledger.ReturnExchangeUseCase) *SaleHandler {
	return &SaleHandler{createSale: createSale, returnExchange: returnExchange}
}

// Create POST /api/sales — venta multi-línea, descuento de stock atómico.
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]ledger.SaleLineInput, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, ledger.SaleLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	sale, err := h.createSale.CreateSale(c.Context(), ledger.CreateSaleInput{
		BranchID:       in.BranchID,
		CustomerID:     in.CustomerID,
		PaymentMethod:  in.PaymentMethod,
		Items:          items,
		CreatedBy:      in.CreatedBy,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSaleResponse(sale, nil))
}

// Return POST /api/sales/:id/returns — devolución y/o intercambio contra la venta original.
func (h *SaleHandler) Return(c *fiber.Ctx) error {
	originalSaleID := c.Params("id")
	var in dto.ReturnExchangeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	returned := make([]ledger.ReturnLineInput, 0, len(in.ReturnedItems))
	for _, item := range in.ReturnedItems {
		returned = append(returned, ledger.ReturnLineInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	exchanged := make([]ledger.SaleLineInput, 0, len(in.ExchangedItems))
	for _, item := range in.ExchangedItems {
		exchanged = append(exchanged, ledger.SaleLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	sale, err := h.returnExchange.CreateExchangeOrReturnSale(c.Context(), ledger.ReturnExchangeInput{
		OriginalSaleID: originalSaleID,
		BranchID:       in.BranchID,
		CustomerID:     in.CustomerID,
		ReturnedItems:  returned,
		ExchangedItems: exchanged,
		CreatedBy:      in.CreatedBy,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSaleResponse(sale, nil))
}

// GetByID GET /api/sales/:id — venta con sus líneas.
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, items, err := h.createSale.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToSaleResponse(sale, items))
}

// Cancel POST /api/sales/:id/cancel — anula una venta COMPLETED y reintegra el stock.
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	saleID := c.Params("id")
	var in struct {
		CancelledBy string `json:"cancelled_by"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	sale, err := h.createSale.CancelSale(c.Context(), saleID, in.CancelledBy)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToSaleResponse(sale, nil))
}
