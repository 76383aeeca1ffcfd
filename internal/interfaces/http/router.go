package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Ventas-api/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateSale       *ledger.CreateSaleUseCase
	ReturnExchange   *ledger.ReturnExchangeUseCase
	TransferStock    *ledger.TransferStockUseCase
	RegisterMovement *ledger.RegisterMovementUseCase
	StockQuery       *ledger.StockQueryUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Ventas, devoluciones e intercambios
	sales := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.CreateSale, deps.ReturnExchange)
	sales.Post("/", saleHandler.Create)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Post("/:id/returns", saleHandler.Return)
	sales.Post("/:id/cancel", saleHandler.Cancel)

	// Stock: traslados, movimientos directos y consultas
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.TransferStock, deps.RegisterMovement, deps.StockQuery)
	stock.Post("/transfers", stockHandler.Transfer)
	stock.Post("/movements", stockHandler.RegisterMovement)
	stock.Get("/:branch_id", stockHandler.ListStock)
	stock.Get("/:branch_id/movements", stockHandler.ListMovements)
	stock.Get("/:branch_id/:product_id", stockHandler.GetStock)
}
