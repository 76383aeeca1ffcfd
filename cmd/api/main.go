package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Ventas-api/internal/application/ledger"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/cache"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/messaging"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Ventas-api/internal/interfaces/http"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	branchRepo := postgres.NewBranchRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Caché de instantáneas de stock: Redis si hay dirección, Noop si no.
	var stockCache cache.StockCache = cache.NoopStockCache{}
	if cfg.Redis.Addr != "" {
		stockCache = cache.NewRedisStockCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de stock en Redis habilitado")
	}

	// Eventos post-commit: RabbitMQ si hay host, Noop si no.
	var notifier ledger.Notifier = ledger.NoopNotifier{}
	if cfg.RabbitMQ.Host != "" {
		mqClient := messaging.NewRabbitMQClient(messaging.RabbitMQConfig{
			Host:     cfg.RabbitMQ.Host,
			Port:     cfg.RabbitMQ.Port,
			User:     cfg.RabbitMQ.User,
			Password: cfg.RabbitMQ.Password,
			Exchange: cfg.RabbitMQ.Exchange,
		}, log.Component("messaging"))
		if err := mqClient.Connect(); err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer mqClient.Close()
		notifier = messaging.NewEventPublisher(mqClient)
		log.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("publicador de eventos habilitado")
	}

	ledgerLog := log.Component("ledger")
	createSaleUC := ledger.NewCreateSaleUseCase(
		txRunner, branchRepo, customerRepo, productRepo, saleRepo,
		notifier, stockCache, ledgerLog,
	)
	returnExchangeUC := ledger.NewReturnExchangeUseCase(
		txRunner, branchRepo, productRepo, saleRepo,
		notifier, stockCache, ledgerLog,
	)
	transferUC := ledger.NewTransferStockUseCase(
		txRunner, branchRepo, productRepo,
		notifier, stockCache, ledgerLog,
	)
	registerMovementUC := ledger.NewRegisterMovementUseCase(
		txRunner, branchRepo, productRepo,
		notifier, stockCache, ledgerLog,
	)
	stockQueryUC := ledger.NewStockQueryUseCase(stockRepo, movRepo, stockCache, ledgerLog)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateSale:       createSaleUC,
		ReturnExchange:   returnExchangeUC,
		TransferStock:    transferUC,
		RegisterMovement: registerMovementUC,
		StockQuery:       stockQueryUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
