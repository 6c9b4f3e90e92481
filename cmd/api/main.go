package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/erp-documentos/internal/application/documents"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
	"github.com/jhoicas/erp-documentos/internal/infrastructure/memory"
	"github.com/jhoicas/erp-documentos/internal/infrastructure/observer"
	"github.com/jhoicas/erp-documentos/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/erp-documentos/internal/interfaces/http"
	"github.com/jhoicas/erp-documentos/pkg/config"
	"github.com/jhoicas/erp-documentos/pkg/logger"
	"github.com/jhoicas/erp-documentos/pkg/money"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner documents.TxRunner
		prices   repository.PurchasePriceRepository
	)
	switch cfg.App.Storage {
	case "memory":
		store := memory.NewStore()
		txRunner, prices = store, store.PurchasePrices()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner, prices = postgres.NewTxRunner(pool), postgres.NewPurchasePriceRepository(pool)
	}

	settings, err := documents.NewSettings(cfg.ERP.DefaultSeries, cfg.ERP.SurchargeRates, cfg.ERP.NumberingRetries, cfg.ERP.AutoReceipts)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración ERP")
	}
	documentsUC := documents.NewUseCase(txRunner, settings, log.Zerolog(),
		observer.NewPurchasePriceObserver(prices),
		observer.NewLogObserver(log.Zerolog()),
	)

	formatter, err := money.NewFormatter(cfg.ERP.DisplayLocale, cfg.ERP.Currency)
	if err != nil {
		log.Fatal().Err(err).Msg("formato de importes")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ERP Documentos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Documents: documentsUC,
		Money:     formatter,
		JWTSecret: cfg.JWT.Secret,
		Log:       log.Zerolog(),
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
