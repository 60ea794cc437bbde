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
	appanalytics "github.com/jhoicas/Tablero-api/internal/application/analytics"
	"github.com/jhoicas/Tablero-api/internal/application/auth"
	"github.com/jhoicas/Tablero-api/internal/application/billing"
	"github.com/jhoicas/Tablero-api/internal/application/usecase"
	"github.com/jhoicas/Tablero-api/internal/infrastructure/export"
	infrapdf "github.com/jhoicas/Tablero-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Tablero-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Tablero-api/internal/interfaces/http"
	"github.com/jhoicas/Tablero-api/pkg/config"
	"github.com/jhoicas/Tablero-api/pkg/logger"
)

// @title                      Tablero API
// @version                    1.0
// @description                API multi-tenant: databases con tablas semánticas, facturación y dashboard.
// @securityDefinitions.apikey Bearer
// @in                         header
// @name                       Authorization
// @description                Token JWT con prefijo "Bearer "
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
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

	tenantRepo := postgres.NewTenantRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	databaseRepo := postgres.NewDatabaseRepository(pool)
	tableRepo := postgres.NewTableRepository(pool)
	rowRepo := postgres.NewRowRepository(pool)
	seriesRepo := postgres.NewSeriesRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	invoicingDefaults := billing.InvoicingDefaults{
		Series:    cfg.Invoicing.DefaultSeries,
		Currency:  cfg.Invoicing.DefaultCurrency,
		PadWidth:  cfg.Invoicing.NumberPadWidth,
		Separator: cfg.Invoicing.Separator,
	}

	authUC := auth.NewAuthUseCase(userRepo, tenantRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(userRepo)
	databaseUC := usecase.NewDatabaseUseCase(databaseRepo)
	tablesUC := usecase.NewTablesUseCase(databaseRepo, tableRepo, rowRepo)
	moduleSvc := usecase.NewModuleService(tenantRepo)

	billingLog := log.Component("facturacion")
	customerUC := billing.NewCustomerUseCase(txRunner, databaseRepo, tableRepo, rowRepo)
	schemaManager := billing.NewSchemaManager(databaseRepo, txRunner, billingLog)
	allocator := billing.NewSeriesAllocator(databaseRepo, seriesRepo, invoicingDefaults, billingLog)
	createInvoiceUC := billing.NewCreateInvoiceUseCase(txRunner, databaseRepo, allocator, invoicingDefaults, billingLog)
	invoiceQueryUC := billing.NewInvoiceQueryUseCase(txRunner, databaseRepo, tenantRepo, tableRepo, rowRepo, billingLog)

	// Documentos de factura: representación gráfica (PDF) y UBL 2.1 (XML)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	invoicePDFUC := billing.NewInvoicePDFUseCase(invoiceQueryUC, pdfGenerator)
	xmlExporter := export.NewUBLExporter()
	invoiceExportUC := billing.NewInvoiceExportUseCase(invoiceQueryUC, xmlExporter)

	dashboardUC := appanalytics.NewDashboardUseCase(databaseRepo, analyticsRepo)

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
		Title:    "Tablero API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		UserUC:        userUC,
		DatabaseUC:    databaseUC,
		TablesUC:      tablesUC,
		CustomerUC:    customerUC,
		CreateInvoice: createInvoiceUC,
		InvoiceQuery:  invoiceQueryUC,
		InvoicePDF:    invoicePDFUC,
		InvoiceExport: invoiceExportUC,
		SchemaManager: schemaManager,
		Series:        allocator,
		DashboardUC:   dashboardUC,
		Modules:       moduleSvc,
		JWTSecret:     cfg.JWT.Secret,
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
