// seed inicializa una instancia demo de Tablero: tenant con usuario admin,
// database con un catálogo de productos etiquetado semánticamente, cliente de
// ejemplo y serie de facturación INV. Con eso la API puede facturar de
// inmediato (login → POST /api/databases/:id/invoices).
//
// Uso: go run ./cmd/seed [-email demo@tablero.local] [-password ...] [-tenant ...]
// Si el email ya está registrado no siembra nada (la demo ya existe).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tablero-api/internal/application/auth"
	"github.com/jhoicas/Tablero-api/internal/application/billing"
	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/application/usecase"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/semantic"
	"github.com/jhoicas/Tablero-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Tablero-api/pkg/config"
	"github.com/jhoicas/Tablero-api/pkg/logger"
)

func main() {
	email := flag.String("email", "demo@tablero.local", "email del usuario admin demo")
	password := flag.String("password", "tablero-demo", "password del usuario admin demo (mínimo 8 caracteres)")
	tenantName := flag.String("tenant", "Demo Tablero", "nombre del tenant demo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

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
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, tenantRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	databaseUC := usecase.NewDatabaseUseCase(databaseRepo)
	tablesUC := usecase.NewTablesUseCase(databaseRepo, tableRepo, rowRepo)
	customerUC := billing.NewCustomerUseCase(txRunner, databaseRepo, tableRepo, rowRepo)
	allocator := billing.NewSeriesAllocator(databaseRepo, seriesRepo, billing.InvoicingDefaults{
		Series:    cfg.Invoicing.DefaultSeries,
		Currency:  cfg.Invoicing.DefaultCurrency,
		PadWidth:  cfg.Invoicing.NumberPadWidth,
		Separator: cfg.Invoicing.Separator,
	}, log)

	// Tenant + usuario admin. Register activa los módulos por defecto
	// (invoicing, dashboard, exports).
	user, err := authUC.Register(ctx, dto.RegisterRequest{
		TenantName: *tenantName,
		Email:      *email,
		Password:   *password,
		Name:       "Admin Demo",
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			log.Info().Str("email", *email).Msg("la instancia demo ya existe, nada que sembrar")
			return
		}
		log.Fatal().Err(err).Msg("registrar tenant demo")
	}

	db, err := databaseUC.Create(ctx, user.TenantID, dto.CreateDatabaseRequest{Name: "Principal"})
	if err != nil {
		log.Fatal().Err(err).Msg("crear database demo")
	}

	table, err := tablesUC.CreateTable(ctx, user.TenantID, db.ID, dto.CreateTableRequest{
		Name: "products",
		Columns: []dto.ColumnRequest{
			{Name: "Nombre", Type: "text", SemanticType: string(semantic.TypeName)},
			{Name: "SKU", Type: "text", SemanticType: string(semantic.TypeSKU)},
			{Name: "Descripción", Type: "text", SemanticType: string(semantic.TypeDescription)},
			{Name: "Precio", Type: "number", SemanticType: string(semantic.TypeUnitPrice)},
			{Name: "Moneda", Type: "text", SemanticType: string(semantic.TypeCurrency)},
			{Name: "IVA", Type: "number", SemanticType: string(semantic.TypeVatRate)},
			{Name: "Unidad", Type: "text", SemanticType: string(semantic.TypeUnitOfMeasure)},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear tabla products")
	}

	// Celdas por id de columna, ubicadas por etiqueta semántica.
	byTag := make(map[string]string, len(table.Columns))
	for _, col := range table.Columns {
		if col.SemanticType != "" {
			byTag[col.SemanticType] = col.ID
		}
	}

	products := []struct {
		name, sku, desc, currency, unit string
		price, vat                      decimal.Decimal
	}{
		{"Teclado mecánico", "SKU-001", "Switch rojo, distribución ANSI", "USD", "UND", decimal.NewFromFloat(49.90), decimal.NewFromInt(19)},
		{"Mouse inalámbrico", "SKU-002", "2.4 GHz con receptor USB-C", "USD", "UND", decimal.NewFromFloat(19.50), decimal.NewFromInt(19)},
		{"Monitor 27 pulgadas", "SKU-003", "IPS 144 Hz", "USD", "UND", decimal.NewFromInt(289), decimal.NewFromInt(19)},
	}
	for _, p := range products {
		cells := map[string]json.RawMessage{
			byTag[string(semantic.TypeName)]:          semantic.EncodeString(p.name),
			byTag[string(semantic.TypeSKU)]:           semantic.EncodeString(p.sku),
			byTag[string(semantic.TypeDescription)]:   semantic.EncodeString(p.desc),
			byTag[string(semantic.TypeUnitPrice)]:     semantic.EncodeDecimal(p.price),
			byTag[string(semantic.TypeCurrency)]:      semantic.EncodeString(p.currency),
			byTag[string(semantic.TypeVatRate)]:       semantic.EncodeDecimal(p.vat),
			byTag[string(semantic.TypeUnitOfMeasure)]: semantic.EncodeString(p.unit),
		}
		if _, err := tablesUC.CreateRow(ctx, user.TenantID, db.ID, table.ID, dto.CreateRowRequest{Cells: cells}); err != nil {
			log.Fatal().Err(err).Str("producto", p.name).Msg("crear producto demo")
		}
	}

	// Crea de paso las tablas del esquema de facturación (customers, invoices,
	// invoice_items) vía el aseguramiento transaccional.
	customer, err := customerUC.Create(ctx, user.TenantID, db.ID, dto.CreateCustomerRequest{
		Name:  "ACME S.A.S.",
		TaxID: "900123456-7",
		Email: "compras@acme.example",
		Phone: "+57 300 000 0000",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear cliente demo")
	}

	series, err := allocator.CreateSeries(ctx, user.TenantID, db.ID, dto.CreateSeriesRequest{
		Series:      "INV",
		Prefix:      "INV",
		IncludeYear: true,
		ResetYearly: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear serie INV")
	}

	log.Info().
		Str("tenant_id", user.TenantID).
		Str("database_id", db.ID).
		Str("products_table_id", table.ID).
		Str("customer_id", customer.ID).
		Str("series", series.Series).
		Str("email", *email).
		Msg("demo sembrada; inicie sesión con las credenciales indicadas")
}
