package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/Tablero-api/internal/application/analytics"
	"github.com/jhoicas/Tablero-api/internal/application/auth"
	"github.com/jhoicas/Tablero-api/internal/application/billing"
	"github.com/jhoicas/Tablero-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	UserUC        *usecase.UserUseCase
	DatabaseUC    *usecase.DatabaseUseCase
	TablesUC      *usecase.TablesUseCase
	CustomerUC    *billing.CustomerUseCase
	CreateInvoice *billing.CreateInvoiceUseCase
	InvoiceQuery  *billing.InvoiceQueryUseCase
	InvoicePDF    *billing.InvoicePDFUseCase
	InvoiceExport *billing.InvoiceExportUseCase
	SchemaManager *billing.SchemaManager
	Series        *billing.SeriesAllocator
	DashboardUC   *appanalytics.DashboardUseCase
	Modules       *usecase.ModuleService
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Middlewares compartidos: RBAC de escritura y gates de módulos SaaS.
	// viewer solo lee; admin administra series y esquema de facturación.
	canWrite := RequireRole("admin", "editor")
	adminOnly := RequireRole("admin")
	invoicing := RequireModule("invoicing", deps.Modules)
	exports := RequireModule("exports", deps.Modules)

	// Usuarios del tenant (protegido, solo admin)
	users := protected.Group("/users", adminOnly)
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Put("/:userID/status", userHandler.UpdateStatus)
	users.Delete("/:userID", userHandler.Delete)

	// Módulos SaaS del tenant (protegido, sin gate: es el punto de descubrimiento)
	moduleHandler := NewModuleHandler(deps.Modules)
	protected.Get("/modules", moduleHandler.List)

	// Databases (protegido)
	databases := protected.Group("/databases")
	databaseHandler := NewDatabaseHandler(deps.DatabaseUC)
	databases.Post("/", canWrite, databaseHandler.Create)
	databases.Get("/", databaseHandler.List)
	databases.Get("/:databaseID", databaseHandler.GetByID)

	// Tablas, columnas y filas (protegido)
	tableHandler := NewTableHandler(deps.TablesUC)
	databases.Post("/:databaseID/tables", canWrite, tableHandler.CreateTable)
	databases.Get("/:databaseID/tables", tableHandler.ListTables)
	databases.Get("/:databaseID/tables/:tableID", tableHandler.GetTable)
	databases.Post("/:databaseID/tables/:tableID/columns", canWrite, tableHandler.AddColumn)
	databases.Get("/:databaseID/tables/:tableID/invoice-check", tableHandler.InvoiceCheck)
	databases.Post("/:databaseID/tables/:tableID/rows", canWrite, tableHandler.CreateRow)
	databases.Get("/:databaseID/tables/:tableID/rows", tableHandler.ListRows)
	databases.Get("/:databaseID/tables/:tableID/rows/:rowID", tableHandler.GetRow)
	databases.Put("/:databaseID/tables/:tableID/rows/:rowID/cells/:columnID", canWrite, tableHandler.UpdateCell)
	databases.Delete("/:databaseID/tables/:tableID/rows", canWrite, tableHandler.DeleteRows)

	// Customers (protegido, viven en la tabla customers de cada database)
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	databases.Post("/:databaseID/customers", canWrite, customerHandler.Create)
	databases.Get("/:databaseID/customers", customerHandler.List)
	databases.Get("/:databaseID/customers/:customerID", customerHandler.Get)

	// Series de numeración (protegido, módulo invoicing; aprovisionar es de admin)
	seriesHandler := NewSeriesHandler(deps.Series)
	databases.Post("/:databaseID/series", invoicing, adminOnly, seriesHandler.Create)
	databases.Get("/:databaseID/series", invoicing, seriesHandler.List)
	databases.Get("/:databaseID/series/:series", invoicing, seriesHandler.Get)

	// Invoices (protegido, módulo invoicing)
	invoiceHandler := NewInvoiceHandler(deps.CreateInvoice, deps.InvoiceQuery, deps.InvoicePDF, deps.InvoiceExport, deps.SchemaManager)
	databases.Post("/:databaseID/invoice-schema", invoicing, adminOnly, invoiceHandler.EnsureSchema)
	databases.Post("/:databaseID/invoices", invoicing, canWrite, invoiceHandler.Create)
	databases.Get("/:databaseID/invoices", invoicing, invoiceHandler.List)

	invoices := protected.Group("/invoices", invoicing)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Delete("/:id", canWrite, invoiceHandler.Delete)
	invoices.Get("/:id/pdf", exports, invoiceHandler.DownloadPDF)
	invoices.Get("/:id/xml", exports, invoiceHandler.DownloadXML)

	// Dashboard (protegido, módulo dashboard)
	dashboard := protected.Group("/dashboard", RequireModule("dashboard", deps.Modules))
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/summary", dashboardHandler.GetSummary)
}
