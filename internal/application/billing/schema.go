package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
	"github.com/jhoicas/Tablero-api/internal/domain/semantic"
	"github.com/jhoicas/Tablero-api/pkg/logger"
)

// Tablas del sistema que el módulo de facturación garantiza en cada database.
const (
	SystemTableInvoices     = "invoices"
	SystemTableInvoiceItems = "invoice_items"
	SystemTableCustomers    = "customers"
)

type schemaColumn struct {
	Name     string
	Type     string
	Semantic semantic.SemanticType
}

type schemaTable struct {
	Name    string
	Columns []schemaColumn
}

// Esquema canónico de facturación. El aseguramiento agrega lo que falte y
// nunca toca columnas ya existentes: renombres del usuario sobreviven mientras
// la etiqueta semántica se conserve.
var invoiceSchemaTables = []schemaTable{
	{
		Name: SystemTableInvoices,
		Columns: []schemaColumn{
			{Name: "invoice_number", Type: entity.ColumnTypeText, Semantic: semantic.TypeInvoiceNumber},
			{Name: "invoice_series", Type: entity.ColumnTypeText, Semantic: semantic.TypeInvoiceSeries},
			{Name: "customer_id", Type: entity.ColumnTypeReference, Semantic: semantic.TypeInvoiceCustomerID},
			{Name: "invoice_date", Type: entity.ColumnTypeDate, Semantic: semantic.TypeInvoiceDate},
			{Name: "due_date", Type: entity.ColumnTypeDate, Semantic: semantic.TypeDueDate},
			{Name: "payment_terms", Type: entity.ColumnTypeText, Semantic: semantic.TypePaymentTerms},
			{Name: "payment_method", Type: entity.ColumnTypeText, Semantic: semantic.TypePaymentMethod},
			{Name: "notes", Type: entity.ColumnTypeText, Semantic: semantic.TypeNotes},
			{Name: "status", Type: entity.ColumnTypeText, Semantic: semantic.TypeStatus},
			{Name: "base_currency", Type: entity.ColumnTypeText, Semantic: semantic.TypeBaseCurrency},
			{Name: "subtotal", Type: entity.ColumnTypeNumber, Semantic: semantic.TypeSubtotal},
			{Name: "tax_total", Type: entity.ColumnTypeNumber, Semantic: semantic.TypeTaxTotal},
			{Name: "total_amount", Type: entity.ColumnTypeNumber, Semantic: semantic.TypeTotalAmount},
		},
	},
	{
		Name: SystemTableInvoiceItems,
		Columns: []schemaColumn{
			{Name: "invoice_ref", Type: entity.ColumnTypeReference, Semantic: semantic.TypeInvoiceRef},
			{Name: "product_ref", Type: entity.ColumnTypeReference, Semantic: semantic.TypeProductRef},
			{Name: "description", Type: entity.ColumnTypeText, Semantic: semantic.TypeDescription},
			{Name: "quantity", Type: entity.ColumnTypeNumber, Semantic: semantic.TypeQuantity},
			{Name: "unit_price", Type: entity.ColumnTypeNumber, Semantic: semantic.TypeUnitPrice},
			{Name: "currency", Type: entity.ColumnTypeText, Semantic: semantic.TypeCurrency},
			{Name: "vat_rate", Type: entity.ColumnTypeNumber, Semantic: semantic.TypeVatRate},
			{Name: "unit_of_measure", Type: entity.ColumnTypeText, Semantic: semantic.TypeUnitOfMeasure},
		},
	},
	{
		Name: SystemTableCustomers,
		Columns: []schemaColumn{
			{Name: "name", Type: entity.ColumnTypeText, Semantic: semantic.TypeName},
			{Name: "tax_id", Type: entity.ColumnTypeText, Semantic: semantic.TypeTaxID},
			{Name: "email", Type: entity.ColumnTypeText, Semantic: semantic.TypeEmail},
			{Name: "phone", Type: entity.ColumnTypeText, Semantic: semantic.TypePhone},
		},
	},
}

// systemTable una tabla del sistema ya garantizada, con columnas e índice
// semántico listos para escribir celdas.
type systemTable struct {
	Table   *entity.Table
	Columns []entity.Column
	Index   semantic.Index
}

// invoiceTables el esquema de facturación completo de una database.
type invoiceTables struct {
	Invoices  systemTable
	Items     systemTable
	Customers systemTable
	Changed   bool
	Info      []dto.SchemaTableInfo
}

// ensureInvoiceSchema garantiza las tres tablas del sistema en la database.
// Idempotente: si todo existe ya con sus columnas, no escribe nada. El caller
// decide la transacción pasando el repo que corresponda.
func ensureInvoiceSchema(ctx context.Context, tables repository.TableRepository, databaseID string) (*invoiceTables, error) {
	out := &invoiceTables{}
	for _, spec := range invoiceSchemaTables {
		st, info, err := ensureSystemTable(ctx, tables, databaseID, spec)
		if err != nil {
			return nil, err
		}
		if info.Created || len(info.AddedColumns) > 0 {
			out.Changed = true
		}
		out.Info = append(out.Info, info)

		switch spec.Name {
		case SystemTableInvoices:
			out.Invoices = st
		case SystemTableInvoiceItems:
			out.Items = st
		case SystemTableCustomers:
			out.Customers = st
		}
	}
	return out, nil
}

func ensureSystemTable(ctx context.Context, tables repository.TableRepository, databaseID string, spec schemaTable) (systemTable, dto.SchemaTableInfo, error) {
	info := dto.SchemaTableInfo{Name: spec.Name}

	table, err := tables.GetByName(ctx, databaseID, spec.Name)
	switch {
	case err == nil:
		// Tabla existente: completar columnas faltantes al final.
		columns, err := tables.GetColumns(ctx, table.ID)
		if err != nil {
			return systemTable{}, info, err
		}
		columns, added, err := addMissingColumns(ctx, tables, table.ID, columns, spec.Columns)
		if err != nil {
			return systemTable{}, info, err
		}
		info.TableID = table.ID
		info.AddedColumns = added
		return systemTable{Table: table, Columns: columns, Index: semantic.BuildIndex(columns)}, info, nil

	case errors.Is(err, domain.ErrNotFound):
		now := time.Now()
		table = &entity.Table{
			ID:         uuid.New().String(),
			DatabaseID: databaseID,
			Name:       spec.Name,
			Kind:       entity.TableKindSystem,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tables.Create(ctx, table); err != nil {
			return systemTable{}, info, err
		}
		columns := make([]entity.Column, 0, len(spec.Columns))
		for i, c := range spec.Columns {
			col := entity.Column{
				ID:           uuid.New().String(),
				TableID:      table.ID,
				Name:         c.Name,
				Type:         c.Type,
				SemanticType: string(c.Semantic),
				Position:     i,
			}
			if err := tables.CreateColumn(ctx, &col); err != nil {
				return systemTable{}, info, err
			}
			columns = append(columns, col)
		}
		info.TableID = table.ID
		info.Created = true
		return systemTable{Table: table, Columns: columns, Index: semantic.BuildIndex(columns)}, info, nil

	default:
		return systemTable{}, info, err
	}
}

// addMissingColumns agrega las columnas del esquema que la tabla aún no tiene.
// Una columna cuenta como presente si alguna existente lleva su etiqueta
// semántica o su nombre: jamás se duplica ni se modifica lo que hay.
func addMissingColumns(ctx context.Context, tables repository.TableRepository, tableID string, existing []entity.Column, wanted []schemaColumn) ([]entity.Column, []string, error) {
	idx := semantic.BuildIndex(existing)
	byName := make(map[string]bool, len(existing))
	for _, c := range existing {
		byName[c.Name] = true
	}

	var added []string
	columns := existing
	for _, w := range wanted {
		if idx.Has(w.Semantic) || byName[w.Name] {
			continue
		}
		col := entity.Column{
			ID:           uuid.New().String(),
			TableID:      tableID,
			Name:         w.Name,
			Type:         w.Type,
			SemanticType: string(w.Semantic),
			Position:     len(columns),
		}
		if err := tables.CreateColumn(ctx, &col); err != nil {
			return nil, nil, err
		}
		columns = append(columns, col)
		added = append(added, w.Name)
	}
	return columns, added, nil
}

// Etiquetas sin las cuales no se puede ensamblar una factura. El resto de
// columnas del esquema son opcionales: si faltan, sus celdas se omiten.
var (
	requiredInvoiceTags = []semantic.SemanticType{
		semantic.TypeInvoiceNumber,
		semantic.TypeInvoiceSeries,
		semantic.TypeInvoiceCustomerID,
		semantic.TypeInvoiceDate,
		semantic.TypeStatus,
		semantic.TypeBaseCurrency,
		semantic.TypeSubtotal,
		semantic.TypeTaxTotal,
		semantic.TypeTotalAmount,
	}
	requiredItemTags = []semantic.SemanticType{
		semantic.TypeInvoiceRef,
		semantic.TypeQuantity,
		semantic.TypeUnitPrice,
		semantic.TypeCurrency,
		semantic.TypeVatRate,
	}
)

// checkInvoiceSchema verifica que, tras el aseguramiento, las tablas exponen
// las etiquetas críticas. Puede fallar si el usuario ocupó el nombre de una
// columna del sistema sin su etiqueta semántica: eso requiere intervención.
func checkInvoiceSchema(schema *invoiceTables) error {
	for _, tag := range requiredInvoiceTags {
		if !schema.Invoices.Index.Has(tag) {
			return fmt.Errorf("la tabla %s no expone la etiqueta %q: %w", SystemTableInvoices, string(tag), domain.ErrSchema)
		}
	}
	for _, tag := range requiredItemTags {
		if !schema.Items.Index.Has(tag) {
			return fmt.Errorf("la tabla %s no expone la etiqueta %q: %w", SystemTableInvoiceItems, string(tag), domain.ErrSchema)
		}
	}
	return nil
}

// SchemaManager expone el aseguramiento del esquema de facturación como
// operación administrativa independiente de la creación de facturas.
type SchemaManager struct {
	dbRepo repository.DatabaseRepository
	tx     InvoicingTxRunner
	log    *logger.Logger
}

// NewSchemaManager construye el administrador de esquema.
func NewSchemaManager(dbRepo repository.DatabaseRepository, tx InvoicingTxRunner, log *logger.Logger) *SchemaManager {
	return &SchemaManager{dbRepo: dbRepo, tx: tx, log: log}
}

// EnsureSchema garantiza el esquema de facturación de la database dentro de
// una transacción. Repetir la llamada con el esquema completo devuelve
// Changed en false sin escribir nada.
func (m *SchemaManager) EnsureSchema(ctx context.Context, tenantID, databaseID string) (*dto.InvoiceSchemaResponse, error) {
	db, err := m.dbRepo.GetByID(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	if db.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}

	var result *invoiceTables
	err = m.tx.RunInvoicing(ctx, func(tables repository.TableRepository, _ repository.RowRepository, _ repository.SeriesRepository) error {
		var txErr error
		result, txErr = ensureInvoiceSchema(ctx, tables, databaseID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		m.log.Info().
			Str("database_id", databaseID).
			Msg("esquema de facturación creado o actualizado")
	}
	return &dto.InvoiceSchemaResponse{Changed: result.Changed, Tables: result.Info}, nil
}
