package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
	"github.com/jhoicas/Tablero-api/internal/domain/semantic"
	"github.com/jhoicas/Tablero-api/pkg/logger"
)

// InvoiceQueryUseCase lee y elimina facturas almacenadas como filas del motor
// de tablas, decodificando cada campo por su etiqueta semántica.
type InvoiceQueryUseCase struct {
	tx         InvoicingTxRunner
	dbRepo     repository.DatabaseRepository
	tenantRepo repository.TenantRepository
	tableRepo  repository.TableRepository
	rowRepo    repository.RowRepository
	log        *logger.Logger
}

// NewInvoiceQueryUseCase construye el caso de uso de lectura.
func NewInvoiceQueryUseCase(
	tx InvoicingTxRunner,
	dbRepo repository.DatabaseRepository,
	tenantRepo repository.TenantRepository,
	tableRepo repository.TableRepository,
	rowRepo repository.RowRepository,
	log *logger.Logger,
) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{
		tx:         tx,
		dbRepo:     dbRepo,
		tenantRepo: tenantRepo,
		tableRepo:  tableRepo,
		rowRepo:    rowRepo,
		log:        log,
	}
}

// GetInvoice devuelve la factura completa con sus ítems.
func (uc *InvoiceQueryUseCase) GetInvoice(ctx context.Context, tenantID, databaseID, invoiceID string) (*dto.InvoiceResponse, error) {
	if _, err := uc.authorizeDatabase(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}
	rec, err := uc.loadInvoice(ctx, databaseID, invoiceID)
	if err != nil {
		return nil, err
	}
	customer := uc.lookupCustomer(ctx, databaseID, rec.CustomerID)
	return invoiceToResponse(rec, customer.Name), nil
}

// ListInvoices lista encabezados de factura con paginación. Una database que
// nunca facturó devuelve la página vacía, no un error.
func (uc *InvoiceQueryUseCase) ListInvoices(ctx context.Context, tenantID, databaseID string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	if _, err := uc.authorizeDatabase(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}
	page.DefaultPage()

	empty := &dto.InvoiceListResponse{
		Invoices: []dto.InvoiceListItem{},
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: 0},
	}

	invTable, err := uc.tableRepo.GetByName(ctx, databaseID, SystemTableInvoices)
	if errors.Is(err, domain.ErrNotFound) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}
	columns, err := uc.tableRepo.GetColumns(ctx, invTable.ID)
	if err != nil {
		return nil, err
	}
	idx := semantic.BuildIndex(columns)

	rows, err := uc.rowRepo.ListRows(ctx, invTable.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.rowRepo.CountRows(ctx, invTable.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	cellsByRow := map[string][]entity.Cell{}
	if len(ids) > 0 {
		cellsByRow, err = uc.rowRepo.GetCellsForRows(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	out := make([]dto.InvoiceListItem, 0, len(rows))
	for _, r := range rows {
		cr := newCellReader(idx, cellsByRow[r.ID])
		out = append(out, dto.InvoiceListItem{
			ID:            r.ID,
			InvoiceNumber: cr.str(semantic.TypeInvoiceNumber),
			InvoiceSeries: cr.str(semantic.TypeInvoiceSeries),
			CustomerID:    cr.ref(semantic.TypeInvoiceCustomerID),
			Status:        cr.str(semantic.TypeStatus),
			BaseCurrency:  cr.str(semantic.TypeBaseCurrency),
			TotalAmount:   cr.dec(semantic.TypeTotalAmount),
			InvoiceDate:   formatDate(cr.date(semantic.TypeInvoiceDate)),
			DueDate:       formatDate(cr.date(semantic.TypeDueDate)),
		})
	}
	return &dto.InvoiceListResponse{
		Invoices: out,
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// DeleteInvoice elimina la factura y sus ítems en una transacción. La cascada
// es explícita: primero las filas de ítems que la referencian, luego la
// factura; las celdas caen con sus filas.
func (uc *InvoiceQueryUseCase) DeleteInvoice(ctx context.Context, tenantID, databaseID, invoiceID string) error {
	if _, err := uc.authorizeDatabase(ctx, tenantID, databaseID); err != nil {
		return err
	}

	return uc.tx.RunInvoicing(ctx, func(tables repository.TableRepository, rows repository.RowRepository, _ repository.SeriesRepository) error {
		invTable, err := tables.GetByName(ctx, databaseID, SystemTableInvoices)
		if err != nil {
			return err
		}
		row, err := rows.GetRow(ctx, invoiceID)
		if err != nil {
			return err
		}
		if row.TableID != invTable.ID {
			return domain.ErrNotFound
		}

		itemsTable, err := tables.GetByName(ctx, databaseID, SystemTableInvoiceItems)
		switch {
		case err == nil:
			cols, err := tables.GetColumns(ctx, itemsTable.ID)
			if err != nil {
				return err
			}
			if refCol, ok := semantic.BuildIndex(cols).Column(semantic.TypeInvoiceRef); ok {
				itemRows, err := rows.FindRowsByCellRef(ctx, itemsTable.ID, refCol.ID, invoiceID)
				if err != nil {
					return err
				}
				ids := make([]string, 0, len(itemRows))
				for _, r := range itemRows {
					ids = append(ids, r.ID)
				}
				if len(ids) > 0 {
					if err := rows.DeleteRows(ctx, itemsTable.ID, ids); err != nil {
						return err
					}
				}
			}
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		return rows.DeleteRows(ctx, invTable.ID, []string{invoiceID})
	})
}

// BuildDocument arma el documento imprimible/exportable de la factura:
// encabezado decodificado, líneas, nombres de tenant y database y datos del
// cliente. Lo consumen los generadores de PDF y XML.
func (uc *InvoiceQueryUseCase) BuildDocument(ctx context.Context, tenantID, databaseID, invoiceID string) (*InvoiceDocument, error) {
	db, err := uc.authorizeDatabase(ctx, tenantID, databaseID)
	if err != nil {
		return nil, err
	}
	tenant, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rec, err := uc.loadInvoice(ctx, databaseID, invoiceID)
	if err != nil {
		return nil, err
	}
	customer := uc.lookupCustomer(ctx, databaseID, rec.CustomerID)

	doc := &InvoiceDocument{
		ID:            rec.ID,
		InvoiceNumber: rec.InvoiceNumber,
		InvoiceSeries: rec.InvoiceSeries,
		Status:        rec.Status,
		InvoiceDate:   formatDate(rec.InvoiceDate),
		DueDate:       formatDate(rec.DueDate),
		PaymentTerms:  rec.PaymentTerms,
		PaymentMethod: rec.PaymentMethod,
		Notes:         rec.Notes,
		BaseCurrency:  rec.BaseCurrency,
		Subtotal:      rec.Subtotal,
		TaxTotal:      rec.TaxTotal,
		TotalAmount:   rec.TotalAmount,
		TenantName:    tenant.Name,
		DatabaseName:  db.Name,
		CustomerID:    rec.CustomerID,
		CustomerName:  customer.Name,
		CustomerTaxID: customer.TaxID,
		CustomerEmail: customer.Email,
	}
	for _, it := range rec.Items {
		doc.Lines = append(doc.Lines, InvoiceDocumentLine{
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Currency:      it.Currency,
			VatRate:       it.VatRate,
			UnitOfMeasure: it.UnitOfMeasure,
			Subtotal:      it.Quantity.Mul(it.UnitPrice),
		})
	}
	return doc, nil
}

// ── carga y decodificación ───────────────────────────────────────────────────

// invoiceRecord factura decodificada desde sus celdas.
type invoiceRecord struct {
	ID            string
	InvoiceNumber string
	InvoiceSeries string
	CustomerID    string
	Status        string
	InvoiceDate   time.Time
	DueDate       time.Time
	PaymentTerms  string
	PaymentMethod string
	Notes         string
	BaseCurrency  string
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	TotalAmount   decimal.Decimal
	Items         []invoiceItemRecord
}

type invoiceItemRecord struct {
	ID            string
	ProductRefID  string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Currency      string
	VatRate       decimal.Decimal
	UnitOfMeasure string
}

func (uc *InvoiceQueryUseCase) loadInvoice(ctx context.Context, databaseID, invoiceID string) (*invoiceRecord, error) {
	invTable, err := uc.tableRepo.GetByName(ctx, databaseID, SystemTableInvoices)
	if err != nil {
		return nil, err
	}
	columns, err := uc.tableRepo.GetColumns(ctx, invTable.ID)
	if err != nil {
		return nil, err
	}
	row, err := uc.rowRepo.GetRow(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if row.TableID != invTable.ID {
		return nil, domain.ErrNotFound
	}
	cells, err := uc.rowRepo.GetCells(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	cr := newCellReader(semantic.BuildIndex(columns), cells)
	rec := &invoiceRecord{
		ID:            invoiceID,
		InvoiceNumber: cr.str(semantic.TypeInvoiceNumber),
		InvoiceSeries: cr.str(semantic.TypeInvoiceSeries),
		CustomerID:    cr.ref(semantic.TypeInvoiceCustomerID),
		Status:        cr.str(semantic.TypeStatus),
		InvoiceDate:   cr.date(semantic.TypeInvoiceDate),
		DueDate:       cr.date(semantic.TypeDueDate),
		PaymentTerms:  cr.str(semantic.TypePaymentTerms),
		PaymentMethod: cr.str(semantic.TypePaymentMethod),
		Notes:         cr.str(semantic.TypeNotes),
		BaseCurrency:  cr.str(semantic.TypeBaseCurrency),
		Subtotal:      cr.dec(semantic.TypeSubtotal),
		TaxTotal:      cr.dec(semantic.TypeTaxTotal),
		TotalAmount:   cr.dec(semantic.TypeTotalAmount),
	}

	rec.Items, err = uc.loadItems(ctx, databaseID, invoiceID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (uc *InvoiceQueryUseCase) loadItems(ctx context.Context, databaseID, invoiceID string) ([]invoiceItemRecord, error) {
	itemsTable, err := uc.tableRepo.GetByName(ctx, databaseID, SystemTableInvoiceItems)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	columns, err := uc.tableRepo.GetColumns(ctx, itemsTable.ID)
	if err != nil {
		return nil, err
	}
	idx := semantic.BuildIndex(columns)
	refCol, ok := idx.Column(semantic.TypeInvoiceRef)
	if !ok {
		return nil, nil
	}

	rows, err := uc.rowRepo.FindRowsByCellRef(ctx, itemsTable.ID, refCol.ID, invoiceID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	cellsByRow, err := uc.rowRepo.GetCellsForRows(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]invoiceItemRecord, 0, len(rows))
	for _, r := range rows {
		cr := newCellReader(idx, cellsByRow[r.ID])
		items = append(items, invoiceItemRecord{
			ID:            r.ID,
			ProductRefID:  cr.ref(semantic.TypeProductRef),
			Description:   cr.str(semantic.TypeDescription),
			Quantity:      cr.dec(semantic.TypeQuantity),
			UnitPrice:     cr.dec(semantic.TypeUnitPrice),
			Currency:      cr.str(semantic.TypeCurrency),
			VatRate:       cr.dec(semantic.TypeVatRate),
			UnitOfMeasure: cr.str(semantic.TypeUnitOfMeasure),
		})
	}
	return items, nil
}

// customerInfo datos del cliente para respuestas y documentos.
type customerInfo struct {
	Name  string
	TaxID string
	Email string
}

// lookupCustomer lee el cliente referenciado. Tolerante: cualquier fallo
// devuelve datos vacíos en lugar de tumbar la lectura de la factura.
func (uc *InvoiceQueryUseCase) lookupCustomer(ctx context.Context, databaseID, customerID string) customerInfo {
	if customerID == "" {
		return customerInfo{}
	}
	table, err := uc.tableRepo.GetByName(ctx, databaseID, SystemTableCustomers)
	if err != nil {
		return customerInfo{}
	}
	columns, err := uc.tableRepo.GetColumns(ctx, table.ID)
	if err != nil {
		return customerInfo{}
	}
	row, err := uc.rowRepo.GetRow(ctx, customerID)
	if err != nil || row.TableID != table.ID {
		return customerInfo{}
	}
	cells, err := uc.rowRepo.GetCells(ctx, customerID)
	if err != nil {
		return customerInfo{}
	}
	cr := newCellReader(semantic.BuildIndex(columns), cells)
	return customerInfo{
		Name:  cr.str(semantic.TypeName),
		TaxID: cr.str(semantic.TypeTaxID),
		Email: cr.str(semantic.TypeEmail),
	}
}

func (uc *InvoiceQueryUseCase) authorizeDatabase(ctx context.Context, tenantID, databaseID string) (*entity.Database, error) {
	db, err := uc.dbRepo.GetByID(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	if db.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	return db, nil
}

func invoiceToResponse(rec *invoiceRecord, customerName string) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:            rec.ID,
		InvoiceNumber: rec.InvoiceNumber,
		InvoiceSeries: rec.InvoiceSeries,
		CustomerID:    rec.CustomerID,
		CustomerName:  customerName,
		Status:        rec.Status,
		InvoiceDate:   formatDate(rec.InvoiceDate),
		DueDate:       formatDate(rec.DueDate),
		PaymentTerms:  rec.PaymentTerms,
		PaymentMethod: rec.PaymentMethod,
		Notes:         rec.Notes,
		BaseCurrency:  rec.BaseCurrency,
		Subtotal:      rec.Subtotal,
		TaxTotal:      rec.TaxTotal,
		TotalAmount:   rec.TotalAmount,
		Items:         make([]dto.InvoiceItemResponse, 0, len(rec.Items)),
	}
	for _, it := range rec.Items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:            it.ID,
			ProductRefID:  it.ProductRefID,
			Description:   it.Description,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Currency:      it.Currency,
			VatRate:       it.VatRate,
			UnitOfMeasure: it.UnitOfMeasure,
			Subtotal:      it.Quantity.Mul(it.UnitPrice),
		})
	}
	return resp
}

// ── lectura de celdas por etiqueta ───────────────────────────────────────────

// cellReader lee los valores de una fila por etiqueta semántica.
type cellReader struct {
	idx   semantic.Index
	byCol map[string]json.RawMessage
}

func newCellReader(idx semantic.Index, cells []entity.Cell) *cellReader {
	byCol := make(map[string]json.RawMessage, len(cells))
	for _, c := range cells {
		byCol[c.ColumnID] = c.Value
	}
	return &cellReader{idx: idx, byCol: byCol}
}

func (r *cellReader) raw(t semantic.SemanticType) json.RawMessage {
	col, ok := r.idx.Column(t)
	if !ok {
		return nil
	}
	return r.byCol[col.ID]
}

func (r *cellReader) str(t semantic.SemanticType) string {
	return semantic.DecodeString(r.raw(t))
}

func (r *cellReader) dec(t semantic.SemanticType) decimal.Decimal {
	return semantic.DecodeDecimal(r.raw(t))
}

func (r *cellReader) ref(t semantic.SemanticType) string {
	return semantic.DecodeReference(r.raw(t))
}

func (r *cellReader) date(t semantic.SemanticType) time.Time {
	s := semantic.DecodeString(r.raw(t))
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
