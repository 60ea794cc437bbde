package billing

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/billing"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
	"github.com/jhoicas/Tablero-api/internal/domain/semantic"
	"github.com/jhoicas/Tablero-api/pkg/logger"
)

// Estados de una factura.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

var validInvoiceStatus = map[string]bool{
	InvoiceStatusDraft:     true,
	InvoiceStatusSent:      true,
	InvoiceStatusPaid:      true,
	InvoiceStatusCancelled: true,
}

// CreateInvoiceUseCase ensambla una factura completa en una sola transacción:
// esquema, cliente, productos resueltos por etiqueta semántica, número de
// serie y totales. Si cualquier paso falla no queda factura parcial visible.
type CreateInvoiceUseCase struct {
	tx        InvoicingTxRunner
	dbRepo    repository.DatabaseRepository
	allocator *SeriesAllocator
	defaults  InvoicingDefaults
	log       *logger.Logger
}

// NewCreateInvoiceUseCase construye el caso de uso.
func NewCreateInvoiceUseCase(
	tx InvoicingTxRunner,
	dbRepo repository.DatabaseRepository,
	allocator *SeriesAllocator,
	defaults InvoicingDefaults,
	log *logger.Logger,
) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{
		tx:        tx,
		dbRepo:    dbRepo,
		allocator: allocator,
		defaults:  defaults,
		log:       log,
	}
}

// CreateInvoice crea la factura con sus líneas y asigna el número de serie,
// todo dentro de una transacción: si algo falla, el contador de la serie
// también se revierte y no quedan huecos en la numeración.
func (uc *CreateInvoiceUseCase) CreateInvoice(ctx context.Context, tenantID, databaseID string, in dto.CreateInvoiceRequest) (*dto.CreateInvoiceResponse, error) {
	db, err := uc.dbRepo.GetByID(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	if db.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	if err := uc.validate(&in); err != nil {
		return nil, err
	}

	now := time.Now()
	dueDate, _ := time.Parse("2006-01-02", in.DueDate) // ya validada
	invoiceID := uuid.New().String()

	var number billing.InvoiceNumber
	var totals billing.InvoiceTotals

	err = uc.tx.RunInvoicing(ctx, func(tables repository.TableRepository, rows repository.RowRepository, series repository.SeriesRepository) error {
		// 1) Asegurar el esquema de facturación. Idempotente: con el esquema
		// completo no escribe nada.
		schema, err := ensureInvoiceSchema(ctx, tables, databaseID)
		if err != nil {
			return err
		}
		if err := checkInvoiceSchema(schema); err != nil {
			return err
		}

		// 2) El cliente debe ser una fila de la tabla customers de esta database.
		customerRow, err := rows.GetRow(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customerRow.TableID != schema.Customers.Table.ID {
			return domain.ErrNotFound
		}

		// 3) Resolver cada producto por etiqueta semántica. Un producto
		// ilocalizable degrada a detalles vacíos: la factura sigue adelante.
		lines := make([]invoiceLine, len(in.Products))
		for i, p := range in.Products {
			details := uc.resolveProduct(ctx, tables, rows, databaseID, p)
			lines[i] = mergeLine(p, details, in.BaseCurrency)
		}

		// 4) Asignar el número dentro de la misma transacción.
		number, err = uc.allocator.NextNumber(ctx, series, tenantID, databaseID, billing.NumberingConfig{Series: in.InvoiceSeries})
		if err != nil {
			return err
		}

		// 5) Totales sin tasas de cambio: TotalsByCurrency es el desglose
		// autoritativo cuando hay monedas mezcladas.
		items := make([]billing.LineItem, len(lines))
		for i, l := range lines {
			items[i] = billing.LineItem{
				Quantity: l.Quantity,
				Price:    l.UnitPrice,
				Currency: l.Currency,
				VatRate:  l.VatRate,
			}
		}
		totals = billing.CalculateInvoiceTotals(items, billing.TotalsOptions{BaseCurrency: in.BaseCurrency})

		// 6) Celdas de la factura y de cada línea, por etiqueta semántica.
		// Último-escribe-gana por (fila, columna) antes de persistir.
		buf := newCellBuffer()
		invHeader := schema.Invoices.Index
		buf.putSemantic(invHeader, invoiceID, semantic.TypeInvoiceNumber, semantic.EncodeString(number.Number))
		buf.putSemantic(invHeader, invoiceID, semantic.TypeInvoiceSeries, semantic.EncodeString(number.Series))
		buf.putSemantic(invHeader, invoiceID, semantic.TypeInvoiceCustomerID, semantic.EncodeReference(in.CustomerID))
		buf.putSemantic(invHeader, invoiceID, semantic.TypeInvoiceDate, semantic.EncodeTime(now))
		buf.putSemantic(invHeader, invoiceID, semantic.TypeDueDate, semantic.EncodeTime(dueDate))
		buf.putSemantic(invHeader, invoiceID, semantic.TypePaymentMethod, semantic.EncodeString(in.PaymentMethod))
		buf.putSemantic(invHeader, invoiceID, semantic.TypeStatus, semantic.EncodeString(in.Status))
		buf.putSemantic(invHeader, invoiceID, semantic.TypeBaseCurrency, semantic.EncodeString(in.BaseCurrency))
		if in.PaymentTerms != "" {
			buf.putSemantic(invHeader, invoiceID, semantic.TypePaymentTerms, semantic.EncodeString(in.PaymentTerms))
		}
		if in.Notes != "" {
			buf.putSemantic(invHeader, invoiceID, semantic.TypeNotes, semantic.EncodeString(in.Notes))
		}
		buf.putSemantic(invHeader, invoiceID, semantic.TypeSubtotal, semantic.EncodeDecimal(totals.Subtotal))
		buf.putSemantic(invHeader, invoiceID, semantic.TypeTaxTotal, semantic.EncodeDecimal(totals.VatTotal))
		buf.putSemantic(invHeader, invoiceID, semantic.TypeTotalAmount, semantic.EncodeDecimal(totals.GrandTotal))

		itemIdx := schema.Items.Index
		itemRows := make([]*entity.Row, len(lines))
		for i, l := range lines {
			itemID := uuid.New().String()
			itemRows[i] = &entity.Row{ID: itemID, TableID: schema.Items.Table.ID, CreatedAt: now, UpdatedAt: now}

			buf.putSemantic(itemIdx, itemID, semantic.TypeInvoiceRef, semantic.EncodeReference(invoiceID))
			if l.ProductRowID != "" {
				buf.putSemantic(itemIdx, itemID, semantic.TypeProductRef, semantic.EncodeReference(l.ProductRowID))
			}
			if l.Description != "" {
				buf.putSemantic(itemIdx, itemID, semantic.TypeDescription, semantic.EncodeString(l.Description))
			}
			buf.putSemantic(itemIdx, itemID, semantic.TypeQuantity, semantic.EncodeDecimal(l.Quantity))
			buf.putSemantic(itemIdx, itemID, semantic.TypeUnitPrice, semantic.EncodeDecimal(l.UnitPrice))
			buf.putSemantic(itemIdx, itemID, semantic.TypeCurrency, semantic.EncodeString(l.Currency))
			buf.putSemantic(itemIdx, itemID, semantic.TypeVatRate, semantic.EncodeDecimal(l.VatRate))
			if l.UnitOfMeasure != "" {
				buf.putSemantic(itemIdx, itemID, semantic.TypeUnitOfMeasure, semantic.EncodeString(l.UnitOfMeasure))
			}
		}

		// 7) Persistencia: filas primero, luego todas las celdas en un lote.
		invoiceRow := &entity.Row{ID: invoiceID, TableID: schema.Invoices.Table.ID, CreatedAt: now, UpdatedAt: now}
		if err := rows.CreateRow(ctx, invoiceRow); err != nil {
			return err
		}
		for _, r := range itemRows {
			if err := rows.CreateRow(ctx, r); err != nil {
				return err
			}
		}
		return rows.CreateCells(ctx, buf.flatten())
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", invoiceID).
		Str("invoice_number", number.Number).
		Str("database_id", databaseID).
		Int("items", totals.ItemsCount).
		Msg("factura creada")

	return &dto.CreateInvoiceResponse{
		ID:            invoiceID,
		InvoiceNumber: number.Number,
		InvoiceSeries: number.Series,
		CustomerID:    in.CustomerID,
		Status:        in.Status,
		Subtotal:      totals.Subtotal,
		TaxTotal:      totals.VatTotal,
		TotalAmount:   totals.GrandTotal,
		ItemsCount:    totals.ItemsCount,
	}, nil
}

// validate revisa la petición campo a campo y normaliza monedas y estado.
// Todo en una pasada: el caller recibe el detalle completo de una vez.
func (uc *CreateInvoiceUseCase) validate(in *dto.CreateInvoiceRequest) error {
	v := &domain.ValidationError{}

	if strings.TrimSpace(in.CustomerID) == "" {
		v.Add("customer_id", "es obligatorio")
	}

	in.BaseCurrency = strings.ToUpper(strings.TrimSpace(in.BaseCurrency))
	if in.BaseCurrency == "" {
		in.BaseCurrency = uc.defaults.Currency
	}
	if _, err := currency.ParseISO(in.BaseCurrency); err != nil {
		v.Add("base_currency", "código de moneda inválido: "+in.BaseCurrency)
	}

	if due, err := time.Parse("2006-01-02", in.DueDate); err != nil {
		v.Add("due_date", "formato inválido, se espera YYYY-MM-DD")
	} else {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if due.Before(today) {
			v.Add("due_date", "no puede estar en el pasado")
		}
	}

	if strings.TrimSpace(in.PaymentMethod) == "" {
		v.Add("payment_method", "es obligatorio")
	}

	if in.Status == "" {
		in.Status = InvoiceStatusDraft
	}
	if !validInvoiceStatus[in.Status] {
		v.Add("status", "estado inválido: "+in.Status)
	}

	if len(in.Products) == 0 {
		v.Add("products", "debe traer al menos un producto")
	}
	for i, p := range in.Products {
		field := "products[" + strconv.Itoa(i) + "]"
		if strings.TrimSpace(p.ProductRefTable) == "" {
			v.Add(field+".product_ref_table", "es obligatorio")
		}
		if strings.TrimSpace(p.ProductRefID) == "" {
			v.Add(field+".product_ref_id", "es obligatorio")
		}
		if !p.Quantity.GreaterThan(decimal.Zero) {
			v.Add(field+".quantity", "debe ser mayor que cero")
		}
		if p.Price != nil && p.Price.LessThan(decimal.Zero) {
			v.Add(field+".price", "no puede ser negativo")
		}
		if p.Currency != "" {
			code := strings.ToUpper(strings.TrimSpace(p.Currency))
			if _, err := currency.ParseISO(code); err != nil {
				v.Add(field+".currency", "código de moneda inválido: "+p.Currency)
			}
			in.Products[i].Currency = code
		}
	}

	if !v.Empty() {
		return v
	}
	return nil
}

// resolveProduct localiza la tabla referenciada (por nombre o por id) y la
// fila del producto, y extrae sus detalles semánticos. Cualquier fallo de
// localización degrada a detalles vacíos con un warning: el número y los
// totales de la factura se calculan igual.
func (uc *CreateInvoiceUseCase) resolveProduct(ctx context.Context, tables repository.TableRepository, rows repository.RowRepository, databaseID string, ref dto.InvoiceProductRequest) semantic.ProductDetails {
	table, err := tables.GetByName(ctx, databaseID, ref.ProductRefTable)
	if errors.Is(err, domain.ErrNotFound) {
		table, err = tables.GetByID(ctx, ref.ProductRefTable)
		if err == nil && table.DatabaseID != databaseID {
			err = domain.ErrNotFound
		}
	}
	if err != nil {
		uc.warnUnresolved(ref, "tabla de producto ilocalizable")
		return semantic.ProductDetails{}
	}

	columns, err := tables.GetColumns(ctx, table.ID)
	if err != nil {
		uc.warnUnresolved(ref, "no se pudieron leer las columnas del producto")
		return semantic.ProductDetails{}
	}

	row, err := rows.GetRow(ctx, ref.ProductRefID)
	if err != nil || row.TableID != table.ID {
		uc.warnUnresolved(ref, "fila de producto inexistente")
		return semantic.ProductDetails{}
	}

	cells, err := rows.GetCells(ctx, row.ID)
	if err != nil {
		uc.warnUnresolved(ref, "no se pudieron leer las celdas del producto")
		return semantic.ProductDetails{}
	}
	return semantic.ExtractProductDetails(columns, cells)
}

func (uc *CreateInvoiceUseCase) warnUnresolved(ref dto.InvoiceProductRequest, reason string) {
	uc.log.Warn().
		Str("product_ref_table", ref.ProductRefTable).
		Str("product_ref_id", ref.ProductRefID).
		Msg(reason + ", la línea se factura con los datos de la petición")
}

// invoiceLine línea ya fusionada, lista para celdas y totales.
type invoiceLine struct {
	ProductRowID  string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Currency      string
	VatRate       decimal.Decimal
	UnitOfMeasure string
}

// mergeLine fusiona en orden: lo pedido explícitamente, lo resuelto del
// producto, los defaults (precio 0, moneda base, IVA 0). Un precio de 0
// explícito en la petición gana sobre el precio del producto.
func mergeLine(req dto.InvoiceProductRequest, details semantic.ProductDetails, baseCurrency string) invoiceLine {
	line := invoiceLine{
		ProductRowID:  req.ProductRefID,
		Quantity:      req.Quantity,
		UnitOfMeasure: req.UnitOfMeasure,
	}

	switch {
	case req.Price != nil:
		line.UnitPrice = *req.Price
	case details.Price != nil:
		line.UnitPrice = *details.Price
	}

	switch {
	case req.Currency != "":
		line.Currency = req.Currency
	case details.Currency != nil && strings.TrimSpace(*details.Currency) != "":
		line.Currency = strings.ToUpper(strings.TrimSpace(*details.Currency))
	default:
		line.Currency = baseCurrency
	}

	if details.Vat != nil {
		line.VatRate = *details.Vat
	}

	switch {
	case req.Description != "":
		line.Description = req.Description
	case details.Name != nil && *details.Name != "":
		line.Description = *details.Name
	case details.Description != nil:
		line.Description = *details.Description
	}

	return line
}

// cellBuffer acumula celdas con último-escribe-gana por (fila, columna),
// conservando el orden de primera escritura al aplanar.
type cellBuffer struct {
	order []cellKey
	cells map[cellKey]json.RawMessage
}

type cellKey struct {
	rowID    string
	columnID string
}

func newCellBuffer() *cellBuffer {
	return &cellBuffer{cells: make(map[cellKey]json.RawMessage)}
}

func (b *cellBuffer) put(rowID, columnID string, value json.RawMessage) {
	k := cellKey{rowID: rowID, columnID: columnID}
	if _, ok := b.cells[k]; !ok {
		b.order = append(b.order, k)
	}
	b.cells[k] = value
}

// putSemantic escribe la celda de la columna etiquetada con t, si la tabla la
// expone; si no, la omite en silencio (el esquema crítico ya fue verificado).
func (b *cellBuffer) putSemantic(idx semantic.Index, rowID string, t semantic.SemanticType, value json.RawMessage) {
	if col, ok := idx.Column(t); ok {
		b.put(rowID, col.ID, value)
	}
}

func (b *cellBuffer) flatten() []entity.Cell {
	out := make([]entity.Cell, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, entity.Cell{RowID: k.rowID, ColumnID: k.columnID, Value: b.cells[k]})
	}
	return out
}
