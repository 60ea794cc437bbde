package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tablero-api/internal/application/dto"
	"github.com/jhoicas/Tablero-api/internal/domain"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
	"github.com/jhoicas/Tablero-api/internal/domain/repository"
	"github.com/jhoicas/Tablero-api/internal/domain/semantic"
)

// CustomerUseCase clientes de facturación sobre el motor de tablas: cada
// cliente es una fila de la tabla customers de su database.
type CustomerUseCase struct {
	tx        InvoicingTxRunner
	dbRepo    repository.DatabaseRepository
	tableRepo repository.TableRepository
	rowRepo   repository.RowRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(tx InvoicingTxRunner, dbRepo repository.DatabaseRepository, tableRepo repository.TableRepository, rowRepo repository.RowRepository) *CustomerUseCase {
	return &CustomerUseCase{tx: tx, dbRepo: dbRepo, tableRepo: tableRepo, rowRepo: rowRepo}
}

// Create crea un cliente. Asegura el esquema si la database aún no factura.
// El tax_id, si viene, es único por database.
func (uc *CustomerUseCase) Create(ctx context.Context, tenantID, databaseID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := uc.authorize(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.TaxID = strings.TrimSpace(in.TaxID)
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "es obligatorio")
	}

	var resp *dto.CustomerResponse
	err := uc.tx.RunInvoicing(ctx, func(tables repository.TableRepository, rows repository.RowRepository, _ repository.SeriesRepository) error {
		schema, err := ensureInvoiceSchema(ctx, tables, databaseID)
		if err != nil {
			return err
		}
		customers := schema.Customers

		if in.TaxID != "" {
			if taxCol, ok := customers.Index.Column(semantic.TypeTaxID); ok {
				_, err := rows.FindRowByCellValue(ctx, customers.Table.ID, taxCol.ID, semantic.EncodeString(in.TaxID))
				if err == nil {
					return domain.ErrDuplicate
				}
				if !errors.Is(err, domain.ErrNotFound) {
					return err
				}
			}
		}

		now := time.Now()
		row := &entity.Row{ID: uuid.New().String(), TableID: customers.Table.ID, CreatedAt: now, UpdatedAt: now}
		if err := rows.CreateRow(ctx, row); err != nil {
			return err
		}

		buf := newCellBuffer()
		buf.putSemantic(customers.Index, row.ID, semantic.TypeName, semantic.EncodeString(in.Name))
		if in.TaxID != "" {
			buf.putSemantic(customers.Index, row.ID, semantic.TypeTaxID, semantic.EncodeString(in.TaxID))
		}
		if in.Email != "" {
			buf.putSemantic(customers.Index, row.ID, semantic.TypeEmail, semantic.EncodeString(in.Email))
		}
		if in.Phone != "" {
			buf.putSemantic(customers.Index, row.ID, semantic.TypePhone, semantic.EncodeString(in.Phone))
		}
		if err := rows.CreateCells(ctx, buf.flatten()); err != nil {
			return err
		}

		resp = &dto.CustomerResponse{
			ID:         row.ID,
			DatabaseID: databaseID,
			Name:       in.Name,
			TaxID:      in.TaxID,
			Email:      in.Email,
			Phone:      in.Phone,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// List lista clientes de la database. Una database sin tabla customers
// todavía devuelve la lista vacía.
func (uc *CustomerUseCase) List(ctx context.Context, tenantID, databaseID string, limit, offset int) ([]*dto.CustomerResponse, error) {
	if err := uc.authorize(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	table, err := uc.tableRepo.GetByName(ctx, databaseID, SystemTableCustomers)
	if errors.Is(err, domain.ErrNotFound) {
		return []*dto.CustomerResponse{}, nil
	}
	if err != nil {
		return nil, err
	}
	columns, err := uc.tableRepo.GetColumns(ctx, table.ID)
	if err != nil {
		return nil, err
	}
	idx := semantic.BuildIndex(columns)

	rows, err := uc.rowRepo.ListRows(ctx, table.ID, limit, offset)
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

	out := make([]*dto.CustomerResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, customerFromCells(databaseID, r.ID, idx, cellsByRow[r.ID]))
	}
	return out, nil
}

// Get devuelve un cliente por id de fila.
func (uc *CustomerUseCase) Get(ctx context.Context, tenantID, databaseID, customerID string) (*dto.CustomerResponse, error) {
	if err := uc.authorize(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}
	table, err := uc.tableRepo.GetByName(ctx, databaseID, SystemTableCustomers)
	if err != nil {
		return nil, err
	}
	columns, err := uc.tableRepo.GetColumns(ctx, table.ID)
	if err != nil {
		return nil, err
	}
	row, err := uc.rowRepo.GetRow(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if row.TableID != table.ID {
		return nil, domain.ErrNotFound
	}
	cells, err := uc.rowRepo.GetCells(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return customerFromCells(databaseID, customerID, semantic.BuildIndex(columns), cells), nil
}

func (uc *CustomerUseCase) authorize(ctx context.Context, tenantID, databaseID string) error {
	db, err := uc.dbRepo.GetByID(ctx, databaseID)
	if err != nil {
		return err
	}
	if db.TenantID != tenantID {
		return domain.ErrForbidden
	}
	return nil
}

func customerFromCells(databaseID, rowID string, idx semantic.Index, cells []entity.Cell) *dto.CustomerResponse {
	cr := newCellReader(idx, cells)
	return &dto.CustomerResponse{
		ID:         rowID,
		DatabaseID: databaseID,
		Name:       cr.str(semantic.TypeName),
		TaxID:      cr.str(semantic.TypeTaxID),
		Email:      cr.str(semantic.TypeEmail),
		Phone:      cr.str(semantic.TypePhone),
	}
}
