package billing

import (
	"context"
	"fmt"
)

// InvoicePDFUseCase genera la representación gráfica (PDF) de una factura.
type InvoicePDFUseCase struct {
	query     *InvoiceQueryUseCase
	generator InvoicePDFGenerator
}

// NewInvoicePDFUseCase construye el caso de uso.
func NewInvoicePDFUseCase(query *InvoiceQueryUseCase, generator InvoicePDFGenerator) *InvoicePDFUseCase {
	return &InvoicePDFUseCase{query: query, generator: generator}
}

// DownloadInvoicePDF arma el documento completo de la factura y lo renderiza.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
//   - domain.ErrForbidden        si la database no pertenece al tenant del token.
func (uc *InvoicePDFUseCase) DownloadInvoicePDF(ctx context.Context, tenantID, databaseID, invoiceID string) (pdfBytes []byte, filename string, err error) {
	doc, err := uc.query.BuildDocument(ctx, tenantID, databaseID, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: armar documento: %w", err)
	}

	pdfBytes, err = uc.generator.Generate(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("factura_%s.pdf", doc.InvoiceNumber)
	return pdfBytes, filename, nil
}
