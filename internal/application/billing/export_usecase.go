package billing

import (
	"context"
	"fmt"
)

// InvoiceExportUseCase genera la representación UBL 2.1 (XML) de una factura,
// sin firma digital.
type InvoiceExportUseCase struct {
	query    *InvoiceQueryUseCase
	exporter InvoiceXMLExporter
}

// NewInvoiceExportUseCase construye el caso de uso.
func NewInvoiceExportUseCase(query *InvoiceQueryUseCase, exporter InvoiceXMLExporter) *InvoiceExportUseCase {
	return &InvoiceExportUseCase{query: query, exporter: exporter}
}

// DownloadInvoiceXML arma el documento de la factura y lo serializa como UBL.
// Retorna (xmlBytes, filename, nil) si todo sale bien.
func (uc *InvoiceExportUseCase) DownloadInvoiceXML(ctx context.Context, tenantID, databaseID, invoiceID string) (xmlBytes []byte, filename string, err error) {
	doc, err := uc.query.BuildDocument(ctx, tenantID, databaseID, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("xml: armar documento: %w", err)
	}

	xmlBytes, err = uc.exporter.Export(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("xml: exportación fallida: %w", err)
	}

	filename = fmt.Sprintf("factura_%s.xml", doc.InvoiceNumber)
	return xmlBytes, filename, nil
}
