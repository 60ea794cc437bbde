package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem es el insumo de cálculo de una línea de factura. Vive solo en
// memoria: lo persistido son celdas genéricas etiquetadas por tipo semántico.
type LineItem struct {
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Currency string          // código de 3 letras; '' hereda la moneda base
	VatRate  decimal.Decimal // porcentaje 0-100
}

// TotalsOptions parametriza el cálculo. ExchangeRates mapea moneda de línea a
// unidades de BaseCurrency por unidad; las monedas sin tasa entran a valor
// facial en el acumulado base (aproximación documentada, no hay integración
// FX en vivo).
type TotalsOptions struct {
	BaseCurrency  string
	ExchangeRates map[string]decimal.Decimal
}

// InvoiceTotals es el resultado del cálculo. Los mapas por moneda son el
// desglose autoritativo cuando hay monedas mezcladas; Subtotal/VatTotal/
// GrandTotal suman a valor facial entre monedas. Siempre finito y, con
// insumos no negativos, siempre >= 0.
type InvoiceTotals struct {
	Subtotal               decimal.Decimal
	VatTotal               decimal.Decimal
	GrandTotal             decimal.Decimal
	SubtotalInBaseCurrency decimal.Decimal
	BaseCurrency           string
	TotalsByCurrency       map[string]decimal.Decimal
	VatTotalsByCurrency    map[string]decimal.Decimal
	ItemsCount             int
}

// CalculateInvoiceTotals computa los totales de un conjunto de líneas.
// Por línea: subtotal = cantidad * precio; IVA = subtotal * tasa/100;
// total = subtotal + IVA. Función pura y determinista, sin I/O.
// GrandTotal == Subtotal + VatTotal siempre.
func CalculateInvoiceTotals(items []LineItem, opts TotalsOptions) InvoiceTotals {
	base := strings.ToUpper(strings.TrimSpace(opts.BaseCurrency))
	if base == "" {
		base = "USD"
	}

	hundred := decimal.NewFromInt(100)
	totals := InvoiceTotals{
		BaseCurrency:        base,
		TotalsByCurrency:    make(map[string]decimal.Decimal),
		VatTotalsByCurrency: make(map[string]decimal.Decimal),
		ItemsCount:          len(items),
	}

	for _, it := range items {
		lineSubtotal := it.Quantity.Mul(it.Price)
		lineVat := lineSubtotal.Mul(it.VatRate).Div(hundred)
		lineTotal := lineSubtotal.Add(lineVat)

		currency := strings.ToUpper(strings.TrimSpace(it.Currency))
		if currency == "" {
			currency = base
		}

		// Desglose en la moneda propia de la línea, sin convertir.
		totals.TotalsByCurrency[currency] = totals.TotalsByCurrency[currency].Add(lineTotal)
		totals.VatTotalsByCurrency[currency] = totals.VatTotalsByCurrency[currency].Add(lineVat)

		// Sumas a valor facial entre monedas.
		totals.Subtotal = totals.Subtotal.Add(lineSubtotal)
		totals.VatTotal = totals.VatTotal.Add(lineVat)
		totals.GrandTotal = totals.GrandTotal.Add(lineTotal)

		// Acumulado en moneda base: convierte solo si hay tasa; sin tasa
		// entra a valor facial (mejor esfuerzo).
		switch {
		case currency == base:
			totals.SubtotalInBaseCurrency = totals.SubtotalInBaseCurrency.Add(lineSubtotal)
		default:
			if rate, ok := opts.ExchangeRates[currency]; ok && rate.IsPositive() {
				totals.SubtotalInBaseCurrency = totals.SubtotalInBaseCurrency.Add(lineSubtotal.Mul(rate))
			} else {
				totals.SubtotalInBaseCurrency = totals.SubtotalInBaseCurrency.Add(lineSubtotal)
			}
		}
	}

	return totals
}
