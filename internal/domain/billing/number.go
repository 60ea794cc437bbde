// Package billing: lógica pura del módulo de facturación (formato de
// números de factura y cálculo de totales multi-moneda). Sin I/O; la
// asignación atómica de contadores vive en la capa de aplicación sobre
// el repositorio de series.
package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Tablero-api/internal/domain/entity"
)

// Ancho mínimo por defecto del contador con ceros a la izquierda.
const DefaultPadWidth = 4

// InvoiceNumber es el número asignado a una factura: inmutable, se calcula
// una sola vez al asignar y se guarda desnormalizado en la fila de la
// factura (nunca se recalcula).
type InvoiceNumber struct {
	Number string
	Series string
}

// NumberingConfig es la configuración de numeración que acompaña un request.
// Solo manda en la creación de la serie: una vez creada, la configuración
// almacenada en la fila de invoice_series es autoritativa.
type NumberingConfig struct {
	Series       string
	Prefix       string
	Suffix       string
	Separator    string
	IncludeYear  bool
	IncludeMonth bool
	ResetYearly  bool
	StartNumber  int64
	PadWidth     int
}

// WithDefaults completa los campos ausentes: serie por defecto (config de la
// app), prefijo = nombre de la serie, separador "-", inicio en 1, ancho 4.
func (c NumberingConfig) WithDefaults(defaultSeries string) NumberingConfig {
	out := c
	out.Series = strings.TrimSpace(out.Series)
	if out.Series == "" {
		out.Series = defaultSeries
	}
	if out.Prefix == "" {
		out.Prefix = out.Series
	}
	if out.Separator == "" {
		out.Separator = "-"
	}
	if out.StartNumber <= 0 {
		out.StartNumber = 1
	}
	if out.PadWidth <= 0 {
		out.PadWidth = DefaultPadWidth
	}
	return out
}

// FormatInvoiceNumber formatea el número a partir de la fila de serie, el
// contador recién asignado y el instante de asignación:
//
//	prefijo sep [yyyy][mm] sep contador-con-ceros sufijo
//
// Año y mes forman un solo segmento ("202401" si van ambos); el sufijo se
// pega sin separador. Ej: prefix "INV", IncludeYear, separador "-" y
// contador 1 en 2024 producen "INV-2024-0001". Determinista: mismos
// insumos, mismo número.
func FormatInvoiceNumber(s entity.InvoiceSeries, counter int64, at time.Time) string {
	width := s.PadWidth
	if width <= 0 {
		width = DefaultPadWidth
	}

	var datePart string
	if s.IncludeYear {
		datePart = fmt.Sprintf("%04d", at.Year())
	}
	if s.IncludeMonth {
		datePart += fmt.Sprintf("%02d", int(at.Month()))
	}

	segments := make([]string, 0, 3)
	if s.Prefix != "" {
		segments = append(segments, s.Prefix)
	}
	if datePart != "" {
		segments = append(segments, datePart)
	}
	segments = append(segments, fmt.Sprintf("%0*d", width, counter))

	return strings.Join(segments, s.Separator) + s.Suffix
}
