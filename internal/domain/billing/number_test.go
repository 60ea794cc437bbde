package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Tablero-api/internal/domain/billing"
	"github.com/jhoicas/Tablero-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del formato de número de factura. El formato de referencia:
//
//	serie "INV", prefijo "INV", con año, separador "-", contador 1, año 2024
//	→ "INV-2024-0001"
// ──────────────────────────────────────────────────────────────────────────────

var enero2024 = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

func TestFormatInvoiceNumber_FormatoReferencia(t *testing.T) {
	s := serie("INV", "INV", "-", true, false)

	numero := billing.FormatInvoiceNumber(s, 1, enero2024)

	assert.Equal(t, "INV-2024-0001", numero)
}

func TestFormatInvoiceNumber_ConAnioYMes(t *testing.T) {
	s := serie("FACT", "FACT", "-", true, true)

	numero := billing.FormatInvoiceNumber(s, 42, enero2024)

	assert.Equal(t, "FACT-202401-0042", numero,
		"año y mes forman un solo segmento yyyymm")
}

func TestFormatInvoiceNumber_SinFecha(t *testing.T) {
	s := serie("INV", "INV", "-", false, false)

	numero := billing.FormatInvoiceNumber(s, 7, enero2024)

	assert.Equal(t, "INV-0007", numero)
}

func TestFormatInvoiceNumber_ConSufijo(t *testing.T) {
	s := serie("INV", "INV", "-", true, false)
	s.Suffix = "-E"

	numero := billing.FormatInvoiceNumber(s, 3, enero2024)

	assert.Equal(t, "INV-2024-0003-E", numero, "el sufijo se pega al final")
}

func TestFormatInvoiceNumber_AnchoDeRelleno(t *testing.T) {
	s := serie("INV", "INV", "-", false, false)
	s.PadWidth = 6

	assert.Equal(t, "INV-000009", billing.FormatInvoiceNumber(s, 9, enero2024))
}

// TestFormatInvoiceNumber_ContadorDesbordaAncho: un contador más largo que el
// ancho no se trunca jamás.
func TestFormatInvoiceNumber_ContadorDesbordaAncho(t *testing.T) {
	s := serie("INV", "INV", "-", false, false)

	assert.Equal(t, "INV-123456", billing.FormatInvoiceNumber(s, 123456, enero2024))
}

func TestFormatInvoiceNumber_SinPrefijo(t *testing.T) {
	s := serie("INV", "", "-", true, false)

	numero := billing.FormatInvoiceNumber(s, 1, enero2024)

	assert.Equal(t, "2024-0001", numero, "sin prefijo no debe quedar separador colgante")
}

func TestFormatInvoiceNumber_Determinista(t *testing.T) {
	s := serie("INV", "INV", "-", true, true)

	n1 := billing.FormatInvoiceNumber(s, 10, enero2024)
	n2 := billing.FormatInvoiceNumber(s, 10, enero2024)

	assert.Equal(t, n1, n2, "mismos insumos, mismo número")
}

// ── NumberingConfig.WithDefaults ──────────────────────────────────────────────

func TestWithDefaults_CompletaAusentes(t *testing.T) {
	cfg := billing.NumberingConfig{}.WithDefaults("INV")

	assert.Equal(t, "INV", cfg.Series, "serie ausente toma el default")
	assert.Equal(t, "INV", cfg.Prefix, "prefijo ausente toma el nombre de la serie")
	assert.Equal(t, "-", cfg.Separator)
	assert.Equal(t, int64(1), cfg.StartNumber)
	assert.Equal(t, billing.DefaultPadWidth, cfg.PadWidth)
}

func TestWithDefaults_RespetaExplicitos(t *testing.T) {
	cfg := billing.NumberingConfig{
		Series:      "FACT",
		Prefix:      "FC",
		Separator:   "/",
		StartNumber: 100,
		PadWidth:    6,
	}.WithDefaults("INV")

	assert.Equal(t, "FACT", cfg.Series)
	assert.Equal(t, "FC", cfg.Prefix)
	assert.Equal(t, "/", cfg.Separator)
	assert.Equal(t, int64(100), cfg.StartNumber)
	assert.Equal(t, 6, cfg.PadWidth)
}

func TestWithDefaults_RecortaEspacios(t *testing.T) {
	cfg := billing.NumberingConfig{Series: "  INV  "}.WithDefaults("X")

	assert.Equal(t, "INV", cfg.Series)
}

// ── helper ────────────────────────────────────────────────────────────────────

func serie(name, prefix, sep string, incYear, incMonth bool) entity.InvoiceSeries {
	return entity.InvoiceSeries{
		TenantID:     "t1",
		DatabaseID:   "db1",
		Series:       name,
		Prefix:       prefix,
		Separator:    sep,
		IncludeYear:  incYear,
		IncludeMonth: incMonth,
		PadWidth:     billing.DefaultPadWidth,
	}
}
