package semantic

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Helpers de codificación/decodificación de celdas. Una celda guarda JSON
// crudo: escalar para columnas text/number/boolean/date, arreglo de un id de
// fila para columnas reference. Los montos se guardan como string JSON con
// comillas (el marshal por defecto de shopspring/decimal), lo que evita
// pérdida de precisión en el camino jsonb.

// DecodeString decodifica una celda como texto. Acepta string JSON, número o
// booleano; cualquier otra cosa (null, arreglo, objeto, JSON malformado)
// produce "".
func DecodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return "true"
		}
		return "false"
	}
	return ""
}

// DecodeDecimal decodifica una celda numérica. Acepta número JSON o string
// numérico (con o sin comillas). Valores ausentes, malformados o no finitos
// ("NaN", "Inf") decodifican a cero: la política numérica del cálculo de
// totales es degradar a 0, nunca propagar NaN.
func DecodeDecimal(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero
	}
	return d
}

// DecodeBool decodifica una celda booleana. Acepta bool JSON o los strings
// "true"/"false"; todo lo demás es false.
func DecodeBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == "true"
	}
	return false
}

// DecodeReference decodifica una celda de columna reference: un arreglo JSON
// con un id de fila. Por tolerancia acepta también un string plano (formato
// viejo). Arreglo vacío o valor irreconocible producen "".
func DecodeReference(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		if len(ids) == 0 {
			return ""
		}
		return ids[0]
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// EncodeString codifica texto como celda.
func EncodeString(s string) json.RawMessage {
	raw, _ := json.Marshal(s)
	return raw
}

// EncodeDecimal codifica un monto como celda (string JSON con comillas).
func EncodeDecimal(d decimal.Decimal) json.RawMessage {
	raw, _ := json.Marshal(d)
	return raw
}

// EncodeBool codifica un booleano como celda.
func EncodeBool(b bool) json.RawMessage {
	raw, _ := json.Marshal(b)
	return raw
}

// EncodeReference codifica una referencia a otra fila como arreglo de un id.
func EncodeReference(rowID string) json.RawMessage {
	raw, _ := json.Marshal([]string{rowID})
	return raw
}

// EncodeTime codifica un instante como celda de fecha (RFC 3339).
func EncodeTime(t time.Time) json.RawMessage {
	raw, _ := json.Marshal(t.Format(time.RFC3339))
	return raw
}
