package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// keyPattern matches a spreadsheet header against one domain key.
type keyPattern struct {
	key string
	re  *regexp.Regexp
}

// keyPatterns maps header synonyms (Spanish and English) to domain keys.
// Matching iterates in table order; the first column to match a key claims
// it.
var keyPatterns = []keyPattern{
	{"contenedor", regexp.MustCompile(`(?i)\bcontenedor\b|\bcontainer\b|\bcntr\b`)},
	{"factura", regexp.MustCompile(`(?i)\bfactura\b|\binvoice\b`)},
	{"pi", regexp.MustCompile(`(?i)\bpi\b|\bp\.?i\.?\b`)},
	{"remision", regexp.MustCompile(`(?i)\bremisi[oó]n\b|\bremision\b|\brm\b`)},
	{"modelo", regexp.MustCompile(`(?i)\bmodelo\b|\bmodel\b`)},
	{"piezas", regexp.MustCompile(`(?i)\bpiezas\b|\bqty\b|\bpcs\b|\bpieces\b`)},
	{"estatus", regexp.MustCompile(`(?i)\bestatus\b|\bstatus\b|\bestado\b`)},
	{"anio", regexp.MustCompile(`(?i)\ba[nñ]o\b|\byear\b`)},
	{"mes", regexp.MustCompile(`(?i)\bmes\b|\bmonth\b`)},
	{"semana", regexp.MustCompile(`(?i)\bsemana\b|\bweek\b`)},
	{"transporte", regexp.MustCompile(`(?i)\btransporte\b|\bcarrier\b|\btransport\b`)},
	{"modalidad", regexp.MustCompile(`(?i)\bmodalidad\b|\bmode\b`)},
	{"retailer", regexp.MustCompile(`(?i)\bretailer\b|\bcliente\b|\btienda\b`)},
}

// keyDisplayOrder fixes the position of extracted keys in rendered row text.
var keyDisplayOrder = []string{
	"contenedor", "piezas", "factura", "pi", "remision",
	"modelo", "estatus", "anio", "mes", "semana",
	"transporte", "modalidad", "retailer",
}

// identifierKeys are upper-cased on extraction so exact lookup is
// case-insensitive for codes.
var identifierKeys = map[string]bool{
	"contenedor": true,
	"factura":    true,
	"pi":         true,
	"remision":   true,
	"modelo":     true,
}

// maxExtraPairs bounds the non-key header/value pairs appended to a row's
// rendered text.
const maxExtraPairs = 12

// pickKeyMeta extracts domain key fields from one data row. Headers and
// values pair up by column index; the first matching column wins each key.
func pickKeyMeta(headers, values []string) map[string]string {
	found := make(map[string]string)

	n := len(headers)
	if len(values) < n {
		n = len(values)
	}

	for i := 0; i < n; i++ {
		hs := strings.TrimSpace(headers[i])
		vs := strings.TrimSpace(values[i])
		if hs == "" || vs == "" {
			continue
		}

		for _, kp := range keyPatterns {
			if !kp.re.MatchString(hs) {
				continue
			}
			if _, taken := found[kp.key]; taken {
				continue
			}
			if identifierKeys[kp.key] {
				found[kp.key] = strings.ToUpper(vs)
			} else {
				found[kp.key] = vs
			}
		}
	}

	return found
}

// isKeyHeader reports whether the header matches any domain key pattern.
func isKeyHeader(h string) bool {
	for _, kp := range keyPatterns {
		if kp.re.MatchString(h) {
			return true
		}
	}
	return false
}

// buildRowText renders one data row as a single retrievable record: sheet
// and 1-based row first, extracted keys in display order, then up to
// maxExtraPairs remaining header/value pairs in sheet column order.
func buildRowText(sheet string, row int, headers, values []string, keyMeta map[string]string) string {
	parts := []string{
		fmt.Sprintf("Hoja: %s", sheet),
		fmt.Sprintf("Fila: %d", row),
	}

	for _, k := range keyDisplayOrder {
		if v, ok := keyMeta[k]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", k, v))
		}
	}

	n := len(headers)
	if len(values) < n {
		n = len(values)
	}

	extra := 0
	for i := 0; i < n && extra < maxExtraPairs; i++ {
		hs := strings.TrimSpace(headers[i])
		vs := strings.TrimSpace(values[i])
		if hs == "" || vs == "" {
			continue
		}
		if isKeyHeader(hs) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", hs, vs))
		extra++
	}

	return strings.Join(parts, " | ")
}
