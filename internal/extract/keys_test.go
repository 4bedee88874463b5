package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickKeyMeta_SpanishAndEnglishSynonyms(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		values  []string
		want    map[string]string
	}{
		{
			name:    "spanish headers",
			headers: []string{"Contenedor", "Factura", "Remisión", "Piezas", "Estatus"},
			values:  []string{"mscu1234567", "f-1001", "rm-88", "120", "En tránsito"},
			want: map[string]string{
				"contenedor": "MSCU1234567",
				"factura":    "F-1001",
				"remision":   "RM-88",
				"piezas":     "120",
				"estatus":    "En tránsito",
			},
		},
		{
			name:    "english headers",
			headers: []string{"Container", "Invoice", "Model", "Qty", "Status", "Week"},
			values:  []string{"tghu7654321", "inv-33", "tv55x", "48", "delivered", "32"},
			want: map[string]string{
				"contenedor": "TGHU7654321",
				"factura":    "INV-33",
				"modelo":     "TV55X",
				"piezas":     "48",
				"estatus":    "delivered",
				"semana":     "32",
			},
		},
		{
			name:    "year month carrier mode retailer",
			headers: []string{"Año", "Mes", "Transporte", "Modalidad", "Cliente"},
			values:  []string{"2024", "agosto", "maersk", "marítimo", "liverpool"},
			want: map[string]string{
				"anio":       "2024",
				"mes":        "agosto",
				"transporte": "maersk",
				"modalidad":  "marítimo",
				"retailer":   "liverpool",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickKeyMeta(tt.headers, tt.values))
		})
	}
}

func TestPickKeyMeta_IdentifierValuesUppercased(t *testing.T) {
	got := pickKeyMeta(
		[]string{"Contenedor", "Estatus"},
		[]string{"  msmu0001234  ", "  en puerto  "},
	)

	assert.Equal(t, "MSMU0001234", got["contenedor"])
	assert.Equal(t, "en puerto", got["estatus"])
}

func TestPickKeyMeta_FirstMatchingColumnWins(t *testing.T) {
	got := pickKeyMeta(
		[]string{"Contenedor", "Contenedor anterior"},
		[]string{"MSCU1111111", "MSCU2222222"},
	)

	assert.Equal(t, "MSCU1111111", got["contenedor"])
}

func TestPickKeyMeta_OneHeaderCanClaimSeveralKeys(t *testing.T) {
	got := pickKeyMeta(
		[]string{"Estado del contenedor"},
		[]string{"en aduana"},
	)

	// The header matches both the status and the container patterns.
	assert.Equal(t, "en aduana", got["estatus"])
	assert.Equal(t, "EN ADUANA", got["contenedor"])
}

func TestPickKeyMeta_SkipsBlanks(t *testing.T) {
	got := pickKeyMeta(
		[]string{"", "Factura", "Modelo"},
		[]string{"x", "   ", "TV42"},
	)

	assert.Equal(t, map[string]string{"modelo": "TV42"}, got)
}

func TestPickKeyMeta_RowShorterThanHeaders(t *testing.T) {
	got := pickKeyMeta(
		[]string{"Contenedor", "Factura", "Modelo"},
		[]string{"OOLU9998887"},
	)

	assert.Equal(t, map[string]string{"contenedor": "OOLU9998887"}, got)
}

func TestBuildRowText_Layout(t *testing.T) {
	headers := []string{"Contenedor", "Piezas", "Destino", "Observaciones"}
	values := []string{"MSCU1234567", "120", "CDMX", "llega lunes"}
	keys := pickKeyMeta(headers, values)

	text := buildRowText("Embarques", 7, headers, values, keys)

	assert.Equal(t,
		"Hoja: Embarques | Fila: 7 | contenedor: MSCU1234567 | piezas: 120 | Destino: CDMX | Observaciones: llega lunes",
		text,
	)
}

func TestBuildRowText_KeyOrderIsFixed(t *testing.T) {
	headers := []string{"Semana", "Estatus", "Contenedor"}
	values := []string{"32", "en ruta", "CAIU0012345"}
	keys := pickKeyMeta(headers, values)

	text := buildRowText("Hoja1", 2, headers, values, keys)

	iCont := strings.Index(text, "contenedor:")
	iEst := strings.Index(text, "estatus:")
	iSem := strings.Index(text, "semana:")
	require.NotEqual(t, -1, iCont)
	require.NotEqual(t, -1, iEst)
	require.NotEqual(t, -1, iSem)
	assert.Less(t, iCont, iEst)
	assert.Less(t, iEst, iSem)
}

func TestBuildRowText_ExtraPairsCapped(t *testing.T) {
	var headers, values []string
	for i := 0; i < 20; i++ {
		headers = append(headers, "Columna"+strings.Repeat("x", i+1))
		values = append(values, "v")
	}

	text := buildRowText("Hoja1", 4, headers, values, nil)

	parts := strings.Split(text, " | ")
	// Sheet, row, and at most maxExtraPairs additional pairs.
	assert.Len(t, parts, 2+maxExtraPairs)
}

func TestBuildRowText_KeyColumnsNotRepeatedAsExtras(t *testing.T) {
	headers := []string{"Contenedor", "Destino"}
	values := []string{"TEMU5556667", "Monterrey"}
	keys := pickKeyMeta(headers, values)

	text := buildRowText("Hoja1", 9, headers, values, keys)

	assert.Equal(t, 1, strings.Count(text, "TEMU5556667"))
	assert.Contains(t, text, "Destino: Monterrey")
}
