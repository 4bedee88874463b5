package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeTable_Detect(t *testing.T) {
	table := DefaultProbeTable()

	tests := []struct {
		name  string
		query string
		want  Probe
		found bool
	}{
		{
			name:  "container code in a question",
			query: "estado de MSCU1234567",
			want:  Probe{Field: "contenedor", Value: "MSCU1234567"},
			found: true,
		},
		{
			name:  "lowercase code is recognized and upper-cased",
			query: "dónde va el tghu7654321 ahora",
			want:  Probe{Field: "contenedor", Value: "TGHU7654321"},
			found: true,
		},
		{
			name:  "suffix shorter than six characters",
			query: "estado de MSCU12345",
			found: false,
		},
		{
			name:  "prefix glued to a preceding word",
			query: "refMSCU1234567",
			found: false,
		},
		{
			name:  "unknown carrier prefix",
			query: "estado de ZZZU1234567",
			found: false,
		},
		{
			name:  "plain question without identifiers",
			query: "cuándo llega el siguiente embarque",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Detect(tt.query)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestProbeTable_FirstFieldWins(t *testing.T) {
	table := NewProbeTable()
	require.NoError(t, table.Add("contenedor", containerPattern))
	require.NoError(t, table.Add("factura", `\bF-\d{6}\b`))

	probe, ok := table.Detect("la factura F-123456 del contenedor MSCU1234567")
	require.True(t, ok)
	assert.Equal(t, "contenedor", probe.Field)

	probe, ok = table.Detect("datos de la factura F-123456")
	require.True(t, ok)
	assert.Equal(t, Probe{Field: "factura", Value: "F-123456"}, probe)
}

func TestProbeTable_AddRejectsBadPattern(t *testing.T) {
	table := NewProbeTable()
	err := table.Add("roto", `[`)
	assert.Error(t, err)
}

func TestProbeTable_EmptyTableNeverMatches(t *testing.T) {
	_, ok := NewProbeTable().Detect("estado de MSCU1234567")
	assert.False(t, ok)
}
