//go:build e2e

package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_Health(t *testing.T) {
	env := SetupE2EEnv(t)

	resp := env.Get("/api/health")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"status":"ok"}`, string(resp.Data))
}

// A spreadsheet with a two-row title block and the header on row 3: a query
// naming one of its container codes must come back through the exact-match
// path, distance 0, attributed to the row it lives on.
func TestE2E_ContainerExactLookup(t *testing.T) {
	env := SetupE2EEnv(t)

	content := workbook(t, "Embarques", map[string][]interface{}{
		"A1": {"REPORTE DE EMBARQUES"},
		"A2": {"Semana 32"},
		"A3": {"Contenedor", "Factura", "Modelo", "Piezas", "Estatus", "Semana"},
		"A4": {"MSMU0000001", "F-1001", "TV50", "100", "En puerto", "32"},
		"A5": {"MSCU1234567", "F-1002", "TV55", "120", "En tránsito", "32"},
		"A6": {"TGHU0000003", "F-1003", "TV65", "80", "Entregado", "32"},
		"A7": {"CAIU0000004", "F-1004", "TV75", "60", "En aduana", "32"},
		"A8": {"OOLU0000005", "F-1005", "TV42", "200", "Programado", "33"},
	})

	up := env.Upload("logistica", "embarques.xlsx", content)
	require.Equal(t, http.StatusOK, up.Status)
	assert.JSONEq(t, `{"file":"embarques.xlsx","area":"logistica","chunks":5}`, string(up.Data))

	resp, chat := env.Chat("", "estado de MSCU1234567", 0)
	require.Equal(t, http.StatusOK, resp.Status)

	assert.Equal(t, "logistica", chat.Area)
	assert.Equal(t, []string{"logistica"}, chat.AreasSearched)
	require.Len(t, chat.Sources, 1)

	src := chat.Sources[0]
	assert.Zero(t, src.Distance)
	assert.Equal(t, "xlsx", src.Type)
	assert.Equal(t, "Embarques", src.Sheet)
	assert.Equal(t, 5, src.Row)
	assert.Equal(t, env.savedPath("logistica", "embarques.xlsx"), src.Path)
	assert.Contains(t, src.Preview, "Fila: 5")
	assert.Contains(t, src.Preview, "MSCU1234567")

	// The completion endpoint must have been grounded on that row.
	reqs := env.Completion.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].User, "Fila: 5")
	assert.Contains(t, reqs[0].User, "MSCU1234567")
	assert.Contains(t, reqs[0].User, "estado de MSCU1234567")
	assert.Equal(t, "respuesta generada a partir del contexto", chat.Reply)
}

// Re-uploading the same workbook must supersede its prior chunks: an exact
// lookup that requests a generous result count still sees the row once.
func TestE2E_ReuploadSupersedes(t *testing.T) {
	env := SetupE2EEnv(t)

	content := workbook(t, "Embarques", map[string][]interface{}{
		"A1": {"Contenedor", "Factura", "Modelo", "Piezas", "Estatus"},
		"A2": {"MSCU1234567", "F-1002", "TV55", "120", "En tránsito"},
		"A3": {"TGHU0000003", "F-1003", "TV65", "80", "Entregado"},
	})

	for i := 0; i < 2; i++ {
		up := env.Upload("logistica", "embarques.xlsx", content)
		require.Equal(t, http.StatusOK, up.Status)
	}

	_, chat := env.Chat("", "estado de MSCU1234567", 0)
	require.NotNil(t, chat)
	require.Len(t, chat.Sources, 1)
	assert.Zero(t, chat.Sources[0].Distance)
}

// With no area in the request, both areas are searched and the answer is
// attributed to whichever area's chunk scored the lowest distance.
func TestE2E_CrossAreaDetection(t *testing.T) {
	env := SetupE2EEnv(t)

	logText := "Calendario de atraques del puerto para la semana treinta y dos."
	venText := "Resumen trimestral de ventas por retailer y modelo de televisor."

	up := env.Upload("logistica", "atraques.txt", []byte(logText))
	require.Equal(t, http.StatusOK, up.Status)
	up = env.Upload("ventas", "resumen.txt", []byte(venText))
	require.Equal(t, http.StatusOK, up.Status)

	// Identical text embeds identically, so the ventas chunk wins.
	resp, chat := env.Chat("", venText, 3)
	require.Equal(t, http.StatusOK, resp.Status)

	assert.Equal(t, []string{"logistica", "ventas"}, chat.AreasSearched)
	assert.Equal(t, "ventas", chat.Area)
	require.NotEmpty(t, chat.Sources)
	assert.Equal(t, "ventas", chat.Sources[0].Area)
	assert.InDelta(t, 0, chat.Sources[0].Distance, 1e-4)

	for i := 1; i < len(chat.Sources); i++ {
		assert.LessOrEqual(t, chat.Sources[i-1].Distance, chat.Sources[i].Distance)
	}
}

// Scoping the chat to one area must leave the other area untouched.
func TestE2E_AreaScopedChat(t *testing.T) {
	env := SetupE2EEnv(t)

	up := env.Upload("logistica", "atraques.txt", []byte("El buque atraca el martes."))
	require.Equal(t, http.StatusOK, up.Status)
	up = env.Upload("ventas", "resumen.txt", []byte("Ventas del trimestre por tienda."))
	require.Equal(t, http.StatusOK, up.Status)

	resp, chat := env.Chat("ventas", "Ventas del trimestre por tienda.", 0)
	require.Equal(t, http.StatusOK, resp.Status)

	assert.Equal(t, "ventas", chat.Area)
	assert.Equal(t, []string{"ventas"}, chat.AreasSearched)
	for _, src := range chat.Sources {
		assert.Equal(t, "ventas", src.Area)
	}
}

func TestE2E_AreasEndpoint(t *testing.T) {
	env := SetupE2EEnv(t)

	resp := env.Get("/api/areas")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"areas":[]}`, string(resp.Data))

	up := env.Upload("Logística", "nota.txt", []byte("La carga sale el viernes."))
	require.Equal(t, http.StatusOK, up.Status)
	up = env.Upload("ventas", "nota.txt", []byte("Pedidos confirmados del retailer."))
	require.Equal(t, http.StatusOK, up.Status)

	resp = env.Get("/api/areas")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"areas":["logistica","ventas"]}`, string(resp.Data))
}

func TestE2E_UploadUnsupportedFormat(t *testing.T) {
	env := SetupE2EEnv(t)

	resp := env.Upload("logistica", "foto.png", []byte("not really a png"))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNSUPPORTED_FORMAT", resp.Error.Code)
}

// Before anything is ingested, the assistant answers with guidance instead
// of calling the completion endpoint.
func TestE2E_ChatWithEmptyIndex(t *testing.T) {
	env := SetupE2EEnv(t)

	resp, chat := env.Chat("", "¿dónde está el contenedor?", 0)
	require.Equal(t, http.StatusOK, resp.Status)

	assert.Contains(t, chat.Reply, "No encontré")
	assert.Empty(t, chat.Sources)
	assert.Empty(t, env.Completion.Requests())
}

// Greetings short-circuit: no retrieval, no completion call.
func TestE2E_GreetingShortcut(t *testing.T) {
	env := SetupE2EEnv(t)

	resp, chat := env.Chat("", "hola", 0)
	require.Equal(t, http.StatusOK, resp.Status)

	assert.Contains(t, chat.Reply, "Aria")
	assert.Empty(t, chat.Sources)
	assert.Empty(t, env.Completion.Requests())
}

func TestE2E_ChatValidation(t *testing.T) {
	env := SetupE2EEnv(t)

	resp := env.Post("/api/chat", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}
