package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/farolabs/faro/internal/api/handlers"
	"github.com/farolabs/faro/internal/domain"
	"github.com/farolabs/faro/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAssistant struct {
	answer domain.Answer
	err    error
}

func (s *stubAssistant) Ask(ctx context.Context, input service.AskInput) (domain.Answer, error) {
	return s.answer, s.err
}

type stubIngestor struct {
	root   string
	chunks int
	err    error
}

func (s *stubIngestor) DocsRoot() string { return s.root }

func (s *stubIngestor) Ingest(ctx context.Context, path, area string) (int, error) {
	return s.chunks, s.err
}

type stubAreaLister struct {
	areas []string
	err   error
}

func (s *stubAreaLister) Areas() ([]string, error) { return s.areas, s.err }

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(RouterConfig{
		ChatHandler:   handlers.NewChatHandler(&stubAssistant{answer: domain.Answer{Reply: "ok", Area: "logistica"}}),
		UploadHandler: handlers.NewUploadHandler(&stubIngestor{root: t.TempDir(), chunks: 1}),
		AreaHandler:   handlers.NewAreaHandler(&stubAreaLister{areas: []string{"logistica", "ventas"}}),
		MaxBodyBytes:  1 << 20,
	})
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_ChatRoute(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hola"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["reply"])
}

func TestRouter_ChatAreaRoute(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/logistica", strings.NewReader(`{"message":"naves en puerto"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AreasRoute(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/areas", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"logistica", "ventas"}, data["areas"])
}

func TestRouter_UploadRoute(t *testing.T) {
	router := setupRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notas.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("La nave MSC Aurora atraca el lunes."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/logistica", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "notas.txt", data["file"])
	assert.Equal(t, float64(1), data["chunks"])
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_MaxBodyLimit(t *testing.T) {
	router := NewRouter(RouterConfig{
		ChatHandler:   handlers.NewChatHandler(&stubAssistant{}),
		UploadHandler: handlers.NewUploadHandler(&stubIngestor{root: t.TempDir()}),
		AreaHandler:   handlers.NewAreaHandler(&stubAreaLister{}),
		MaxBodyBytes:  16,
	})

	body := strings.Repeat("x", 100)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
