package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIClientWithCmd_EnvURL(t *testing.T) {
	t.Setenv(envAPIURL, "http://example.com:9999")

	api, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:9999", api.baseURL)
}

func TestNewAPIClientWithCmd_DefaultURL(t *testing.T) {
	t.Setenv(envAPIURL, "")

	api, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, api.baseURL)
}

func TestAPIClient_Get_ParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/areas", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"areas":["logistica","ventas"]}}`))
	}))
	defer srv.Close()

	api := NewAPIClientWithConfig(srv.URL)
	resp, err := api.Get("/api/areas")
	require.NoError(t, err)

	var areas AreasResponse
	require.NoError(t, json.Unmarshal(resp.Data, &areas))
	assert.Equal(t, []string{"logistica", "ventas"}, areas.Areas)
}

func TestAPIClient_Post_SendsJSONBody(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"data":{"reply":"ok","sources":[]}}`))
	}))
	defer srv.Close()

	api := NewAPIClientWithConfig(srv.URL)
	_, err := api.Post("/api/chat", ChatRequest{Message: "hola", K: 3})
	require.NoError(t, err)
	assert.Equal(t, "hola", got.Message)
	assert.Equal(t, 3, got.K)
}

func TestAPIClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":"CAPACITY_EXCEEDED","message":"completion endpoint at capacity"}}`))
	}))
	defer srv.Close()

	api := NewAPIClientWithConfig(srv.URL)
	_, err := api.Get("/api/chat")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "CAPACITY_EXCEEDED", apiErr.Code)
	assert.Contains(t, apiErr.Message, "at capacity")
}

func TestAPIClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	api := NewAPIClientWithConfig(srv.URL)
	_, err := api.Get("/api/health")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "upstream exploded")
}

func TestAPIClient_PostFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notas.txt")
	require.NoError(t, os.WriteFile(path, []byte("La nave MSC Aurora atraca el lunes."), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notas.txt", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "La nave MSC Aurora atraca el lunes.", string(content))

		w.Write([]byte(`{"data":{"file":"notas.txt","area":"logistica","chunks":1}}`))
	}))
	defer srv.Close()

	api := NewAPIClientWithConfig(srv.URL)
	resp, err := api.PostFile("/api/upload/logistica", path)
	require.NoError(t, err)

	var uploadResp UploadResponse
	require.NoError(t, json.Unmarshal(resp.Data, &uploadResp))
	assert.Equal(t, "notas.txt", uploadResp.File)
	assert.Equal(t, 1, uploadResp.Chunks)
}

func TestAPIClient_PostFile_MissingFile(t *testing.T) {
	api := NewAPIClientWithConfig("http://localhost:0")
	_, err := api.PostFile("/api/upload/logistica", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}
