//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/farolabs/faro/internal/api/handlers"
	"github.com/farolabs/faro/internal/extract"
	"github.com/farolabs/faro/internal/index"
	"github.com/farolabs/faro/internal/ingest"
	"github.com/farolabs/faro/internal/llm"
	"github.com/farolabs/faro/internal/retrieval"
	"github.com/farolabs/faro/internal/server"
	"github.com/farolabs/faro/internal/service"
)

const testContextBudget = 12000

// E2ETestEnv holds everything one end-to-end test needs: temp document and
// index roots, a stub completion endpoint, and the full API server on top of
// a real index.
type E2ETestEnv struct {
	T          *testing.T
	DocsRoot   string
	IndexRoot  string
	ServerURL  string
	HTTPClient *http.Client

	Completion *CompletionStub

	apiServer        *httptest.Server
	completionServer *httptest.Server
}

// CompletionStub fakes the downstream chat-completion endpoint. It replies
// with a fixed text and records the prompts it was asked to complete.
type CompletionStub struct {
	mu       sync.Mutex
	reply    string
	requests []CompletionRequest
}

// CompletionRequest captures one prompt pair sent to the stub.
type CompletionRequest struct {
	System string
	User   string
}

func (s *CompletionStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var captured CompletionRequest
		for _, m := range req.Messages {
			switch m.Role {
			case "system":
				captured.System = m.Content
			case "user":
				captured.User = m.Content
			}
		}

		s.mu.Lock()
		s.requests = append(s.requests, captured)
		reply := s.reply
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}
}

// SetReply changes the text the stub answers with.
func (s *CompletionStub) SetReply(reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = reply
}

// Requests returns a copy of every prompt pair received so far.
func (s *CompletionStub) Requests() []CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CompletionRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// stubEmbedder maps each text to a deterministic unit vector, so identical
// texts embed identically and ranking is reproducible without a real model.
type stubEmbedder struct {
	dim int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, s.dim)
		for j, r := range text {
			vec[(j+int(r))%s.dim]++
		}
		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		if n := math.Sqrt(sum); n > 0 {
			for k := range vec {
				vec[k] = float32(float64(vec[k]) / n)
			}
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dim }
func (s *stubEmbedder) Name() string    { return "stub" }

// SetupE2EEnv wires the real ingestion and retrieval stack behind the full
// router, with only the embedding model and the completion endpoint faked.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	t.Helper()

	docsRoot := t.TempDir()
	indexRoot := t.TempDir()

	completion := &CompletionStub{reply: "respuesta generada a partir del contexto"}
	completionServer := httptest.NewServer(completion.handler())

	idx := index.New(indexRoot, "docs", &stubEmbedder{dim: 64})
	ing := ingest.New(docsRoot, extract.New(extract.DefaultChunkParams()), idx)
	engine := retrieval.NewEngine(idx, retrieval.DefaultProbeTable(), retrieval.NewAssembler(testContextBudget))

	completionClient := llm.New(llm.Config{
		APIKey:  "test",
		BaseURL: completionServer.URL,
		Model:   "gpt-4o-mini",
	})
	assistant := service.NewAssistantService(engine, completionClient, service.AssistantConfig{Name: "Aria"})

	router := server.NewRouter(server.RouterConfig{
		ChatHandler:   handlers.NewChatHandler(assistant),
		UploadHandler: handlers.NewUploadHandler(ing),
		AreaHandler:   handlers.NewAreaHandler(idx),
		MaxBodyBytes:  25 << 20,
	})
	apiServer := httptest.NewServer(router)

	env := &E2ETestEnv{
		T:                t,
		DocsRoot:         docsRoot,
		IndexRoot:        indexRoot,
		ServerURL:        apiServer.URL,
		HTTPClient:       &http.Client{Timeout: 30 * time.Second},
		Completion:       completion,
		apiServer:        apiServer,
		completionServer: completionServer,
	}
	t.Cleanup(env.Cleanup)
	return env
}

// Cleanup shuts both test servers down.
func (e *E2ETestEnv) Cleanup() {
	if e.apiServer != nil {
		e.apiServer.Close()
		e.apiServer = nil
	}
	if e.completionServer != nil {
		e.completionServer.Close()
		e.completionServer = nil
	}
}

// APIResponse is the JSON envelope every endpoint answers with.
type APIResponse struct {
	Status int
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Get performs a GET request against the API.
func (e *E2ETestEnv) Get(path string) *APIResponse {
	e.T.Helper()

	resp, err := e.HTTPClient.Get(e.ServerURL + path)
	require.NoError(e.T, err)
	return e.decode(resp)
}

// Post performs a JSON POST request against the API.
func (e *E2ETestEnv) Post(path string, body interface{}) *APIResponse {
	e.T.Helper()

	payload, err := json.Marshal(body)
	require.NoError(e.T, err)

	resp, err := e.HTTPClient.Post(e.ServerURL+path, "application/json", bytes.NewReader(payload))
	require.NoError(e.T, err)
	return e.decode(resp)
}

// Upload sends a multipart document to /api/upload/{area}.
func (e *E2ETestEnv) Upload(area, filename string, content []byte) *APIResponse {
	e.T.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(e.T, err)
	_, err = fw.Write(content)
	require.NoError(e.T, err)
	require.NoError(e.T, mw.Close())

	resp, err := e.HTTPClient.Post(e.ServerURL+"/api/upload/"+area, mw.FormDataContentType(), &buf)
	require.NoError(e.T, err)
	return e.decode(resp)
}

func (e *E2ETestEnv) decode(resp *http.Response) *APIResponse {
	e.T.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(e.T, err)

	out := &APIResponse{Status: resp.StatusCode}
	require.NoError(e.T, json.Unmarshal(body, out), "response body: %s", body)
	return out
}

// ChatResponse mirrors the chat endpoint's data payload.
type ChatResponse struct {
	Reply         string   `json:"reply"`
	Area          string   `json:"area"`
	Sources       []Source `json:"sources"`
	AreasSearched []string `json:"areas_searched"`
}

// Source mirrors one source descriptor in a chat response.
type Source struct {
	Path     string  `json:"path"`
	Type     string  `json:"type"`
	Area     string  `json:"area"`
	Sheet    string  `json:"sheet"`
	Row      int     `json:"row"`
	Page     int     `json:"page"`
	Distance float32 `json:"distance"`
	Preview  string  `json:"preview"`
}

// Chat posts a message and decodes the reply.
func (e *E2ETestEnv) Chat(area, message string, k int) (*APIResponse, *ChatResponse) {
	e.T.Helper()

	path := "/api/chat"
	if area != "" {
		path += "/" + area
	}
	body := map[string]interface{}{"message": message}
	if k > 0 {
		body["k"] = k
	}

	resp := e.Post(path, body)
	if resp.Status != http.StatusOK {
		return resp, nil
	}

	var chat ChatResponse
	require.NoError(e.T, json.Unmarshal(resp.Data, &chat))
	return resp, &chat
}

// workbook builds an XLSX file in memory. Each entry sets a row starting at
// the given cell, excelize style.
func workbook(t *testing.T, sheet string, rows map[string][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for cell, row := range rows {
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

// savedPath is where an uploaded file lands under the docs root.
func (e *E2ETestEnv) savedPath(area, filename string) string {
	return filepath.Join(e.DocsRoot, area, filename)
}
