package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/farolabs/faro/internal/api"
	"github.com/farolabs/faro/internal/domain"
	"github.com/farolabs/faro/internal/service"
	"github.com/go-chi/chi/v5"
)

type Assistant interface {
	Ask(ctx context.Context, input service.AskInput) (domain.Answer, error)
}

type ChatHandler struct {
	svc Assistant
}

func NewChatHandler(svc Assistant) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Message string `json:"message"`
	K       int    `json:"k,omitempty"`
}

type ChatResponse struct {
	Reply         string             `json:"reply"`
	Area          string             `json:"area,omitempty"`
	Sources       []domain.SourceRef `json:"sources"`
	AreasSearched []string           `json:"areas_searched,omitempty"`
}

// Chat answers a question against every indexed area. The area the answer
// was drawn from is detected from the best-ranked chunk.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, "")
}

// ChatArea answers a question scoped to the area named in the URL.
func (h *ChatHandler) ChatArea(w http.ResponseWriter, r *http.Request) {
	area := chi.URLParam(r, "area")
	if strings.TrimSpace(area) == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "area is required")
		return
	}
	h.ask(w, r, area)
}

func (h *ChatHandler) ask(w http.ResponseWriter, r *http.Request, area string) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "message is required")
		return
	}

	answer, err := h.svc.Ask(r.Context(), service.AskInput{
		Query: req.Message,
		TopK:  req.K,
		Area:  area,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.SourceRef{}
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Reply:         answer.Reply,
		Area:          answer.Area,
		Sources:       sources,
		AreasSearched: answer.AreasSearched,
	})
}
