package handlers

import (
	"net/http"

	"github.com/farolabs/faro/internal/api"
)

type AreaLister interface {
	Areas() ([]string, error)
}

type AreaHandler struct {
	index AreaLister
}

func NewAreaHandler(index AreaLister) *AreaHandler {
	return &AreaHandler{index: index}
}

type AreasResponse struct {
	Areas []string `json:"areas"`
}

// List returns every indexed area.
func (h *AreaHandler) List(w http.ResponseWriter, r *http.Request) {
	areas, err := h.index.Areas()
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if areas == nil {
		areas = []string{}
	}

	api.Success(w, http.StatusOK, AreasResponse{Areas: areas})
}
