package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/farolabs/faro/internal/api"
	"github.com/farolabs/faro/internal/domain"
	"github.com/farolabs/faro/internal/extract"
	"github.com/go-chi/chi/v5"
)

type Ingestor interface {
	DocsRoot() string
	Ingest(ctx context.Context, path, area string) (int, error)
}

type UploadHandler struct {
	ing Ingestor
}

func NewUploadHandler(ing Ingestor) *UploadHandler {
	return &UploadHandler{ing: ing}
}

type UploadResponse struct {
	File   string `json:"file"`
	Area   string `json:"area"`
	Chunks int    `json:"chunks"`
}

// Upload saves a multipart document under the area's directory and indexes
// it immediately. Re-uploading a file with the same name supersedes its
// previous chunks.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	area := domain.NormalizeArea(chi.URLParam(r, "area"))
	if area == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "area is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "filename is required")
		return
	}

	if !extract.Supported(name) {
		api.Error(w, http.StatusUnsupportedMediaType, domain.ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported document format: %s", filepath.Ext(name)))
		return
	}

	dir := filepath.Join(h.ing.DocsRoot(), area)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		api.HandleError(w, fmt.Errorf("creating area directory: %w", err))
		return
	}

	dst := filepath.Join(dir, name)
	if err := saveUpload(dst, file); err != nil {
		api.HandleError(w, fmt.Errorf("saving upload: %w", err))
		return
	}

	chunks, err := h.ing.Ingest(r.Context(), dst, area)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, UploadResponse{
		File:   name,
		Area:   area,
		Chunks: chunks,
	})
}

func saveUpload(dst string, src io.Reader) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
