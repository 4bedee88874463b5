package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/farolabs/faro/internal/domain"
)

// supportedExts lists the file extensions ingestion handles.
var supportedExts = map[string]bool{
	".pdf":  true,
	".docx": true,
	".xlsx": true,
	".xlsm": true,
	".txt":  true,
}

// Supported reports whether the file's extension is ingestible.
func Supported(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// Extractor converts raw files into retrievable chunks. Prose formats go
// through the chunker; spreadsheets stay one record per row.
type Extractor struct {
	Chunk ChunkParams
}

func New(chunk ChunkParams) *Extractor {
	if chunk.MaxChars <= 0 {
		chunk = DefaultChunkParams()
	}
	return &Extractor{Chunk: chunk}
}

// Extract dispatches on the file extension and never panics: unparsable
// input surfaces as (nil, err) so the caller can log and skip, and an
// unsupported extension returns ErrUnsupportedFormat with zero records.
func (e *Extractor) Extract(path string) (chunks []domain.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			chunks = nil
			err = fmt.Errorf("extract %s: %v", path, r)
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(path)
	case ".docx":
		return e.extractDocx(path)
	case ".xlsx", ".xlsm":
		return extractXlsx(path)
	case ".txt":
		return e.extractTxt(path)
	default:
		return nil, domain.ErrUnsupportedFormat
	}
}
