package extract

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/farolabs/faro/internal/domain"
)

// extractPDF walks the document page by page; each page's plain text is
// chunked independently so chunk metadata can carry the page number.
func (e *Extractor) extractPDF(path string) ([]domain.Chunk, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var out []domain.Chunk
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		for seq, chunk := range ChunkText(text, e.Chunk) {
			out = append(out, domain.Chunk{
				Text: chunk,
				Meta: domain.PDFChunkMeta{Path: path, PageNum: i, Seq: seq},
			})
		}
	}
	return out, nil
}
