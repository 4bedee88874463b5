package extract

import (
	"fmt"
	"os"

	"github.com/farolabs/faro/internal/domain"
)

func (e *Extractor) extractTxt(path string) ([]domain.Chunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}

	var out []domain.Chunk
	for seq, chunk := range ChunkText(string(raw), e.Chunk) {
		out = append(out, domain.Chunk{
			Text: chunk,
			Meta: domain.TxtChunkMeta{Path: path, Seq: seq},
		})
	}
	return out, nil
}
