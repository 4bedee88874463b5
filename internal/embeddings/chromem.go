package embeddings

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
)

// ToChromemFunc adapts an Embedder to the chromem-go embedding callback,
// which embeds one document at a time.
func ToChromemFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := e.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) != 1 {
			return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
		}
		return vecs[0], nil
	}
}
