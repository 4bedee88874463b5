package extract

import "strings"

// ChunkParams controls prose chunking.
type ChunkParams struct {
	MaxChars int
	Overlap  int
}

// DefaultChunkParams provides the chunking defaults used for all prose
// formats.
func DefaultChunkParams() ChunkParams {
	return ChunkParams{
		MaxChars: 1200,
		Overlap:  150,
	}
}

// minCutAdvance is the minimum number of runes a newline cut must advance
// past the window start; closer newlines are ignored and the window is cut
// at the hard boundary instead.
const minCutAdvance = 200

// ChunkText splits text into overlapping segments of at most p.MaxChars
// runes each. Windows prefer to end at the last newline inside them when
// that newline is far enough from the window start; the next window begins
// p.Overlap runes before the previous cut so local context survives the
// boundary. Forward progress is guaranteed for any parameter combination.
func ChunkText(text string, p ChunkParams) []string {
	clean := strings.ReplaceAll(strings.TrimSpace(text), "\r", "")
	if clean == "" {
		return nil
	}
	if p.MaxChars <= 0 {
		p = DefaultChunkParams()
	}
	if p.Overlap < 0 {
		p.Overlap = 0
	}

	runes := []rune(clean)
	n := len(runes)
	chunks := make([]string, 0, n/p.MaxChars+1)

	start := 0
	for start < n {
		end := start + p.MaxChars
		if end > n {
			end = n
		}

		cut := lastNewline(runes, start, end)
		if cut == -1 || cut <= start+minCutAdvance {
			cut = end
		}

		seg := strings.TrimSpace(string(runes[start:cut]))
		if seg != "" {
			chunks = append(chunks, seg)
		}

		if cut >= n {
			break
		}

		next := cut - p.Overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// lastNewline returns the rune index of the last '\n' in runes[start:end],
// or -1 when there is none.
func lastNewline(runes []rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}
