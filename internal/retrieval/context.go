package retrieval

import (
	"strings"
	"unicode/utf8"

	"github.com/farolabs/faro/internal/domain"
)

// DefaultSeparator joins ranked chunks inside an assembled context.
const DefaultSeparator = "\n\n---\n\n"

// previewRunes bounds the source-descriptor text preview.
const previewRunes = 200

// Assembler joins ranked chunks into a single context string bounded by a
// character budget. Lengths are counted in runes, not bytes.
type Assembler struct {
	budget int
	sep    string
}

func NewAssembler(budgetChars int) *Assembler {
	return NewAssemblerWithSeparator(budgetChars, DefaultSeparator)
}

func NewAssemblerWithSeparator(budgetChars int, sep string) *Assembler {
	return &Assembler{budget: budgetChars, sep: sep}
}

// Assemble concatenates result texts in order until the budget is reached.
// The chunk that would overflow is cut so the context lands exactly on the
// budget; anything after it is dropped. One source descriptor is produced
// per chunk that made it in, whole or cut, and none for dropped chunks.
func (a *Assembler) Assemble(results []domain.SearchResult) domain.ContextBundle {
	sepLen := utf8.RuneCountInString(a.sep)

	var parts []string
	var sources []domain.SourceRef
	used := 0

	for _, r := range results {
		text := []rune(r.Text)
		cost := len(text)
		if len(parts) > 0 {
			cost += sepLen
		}

		if used+cost > a.budget {
			remaining := a.budget - used
			if len(parts) > 0 {
				remaining -= sepLen
			}
			if remaining > 0 {
				parts = append(parts, string(text[:remaining]))
				sources = append(sources, sourceRef(r))
			}
			break
		}

		parts = append(parts, r.Text)
		sources = append(sources, sourceRef(r))
		used += cost
	}

	return domain.ContextBundle{
		Context: strings.Join(parts, a.sep),
		Sources: sources,
	}
}

func sourceRef(r domain.SearchResult) domain.SourceRef {
	meta := domain.MetaFromMap(r.Meta)
	ref := domain.SourceRef{
		Path:     meta.SourcePath(),
		Type:     string(meta.SourceType()),
		Area:     r.Area,
		Distance: r.Distance,
		Preview:  preview(r.Text),
	}
	if sheet, ok := meta.Sheet(); ok {
		ref.Sheet = sheet
	}
	if row, ok := meta.Row(); ok {
		ref.Row = row
	}
	if page, ok := meta.Page(); ok {
		ref.Page = page
	}
	return ref
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes])
}
