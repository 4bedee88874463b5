package retrieval

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/farolabs/faro/internal/domain"
)

// DefaultTopK is the result count used when the caller does not ask for one.
const DefaultTopK = 5

// Exact lookups request a generous per-area count so a multi-row match is
// never cut short; semantic queries keep a small floor.
const (
	exactLookupFloor = 50
	semanticFloor    = 5
)

// Searcher is the slice of the embedding index the engine queries.
type Searcher interface {
	Areas() ([]string, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Query(ctx context.Context, queryEmbedding []float32, k int, area string) ([]domain.SearchResult, error)
	QueryExact(ctx context.Context, queryEmbedding []float32, field, value string, k int, area string) ([]domain.SearchResult, error)
}

// Result is the outcome of one retrieval pass: the assembled context, its
// source descriptors, the area the top hit came from, and the areas that
// were actually searched.
type Result struct {
	Context       string
	Sources       []domain.SourceRef
	DetectedArea  string
	AreasSearched []string
}

// Engine runs the two-tier retrieval strategy: exact identifier lookup when
// the query carries a recognizable ID, semantic search otherwise, across one
// area or all indexed areas.
type Engine struct {
	searcher  Searcher
	probes    *ProbeTable
	assembler *Assembler
}

func NewEngine(searcher Searcher, probes *ProbeTable, assembler *Assembler) *Engine {
	return &Engine{
		searcher:  searcher,
		probes:    probes,
		assembler: assembler,
	}
}

// BuildContext retrieves the chunks most relevant to the query and assembles
// them into a bounded context. With an empty area it searches every indexed
// area and attributes the answer to the area of the best hit. A per-area
// search failure is logged and that area skipped; only an empty area list or
// a failed query embedding abort the pass.
func (e *Engine) BuildContext(ctx context.Context, query string, topK int, area string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, domain.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	requested := domain.NormalizeArea(area)
	areas := []string{requested}
	if requested == "" {
		var err error
		areas, err = e.searcher.Areas()
		if err != nil {
			return Result{}, fmt.Errorf("list indexed areas: %w", err)
		}
	}

	log.Printf("retrieval: areas=%v top_k=%d", areas, topK)

	if len(areas) == 0 {
		return Result{}, nil
	}

	emb, err := e.searcher.EmbedQuery(ctx, query)
	if err != nil {
		return Result{}, err
	}

	var results []domain.SearchResult
	if probe, ok := e.probes.Detect(query); ok {
		log.Printf("retrieval: exact lookup %s=%s", probe.Field, probe.Value)
		exactK := max(topK, exactLookupFloor)
		results = e.searchAll(areas, exactK, exactK, func(a string, k int) ([]domain.SearchResult, error) {
			return e.searcher.QueryExact(ctx, emb, probe.Field, probe.Value, k, a)
		})
		if len(results) == 0 {
			log.Printf("retrieval: exact lookup found nothing, falling back to semantic search")
		}
	}
	if len(results) == 0 {
		results = e.searchAll(areas, max(topK, semanticFloor), topK, func(a string, k int) ([]domain.SearchResult, error) {
			return e.searcher.Query(ctx, emb, k, a)
		})
	}

	detected := ""
	if len(results) > 0 {
		detected = results[0].Area
	}
	if detected == "" {
		detected = requested
	}

	bundle := e.assembler.Assemble(results)
	return Result{
		Context:       bundle.Context,
		Sources:       bundle.Sources,
		DetectedArea:  detected,
		AreasSearched: areas,
	}, nil
}

// searchAll queries each area for perAreaK results, then merges. A
// multi-area search sorts the concatenation by ascending distance and cuts
// it to mergeLimit; a single-area search returns results as the collection
// ranked them.
func (e *Engine) searchAll(areas []string, perAreaK, mergeLimit int, search func(area string, k int) ([]domain.SearchResult, error)) []domain.SearchResult {
	var all []domain.SearchResult
	for _, a := range areas {
		rs, err := search(a, perAreaK)
		if err != nil {
			log.Printf("retrieval: search in area %q failed: %v", a, err)
			continue
		}
		all = append(all, rs...)
	}

	if len(areas) > 1 {
		sort.SliceStable(all, func(i, j int) bool { return all[i].Distance < all[j].Distance })
		if len(all) > mergeLimit {
			all = all[:mergeLimit]
		}
	}
	return all
}
