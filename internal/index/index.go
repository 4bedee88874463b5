package index

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/farolabs/faro/internal/domain"
	"github.com/farolabs/faro/internal/embeddings"
)

// globalDir holds the collection used when no area is given. The leading
// underscore keeps it out of Areas().
const globalDir = "_global"

// idPrefixLen is how much of the document fingerprint goes into chunk IDs.
const idPrefixLen = 12

// Index owns one vector collection per area plus a global one, all stored
// under a single root directory. Collection handles are opened lazily and
// cached for the process lifetime; the zero value is not usable, construct
// with New.
type Index struct {
	root     string
	base     string
	embedder embeddings.Embedder

	mu    sync.Mutex
	colls map[string]*chromem.Collection
}

func New(root, base string, embedder embeddings.Embedder) *Index {
	return &Index{
		root:     root,
		base:     base,
		embedder: embedder,
		colls:    make(map[string]*chromem.Collection),
	}
}

// EmbedQuery embeds a single query text with the index's embedding model.
func (ix *Index) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyQuery
	}
	vecs, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(vecs))
	}
	return vecs[0], nil
}

// Upsert replaces a document's chunks in the area's collection. Chunk IDs
// are {fingerprint-prefix}-{seq}, so re-ingesting an unchanged file writes
// the same ID set. Existing records for the same path are deleted first; a
// call with no chunks leaves prior records untouched.
func (ix *Index) Upsert(ctx context.Context, doc domain.Document, chunks []domain.Chunk, area string) error {
	if doc.Path == "" {
		return domain.ErrEmptyDocumentPath
	}
	if len(chunks) == 0 {
		return nil
	}

	col, err := ix.collection(area, true)
	if err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks of %s: %w", len(chunks), doc.Path, err)
	}

	// Supersede prior chunks for this path. No-op when none exist.
	if err := col.Delete(ctx, map[string]string{domain.MetaKeyPath: doc.Path}, nil); err != nil {
		return fmt.Errorf("delete stale chunks of %s: %w", doc.Path, err)
	}

	slug := domain.NormalizeArea(area)
	prefix := doc.Fingerprint
	if len(prefix) > idPrefixLen {
		prefix = prefix[:idPrefixLen]
	}

	records := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		meta := c.Meta.Flatten()
		if slug != "" {
			meta[domain.MetaKeyArea] = slug
		}
		records[i] = chromem.Document{
			ID:        fmt.Sprintf("%s-%d", prefix, i),
			Metadata:  meta,
			Embedding: vecs[i],
			Content:   c.Text,
		}
	}

	if err := col.AddDocuments(ctx, records, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add %d chunks of %s: %w", len(records), doc.Path, err)
	}
	return nil
}

// Query runs a nearest-neighbor search against the area's collection (the
// global one when area is empty), returning up to k results by ascending
// distance. An area that was never ingested yields ErrAreaNotIndexed.
func (ix *Index) Query(ctx context.Context, queryEmbedding []float32, k int, area string) ([]domain.SearchResult, error) {
	return ix.search(ctx, queryEmbedding, k, area, nil)
}

// QueryExact looks up records whose stored key metadata equals field=value.
// Hits are assigned distance 0 so they rank ahead of any semantic result.
func (ix *Index) QueryExact(ctx context.Context, queryEmbedding []float32, field, value string, k int, area string) ([]domain.SearchResult, error) {
	if field == "" || value == "" {
		return nil, domain.ErrMissingRequiredField
	}
	results, err := ix.search(ctx, queryEmbedding, k, area, map[string]string{field: value})
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Distance = 0
	}
	return results, nil
}

func (ix *Index) search(ctx context.Context, queryEmbedding []float32, k int, area string, where map[string]string) ([]domain.SearchResult, error) {
	col, err := ix.collection(area, false)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults above the collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	hits, err := col.QueryEmbedding(ctx, queryEmbedding, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection for area %q: %w", area, err)
	}

	slug := domain.NormalizeArea(area)
	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		meta := make(map[string]string, len(h.Metadata)+1)
		for mk, mv := range h.Metadata {
			meta[mk] = mv
		}
		if slug != "" && meta[domain.MetaKeyArea] == "" {
			meta[domain.MetaKeyArea] = slug
		}
		results = append(results, domain.SearchResult{
			Text:     h.Content,
			Meta:     meta,
			Distance: 1 - h.Similarity,
			Area:     meta[domain.MetaKeyArea],
		})
	}
	return results, nil
}

// Areas lists the areas with an index directory, sorted. Dot and underscore
// prefixed directories (the global collection among them) are skipped.
func (ix *Index) Areas() ([]string, error) {
	entries, err := os.ReadDir(ix.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list index root: %w", err)
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

// Count reports how many chunks the area's collection holds.
func (ix *Index) Count(area string) (int, error) {
	col, err := ix.collection(area, false)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

func (ix *Index) collection(area string, create bool) (*chromem.Collection, error) {
	slug := domain.NormalizeArea(area)

	dir := filepath.Join(ix.root, globalDir)
	name := ix.base
	if slug != "" {
		dir = filepath.Join(ix.root, slug)
		name = ix.base + "_" + slug
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	key := dir + "::" + name
	if col, ok := ix.colls[key]; ok {
		return col, nil
	}

	if !create {
		if _, err := os.Stat(dir); err != nil {
			if os.IsNotExist(err) {
				return nil, domain.ErrAreaNotIndexed
			}
			return nil, fmt.Errorf("stat index dir %s: %w", dir, err)
		}
	}

	log.Printf("index: opening collection %s at %s", name, dir)
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector store at %s: %w", dir, err)
	}
	col, err := db.GetOrCreateCollection(name, nil, embeddings.ToChromemFunc(ix.embedder))
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", name, err)
	}

	ix.colls[key] = col
	return col, nil
}
