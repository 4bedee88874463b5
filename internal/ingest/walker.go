package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/farolabs/faro/internal/domain"
	"github.com/farolabs/faro/internal/extract"
)

// defaultIgnores are glob patterns never ingested: hidden files plus the
// lock files Office drops next to an open workbook.
var defaultIgnores = []string{".*", "~$*", ".~lock.*"}

// Extractor converts one file into retrievable chunks.
type Extractor interface {
	Extract(path string) ([]domain.Chunk, error)
}

// Upserter is the slice of the embedding index ingestion writes to.
type Upserter interface {
	Upsert(ctx context.Context, doc domain.Document, chunks []domain.Chunk, area string) error
}

// Report totals one ingestion run: Files processed, Chunks indexed across
// them (unparsable files contribute zero), and files Skipped on a hard
// failure.
type Report struct {
	Files   int
	Chunks  int
	Skipped int
}

// ProgressFunc observes each file as a run processes it. Err is nil for
// files that ingested cleanly, including those that produced zero chunks.
type ProgressFunc func(path string, chunks int, err error)

// Ingestor walks the documents root and feeds supported files through
// extraction into the index. The root holds one directory per area;
// ingestion is last-writer-wins per file path.
type Ingestor struct {
	docsRoot  string
	extractor Extractor
	upserter  Upserter
	ignores   []string
}

func New(docsRoot string, extractor Extractor, upserter Upserter) *Ingestor {
	return &Ingestor{
		docsRoot:  docsRoot,
		extractor: extractor,
		upserter:  upserter,
		ignores:   defaultIgnores,
	}
}

// DocsRoot returns the documents root the ingestor walks.
func (ing *Ingestor) DocsRoot() string {
	return ing.docsRoot
}

// Ingest extracts one file and replaces its chunks in the area's collection,
// returning how many chunks were indexed. Unsupported or unparsable files
// are skipped with a log line and report zero chunks; whatever was indexed
// for that path before stays retrievable.
func (ing *Ingestor) Ingest(ctx context.Context, path, area string) (int, error) {
	fingerprint, err := fingerprintFile(path)
	if err != nil {
		return 0, fmt.Errorf("fingerprint %s: %w", path, err)
	}

	chunks, err := ing.extractor.Extract(path)
	if err != nil {
		log.Printf("ingest: skipping %s: %v", path, err)
		return 0, nil
	}
	if len(chunks) == 0 {
		log.Printf("ingest: %s produced no chunks, skipping", path)
		return 0, nil
	}

	doc := domain.Document{Path: path, Fingerprint: fingerprint}
	if err := ing.upserter.Upsert(ctx, doc, chunks, area); err != nil {
		return 0, fmt.Errorf("index %s: %w", path, err)
	}

	log.Printf("ingest: %s -> %d chunks (area %q)", path, len(chunks), area)
	return len(chunks), nil
}

// IngestArea walks one area's directory and ingests every supported file.
// Per-file failures are logged, counted as skipped and do not abort the
// run. The onFile callback, when non-nil, fires once per file.
func (ing *Ingestor) IngestArea(ctx context.Context, area string, onFile ProgressFunc) (Report, error) {
	files, err := ing.ListFiles(area)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for _, path := range files {
		n, err := ing.Ingest(ctx, path, area)
		if onFile != nil {
			onFile(path, n, err)
		}
		if err != nil {
			log.Printf("ingest: %s failed: %v", path, err)
			rep.Skipped++
			continue
		}
		rep.Files++
		rep.Chunks += n
	}
	return rep, nil
}

// IngestAll runs IngestArea for every area directory under the docs root
// and returns the per-area reports.
func (ing *Ingestor) IngestAll(ctx context.Context, onFile ProgressFunc) (map[string]Report, error) {
	areas, err := ing.Areas()
	if err != nil {
		return nil, err
	}

	reports := make(map[string]Report, len(areas))
	for _, area := range areas {
		rep, err := ing.IngestArea(ctx, area, onFile)
		if err != nil {
			return reports, fmt.Errorf("ingest area %s: %w", area, err)
		}
		reports[area] = rep
	}
	return reports, nil
}

// ListFiles returns the ingestible files under one area directory, sorted
// by path: supported extensions only, ignore patterns applied, hidden
// subdirectories pruned. A missing area directory yields an empty list.
func (ing *Ingestor) ListFiles(area string) ([]string, error) {
	root := filepath.Join(ing.docsRoot, area)
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat area dir %s: %w", root, err)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ing.ignored(d.Name()) || !extract.Supported(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk area dir %s: %w", root, err)
	}
	return files, nil
}

// Areas lists the area directories under the docs root, sorted. Dot and
// underscore prefixed directories are skipped, mirroring the index layout.
func (ing *Ingestor) Areas() ([]string, error) {
	entries, err := os.ReadDir(ing.docsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list docs root: %w", err)
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

// ignored matches a file name against the ignore globs.
func (ing *Ingestor) ignored(name string) bool {
	for _, pattern := range ing.ignores {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// fingerprintFile computes the SHA-1 hex digest of a file's bytes. The
// digest prefix keys the document's chunk IDs in the index.
func fingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
