package admin

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/farolabs/faro/internal/config"
	"github.com/farolabs/faro/internal/ingest"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [area]",
		Short: "Index documents from the docs root",
		Long:  "Walk the docs root (or a single area directory) and index every supported document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIngest,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	idx := newIndex(cfg)
	ing := newIngestor(cfg, idx)

	var areas []string
	if len(args) == 1 {
		areas = []string{args[0]}
	} else {
		areas, err = ing.Areas()
		if err != nil {
			return err
		}
		if len(areas) == 0 {
			fmt.Printf("no area directories under %s\n", cfg.DocsRoot)
			return nil
		}
	}

	totalFiles, totalChunks := 0, 0
	for _, area := range areas {
		report, err := ingestAreaWithProgress(ctx, ing, area)
		if err != nil {
			return fmt.Errorf("ingest area %s: %w", area, err)
		}

		fmt.Printf("%s: %d files, %d chunks", area, report.Files, report.Chunks)
		if report.Skipped > 0 {
			fmt.Printf(" (%d skipped)", report.Skipped)
		}
		fmt.Println()

		totalFiles += report.Files
		totalChunks += report.Chunks
	}

	if len(areas) > 1 {
		fmt.Printf("total: %d files, %d chunks across %d areas\n", totalFiles, totalChunks, len(areas))
	}
	return nil
}

func ingestAreaWithProgress(ctx context.Context, ing *ingest.Ingestor, area string) (ingest.Report, error) {
	files, err := ing.ListFiles(area)
	if err != nil {
		return ingest.Report{}, err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Indexing "+area),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	report, err := ing.IngestArea(ctx, area, func(path string, chunks int, ferr error) {
		bar.Describe(filepath.Base(path))
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	return report, err
}
