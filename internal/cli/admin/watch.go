package admin

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farolabs/faro/internal/config"
	"github.com/farolabs/faro/internal/ingest"
	"github.com/spf13/cobra"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	var (
		full     bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the docs root and re-ingest changed files",
		Long:  "Watch the docs root for created or changed documents and re-ingest them after a quiet period. Removed files stay in the index.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(full, debounce)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Run a full ingest before watching")
	cmd.Flags().DurationVar(&debounce, "debounce", ingest.DefaultDebounce, "Quiet period before a changed file is re-ingested")

	return cmd
}

func runWatch(full bool, debounce time.Duration) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	idx := newIndex(cfg)
	ing := newIngestor(cfg, idx)

	if full {
		reports, err := ing.IngestAll(ctx, nil)
		if err != nil {
			return err
		}
		for area, report := range reports {
			log.Printf("ingest: area %s done (%d files, %d chunks, %d skipped)", area, report.Files, report.Chunks, report.Skipped)
		}
	}

	watcher := ingest.NewWatcher(ing, debounce)

	errChan := make(chan error, 1)
	go func() {
		errChan <- watcher.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		log.Println("shutting down...")
		watcher.Stop()
	}
	return nil
}
