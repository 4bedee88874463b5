package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farolabs/faro/internal/api/handlers"
	"github.com/farolabs/faro/internal/config"
	"github.com/farolabs/faro/internal/embeddings"
	"github.com/farolabs/faro/internal/extract"
	"github.com/farolabs/faro/internal/index"
	"github.com/farolabs/faro/internal/ingest"
	"github.com/farolabs/faro/internal/llm"
	"github.com/farolabs/faro/internal/retrieval"
	"github.com/farolabs/faro/internal/server"
	"github.com/farolabs/faro/internal/service"
	"github.com/farolabs/faro/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the faro API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides FARO_PORT)")
	cmd.Flags().Bool("watch", false, "Re-ingest documents as files under the docs root change")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	if portFlag, _ := cmd.Flags().GetString("port"); portFlag != "" {
		cfg.Port = portFlag
	}

	idx := newIndex(cfg)
	ing := newIngestor(cfg, idx)
	assistant := newAssistant(cfg, newEngine(cfg, idx))

	var watcher *ingest.Watcher
	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		watcher = ingest.NewWatcher(ing, ingest.DefaultDebounce)
		go func() {
			if err := watcher.Start(ctx); err != nil {
				log.Printf("watch: %v", err)
			}
		}()
	}

	router := server.NewRouter(server.RouterConfig{
		ChatHandler:   handlers.NewChatHandler(assistant),
		UploadHandler: handlers.NewUploadHandler(ing),
		AreaHandler:   handlers.NewAreaHandler(idx),
		MaxBodyBytes:  cfg.MaxBodyBytes,
		CORSOrigins:   cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if watcher != nil {
		watcher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// initTelemetry starts Sentry when a DSN is configured. Failure to
// initialize never blocks startup.
func initTelemetry(cfg *config.Config) func() {
	if !cfg.HasSentry() {
		return func() {}
	}

	// Sample all traces in development, 10% elsewhere.
	sampleRate := 0.1
	if cfg.Environment == "development" {
		sampleRate = 1.0
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		return func() {}
	}
	return shutdown
}

func newIndex(cfg *config.Config) *index.Index {
	embedder := embeddings.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
	return index.New(cfg.IndexRoot, cfg.CollectionBase, embedder)
}

func newIngestor(cfg *config.Config, idx *index.Index) *ingest.Ingestor {
	return ingest.New(cfg.DocsRoot, extract.New(extract.DefaultChunkParams()), idx)
}

func newEngine(cfg *config.Config, idx *index.Index) *retrieval.Engine {
	return retrieval.NewEngine(idx, retrieval.DefaultProbeTable(), retrieval.NewAssembler(cfg.ContextMaxChars))
}

func newAssistant(cfg *config.Config, engine *retrieval.Engine) *service.AssistantService {
	completion := llm.New(llm.Config{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.CompletionModel,
		MaxTokens:      cfg.CompletionMaxTokens,
		Concurrency:    int64(cfg.LLMConcurrency),
		AcquireTimeout: cfg.LLMAcquireTimeout,
		ConnectTimeout: cfg.LLMConnectTimeout,
		ReadTimeout:    cfg.LLMReadTimeout,
	})
	return service.NewAssistantService(engine, completion, service.AssistantConfig{Name: cfg.AssistantName})
}
