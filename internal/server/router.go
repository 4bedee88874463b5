package server

import (
	"net/http"

	"github.com/farolabs/faro/internal/api"
	"github.com/farolabs/faro/internal/api/handlers"
	"github.com/farolabs/faro/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	ChatHandler   *handlers.ChatHandler
	UploadHandler *handlers.UploadHandler
	AreaHandler   *handlers.AreaHandler
	MaxBodyBytes  int64
	CORSOrigins   []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(cfg.MaxBodyBytes))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/chat", cfg.ChatHandler.Chat)
		r.Post("/chat/{area}", cfg.ChatHandler.ChatArea)
		r.Post("/upload/{area}", cfg.UploadHandler.Upload)
		r.Get("/areas", cfg.AreaHandler.List)
	})

	return r
}
