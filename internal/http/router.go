package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dylondark/cob-zippy-ai/internal/handlers"
	"github.com/dylondark/cob-zippy-ai/internal/indexer"
	"github.com/dylondark/cob-zippy-ai/internal/rag"
	"github.com/dylondark/cob-zippy-ai/internal/storage"
	"github.com/dylondark/cob-zippy-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine      rag.Engine
	Pipeline    *indexer.Pipeline
	DocRepo     storage.DocumentStore
	VectorStore vectorstore.VectorStore
	EmbedModel  string
	Collection  string
	StorePath   string
	PagesDir    string
}

// NewRouter creates the HTTP router for the kiosk API.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	askHandler := handlers.NewAskHandler(deps.Engine)
	ingestHandler := handlers.NewIngestHandler(deps.Pipeline)
	documentsHandler := handlers.NewDocumentsHandler(deps.Pipeline, deps.DocRepo, deps.PagesDir)
	statusHandler := handlers.NewStatusHandler(deps.EmbedModel, deps.Collection, deps.StorePath)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/ingest", ingestHandler)
		r.Method(http.MethodPost, "/documents", documentsHandler)
		r.Method(http.MethodGet, "/documents", documentsHandler)
		r.Method(http.MethodGet, "/status", statusHandler)
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)

	return r
}
