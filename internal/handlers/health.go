package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dylondark/cob-zippy-ai/internal/contextutil"
	"github.com/dylondark/cob-zippy-ai/internal/vectorstore"
)

// HealthHandler reports liveness and vector store reachability.
type HealthHandler struct {
	vectorStore  vectorstore.VectorStore
	collection   string
	checkTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(vectorStore vectorstore.VectorStore, collection string) *HealthHandler {
	return &HealthHandler{
		vectorStore:  vectorStore,
		collection:   collection,
		checkTimeout: 5 * time.Second,
	}
}

// HealthResponse is the JSON body for health checks.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ServeHTTP returns 200 when the vector store responds, 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.checkTimeout)
	defer cancel()

	logger := contextutil.LoggerFromContext(r.Context())
	checks := map[string]string{"vector_store": "ok"}
	status := "ok"
	code := http.StatusOK

	if _, err := h.vectorStore.Count(ctx, h.collection); err != nil {
		logger.WarnContext(r.Context(), "vector store health check failed", "error", err)
		checks["vector_store"] = err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{Status: status, Checks: checks})
}
