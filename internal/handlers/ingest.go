package handlers

import (
	"net/http"

	"github.com/dylondark/cob-zippy-ai/internal/contextutil"
	"github.com/dylondark/cob-zippy-ai/internal/indexer"
)

// IngestHandler triggers a full reindex of the pages folder.
type IngestHandler struct {
	pipeline *indexer.Pipeline
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(pipeline *indexer.Pipeline) *IngestHandler {
	return &IngestHandler{pipeline: pipeline}
}

// IngestResponse is the JSON body for reindex requests.
type IngestResponse struct {
	OK            bool `json:"ok"`
	ChunksIndexed int  `json:"chunks_indexed"`
}

// ServeHTTP reindexes every page file. Individual page failures are logged
// by the pipeline and do not fail the request as long as some progress was
// possible.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	n, err := h.pipeline.ReindexFolder(ctx)
	if err != nil && n == 0 {
		logger.ErrorContext(ctx, "reindex failed", "error", err)
		writeServiceError(ctx, w, err)
		return
	}
	if err != nil {
		logger.WarnContext(ctx, "reindex finished with errors", "chunks", n, "error", err)
	}

	writeJSON(w, http.StatusOK, IngestResponse{OK: true, ChunksIndexed: n})
}
