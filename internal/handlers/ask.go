package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dylondark/cob-zippy-ai/internal/contextutil"
	"github.com/dylondark/cob-zippy-ai/internal/rag"
)

// AskHandler handles kiosk question requests.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskResponse is the JSON body for answered questions.
type AskResponse struct {
	OK       bool           `json:"ok"`
	Answer   string         `json:"answer"`
	Sources  []rag.Citation `json:"sources"`
	Fastpath string         `json:"fastpath,omitempty"`
}

// ServeHTTP answers a question posted as {"query": "..."}.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req rag.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.engine.Ask(ctx, req)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	sources := resp.Sources
	if sources == nil {
		sources = []rag.Citation{}
	}

	writeJSON(w, http.StatusOK, AskResponse{
		OK:       true,
		Answer:   resp.Answer,
		Sources:  sources,
		Fastpath: resp.Fastpath,
	})
}
