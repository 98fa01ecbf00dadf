package handlers

import "net/http"

// StatusHandler reports the active model and storage configuration.
type StatusHandler struct {
	embedModel string
	collection string
	storePath  string
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(embedModel, collection, storePath string) *StatusHandler {
	return &StatusHandler{embedModel: embedModel, collection: collection, storePath: storePath}
}

// StatusResponse is the JSON body for status requests.
type StatusResponse struct {
	OK         bool   `json:"ok"`
	EmbedModel string `json:"embed_model"`
	Collection string `json:"collection"`
	StorePath  string `json:"store_path"`
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		OK:         true,
		EmbedModel: h.embedModel,
		Collection: h.collection,
		StorePath:  h.storePath,
	})
}
