package rag

// AskRequest represents a kiosk question.
type AskRequest struct {
	// Question is the visitor's question to answer.
	Question string `json:"query"`
}

// Citation identifies a page that contributed context to an answer.
type Citation struct {
	// Title is the page title.
	Title string `json:"title"`
	// Source is the page's stable identifier (URL when known).
	Source string `json:"source"`
	// UpdatedAt is the page's freshness stamp.
	UpdatedAt string `json:"updated_at"`
}

// AskResponse represents the answer to a kiosk question.
type AskResponse struct {
	// Answer is the generated or rule-based answer text.
	Answer string `json:"answer"`
	// Sources are the pages whose chunks backed the answer.
	Sources []Citation `json:"sources"`
	// Fastpath names the deterministic route that produced the answer
	// ("hours"), or is empty when the model generated it.
	Fastpath string `json:"fastpath,omitempty"`
}
