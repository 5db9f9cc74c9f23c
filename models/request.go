package models

type AddDocumentRequest struct {
	Text       string   `json:"text"`
	Collection string   `json:"collection"`
	Metadata   Metadata `json:"metadata"`
}

type SearchRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`
	NResults   int    `json:"n_results,omitempty"`
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionID,omitempty"`
}

// ResetRequest carries the confirmation token for a destructive reset.
// Anything other than the exact token aborts with no changes.
type ResetRequest struct {
	Confirmation string `json:"confirmation"`
}
