package models

// Document represents a single chunk record retrieved from the store.
type Document struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// SearchResponse returns retrieval results as parallel arrays, mirroring the
// store's query shape. Zero entries is a legitimate cache miss.
type SearchResponse struct {
	Documents []string   `json:"documents"`
	Metadatas []Metadata `json:"metadatas"`
	Distances []float64  `json:"distances"`
}

type ListDocumentsResponse struct {
	Count     int        `json:"count"`
	Documents []Document `json:"documents"`
}

// SourceDocument represents a chunk of text and its origin, returned to the
// chat layer alongside the generated answer.
type SourceDocument struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata,omitempty"`
}

type ChatResponse struct {
	Answer     string           `json:"answer"`
	SourceDocs []SourceDocument `json:"source_docs,omitempty"`
	SessionID  string           `json:"sessionID"`
}

// VideoResult is the filtered video metadata returned by the YouTube tools.
type VideoResult struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Channel     string `json:"channel"`
	VideoLink   string `json:"video_link"`
	Summary     string `json:"summary,omitempty"`
}
