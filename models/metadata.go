package models

// Metadata carries the known per-document fields stored alongside a chunk.
// The original keys are free-form, but dedup and gating depend on exact key
// names, so they are typed here and validated at the boundary.
type Metadata struct {
	// Query is the free-text query the document was fetched for. Its
	// presence triggers the admission similarity gate.
	Query string `json:"query,omitempty"`

	// Title is a fuzzy natural key (book or video title) used by dedup.
	Title string `json:"title,omitempty"`

	// VideoID is the exact natural key for cached video summaries.
	VideoID string `json:"video_id,omitempty"`

	// Summary holds the condensed text for long external content so it can
	// be served back by exact-key lookup without re-summarizing.
	Summary string `json:"summary,omitempty"`

	Source      string `json:"source,omitempty"`
	SourceFile  string `json:"source_file,omitempty"`
	FileHash    string `json:"file_hash,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Description string `json:"description,omitempty"`
	VideoLink   string `json:"video_link,omitempty"`

	// DocumentID links all chunks of one logical document. Assigned by the
	// admission path, never by callers.
	DocumentID string `json:"document_id,omitempty"`

	// AddedOn is the RFC 3339 admission timestamp, assigned per chunk write.
	AddedOn string `json:"added_on,omitempty"`
}

// ToMap converts the metadata into the flat key/value form the store
// persists. Empty fields are omitted.
func (m Metadata) ToMap() map[string]string {
	out := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("query", m.Query)
	set("title", m.Title)
	set("video_id", m.VideoID)
	set("summary", m.Summary)
	set("source", m.Source)
	set("source_file", m.SourceFile)
	set("file_hash", m.FileHash)
	set("channel", m.Channel)
	set("description", m.Description)
	set("video_link", m.VideoLink)
	set("document_id", m.DocumentID)
	set("added_on", m.AddedOn)
	return out
}

// MetadataFromMap rebuilds a Metadata from the stored key/value form.
// Unknown keys are dropped.
func MetadataFromMap(in map[string]string) Metadata {
	return Metadata{
		Query:       in["query"],
		Title:       in["title"],
		VideoID:     in["video_id"],
		Summary:     in["summary"],
		Source:      in["source"],
		SourceFile:  in["source_file"],
		FileHash:    in["file_hash"],
		Channel:     in["channel"],
		Description: in["description"],
		VideoLink:   in["video_link"],
		DocumentID:  in["document_id"],
		AddedOn:     in["added_on"],
	}
}

// Get returns the value of a metadata field by its stored key name.
// Used by exact-key lookups where the key field is caller-selected.
func (m Metadata) Get(field string) string {
	return m.ToMap()[field]
}
