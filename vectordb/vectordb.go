// Package vectordb implements the knowledge cache: named Chroma collections
// of embedded text chunks, a similarity-gated admission path, a
// distance-filtered retrieval path, and operator maintenance.
package vectordb

import (
	"context"
	"errors"

	"github.com/alexdjulin/ai-librarian/models"
)

// Well-known collections, created on first client use.
const (
	CollectionBookInfo    = "book_info"
	CollectionBookReviews = "book_reviews"
)

var Collections = []string{CollectionBookInfo, CollectionBookReviews}

// ErrCollectionNotFound is returned by store lookups for unknown collection
// names. Hot paths swallow it (log + empty result), maintenance paths
// propagate it.
var ErrCollectionNotFound = errors.New("collection not found")

// ErrNotConfirmed is returned when a destructive operation is invoked
// without the exact confirmation token.
var ErrNotConfirmed = errors.New("operation not confirmed")

// Record is one chunk row as persisted in a collection.
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  models.Metadata
}

// QueryHit is one ranked nearest-neighbor result. Distance is the store's
// cosine distance: lower means more similar.
type QueryHit struct {
	Document string
	Metadata models.Metadata
	Distance float64
}

// Snapshot is a full-collection scan in parallel arrays, ordered by the
// store's scan order. Used only by maintenance and exact-key lookups.
type Snapshot struct {
	IDs       []string
	Documents []string
	Metadatas []models.Metadata
}

// Store is the persistence boundary owned by the Chroma adapter. Collections
// are append/delete only; records are never mutated in place.
type Store interface {
	EnsureCollection(ctx context.Context, name string) error
	HasCollection(ctx context.Context, name string) (bool, error)
	Add(ctx context.Context, collection string, records []Record) error
	Query(ctx context.Context, collection string, embedding []float32, nResults int) ([]QueryHit, error)
	GetAll(ctx context.Context, collection string) (*Snapshot, error)
	Delete(ctx context.Context, collection string, ids []string) error
	DeleteWhere(ctx context.Context, collection string, field, value string) error
	DeleteCollection(ctx context.Context, name string) error
	Count(ctx context.Context, collection string) (int, error)
}

// Embedder turns text into a fixed-size vector. Implementations are shared
// process-wide; failures propagate to the caller without retries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Splitter splits long text into bounded, overlapping chunks. Must be
// deterministic and never produce empty chunks.
type Splitter interface {
	SplitText(text string) ([]string, error)
}
