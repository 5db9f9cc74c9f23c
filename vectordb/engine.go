package vectordb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/alexdjulin/ai-librarian/models"
)

// DefaultNResults is the result cap used when a caller passes none.
const DefaultNResults = 3

// Engine ties the store, embedder and splitter together. It orchestrates the
// admission path (gate, chunk, embed, write) and the retrieval path (embed,
// query, distance filter). It holds no document state beyond a call frame.
type Engine struct {
	store    Store
	embedder Embedder
	splitter Splitter

	// addSimilarityThreshold gates admission of query-tagged documents
	// (cosine similarity, higher = more similar).
	addSimilarityThreshold float64

	// searchDistanceThreshold filters retrieval candidates (cosine
	// distance, lower = more similar). Tuned independently from the
	// admission threshold; no algebraic relation between the two is
	// assumed.
	searchDistanceThreshold float64
}

// NewEngine wires the engine with its collaborators and thresholds.
func NewEngine(store Store, embedder Embedder, splitter Splitter, addSimilarityThreshold, searchDistanceThreshold float64) *Engine {
	return &Engine{
		store:                   store,
		embedder:                embedder,
		splitter:                splitter,
		addSimilarityThreshold:  addSimilarityThreshold,
		searchDistanceThreshold: searchDistanceThreshold,
	}
}

// Similarity returns the cosine similarity between two texts' embeddings,
// in [-1, 1]. This is the relevance gate used on the admission path.
func (e *Engine) Similarity(ctx context.Context, textA, textB string) (float64, error) {
	embA, err := e.embedder.Embed(ctx, textA)
	if err != nil {
		return 0, fmt.Errorf("could not embed text: %w", err)
	}
	embB, err := e.embedder.Embed(ctx, textB)
	if err != nil {
		return 0, fmt.Errorf("could not embed reference text: %w", err)
	}
	return CosineSimilarity(embA, embB), nil
}

// AddToCollection splits text into chunks, embeds each one and persists the
// records. All chunks share one generated document id; each record id is
// "<document_id>_<i>". If the metadata carries a query, the document is
// first graded against it and silently skipped when the similarity falls
// below the admission threshold.
//
// Repeated admission of identical content creates new logical documents;
// deduplication is a deliberate separate maintenance step.
func (e *Engine) AddToCollection(ctx context.Context, text, collectionName string, metadata models.Metadata) error {
	ok, err := e.store.HasCollection(ctx, collectionName)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("ENGINE: Collection name %s not found.", collectionName)
		return nil
	}

	if metadata.Query != "" {
		similarity, err := e.Similarity(ctx, text, metadata.Query)
		if err != nil {
			return err
		}
		if similarity < e.addSimilarityThreshold {
			log.Printf("ENGINE: Document not added to %s. Cosine similarity: %f", collectionName, similarity)
			return nil
		}
	}

	chunks, err := e.splitter.SplitText(text)
	if err != nil {
		return fmt.Errorf("could not split text: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	documentID := uuid.New().String()
	records := make([]Record, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := e.embedder.Embed(ctx, chunk)
		if err != nil {
			return fmt.Errorf("could not embed chunk %d: %w", i, err)
		}
		chunkMetadata := metadata
		chunkMetadata.DocumentID = documentID
		chunkMetadata.AddedOn = time.Now().Format(time.RFC3339)
		records = append(records, Record{
			ID:        fmt.Sprintf("%s_%d", documentID, i),
			Text:      chunk,
			Embedding: embedding,
			Metadata:  chunkMetadata,
		})
	}

	if err := e.store.Add(ctx, collectionName, records); err != nil {
		return err
	}
	log.Printf("ENGINE: Document split into %d chunks and added to collection %s.", len(records), collectionName)
	return nil
}

// SearchCollection embeds the query, runs a nearest-neighbor search and
// keeps only candidates strictly below the distance threshold, preserving
// the ranked order. An empty result is a legitimate cache miss, not an
// error; an unknown collection also yields an empty result.
func (e *Engine) SearchCollection(ctx context.Context, query, collectionName string, nResults int) (*models.SearchResponse, error) {
	if nResults <= 0 {
		nResults = DefaultNResults
	}

	response := &models.SearchResponse{
		Documents: []string{},
		Metadatas: []models.Metadata{},
		Distances: []float64{},
	}

	embedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not embed query: %w", err)
	}

	hits, err := e.store.Query(ctx, collectionName, embedding, nResults)
	if err != nil {
		if errors.Is(err, ErrCollectionNotFound) {
			log.Printf("ENGINE: Collection name %s not found.", collectionName)
			return response, nil
		}
		return nil, err
	}

	for _, hit := range hits {
		if hit.Distance >= e.searchDistanceThreshold {
			continue
		}
		response.Documents = append(response.Documents, hit.Document)
		response.Metadatas = append(response.Metadatas, hit.Metadata)
		response.Distances = append(response.Distances, hit.Distance)
	}
	return response, nil
}

// SummaryByKey scans a collection for a record whose metadata field matches
// the given value exactly and returns its stored summary. Natural keys
// demand precision, so this is a full scan rather than a similarity search.
// The second return value is false on a cache miss.
func (e *Engine) SummaryByKey(ctx context.Context, collectionName, field, value string) (string, bool, error) {
	snap, err := e.store.GetAll(ctx, collectionName)
	if err != nil {
		if errors.Is(err, ErrCollectionNotFound) {
			log.Printf("ENGINE: Collection name %s not found.", collectionName)
			return "", false, nil
		}
		return "", false, err
	}
	for _, meta := range snap.Metadatas {
		if meta.Get(field) == value && meta.Summary != "" {
			return meta.Summary, true, nil
		}
	}
	return "", false, nil
}
