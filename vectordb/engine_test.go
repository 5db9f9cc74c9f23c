package vectordb

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexdjulin/ai-librarian/models"
)

func newTestEngine(store Store, addThreshold, distanceThreshold float64) *Engine {
	return NewEngine(store, fakeEmbedder{}, NewTextSplitter(DefaultChunkSize, DefaultChunkOverlap), addThreshold, distanceThreshold)
}

func TestAddToCollectionWithoutQueryAlwaysPersists(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	// Admission threshold of 1 would reject anything graded, so persisting
	// proves the gate never ran.
	engine := newTestEngine(store, 1, 0.8)

	err := engine.AddToCollection(context.Background(), "Moby Dick is a novel by Herman Melville.", CollectionBookInfo, models.Metadata{Source: "test"})
	require.NoError(t, err)

	count, err := store.Count(context.Background(), CollectionBookInfo)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 1)
}

func TestAddToCollectionChunksShareDocumentID(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	engine := NewEngine(store, fakeEmbedder{}, NewTextSplitter(40, 5), -1, 0.8)

	text := strings.Repeat("Call me Ishmael. Some years ago, never mind how long precisely. ", 10)
	err := engine.AddToCollection(context.Background(), text, CollectionBookInfo, models.Metadata{})
	require.NoError(t, err)

	snap, err := store.GetAll(context.Background(), CollectionBookInfo)
	require.NoError(t, err)
	require.Greater(t, len(snap.IDs), 1, "long text should split into multiple chunks")

	docID := snap.Metadatas[0].DocumentID
	require.NotEmpty(t, docID)
	for i, meta := range snap.Metadatas {
		assert.Equal(t, docID, meta.DocumentID)
		assert.NotEmpty(t, meta.AddedOn)
		assert.Contains(t, snap.IDs[i], docID)
	}
}

func TestAdmissionGateRejectsUnrelatedContent(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	engine := newTestEngine(store, 0.9, 0.8)

	err := engine.AddToCollection(context.Background(), "whales ships harpoons oceans", CollectionBookInfo,
		models.Metadata{Query: "quantum mechanics lecture"})
	require.NoError(t, err)

	count, err := store.Count(context.Background(), CollectionBookInfo)
	require.NoError(t, err)
	assert.Zero(t, count, "unrelated document must not be cached")
}

func TestAdmissionGateThresholdExtremes(t *testing.T) {
	t.Run("threshold -1 always admits", func(t *testing.T) {
		store := newFakeStore(CollectionBookInfo)
		engine := newTestEngine(store, -1, 0.8)

		err := engine.AddToCollection(context.Background(), "whales ships harpoons", CollectionBookInfo,
			models.Metadata{Query: "quantum mechanics"})
		require.NoError(t, err)

		count, _ := store.Count(context.Background(), CollectionBookInfo)
		assert.GreaterOrEqual(t, count, 1)
	})

	t.Run("text equal to query passes any threshold below 1", func(t *testing.T) {
		store := newFakeStore(CollectionBookInfo)
		engine := newTestEngine(store, 0.999, 0.8)

		err := engine.AddToCollection(context.Background(), "the great gatsby plot", CollectionBookInfo,
			models.Metadata{Query: "the great gatsby plot"})
		require.NoError(t, err)

		count, _ := store.Count(context.Background(), CollectionBookInfo)
		assert.GreaterOrEqual(t, count, 1, "self-similarity is maximal")
	})
}

func TestAddToCollectionUnknownCollectionIsSoft(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	engine := newTestEngine(store, -1, 0.8)

	err := engine.AddToCollection(context.Background(), "some text", "no_such_collection", models.Metadata{})
	assert.NoError(t, err, "unknown collection is logged, not fatal, on the write path")
}

func TestAddToCollectionPropagatesEmbedderFailure(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	engine := NewEngine(store, failEmbedder{}, NewTextSplitter(0, 0), -1, 0.8)

	err := engine.AddToCollection(context.Background(), "some text", CollectionBookInfo, models.Metadata{})
	assert.Error(t, err, "transient embedder failure propagates uncaught")
}

func TestSearchCollectionRoundTrip(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	engine := newTestEngine(store, -1, 0.8)
	ctx := context.Background()

	text := "Frankenstein was written by Mary Shelley in 1818."
	require.NoError(t, engine.AddToCollection(ctx, text, CollectionBookInfo, models.Metadata{Title: "Frankenstein"}))

	results, err := engine.SearchCollection(ctx, text, CollectionBookInfo, 3)
	require.NoError(t, err)
	require.NotEmpty(t, results.Documents, "self-query must hit: self-similarity is maximal")
	assert.Equal(t, text, results.Documents[0])
	assert.InDelta(t, 0, results.Distances[0], 1e-6)
	assert.Equal(t, "Frankenstein", results.Metadatas[0].Title)
}

func TestSearchCollectionDistanceFilter(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	store.cannedHits = []QueryHit{
		{Document: "a", Distance: 0.1},
		{Document: "b", Distance: 0.3},
		{Document: "c", Distance: 0.6},
	}
	engine := newTestEngine(store, -1, 0.4)

	results, err := engine.SearchCollection(context.Background(), "anything", CollectionBookInfo, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, results.Documents)
	assert.Equal(t, []float64{0.1, 0.3}, results.Distances)
}

func TestSearchCollectionUnknownCollectionReturnsEmpty(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	engine := newTestEngine(store, -1, 0.8)

	results, err := engine.SearchCollection(context.Background(), "anything", "no_such_collection", 3)
	require.NoError(t, err)
	assert.Empty(t, results.Documents)
	assert.Empty(t, results.Metadatas)
	assert.Empty(t, results.Distances)
}

func TestSearchCollectionEmptyResultIsAMiss(t *testing.T) {
	store := newFakeStore(CollectionBookReviews)
	store.cannedHits = []QueryHit{{Document: "far away", Distance: 0.95}}
	engine := newTestEngine(store, -1, 0.4)

	results, err := engine.SearchCollection(context.Background(), "anything", CollectionBookReviews, 3)
	require.NoError(t, err)
	assert.Empty(t, results.Documents, "filtered-to-zero is a legitimate cache miss, not an error")
}

func TestSummaryByKey(t *testing.T) {
	store := newFakeStore(CollectionBookReviews)
	engine := newTestEngine(store, -1, 0.8)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, CollectionBookReviews, []Record{
		{ID: "a_0", Text: "chunk", Metadata: models.Metadata{VideoID: "abc123", Summary: "A fine review of Dracula."}},
		{ID: "b_0", Text: "chunk", Metadata: models.Metadata{VideoID: "zzz999"}},
	}))

	summary, found, err := engine.SummaryByKey(ctx, CollectionBookReviews, "video_id", "abc123")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "A fine review of Dracula.", summary)

	t.Run("miss when key absent", func(t *testing.T) {
		_, found, err := engine.SummaryByKey(ctx, CollectionBookReviews, "video_id", "nope")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("miss when summary empty", func(t *testing.T) {
		_, found, err := engine.SummaryByKey(ctx, CollectionBookReviews, "video_id", "zzz999")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("unknown collection is soft", func(t *testing.T) {
		_, found, err := engine.SummaryByKey(ctx, "no_such_collection", "video_id", "abc123")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
