package vectordb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexdjulin/ai-librarian/models"
)

func TestRemoveDuplicatesByQuery(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	m := NewMaintenance(store)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, CollectionBookInfo, []Record{
		{ID: "1", Text: "first", Metadata: models.Metadata{Query: "X"}},
		{ID: "2", Text: "second", Metadata: models.Metadata{Query: "X"}},
		{ID: "3", Text: "third", Metadata: models.Metadata{Query: "X"}},
		{ID: "4", Text: "fourth", Metadata: models.Metadata{Query: "Y"}},
	}))

	removed, err := m.RemoveDuplicatesByQueryOrTitle(ctx, CollectionBookInfo)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	snap, err := store.GetAll(ctx, CollectionBookInfo)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4"}, snap.IDs, "first-seen id of each group survives")
}

func TestRemoveDuplicatesUnionsQueryAndTitle(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	m := NewMaintenance(store)
	ctx := context.Background()

	// Record 2 duplicates record 1 under both the query and the title; it
	// must be deleted once, not double-counted.
	require.NoError(t, store.Add(ctx, CollectionBookInfo, []Record{
		{ID: "1", Text: "first", Metadata: models.Metadata{Query: "X", Title: "T"}},
		{ID: "2", Text: "second", Metadata: models.Metadata{Query: "X", Title: "T"}},
	}))

	removed, err := m.RemoveDuplicatesByQueryOrTitle(ctx, CollectionBookInfo)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, err := store.Count(ctx, CollectionBookInfo)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRemoveDuplicatesNoDuplicates(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	m := NewMaintenance(store)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, CollectionBookInfo, []Record{
		{ID: "1", Text: "first", Metadata: models.Metadata{Query: "X"}},
		{ID: "2", Text: "second", Metadata: models.Metadata{Title: "T"}},
		{ID: "3", Text: "third", Metadata: models.Metadata{}},
	}))

	removed, err := m.RemoveDuplicatesByQueryOrTitle(ctx, CollectionBookInfo)
	require.NoError(t, err)
	assert.Zero(t, removed)

	count, _ := store.Count(ctx, CollectionBookInfo)
	assert.Equal(t, 3, count)
}

func TestRemoveDuplicatesUnknownCollectionFailsLoudly(t *testing.T) {
	m := NewMaintenance(newFakeStore(CollectionBookInfo))

	_, err := m.RemoveDuplicatesByQueryOrTitle(context.Background(), "no_such_collection")
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestResetCollectionRequiresConfirmation(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	m := NewMaintenance(store)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, CollectionBookInfo, []Record{
		{ID: "1", Text: "keep me", Metadata: models.Metadata{}},
	}))

	err := m.ResetCollection(ctx, CollectionBookInfo, "yes")
	assert.ErrorIs(t, err, ErrNotConfirmed)

	count, err := store.Count(ctx, CollectionBookInfo)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "wrong confirmation must leave the collection untouched")
}

func TestResetCollectionClearsContents(t *testing.T) {
	store := newFakeStore(CollectionBookInfo)
	m := NewMaintenance(store)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, CollectionBookInfo, []Record{
		{ID: "1", Text: "gone", Metadata: models.Metadata{}},
	}))

	require.NoError(t, m.ResetCollection(ctx, CollectionBookInfo, ResetConfirmation))

	exists, err := store.HasCollection(ctx, CollectionBookInfo)
	require.NoError(t, err)
	assert.True(t, exists, "collection is recreated after reset")

	count, err := store.Count(ctx, CollectionBookInfo)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEnsureCollectionIdempotent(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.EnsureCollection(ctx, CollectionBookInfo))
	}
	require.NoError(t, store.Add(ctx, CollectionBookInfo, []Record{
		{ID: "1", Text: "survives", Metadata: models.Metadata{}},
	}))
	require.NoError(t, store.EnsureCollection(ctx, CollectionBookInfo))

	count, err := store.Count(ctx, CollectionBookInfo)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-ensuring must not touch existing contents")
}

func TestMaintenanceContents(t *testing.T) {
	store := newFakeStore(CollectionBookReviews)
	m := NewMaintenance(store)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, CollectionBookReviews, []Record{
		{ID: "a_0", Text: "review text", Metadata: models.Metadata{VideoID: "abc"}},
	}))

	docs, err := m.Contents(ctx, CollectionBookReviews)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a_0", docs[0].ID)
	assert.Equal(t, "review text", docs[0].Text)
	assert.Equal(t, "abc", docs[0].Metadata.VideoID)
}
