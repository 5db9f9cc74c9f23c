package vectordb

import (
	"context"
	"fmt"
	"log"

	"github.com/alexdjulin/ai-librarian/models"
)

// ResetConfirmation is the exact token required by ResetCollection.
const ResetConfirmation = "YES"

// Maintenance bundles the operator-invoked housekeeping operations. Unlike
// the hot paths, these fail loudly on unknown collections.
type Maintenance struct {
	store Store
}

// NewMaintenance creates the maintenance facade over a store.
func NewMaintenance(store Store) *Maintenance {
	return &Maintenance{store: store}
}

// Contents returns every chunk record of a collection in scan order.
func (m *Maintenance) Contents(ctx context.Context, collectionName string) ([]models.Document, error) {
	snap, err := m.store.GetAll(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	docs := make([]models.Document, 0, len(snap.IDs))
	for i := range snap.IDs {
		docs = append(docs, models.Document{
			ID:       snap.IDs[i],
			Text:     snap.Documents[i],
			Metadata: snap.Metadatas[i],
		})
	}
	return docs, nil
}

// Count returns the number of chunk records in a collection.
func (m *Maintenance) Count(ctx context.Context, collectionName string) (int, error) {
	return m.store.Count(ctx, collectionName)
}

// RemoveDuplicatesByQueryOrTitle scans the collection, groups record ids by
// the query metadata value and separately by the title value, and deletes
// all but the first-seen id of every group larger than one. A record
// duplicated under both keys is deleted once (the id sets are unioned).
// First-seen follows the store's scan order at read time, which for the
// backing store is insertion order. Returns the number of deleted records.
func (m *Maintenance) RemoveDuplicatesByQueryOrTitle(ctx context.Context, collectionName string) (int, error) {
	snap, err := m.store.GetAll(ctx, collectionName)
	if err != nil {
		return 0, err
	}

	uniqueQueries := make(map[string][]string)
	uniqueTitles := make(map[string][]string)
	for i, meta := range snap.Metadatas {
		id := snap.IDs[i]
		if meta.Query != "" {
			uniqueQueries[meta.Query] = append(uniqueQueries[meta.Query], id)
		}
		if meta.Title != "" {
			uniqueTitles[meta.Title] = append(uniqueTitles[meta.Title], id)
		}
	}

	duplicates := make(map[string]struct{})
	for _, ids := range uniqueQueries {
		for _, id := range ids[1:] {
			duplicates[id] = struct{}{}
		}
	}
	for _, ids := range uniqueTitles {
		for _, id := range ids[1:] {
			duplicates[id] = struct{}{}
		}
	}

	if len(duplicates) == 0 {
		log.Printf("MAINTENANCE: No duplicates found in collection %s.", collectionName)
		return 0, nil
	}

	ids := make([]string, 0, len(duplicates))
	for id := range duplicates {
		ids = append(ids, id)
	}
	if err := m.store.Delete(ctx, collectionName, ids); err != nil {
		return 0, err
	}
	log.Printf("MAINTENANCE: Removed %d duplicate documents from collection %s.", len(ids), collectionName)
	return len(ids), nil
}

// ResetCollection deletes and recreates a collection, clearing all its
// contents. The exact confirmation token is required; anything else aborts
// with no changes and ErrNotConfirmed.
func (m *Maintenance) ResetCollection(ctx context.Context, collectionName, confirmation string) error {
	if confirmation != ResetConfirmation {
		log.Printf("MAINTENANCE: Reset of collection %s cancelled. No changes were made.", collectionName)
		return ErrNotConfirmed
	}

	exists, err := m.store.HasCollection(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		if err := m.store.DeleteCollection(ctx, collectionName); err != nil {
			return fmt.Errorf("could not delete collection %s: %w", collectionName, err)
		}
		log.Printf("MAINTENANCE: Collection '%s' has been deleted.", collectionName)
	}
	return m.store.EnsureCollection(ctx, collectionName)
}
