package vectordb

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// fakeEmbedder maps text to a deterministic bag-of-words vector so that
// texts sharing words embed close together and disjoint texts are
// orthogonal.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 32)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%32]++
	}
	return vec, nil
}

// failEmbedder simulates an unavailable embedding model.
type failEmbedder struct{}

func (failEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("embedding model unavailable")
}

// fakeStore is an in-memory Store with brute-force cosine search. Scan order
// is insertion order, like the backing store.
type fakeStore struct {
	collections map[string][]Record

	// cannedHits, when set, is returned verbatim by Query regardless of the
	// stored records.
	cannedHits []QueryHit
}

func newFakeStore(collections ...string) *fakeStore {
	s := &fakeStore{collections: make(map[string][]Record)}
	for _, name := range collections {
		s.collections[name] = []Record{}
	}
	return s
}

func (s *fakeStore) EnsureCollection(_ context.Context, name string) error {
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = []Record{}
	}
	return nil
}

func (s *fakeStore) HasCollection(_ context.Context, name string) (bool, error) {
	_, ok := s.collections[name]
	return ok, nil
}

func (s *fakeStore) Add(_ context.Context, collection string, records []Record) error {
	recs, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	s.collections[collection] = append(recs, records...)
	return nil
}

func (s *fakeStore) Query(_ context.Context, collection string, embedding []float32, nResults int) ([]QueryHit, error) {
	recs, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if s.cannedHits != nil {
		return s.cannedHits, nil
	}
	hits := make([]QueryHit, 0, len(recs))
	for _, rec := range recs {
		hits = append(hits, QueryHit{
			Document: rec.Text,
			Metadata: rec.Metadata,
			Distance: 1 - CosineSimilarity(embedding, rec.Embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > nResults {
		hits = hits[:nResults]
	}
	return hits, nil
}

func (s *fakeStore) GetAll(_ context.Context, collection string) (*Snapshot, error) {
	recs, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	snap := &Snapshot{}
	for _, rec := range recs {
		snap.IDs = append(snap.IDs, rec.ID)
		snap.Documents = append(snap.Documents, rec.Text)
		snap.Metadatas = append(snap.Metadatas, rec.Metadata)
	}
	return snap, nil
}

func (s *fakeStore) Delete(_ context.Context, collection string, ids []string) error {
	recs, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := recs[:0]
	for _, rec := range recs {
		if _, gone := drop[rec.ID]; !gone {
			kept = append(kept, rec)
		}
	}
	s.collections[collection] = kept
	return nil
}

func (s *fakeStore) DeleteWhere(_ context.Context, collection string, field, value string) error {
	recs, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	kept := recs[:0]
	for _, rec := range recs {
		if rec.Metadata.Get(field) != value {
			kept = append(kept, rec)
		}
	}
	s.collections[collection] = kept
	return nil
}

func (s *fakeStore) DeleteCollection(_ context.Context, name string) error {
	if _, ok := s.collections[name]; !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	delete(s.collections, name)
	return nil
}

func (s *fakeStore) Count(_ context.Context, collection string) (int, error) {
	recs, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	return len(recs), nil
}
