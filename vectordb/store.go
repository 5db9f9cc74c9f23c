package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/alexdjulin/ai-librarian/models"
)

// ChromaStore persists collections through a Chroma server using the v2 API.
// The client is created lazily on first use; initialization also ensures the
// two well-known collections exist.
type ChromaStore struct {
	baseURL string

	once    sync.Once
	client  chromago.Client
	initErr error
}

// NewChromaStore creates a store for the given Chroma base URL. The client
// connection is not opened until the first operation.
func NewChromaStore(baseURL string) *ChromaStore {
	return &ChromaStore{baseURL: baseURL}
}

// Client returns the lazily-initialized Chroma client. The sync.Once guard
// keeps a first-use race across conversation threads from creating two
// clients.
func (s *ChromaStore) Client(ctx context.Context) (chromago.Client, error) {
	s.once.Do(func() {
		client, err := chromago.NewHTTPClient(chromago.WithBaseURL(s.baseURL))
		if err != nil {
			s.initErr = fmt.Errorf("failed to create chroma client: %w", err)
			return
		}
		s.client = client
		for _, name := range Collections {
			if err := s.ensureCollection(ctx, name); err != nil {
				s.initErr = err
				return
			}
		}
	})
	return s.client, s.initErr
}

// Close releases the underlying client resources.
func (s *ChromaStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// EnsureCollection creates the collection if absent, else logs and no-ops.
// The collection similarity space is cosine, persisted in its metadata.
func (s *ChromaStore) EnsureCollection(ctx context.Context, name string) error {
	if _, err := s.Client(ctx); err != nil {
		return err
	}
	return s.ensureCollection(ctx, name)
}

func (s *ChromaStore) ensureCollection(ctx context.Context, name string) error {
	existing, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, col := range existing {
		if col.Name() == name {
			log.Printf("STORE: Collection '%s' already exists.", name)
			return nil
		}
	}
	_, err = s.client.CreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("hnsw:space", "cosine"),
			),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create collection '%s': %w", name, err)
	}
	log.Printf("STORE: Collection '%s' has been created.", name)
	return nil
}

// HasCollection reports whether a collection exists.
func (s *ChromaStore) HasCollection(ctx context.Context, name string) (bool, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return false, err
	}
	existing, err := client.ListCollections(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list collections: %w", err)
	}
	for _, col := range existing {
		if col.Name() == name {
			return true, nil
		}
	}
	return false, nil
}

// lookupCollection resolves a collection handle by name, returning
// ErrCollectionNotFound for unknown names.
func (s *ChromaStore) lookupCollection(ctx context.Context, name string) (chromago.Collection, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	for _, col := range existing {
		if col.Name() == name {
			return col, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
}

// Add appends chunk records to a collection. Ids are caller-generated and
// unique; a colliding id would overwrite, which normal operation never does.
func (s *ChromaStore) Add(ctx context.Context, collection string, records []Record) error {
	col, err := s.lookupCollection(ctx, collection)
	if err != nil {
		return err
	}
	for _, rec := range records {
		metaMap := rec.Metadata.ToMap()
		attrs := make([]*chromago.MetaAttribute, 0, len(metaMap))
		for k, v := range metaMap {
			attrs = append(attrs, chromago.NewStringAttribute(k, v))
		}
		err := col.Add(ctx,
			chromago.WithIDs(chromago.DocumentID(rec.ID)),
			chromago.WithTexts(rec.Text),
			chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(rec.Embedding)),
			chromago.WithMetadatas(chromago.NewDocumentMetadata(attrs...)),
		)
		if err != nil {
			return fmt.Errorf("failed to add record %s to collection '%s': %w", rec.ID, collection, err)
		}
	}
	return nil
}

// Query runs a nearest-neighbor search and returns ranked hits with cosine
// distances, ascending (lower = more similar).
func (s *ChromaStore) Query(ctx context.Context, collection string, embedding []float32, nResults int) ([]QueryHit, error) {
	col, err := s.lookupCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	results, err := col.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(nResults),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection '%s': %w", collection, err)
	}

	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(documentGroups) == 0 {
		return nil, nil
	}

	hits := make([]QueryHit, 0, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		hit := QueryHit{Document: doc.ContentString()}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			hit.Metadata = decodeMetadata(metadataGroups[0][i])
		}
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			hit.Distance = float64(distanceGroups[0][i])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// GetAll performs a full scan of a collection. Acceptable only for offline
// housekeeping and exact-key lookups, never the hot retrieval path.
func (s *ChromaStore) GetAll(ctx context.Context, collection string) (*Snapshot, error) {
	col, err := s.lookupCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	results, err := col.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from collection '%s': %w", collection, err)
	}

	ids := results.GetIDs()
	documents := results.GetDocuments()
	metadatas := results.GetMetadatas()

	snap := &Snapshot{
		IDs:       make([]string, 0, len(ids)),
		Documents: make([]string, 0, len(ids)),
		Metadatas: make([]models.Metadata, 0, len(ids)),
	}
	for i := range ids {
		snap.IDs = append(snap.IDs, string(ids[i]))
		if i < len(documents) {
			snap.Documents = append(snap.Documents, documents[i].ContentString())
		} else {
			snap.Documents = append(snap.Documents, "")
		}
		if i < len(metadatas) {
			snap.Metadatas = append(snap.Metadatas, decodeMetadata(metadatas[i]))
		} else {
			snap.Metadatas = append(snap.Metadatas, models.Metadata{})
		}
	}
	return snap, nil
}

// Delete removes records by id.
func (s *ChromaStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	col, err := s.lookupCollection(ctx, collection)
	if err != nil {
		return err
	}
	docIDs := make([]chromago.DocumentID, len(ids))
	for i, id := range ids {
		docIDs[i] = chromago.DocumentID(id)
	}
	if err := col.Delete(ctx, chromago.WithIDsDelete(docIDs...)); err != nil {
		return fmt.Errorf("failed to delete %d records from collection '%s': %w", len(ids), collection, err)
	}
	return nil
}

// DeleteWhere removes every record whose metadata field equals value.
func (s *ChromaStore) DeleteWhere(ctx context.Context, collection string, field, value string) error {
	col, err := s.lookupCollection(ctx, collection)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, chromago.WithWhereDelete(chromago.EqString(field, value))); err != nil {
		return fmt.Errorf("failed to delete records where %s=%s from collection '%s': %w", field, value, collection, err)
	}
	return nil
}

// DeleteCollection drops a collection entirely.
func (s *ChromaStore) DeleteCollection(ctx context.Context, name string) error {
	client, err := s.Client(ctx)
	if err != nil {
		return err
	}
	if err := client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection '%s': %w", name, err)
	}
	return nil
}

// Count returns the number of chunk records in a collection.
func (s *ChromaStore) Count(ctx context.Context, collection string) (int, error) {
	col, err := s.lookupCollection(ctx, collection)
	if err != nil {
		return 0, err
	}
	count, err := col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection '%s': %w", collection, err)
	}
	return int(count), nil
}

// decodeMetadata converts a Chroma DocumentMetadata into the typed form.
// The struct has no public accessor for its values, so it goes through a
// JSON round-trip.
func decodeMetadata(meta chromago.DocumentMetadata) models.Metadata {
	if meta == nil {
		return models.Metadata{}
	}
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		log.Printf("STORE: WARN: could not marshal document metadata: %v", err)
		return models.Metadata{}
	}
	var metaMap map[string]string
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		// Mixed value types: fall back to a generic map and keep strings.
		var anyMap map[string]interface{}
		if err := json.Unmarshal(jsonBytes, &anyMap); err != nil {
			log.Printf("STORE: WARN: could not unmarshal document metadata: %v", err)
			return models.Metadata{}
		}
		metaMap = make(map[string]string, len(anyMap))
		for k, v := range anyMap {
			if s, ok := v.(string); ok {
				metaMap[k] = s
			}
		}
	}
	return models.MetadataFromMap(metaMap)
}
