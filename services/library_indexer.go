package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/alexdjulin/ai-librarian/models"
	"github.com/alexdjulin/ai-librarian/vectordb"
)

// LibraryIndexer keeps the book_info collection in sync with a local drop
// folder of book notes. Files are admitted through the engine like any other
// document; changed or removed files have their old chunks deleted by
// source file.
type LibraryIndexer struct {
	engine *vectordb.Engine
	store  vectordb.Store
}

// NewLibraryIndexer creates a new indexer.
func NewLibraryIndexer(engine *vectordb.Engine, store vectordb.Store) *LibraryIndexer {
	return &LibraryIndexer{
		engine: engine,
		store:  store,
	}
}

// fileState holds the current hash of a file in the index.
type fileState struct {
	Hash string
}

// WatchDirectory starts a long-running process to watch for file changes in real-time.
func (s *LibraryIndexer) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSupportedFile(event.Name) {
					continue
				}

				log.Printf("WATCHER EVENT: %s", event)

				// Many editors perform a "write" by creating a temp file and
				// renaming, which can trigger multiple events. Create and
				// Write are handled the same.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Re-indexing...", event.Name)
					hash, err := calculateFileHash(event.Name)
					if err != nil {
						log.Printf("WATCHER WARN: Could not hash file %s: %v", event.Name, err)
						continue
					}
					// Delete old chunks before re-admitting.
					if err := s.deleteBySourceFile(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", event.Name, err)
					}
					if err := s.admitFile(ctx, event.Name, hash); err != nil {
						log.Printf("WATCHER ERROR: Failed to process file %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
					if err := s.deleteBySourceFile(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", event.Name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching library directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}

// ScanAndIndexDirectory syncs the library directory with the book_info
// collection: new and changed files are admitted, deleted files are removed.
func (s *LibraryIndexer) ScanAndIndexDirectory(ctx context.Context, dirPath string) {
	log.Printf("INDEXER: Starting library scan for: %s", dirPath)

	indexedFiles, err := s.currentIndexState(ctx)
	if err != nil {
		log.Printf("INDEXER ERROR: Could not get current index state: %v", err)
		return
	}
	log.Printf("INDEXER: Found %d files currently in the index.", len(indexedFiles))

	localFiles := make(map[string]bool)
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isSupportedFile(path) {
			localFiles[path] = true
			hash, err := calculateFileHash(path)
			if err != nil {
				log.Printf("INDEXER WARN: Could not hash file %s: %v", path, err)
				return nil
			}

			if state, ok := indexedFiles[path]; ok {
				if state.Hash == hash {
					return nil // File is unchanged, skip.
				}
				log.Printf("INDEXER: File has changed: %s. Re-indexing...", path)
				if err := s.deleteBySourceFile(ctx, path); err != nil {
					log.Printf("INDEXER ERROR: Failed to delete old version of %s: %v", path, err)
					return nil
				}
			}

			log.Printf("INDEXER: Admitting new/modified file: %s", path)
			if err := s.admitFile(ctx, path, hash); err != nil {
				log.Printf("INDEXER ERROR: Failed to process file %s: %v", path, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", dirPath, err)
	}

	// Handle deletions.
	for path := range indexedFiles {
		if !localFiles[path] {
			log.Printf("INDEXER: File deleted: %s. Removing from index...", path)
			if err := s.deleteBySourceFile(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete records for %s: %v", path, err)
			}
		}
	}
	log.Println("INDEXER: Library scan finished.")
}

// admitFile extracts the file's text and runs it through the admission path.
// No query metadata is attached, so the similarity gate does not apply to
// local notes.
func (s *LibraryIndexer) admitFile(ctx context.Context, path, hash string) error {
	content, err := ExtractTextFromFile(path)
	if err != nil {
		return err
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	metadata := models.Metadata{
		Title:      title,
		Source:     "library",
		SourceFile: path,
		FileHash:   hash,
	}
	return s.engine.AddToCollection(ctx, content, vectordb.CollectionBookInfo, metadata)
}

func (s *LibraryIndexer) currentIndexState(ctx context.Context) (map[string]fileState, error) {
	state := make(map[string]fileState)
	snap, err := s.store.GetAll(ctx, vectordb.CollectionBookInfo)
	if err != nil {
		return nil, err
	}
	for _, meta := range snap.Metadatas {
		if meta.SourceFile == "" || meta.FileHash == "" {
			continue
		}
		if _, exists := state[meta.SourceFile]; !exists {
			state[meta.SourceFile] = fileState{Hash: meta.FileHash}
		}
	}
	return state, nil
}

func (s *LibraryIndexer) deleteBySourceFile(ctx context.Context, path string) error {
	return s.store.DeleteWhere(ctx, vectordb.CollectionBookInfo, "source_file", path)
}

func isSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".pdf":
		return true
	default:
		return false
	}
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
