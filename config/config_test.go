package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Chroma.URL)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.URL)
	assert.Equal(t, "nomic-embed-text:v1.5", cfg.Ollama.Model)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, 0.3, cfg.AddSimilarityThreshold)
	assert.Equal(t, 0.8, cfg.SearchDistanceThreshold)
	assert.Equal(t, 500, cfg.MaxSummaryLength)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Empty(t, cfg.LibraryPath)
}

func TestLoadReadsYamlAndFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
chroma:
  url: http://chroma:9000
ollama:
  model: all-minilm
chunk_size: 200
add_similarity_threshold: 0.5
library_path: /data/library
server_port: "9090"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://chroma:9000", cfg.Chroma.URL)
	assert.Equal(t, "all-minilm", cfg.Ollama.Model)
	assert.Equal(t, 200, cfg.ChunkSize)
	assert.Equal(t, 0.5, cfg.AddSimilarityThreshold)
	assert.Equal(t, "/data/library", cfg.LibraryPath)
	assert.Equal(t, "9090", cfg.ServerPort)

	// Unset fields fall back to defaults.
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.URL)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, 0.8, cfg.SearchDistanceThreshold)
	assert.Equal(t, 3, cfg.Youtube.MaxResults)
}

func TestLoadMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chroma: [not: closed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
