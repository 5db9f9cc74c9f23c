package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextFromFilePlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Call me Ishmael."), 0o644))

	text, err := ExtractTextFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Call me Ishmael.", text)
}

func TestExtractTextFromFileMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.MD")
	require.NoError(t, os.WriteFile(path, []byte("# Moby Dick\n\nA whale."), 0o644))

	text, err := ExtractTextFromFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Moby Dick")
}

func TestExtractTextFromFileUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cover.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8}, 0o644))

	_, err := ExtractTextFromFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestExtractTextFromFileMissing(t *testing.T) {
	_, err := ExtractTextFromFile(filepath.Join(t.TempDir(), "gone.txt"))
	assert.Error(t, err)
}
