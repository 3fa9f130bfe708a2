package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	d := time.Date(2026, 3, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "coffee-rewards-backup-2026-03-07.json", FileName(d))
}

func TestFileExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := NewFileExporter(dir)
	e.now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }

	path, err := e.Export(context.Background(), []byte("[]\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "coffee-rewards-backup-2026-01-02.json"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(b))

	// same day overwrites
	_, err = e.Export(context.Background(), []byte("[1]"))
	require.NoError(t, err)
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(b))
}

func TestFileExporter_DirIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := NewFileExporter(file).Export(context.Background(), []byte("[]"))
	require.Error(t, err)
}
