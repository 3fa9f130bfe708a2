// Package exporter delivers a user snapshot somewhere the admin can download
// it from: a local directory or an S3-compatible bucket.
package exporter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/filex"
)

// Exporter stores data and returns where it went (a path or a link).
type Exporter interface {
	Export(ctx context.Context, data []byte) (string, error)
}

// FileName is the snapshot file name for a given day.
func FileName(t time.Time) string {
	return fmt.Sprintf("coffee-rewards-backup-%s.json", t.Format("2006-01-02"))
}

type FileExporter struct {
	dir string
	now func() time.Time
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{dir: dir, now: time.Now}
}

func (e *FileExporter) Export(ctx context.Context, data []byte) (string, error) {
	dir, err := filex.EnsureDir(e.dir)
	if err != nil {
		return "", fmt.Errorf("export dir: %w", err)
	}

	path := filepath.Join(dir, FileName(e.now()))
	if err := filex.WriteFileAtomic(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
