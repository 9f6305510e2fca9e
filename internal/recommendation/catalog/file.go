// internal/recommendation/catalog/file.go
package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rlecomte1929/rolec/internal/recommendation/model"
)

//go:embed datasets/*.json
var bundled embed.FS

// FileSource reads <category>.json datasets from a directory tree.
type FileSource struct {
	fsys fs.FS
}

// NewFileSource reads from dir, or from the bundled datasets when dir is empty.
func NewFileSource(dir string) *FileSource {
	if dir == "" {
		return NewBundledSource()
	}
	return &FileSource{fsys: os.DirFS(dir)}
}

// NewBundledSource reads the datasets compiled into the binary.
func NewBundledSource() *FileSource {
	sub, err := fs.Sub(bundled, "datasets")
	if err != nil {
		panic(fmt.Sprintf("bundled datasets: %v", err))
	}
	return &FileSource{fsys: sub}
}

// NewFSSource reads from an arbitrary filesystem.
func NewFSSource(fsys fs.FS) *FileSource {
	return &FileSource{fsys: fsys}
}

func (s *FileSource) LoadDataset(ctx context.Context, category string) ([]model.CatalogItem, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(s.fsys, category+".json")
	if errors.Is(err, fs.ErrNotExist) {
		return []model.CatalogItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", category, err)
	}

	items, err := decodeItems(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", category, err)
	}
	return items, nil
}
