package filesystem

import (
	"fmt"
	"os"

	"letitflow-media/domain/media"
)

// Lister implements media.DirectoryLister using the os package
type Lister struct{}

// NewLister creates a new directory lister
func NewLister() *Lister {
	return &Lister{}
}

// List returns the entries of dir sorted by name
func (l *Lister) List(dir string) ([]media.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	result := make([]media.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, media.DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return result, nil
}

// EnsureDir creates dir and any missing parents
func (l *Lister) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// Ensure Lister implements media.DirectoryLister
var _ media.DirectoryLister = (*Lister)(nil)
