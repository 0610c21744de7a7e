package xsearch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PageStore durably persists one page of raw entries. Implementations must
// be safe for concurrent use; every paginator in a crawl shares one store.
type PageStore interface {
	SavePage(ctx context.Context, query string, payload []byte) error
}

// FileStore writes each page as a JSON file named by a nanosecond
// timestamp, so filenames sort in fetch order.
type FileStore struct {
	dir string
}

// NewFileStore creates the output directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// SavePage implements PageStore.
func (s *FileStore) SavePage(_ context.Context, _ string, payload []byte) error {
	name := fmt.Sprintf("%d.json", time.Now().UnixNano())
	if err := os.WriteFile(filepath.Join(s.dir, name), payload, 0640); err != nil {
		return fmt.Errorf("write page %s: %w", name, err)
	}
	return nil
}
