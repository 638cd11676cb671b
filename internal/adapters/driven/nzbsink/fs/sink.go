// Package fs implements the driven.NZBSink port on the local filesystem,
// the default sink for spec.md §4.7's rendered NZB documents.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
)

var _ driven.NZBSink = (*Sink)(nil)

// Sink writes NZB documents under a configured output directory.
type Sink struct {
	dir string
}

// NewSink creates a Sink rooted at dir, creating it if necessary.
func NewSink(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating nzb output dir %s: %v", domain.ErrStore, dir, err)
	}
	return &Sink{dir: dir}, nil
}

// Write stores data under name inside the sink's directory and returns the
// resulting absolute path.
func (s *Sink) Write(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", domain.ErrStore, path, err)
	}
	return path, nil
}
