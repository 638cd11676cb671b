package driven

import "context"

// NZBSink abstracts where a rendered NZB document is written: local
// filesystem by default, or an object-storage bucket.
type NZBSink interface {
	// Write stores the rendered document under name, returning a
	// human-readable location (path or URI) for CLI/HTTP reporting.
	Write(ctx context.Context, name string, data []byte) (string, error)
}
