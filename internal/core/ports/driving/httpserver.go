package driving

import "context"

// HTTPServer exposes Index Store queries and NZB assembly over HTTP when
// [http] enabled = true, started by the serve command alongside the
// scheduler.
type HTTPServer interface {
	// Start runs the HTTP listener. Blocks until ctx is cancelled or the
	// server fails to start.
	Start(ctx context.Context) error
}
