package domain

import "errors"

// Domain errors represent the abstract error kinds from the fetch/index/assemble
// pipeline. Adapters wrap these with %w so callers can still errors.Is against
// the abstract kind regardless of which adapter produced it.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig indicates a missing or invalid configuration value. Fatal.
	ErrConfig = errors.New("configuration error")

	// ErrAuth indicates the NNTP server rejected AUTHINFO USER/PASS. Fatal for the run.
	ErrAuth = errors.New("nntp authentication failed")

	// ErrTransport indicates a socket/TLS/read error or an unexpected status
	// code. Retryable at chunk granularity; the offending connection is discarded.
	ErrTransport = errors.New("nntp transport error")

	// ErrProtocol indicates a syntactically valid response with semantically
	// wrong content (missing terminator, unparseable status line). Treated as
	// ErrTransport by callers.
	ErrProtocol = errors.New("nntp protocol error")

	// ErrNoSuchRange indicates the server returned 423 for a chunk. Non-retryable.
	ErrNoSuchRange = errors.New("no such article range")

	// ErrParse indicates a single overview line could not be parsed. Counted
	// and dropped; never propagated past the parser.
	ErrParse = errors.New("overview parse error")

	// ErrStore indicates a relational engine failure. Propagated to the caller;
	// the writer aborts and the orchestrator cancels.
	ErrStore = errors.New("index store error")

	// ErrCancelled indicates a fetch run was cancelled before completion.
	ErrCancelled = errors.New("fetch cancelled")
)
