// Package backend defines the contract between the afile handle state
// machine and the platform strategies that execute file operations.
//
// Two implementations exist:
//   - pool: blocking system calls dispatched to a bounded worker pool
//   - remote: HTTP (or S3) range and whole-object requests against an origin
//
// A File handle in package afile is bound to exactly one Backend for its
// whole lifetime; backends are never mixed within one handle.
package backend

import (
	"context"

	"github.com/marmos91/afile/pkg/priority"
)

// ============================================================================
// Backend Interface
// ============================================================================

// Backend opens resources and answers existence checks.
//
// Ownership Rule:
// Every byte slice a backend returns is allocated inside the operation's own
// execution context (the worker job, or the goroutine draining the response
// body). A backend never writes into caller-supplied memory, so abandoning an
// operation can never leave caller-visible memory partially written.
//
// Cancellation:
// All blocking methods take a context. When the context is cancelled the
// method returns the context error and produces no result. A backend either
// aborts the underlying work cooperatively or lets it finish in the
// background and drops the result; both are acceptable, a third
// (partially-delivered) state is not.
//
// Thread Safety:
// Backends must be safe for concurrent use by multiple goroutines. The
// one-operation-at-a-time rule applies to handles, not to backends.
type Backend interface {
	// Name identifies the backend in logs and metrics ("pool", "remote").
	Name() string

	// Open resolves path against the backend's semantics and returns a
	// resource for it.
	//
	// Returns:
	//   - Resource: Ready for positional reads
	//   - error: *Error of KindNotFound, KindPermissionDenied or KindOther,
	//     or a context error
	Open(ctx context.Context, path string, p priority.Priority) (Resource, error)

	// Exists reports whether path exists. It never fails: any inability to
	// confirm existence is reported as false.
	Exists(ctx context.Context, path string, p priority.Priority) bool
}

// Resource is one opened file or remote object.
//
// Resources carry no cursor. The handle owns the logical position and passes
// it explicitly, which is what makes an abandoned operation free of side
// effects on the handle's state.
type Resource interface {
	// ReadAt returns up to n bytes starting at offset. A short or empty
	// result at end-of-stream is not an error.
	ReadAt(ctx context.Context, offset uint64, n int, p priority.Priority) ([]byte, error)

	// Seek computes a new cursor position from current. It must not move any
	// platform cursor; backends that need I/O to answer (e.g. the size for
	// SeekEnd) perform it here.
	Seek(ctx context.Context, current uint64, pos SeekFrom, p priority.Priority) (uint64, error)

	// Stat returns a metadata snapshot.
	Stat(ctx context.Context, p priority.Priority) (Metadata, error)

	// Close releases the resource. An operation still running against the
	// resource completes or fails harmlessly; its result is discarded.
	Close() error
}

// ============================================================================
// Optional Capabilities
// ============================================================================

// WholeReader is implemented by resources that can fetch everything from an
// offset to end-of-stream in one request. The handle prefers it over a read
// loop for ReadAll.
type WholeReader interface {
	ReadFrom(ctx context.Context, offset uint64, p priority.Priority) ([]byte, error)
}

// OriginSetter is implemented by backends that resolve paths against a base
// URL. Backends without one treat afile.SetDefaultOrigin as a no-op.
type OriginSetter interface {
	SetOrigin(origin string)
}

// Closer is implemented by backends owning long-lived resources such as a
// worker pool.
type Closer interface {
	Close() error
}
