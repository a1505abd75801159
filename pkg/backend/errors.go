package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ============================================================================
// Error Taxonomy
// ============================================================================

// Kind classifies a backend failure into the closed afile taxonomy.
//
// Every fallible afile operation returns either nil, a context error (the
// caller abandoned the operation), or an error whose Kind is one of the
// values below.
type Kind int

const (
	// KindOther is an unclassified backend failure. Usage errors (busy or
	// closed handles, invalid seeks) and malformed remote responses land here.
	KindOther Kind = iota

	// KindNotFound means the file or remote object does not exist.
	KindNotFound

	// KindPermissionDenied means the platform or origin refused access.
	KindPermissionDenied

	// KindIO is a general I/O or network failure.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindIO:
		return "i/o error"
	default:
		return "other"
	}
}

// Taxonomy sentinels. An *Error matches the sentinel of its Kind under
// errors.Is, so callers never need to inspect the Kind field directly:
//
//	f, err := afile.Open(ctx, path, priority.Default)
//	if errors.Is(err, backend.ErrNotFound) {
//	    // ...
//	}
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIO               = errors.New("i/o error")
	ErrOther            = errors.New("backend error")
)

// Causes wrapped by KindOther errors.
var (
	// ErrBusy is returned when an operation is issued on a handle that
	// already has one pending.
	ErrBusy = errors.New("operation already in progress on handle")

	// ErrClosed is returned for any operation on a released handle.
	ErrClosed = errors.New("handle is closed")

	// ErrInvalidSeek is returned when a seek would move the cursor to a
	// negative or unrepresentable position.
	ErrInvalidSeek = errors.New("invalid seek position")

	// ErrSeekUnsupported is returned by backends that cannot honour a seek
	// mode without performing I/O they are not allowed to perform.
	ErrSeekUnsupported = errors.New("seek mode not supported by backend")

	// ErrInvalidSize is returned for a negative read length.
	ErrInvalidSize = errors.New("invalid read size")

	// ErrNoOrigin is returned by the remote backend when no origin has been
	// configured.
	ErrNoOrigin = errors.New("no origin configured")

	// ErrMalformedResponse is returned when a remote response cannot be
	// interpreted (missing Content-Length, mismatched Content-Range, ...).
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is the error type returned by backend operations.
type Error struct {
	// Kind is the taxonomy class of the failure.
	Kind Kind

	// Op is the operation that failed ("open", "read", "seek", "metadata").
	Op string

	// Path is the path or URL the operation targeted.
	Path string

	// Err is the underlying platform or backend cause.
	Err error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("afile %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("afile %s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the taxonomy sentinel of e's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrPermissionDenied:
		return e.Kind == KindPermissionDenied
	case ErrIO:
		return e.Kind == KindIO
	case ErrOther:
		return e.Kind == KindOther
	}
	return false
}

// StatusError records an HTTP (or S3) status the remote backend did not
// expect. It is always wrapped in a KindOther, KindNotFound or
// KindPermissionDenied Error.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// NewError builds an *Error of the given kind.
func NewError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the taxonomy class of err. Errors that are not *Error are
// classified as KindOther; nil is also reported as KindOther, so callers
// should check for nil first.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// Classify maps a platform error onto the taxonomy.
//
// Mapping:
//   - fs.ErrNotExist (ENOENT, ENOTDIR)      → KindNotFound
//   - fs.ErrPermission (EACCES, EPERM)      → KindPermissionDenied
//   - any other path or syscall error       → KindIO
//   - context errors are returned unchanged (cancellation is not an error
//     class of its own)
//   - an existing *Error is returned unchanged
//   - anything else                         → KindOther
func Classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if IsContextError(err) {
		return err
	}

	var existing *Error
	if errors.As(err, &existing) {
		return err
	}

	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return NewError(KindNotFound, op, path, err)
	case errors.Is(err, fs.ErrPermission):
		return NewError(KindPermissionDenied, op, path, err)
	}

	var (
		pathErr *fs.PathError
		errno   syscall.Errno
	)
	if errors.As(err, &pathErr) || errors.As(err, &errno) {
		return NewError(KindIO, op, path, err)
	}

	return NewError(KindOther, op, path, err)
}

// IsContextError reports whether err is (or wraps) a context cancellation
// or deadline error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
