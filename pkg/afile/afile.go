// Package afile provides priority-aware, cancellation-safe file access.
//
// A File is opened through a Backend: the blocking pool (local files, the
// default) or the remote fetcher (http, https and s3 origins). Every
// operation takes a context and a priority.Priority; the calling goroutine
// waits at the operation boundary while the backend does the work.
//
// Basic usage:
//
//	f, err := afile.Open(ctx, "testdata/config.json", priority.UserInitiated)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	data, err := f.ReadAll(ctx, priority.UserInitiated)
//
// Cancellation safety: read buffers are allocated by the backend inside the
// operation, so abandoning an operation (cancelling ctx) can never leave
// caller memory half-written, and a late result is simply dropped.
package afile

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/marmos91/afile/internal/logger"
	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/backend/pool"
	"github.com/marmos91/afile/pkg/priority"
)

// Types shared with the backend layer.
type (
	Metadata = backend.Metadata
	SeekFrom = backend.SeekFrom
	Error    = backend.Error
	Kind     = backend.Kind
)

// Seek positions.
var (
	Start   = backend.Start
	Current = backend.Current
	End     = backend.End
)

// Error taxonomy and causes, see package backend.
var (
	ErrNotFound         = backend.ErrNotFound
	ErrPermissionDenied = backend.ErrPermissionDenied
	ErrIO               = backend.ErrIO
	ErrOther            = backend.ErrOther

	ErrBusy            = backend.ErrBusy
	ErrClosed          = backend.ErrClosed
	ErrInvalidSeek     = backend.ErrInvalidSeek
	ErrSeekUnsupported = backend.ErrSeekUnsupported
	ErrInvalidSize     = backend.ErrInvalidSize
)

type activeBackend struct {
	b backend.Backend
}

var (
	active atomic.Pointer[activeBackend]

	defaultOnce sync.Once
	defaultPool backend.Backend
)

func defaultBackend() backend.Backend {
	defaultOnce.Do(func() {
		defaultPool = pool.New(pool.Config{})
	})
	return defaultPool
}

// ActiveBackend returns the backend used by Open and Exists. Unless SetBackend
// was called it is a blocking-pool backend created on first use.
func ActiveBackend() backend.Backend {
	if a := active.Load(); a != nil {
		return a.b
	}
	return defaultBackend()
}

// SetBackend replaces the active backend. Files already open keep the
// backend they were opened with. A nil b restores the default.
func SetBackend(b backend.Backend) {
	if b == nil {
		active.Store(nil)
		return
	}
	active.Store(&activeBackend{b: b})
	logger.Debug("afile: active backend is now %s", b.Name())
}

// Open opens path on the active backend with the cursor at 0.
func Open(ctx context.Context, path string, p priority.Priority) (*File, error) {
	return OpenWith(ctx, ActiveBackend(), path, p)
}

// OpenWith opens path on b.
func OpenWith(ctx context.Context, b backend.Backend, path string, p priority.Priority) (*File, error) {
	res, err := b.Open(ctx, path, p)
	if err != nil {
		return nil, backend.Classify("open", path, err)
	}

	f := newFile(b, path, res)
	logger.Debug("afile[%s]: opened %s on %s", f.id, path, b.Name())
	return f, nil
}

// Exists reports whether path exists on the active backend. It never fails;
// anything that prevents confirming existence yields false.
func Exists(ctx context.Context, path string, p priority.Priority) bool {
	return ActiveBackend().Exists(ctx, path, p)
}

// SetDefaultOrigin sets the origin of the active backend. It is a no-op for
// backends that do not resolve paths against an origin, such as the
// blocking pool.
func SetDefaultOrigin(origin string) {
	if s, ok := ActiveBackend().(backend.OriginSetter); ok {
		s.SetOrigin(origin)
	}
}
