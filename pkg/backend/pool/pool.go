// Package pool implements the blocking-pool backend.
//
// Every platform call (open, pread, fstat, stat) runs as one job on a bounded
// worker pool. The caller's goroutine only waits at the operation boundary,
// and stops waiting as soon as its context ends. Reads are positional
// (ReadAt), so the logical cursor owned by the handle is never affected by a
// job that finishes after its caller left.
package pool

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/marmos91/afile/internal/logger"
	"github.com/marmos91/afile/internal/workerpool"
	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/priority"
)

// Name is the backend name used in logs and metrics.
const Name = "pool"

// Config holds the blocking-pool backend options.
type Config struct {
	// Workers is the number of worker goroutines (default 16).
	Workers int

	// QueueSize bounds the number of queued jobs (default 1024). Submitting
	// to a full queue blocks until space frees up or the context ends.
	QueueSize int

	// MaxReadSize caps the buffer allocated for a single read. Larger
	// requests return a short read. Default 64 MiB.
	MaxReadSize int

	// Metrics receives operation metrics. Optional.
	Metrics backend.Metrics

	// BeforeSyscall, if set, runs on the worker goroutine right before each
	// blocking call with the operation name ("open", "read", "stat",
	// "exists"). Tests use it to inject delays.
	BeforeSyscall func(op string)
}

const defaultMaxReadSize = 64 << 20

// Backend dispatches file operations to a worker pool.
//
// Thread Safety:
// Safe for concurrent use. Each Resource is used by at most one handle.
type Backend struct {
	workers       *workerpool.Pool
	maxReadSize   int
	metrics       backend.Metrics
	beforeSyscall func(op string)
}

var _ backend.Backend = (*Backend)(nil)
var _ backend.Closer = (*Backend)(nil)

// New starts a blocking-pool backend.
func New(cfg Config) *Backend {
	maxRead := cfg.MaxReadSize
	if maxRead <= 0 {
		maxRead = defaultMaxReadSize
	}

	return &Backend{
		workers:       workerpool.New(cfg.Workers, cfg.QueueSize),
		maxReadSize:   maxRead,
		metrics:       backend.MetricsOrNoop(cfg.Metrics),
		beforeSyscall: cfg.BeforeSyscall,
	}
}

func (b *Backend) Name() string { return Name }

// Open opens path read-only on a worker.
//
// If ctx ends while the open is running, the descriptor it eventually
// produces is closed on the worker instead of being leaked.
func (b *Backend) Open(ctx context.Context, path string, p priority.Priority) (backend.Resource, error) {
	f, err := run(ctx, b, "open", path, p, func() (*os.File, error) {
		return os.Open(path)
	}, func(f *os.File) {
		_ = f.Close()
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("pool: opened %s (priority=%s)", path, p)
	return &resource{backend: b, path: path, file: f}, nil
}

// Exists stats path on a worker. Any failure, including cancellation and a
// closed pool, is reported as false.
func (b *Backend) Exists(ctx context.Context, path string, p priority.Priority) bool {
	_, err := run(ctx, b, "exists", path, p, func() (os.FileInfo, error) {
		return os.Stat(path)
	}, nil)
	return err == nil
}

// Close stops the worker pool after draining queued jobs. Open resources
// fail with ErrClosed afterwards.
func (b *Backend) Close() error {
	b.workers.Close()
	return nil
}

// run executes fn on the pool and maps its outcome onto the error taxonomy.
func run[T any](ctx context.Context, b *Backend, op, path string, p priority.Priority, fn func() (T, error), discard func(T)) (T, error) {
	start := time.Now()

	v, err := workerpool.Do(ctx, b.workers, p, func() (T, error) {
		if b.beforeSyscall != nil {
			b.beforeSyscall(op)
		}
		return fn()
	}, discard)

	switch {
	case err == nil:
	case backend.IsContextError(err):
		b.metrics.RecordAbandoned(Name, op)
	case errors.Is(err, workerpool.ErrClosed):
		err = backend.NewError(backend.KindOther, op, path, backend.ErrClosed)
	default:
		err = backend.Classify(op, path, err)
	}

	b.metrics.ObserveOperation(Name, op, time.Since(start), err)
	return v, err
}
