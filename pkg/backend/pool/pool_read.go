package pool

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/priority"
)

// resource is one open descriptor. It holds no cursor.
type resource struct {
	backend *Backend
	path    string
	file    *os.File
}

var _ backend.Resource = (*resource)(nil)

// ReadAt reads up to n bytes at offset.
//
// The buffer is allocated inside the job. If the caller abandons the read,
// the buffer is simply dropped with the job's result; nothing the caller
// holds was ever written.
func (r *resource) ReadAt(ctx context.Context, offset uint64, n int, p priority.Priority) ([]byte, error) {
	if n < 0 {
		return nil, backend.NewError(backend.KindOther, "read", r.path, backend.ErrInvalidSize)
	}
	if n > r.backend.maxReadSize {
		n = r.backend.maxReadSize
	}

	data, err := run(ctx, r.backend, "read", r.path, p, func() ([]byte, error) {
		buf := make([]byte, n)
		got, err := r.file.ReadAt(buf, int64(offset))
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if err != nil {
			return nil, err
		}
		return buf[:got], nil
	}, nil)
	if err != nil {
		return nil, err
	}

	r.backend.metrics.RecordBytes(Name, int64(len(data)))
	return data, nil
}

// Seek resolves Start and Current without I/O. End needs the current size,
// which is read with fstat on a worker.
func (r *resource) Seek(ctx context.Context, current uint64, pos backend.SeekFrom, p priority.Priority) (uint64, error) {
	var size uint64
	if pos.Whence == backend.SeekEnd {
		md, err := r.stat(ctx, "seek", p)
		if err != nil {
			return 0, err
		}
		size = md.Size
	}

	next, err := backend.ResolveSeek(current, pos, size)
	if err != nil {
		return 0, backend.NewError(backend.KindOther, "seek", r.path, err)
	}
	return next, nil
}

func (r *resource) Stat(ctx context.Context, p priority.Priority) (backend.Metadata, error) {
	return r.stat(ctx, "metadata", p)
}

func (r *resource) stat(ctx context.Context, op string, p priority.Priority) (backend.Metadata, error) {
	info, err := run(ctx, r.backend, op, r.path, p, func() (os.FileInfo, error) {
		return r.file.Stat()
	}, nil)
	if err != nil {
		return backend.Metadata{}, err
	}
	return metadataFromInfo(info), nil
}

// Close closes the descriptor. A job still using it fails with
// os.ErrClosed, and that result is discarded by the handle.
func (r *resource) Close() error {
	if err := r.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return backend.Classify("close", r.path, err)
	}
	return nil
}

func metadataFromInfo(info os.FileInfo) backend.Metadata {
	size := info.Size()
	if size < 0 {
		size = 0
	}
	return backend.Metadata{
		Size:    uint64(size),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}
}
