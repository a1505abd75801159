package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/priority"
)

// resource is an opened remote path. The URL is resolved again for every
// request, so an origin change applies to open resources too.
type resource struct {
	backend *Backend
	path    string
}

var (
	_ backend.Resource    = (*resource)(nil)
	_ backend.WholeReader = (*resource)(nil)
)

// ReadAt issues GET with Range: bytes=offset-(offset+n-1).
//
// Replies:
//   - 206: Content-Range must start at offset, body is the data
//   - 200: range ignored by the server, the first offset bytes are skipped
//   - 416: offset at or past end-of-stream, empty data
func (r *resource) ReadAt(ctx context.Context, offset uint64, n int, p priority.Priority) ([]byte, error) {
	if n < 0 {
		return nil, backend.NewError(backend.KindOther, "read", r.path, backend.ErrInvalidSize)
	}
	if n == 0 {
		return []byte{}, nil
	}

	rng := fmt.Sprintf("bytes=%d-%d", offset, offset+uint64(n)-1)
	return r.fetch(ctx, "read", offset, rng, int64(n), p)
}

// ReadFrom fetches everything from offset to end-of-stream in one request.
func (r *resource) ReadFrom(ctx context.Context, offset uint64, p priority.Priority) ([]byte, error) {
	rng := ""
	if offset > 0 {
		rng = fmt.Sprintf("bytes=%d-", offset)
	}
	return r.fetch(ctx, "read_all", offset, rng, -1, p)
}

// fetch performs a GET and drains at most limit bytes (all when limit < 0)
// of the body into a freshly allocated buffer.
func (r *resource) fetch(ctx context.Context, op string, offset uint64, rng string, limit int64, p priority.Priority) ([]byte, error) {
	resp, err := r.backend.roundTrip(ctx, op, r.path, http.MethodGet, rng, p)
	if err != nil {
		return nil, err
	}
	defer resp.close()

	switch {
	case resp.status == http.StatusRequestedRangeNotSatisfiable:
		return []byte{}, nil

	case resp.status == http.StatusPartialContent:
		start, ok := rangeStart(resp.contentRange)
		if !ok || start != offset {
			return nil, backend.NewError(backend.KindOther, op, r.path,
				fmt.Errorf("%w: content-range %q for offset %d", backend.ErrMalformedResponse, resp.contentRange, offset))
		}

	case success(resp.status):
		if offset > 0 && rng != "" {
			if _, err := io.CopyN(io.Discard, resp.body, int64(offset)); err != nil {
				if errors.Is(err, io.EOF) {
					return []byte{}, nil
				}
				return nil, requestError(ctx, op, r.path, err)
			}
		}

	default:
		return nil, statusError(op, r.path, resp.status)
	}

	var src io.Reader = resp.body
	if limit >= 0 {
		src = io.LimitReader(resp.body, limit)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, requestError(ctx, op, r.path, err)
	}

	r.backend.metrics.RecordBytes(Name, int64(len(data)))
	return data, nil
}

// Seek is purely logical. SeekEnd would need the size, which this backend
// does not fetch implicitly, so it is rejected.
func (r *resource) Seek(ctx context.Context, current uint64, pos backend.SeekFrom, p priority.Priority) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if pos.Whence == backend.SeekEnd {
		return 0, backend.NewError(backend.KindOther, "seek", r.path, backend.ErrSeekUnsupported)
	}
	next, err := backend.ResolveSeek(current, pos, 0)
	if err != nil {
		return 0, backend.NewError(backend.KindOther, "seek", r.path, err)
	}
	return next, nil
}

// Stat issues HEAD. A reply without a usable Content-Length is malformed.
func (r *resource) Stat(ctx context.Context, p priority.Priority) (backend.Metadata, error) {
	resp, err := r.backend.roundTrip(ctx, "metadata", r.path, http.MethodHead, "", p)
	if err != nil {
		return backend.Metadata{}, err
	}
	if !success(resp.status) {
		return backend.Metadata{}, statusError("metadata", r.path, resp.status)
	}
	if resp.contentLength < 0 {
		return backend.Metadata{}, backend.NewError(backend.KindOther, "metadata", r.path,
			fmt.Errorf("%w: missing content-length", backend.ErrMalformedResponse))
	}

	return backend.Metadata{
		Size:        uint64(resp.contentLength),
		ModTime:     resp.lastModified,
		Mode:        0444,
		ContentType: resp.contentType,
		ETag:        resp.etag,
	}, nil
}

// Close is a no-op: nothing is held between requests.
func (r *resource) Close() error { return nil }

// rangeStart parses the first byte position of "bytes START-END/TOTAL".
func rangeStart(contentRange string) (uint64, bool) {
	rest, ok := strings.CutPrefix(contentRange, "bytes ")
	if !ok {
		return 0, false
	}
	first, _, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, false
	}
	start, err := strconv.ParseUint(strings.TrimSpace(first), 10, 64)
	if err != nil {
		return 0, false
	}
	return start, true
}

// cancelOnClose releases a per-request timeout once the body is consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
