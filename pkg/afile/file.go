package afile

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/marmos91/afile/internal/logger"
	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/priority"
)

// ReadAllChunkSize is the read length used by ReadAll on backends that
// cannot fetch a whole stream in one request.
const ReadAllChunkSize = 64 * 1024

type state int32

const (
	stateIdle state = iota
	statePending
	stateClosed
)

// File is an open handle with its own logical cursor.
//
// At most one operation may be outstanding on a File. An operation issued
// while another is pending fails immediately with ErrBusy; operations on a
// closed File fail with ErrClosed. Different Files are independent and may
// be used concurrently.
//
// The cursor only moves when an operation delivers its result. A cancelled
// operation therefore leaves the cursor where it was before the call.
type File struct {
	id      uuid.UUID
	path    string
	backend string
	res     backend.Resource

	cursor atomic.Uint64
	state  atomic.Int32
}

func newFile(b backend.Backend, path string, res backend.Resource) *File {
	return &File{
		id:      uuid.New(),
		path:    path,
		backend: b.Name(),
		res:     res,
	}
}

// ID identifies the handle in logs.
func (f *File) ID() string { return f.id.String() }

// Path returns the path the handle was opened with.
func (f *File) Path() string { return f.path }

// Position returns the current cursor.
func (f *File) Position() uint64 { return f.cursor.Load() }

// begin moves the handle from idle to pending.
func (f *File) begin(op string) error {
	if f.state.CompareAndSwap(int32(stateIdle), int32(statePending)) {
		return nil
	}
	if state(f.state.Load()) == stateClosed {
		return backend.NewError(backend.KindOther, op, f.path, backend.ErrClosed)
	}
	logger.Debug("afile[%s]: %s rejected, operation already pending", f.id, op)
	return backend.NewError(backend.KindOther, op, f.path, backend.ErrBusy)
}

// end returns the handle to idle. It reports false when the handle was
// closed while the operation ran, in which case the result must be dropped.
func (f *File) end() bool {
	return f.state.CompareAndSwap(int32(statePending), int32(stateIdle))
}

func (f *File) closedError(op string) error {
	return backend.NewError(backend.KindOther, op, f.path, backend.ErrClosed)
}

func (f *File) wrap(op string, err error) error {
	return backend.Classify(op, f.path, err)
}

// Read reads up to maxLen bytes at the cursor and advances the cursor by the
// number of bytes returned. A zero-length result means end-of-stream.
func (f *File) Read(ctx context.Context, maxLen int, p priority.Priority) (Data, error) {
	if maxLen < 0 {
		return Data{}, backend.NewError(backend.KindOther, "read", f.path, backend.ErrInvalidSize)
	}
	if err := f.begin("read"); err != nil {
		return Data{}, err
	}

	pos := f.cursor.Load()
	buf, err := f.res.ReadAt(ctx, pos, maxLen, p)
	if err == nil {
		f.cursor.Store(pos + uint64(len(buf)))
	}
	if !f.end() {
		return Data{}, f.closedError("read")
	}
	if err != nil {
		return Data{}, f.wrap("read", err)
	}
	return newData(buf), nil
}

// Seek moves the cursor and returns the new position. Seeking past the end
// is allowed; reads there return no data.
func (f *File) Seek(ctx context.Context, pos SeekFrom, p priority.Priority) (uint64, error) {
	if err := f.begin("seek"); err != nil {
		return 0, err
	}

	next, err := f.res.Seek(ctx, f.cursor.Load(), pos, p)
	if err == nil {
		f.cursor.Store(next)
	}
	if !f.end() {
		return 0, f.closedError("seek")
	}
	if err != nil {
		return 0, f.wrap("seek", err)
	}
	return next, nil
}

// Metadata returns a snapshot of the file's metadata. The cursor is not
// affected.
func (f *File) Metadata(ctx context.Context, p priority.Priority) (Metadata, error) {
	if err := f.begin("metadata"); err != nil {
		return Metadata{}, err
	}

	md, err := f.res.Stat(ctx, p)
	if !f.end() {
		return Metadata{}, f.closedError("metadata")
	}
	if err != nil {
		return Metadata{}, f.wrap("metadata", err)
	}
	return md, nil
}

// ReadAll reads from the cursor to end-of-stream and leaves the cursor at
// the end. On error nothing is returned and the cursor stays where it was.
func (f *File) ReadAll(ctx context.Context, p priority.Priority) (Data, error) {
	if err := f.begin("read_all"); err != nil {
		return Data{}, err
	}

	start := f.cursor.Load()
	buf, err := f.readAll(ctx, start, p)
	if err == nil {
		f.cursor.Store(start + uint64(len(buf)))
	}
	if !f.end() {
		return Data{}, f.closedError("read_all")
	}
	if err != nil {
		return Data{}, f.wrap("read_all", err)
	}
	return newData(buf), nil
}

func (f *File) readAll(ctx context.Context, start uint64, p priority.Priority) ([]byte, error) {
	if wr, ok := f.res.(backend.WholeReader); ok {
		return wr.ReadFrom(ctx, start, p)
	}

	var out []byte
	off := start
	for {
		chunk, err := f.res.ReadAt(ctx, off, ReadAllChunkSize, p)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}
		if out == nil {
			out = chunk
		} else {
			out = append(out, chunk...)
		}
		off += uint64(len(chunk))
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// Close releases the handle. An operation still pending completes or fails
// against the released resource and its caller gets ErrClosed. Closing
// twice returns ErrClosed.
func (f *File) Close() error {
	for {
		s := f.state.Load()
		if state(s) == stateClosed {
			return f.closedError("close")
		}
		if f.state.CompareAndSwap(s, int32(stateClosed)) {
			break
		}
	}

	logger.Debug("afile[%s]: closed %s", f.id, f.path)
	if err := f.res.Close(); err != nil {
		return f.wrap("close", err)
	}
	return nil
}
