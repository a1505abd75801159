package testing

import (
	"context"
	"testing"

	"github.com/marmos91/afile/pkg/afile"
	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/priority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOpen(t *testing.T, env Env, name string) *afile.File {
	t.Helper()
	f, err := afile.OpenWith(testContext(), env.Backend, env.Path(name), priority.Default)
	require.NoError(t, err, "failed to open %s", name)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func mustRead(t *testing.T, f *afile.File, n int) afile.Data {
	t.Helper()
	data, err := f.Read(testContext(), n, priority.Default)
	require.NoError(t, err, "failed to read %d bytes", n)
	return data
}

func mustReadAll(t *testing.T, f *afile.File) afile.Data {
	t.Helper()
	data, err := f.ReadAll(testContext(), priority.Default)
	require.NoError(t, err, "failed to read all")
	return data
}

func mustSeek(t *testing.T, f *afile.File, pos afile.SeekFrom) uint64 {
	t.Helper()
	got, err := f.Seek(testContext(), pos, priority.Default)
	require.NoError(t, err, "failed to seek %s", pos)
	return got
}

func assertPosition(t *testing.T, f *afile.File, expected uint64) {
	t.Helper()
	assert.Equal(t, expected, f.Position(), "cursor mismatch")
}

// generateTestData returns size bytes of a repeating pattern, so misplaced
// reads are detectable.
func generateTestData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// gatedBackend wraps a backend so that every read blocks until the gate is
// opened or the read's context ends. It lets tests hold an operation pending
// for as long as they need.
type gatedBackend struct {
	backend.Backend
	gate    chan struct{}
	entered chan struct{}
}

func newGatedBackend(b backend.Backend) *gatedBackend {
	return &gatedBackend{
		Backend: b,
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 64),
	}
}

func (g *gatedBackend) Open(ctx context.Context, path string, p priority.Priority) (backend.Resource, error) {
	res, err := g.Backend.Open(ctx, path, p)
	if err != nil {
		return nil, err
	}
	return &gatedResource{Resource: res, g: g}, nil
}

func (g *gatedBackend) open() {
	close(g.gate)
}

type gatedResource struct {
	backend.Resource
	g *gatedBackend
}

func (r *gatedResource) ReadAt(ctx context.Context, offset uint64, n int, p priority.Priority) ([]byte, error) {
	select {
	case r.g.entered <- struct{}{}:
	default:
	}
	select {
	case <-r.g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.Resource.ReadAt(ctx, offset, n, p)
}
