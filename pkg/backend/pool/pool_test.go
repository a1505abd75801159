package pool

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/priority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newBackend(t *testing.T, cfg Config) *Backend {
	t.Helper()
	b := New(cfg)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestOpenAndRead(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, Config{Workers: 2})
	path := writeFixture(t, "hello world")

	res, err := b.Open(ctx, path, priority.Default)
	require.NoError(t, err)
	defer res.Close()

	data, err := res.ReadAt(ctx, 6, 100, priority.Default)
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))

	data, err = res.ReadAt(ctx, 11, 4, priority.Default)
	require.NoError(t, err)
	assert.Empty(t, data, "read at EOF must be empty, not an error")
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, Config{})
	dir := t.TempDir()

	_, err := b.Open(ctx, filepath.Join(dir, "missing"), priority.Default)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	file := writeFixture(t, "x")
	_, err = b.Open(ctx, filepath.Join(file, "child"), priority.Default)
	assert.ErrorIs(t, err, backend.ErrNotFound, "ENOTDIR maps to not found")

	if os.Geteuid() != 0 {
		locked := filepath.Join(dir, "locked")
		require.NoError(t, os.WriteFile(locked, []byte("secret"), 0000))
		_, err = b.Open(ctx, locked, priority.Default)
		assert.ErrorIs(t, err, backend.ErrPermissionDenied)
	}
}

func TestMaxReadSizeShortRead(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, Config{MaxReadSize: 4})
	path := writeFixture(t, "abcdefgh")

	res, err := b.Open(ctx, path, priority.Default)
	require.NoError(t, err)
	defer res.Close()

	data, err := res.ReadAt(ctx, 0, 100, priority.Default)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))

	_, err = res.ReadAt(ctx, 0, -1, priority.Default)
	assert.ErrorIs(t, err, backend.ErrInvalidSize)
}

func TestSeek(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, Config{})
	path := writeFixture(t, "0123456789")

	res, err := b.Open(ctx, path, priority.Default)
	require.NoError(t, err)
	defer res.Close()

	tests := []struct {
		name    string
		current uint64
		pos     backend.SeekFrom
		want    uint64
		wantErr bool
	}{
		{"start", 5, backend.Start(3), 3, false},
		{"current forward", 5, backend.Current(2), 7, false},
		{"current back", 5, backend.Current(-5), 0, false},
		{"current before start", 5, backend.Current(-6), 0, true},
		{"end", 0, backend.End(-2), 8, false},
		{"past end", 0, backend.End(4), 14, false},
		{"end before start", 0, backend.End(-11), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := res.Seek(ctx, tt.current, tt.pos, priority.Default)
			if tt.wantErr {
				assert.ErrorIs(t, err, backend.ErrInvalidSeek)
				assert.ErrorIs(t, err, backend.ErrOther)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStat(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, Config{})
	path := writeFixture(t, "twelve bytes")

	res, err := b.Open(ctx, path, priority.Default)
	require.NoError(t, err)
	defer res.Close()

	md, err := res.Stat(ctx, priority.Default)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), md.Len())
	assert.False(t, md.IsDir())
	assert.False(t, md.ModTime.IsZero())
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, Config{})
	path := writeFixture(t, "x")

	assert.True(t, b.Exists(ctx, path, priority.Default))
	assert.True(t, b.Exists(ctx, filepath.Dir(path), priority.Default))
	assert.False(t, b.Exists(ctx, path+".missing", priority.Default))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, b.Exists(cancelled, path, priority.Default))
}

// TestAbandonedRead cancels a read while the worker is inside it and checks
// that the late result is dropped and the resource stays usable.
func TestAbandonedRead(t *testing.T) {
	var (
		mu    sync.Mutex
		delay time.Duration
	)
	b := newBackend(t, Config{
		Workers: 1,
		BeforeSyscall: func(op string) {
			mu.Lock()
			d := delay
			mu.Unlock()
			if op == "read" {
				time.Sleep(d)
			}
		},
	})
	path := writeFixture(t, "payload")

	res, err := b.Open(context.Background(), path, priority.Default)
	require.NoError(t, err)
	defer res.Close()

	mu.Lock()
	delay = 200 * time.Millisecond
	mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	data, err := res.ReadAt(ctx, 0, 7, priority.Default)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, data)

	mu.Lock()
	delay = 0
	mu.Unlock()

	data, err = res.ReadAt(context.Background(), 0, 7, priority.Default)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestAbandonedOpenClosesDescriptor(t *testing.T) {
	opened := make(chan struct{})
	release := make(chan struct{})
	b := newBackend(t, Config{
		Workers: 1,
		BeforeSyscall: func(op string) {
			if op == "open" {
				close(opened)
				<-release
			}
		},
	})
	path := writeFixture(t, "x")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := b.Open(ctx, path, priority.Default)
		errCh <- err
	}()

	<-opened
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	close(release)
}

func TestClosedBackend(t *testing.T) {
	b := New(Config{})
	path := writeFixture(t, "x")

	res, err := b.Open(context.Background(), path, priority.Default)
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, err = res.ReadAt(context.Background(), 0, 1, priority.Default)
	assert.ErrorIs(t, err, backend.ErrClosed)
	assert.False(t, b.Exists(context.Background(), path, priority.Default))
	assert.NoError(t, res.Close())
}

func TestResourceCloseIsIdempotent(t *testing.T) {
	b := newBackend(t, Config{})
	res, err := b.Open(context.Background(), writeFixture(t, "x"), priority.Default)
	require.NoError(t, err)

	assert.NoError(t, res.Close())
	assert.NoError(t, res.Close())

	_, err = res.ReadAt(context.Background(), 0, 1, priority.Default)
	assert.ErrorIs(t, err, backend.ErrIO)
}
