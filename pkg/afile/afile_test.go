package afile_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/afile/pkg/afile"
	afiletesting "github.com/marmos91/afile/pkg/afile/testing"
	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/backend/pool"
	"github.com/marmos91/afile/pkg/backend/remote"
	"github.com/marmos91/afile/pkg/priority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0644))
	}
	return dir
}

func newPoolEnv(t *testing.T, files map[string][]byte) afiletesting.Env {
	dir := writeFiles(t, files)
	b := pool.New(pool.Config{Workers: 4})
	t.Cleanup(func() { _ = b.Close() })
	return afiletesting.Env{
		Backend: b,
		Path:    func(name string) string { return filepath.Join(dir, name) },
	}
}

// fileServer serves files from memory with Range support.
func fileServer(t *testing.T, files map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		content, ok := files[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, name, time.Unix(1700000000, 0), bytes.NewReader(content))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRemoteEnv(t *testing.T, files map[string][]byte) afiletesting.Env {
	srv := fileServer(t, files)
	return afiletesting.Env{
		Backend: remote.New(remote.Config{Origin: remote.NewOrigin(srv.URL)}),
		Path:    func(name string) string { return name },
	}
}

func TestPoolBackend(t *testing.T) {
	suite := &afiletesting.FileTestSuite{NewEnv: newPoolEnv, SeekEnd: true}
	suite.Run(t)
}

func TestRemoteBackend(t *testing.T) {
	suite := &afiletesting.FileTestSuite{NewEnv: newRemoteEnv, SeekEnd: false}
	suite.Run(t)
}

// TestPoolAbandonedReadUnderDelay drops a read while the worker is stuck in
// a delayed pread, then reopens and fully reads the file.
func TestPoolAbandonedReadUnderDelay(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789abcdef"), 8192)
	dir := writeFiles(t, map[string][]byte{"data.bin": content})
	path := filepath.Join(dir, "data.bin")

	var (
		mu    sync.Mutex
		delay time.Duration
	)
	b := pool.New(pool.Config{
		Workers: 2,
		BeforeSyscall: func(op string) {
			mu.Lock()
			d := delay
			mu.Unlock()
			if op == "read" {
				time.Sleep(d)
			}
		},
	})
	t.Cleanup(func() { _ = b.Close() })

	f, err := afile.OpenWith(context.Background(), b, path, priority.Default)
	require.NoError(t, err)

	mu.Lock()
	delay = 150 * time.Millisecond
	mu.Unlock()

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		data, err := f.Read(ctx, len(content), priority.Background)
		cancel()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 0, data.Len())
		assert.Equal(t, uint64(0), f.Position())
	}

	mu.Lock()
	delay = 0
	mu.Unlock()
	require.NoError(t, f.Close())

	again, err := afile.OpenWith(context.Background(), b, path, priority.Highest)
	require.NoError(t, err)
	defer again.Close()

	data, err := again.ReadAll(context.Background(), priority.Highest)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(content, data.Bytes()), "abandoned reads must not corrupt later reads")
}

func TestActiveBackendDefaultsToPool(t *testing.T) {
	afile.SetBackend(nil)
	assert.Equal(t, pool.Name, afile.ActiveBackend().Name())

	dir := writeFiles(t, map[string][]byte{"a.txt": []byte("abc")})
	ctx := context.Background()

	f, err := afile.Open(ctx, filepath.Join(dir, "a.txt"), priority.Default)
	require.NoError(t, err)
	defer f.Close()

	data, err := f.ReadAll(ctx, priority.Default)
	require.NoError(t, err)
	assert.Equal(t, "abc", data.String())

	assert.True(t, afile.Exists(ctx, filepath.Join(dir, "a.txt"), priority.Default))
	assert.False(t, afile.Exists(ctx, filepath.Join(dir, "b.txt"), priority.Default))

	// No origin on the pool backend.
	afile.SetDefaultOrigin("http://example.invalid")
	assert.True(t, afile.Exists(ctx, filepath.Join(dir, "a.txt"), priority.Default))
}

func TestSetDefaultOriginBetweenOpens(t *testing.T) {
	first := fileServer(t, map[string][]byte{"a.txt": []byte("from first")})
	second := fileServer(t, map[string][]byte{"b.txt": []byte("from second")})

	b := remote.New(remote.Config{Origin: remote.NewOrigin("")})
	afile.SetBackend(b)
	t.Cleanup(func() { afile.SetBackend(nil) })
	ctx := context.Background()

	_, err := afile.Open(ctx, "a.txt", priority.Default)
	assert.ErrorIs(t, err, backend.ErrNoOrigin)

	afile.SetDefaultOrigin(first.URL)
	a, err := afile.Open(ctx, "a.txt", priority.Default)
	require.NoError(t, err)
	data, err := a.ReadAll(ctx, priority.Default)
	require.NoError(t, err)
	assert.Equal(t, "from first", data.String())

	afile.SetDefaultOrigin(second.URL)
	bf, err := afile.Open(ctx, "b.txt", priority.Default)
	require.NoError(t, err)
	data, err = bf.ReadAll(ctx, priority.Default)
	require.NoError(t, err)
	assert.Equal(t, "from second", data.String())

	_, err = afile.Open(ctx, "a.txt", priority.Default)
	assert.ErrorIs(t, err, afile.ErrNotFound)
	assert.False(t, afile.Exists(ctx, "a.txt", priority.Default))
	assert.True(t, afile.Exists(ctx, "b.txt", priority.Default))
}

func TestReadAllErrorKeepsCursor(t *testing.T) {
	srv := fileServer(t, map[string][]byte{"a.txt": []byte("hello world")})
	o := remote.NewOrigin(srv.URL)
	f, err := afile.OpenWith(context.Background(), remote.New(remote.Config{Origin: o}), "a.txt", priority.Default)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Read(context.Background(), 3, priority.Default)
	require.NoError(t, err)

	// Resolution happens per request, so a broken origin fails the next one.
	o.Set("")
	data, err := f.ReadAll(context.Background(), priority.Default)
	assert.ErrorIs(t, err, backend.ErrNoOrigin)
	assert.Equal(t, 0, data.Len())
	assert.Equal(t, uint64(3), f.Position())

	o.Set(srv.URL)
	data, err = f.ReadAll(context.Background(), priority.Default)
	require.NoError(t, err)
	assert.Equal(t, "lo world", data.String())
}
