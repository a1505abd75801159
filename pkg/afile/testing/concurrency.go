package testing

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/afile/pkg/afile"
	"github.com/marmos91/afile/pkg/priority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunExclusivityTests checks that a handle never runs two operations at once.
func (suite *FileTestSuite) RunExclusivityTests(t *testing.T) {
	t.Run("SecondOperationFailsFast", suite.testSecondOperationFailsFast)
	t.Run("CloseWhilePending", suite.testCloseWhilePending)
	t.Run("IndependentHandles", suite.testIndependentHandles)
}

// RunCancellationTests checks that abandoned operations have no effect.
func (suite *FileTestSuite) RunCancellationTests(t *testing.T) {
	t.Run("CancelledBeforeStart", suite.testCancelledBeforeStart)
	t.Run("AbandonPendingRead", suite.testAbandonPendingRead)
}

type readResult struct {
	data afile.Data
	err  error
}

func startRead(f *afile.File, ctx context.Context, n int) <-chan readResult {
	ch := make(chan readResult, 1)
	go func() {
		data, err := f.Read(ctx, n, priority.Default)
		ch <- readResult{data: data, err: err}
	}()
	return ch
}

func waitEntered(t *testing.T, g *gatedBackend) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("read never reached the backend")
	}
}

func (suite *FileTestSuite) testSecondOperationFailsFast(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("hello world")})
	gated := newGatedBackend(env.Backend)
	f := mustOpen(t, Env{Backend: gated, Path: env.Path}, "a.txt")
	ctx := testContext()

	pending := startRead(f, ctx, 5)
	waitEntered(t, gated)

	_, err := f.Read(ctx, 5, priority.Highest)
	assert.ErrorIs(t, err, afile.ErrBusy)
	_, err = f.Seek(ctx, afile.Start(0), priority.Highest)
	assert.ErrorIs(t, err, afile.ErrBusy)
	_, err = f.Metadata(ctx, priority.Highest)
	assert.ErrorIs(t, err, afile.ErrBusy)
	_, err = f.ReadAll(ctx, priority.Highest)
	assert.ErrorIs(t, err, afile.ErrBusy)

	gated.open()
	res := <-pending
	require.NoError(t, res.err)
	assert.Equal(t, "hello", res.data.String())

	// Back to idle.
	assert.Equal(t, " world", mustRead(t, f, 100).String())
}

func (suite *FileTestSuite) testCloseWhilePending(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("hello")})
	gated := newGatedBackend(env.Backend)
	f, err := afile.OpenWith(testContext(), gated, env.Path("a.txt"), priority.Default)
	require.NoError(t, err)

	pending := startRead(f, testContext(), 5)
	waitEntered(t, gated)

	require.NoError(t, f.Close())
	gated.open()

	res := <-pending
	assert.ErrorIs(t, res.err, afile.ErrClosed)
	assert.Equal(t, 0, res.data.Len())

	_, err = f.Read(testContext(), 1, priority.Default)
	assert.ErrorIs(t, err, afile.ErrClosed)
}

func (suite *FileTestSuite) testIndependentHandles(t *testing.T) {
	content := generateTestData(50_000)
	env := suite.NewEnv(t, map[string][]byte{"a.bin": content})

	const handles = 4
	results := make(chan []byte, handles)
	for i := 0; i < handles; i++ {
		f := mustOpen(t, env, "a.bin")
		go func() {
			var out []byte
			for {
				data, err := f.Read(testContext(), 7000, priority.Default)
				if err != nil || data.Len() == 0 {
					results <- out
					return
				}
				out = append(out, data.Bytes()...)
			}
		}()
	}

	for i := 0; i < handles; i++ {
		assert.Equal(t, content, <-results)
	}
}

func (suite *FileTestSuite) testCancelledBeforeStart(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("hello world")})
	f := mustOpen(t, env, "a.txt")
	mustRead(t, f, 2)

	ctx, cancel := context.WithCancel(testContext())
	cancel()

	data, err := f.Read(ctx, 5, priority.Default)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, data.Len())
	assertPosition(t, f, 2)

	_, err = f.ReadAll(ctx, priority.Default)
	assert.ErrorIs(t, err, context.Canceled)
	assertPosition(t, f, 2)

	_, err = f.Metadata(ctx, priority.Default)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, "llo world", mustReadAll(t, f).String())
}

func (suite *FileTestSuite) testAbandonPendingRead(t *testing.T) {
	content := generateTestData(20_000)
	env := suite.NewEnv(t, map[string][]byte{"a.bin": content})
	gated := newGatedBackend(env.Backend)
	f := mustOpen(t, Env{Backend: gated, Path: env.Path}, "a.bin")

	ctx, cancel := context.WithCancel(testContext())
	pending := startRead(f, ctx, 4096)
	waitEntered(t, gated)
	cancel()

	res := <-pending
	assert.ErrorIs(t, res.err, context.Canceled)
	assertPosition(t, f, 0)
	gated.open()

	// The same handle is still usable, and a fresh one sees intact data.
	assert.Equal(t, content, mustReadAll(t, f).Bytes())
	assert.Equal(t, content, mustReadAll(t, mustOpen(t, env, "a.bin")).Bytes())
}
