package testing

import (
	"context"
	"testing"

	"github.com/marmos91/afile/pkg/backend"
)

// Env is a backend prepared with fixture files.
type Env struct {
	// Backend serves the fixtures.
	Backend backend.Backend

	// Path maps a fixture name to the path to open on Backend.
	Path func(name string) string
}

// FileTestSuite checks the File contract against a backend. It tests the
// handle semantics through the public afile API, so every backend is held
// to the same rules.
//
// Usage:
//
//	func TestPoolBackend(t *testing.T) {
//	    suite := &afiletesting.FileTestSuite{
//	        NewEnv: func(t *testing.T, files map[string][]byte) afiletesting.Env {
//	            dir := t.TempDir()
//	            // write files into dir ...
//	            return afiletesting.Env{Backend: pool.New(pool.Config{}), Path: ...}
//	        },
//	        SeekEnd: true,
//	    }
//	    suite.Run(t)
//	}
type FileTestSuite struct {
	// NewEnv creates a fresh backend holding files for each test.
	NewEnv func(t *testing.T, files map[string][]byte) Env

	// SeekEnd is true for backends that resolve End positions. Others must
	// reject them with ErrSeekUnsupported.
	SeekEnd bool
}

// Run executes all tests in the suite.
func (suite *FileTestSuite) Run(t *testing.T) {
	t.Run("Open", suite.RunOpenTests)
	t.Run("Read", suite.RunReadTests)
	t.Run("Seek", suite.RunSeekTests)
	t.Run("Exclusivity", suite.RunExclusivityTests)
	t.Run("Cancellation", suite.RunCancellationTests)
}

func testContext() context.Context {
	return context.Background()
}
