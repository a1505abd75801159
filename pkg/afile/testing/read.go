package testing

import (
	"bytes"
	"testing"

	"github.com/marmos91/afile/pkg/afile"
	"github.com/marmos91/afile/pkg/priority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReadTests covers Read and ReadAll.
func (suite *FileTestSuite) RunReadTests(t *testing.T) {
	t.Run("ReadAdvancesCursor", suite.testReadAdvancesCursor)
	t.Run("ReadAtEOF", suite.testReadAtEOF)
	t.Run("ReadZeroLength", suite.testReadZeroLength)
	t.Run("ReadNegativeLength", suite.testReadNegativeLength)
	t.Run("ReadAllEmpty", suite.testReadAllEmpty)
	t.Run("ReadAllFromCursor", suite.testReadAllFromCursor)
	t.Run("ReadLoopEqualsReadAll", suite.testReadLoopEqualsReadAll)
	t.Run("ReadLoopZeroFilled", suite.testReadLoopZeroFilled)
}

func (suite *FileTestSuite) testReadAdvancesCursor(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("hello world")})
	f := mustOpen(t, env, "a.txt")

	data := mustRead(t, f, 5)
	assert.Equal(t, "hello", data.String())
	assertPosition(t, f, 5)

	data = mustRead(t, f, 100)
	assert.Equal(t, " world", data.String())
	assertPosition(t, f, 11)
}

func (suite *FileTestSuite) testReadAtEOF(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("abc")})
	f := mustOpen(t, env, "a.txt")

	mustRead(t, f, 3)
	data := mustRead(t, f, 10)
	assert.Equal(t, 0, data.Len())
	assertPosition(t, f, 3)

	mustSeek(t, f, afile.Start(100))
	data = mustRead(t, f, 10)
	assert.Equal(t, 0, data.Len(), "reading past the end yields no data")
	assertPosition(t, f, 100)
}

func (suite *FileTestSuite) testReadZeroLength(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("abc")})
	f := mustOpen(t, env, "a.txt")

	data := mustRead(t, f, 0)
	assert.Equal(t, 0, data.Len())
	assertPosition(t, f, 0)
}

func (suite *FileTestSuite) testReadNegativeLength(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("abc")})
	f := mustOpen(t, env, "a.txt")

	_, err := f.Read(testContext(), -1, priority.Default)
	assert.ErrorIs(t, err, afile.ErrInvalidSize)
	assertPosition(t, f, 0)
}

func (suite *FileTestSuite) testReadAllEmpty(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"empty": {}})
	f := mustOpen(t, env, "empty")

	data := mustReadAll(t, f)
	assert.Equal(t, 0, data.Len())
	assertPosition(t, f, 0)
}

func (suite *FileTestSuite) testReadAllFromCursor(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("hello world")})
	f := mustOpen(t, env, "a.txt")

	mustRead(t, f, 6)
	data := mustReadAll(t, f)
	assert.Equal(t, "world", data.String())
	assertPosition(t, f, 11)

	data = mustReadAll(t, f)
	assert.Equal(t, 0, data.Len(), "second ReadAll starts at end-of-stream")
}

func (suite *FileTestSuite) testReadLoopEqualsReadAll(t *testing.T) {
	content := generateTestData(3*afile.ReadAllChunkSize + 123)
	env := suite.NewEnv(t, map[string][]byte{"pattern.bin": content})

	for _, n := range []int{1000, 4096, afile.ReadAllChunkSize} {
		looped := readLoop(t, mustOpen(t, env, "pattern.bin"), n)
		whole := mustReadAll(t, mustOpen(t, env, "pattern.bin"))

		require.True(t, bytes.Equal(looped, whole.Bytes()), "read(%d) loop differs from ReadAll", n)
		assert.Equal(t, content, whole.Bytes())
	}
}

func (suite *FileTestSuite) testReadLoopZeroFilled(t *testing.T) {
	content := make([]byte, 10_000)
	env := suite.NewEnv(t, map[string][]byte{"zeros.bin": content})

	looped := readLoop(t, mustOpen(t, env, "zeros.bin"), 333)
	whole := mustReadAll(t, mustOpen(t, env, "zeros.bin"))

	assert.Equal(t, whole.Bytes(), looped)
	assert.Len(t, looped, len(content))
}

// readLoop reads n bytes at a time until a zero-length read.
func readLoop(t *testing.T, f *afile.File, n int) []byte {
	t.Helper()
	var out []byte
	for {
		data := mustRead(t, f, n)
		if data.Len() == 0 {
			return out
		}
		out = append(out, data.Bytes()...)
	}
}
