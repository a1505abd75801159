package testing

import (
	"testing"

	"github.com/marmos91/afile/pkg/afile"
	"github.com/marmos91/afile/pkg/priority"
	"github.com/stretchr/testify/assert"
)

// RunSeekTests covers cursor positioning.
func (suite *FileTestSuite) RunSeekTests(t *testing.T) {
	t.Run("StartThenCurrentZero", suite.testStartThenCurrentZero)
	t.Run("SeekThenRead", suite.testSeekThenRead)
	t.Run("SeekBeforeStart", suite.testSeekBeforeStart)
	t.Run("SeekEnd", suite.testSeekEnd)
}

func (suite *FileTestSuite) testStartThenCurrentZero(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.bin": generateTestData(64)})
	f := mustOpen(t, env, "a.bin")

	for _, n := range []uint64{0, 1, 17, 64, 1 << 40} {
		assert.Equal(t, n, mustSeek(t, f, afile.Start(n)))
		assert.Equal(t, n, mustSeek(t, f, afile.Current(0)))
	}
}

func (suite *FileTestSuite) testSeekThenRead(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("0123456789")})
	f := mustOpen(t, env, "a.txt")

	mustSeek(t, f, afile.Start(4))
	assert.Equal(t, "45", mustRead(t, f, 2).String())

	assert.Equal(t, uint64(3), mustSeek(t, f, afile.Current(-3)))
	assert.Equal(t, "3456", mustRead(t, f, 4).String())
	assertPosition(t, f, 7)
}

func (suite *FileTestSuite) testSeekBeforeStart(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("0123456789")})
	f := mustOpen(t, env, "a.txt")

	mustSeek(t, f, afile.Start(2))
	_, err := f.Seek(testContext(), afile.Current(-3), priority.Default)
	assert.ErrorIs(t, err, afile.ErrInvalidSeek)
	assertPosition(t, f, 2)
}

func (suite *FileTestSuite) testSeekEnd(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("0123456789")})
	f := mustOpen(t, env, "a.txt")
	mustSeek(t, f, afile.Start(1))

	if !suite.SeekEnd {
		_, err := f.Seek(testContext(), afile.End(0), priority.Default)
		assert.ErrorIs(t, err, afile.ErrSeekUnsupported)
		assertPosition(t, f, 1)
		return
	}

	assert.Equal(t, uint64(10), mustSeek(t, f, afile.End(0)))
	assert.Equal(t, uint64(7), mustSeek(t, f, afile.End(-3)))
	assert.Equal(t, "789", mustRead(t, f, 10).String())

	_, err := f.Seek(testContext(), afile.End(-11), priority.Default)
	assert.ErrorIs(t, err, afile.ErrInvalidSeek)
	assertPosition(t, f, 10)
}
