package testing

import (
	"testing"

	"github.com/marmos91/afile/pkg/afile"
	"github.com/marmos91/afile/pkg/priority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunOpenTests covers opening, existence, metadata and closing.
func (suite *FileTestSuite) RunOpenTests(t *testing.T) {
	t.Run("OpenStartsAtZero", suite.testOpenStartsAtZero)
	t.Run("OpenNotFound", suite.testOpenNotFound)
	t.Run("ExistsAgreesWithOpen", suite.testExistsAgreesWithOpen)
	t.Run("Metadata", suite.testMetadata)
	t.Run("CloseSemantics", suite.testCloseSemantics)
	t.Run("DataOutlivesHandle", suite.testDataOutlivesHandle)
}

func (suite *FileTestSuite) testOpenStartsAtZero(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("abc")})
	f := mustOpen(t, env, "a.txt")

	assertPosition(t, f, 0)
	assert.NotEmpty(t, f.ID())
	assert.Equal(t, env.Path("a.txt"), f.Path())
}

func (suite *FileTestSuite) testOpenNotFound(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("abc")})

	f, err := afile.OpenWith(testContext(), env.Backend, env.Path("missing.txt"), priority.Default)
	assert.Nil(t, f)
	assert.ErrorIs(t, err, afile.ErrNotFound)
}

func (suite *FileTestSuite) testExistsAgreesWithOpen(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("abc")})
	ctx := testContext()

	mustOpen(t, env, "a.txt")
	assert.True(t, env.Backend.Exists(ctx, env.Path("a.txt"), priority.Highest))
	assert.False(t, env.Backend.Exists(ctx, env.Path("definitely-absent.txt"), priority.Background))
}

func (suite *FileTestSuite) testMetadata(t *testing.T) {
	content := generateTestData(1000)
	env := suite.NewEnv(t, map[string][]byte{"a.bin": content})
	f := mustOpen(t, env, "a.bin")

	mustRead(t, f, 10)

	md, err := f.Metadata(testContext(), priority.UserInitiated)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(content)), md.Len())
	assert.False(t, md.IsDir())
	assertPosition(t, f, 10)
}

func (suite *FileTestSuite) testCloseSemantics(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("abc")})
	f, err := afile.OpenWith(testContext(), env.Backend, env.Path("a.txt"), priority.Default)
	require.NoError(t, err)

	require.NoError(t, f.Close())
	assert.ErrorIs(t, f.Close(), afile.ErrClosed)

	ctx := testContext()
	_, err = f.Read(ctx, 1, priority.Default)
	assert.ErrorIs(t, err, afile.ErrClosed)
	_, err = f.Seek(ctx, afile.Start(0), priority.Default)
	assert.ErrorIs(t, err, afile.ErrClosed)
	_, err = f.Metadata(ctx, priority.Default)
	assert.ErrorIs(t, err, afile.ErrClosed)
	_, err = f.ReadAll(ctx, priority.Default)
	assert.ErrorIs(t, err, afile.ErrClosed)
	assert.ErrorIs(t, err, afile.ErrOther)
}

func (suite *FileTestSuite) testDataOutlivesHandle(t *testing.T) {
	env := suite.NewEnv(t, map[string][]byte{"a.txt": []byte("persistent")})
	f, err := afile.OpenWith(testContext(), env.Backend, env.Path("a.txt"), priority.Default)
	require.NoError(t, err)

	data := mustReadAll(t, f)
	require.NoError(t, f.Close())

	assert.Equal(t, "persistent", string(data.Bytes()))
}
