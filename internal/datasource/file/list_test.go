package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attributes.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadList_Basic(t *testing.T) {
	t.Parallel()

	content := `
# activities to rank
farming
   # indented comment
forestry, fishing

   mining,,
`
	got, err := ReadList(context.Background(), NewLocal(writeTempFile(t, content)))
	require.NoError(t, err)
	assert.Equal(t, []string{"farming", "forestry", "fishing", "mining"}, got)
}

func TestReadList_EmptyAndCommentsOnly(t *testing.T) {
	t.Parallel()

	got, err := ReadList(context.Background(), NewLocal(writeTempFile(t, "# nothing\n\n")))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadList_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadList(context.Background(), NewLocal(filepath.Join(t.TempDir(), "nope.txt")))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
