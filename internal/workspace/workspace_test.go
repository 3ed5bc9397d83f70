package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type holder struct{ path string }

func (h *holder) WorkspacePath() string     { return h.path }
func (h *holder) SetWorkspacePath(p string) { h.path = p }

func TestGetOrCreateIsIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing", "root")
	m := &Manager{Root: root}
	h := &holder{}

	first, err := m.GetOrCreate(h)
	require.NoError(t, err)
	assert.DirExists(t, first)
	assert.True(t, IsWorkspaceName(filepath.Base(first)))
	assert.Equal(t, root, filepath.Dir(first))

	second, err := m.GetOrCreate(h)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetOrCreateSeparateSessions(t *testing.T) {
	m := &Manager{Root: t.TempDir()}
	a, err := m.GetOrCreate(&holder{})
	require.NoError(t, err)
	b, err := m.GetOrCreate(&holder{})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGetOrCreateRecreatesVanishedDir(t *testing.T) {
	m := &Manager{Root: t.TempDir()}
	h := &holder{}
	dir, err := m.GetOrCreate(h)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	again, err := m.GetOrCreate(h)
	require.NoError(t, err)
	assert.Equal(t, dir, again)
	assert.DirExists(t, again)
}

func TestGetOrCreatePropagatesFailure(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	m := &Manager{Root: blocker}
	_, err := m.GetOrCreate(&holder{})
	require.Error(t, err)
}

func TestGetOrCreateWithoutRoot(t *testing.T) {
	_, err := (&Manager{}).GetOrCreate(&holder{})
	require.ErrorIs(t, err, ErrNoRoot)
}

func TestRemoveDeletesOwnWorkspace(t *testing.T) {
	m := &Manager{Root: t.TempDir()}
	h := &holder{}
	dir, err := m.GetOrCreate(h)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.docx"), []byte("x"), 0o600))

	require.NoError(t, m.Remove(h))
	assert.NoDirExists(t, dir)
	assert.Empty(t, h.WorkspacePath())
}

func TestRemoveRefusesForeignPath(t *testing.T) {
	m := &Manager{Root: t.TempDir()}
	outside := t.TempDir()
	h := &holder{path: outside}

	require.Error(t, m.Remove(h))
	assert.DirExists(t, outside)
}

func TestStoreFileReusesIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	path, reused, err := StoreFile(dir, "Dev_Ana.docx", []byte("one"))
	require.NoError(t, err)
	assert.False(t, reused)

	again, reused, err := StoreFile(dir, "Dev_Ana.docx", []byte("one"))
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, path, again)

	_, reused, err = StoreFile(dir, "Dev_Ana.docx", []byte("two"))
	require.NoError(t, err)
	assert.False(t, reused)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestStoreFileRejectsTraversal(t *testing.T) {
	_, _, err := StoreFile(t.TempDir(), "../escape.docx", []byte("x"))
	require.Error(t, err)
}
