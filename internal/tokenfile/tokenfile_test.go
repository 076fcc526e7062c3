package tokenfile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlaine/spo-go/internal/sharepoint"
)

func testToken() *sharepoint.AccessToken {
	return sharepoint.NewAccessToken("bearer-value", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	require.NoError(t, Save(path, testToken()))

	tok, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, tok)

	assert.Equal(t, "bearer-value", tok.Value())
	assert.True(t, testToken().ExpiresOn().Equal(tok.ExpiresOn()))
}

func TestSave_CreatesDirectoryAndRestrictsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions")
	}

	path := filepath.Join(t.TempDir(), "nested", "dir", "token.json")

	require.NoError(t, Save(path, testToken()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePerms), info.Mode().Perm())
}

func TestSave_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	require.NoError(t, Save(path, testToken()))

	newer := sharepoint.NewAccessToken("newer-value", time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC))
	require.NoError(t, Save(path, newer))

	tok, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "newer-value", tok.Value())
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Save(filepath.Join(dir, "token.json"), testToken()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "token.json", entries[0].Name())
}

func TestLoad_MissingFile(t *testing.T) {
	tok, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestRemove_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	require.NoError(t, Save(path, testToken()))
	require.NoError(t, Remove(path))
	require.NoError(t, Remove(path))

	tok, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, tok)
}
