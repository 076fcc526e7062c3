package sharepoint

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T, handler http.HandlerFunc) *File {
	t.Helper()

	srv := httptest.NewServer(digestHandler(handler))
	t.Cleanup(srv.Close)

	return &File{
		issuer:            newTestClient(t, srv),
		UniqueID:          uuid.MustParse("77777777-7777-7777-7777-777777777777"),
		Name:              "report.docx",
		ServerRelativeURL: "/sites/dev/Shared Documents/report.docx",
		Length:            1024,
	}
}

func TestFile_Download(t *testing.T) {
	content := []byte{0xd0, 0xcf, 0x11, 0xe0}

	file := newTestFile(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_api/web/getfilebyserverrelativeurl('/sites/dev/Shared Documents/report.docx')/$value", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write(content)
	})

	got, err := file.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestFile_Upload(t *testing.T) {
	content := []byte("new contents")

	file := newTestFile(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "PUT", r.Header.Get("X-HTTP-Method"))
		assert.Equal(t, "digest-123", r.Header.Get("X-RequestDigest"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, content, body)

		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, file.Upload(context.Background(), content))
	assert.Equal(t, int64(len(content)), file.Length)
}

func TestFile_MoveTo(t *testing.T) {
	var gotPath string

	file := newTestFile(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	err := file.MoveTo(context.Background(), "/sites/dev/Shared Documents/archive/report-v2.docx", true)
	require.NoError(t, err)

	assert.Equal(t,
		"/_api/web/getfilebyserverrelativeurl('/sites/dev/Shared Documents/report.docx')/moveto(newurl='/sites/dev/Shared Documents/archive/report-v2.docx',flags=1)",
		gotPath)

	// The remote returns no body; local state reflects the new location.
	assert.Equal(t, "/sites/dev/Shared Documents/archive/report-v2.docx", file.ServerRelativeURL)
	assert.Equal(t, "report-v2.docx", file.Name)
}

func TestFile_MoveToWithoutOverwrite(t *testing.T) {
	var gotPath string

	file := newTestFile(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, file.MoveTo(context.Background(), "/sites/dev/x.docx", false))
	assert.Contains(t, gotPath, "flags=0")
}

func TestFile_CopyTo(t *testing.T) {
	var gotPath string

	file := newTestFile(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	copied, err := file.CopyTo(context.Background(), "/sites/dev/Shared Documents/copy.docx", false)
	require.NoError(t, err)

	assert.Equal(t,
		"/_api/web/getfilebyserverrelativeurl('/sites/dev/Shared Documents/report.docx')/copyto(strnewurl='/sites/dev/Shared Documents/copy.docx',boverwrite=false)",
		gotPath)

	// Source untouched; copy synthesized with the new location.
	assert.Equal(t, "/sites/dev/Shared Documents/report.docx", file.ServerRelativeURL)
	assert.Equal(t, "copy.docx", copied.Name)
	assert.Equal(t, "/sites/dev/Shared Documents/copy.docx", copied.ServerRelativeURL)
	assert.Equal(t, file.Length, copied.Length)
	assert.Equal(t, uuid.Nil, copied.UniqueID)
}

func TestFile_Delete(t *testing.T) {
	var gotVerb string

	file := newTestFile(t, func(w http.ResponseWriter, r *http.Request) {
		gotVerb = r.Header.Get("X-HTTP-Method")
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, file.Delete(context.Background()))
	assert.Equal(t, "DELETE", gotVerb)
}

func TestNewFile_LengthFromString(t *testing.T) {
	f, err := NewFile(nil, map[string]any{
		"Name":              "a.txt",
		"ServerRelativeUrl": "/sites/dev/a.txt",
		"Length":            "4096",
	}, nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), f.Length)
}
