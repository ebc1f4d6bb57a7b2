package storage

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), 1024*1024)
	require.NoError(t, err)
	return store
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, dir, store.DataDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewStoreEmptyDir(t *testing.T) {
	_, err := NewStore("", 0)
	assert.Error(t, err)
}

func TestSavePDF(t *testing.T) {
	store := newTestStore(t)

	path, err := store.SavePDF(bytes.NewReader([]byte("%PDF-1.4\nminimal")))
	require.NoError(t, err)

	assert.Equal(t, store.DataDir(), filepath.Dir(path))
	assert.Equal(t, ".pdf", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestSavePDFRejectsNonPDF(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SavePDF(strings.NewReader("<html>not a pdf</html>"))
	assert.Error(t, err)
}

func TestSavePDFRejectsOversized(t *testing.T) {
	store, err := NewStore(t.TempDir(), 8)
	require.NoError(t, err)

	_, err = store.SavePDF(strings.NewReader("%PDF-1.4 way past the limit"))
	assert.Error(t, err)
}

func TestSaveNamed(t *testing.T) {
	store := newTestStore(t)

	path, err := store.SaveNamed("Product Sheet (NO).pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.DataDir(), "Product_Sheet__NO_.pdf"), path)
}

func TestFetchLocalFile(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(store.DataDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 content"), 0o600))

	data, err := store.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 content"), data)
}

func TestFetchMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Fetch(context.Background(), filepath.Join(store.DataDir(), "nope.pdf"))

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestFetchOversizedFile(t *testing.T) {
	store, err := NewStore(t.TempDir(), 4)
	require.NoError(t, err)
	path := filepath.Join(store.DataDir(), "big.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 too big"), 0o600))

	_, err = store.Fetch(context.Background(), path)

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestFetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 remote"))
	}))
	defer srv.Close()

	store := newTestStore(t)
	data, err := store.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 remote"), data)
}

func TestFetchURLBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	store := newTestStore(t)
	_, err := store.Fetch(context.Background(), srv.URL)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestFetchURLNotPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>an error page</html>"))
	}))
	defer srv.Close()

	store := newTestStore(t)
	_, err := store.Fetch(context.Background(), srv.URL)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain.pdf", "plain.pdf"},
		{"../../etc/passwd", "passwd"},
		{"Product Sheet (NO).pdf", "Product_Sheet__NO_.pdf"},
		{"æøå.pdf", "___.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeName(tt.in), "input %q", tt.in)
	}

	// degenerate names fall back to a generated one
	assert.NotEmpty(t, SafeName(""))
	assert.NotEqual(t, ".", SafeName("."))
}
