package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/present", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "42")
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	engine := newEngine()

	ok, err := engine.Exists(context.Background(), mustParse(t, server.URL+"/present"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.Exists(context.Background(), mustParse(t, server.URL+"/gone"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExists_UsesHeadMethod(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	}))
	defer server.Close()

	_, err := newEngine().Exists(context.Background(), mustParse(t, server.URL))
	require.NoError(t, err)
	assert.Equal(t, http.MethodHead, gotMethod)
}

func TestDownload_ToExplicitPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "file contents")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.txt")
	path, err := newEngine().Download(context.Background(), mustParse(t, server.URL+"/data"), dest, nil)
	require.NoError(t, err)
	assert.Equal(t, dest, path)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "file contents", string(content))
}

func TestDownload_IntoDirectoryUsesURLName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		io.WriteString(w, "binary")
	}))
	defer server.Close()

	dir := t.TempDir()
	path, err := newEngine().Download(context.Background(), mustParse(t, server.URL+"/files/archive.tar.gz"), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "archive.tar.gz"), path)
	assert.FileExists(t, path)
}

func TestDownload_IntoDirectoryPrefersContentDisposition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="export.csv"`)
		io.WriteString(w, "a,b\n1,2\n")
	}))
	defer server.Close()

	dir := t.TempDir()
	path, err := newEngine().Download(context.Background(), mustParse(t, server.URL+"/download"), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "export.csv"), path)
}

func TestDownload_IntoDirectorySniffsExtension(t *testing.T) {
	// PNG magic bytes; no Content-Disposition and no usable URI basename.
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(png)
	}))
	defer server.Close()

	dir := t.TempDir()
	path, err := newEngine().Download(context.Background(), mustParse(t, server.URL+"/"), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "download.png"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, png, content, "sniffed bytes are replayed into the file")
}

func TestDownload_ConcatenatesAllPages(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n int
		fmt.Sscanf(r.URL.Path, "/page/%d", &n)
		w.Header().Set("Content-Type", "text/plain")
		if n < 3 {
			w.Header().Set("Link", fmt.Sprintf(`<%s/page/%d>; rel="next"`, server.URL, n+1))
		}
		fmt.Fprintf(w, "part%d;", n)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "combined.txt")
	_, err := newEngine().Download(context.Background(), mustParse(t, server.URL+"/page/1"), dest, nil)
	require.NoError(t, err)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "part1;part2;part3;", string(content))
}

func TestDownload_NoPartialFileOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "out.bin")
	_, err := newEngine().Download(context.Background(), mustParse(t, server.URL), dest, nil)
	require.Error(t, err)

	assert.NoFileExists(t, dest)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no temporary file left behind")
}

func TestSync_SkipsExistingFile(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		io.WriteString(w, "fresh")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "cached.txt")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0644))

	path, err := newEngine().Sync(context.Background(), mustParse(t, server.URL), dest, nil)
	require.NoError(t, err)
	assert.Equal(t, dest, path)
	assert.Zero(t, hits, "no request issued for an existing file")

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "stale", string(content), "existing file untouched")
}

func TestSync_DownloadsMissingFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "fresh")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "new.txt")
	path, err := newEngine().Sync(context.Background(), mustParse(t, server.URL), dest, nil)
	require.NoError(t, err)
	assert.Equal(t, dest, path)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(content))
}

func TestDownload_SilentNegativeWritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "missing.txt")
	path, err := newEngine().Download(context.Background(), mustParse(t, server.URL), dest, &Options{
		Failure: http.StatusNotFound,
	})
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NoFileExists(t, dest)
}
