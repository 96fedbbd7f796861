package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileName(year int) string {
	return fmt.Sprintf("enrollment_%d.xlsx", year)
}

func TestDownloader_FetchAll(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		fmt.Fprintf(w, "workbook for %s", r.URL.Path)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := NewDownloader(nil, 100)
	sources := []Source{
		{Year: 2019, URL: srv.URL + "/2019"},
		{Year: 2022, URL: srv.URL + "/2022"},
	}

	require.NoError(t, d.FetchAll(context.Background(), dir, sources, fileName, false))
	assert.EqualValues(t, 2, atomic.LoadInt64(&hits))

	for _, src := range sources {
		body, err := os.ReadFile(filepath.Join(dir, fileName(src.Year)))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("workbook for /%d", src.Year), string(body))
	}

	// Second run skips files already in place.
	require.NoError(t, d.FetchAll(context.Background(), dir, sources, fileName, false))
	assert.EqualValues(t, 2, atomic.LoadInt64(&hits))

	// Force refetches.
	require.NoError(t, d.FetchAll(context.Background(), dir, sources, fileName, true))
	assert.EqualValues(t, 4, atomic.LoadInt64(&hits))
}

func TestDownloader_FetchAll_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d := NewDownloader(nil, 100)
	err := d.FetchAll(context.Background(), t.TempDir(),
		[]Source{{Year: 2019, URL: srv.URL + "/missing"}}, fileName, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDownloader_FetchAll_NoPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := NewDownloader(nil, 100)
	err := d.FetchAll(context.Background(), dir,
		[]Source{{Year: 2022, URL: srv.URL}}, fileName, false)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, fileName(2022)))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloader_FetchAll_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDownloader(nil, 100)
	err := d.FetchAll(ctx, t.TempDir(), []Source{{Year: 2019, URL: srv.URL}}, fileName, false)
	require.Error(t, err)
}
