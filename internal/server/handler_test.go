package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newSiteDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlerServesFiles(t *testing.T) {
	handler := newSiteHandler(newSiteDir(t, map[string]string{
		"index.html": "<h1>home</h1>",
		"css/x.css":  "body{}",
	}))

	rec := get(t, handler, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "home")

	rec = get(t, handler, "/css/x.css")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerExtensionlessResolvesHTML(t *testing.T) {
	handler := newSiteHandler(newSiteDir(t, map[string]string{
		"about.html": "<p>about</p>",
	}))

	rec := get(t, handler, "/about")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "about")
}

func TestHandlerPermalinkStyleAccess(t *testing.T) {
	handler := newSiteHandler(newSiteDir(t, map[string]string{
		"info/about-us.html":       "<p>flat</p>",
		"info/about-us/index.html": "<p>flat</p>",
	}))

	require.Equal(t, http.StatusOK, get(t, handler, "/info/about-us").Code)
	require.Equal(t, http.StatusOK, get(t, handler, "/info/about-us/").Code)
}

func TestHandlerCustom404(t *testing.T) {
	handler := newSiteHandler(newSiteDir(t, map[string]string{
		"404.html": "<h1>lost?</h1>",
	}))

	rec := get(t, handler, "/no/such/page")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "lost?")
}

func TestHandlerDefault404WithoutPage(t *testing.T) {
	handler := newSiteHandler(newSiteDir(t, map[string]string{
		"index.html": "home",
	}))

	rec := get(t, handler, "/no/such/page")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}
