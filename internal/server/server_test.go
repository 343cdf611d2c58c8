package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flora-ssg/flora/internal/errors"
	"github.com/flora-ssg/flora/internal/site"
)

func newProject(t *testing.T) (string, *site.Generator) {
	t.Helper()
	root := t.TempDir()
	writeProjectFile(t, root, "_templates/main.html", "{{ .page.content }}")
	writeProjectFile(t, root, "_pages/index.md", "---\ntemplate: main\n---\nHello.\n")
	gen, err := site.New(root)
	require.NoError(t, err)
	return root, gen
}

func writeProjectFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func TestServeFailedInitialBuildIsFatal(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "_pages/index.md", "---\ntemplate: missing\n---\nbody\n")
	gen, err := site.New(root)
	require.NoError(t, err)

	err = New(gen, freePort(t)).Serve(context.Background(), Options{})
	require.True(t, errors.IsKind(err, errors.KindGeneral))
	require.Contains(t, err.Error(), "Failed to build site; nothing to serve.")
}

func TestServePortConflict(t *testing.T) {
	_, gen := newProject(t)

	listener, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	defer listener.Close()
	port := listener.Addr().(*net.TCPAddr).Port

	err = New(gen, port).Serve(context.Background(), Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(),
		fmt.Sprintf("Address `http://localhost:%d` is already in use; is another server running?", port))
}

func TestServeAndShutdown(t *testing.T) {
	_, gen := newProject(t)
	port := freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(gen, port).Serve(ctx, Options{})
	}()

	var resp *http.Response
	var err error
	require.Eventually(t, func() bool {
		resp, err = http.Get(fmt.Sprintf("http://localhost:%d/", port))
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestWatcherDetectsChangeAndRebuilds(t *testing.T) {
	root, gen := newProject(t)
	require.NoError(t, gen.Build(site.BuildOptions{}))

	w := newWatcher(gen, Options{})
	w.prime()
	require.False(t, w.check())

	// mtimes can have coarse granularity; force a distinct one.
	future := time.Now().Add(2 * time.Second)
	pagePath := filepath.Join(root, "_pages", "index.md")
	require.NoError(t, os.WriteFile(pagePath, []byte("---\ntemplate: main\n---\nChanged.\n"), 0o644))
	require.NoError(t, os.Chtimes(pagePath, future, future))

	require.True(t, w.check())
	html, err := os.ReadFile(filepath.Join(root, "_site", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(html), "Changed.")

	// No change, no rebuild.
	require.False(t, w.check())
}

func TestWatcherFailedRebuildIsNonFatal(t *testing.T) {
	root, gen := newProject(t)
	require.NoError(t, gen.Build(site.BuildOptions{}))

	w := newWatcher(gen, Options{})
	w.prime()

	future := time.Now().Add(2 * time.Second)
	badPage := filepath.Join(root, "_pages", "broken.md")
	writeProjectFile(t, root, "_pages/broken.md", "---\ntemplate: missing\n---\nbody\n")
	require.NoError(t, os.Chtimes(badPage, future, future))

	// The rebuild fails but check must not panic or error out; the next
	// check without changes stays quiet instead of retrying.
	require.True(t, w.check())
	require.False(t, w.check())

	// The previously built site is still in place to be served.
	require.FileExists(t, filepath.Join(root, "_site", "index.html"))
}
