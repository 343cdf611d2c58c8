package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// siteHandler serves the build directory with two additions over a plain
// file server: extensionless URLs resolve to their .html artifact, and a
// 404.html page at the site root replaces the default not-found response.
type siteHandler struct {
	root  string
	files http.Handler

	notFoundOnce sync.Once
	notFoundPage []byte
}

func newSiteHandler(root string) *siteHandler {
	return &siteHandler{
		root:  root,
		files: http.FileServer(http.Dir(root)),
	}
}

func (h *siteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p := r.URL.Path; p != "/" && !strings.HasSuffix(p, "/") && path.Ext(p) == "" {
		candidate := filepath.Join(h.root, filepath.FromSlash(strings.TrimPrefix(p, "/"))+".html")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			r.URL.Path = p + ".html"
		}
	}
	h.files.ServeHTTP(&notFoundInterceptor{ResponseWriter: w, handler: h}, r)
}

// notFoundInterceptor swaps the file server's plain 404 body for the
// site's own 404 page when one exists.
type notFoundInterceptor struct {
	http.ResponseWriter
	handler     *siteHandler
	intercepted bool
}

func (w *notFoundInterceptor) WriteHeader(status int) {
	if status != http.StatusNotFound {
		w.ResponseWriter.WriteHeader(status)
		return
	}
	page := w.handler.loadNotFoundPage()
	if page == nil {
		w.ResponseWriter.WriteHeader(status)
		return
	}
	w.intercepted = true
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.ResponseWriter.WriteHeader(status)
	w.ResponseWriter.Write(page)
}

func (w *notFoundInterceptor) Write(b []byte) (int, error) {
	if w.intercepted {
		// The custom page was already written; swallow the default body.
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

// loadNotFoundPage reads the site's 404 page once per process.
func (h *siteHandler) loadNotFoundPage() []byte {
	h.notFoundOnce.Do(func() {
		page, err := os.ReadFile(filepath.Join(h.root, "404.html"))
		if err == nil {
			h.notFoundPage = page
		}
	})
	return h.notFoundPage
}
