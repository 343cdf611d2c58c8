// Package server implements the local development server: it builds the
// site, serves the build directory over HTTP and optionally rebuilds when
// project files change.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flora-ssg/flora/internal/errors"
	"github.com/flora-ssg/flora/internal/site"
)

const shutdownTimeout = 5 * time.Second

// Options controls a serve invocation.
type Options struct {
	// IncludeDrafts publishes drafts alongside posts.
	IncludeDrafts bool
	// DisableImageRebuild skips the image pipeline on rebuilds triggered
	// by file changes. The initial build always includes images.
	DisableImageRebuild bool
	// AutoRebuild watches the project for changes and rebuilds.
	AutoRebuild bool
}

// Server serves a project's built site on localhost.
type Server struct {
	gen  *site.Generator
	port int
}

// New creates a server around an existing generator.
func New(gen *site.Generator, port int) *Server {
	return &Server{gen: gen, port: port}
}

// Serve builds the site and serves it until ctx is cancelled. The initial
// build must succeed; rebuild failures only log a warning and keep the
// last good site online.
func (s *Server) Serve(ctx context.Context, opts Options) error {
	var watch *watcher
	if opts.AutoRebuild {
		// Snapshot the project state before the initial build so changes
		// made while building are picked up by the first poll.
		watch = newWatcher(s.gen, opts)
		watch.prime()
	}

	if err := s.gen.Build(site.BuildOptions{IncludeDrafts: opts.IncludeDrafts}); err != nil {
		slog.Error(messageOf(err))
		return errors.General("Failed to build site; nothing to serve.")
	}

	// Bind up front so a taken port fails before anything is served.
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", s.port))
	if err != nil {
		return errors.General("Address `http://localhost:%d` is already in use; is another server running?", s.port)
	}

	httpServer := &http.Server{Handler: newSiteHandler(s.gen.Layout().BuildDir())}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	if watch != nil {
		go watch.run(ctx)
	}

	slog.Info(fmt.Sprintf("Serving site at http://localhost:%d.", s.port))

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return errors.Wrap(err, errors.KindGeneral, "Server failed.")
	}

	slog.Info("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.KindGeneral, "Server shutdown failed.")
	}
	return nil
}

func messageOf(err error) string {
	if siteErr, ok := err.(*errors.SiteError); ok {
		return siteErr.Message
	}
	return err.Error()
}
