package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/flora-ssg/flora/internal/site"
)

const (
	// pollInterval is the guaranteed change-detection bound: any resource
	// modification is noticed within one poll.
	pollInterval = 500 * time.Millisecond
	// debounceDelay coalesces bursts of filesystem events (editors often
	// write several times in quick succession) into one early check.
	debounceDelay = 300 * time.Millisecond
)

// watcher rebuilds the site when project resources change. Change detection
// is a fingerprint over resource paths and modification times, checked on a
// fixed poll; filesystem notifications only trigger the check earlier.
type watcher struct {
	gen         *site.Generator
	opts        Options
	fingerprint string
}

func newWatcher(gen *site.Generator, opts Options) *watcher {
	return &watcher{gen: gen, opts: opts}
}

// prime records the current project fingerprint. Called before the initial
// build so edits made during the build still register as changes.
func (w *watcher) prime() {
	w.fingerprint = w.currentFingerprint()
}

func (w *watcher) run(ctx context.Context) {
	kick := make(chan struct{}, 1)
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Debug("Filesystem notifications unavailable, relying on polling", "error", err)
	} else {
		defer notify.Close()
		w.watchProjectDirs(notify)
		go w.forwardEvents(ctx, notify, kick)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-kick:
		}
		if w.check() && notify != nil {
			// A rebuild may have added or removed directories.
			w.watchProjectDirs(notify)
		}
	}
}

// check compares the project fingerprint against the last seen one and
// rebuilds on a difference. Returns whether a rebuild was attempted.
func (w *watcher) check() bool {
	current := w.currentFingerprint()
	if current == w.fingerprint {
		return false
	}
	// Record the new state before building: a failed build must not be
	// retried until something changes again.
	w.fingerprint = current

	buildID := uuid.NewString()
	slog.Info("Site files changed, rebuilding.", "build_id", buildID)
	err := w.gen.Build(site.BuildOptions{
		IncludeDrafts:     w.opts.IncludeDrafts,
		DisableImageBuild: w.opts.DisableImageRebuild,
	})
	if err != nil {
		slog.Warn("Failed to rebuild site.", "build_id", buildID, "error", messageOf(err))
	}
	return true
}

// currentFingerprint hashes the sorted resource paths with their
// modification times. Resources that vanish mid-listing simply drop out of
// the hash, which still reads as a change.
func (w *watcher) currentFingerprint() string {
	resources, err := w.gen.Layout().Resources(w.opts.IncludeDrafts)
	if err != nil {
		slog.Debug("Cannot list project resources", "error", messageOf(err))
		return w.fingerprint
	}
	digest := sha256.New()
	for _, resource := range resources {
		info, err := os.Stat(resource)
		if err != nil {
			continue
		}
		fmt.Fprintf(digest, "%s\n%d\n", resource, info.ModTime().UnixNano())
	}
	return hex.EncodeToString(digest.Sum(nil))
}

// watchProjectDirs (re)registers every project directory except the build
// directory with the notifier. Registration failures are harmless; the
// poll still catches everything.
func (w *watcher) watchProjectDirs(notify *fsnotify.Watcher) {
	for _, watched := range notify.WatchList() {
		notify.Remove(watched)
	}
	root := w.gen.Layout().Root()
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		// Generator-owned output, including build staging directories.
		if path != root && strings.HasPrefix(filepath.Base(path), "_site") {
			return filepath.SkipDir
		}
		if err := notify.Add(path); err != nil {
			slog.Debug("Cannot watch directory", "dir", path, "error", err)
		}
		return nil
	})
}

// forwardEvents debounces notifier events into single kicks.
func (w *watcher) forwardEvents(ctx context.Context, notify *fsnotify.Watcher, kick chan<- struct{}) {
	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-notify.Events:
			if !ok {
				return
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case kick <- struct{}{}:
				default:
				}
			})
		case _, ok := <-notify.Errors:
			if !ok {
				return
			}
		}
	}
}
