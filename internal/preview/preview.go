// Package preview serves a built site locally and rebuilds it when content
// changes. It is a development convenience; deployment only ever consumes the
// output directory produced by a build.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sssg/internal/logfields"
)

const debounceDelay = 500 * time.Millisecond

// Server watches a content root and serves the output directory over HTTP.
type Server struct {
	ContentDir string
	OutputDir  string
	Port       int
	// Rebuild runs one full build. A failing rebuild keeps the previous
	// output serving and is logged, not fatal.
	Rebuild func() error
}

// Run performs an initial build, then serves and watches until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Rebuild(); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchRecursive(watcher, s.ContentDir); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.Port, err)
	}

	httpServer := &http.Server{
		Handler:           http.FileServer(http.Dir(s.OutputDir)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	slog.Info("Preview server started", logfields.Port(s.Port), logfields.Path(s.OutputDir))

	var debounce *time.Timer
	rebuilds := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		case err := <-errChan:
			return err
		case <-rebuilds:
			slog.Info("Rebuilding site after content change")
			if err := s.Rebuild(); err != nil {
				slog.Error("Rebuild failed, still serving previous output", logfields.Error(err))
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			relevant := event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
			if !relevant {
				continue
			}
			// Newly created directories need their own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			slog.Debug("Content change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case rebuilds <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// watchRecursive adds root and every subdirectory to the watcher; fsnotify
// watches are not recursive on their own.
func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}
