package server

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// Watch reloads the schema whenever its file changes. Only file sources can
// be watched. The parent directory is watched so editors that replace the
// file on save keep triggering reloads. The returned func stops the watcher.
func (s *Server) Watch(ctx context.Context) (func(), error) {
	if s.source == nil || s.source.Kind() != schema.SourceKindFile {
		return nil, errors.New("server: watch needs a file schema source")
	}
	target := filepath.Clean(s.source.Location())

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	var stopOnce sync.Once
	stop := func() { stopOnce.Do(cancel) }

	changes := make(chan struct{}, 1)
	go func() {
		defer fw.Close()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				s.logger.Warn("fsnotify error", zap.Error(err))
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-changes:
				if timer == nil {
					timer = time.NewTimer(s.debounce)
				} else {
					timer.Reset(s.debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				_ = s.Reload(ctx)
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			}
		}
	}()

	s.logger.Info("watching schema", zap.String("path", target))
	return stop, nil
}
