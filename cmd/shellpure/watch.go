package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/shellpure/shellpure/pkgs/errors"
)

// debounce window for editors that write a file in several events
const watchSettle = 200 * time.Millisecond

// watch re-runs purification whenever the file changes. The parent
// directory is watched rather than the file itself, because editors
// that rename-and-replace would otherwise drop the watch.
func (a *app) watch(file, dialectName string, write bool) error {
	if file == "-" {
		return errors.New(errors.ErrWatch, "cannot watch stdin")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrWatch, "creating file watcher", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(file)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrap(errors.ErrWatch, "watching "+dir, err)
	}

	target, err := filepath.Abs(file)
	if err != nil {
		return errors.Wrap(errors.ErrWatch, "resolving "+file, err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	if err := a.purify(file, dialectName, write); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	var settle *time.Timer
	settleC := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || abs != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			a.log.Debug("change detected", zap.String("event", ev.Op.String()))
			if settle != nil {
				settle.Stop()
			}
			settle = time.AfterFunc(watchSettle, func() {
				select {
				case settleC <- struct{}{}:
				default:
				}
			})

		case <-settleC:
			// a purify --write rewrite fires its own event; re-running
			// on it is harmless because the pipeline is a fixpoint
			if err := a.purify(file, dialectName, write); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watch error", zap.Error(err))

		case <-interrupt:
			return nil
		}
	}
}
