// Package listener watches a drop directory for pipeline definition files.
//
// Any *.xml file appearing in the directory is submitted to the run queue
// and then moved into a treated/ subdirectory, so a file is never submitted
// twice. Submissions go through a rate limiter: a burst of dropped files is
// absorbed without flooding the queue file with rewrites.
package listener

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/logger"
)

// TreatedDirName is the subdirectory where submitted definition files are
// parked.
const TreatedDirName = "treated"

// SubmitFunc enqueues one definition file for execution.
type SubmitFunc func(definitionPath string) error

// Listener watches one directory and feeds discovered definition files to a
// submit function.
type Listener struct {
	dir     string
	treated string
	submit  SubmitFunc
	watcher *fsnotify.Watcher
	// limiter bounds queue submissions to 2 per second with a burst of 5.
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a listener for dir. The directory and its treated/
// subdirectory are created if missing.
func New(dir string, submit SubmitFunc) (*Listener, error) {
	treated := filepath.Join(dir, TreatedDirName)
	if err := os.MkdirAll(treated, 0o755); err != nil {
		return nil, errors.WrapConfig(err, "unable to create treated directory")
	}
	return &Listener{
		dir:     dir,
		treated: treated,
		submit:  submit,
		limiter: rate.NewLimiter(2, 5),
	}, nil
}

// Start begins watching. Files already present in the directory are
// submitted first, so nothing dropped while the server was down is lost.
// The listener stops when Stop is called or ctx is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapExecution(err, "unable to create filesystem watcher")
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return errors.WrapExecution(err, "unable to watch listening directory")
	}
	l.watcher = watcher
	l.ctx, l.cancel = context.WithCancel(ctx)

	l.scanExisting()

	l.wg.Add(1)
	go l.run()

	logger.Logger.Infow("Listener started", "dir", l.dir)
	return nil
}

// Stop shuts the listener down and waits for the event loop to exit.
func (l *Listener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	l.wg.Wait()
	l.watcher.Close()
	logger.Logger.Infow("Listener stopped", "dir", l.dir)
}

func (l *Listener) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename) {
				l.handleFile(event.Name)
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			logger.Logger.Warnw("Watcher error", "dir", l.dir, "error", err)
		}
	}
}

// scanExisting submits definition files that were dropped before the watch
// was in place.
func (l *Listener) scanExisting() {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		logger.Logger.Warnw("Unable to scan listening directory",
			"dir", l.dir, "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		l.handleFile(filepath.Join(l.dir, entry.Name()))
	}
}

// handleFile submits one candidate file and parks it under treated/.
// Non-definition files are ignored in place.
func (l *Listener) handleFile(path string) {
	if !strings.EqualFold(filepath.Ext(path), ".xml") {
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}

	if err := l.limiter.Wait(l.ctx); err != nil {
		return
	}

	target := filepath.Join(l.treated, filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		logger.Logger.Warnw("Unable to move definition file",
			"file", path, "error", err)
		return
	}

	if err := l.submit(target); err != nil {
		logger.Logger.Errorw("Unable to submit definition file",
			"file", target, "error", err)
		return
	}
	logger.Logger.Infow("Definition file queued", "file", target)
}
