package pool

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/logger"
)

// StabilityWaiter waits for an external tool's result file to appear and
// stop growing before it is parsed. External tools report completion before
// their output is fully flushed, so both the existence and the size of the
// file are polled with a bounded retry count and linearly increasing
// backoff.
type StabilityWaiter struct {
	// MaxTries bounds each of the two phases (existence, constant size).
	MaxTries int
	// BaseDelay is the first backoff step; try n sleeps BaseDelay*(1+n).
	BaseDelay time.Duration

	log *zap.SugaredLogger

	// stat is swappable in tests.
	stat func(path string) (os.FileInfo, error)
}

// NewStabilityWaiter creates a waiter with the given bounds.
func NewStabilityWaiter(maxTries int, baseDelay time.Duration, log *zap.SugaredLogger) *StabilityWaiter {
	if log == nil {
		log = logger.Logger
	}
	return &StabilityWaiter{
		MaxTries:  maxTries,
		BaseDelay: baseDelay,
		log:       log,
		stat:      os.Stat,
	}
}

// WaitStable blocks until the file at path exists and keeps a constant size
// across consecutive samples, or the retry budget is exhausted. It returns
// an ExecutionError on failure and never panics; callers log and skip the
// chunk, they do not retry at the pool level.
func (w *StabilityWaiter) WaitStable(path string) error {
	if err := w.waitExists(path); err != nil {
		return err
	}
	return w.waitConstantSize(path)
}

func (w *StabilityWaiter) waitExists(path string) error {
	for try := 0; try < w.MaxTries; try++ {
		if _, err := w.stat(path); err == nil {
			return nil
		}
		w.log.Debugw("Result file not accessible yet",
			"path", path, "retries", try)
		time.Sleep(w.BaseDelay * time.Duration(1+try))
	}
	return errors.ExecutionErrorf(
		"unable to access result file after %d retries at %s", w.MaxTries, path)
}

func (w *StabilityWaiter) waitConstantSize(path string) error {
	info, err := w.stat(path)
	if err != nil {
		return errors.WrapExecution(err, "result file vanished during stability check")
	}
	oldSize := info.Size()
	time.Sleep(w.BaseDelay)

	for try := 0; try < w.MaxTries; try++ {
		info, err := w.stat(path)
		if err != nil {
			return errors.WrapExecution(err, "result file vanished during stability check")
		}
		if info.Size() == oldSize {
			return nil
		}
		w.log.Debugw("Result file size still changing",
			"path", path, "retries", try)
		oldSize = info.Size()
		time.Sleep(w.BaseDelay * time.Duration(1+try))
	}
	return errors.ExecutionErrorf(
		"unable to get result file at constant size after %d retries at %s", w.MaxTries, path)
}
