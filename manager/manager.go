// Package manager drives pipeline execution: it verifies batches against the
// processor registry, schedules components over their dependency DAG, and
// works through the persisted run queue either once or as a long-running
// server.
package manager

import (
	"context"
	"os"
	"time"

	"github.com/Fabian-RY/rsat-code/config"
	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/listener"
	"github.com/Fabian-RY/rsat-code/logger"
	"github.com/Fabian-RY/rsat-code/processor"
	"github.com/Fabian-RY/rsat-code/queue"
)

// Manager owns the run queue and the processor registry for one engine
// instance.
type Manager struct {
	cfg      *config.Config
	registry *processor.Registry
	queue    *queue.Queue
}

// New opens the persisted run queue and returns a manager ready to execute
// or serve.
func New(cfg *config.Config, reg *processor.Registry) (*Manager, error) {
	q, err := queue.Open(cfg.QueueFilePath())
	if err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, registry: reg, queue: q}, nil
}

// Queue exposes the run queue, for inspection commands.
func (m *Manager) Queue() *queue.Queue {
	return m.queue
}

// Submit appends a batch request to the run queue. The entry is durable
// before Submit returns.
func (m *Manager) Submit(definitionPath string, resume bool, verbosity int, workingDir string) error {
	if definitionPath == "" {
		return errors.ConfigErrorf("no pipeline definition file given")
	}
	return m.queue.Enqueue(queue.Entry{
		DefinitionPath: definitionPath,
		Resume:         resume,
		Verbosity:      verbosity,
		WorkingDir:     workingDir,
	})
}

// Execute runs one batch to completion: the request is enqueued, then the
// queue is drained. It returns true only if every pipeline of every drained
// entry reached FINISHED.
func (m *Manager) Execute(ctx context.Context, definitionPath string, resume bool, verbosity int, workingDir string) (bool, error) {
	if err := m.Submit(definitionPath, resume, verbosity, workingDir); err != nil {
		return false, err
	}
	return m.drainQueue(ctx)
}

// Server runs the engine as a daemon: a filesystem listener feeds the run
// queue, and the queue is drained in a poll loop until the context is
// cancelled. Batch failures are logged and never stop the server.
func (m *Manager) Server(ctx context.Context) error {
	if err := os.MkdirAll(m.cfg.ListeningDir, 0o755); err != nil {
		return errors.WrapConfig(err, "unable to create listening directory")
	}
	if err := os.MkdirAll(m.cfg.OutputDir(), 0o755); err != nil {
		return errors.WrapConfig(err, "unable to create output directory")
	}

	lst, err := listener.New(m.cfg.ListeningDir, func(path string) error {
		return m.Submit(path, false, logger.VerbosityInfo, "")
	})
	if err != nil {
		return err
	}
	if err := lst.Start(ctx); err != nil {
		return err
	}
	defer lst.Stop()

	logger.Logger.Infow("Server started",
		"listening_dir", m.cfg.ListeningDir,
		"queue_file", m.cfg.QueueFilePath(),
		"poll_seconds", m.cfg.ServerPollSeconds)

	ticker := time.NewTicker(time.Duration(m.cfg.ServerPollSeconds) * time.Second)
	defer ticker.Stop()

	for {
		if _, err := m.drainQueue(ctx); err != nil {
			logger.Logger.Errorw("Batch execution failed", "error", err)
		}
		select {
		case <-ctx.Done():
			logger.Logger.Infow("Server stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
