package manager

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Fabian-RY/rsat-code/config"
	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/logger"
	"github.com/Fabian-RY/rsat-code/pipeline"
	"github.com/Fabian-RY/rsat-code/processor"
	"github.com/Fabian-RY/rsat-code/queue"
)

// drainQueue works through the run queue front to back. A failing entry is
// logged and removed like any other; it never blocks the entries behind it.
// The returned bool is true only if every pipeline of every entry reached
// FINISHED. The returned error is the first batch-level error encountered.
func (m *Manager) drainQueue(ctx context.Context) (bool, error) {
	allFinished := true
	var firstErr error

	for {
		if ctx.Err() != nil {
			return allFinished, firstErr
		}
		entry, ok := m.queue.Front()
		if !ok {
			return allFinished, firstErr
		}

		finished, err := m.runBatch(ctx, entry)
		if err != nil {
			logger.Logger.Errorw("Batch aborted",
				"definition", entry.DefinitionPath, "error", err)
			allFinished = false
			if firstErr == nil {
				firstErr = err
			}
		} else if !finished {
			allFinished = false
		}

		if _, _, err := m.queue.DequeueFront(); err != nil {
			logger.Logger.Warnw("Unable to persist queue after batch",
				"definition", entry.DefinitionPath, "error", err)
		}
	}
}

// runBatch parses and verifies one queue entry, then runs each of its
// pipelines independently. Parse and verification failures abort the batch
// before any component runs.
func (m *Manager) runBatch(ctx context.Context, entry queue.Entry) (bool, error) {
	batchID := uuid.New().String()

	baseDir := m.cfg.BaseOutputDir
	if entry.WorkingDir != "" {
		baseDir = entry.WorkingDir
	}
	outputDir := filepath.Join(baseDir, config.OutputDirName)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return false, errors.WrapExecution(err, "unable to create batch output directory")
	}

	logger.Logger.Infow("Starting batch",
		"batch", batchID,
		"definition", entry.DefinitionPath,
		"output", outputDir,
		"resume", entry.Resume)

	defs, err := pipeline.ParseDefinition(entry.DefinitionPath)
	if err != nil {
		return false, err
	}
	resolved, err := Verify(defs, m.registry)
	if err != nil {
		return false, err
	}

	prog := NewProgression(outputDir, defs)
	allFinished := true
	for _, def := range defs {
		if !m.runPipeline(ctx, def, resolved, prog, outputDir, entry) {
			allFinished = false
		}
	}

	logger.Logger.Infow("Batch done", "batch", batchID, "finished", allFinished)
	return allFinished, nil
}

// runPipeline schedules one pipeline over its DAG. Scheduling keeps a
// candidate list seeded with the entry components; each executed component is
// replaced by its not-yet-scheduled successors at the front of the list, so
// execution runs depth-first along a branch before switching to siblings.
// A component failure removes it from the list without scheduling its
// successors; independent branches keep running. When candidates remain but
// none can start, the pipeline is FAILED.
func (m *Manager) runPipeline(ctx context.Context, def *pipeline.Definition, resolved Resolved,
	prog *Progression, outputDir string, entry queue.Entry) bool {

	pipelineDir := filepath.Join(outputDir, def.Name)
	if !entry.Resume {
		if err := os.RemoveAll(pipelineDir); err != nil {
			logger.Logger.Errorw("Unable to clear pipeline output",
				"pipeline", def.Name, "error", err)
			prog.SetStatus(def.Name, StatusFailed)
			return false
		}
	}
	if err := os.MkdirAll(pipelineDir, 0o755); err != nil {
		logger.Logger.Errorw("Unable to create pipeline output",
			"pipeline", def.Name, "error", err)
		prog.SetStatus(def.Name, StatusFailed)
		return false
	}

	plog, err := logger.OpenPipelineLog(pipelineDir, entry.Resume, entry.Verbosity)
	if err != nil {
		logger.Logger.Errorw("Unable to open pipeline log",
			"pipeline", def.Name, "error", err)
		prog.SetStatus(def.Name, StatusFailed)
		return false
	}
	defer plog.Close()
	log := plog.Logger()

	for _, comp := range def.Components {
		comp.ResetCompletion()
	}
	prog.SetStatus(def.Name, StatusRunning)
	log.Infow("Starting pipeline", "pipeline", def.Name, "resume", entry.Resume)

	payloads := make(map[*pipeline.Component]processor.Payload)
	scheduled := make(map[*pipeline.Component]bool, len(def.Components))
	candidates := make([]*pipeline.Component, len(def.Entries))
	copy(candidates, def.Entries)
	for _, comp := range candidates {
		scheduled[comp] = true
	}

	for len(candidates) > 0 {
		if err := ctx.Err(); err != nil {
			log.Errorw("Pipeline interrupted", "pipeline", def.Name, "error", err)
			prog.SetStatus(def.Name, StatusFailed)
			return false
		}

		idx := -1
		for i, comp := range candidates {
			if comp.CanStart() {
				idx = i
				break
			}
		}
		if idx < 0 {
			err := errors.ExecutionErrorf(
				"no more component can be executed in pipeline %q", def.Name)
			log.Errorw("Pipeline stalled", "pipeline", def.Name, "error", err)
			prog.SetStatus(def.Name, StatusFailed)
			return false
		}

		comp := candidates[idx]
		candidates = append(candidates[:idx], candidates[idx+1:]...)

		if !m.runComponent(ctx, def, comp, resolved[comp], pipelineDir, entry, plog, payloads, prog) {
			continue
		}

		var fresh []*pipeline.Component
		for _, next := range comp.Next {
			if !scheduled[next] {
				scheduled[next] = true
				fresh = append(fresh, next)
			}
		}
		candidates = append(fresh, candidates...)
	}

	if plog.HasErrors() {
		log.Warnw("Pipeline finished with errors",
			"pipeline", def.Name, "errors", plog.ErrorCount())
		prog.SetStatus(def.Name, StatusFinishedWithErrors)
		return false
	}
	log.Infow("Pipeline finished", "pipeline", def.Name)
	prog.SetStatus(def.Name, StatusFinished)
	return true
}

// runComponent executes one component in its dedicated output directory and
// reports whether it completed. Inputs are cloned before crossing the
// component boundary, so processors may mutate them freely.
func (m *Manager) runComponent(ctx context.Context, def *pipeline.Definition, comp *pipeline.Component,
	proc processor.Processor, pipelineDir string, entry queue.Entry,
	plog *logger.PipelineLog, payloads map[*pipeline.Component]processor.Payload,
	prog *Progression) bool {

	log := plog.Logger()
	compDir := filepath.Join(pipelineDir, comp.Prefix())
	if !entry.Resume {
		if err := os.RemoveAll(compDir); err != nil {
			log.Errorw("Unable to clear component output",
				"component", comp.Prefix(), "error", err)
			return false
		}
	}
	if err := os.MkdirAll(compDir, 0o755); err != nil {
		log.Errorw("Unable to create component output",
			"component", comp.Prefix(), "error", err)
		return false
	}

	var inputs []processor.Payload
	for _, prev := range comp.Previous {
		if p := payloads[prev]; p != nil {
			inputs = append(inputs, p)
		}
	}

	inv := &processor.Invocation{
		Component: comp.Prefix(),
		OutputDir: compDir,
		Resume:    entry.Resume,
		Params:    comp.Params.Clone(),
		Inputs:    processor.ClonePayloads(inputs),
		Log:       log,
	}

	log.Infow("Starting component",
		"component", comp.Prefix(), "processor", proc.Name(), "resume", entry.Resume)

	out, err := proc.Execute(ctx, inv)
	if err != nil {
		log.Errorw("Aborting component execution",
			"component", comp.Prefix(), "error", err)
		return false
	}

	if out != nil {
		payloads[comp] = out
	}
	comp.MarkCompleted()
	prog.SetTaskProgression(def.Name, comp.Prefix(), 1)
	log.Infow("Component finished", "component", comp.Prefix())
	return true
}
