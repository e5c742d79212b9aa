package logger

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// PipelineLogFileName is the name of the per-pipeline log file written into
// each pipeline output directory.
const PipelineLogFileName = "pipeline.log"

// PipelineLog is a file-backed logger scoped to one pipeline run. It records
// every component start and every error into <dir>/pipeline.log, and tracks
// whether any error-level record was written during this run. That flag is
// what downgrades a structurally successful run from FINISHED to
// FINISHED_WITH_ERRORS.
type PipelineLog struct {
	file      *os.File
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
	errCount  atomic.Int64
}

// OpenPipelineLog opens the pipeline log inside dir. In resume mode the
// existing file is appended to; otherwise it is truncated. The error counter
// always starts at zero: only errors from the current run count.
func OpenPipelineLog(dir string, resume bool, verbosity int) (*PipelineLog, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	path := filepath.Join(dir, PipelineLogFileName)
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}

	pl := &PipelineLog{file: file}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(file),
		VerbosityToLevel(verbosity),
	)

	pl.zapLogger = zap.New(core, zap.Hooks(func(entry zapcore.Entry) error {
		if entry.Level >= zapcore.ErrorLevel {
			pl.errCount.Add(1)
		}
		return nil
	}))
	pl.sugar = pl.zapLogger.Sugar()

	return pl, nil
}

// Logger returns the sugared logger writing into the pipeline log file.
func (pl *PipelineLog) Logger() *zap.SugaredLogger {
	return pl.sugar
}

// HasErrors reports whether any error-level record was logged in this run.
func (pl *PipelineLog) HasErrors() bool {
	return pl.errCount.Load() > 0
}

// ErrorCount returns the number of error-level records logged in this run.
func (pl *PipelineLog) ErrorCount() int64 {
	return pl.errCount.Load()
}

// Close flushes and closes the underlying log file.
func (pl *PipelineLog) Close() error {
	if err := pl.zapLogger.Sync(); err != nil {
		// Sync on a regular file can fail on some platforms; the close below
		// still flushes buffered writes.
		_ = err
	}
	return pl.file.Close()
}
