package manager

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Fabian-RY/rsat-code/logger"
	"github.com/Fabian-RY/rsat-code/pipeline"
)

// Status is the lifecycle state of one pipeline in one run. The three
// finished states are terminal.
type Status string

const (
	StatusNotStarted         Status = "NOT_STARTED"
	StatusRunning            Status = "RUNNING"
	StatusFinished           Status = "FINISHED"
	StatusFinishedWithErrors Status = "FINISHED_WITH_ERRORS"
	StatusFailed             Status = "FAILED"
)

// ProgressionFileName is the machine-readable run status file written into
// the batch output directory after every transition.
const ProgressionFileName = "progression.xml"

// Progression tracks per-pipeline status and per-component task fractions
// for one batch, mirroring the state into progression.xml so external tools
// can watch a run.
type Progression struct {
	mu        sync.Mutex
	outputDir string
	order     []string
	pipelines map[string]*pipelineProgression
}

type pipelineProgression struct {
	status    Status
	taskOrder []string
	tasks     map[string]float64
}

// NewProgression initializes tracking for every pipeline of a batch, all at
// NOT_STARTED, and writes the initial progression file.
func NewProgression(outputDir string, defs []*pipeline.Definition) *Progression {
	p := &Progression{
		outputDir: outputDir,
		pipelines: make(map[string]*pipelineProgression, len(defs)),
	}
	for _, def := range defs {
		pp := &pipelineProgression{
			status: StatusNotStarted,
			tasks:  make(map[string]float64, len(def.Components)),
		}
		for _, comp := range def.Components {
			pp.taskOrder = append(pp.taskOrder, comp.Prefix())
			pp.tasks[comp.Prefix()] = 0
		}
		p.order = append(p.order, def.Name)
		p.pipelines[def.Name] = pp
	}
	p.mu.Lock()
	p.writeLocked()
	p.mu.Unlock()
	return p
}

// SetStatus records a pipeline status transition and rewrites the
// progression file.
func (p *Progression) SetStatus(pipelineName string, status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pp, ok := p.pipelines[pipelineName]; ok {
		pp.status = status
	}
	p.writeLocked()
}

// Status returns the recorded status of a pipeline.
func (p *Progression) Status(pipelineName string) Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pp, ok := p.pipelines[pipelineName]; ok {
		return pp.status
	}
	return StatusNotStarted
}

// SetTaskProgression records a component's completion fraction (0..1) and
// rewrites the progression file.
func (p *Progression) SetTaskProgression(pipelineName, task string, fraction float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pp, ok := p.pipelines[pipelineName]; ok {
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		pp.tasks[task] = fraction
	}
	p.writeLocked()
}

type xmlProgressionDoc struct {
	XMLName   xml.Name             `xml:"progression"`
	Updated   string               `xml:"updated,attr"`
	Pipelines []xmlProgressionPipe `xml:"pipeline"`
}

type xmlProgressionPipe struct {
	Name   string               `xml:"name,attr"`
	Status Status               `xml:"status,attr"`
	Tasks  []xmlProgressionTask `xml:"task"`
}

type xmlProgressionTask struct {
	Name     string  `xml:"name,attr"`
	Fraction float64 `xml:"fraction,attr"`
}

// writeLocked rewrites progression.xml. Failures are logged and ignored:
// progression is advisory, the run must not fail because of it. Caller must
// hold p.mu.
func (p *Progression) writeLocked() {
	doc := xmlProgressionDoc{Updated: time.Now().Format(time.RFC3339)}
	for _, name := range p.order {
		pp := p.pipelines[name]
		pipe := xmlProgressionPipe{Name: name, Status: pp.status}
		for _, task := range pp.taskOrder {
			pipe.Tasks = append(pipe.Tasks, xmlProgressionTask{
				Name:     task,
				Fraction: pp.tasks[task],
			})
		}
		doc.Pipelines = append(doc.Pipelines, pipe)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		logger.Logger.Warnw("Unable to marshal progression", "error", err)
		return
	}
	path := filepath.Join(p.outputDir, ProgressionFileName)
	if err := os.WriteFile(path, append([]byte(xml.Header), data...), 0o644); err != nil {
		logger.Logger.Warnw("Unable to write progression file", "path", path, "error", err)
	}
}
