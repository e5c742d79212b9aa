// Package processor defines the contract between the pipeline engine and the
// typed transformations it schedules.
//
// A processor declares its capability once: the data-contract tags it
// accepts, the tags it produces, and the parameters it requires. The wiring
// verifier reads those declarations before any execution; the scheduler then
// calls Execute with the concatenated payloads of the component's
// predecessors.
package processor

import (
	"context"

	"go.uber.org/zap"
)

// Tag identifies a payload shape. Tags are only compared for wiring
// compatibility, never inspected.
type Tag string

// InputFileParam is the standalone file-input parameter. A component whose
// predecessors produce nothing may still be well-wired if this parameter is
// set on it.
const InputFileParam = "InputFile"

// Payload is a typed data structure passed between processors. Clone must
// return a structurally independent copy: downstream processors receive
// clones, so no two components ever alias the same backing maps or slices.
type Payload interface {
	Tag() Tag
	Clone() Payload
}

// Invocation carries everything a processor needs for one component run.
type Invocation struct {
	// Component is the component prefix, for logging.
	Component string
	// OutputDir is the component's dedicated output directory. It exists
	// and, unless Resume is set, is empty when Execute is called.
	OutputDir string
	// Resume is true when the run should reuse previously produced output.
	Resume bool
	// Params is the component's parameter mapping from the definition.
	Params Params
	// Inputs are clones of the predecessors' output payloads, in
	// predecessor order. Empty for entry components.
	Inputs []Payload
	// Log writes into the owning pipeline's log file.
	Log *zap.SugaredLogger
}

// Processor is one registered transformation type.
type Processor interface {
	// Name is the processor type identifier referenced by definitions.
	Name() string

	// InputContract returns the accepted input tags, or nil for a
	// processor that only reads from files (a pure source).
	InputContract() []Tag

	// OutputContract returns the produced output tags, or nil for a sink.
	OutputContract() []Tag

	// RequiredParameters lists parameter names that must be present in the
	// component's parameter mapping.
	RequiredParameters() []string

	// Execute runs the transformation. It returns an ExecutionError on
	// unrecoverable failure; the scheduler isolates the failure to this
	// component's branch.
	Execute(ctx context.Context, inv *Invocation) (Payload, error)
}

// ClonePayloads clones every payload in the slice. Used at the component
// boundary so ownership never crosses it.
func ClonePayloads(payloads []Payload) []Payload {
	if payloads == nil {
		return nil
	}
	clones := make([]Payload, len(payloads))
	for i, p := range payloads {
		clones[i] = p.Clone()
	}
	return clones
}
