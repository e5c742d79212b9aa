package manager

import (
	"sort"
	"strings"

	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/pipeline"
	"github.com/Fabian-RY/rsat-code/processor"
)

// Resolved maps every component of a verified batch to its processor
// instance. Dispatch happens through this map at execution time, so a
// processor is looked up exactly once per component.
type Resolved map[*pipeline.Component]processor.Processor

// Verify statically checks every pipeline of a batch before anything runs:
// each component's processor must exist in the registry, its input contract
// must be satisfiable by its predecessors' output contracts (or by an
// explicit input file for source components), and every required parameter
// must be present. The first violation aborts verification.
func Verify(defs []*pipeline.Definition, reg *processor.Registry) (Resolved, error) {
	resolved := make(Resolved)

	// Resolve every processor first. Wiring checks need the processors of
	// predecessors, which may be declared after their successors.
	for _, def := range defs {
		for _, comp := range def.Components {
			proc := reg.Get(comp.ProcessorName)
			if proc == nil {
				return nil, errors.DefinitionErrorf(
					"pipeline %q: component %q requires unknown processor %q",
					def.Name, comp.Name, comp.ProcessorName)
			}
			resolved[comp] = proc
		}
	}

	for _, def := range defs {
		for _, comp := range def.Components {
			if err := verifyWiring(def, comp, resolved); err != nil {
				return nil, err
			}
			if err := verifyParameters(def, comp, resolved[comp]); err != nil {
				return nil, err
			}
		}
	}
	return resolved, nil
}

// verifyWiring checks that the component will receive at least one payload
// it accepts. A nil input contract means the processor takes anything.
func verifyWiring(def *pipeline.Definition, comp *pipeline.Component, resolved Resolved) error {
	accepted := resolved[comp].InputContract()
	if accepted == nil {
		return nil
	}

	produced := make(map[processor.Tag]bool)
	for _, prev := range comp.Previous {
		for _, tag := range resolved[prev].OutputContract() {
			produced[tag] = true
		}
	}

	if len(produced) == 0 {
		// Source component: an explicit input file substitutes for an
		// upstream payload.
		if _, ok := comp.Params.String(processor.InputFileParam); ok {
			return nil
		}
		return errors.DefinitionErrorf(
			"pipeline %q: component %q has no predecessor output and no %s parameter",
			def.Name, comp.Name, processor.InputFileParam)
	}

	for _, tag := range accepted {
		if produced[tag] {
			return nil
		}
	}

	err := errors.DefinitionErrorf(
		"pipeline %q: component %q accepts none of its predecessors' outputs",
		def.Name, comp.Name)
	err = errors.WithDetailf(err, "accepted tags: %s", formatTags(accepted))
	return errors.WithDetailf(err, "produced tags: %s", formatTagSet(produced))
}

func verifyParameters(def *pipeline.Definition, comp *pipeline.Component, proc processor.Processor) error {
	var missing []string
	for _, name := range proc.RequiredParameters() {
		if _, ok := comp.Params.String(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.DefinitionErrorf(
		"pipeline %q: component %q is missing required parameters: %s",
		def.Name, comp.Name, strings.Join(missing, ", "))
}

func formatTags(tags []processor.Tag) string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, string(tag))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func formatTagSet(tags map[processor.Tag]bool) string {
	names := make([]string, 0, len(tags))
	for tag := range tags {
		names = append(names, string(tag))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
