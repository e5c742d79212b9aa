package pipeline

import (
	"encoding/xml"
	"os"
	"strings"

	"github.com/Fabian-RY/rsat-code/errors"
	"github.com/Fabian-RY/rsat-code/processor"
)

// XML shapes of the definition file.
//
//	<pipelines>
//	  <pipeline name="analysis">
//	    <component name="peaks" processor="BEDParser">
//	      <param name="InputFile" value="peaks.bed"/>
//	    </component>
//	    <component name="motifs" processor="MotifScan" previous="peaks"/>
//	  </pipeline>
//	</pipelines>
type xmlPipelines struct {
	XMLName   xml.Name      `xml:"pipelines"`
	Pipelines []xmlPipeline `xml:"pipeline"`
}

type xmlPipeline struct {
	Name       string         `xml:"name,attr"`
	Components []xmlComponent `xml:"component"`
}

type xmlComponent struct {
	Name      string     `xml:"name,attr"`
	Processor string     `xml:"processor,attr"`
	Previous  string     `xml:"previous,attr"`
	Params    []xmlParam `xml:"param"`
}

type xmlParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ParseDefinition reads a definition file and returns the pipelines it
// declares. Malformed XML, an empty pipeline list, unknown predecessor
// references, duplicate component names and cyclic graphs all raise a
// DefinitionError.
func ParseDefinition(path string) ([]*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapDefinition(err, "unable to read definition file")
	}

	var doc xmlPipelines
	if err := xml.Unmarshal(data, &doc); err != nil {
		err = errors.WrapDefinition(err, "unable to parse definition file")
		return nil, errors.WithDetailf(err, "definition file: %s", path)
	}

	if len(doc.Pipelines) == 0 {
		return nil, errors.DefinitionErrorf("no pipeline defined in definition file %s", path)
	}

	definitions := make([]*Definition, 0, len(doc.Pipelines))
	for _, xp := range doc.Pipelines {
		def, err := buildDefinition(xp)
		if err != nil {
			return nil, errors.WithDetailf(err, "definition file: %s", path)
		}
		definitions = append(definitions, def)
	}
	return definitions, nil
}

// buildDefinition links one pipeline's components into a DAG.
func buildDefinition(xp xmlPipeline) (*Definition, error) {
	if xp.Name == "" {
		return nil, errors.DefinitionErrorf("pipeline without a name")
	}
	if len(xp.Components) == 0 {
		return nil, errors.DefinitionErrorf("pipeline %q declares no component", xp.Name)
	}

	def := &Definition{Name: xp.Name}
	byName := make(map[string]*Component, len(xp.Components))

	for i, xc := range xp.Components {
		if xc.Processor == "" {
			return nil, errors.DefinitionErrorf(
				"pipeline %q: component %d declares no processor", xp.Name, i+1)
		}
		name := xc.Name
		if name == "" {
			name = xc.Processor
		}
		if _, dup := byName[name]; dup {
			return nil, errors.DefinitionErrorf(
				"pipeline %q: duplicate component name %q", xp.Name, name)
		}

		params := make(processor.Params, len(xc.Params))
		for _, xparam := range xc.Params {
			params[xparam.Name] = xparam.Value
		}

		comp := &Component{
			Name:          name,
			ProcessorName: xc.Processor,
			Params:        params,
			rank:          i + 1,
		}
		byName[name] = comp
		def.Components = append(def.Components, comp)
	}

	// Second pass: resolve predecessor references into edges.
	for i, xc := range xp.Components {
		comp := def.Components[i]
		for _, prevName := range strings.Fields(xc.Previous) {
			prev, ok := byName[prevName]
			if !ok {
				return nil, errors.DefinitionErrorf(
					"pipeline %q: component %q references unknown predecessor %q",
					xp.Name, comp.Name, prevName)
			}
			if prev == comp {
				return nil, errors.DefinitionErrorf(
					"pipeline %q: component %q references itself", xp.Name, comp.Name)
			}
			comp.Previous = append(comp.Previous, prev)
			prev.Next = append(prev.Next, comp)
		}
	}

	for _, comp := range def.Components {
		if len(comp.Previous) == 0 {
			def.Entries = append(def.Entries, comp)
		}
	}
	if len(def.Entries) == 0 {
		return nil, errors.DefinitionErrorf(
			"pipeline %q has no entry component, the graph is cyclic", xp.Name)
	}

	if err := detectCycles(def); err != nil {
		return nil, err
	}
	return def, nil
}

// detectCycles runs a depth-first search with the classic three node sets:
// permanent (fully visited, known safe), temporary (on the current recursion
// stack) and unvisited.
func detectCycles(def *Definition) error {
	permanent := make(map[*Component]bool)
	temporary := make(map[*Component]bool)

	var visit func(c *Component) error
	visit = func(c *Component) error {
		if permanent[c] {
			return nil
		}
		if temporary[c] {
			return errors.DefinitionErrorf(
				"pipeline %q: cycle detected involving component %q", def.Name, c.Name)
		}
		temporary[c] = true
		for _, next := range c.Next {
			if err := visit(next); err != nil {
				return err
			}
		}
		delete(temporary, c)
		permanent[c] = true
		return nil
	}

	for _, comp := range def.Components {
		if !permanent[comp] {
			if err := visit(comp); err != nil {
				return err
			}
		}
	}
	return nil
}
