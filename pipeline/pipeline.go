// Package pipeline holds the in-memory model of a parsed pipeline
// definition: a named DAG of components, each wrapping one processor
// invocation plus its dependency edges.
package pipeline

import (
	"fmt"

	"github.com/Fabian-RY/rsat-code/processor"
)

// Definition is one pipeline: a name and the ordered collection of
// components forming a DAG. The graph is acyclic; the parser rejects
// anything else.
type Definition struct {
	Name string
	// Components in declaration order.
	Components []*Component
	// Entries are the components with no predecessors.
	Entries []*Component
}

// Component is one scheduled unit of work. Previous/Next are non-owning
// graph edges; the component belongs to exactly one Definition. Only the
// scheduler mutates the completion flag.
type Component struct {
	Name          string
	ProcessorName string
	Params        processor.Params

	Previous []*Component
	Next     []*Component

	rank      int
	completed bool
}

// Prefix identifies the component in logs and output directory names.
func (c *Component) Prefix() string {
	return fmt.Sprintf("%d_%s", c.rank, c.Name)
}

// Rank is the component's 1-based declaration position in its pipeline.
func (c *Component) Rank() int {
	return c.rank
}

// Completed reports whether the component finished successfully.
func (c *Component) Completed() bool {
	return c.completed
}

// MarkCompleted flags the component as successfully finished.
func (c *Component) MarkCompleted() {
	c.completed = true
}

// ResetCompletion clears the completion flag for a fresh run.
func (c *Component) ResetCompletion() {
	c.completed = false
}

// CanStart reports whether every predecessor has completed successfully.
// Entry components can always start.
func (c *Component) CanStart() bool {
	for _, prev := range c.Previous {
		if !prev.completed {
			return false
		}
	}
	return true
}
