package processor

import (
	"strconv"
	"strings"

	"github.com/Fabian-RY/rsat-code/errors"
)

// Params is a component's parameter mapping. Lookups distinguish three
// outcomes: present and well-formed, absent (the caller supplies a default),
// and present but malformed (a DefinitionError that propagates).
type Params map[string]string

// String returns the raw value and whether it is present.
func (p Params) String(name string) (string, bool) {
	value, ok := p[name]
	return value, ok
}

// Int parses an integer parameter. The error is non-nil only for a present
// but malformed value.
func (p Params) Int(name string) (value int, ok bool, err error) {
	raw, present := p[name]
	if !present {
		return 0, false, nil
	}
	parsed, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil {
		return 0, true, errors.DefinitionErrorf(
			"parameter %q is not an integer: %q", name, raw)
	}
	return parsed, true, nil
}

// Float parses a floating-point parameter. The error is non-nil only for a
// present but malformed value.
func (p Params) Float(name string) (value float64, ok bool, err error) {
	raw, present := p[name]
	if !present {
		return 0, false, nil
	}
	parsed, convErr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if convErr != nil {
		return 0, true, errors.DefinitionErrorf(
			"parameter %q is not a number: %q", name, raw)
	}
	return parsed, true, nil
}

// Bool parses a boolean parameter ("true"/"false", case-insensitive). The
// error is non-nil only for a present but malformed value.
func (p Params) Bool(name string) (value bool, ok bool, err error) {
	raw, present := p[name]
	if !present {
		return false, false, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, true, nil
	case "false":
		return false, true, nil
	default:
		return false, true, errors.DefinitionErrorf(
			"parameter %q is not a boolean: %q", name, raw)
	}
}

// Fields splits a whitespace-separated list parameter. Absent or blank
// parameters yield a nil slice.
func (p Params) Fields(name string) []string {
	raw, present := p[name]
	if !present || strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Fields(raw)
}

// Clone returns an independent copy of the mapping.
func (p Params) Clone() Params {
	clone := make(Params, len(p))
	for k, v := range p {
		clone[k] = v
	}
	return clone
}
