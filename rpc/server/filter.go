package server

import (
	"fmt"

	"github.com/pkg/errors"
)

// ExecFilterType selects the phases a filter takes part in
type ExecFilterType int

const (
	// FilterNone disables the filter in every phase
	FilterNone ExecFilterType = iota
	// FilterRequestOnly runs before invocation
	FilterRequestOnly
	// FilterResponseOnly runs after invocation
	FilterResponseOnly
	// FilterAll runs in every phase the filter is registered for
	FilterAll
)

func (t ExecFilterType) String() string {
	switch t {
	case FilterNone:
		return "none"
	case FilterRequestOnly:
		return "request"
	case FilterResponseOnly:
		return "response"
	case FilterAll:
		return "all"
	default:
		return fmt.Sprintf("ExecFilterType(%d)", int(t))
	}
}

// IFilter is a hook in the dispatch pipeline. Returning an error records it on
// the call. In the connection and request phase it also ends the phase and
// skips the invocation.
type IFilter interface {
	Name() string
	ExecType() ExecFilterType
	Filter(rc *RequestContext) error
}

// FilterFunc is the function form of IFilter.Filter
type FilterFunc func(rc *RequestContext) error

type funcFilter struct {
	name string
	exec ExecFilterType
	fn   FilterFunc
}

func (f *funcFilter) Name() string                    { return f.name }
func (f *funcFilter) ExecType() ExecFilterType        { return f.exec }
func (f *funcFilter) Filter(rc *RequestContext) error { return f.fn(rc) }

// NewFilter wraps fn as an IFilter
func NewFilter(name string, exec ExecFilterType, fn FilterFunc) IFilter {
	return &funcFilter{name: name, exec: exec, fn: fn}
}

// --------------------------------------------------------------------------
// Phases
// --------------------------------------------------------------------------

type phase int

const (
	phaseConnection phase = iota
	phaseRequest
	phaseResponse
)

func (p phase) String() string {
	switch p {
	case phaseConnection:
		return "connection"
	case phaseRequest:
		return "request"
	default:
		return "response"
	}
}

// runs reports whether a filter of type t takes part in phase p
func (p phase) runs(t ExecFilterType) bool {
	switch p {
	case phaseConnection:
		return t != FilterNone
	case phaseRequest:
		return t == FilterAll || t == FilterRequestOnly
	default:
		return t == FilterAll || t == FilterResponseOnly
	}
}

// applyFilter runs a single filter and turns a panic into an error
func applyFilter(f IFilter, rc *RequestContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("filter %s panicked: %v", f.Name(), r)
		}
	}()
	return f.Filter(rc)
}
