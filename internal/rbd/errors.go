package rbd

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyNetwork is returned when there is nothing to reduce.
var ErrEmptyNetwork = errors.New("network has no components")

// UnknownComponentError reports a connection endpoint with no component details.
type UnknownComponentError struct {
	Name string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("no details for component %q", e.Name)
}

// InvalidComponentError reports a component whose values cannot be used.
type InvalidComponentError struct {
	Name   string
	Reason string
}

func (e *InvalidComponentError) Error() string {
	return fmt.Sprintf("component %q: %s", e.Name, e.Reason)
}

// NoRootError means every component has an incoming connection.
type NoRootError struct{}

func (e *NoRootError) Error() string {
	return "network has no entry point: every component has an incoming connection"
}

// MultipleRootsError means more than one component has no incoming connection.
type MultipleRootsError struct {
	Roots []string
}

func (e *MultipleRootsError) Error() string {
	return fmt.Sprintf("network has %d entry points (%s), expected exactly one", len(e.Roots), strings.Join(e.Roots, ", "))
}

// CycleError is returned under CycleReject when the network has feedback loops.
type CycleError struct {
	Cycles []Cycle
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("network contains %d cycle(s): %s", len(e.Cycles), strings.Join(parts, "; "))
}

// NotSeriesParallelError means the topology cannot be collapsed by series and
// parallel steps alone, e.g. a bridge.
type NotSeriesParallelError struct {
	Remaining []string
}

func (e *NotSeriesParallelError) Error() string {
	return fmt.Sprintf("network is not series-parallel; irreducible blocks: %s", strings.Join(e.Remaining, ", "))
}
