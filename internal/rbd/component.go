package rbd

import (
	"fmt"
	"strings"
)

// Metric selects which per-component value the reducer combines.
type Metric int

const (
	Reliability Metric = iota
	Availability
)

// String returns the wire name of the metric ("Reliability" / "Availability").
func (m Metric) String() string {
	switch m {
	case Reliability:
		return "Reliability"
	case Availability:
		return "Availability"
	default:
		return "Unknown"
	}
}

// ParseMetric converts a calculation type as sent by the block editor.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reliability":
		return Reliability, nil
	case "availability":
		return Availability, nil
	default:
		return 0, fmt.Errorf("unknown calculation type %q", s)
	}
}

// Component is one block of the diagram.
type Component struct {
	Name        string
	Reliability float64
	MTBF        float64
	MTTR        float64
}

// Availability is the steady-state availability MTBF / (MTBF + MTTR).
func (c Component) Availability() (float64, error) {
	if c.MTBF <= 0 {
		return 0, &InvalidComponentError{Name: c.Name, Reason: fmt.Sprintf("mtbf must be positive, got %v", c.MTBF)}
	}
	if c.MTTR < 0 {
		return 0, &InvalidComponentError{Name: c.Name, Reason: fmt.Sprintf("mttr must not be negative, got %v", c.MTTR)}
	}
	return c.MTBF / (c.MTBF + c.MTTR), nil
}

// ValueOf returns the component's value for the metric.
func (m Metric) ValueOf(c Component) (float64, error) {
	switch m {
	case Reliability:
		if c.Reliability < 0 || c.Reliability > 1 {
			return 0, &InvalidComponentError{Name: c.Name, Reason: fmt.Sprintf("reliability must be within [0,1], got %v", c.Reliability)}
		}
		return c.Reliability, nil
	case Availability:
		return c.Availability()
	default:
		return 0, fmt.Errorf("unsupported metric %d", m)
	}
}

// Connection is a directed signal-flow edge between two components.
type Connection struct {
	Source string
	Target string
}

func (c Connection) String() string {
	return c.Source + "->" + c.Target
}
