// Package lifecycle estimates what a cooling system costs to keep running:
// maintenance spend from component failure distributions, and discounted
// cash flows comparing a baseline system with a candidate.
package lifecycle

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// HoursPerYear is the simulation year.
const HoursPerYear = 8760.0

// Limits on a single simulation.
const (
	MaxYears   = 100
	MaxItems   = 4000
	MaxSamples = 10000
	// MaxEventsPerItem bounds one item's failures in one sample.
	MaxEventsPerItem = 1_000_000
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrTooManyEvents = errors.New("too many failure events; check the failure distribution")
)

// ParameterError reports an item whose failure distribution cannot be sampled.
type ParameterError struct {
	Item  int
	Field string
	Value float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("item %d: invalid %s %v", e.Item, e.Field, e.Value)
}

// Item is a maintained component. A positive MTBF means exponential failures
// with that mean; otherwise the three-parameter Weibull (Gamma, Beta, Eta) is
// used. Times are in hours.
type Item struct {
	MTBF  float64
	Gamma float64 // location: failure-free period after each repair
	Beta  float64 // shape
	Eta   float64 // scale
	Cost  float64 // cost per failure event
}

// distribution returns the location offset and the Weibull for the item.
func (it Item) distribution(i int, src rand.Source) (float64, distuv.Weibull, error) {
	if it.MTBF > 0 {
		return 0, distuv.Weibull{K: 1, Lambda: it.MTBF, Src: src}, nil
	}
	switch {
	case it.Beta <= 0:
		return 0, distuv.Weibull{}, &ParameterError{Item: i, Field: "beta", Value: it.Beta}
	case it.Eta <= 0:
		return 0, distuv.Weibull{}, &ParameterError{Item: i, Field: "eta", Value: it.Eta}
	case it.Gamma < 0:
		return 0, distuv.Weibull{}, &ParameterError{Item: i, Field: "gamma", Value: it.Gamma}
	}
	return it.Gamma, distuv.Weibull{K: it.Beta, Lambda: it.Eta, Src: src}, nil
}

// SimulationOptions control a maintenance simulation.
type SimulationOptions struct {
	Years   int
	Samples int
	// MonteCarlo draws failure times at random. When false every interval is
	// the distribution mean and a single pass is made.
	MonteCarlo bool
	Seed       uint64
}

// YearCost is the mean maintenance spend in one simulated year.
type YearCost struct {
	Year int     `json:"year"`
	Cost float64 `json:"cost"`
}

type MaintenanceResult struct {
	Annual     []YearCost `json:"annual"`
	MeanAnnual float64    `json:"meanAnnualCost"`
	Failures   float64    `json:"failures"`
	Samples    int        `json:"samples"`
}

// SimulateMaintenance runs every item as a renewal process over the horizon
// and charges its cost to the year each failure lands in. Results are
// averaged over the samples.
func SimulateMaintenance(items []Item, opts SimulationOptions) (*MaintenanceResult, error) {
	if opts.Years < 1 || opts.Years > MaxYears {
		return nil, fmt.Errorf("%w: years must be between 1 and %d", ErrInvalidInput, MaxYears)
	}
	if len(items) == 0 || len(items) > MaxItems {
		return nil, fmt.Errorf("%w: between 1 and %d items are required", ErrInvalidInput, MaxItems)
	}
	samples := opts.Samples
	if !opts.MonteCarlo || samples < 1 {
		samples = 1
	}
	if samples > MaxSamples {
		return nil, fmt.Errorf("%w: samples must not exceed %d", ErrInvalidInput, MaxSamples)
	}

	src := rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)
	horizon := float64(opts.Years) * HoursPerYear
	totals := make([]float64, opts.Years)
	var failures int

	for i, it := range items {
		offset, dist, err := it.distribution(i, src)
		if err != nil {
			return nil, err
		}
		mean := offset + dist.Mean()
		if !opts.MonteCarlo && mean <= 0 {
			return nil, &ParameterError{Item: i, Field: "mean interval", Value: mean}
		}

		for range samples {
			clock, events := 0.0, 0
			for {
				if opts.MonteCarlo {
					clock += offset + dist.Rand()
				} else {
					clock += mean
				}
				if clock >= horizon {
					break
				}
				if events++; events > MaxEventsPerItem {
					return nil, ErrTooManyEvents
				}
				totals[int(clock/HoursPerYear)] += it.Cost
			}
			failures += events
		}
	}

	floats.Scale(1/float64(samples), totals)
	res := &MaintenanceResult{
		Annual:     make([]YearCost, opts.Years),
		MeanAnnual: floats.Sum(totals) / float64(opts.Years),
		Failures:   float64(failures) / float64(samples),
		Samples:    samples,
	}
	for y, cost := range totals {
		res.Annual[y] = YearCost{Year: y + 1, Cost: cost}
	}
	return res, nil
}
