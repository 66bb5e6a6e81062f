// Package failurerate holds the handbook multiplier models used to derive
// component MTBF for the block editor.
package failurerate

import (
	"fmt"
	"math"
)

// ParameterError reports an input outside what a model can evaluate.
type ParameterError struct {
	Model string
	Field string
	Value any
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: unsupported %s %v", e.Model, e.Field, e.Value)
}

// ValveParams are the operating conditions of a spool valve.
type ValveParams struct {
	Nc       float64 // cycles per hour
	DP       float64 // pressure drop, psi
	Qf       float64 // allowable leakage, in^3/min
	Mu       float64 // dynamic viscosity, lbf-min/in^2
	B        float64 // spool clearance, microinch
	DS       float64 // spool diameter, in
	Nu       float64 // friction coefficient
	FrActual float64 // actual flow rate
	FrRated  float64 // rated flow rate
}

// ValveFailureRate returns the valve failure rate as the base rate scaled by
// the pressure, leakage, viscosity, clearance, diameter, friction and flow
// multipliers.
func ValveFailureRate(p ValveParams) (float64, error) {
	if p.Nc <= 0 {
		return 0, &ParameterError{Model: "valve", Field: "Nc", Value: p.Nc}
	}
	if p.Mu <= 0 {
		return 0, &ParameterError{Model: "valve", Field: "mu", Value: p.Mu}
	}
	if p.FrRated <= 0 {
		return 0, &ParameterError{Model: "valve", Field: "Fr_rated", Value: p.FrRated}
	}

	base := 1.25 * (1e6 / p.Nc)

	// Below 50 psi the pressure term does not derate the valve.
	cP := 1.0
	if p.DP > 50 {
		cP = math.Pow(p.DP/3000, 2)
	}

	var cQ float64
	if p.Qf > 0.3 {
		cQ = 0.055 / p.Qf
	} else {
		cQ = 4.2 - 79*p.Qf
	}

	cMu := 2e-8 / p.Mu

	cB := 0.42
	if p.B > 500 {
		cB = p.B * p.B / 6e5
	}

	cDS := 0.615 * p.DS
	cNu := p.Nu
	cW := 1 + math.Pow(p.FrActual/p.FrRated, 2)

	return base * cP * cQ * cMu * cB * cDS * cNu * cW, nil
}
