package lifecycle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// System describes one cooling system for the cash-flow comparison. Money is
// in dollars, energy in kWh.
type System struct {
	CapitalCost       float64
	Life              int     // years between capital purchases
	MTBF              float64 // hours between cooling maintenance events
	MaintenanceCost   float64 // per cooling maintenance event
	EnergyUsage       float64 // per year
	AvoidedITFailures float64 // per year, relative to no cooling upgrade
	RecoveredHeat     float64 // per year
}

// Economics are the assumptions shared by both systems.
type Economics struct {
	Years              int
	ElectricityCost    float64 // per kWh
	EnergyInflation    float64 // per year
	Inflation          float64 // per year
	DiscountRate       float64 // per year
	ITMaintenanceCost  float64 // per IT failure
	RecoveredHeatValue float64 // fraction of the electricity price
}

// CashFlow is one system's cost line for a year. Revenue is negative.
type CashFlow struct {
	Year          int     `json:"year"`
	Capital       float64 `json:"capital"`
	Energy        float64 `json:"energy"`
	Maintenance   float64 `json:"maintenance"`
	ITMaintenance float64 `json:"itMaintenance"`
	HeatRevenue   float64 `json:"heatRevenue"`
	Net           float64 `json:"net"`
	NPV           float64 `json:"npv"`
	CumulativeNPV float64 `json:"cumulativeNpv"`
}

// YearComparison sets the candidate against the baseline for one year.
type YearComparison struct {
	Year   int     `json:"year"`
	ROI    float64 `json:"roi"`
	IRR    float64 `json:"irr"`
	NetNPV float64 `json:"netNpv"`
}

type Comparison struct {
	Baseline  []CashFlow       `json:"baseline"`
	Candidate []CashFlow       `json:"candidate"`
	Years     []YearComparison `json:"years"`
}

// CashFlows discounts the system's yearly costs from year 0, when only the
// first capital purchase is made, to econ.Years.
func CashFlows(s System, econ Economics) ([]CashFlow, error) {
	if err := checkEconomics(econ); err != nil {
		return nil, err
	}
	if s.Life < 1 {
		return nil, fmt.Errorf("%w: life must be at least one year, got %d", ErrInvalidInput, s.Life)
	}
	if s.MTBF <= 0 {
		return nil, fmt.Errorf("%w: MTBF must be positive, got %v", ErrInvalidInput, s.MTBF)
	}

	flows := make([]CashFlow, econ.Years+1)
	npv := make([]float64, len(flows))
	eventsPerYear := HoursPerYear / s.MTBF
	for i := range flows {
		year := float64(i)
		inflation := math.Pow(1+econ.Inflation, year)
		f := CashFlow{Year: i}
		if i%s.Life == 0 {
			f.Capital = s.CapitalCost * inflation
		}
		if i > 0 {
			energyPrice := econ.ElectricityCost * math.Pow(1+econ.EnergyInflation, year-1)
			f.Energy = s.EnergyUsage * energyPrice
			f.Maintenance = eventsPerYear * s.MaintenanceCost * inflation
			f.ITMaintenance = -s.AvoidedITFailures * econ.ITMaintenanceCost * inflation
			f.HeatRevenue = -s.RecoveredHeat * econ.RecoveredHeatValue * energyPrice
		}
		f.Net = f.Capital + f.Energy + f.Maintenance + f.ITMaintenance + f.HeatRevenue
		f.NPV = f.Net / math.Pow(1+econ.DiscountRate, year)
		npv[i] = f.NPV
		flows[i] = f
	}

	floats.CumSum(npv, npv)
	for i := range flows {
		flows[i].CumulativeNPV = npv[i]
	}
	return flows, nil
}

// Compare runs both systems and reports, per year, the return on the extra
// up-front spend of the candidate, its annualised rate, and the difference
// in discounted cost.
//
// ROI is zero when the candidate costs no more up front. An ROI at or below
// -100% reports an IRR of -1.
func Compare(baseline, candidate System, econ Economics) (*Comparison, error) {
	base, err := CashFlows(baseline, econ)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	cand, err := CashFlows(candidate, econ)
	if err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}

	extra := candidate.CapitalCost - baseline.CapitalCost
	years := make([]YearComparison, len(base))
	for i := range base {
		y := YearComparison{Year: i, NetNPV: base[i].NPV - cand[i].NPV}
		if extra > 0 {
			y.ROI = (base[i].CumulativeNPV - cand[i].CumulativeNPV) / extra
		}
		if i > 0 {
			if growth := 1 + y.ROI; growth > 0 {
				y.IRR = math.Pow(growth, 1/float64(i)) - 1
			} else {
				y.IRR = -1
			}
		}
		years[i] = y
	}
	return &Comparison{Baseline: base, Candidate: cand, Years: years}, nil
}

func checkEconomics(econ Economics) error {
	if econ.Years < 1 || econ.Years > MaxYears {
		return fmt.Errorf("%w: years must be between 1 and %d", ErrInvalidInput, MaxYears)
	}
	if econ.DiscountRate <= -1 {
		return fmt.Errorf("%w: discount rate must be above -1, got %v", ErrInvalidInput, econ.DiscountRate)
	}
	return nil
}
