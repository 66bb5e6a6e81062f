package failurerate

import "math"

// Bearing types.
const (
	BallBearing   = "Ball Bearing"
	RollerBearing = "Roller Bearing"
)

// Pump casing types.
const (
	OrdinaryVolute    = "Ordinary volute"
	ModifiedVolute    = "Modified volute"
	DoubleVolute      = "Double volute"
	DisplacementPumps = "Displacement pumps"
)

// Shaft surface finishes.
const (
	GroundShaft    = "Ground Shaft"
	PolishedShaft  = "Polished Shaft"
	HotRolledShaft = "Hot Rolled Shaft"
)

// bearingReliability is the L10 reliability percentage the bearing life is quoted at.
const bearingReliability = 90.0

type BearingParams struct {
	Type         string
	Ls           float64 // dynamic load rating, lbf
	La           float64 // equivalent radial load, lbf
	Vo           float64 // viscosity of specification lubricant
	Vl           float64 // viscosity of lubricant used
	Cw           float64 // water fraction in lubricant
	T            float64 // operating temperature, C
	Diameter     float64 // mm
	ParticleSize float64 // microns
}

type FluidDriverParams struct {
	Base   float64 // base rate, failures per million hours
	Casing string
	Q      float64 // actual flow, gpm
	Qr     float64 // rated flow, gpm
	Vo     float64 // operating speed
	Vd     float64 // maximum allowable speed
	Fac    float64 // filter size
}

type SealParams struct {
	Ps  float64 // pressure at seal, psi
	Qf  float64 // allowable leakage, in^3/min
	Dsl float64 // inner diameter, in
	M   float64 // Meyer hardness
	C   float64 // contact pressure
	F   float64 // surface finish
	V   float64 // dynamic viscosity
	TR  float64 // rated temperature, F
	To  float64 // operating temperature, F
	C0  float64 // system filter size, microns
	Fr  float64 // rated flow, gpm
}

type ShaftParams struct {
	Surface string
	TAT     float64 // operating temperature, F
	TS      float64 // tensile strength, kpsi
}

// PumpParams groups the four failure modes of a pump.
type PumpParams struct {
	Bearing     BearingParams
	FluidDriver FluidDriverParams
	Seal        SealParams
	Shaft       ShaftParams
}

// PumpResult holds the per-part failure rates and the resulting MTBF.
type PumpResult struct {
	MTBF        float64 `json:"mtbf"`
	Bearing     float64 `json:"bearing"`
	FluidDriver float64 `json:"fluid_driver"`
	Seal        float64 `json:"seal"`
	Shaft       float64 `json:"shaft"`
}

func BearingFailureRate(p BearingParams) (float64, error) {
	var y float64
	switch p.Type {
	case RollerBearing:
		y = 3.3
	case BallBearing:
		y = 3.0
	default:
		return 0, &ParameterError{Model: "bearing", Field: "type", Value: p.Type}
	}
	if p.La <= 0 || p.Ls <= 0 {
		return 0, &ParameterError{Model: "bearing", Field: "load", Value: p.La}
	}
	if p.Vl <= 0 {
		return 0, &ParameterError{Model: "bearing", Field: "Vl", Value: p.Vl}
	}

	l10h := (1e6 / 60) * math.Pow(p.Ls/p.La, y)
	base := 1 / l10h

	cR := 0.223 / math.Pow(math.Log(100/bearingReliability), 2.0/3.0)
	cV := math.Pow(p.Vo/p.Vl, 0.54)

	cCW := 11.0
	if p.Cw < 0.8 {
		cCW = 1.0 + 25.50*p.Cw - 16.25*p.Cw*p.Cw
	}

	cT := 1.0
	if p.T > 183 {
		cT = math.Pow(p.T/183, 3)
	}

	const cSF = 1.0

	var cC float64
	switch {
	case p.Diameter <= 100 && p.ParticleSize <= 10:
		cC = 1.4
	case p.Diameter <= 100:
		cC = 2.5
	case p.ParticleSize <= 10:
		cC = 1.2
	default:
		cC = 2.0
	}

	return base * cR * cV * cCW * cT * cSF * cC, nil
}

func FluidDriverFailureRate(p FluidDriverParams) (float64, error) {
	if p.Qr <= 0 {
		return 0, &ParameterError{Model: "fluid driver", Field: "Qr", Value: p.Qr}
	}
	if p.Vd <= 0 {
		return 0, &ParameterError{Model: "fluid driver", Field: "Vd", Value: p.Vd}
	}

	q := p.Q / p.Qr
	var cPF float64
	switch p.Casing {
	case OrdinaryVolute:
		switch {
		case q >= 0.1 && q <= 1.0:
			cPF = 9.94 - 0.90*q - 10.00*q*q + 1.77*q*q*q
		case q > 1.0 && q < 1.1:
			cPF = 1.0
		case q >= 1.1 && q <= 1.7:
			cPF = -30.60 + 36*q - 4.50*q*q - 2.20*q*q*q
		default:
			return 0, &ParameterError{Model: "fluid driver", Field: "Q/Qr", Value: q}
		}
	case ModifiedVolute:
		cPF = 5.31 - 0.55*q - 12.00*math.Pow(q, 2) + 12.60*math.Pow(q, 3) - 4.63*math.Pow(q, 4) + 0.68*math.Pow(q, 5)
	case DoubleVolute:
		cPF = 1.03 - 0.30*q + 0.04*q*q
	case DisplacementPumps:
		cPF = 0.80 + 1.1*q
	default:
		return 0, &ParameterError{Model: "fluid driver", Field: "casing", Value: p.Casing}
	}

	cPS := 5 * math.Pow(p.Vo/p.Vd, 1.3)
	cC := 0.6 + 0.05*p.Fac
	const cSF = 1.25

	return p.Base * 1e-6 * cPF * cPS * cC * cSF, nil
}

func SealFailureRate(p SealParams) (float64, error) {
	if p.C <= 0 {
		return 0, &ParameterError{Model: "seal", Field: "C", Value: p.C}
	}
	if p.V <= 0 {
		return 0, &ParameterError{Model: "seal", Field: "V", Value: p.V}
	}

	const base = 22.8 // failures per million hours

	cP := 0.25
	if p.Ps > 1500 {
		cP = math.Pow(p.Ps/3000, 2)
	}

	var cQ float64
	if p.Qf > 0.03 {
		cQ = 0.055 / p.Qf
	} else {
		cQ = 4.2 - 79*p.Qf
	}

	cF := 0.25
	if p.F > 15 {
		cF = math.Pow(p.F, 1.65) / 353
	}

	cDL := 1.1*p.Dsl + 0.32
	cH := math.Pow((p.M/p.C)/0.55, 4.3)
	cV := 2e-8 / p.V

	var cT float64
	if dt := p.TR - p.To; dt <= 40 {
		cT = 1 / math.Pow(2, dt/18)
	} else {
		cT = 0.21
	}

	const (
		c10 = 10.0
		n10 = 0.019
	)
	cN := math.Pow(p.C0/c10, 3) * p.Fr * n10

	return base * cQ * cP * cDL * cH * cF * cV * cT * cN, nil
}

func ShaftFailureRate(p ShaftParams) (float64, error) {
	const base = 1e-6

	var cF float64
	switch p.Surface {
	case GroundShaft:
		cF = 0.89
	case PolishedShaft:
		cF = 1
	case HotRolledShaft:
		cF = 0.94 - 0.0046*p.TS + 8.37e-6*p.TS*p.TS
	default:
		return 0, &ParameterError{Model: "shaft", Field: "surface", Value: p.Surface}
	}

	cT := 1.0
	if p.TAT > 160 {
		cT = (460 + p.TAT) / 620
	}

	return base * cF * cT, nil
}

// PumpMTBF is the reciprocal of the summed part failure rates.
func PumpMTBF(p PumpParams) (PumpResult, error) {
	var res PumpResult
	var err error
	if res.Bearing, err = BearingFailureRate(p.Bearing); err != nil {
		return PumpResult{}, err
	}
	if res.FluidDriver, err = FluidDriverFailureRate(p.FluidDriver); err != nil {
		return PumpResult{}, err
	}
	if res.Seal, err = SealFailureRate(p.Seal); err != nil {
		return PumpResult{}, err
	}
	if res.Shaft, err = ShaftFailureRate(p.Shaft); err != nil {
		return PumpResult{}, err
	}

	total := res.Bearing + res.FluidDriver + res.Seal + res.Shaft
	if total <= 0 {
		return PumpResult{}, &ParameterError{Model: "pump", Field: "total failure rate", Value: total}
	}
	res.MTBF = 1 / total
	return res, nil
}
