package models

import "github.com/NREL/CoolerChips/internal/failurerate"

// ValveRequest is one valve's form as posted to /api/valvemtbfdata.
type ValveRequest struct {
	Nc       Number `json:"Nc"`
	DP       Number `json:"dP"`
	Qf       Number `json:"Qf"`
	Mu       Number `json:"mu"`
	B        Number `json:"B"`
	DS       Number `json:"DS"`
	Nu       Number `json:"nu"`
	FrActual Number `json:"Fr_actual"`
	FrRated  Number `json:"Fr_rated"`
}

func (v ValveRequest) Params() failurerate.ValveParams {
	return failurerate.ValveParams{
		Nc:       v.Nc.Float(),
		DP:       v.DP.Float(),
		Qf:       v.Qf.Float(),
		Mu:       v.Mu.Float(),
		B:        v.B.Float(),
		DS:       v.DS.Float(),
		Nu:       v.Nu.Float(),
		FrActual: v.FrActual.Float(),
		FrRated:  v.FrRated.Float(),
	}
}

type BearingRequest struct {
	Type         string `json:"bearingType" validate:"required"`
	Ls           Number `json:"Ls"`
	La           Number `json:"La"`
	Vo           Number `json:"Vo"`
	Vl           Number `json:"Vl"`
	Cw           Number `json:"Cw"`
	T            Number `json:"T"`
	Diameter     Number `json:"BearingDiameter"`
	ParticleSize Number `json:"Particle_size"`
}

type FluidDriverRequest struct {
	Base   Number `json:"fluid_driver"`
	Casing string `json:"casings_options" validate:"required"`
	Q      Number `json:"Q"`
	Qr     Number `json:"Qr"`
	Vo     Number `json:"Vo"`
	Vd     Number `json:"Vd"`
	Fac    Number `json:"Fac"`
}

type SealRequest struct {
	Ps  Number `json:"Ps"`
	Qf  Number `json:"Qf"`
	Dsl Number `json:"Dsl"`
	M   Number `json:"M"`
	C   Number `json:"C"`
	F   Number `json:"F"`
	V   Number `json:"V"`
	TR  Number `json:"TR"`
	To  Number `json:"To"`
	C0  Number `json:"C0"`
	Fr  Number `json:"Fr"`
}

type ShaftRequest struct {
	Surface string `json:"shaftSurfaceOptions" validate:"required"`
	TAT     Number `json:"TAT"`
	TS      Number `json:"TS"`
}

// PumpRequest is one pump's four forms as posted to /api/pumpmtbfdata.
type PumpRequest struct {
	Bearing     BearingRequest     `json:"bearingData"`
	FluidDriver FluidDriverRequest `json:"fluidData"`
	Seal        SealRequest        `json:"sealData"`
	Shaft       ShaftRequest       `json:"shaftData"`
}

func (p PumpRequest) Params() failurerate.PumpParams {
	b, f, s, sh := p.Bearing, p.FluidDriver, p.Seal, p.Shaft
	return failurerate.PumpParams{
		Bearing: failurerate.BearingParams{
			Type:         b.Type,
			Ls:           b.Ls.Float(),
			La:           b.La.Float(),
			Vo:           b.Vo.Float(),
			Vl:           b.Vl.Float(),
			Cw:           b.Cw.Float(),
			T:            b.T.Float(),
			Diameter:     b.Diameter.Float(),
			ParticleSize: b.ParticleSize.Float(),
		},
		FluidDriver: failurerate.FluidDriverParams{
			Base:   f.Base.Float(),
			Casing: f.Casing,
			Q:      f.Q.Float(),
			Qr:     f.Qr.Float(),
			Vo:     f.Vo.Float(),
			Vd:     f.Vd.Float(),
			Fac:    f.Fac.Float(),
		},
		Seal: failurerate.SealParams{
			Ps:  s.Ps.Float(),
			Qf:  s.Qf.Float(),
			Dsl: s.Dsl.Float(),
			M:   s.M.Float(),
			C:   s.C.Float(),
			F:   s.F.Float(),
			V:   s.V.Float(),
			TR:  s.TR.Float(),
			To:  s.To.Float(),
			C0:  s.C0.Float(),
			Fr:  s.Fr.Float(),
		},
		Shaft: failurerate.ShaftParams{
			Surface: sh.Surface,
			TAT:     sh.TAT.Float(),
			TS:      sh.TS.Float(),
		},
	}
}
