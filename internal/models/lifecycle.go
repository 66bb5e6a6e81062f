package models

import "github.com/NREL/CoolerChips/internal/lifecycle"

// MaintenanceItem is one maintained component. A positive mtbf selects
// exponential failures; otherwise gamma, beta and eta describe a Weibull.
// Times are in hours.
type MaintenanceItem struct {
	MTBF  Number `json:"mtbf" validate:"gte=0"`
	Gamma Number `json:"gamma" validate:"gte=0"`
	Beta  Number `json:"beta" validate:"gte=0"`
	Eta   Number `json:"eta" validate:"gte=0"`
	Cost  Number `json:"cost" validate:"gte=0"`
}

// MaintenanceRequest is posted to /api/maintenance-cost.
type MaintenanceRequest struct {
	Years      int               `json:"years" validate:"gte=1,lte=100"`
	Samples    int               `json:"samples" validate:"gte=0,lte=10000"`
	MonteCarlo bool              `json:"monteCarlo"`
	Seed       *uint64           `json:"seed"`
	Items      []MaintenanceItem `json:"items" validate:"required,min=1,max=4000,dive"`
}

// Simulation converts the request. seed is used when the request carries
// none.
func (r MaintenanceRequest) Simulation(seed uint64) ([]lifecycle.Item, lifecycle.SimulationOptions) {
	items := make([]lifecycle.Item, len(r.Items))
	for i, it := range r.Items {
		items[i] = lifecycle.Item{
			MTBF:  it.MTBF.Float(),
			Gamma: it.Gamma.Float(),
			Beta:  it.Beta.Float(),
			Eta:   it.Eta.Float(),
			Cost:  it.Cost.Float(),
		}
	}
	if r.Seed != nil {
		seed = *r.Seed
	}
	return items, lifecycle.SimulationOptions{
		Years:      r.Years,
		Samples:    r.Samples,
		MonteCarlo: r.MonteCarlo,
		Seed:       seed,
	}
}

// SystemRequest describes one cooling system. Money in dollars, energy in
// kWh, MTBF in hours.
type SystemRequest struct {
	CapitalCost       Number `json:"capitalCost" validate:"gte=0"`
	Life              int    `json:"life" validate:"gte=1"`
	MTBF              Number `json:"mtbf" validate:"gt=0"`
	MaintenanceCost   Number `json:"maintenanceCost" validate:"gte=0"`
	EnergyUsage       Number `json:"energyUsage" validate:"gte=0"`
	AvoidedITFailures Number `json:"avoidedItFailures"`
	RecoveredHeat     Number `json:"recoveredHeat" validate:"gte=0"`
}

func (s SystemRequest) System() lifecycle.System {
	return lifecycle.System{
		CapitalCost:       s.CapitalCost.Float(),
		Life:              s.Life,
		MTBF:              s.MTBF.Float(),
		MaintenanceCost:   s.MaintenanceCost.Float(),
		EnergyUsage:       s.EnergyUsage.Float(),
		AvoidedITFailures: s.AvoidedITFailures.Float(),
		RecoveredHeat:     s.RecoveredHeat.Float(),
	}
}

// CostModelRequest is posted to /api/cost-model. Rates are fractions per
// year.
type CostModelRequest struct {
	Years              int           `json:"years" validate:"gte=1,lte=100"`
	ElectricityCost    Number        `json:"electricityCost" validate:"gte=0"`
	EnergyInflation    Number        `json:"energyInflation" validate:"gt=-1,lte=10"`
	Inflation          Number        `json:"inflation" validate:"gt=-1,lte=10"`
	DiscountRate       Number        `json:"discountRate" validate:"gt=-1"`
	ITMaintenanceCost  Number        `json:"itMaintenanceCost" validate:"gte=0"`
	RecoveredHeatValue Number        `json:"recoveredHeatValue" validate:"gte=0,lte=1"`
	Baseline           SystemRequest `json:"baseline"`
	Candidate          SystemRequest `json:"candidate"`
}

func (r CostModelRequest) Economics() lifecycle.Economics {
	return lifecycle.Economics{
		Years:              r.Years,
		ElectricityCost:    r.ElectricityCost.Float(),
		EnergyInflation:    r.EnergyInflation.Float(),
		Inflation:          r.Inflation.Float(),
		DiscountRate:       r.DiscountRate.Float(),
		ITMaintenanceCost:  r.ITMaintenanceCost.Float(),
		RecoveredHeatValue: r.RecoveredHeatValue.Float(),
	}
}
