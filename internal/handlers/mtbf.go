package handlers

import (
	"maps"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/NREL/CoolerChips/internal/failurerate"
	"github.com/NREL/CoolerChips/internal/logging"
	"github.com/NREL/CoolerChips/internal/models"
	"github.com/NREL/CoolerChips/internal/validation"
)

// ValveMTBF computes the failure rate of each posted valve, keyed by the
// editor's block id.
func (h *Handler) ValveMTBF(c *gin.Context) {
	var valves map[string]models.ValveRequest
	if err := c.ShouldBindJSON(&valves); err != nil {
		badRequest(c, err.Error())
		return
	}
	if len(valves) == 0 {
		badRequest(c, "no valves supplied")
		return
	}

	rates := make(map[string]float64, len(valves))
	for _, id := range slices.Sorted(maps.Keys(valves)) {
		rate, err := failurerate.ValveFailureRate(valves[id].Params())
		if err != nil {
			h.respondError(c, err, gin.H{"id": id})
			return
		}
		rates[id] = rate
	}

	h.logger(c).Debug("valve failure rates computed", logging.Int("valves", len(rates)))
	c.JSON(http.StatusOK, rates)
}

// PumpMTBF computes per-part failure rates and the MTBF of each posted pump.
func (h *Handler) PumpMTBF(c *gin.Context) {
	var pumps map[string]models.PumpRequest
	if err := c.ShouldBindJSON(&pumps); err != nil {
		badRequest(c, err.Error())
		return
	}
	if len(pumps) == 0 {
		badRequest(c, "no pumps supplied")
		return
	}

	results := make(map[string]failurerate.PumpResult, len(pumps))
	for _, id := range slices.Sorted(maps.Keys(pumps)) {
		if err := validation.Struct(pumps[id]); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request", "id": id})
			return
		}
		res, err := failurerate.PumpMTBF(pumps[id].Params())
		if err != nil {
			h.respondError(c, err, gin.H{"id": id})
			return
		}
		results[id] = res
	}

	h.logger(c).Debug("pump MTBF computed", logging.Int("pumps", len(results)))
	c.JSON(http.StatusOK, results)
}
