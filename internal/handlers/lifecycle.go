package handlers

import (
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NREL/CoolerChips/internal/lifecycle"
	"github.com/NREL/CoolerChips/internal/logging"
	"github.com/NREL/CoolerChips/internal/models"
	"github.com/NREL/CoolerChips/internal/validation"
)

// MaintenanceCost simulates yearly maintenance spend for the posted items.
// Monte Carlo runs without a seed draw one, and echo it so the run can be
// repeated.
func (h *Handler) MaintenanceCost(c *gin.Context) {
	var req models.MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	items, opts := req.Simulation(rand.Uint64())
	start := time.Now()
	res, err := lifecycle.SimulateMaintenance(items, opts)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	h.logger(c).Debug("maintenance simulated",
		logging.Int("items", len(items)),
		logging.Int("samples", res.Samples),
		logging.Duration("duration", time.Since(start)),
	)
	c.JSON(http.StatusOK, gin.H{
		"annual":         res.Annual,
		"meanAnnualCost": res.MeanAnnual,
		"failures":       res.Failures,
		"samples":        res.Samples,
		"seed":           opts.Seed,
	})
}

// CostModel compares the discounted cash flows of a baseline and a candidate
// cooling system.
func (h *Handler) CostModel(c *gin.Context) {
	var req models.CostModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	cmp, err := lifecycle.Compare(req.Baseline.System(), req.Candidate.System(), req.Economics())
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, cmp)
}
