package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NREL/CoolerChips/internal/logging"
	"github.com/NREL/CoolerChips/internal/models"
	"github.com/NREL/CoolerChips/internal/rbd"
	"github.com/NREL/CoolerChips/internal/validation"
)

const noConnectionAlert = "No connection between blocks"

// SendEdges reduces the posted block diagram to one Reliability or
// Availability value.
//
// Query parameters: cycles=reject|break overrides the configured cycle
// policy; trace=true adds the reduced expression and severed connections.
func (h *Handler) SendEdges(c *gin.Context) {
	var req models.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if len(req.Edges) == 0 {
		c.JSON(http.StatusOK, gin.H{"ALERT": noConnectionAlert})
		return
	}

	if err := validation.Struct(req); err != nil {
		badRequest(c, err.Error())
		return
	}
	metric, err := rbd.ParseMetric(req.CalculationType)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	policy, ok := h.cyclePolicy(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ev, err := h.evaluate(ctx, h.logger(c), &req, metric, policy)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	body := gin.H{req.CalculationType: formatFloat(ev.Value)}
	if c.Query("trace") == "true" {
		body["expression"] = ev.Expression
		body["severed"] = nonNil(ev.Severed)
	}
	c.JSON(http.StatusOK, body)
}

// SendEdge acknowledges a single edge update from the editor.
func (h *Handler) SendEdge(c *gin.Context) {
	var payload json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.logger(c).Debug("edge received", logging.Int("bytes", len(payload)))
	c.JSON(http.StatusOK, gin.H{"message": "Checked"})
}

// cyclePolicy resolves the request's policy, writing a 400 on a bad value.
func (h *Handler) cyclePolicy(c *gin.Context) (rbd.CyclePolicy, bool) {
	q, ok := c.GetQuery("cycles")
	if !ok {
		return h.policy, true
	}
	switch strings.ToLower(strings.TrimSpace(q)) {
	case "reject", "break":
		return rbd.ParseCyclePolicy(q), true
	}
	badRequest(c, "cycles must be reject or break")
	return 0, false
}

// evaluate runs the reducer, consulting the result cache first. Cache
// failures are logged and otherwise ignored.
func (h *Handler) evaluate(ctx context.Context, log logging.Logger, req *models.EvaluationRequest, metric rbd.Metric, policy rbd.CyclePolicy) (models.Evaluation, error) {
	key := req.Fingerprint(metric, policy)
	log = log.With(logging.Metric(metric.String()))

	ev, hit, err := h.cache.Get(ctx, key)
	switch {
	case err != nil:
		h.metrics.CacheErrors.WithLabelValues("get").Inc()
		log.Warn("result cache lookup failed", logging.Error(err))
	case hit:
		h.metrics.CacheHits.Inc()
		log.Debug("result served from cache", logging.Float64("value", ev.Value))
		return ev, nil
	default:
		h.metrics.CacheMisses.Inc()
	}

	start := time.Now()
	n, err := req.Network()
	if err != nil {
		_, kind := classify(err)
		h.metrics.RecordEvaluation(metric.String(), kind, 0, time.Since(start))
		return models.Evaluation{}, err
	}

	res, err := rbd.Reduce(n, metric, rbd.Options{Cycles: policy})
	elapsed := time.Since(start)
	if err != nil {
		_, kind := classify(err)
		h.metrics.RecordEvaluation(metric.String(), kind, n.Len(), elapsed)
		log.Info("network rejected", logging.String("kind", kind), logging.Error(err))
		return models.Evaluation{}, err
	}
	h.metrics.RecordEvaluation(metric.String(), "ok", n.Len(), elapsed)

	ev = models.NewEvaluation(res, h.now().UTC())
	fields := []logging.Field{
		logging.Float64("value", ev.Value),
		logging.Int("components", n.Len()),
		logging.Duration("elapsed", elapsed),
	}
	if len(ev.Severed) > 0 {
		fields = append(fields, logging.String("severed", ev.SeveredList()))
	}
	log.Info("network evaluated", fields...)

	if err := h.cache.Set(ctx, key, ev); err != nil {
		h.metrics.CacheErrors.WithLabelValues("set").Inc()
		log.Warn("result cache store failed", logging.Error(err))
	}
	return ev, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
