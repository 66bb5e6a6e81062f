// Package handlers implements the HTTP API: network evaluation, component
// failure-rate models, saved diagrams and accounts.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NREL/CoolerChips/internal/auth"
	"github.com/NREL/CoolerChips/internal/cache"
	"github.com/NREL/CoolerChips/internal/logging"
	"github.com/NREL/CoolerChips/internal/metrics"
	"github.com/NREL/CoolerChips/internal/models"
	"github.com/NREL/CoolerChips/internal/rbd"
	"github.com/NREL/CoolerChips/internal/topology"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps wires a Handler. Log, Metrics and Cache fall back to no-op or fresh
// instances when nil; Mirror may stay nil to disable the graph mirror.
type Deps struct {
	Log         logging.Logger
	Metrics     *metrics.Registry
	Cache       cache.ResultCache
	Diagrams    models.DiagramStore
	Users       models.UserStore
	Tokens      auth.TokenStore
	Auth        *auth.Manager
	Mirror      topology.Mirror
	CyclePolicy rbd.CyclePolicy
	Checks      map[string]Pinger
}

type Handler struct {
	log      logging.Logger
	metrics  *metrics.Registry
	cache    cache.ResultCache
	diagrams models.DiagramStore
	users    models.UserStore
	tokens   auth.TokenStore
	auth     *auth.Manager
	mirror   topology.Mirror
	policy   rbd.CyclePolicy
	checks   map[string]Pinger
	now      func() time.Time
}

func New(d Deps) *Handler {
	h := &Handler{
		log:      d.Log,
		metrics:  d.Metrics,
		cache:    d.Cache,
		diagrams: d.Diagrams,
		users:    d.Users,
		tokens:   d.Tokens,
		auth:     d.Auth,
		mirror:   d.Mirror,
		policy:   d.CyclePolicy,
		checks:   d.Checks,
		now:      time.Now,
	}
	if h.log == nil {
		h.log = logging.NopLogger{}
	}
	if h.metrics == nil {
		h.metrics = metrics.NewRegistry()
	}
	if h.cache == nil {
		h.cache = cache.Nop{}
	}
	return h
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/refresh", h.RefreshToken)

	api := r.Group("/api")
	{
		api.POST("/send-edges", h.SendEdges)
		api.POST("/send-edge", h.SendEdge)
		api.POST("/valvemtbfdata", h.ValveMTBF)
		api.POST("/pumpmtbfdata", h.PumpMTBF)
		api.POST("/maintenance-cost", h.MaintenanceCost)
		api.POST("/cost-model", h.CostModel)
	}

	diagrams := api.Group("/diagrams")
	diagrams.Use(h.auth.AuthMiddleware())
	{
		diagrams.GET("", h.ListDiagrams)
		diagrams.POST("", h.CreateDiagram)
		diagrams.GET("/:id", h.GetDiagram)
		diagrams.PUT("/:id", h.UpdateDiagram)
		diagrams.DELETE("/:id", h.DeleteDiagram)
		diagrams.POST("/:id/evaluate", h.EvaluateDiagram)
		diagrams.GET("/:id/topology", h.DiagramTopology)
	}
}

// logger returns the handler logger tagged with the request ID.
func (h *Handler) logger(c *gin.Context) logging.Logger {
	if id := c.GetString(requestIDKey); id != "" {
		return h.log.With(logging.RequestID(id))
	}
	return h.log
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz pings every dependency and reports the ones that failed.
func (h *Handler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		h.logger(c).Warn("readiness check failed", logging.Any("failed", failed))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
