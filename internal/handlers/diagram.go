package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NREL/CoolerChips/internal/auth"
	"github.com/NREL/CoolerChips/internal/logging"
	"github.com/NREL/CoolerChips/internal/models"
	"github.com/NREL/CoolerChips/internal/rbd"
	"github.com/NREL/CoolerChips/internal/validation"
)

func (h *Handler) ListDiagrams(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	diagrams, err := h.diagrams.List(ctx, auth.Username(c))
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, diagrams)
}

func (h *Handler) GetDiagram(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	d, err := h.diagrams.Get(ctx, auth.Username(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateDiagram(c *gin.Context) {
	var d models.Diagram
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := validation.Struct(d); err != nil {
		badRequest(c, err.Error())
		return
	}
	d.Owner = auth.Username(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.diagrams.Create(ctx, &d); err != nil {
		h.respondError(c, err, nil)
		return
	}
	h.syncMirror(ctx, c, &d)

	h.logger(c).Info("diagram created", logging.Diagram(d.ID.Hex()), logging.Int("edges", len(d.Edges)))
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDiagram(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		h.respondError(c, models.ErrInvalidID, nil)
		return
	}

	var d models.Diagram
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := validation.Struct(d); err != nil {
		badRequest(c, err.Error())
		return
	}
	d.ID = objectID
	d.Owner = auth.Username(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.diagrams.Update(ctx, &d); err != nil {
		h.respondError(c, err, nil)
		return
	}
	h.syncMirror(ctx, c, &d)

	saved, err := h.diagrams.Get(ctx, d.Owner, objectID.Hex())
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) DeleteDiagram(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.diagrams.Delete(ctx, auth.Username(c), id); err != nil {
		h.respondError(c, err, nil)
		return
	}
	if h.mirror != nil {
		if err := h.mirror.Delete(ctx, id); err != nil {
			h.logger(c).Warn("topology mirror delete failed", logging.Diagram(id), logging.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Diagram deleted"})
}

// EvaluateDiagram reduces a saved diagram and stores the result on it. The
// metric defaults to the diagram's calculation type, then Reliability; a
// metric query parameter overrides both.
func (h *Handler) EvaluateDiagram(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	owner, id := auth.Username(c), c.Param("id")
	d, err := h.diagrams.Get(ctx, owner, id)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	name := c.DefaultQuery("metric", d.CalculationType)
	if name == "" {
		name = rbd.Reliability.String()
	}
	metric, err := rbd.ParseMetric(name)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	policy, ok := h.cyclePolicy(c)
	if !ok {
		return
	}

	req := models.EvaluationRequest{Edges: d.Edges, NodeDetails: d.NodeDetails, CalculationType: metric.String()}
	log := h.logger(c).With(logging.Diagram(id))
	ev, err := h.evaluate(ctx, log, &req, metric, policy)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	if err := h.diagrams.SaveResult(ctx, owner, id, ev); err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// DiagramTopology returns the diagram as stored in the graph mirror.
func (h *Handler) DiagramTopology(c *gin.Context) {
	if h.mirror == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "topology mirror is not configured", "kind": "unavailable"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	id := c.Param("id")
	if _, err := h.diagrams.Get(ctx, auth.Username(c), id); err != nil {
		h.respondError(c, err, nil)
		return
	}

	graph, err := h.mirror.Graph(ctx, id)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, graph)
}

// syncMirror copies the diagram to the graph mirror. Failures leave the
// saved diagram intact and are only logged.
func (h *Handler) syncMirror(ctx context.Context, c *gin.Context, d *models.Diagram) {
	if h.mirror == nil {
		return
	}
	if err := h.mirror.Sync(ctx, d); err != nil {
		h.logger(c).Warn("topology mirror sync failed", logging.Diagram(d.ID.Hex()), logging.Error(err))
	}
}
