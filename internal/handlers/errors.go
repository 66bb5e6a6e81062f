package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NREL/CoolerChips/internal/failurerate"
	"github.com/NREL/CoolerChips/internal/lifecycle"
	"github.com/NREL/CoolerChips/internal/models"
	"github.com/NREL/CoolerChips/internal/rbd"
	"github.com/NREL/CoolerChips/internal/topology"
)

// classify maps an error to an HTTP status and a stable machine-readable kind.
func classify(err error) (int, string) {
	var (
		unknown   *rbd.UnknownComponentError
		invalid   *rbd.InvalidComponentError
		noRoot    *rbd.NoRootError
		multiRoot *rbd.MultipleRootsError
		cycle     *rbd.CycleError
		notSP     *rbd.NotSeriesParallelError
		param     *failurerate.ParameterError
		item      *lifecycle.ParameterError
	)

	switch {
	case errors.As(err, &unknown):
		return http.StatusUnprocessableEntity, "unknown_component"
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, "invalid_component"
	case errors.As(err, &noRoot):
		return http.StatusUnprocessableEntity, "no_root"
	case errors.As(err, &multiRoot):
		return http.StatusUnprocessableEntity, "multiple_roots"
	case errors.As(err, &cycle):
		return http.StatusUnprocessableEntity, "cycle"
	case errors.As(err, &notSP):
		return http.StatusUnprocessableEntity, "not_series_parallel"
	case errors.Is(err, rbd.ErrEmptyNetwork):
		return http.StatusUnprocessableEntity, "empty_network"
	case errors.As(err, &param), errors.As(err, &item),
		errors.Is(err, lifecycle.ErrInvalidInput), errors.Is(err, lifecycle.ErrTooManyEvents):
		return http.StatusUnprocessableEntity, "invalid_parameter"
	case errors.Is(err, models.ErrInvalidID):
		return http.StatusBadRequest, "invalid_id"
	case errors.Is(err, models.ErrNotFound), errors.Is(err, topology.ErrNotMirrored):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrUserExists):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// respondError writes {"error", "kind"} plus any extra fields. Internal
// errors are logged and their detail withheld from the client.
func (h *Handler) respondError(c *gin.Context, err error, extra gin.H) {
	status, kind := classify(err)
	body := gin.H{"error": err.Error(), "kind": kind}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		body["error"] = "Server error"
	}

	var multiRoot *rbd.MultipleRootsError
	if errors.As(err, &multiRoot) {
		body["roots"] = multiRoot.Roots
	}
	var cycle *rbd.CycleError
	if errors.As(err, &cycle) {
		cycles := make([]string, len(cycle.Cycles))
		for i, cy := range cycle.Cycles {
			cycles[i] = cy.String()
		}
		body["cycles"] = cycles
	}

	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "kind": "bad_request"})
}
