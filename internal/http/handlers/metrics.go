package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scalara/backend/internal/domain/metrics"
	"github.com/scalara/backend/internal/graph"
)

type MetricsService interface {
	NetWorth(ctx context.Context, personID int64) (*metrics.NetWorthResult, error)
	Borrowable(ctx context.Context, personID int64) (*metrics.BorrowableResult, error)
}

type MetricsHandler struct {
	service MetricsService
}

func NewMetricsHandler(service MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

func (h *MetricsHandler) NetWorth(c *gin.Context) {
	personID, ok := personIDParam(c)
	if !ok {
		return
	}
	out, err := h.service.NetWorth(c.Request.Context(), personID)
	if err != nil {
		writeMetricError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MetricsHandler) Borrowable(c *gin.Context) {
	personID, ok := personIDParam(c)
	if !ok {
		return
	}
	out, err := h.service.Borrowable(c.Request.Context(), personID)
	if err != nil {
		writeMetricError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func personIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_person_id"})
		return 0, false
	}
	return id, true
}

func writeMetricError(c *gin.Context, err error) {
	var verr *metrics.ValidationError
	switch {
	case errors.Is(err, graph.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "person_not_found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation_error",
			"field":   verr.Field,
			"message": verr.Message,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "metric_lookup_failed"})
	}
}
