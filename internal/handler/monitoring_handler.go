package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/registro-academico-api/internal/models"
	"github.com/noah-isme/registro-academico-api/internal/service"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
	"github.com/noah-isme/registro-academico-api/pkg/response"
)

type occupancyReporter interface {
	Occupancy(ctx context.Context, filter models.GroupFilter) (*service.OccupancyReport, error)
}

type metricsSnapshotter interface {
	Snapshot() models.SystemMetrics
}

// MonitoringHandler serves the dean's office occupancy dashboard
// and the aggregated system metrics snapshot.
type MonitoringHandler struct {
	occupancy occupancyReporter
	metrics   metricsSnapshotter
}

// NewMonitoringHandler constructs the handler.
func NewMonitoringHandler(occupancy occupancyReporter, metrics metricsSnapshotter) *MonitoringHandler {
	return &MonitoringHandler{occupancy: occupancy, metrics: metrics}
}

// Occupancy godoc
// @Summary Group occupancy report
// @Description Seat occupancy with alert levels for the actor's faculty
// @Tags Monitoring
// @Produce json
// @Param subjectCode query string false "Filter by subject code"
// @Success 200 {object} response.Envelope
// @Router /monitoring/occupancy [get]
func (h *MonitoringHandler) Occupancy(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.GroupFilter{
		FacultyID:   claims.FacultyID,
		SubjectCode: strings.TrimSpace(c.Query("subjectCode")),
	}
	report, err := h.occupancy.Occupancy(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Metrics godoc
// @Summary System metrics snapshot
// @Tags Monitoring
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /monitoring/metrics [get]
func (h *MonitoringHandler) Metrics(c *gin.Context) {
	if h.metrics == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "metrics not configured"))
		return
	}
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
