package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/registro-academico-api/internal/dto"
	"github.com/noah-isme/registro-academico-api/internal/models"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
	"github.com/noah-isme/registro-academico-api/pkg/response"
)

type calendarService interface {
	Configure(ctx context.Context, facultyID string, req dto.ConfigureWindowRequest, actorID string) (*models.CalendarWindow, error)
	Windows(facultyID string, at time.Time) []dto.WindowItem
}

// CalendarHandler exposes the academic calendar configuration endpoints.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// Configure godoc
// @Summary Configure a calendar window
// @Description Set or replace the academic or submission window for the actor's faculty
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.ConfigureWindowRequest true "Window payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/windows [put]
func (h *CalendarHandler) Configure(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ConfigureWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid window payload"))
		return
	}
	window, err := h.service.Configure(c.Request.Context(), claims.FacultyID, req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window, nil)
}

// Windows godoc
// @Summary List configured calendar windows
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/windows [get]
func (h *CalendarHandler) Windows(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items := h.service.Windows(claims.FacultyID, time.Now())
	response.JSON(c, http.StatusOK, items, nil)
}
