package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registro-academico-api/internal/dto"
	"github.com/noah-isme/registro-academico-api/internal/middleware"
	"github.com/noah-isme/registro-academico-api/internal/models"
)

type calendarServiceMock struct {
	configured   *dto.ConfigureWindowRequest
	facultyID    string
	configureErr error
	windows      []dto.WindowItem
}

func (m *calendarServiceMock) Configure(ctx context.Context, facultyID string, req dto.ConfigureWindowRequest, actorID string) (*models.CalendarWindow, error) {
	if m.configureErr != nil {
		return nil, m.configureErr
	}
	m.configured = &req
	m.facultyID = facultyID
	return &models.CalendarWindow{
		ID:        "win-1",
		FacultyID: facultyID,
		Kind:      req.Kind,
	}, nil
}

func (m *calendarServiceMock) Windows(facultyID string, at time.Time) []dto.WindowItem {
	m.facultyID = facultyID
	return m.windows
}

func deanContext(w *httptest.ResponseRecorder) (*gin.Context, *gin.Engine) {
	c, r := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:    "user-dean",
		Role:      models.RoleDecano,
		FacultyID: "FING",
	})
	return c, r
}

func TestCalendarHandlerConfigure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &calendarServiceMock{}
	h := NewCalendarHandler(mock)

	w := httptest.NewRecorder()
	c, _ := deanContext(w)
	body, _ := json.Marshal(dto.ConfigureWindowRequest{
		Kind:      models.WindowSubmission,
		StartDate: "2026-01-15",
		EndDate:   "2026-01-30",
	})
	req, _ := http.NewRequest(http.MethodPut, "/calendar/windows", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Configure(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.configured)
	assert.Equal(t, "FING", mock.facultyID)
	assert.Equal(t, models.WindowSubmission, mock.configured.Kind)
}

func TestCalendarHandlerConfigureInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewCalendarHandler(&calendarServiceMock{})

	w := httptest.NewRecorder()
	c, _ := deanContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/calendar/windows", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Configure(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarHandlerConfigureUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewCalendarHandler(&calendarServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/calendar/windows", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Configure(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCalendarHandlerWindows(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &calendarServiceMock{windows: []dto.WindowItem{
		{Kind: models.WindowAcademic, StartDate: "2026-01-01", EndDate: "2026-06-30", Open: true},
	}}
	h := NewCalendarHandler(mock)

	w := httptest.NewRecorder()
	c, _ := deanContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/calendar/windows", nil)
	c.Request = req

	h.Windows(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FING", mock.facultyID)

	var envelope struct {
		Data []dto.WindowItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.True(t, envelope.Data[0].Open)
}
