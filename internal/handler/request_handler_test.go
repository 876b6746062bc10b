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
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
)

type requestServiceMock struct {
	submitted *dto.CreateRequestRequest
	submitErr error
	listQuery *dto.RequestQuery
	listResp  []models.ChangeRequest
	getResp   *models.ChangeRequest
	getErr    error
	decided   *dto.DecideRequest
	decideErr error
}

func (m *requestServiceMock) Submit(ctx context.Context, req dto.CreateRequestRequest, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	m.submitted = &req
	return &models.ChangeRequest{ID: "req-1", Kind: req.Kind, Status: models.RequestPending}, nil
}

func (m *requestServiceMock) List(ctx context.Context, query dto.RequestQuery, actor *models.JWTClaims) ([]models.ChangeRequest, error) {
	m.listQuery = &query
	return m.listResp, nil
}

func (m *requestServiceMock) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getResp, nil
}

func (m *requestServiceMock) Decide(ctx context.Context, id string, req dto.DecideRequest, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	m.decided = &req
	return &models.ChangeRequest{ID: id, Status: req.Status}, nil
}

type receiptServiceMock struct {
	token string
	err   error
}

func (m *receiptServiceMock) SignedURL(request *models.ChangeRequest) (string, time.Time, error) {
	if m.err != nil {
		return "", time.Time{}, m.err
	}
	return m.token, time.Now().Add(time.Hour), nil
}

func studentContext(w *httptest.ResponseRecorder) (*gin.Context, *gin.Engine) {
	c, r := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID:    "user-1",
		Role:      models.RoleEstudiante,
		FacultyID: "FING",
	})
	return c, r
}

func TestRequestHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &requestServiceMock{}
	h := NewRequestHandler(mock, nil)

	w := httptest.NewRecorder()
	c, _ := studentContext(w)
	body, _ := json.Marshal(dto.CreateRequestRequest{
		Kind:          models.RequestNewEnrollment,
		SubjectCode:   "FIS201",
		TargetGroupID: "group-2",
		Reason:        "necesito el grupo de la tarde",
	})
	req, _ := http.NewRequest(http.MethodPost, "/requests", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mock.submitted)
	assert.Equal(t, "FIS201", mock.submitted.SubjectCode)
}

func TestRequestHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRequestHandler(&requestServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := studentContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/requests", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestHandlerListParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &requestServiceMock{}
	h := NewRequestHandler(mock, nil)

	w := httptest.NewRecorder()
	c, _ := studentContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/requests?status=pending&kind=group_change&page=2&pageSize=10", nil)
	c.Request = req

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.listQuery)
	assert.Equal(t, models.RequestPending, mock.listQuery.Status)
	assert.Equal(t, models.RequestGroupChange, mock.listQuery.Kind)
	assert.Equal(t, 2, mock.listQuery.Page)
	assert.Equal(t, 10, mock.listQuery.PageSize)
}

func TestRequestHandlerDecidePropagatesError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &requestServiceMock{decideErr: appErrors.ErrGroupFull}
	h := NewRequestHandler(mock, nil)

	w := httptest.NewRecorder()
	c, _ := studentContext(w)
	body, _ := json.Marshal(dto.DecideRequest{Status: models.RequestApproved})
	req, _ := http.NewRequest(http.MethodPost, "/requests/req-1/decision", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	h.Decide(c)
	assert.Equal(t, appErrors.ErrGroupFull.Status, w.Code)
}

func TestRequestHandlerReceiptURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &requestServiceMock{getResp: &models.ChangeRequest{ID: "req-1", ReceiptCode: "SOL-2026-ABCDEF12"}}
	h := NewRequestHandler(mock, &receiptServiceMock{token: "tok123"})

	w := httptest.NewRecorder()
	c, _ := studentContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/requests/req-1/receipt", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	h.ReceiptURL(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Data["url"], "token=tok123")
}

func TestRequestHandlerReceiptURLWithoutReceipts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRequestHandler(&requestServiceMock{getResp: &models.ChangeRequest{ID: "req-1"}}, nil)

	w := httptest.NewRecorder()
	c, _ := studentContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/requests/req-1/receipt", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	h.ReceiptURL(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
