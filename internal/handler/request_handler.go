package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/registro-academico-api/internal/dto"
	"github.com/noah-isme/registro-academico-api/internal/models"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
	"github.com/noah-isme/registro-academico-api/pkg/response"
)

type requestService interface {
	Submit(ctx context.Context, req dto.CreateRequestRequest, actor *models.JWTClaims) (*models.ChangeRequest, error)
	List(ctx context.Context, query dto.RequestQuery, actor *models.JWTClaims) ([]models.ChangeRequest, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ChangeRequest, error)
	Decide(ctx context.Context, id string, req dto.DecideRequest, actor *models.JWTClaims) (*models.ChangeRequest, error)
}

type receiptService interface {
	SignedURL(request *models.ChangeRequest) (string, time.Time, error)
}

// RequestHandler exposes REST endpoints for the change request workflow.
type RequestHandler struct {
	service  requestService
	receipts receiptService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service requestService, receipts receiptService) *RequestHandler {
	return &RequestHandler{service: service, receipts: receipts}
}

// Create godoc
// @Summary Submit a change request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.Submit(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, request, nil)
}

// List godoc
// @Summary List change requests
// @Tags Requests
// @Produce json
// @Param status query string false "Request status"
// @Param kind query string false "Request kind"
// @Param studentId query string false "Student ID (reviewers only)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.RequestQuery{
		StudentID: strings.TrimSpace(c.Query("studentId")),
	}
	if raw := c.Query("status"); raw != "" {
		query.Status = models.RequestStatus(strings.ToUpper(raw))
	}
	if raw := c.Query("kind"); raw != "" {
		query.Kind = models.RequestKind(strings.ToUpper(raw))
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	requests, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get change request detail
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Decide godoc
// @Summary Decide a change request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.DecideRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/decision [post]
func (h *RequestHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}
	request, err := h.service.Decide(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// ReceiptURL godoc
// @Summary Get a signed download URL for the request receipt
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/receipt [get]
func (h *RequestHandler) ReceiptURL(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if h.receipts == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "receipts not configured"))
		return
	}
	request, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	token, expiresAt, err := h.receipts.SignedURL(request)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"url":        "/api/v1/receipts/download?token=" + token,
		"expires_at": expiresAt,
	}, nil)
}
