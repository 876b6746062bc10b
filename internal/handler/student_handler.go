package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/registro-academico-api/internal/models"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
	"github.com/noah-isme/registro-academico-api/pkg/response"
)

type progressReader interface {
	Semaforo(ctx context.Context, studentID string) (*models.StudentSemaforo, error)
}

type studentDirectory interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

// StudentHandler serves the academic progress board.
type StudentHandler struct {
	progress progressReader
	students studentDirectory
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(progress progressReader, students studentDirectory) *StudentHandler {
	return &StudentHandler{progress: progress, students: students}
}

// MySemaforo godoc
// @Summary Academic progress board for the authenticated student
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/semaforo [get]
func (h *StudentHandler) MySemaforo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	student, err := h.students.FindByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "student profile not found"))
		return
	}
	board, err := h.progress.Semaforo(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}

// Semaforo godoc
// @Summary Academic progress board for a student
// @Description Reviewer view of a student's progress board
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/semaforo [get]
func (h *StudentHandler) Semaforo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	board, err := h.progress.Semaforo(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}
