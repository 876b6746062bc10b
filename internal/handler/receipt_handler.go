package handler

import (
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
	"github.com/noah-isme/registro-academico-api/pkg/response"
)

type receiptOpener interface {
	OpenByToken(token string) (*os.File, error)
}

// ReceiptHandler serves rendered receipt PDFs through signed URLs.
// The token carries its own authentication, so the download route
// does not sit behind the JWT middleware.
type ReceiptHandler struct {
	receipts receiptOpener
}

// NewReceiptHandler constructs the handler.
func NewReceiptHandler(receipts receiptOpener) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// Download godoc
// @Summary Download a receipt PDF
// @Description Serve the receipt named by a signed token
// @Tags Receipts
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /receipts/download [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, err := h.receipts.OpenByToken(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
