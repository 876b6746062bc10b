package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Receipt holds the fields rendered into a decision constancia PDF.
type Receipt struct {
	ReceiptCode   string
	StudentName   string
	StudentCode   string
	Faculty       string
	Kind          string
	SourceGroup   string
	TargetGroup   string
	Status        string
	ReviewerNotes string
	SubmittedAt   time.Time
	DecidedAt     time.Time
}

// ReceiptRenderer renders decision receipts as PDF documents.
type ReceiptRenderer struct{}

// NewReceiptRenderer constructs a receipt renderer.
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render produces the constancia document for a decided request.
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.ReceiptCode == "" {
		return nil, fmt.Errorf("receipt code required")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "CONSTANCIA DE SOLICITUD", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Radicado %s", receipt.ReceiptCode), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Estudiante", fmt.Sprintf("%s (%s)", receipt.StudentName, receipt.StudentCode)},
		{"Facultad", receipt.Faculty},
		{"Tipo de solicitud", receipt.Kind},
		{"Grupo origen", receipt.SourceGroup},
		{"Grupo destino", receipt.TargetGroup},
		{"Estado", receipt.Status},
		{"Radicada", receipt.SubmittedAt.Format("2006-01-02 15:04")},
		{"Decidida", receipt.DecidedAt.Format("2006-01-02 15:04")},
	}

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(130, 8, row[1], "1", 1, "", false, 0, "")
	}

	if receipt.ReviewerNotes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 8, "Observaciones", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, receipt.ReviewerNotes, "1", "", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
