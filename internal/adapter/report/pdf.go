// Package report renders expense reports as PDF documents.
package report

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

var columns = []struct {
	title string
	width float64
}{
	{"Date", 28},
	{"Description", 62},
	{"Category", 35},
	{"Type", 25},
	{"Amount", 30},
}

// PDFRenderer implements usecase.ReportRenderer with gofpdf.
type PDFRenderer struct {
	compress bool
}

// NewPDFRenderer creates a new PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{compress: true}
}

func (r *PDFRenderer) ContentType() string {
	return "application/pdf"
}

// Render writes report as a single A4 document: a title, one table row per
// transaction and the income, expense and balance totals.
func (r *PDFRenderer) Render(w io.Writer, report *usecase.ExpenseReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle(report.Title, true)
	pdf.SetAuthor(report.Username, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(report.Title))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(fmt.Sprintf("User: %s", report.Username)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	for _, t := range report.Transactions {
		cells := []string{
			t.Date.Format(domain.DateLayout),
			tr(truncate(t.Description, 40)),
			tr(truncate(t.Category, 20)),
			string(t.Type),
			money(t.Amount),
		}
		for i, c := range columns {
			align := "L"
			if i == len(columns)-1 {
				align = "R"
			}
			pdf.CellFormat(c.width, 7, cells[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(7)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	totals := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Total Income", report.Totals.Income},
		{"Total Expenses", report.Totals.Expense},
		{"Balance", report.Totals.Net()},
	}
	for _, t := range totals {
		pdf.CellFormat(60, 8, t.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, money(t.amount), "", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
