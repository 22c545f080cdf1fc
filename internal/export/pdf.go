package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"fintrack/internal/core"
	"fintrack/internal/dashboard"
	"fintrack/internal/window"
)

// Report is everything printed in a PDF report.
type Report struct {
	Product      string
	Window       window.Window
	Generated    time.Time
	Summary      dashboard.Summary
	Transactions []core.Transaction
}

const (
	margin      = 40.0
	rowHeight   = 16.0
	generatedAt = "2006-01-02 15:04:05"
	dayLayout   = "Jan 2"
)

var txColumns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 70, "L"},
	{"Type", 70, "L"},
	{"Category", 100, "L"},
	{"Amount", 95, "R"},
	{"Description", 180, "L"},
}

// PDF renders an A4 report with totals, the category breakdown and every
// transaction of the window.
func PDF(r Report) ([]byte, error) {
	if len(r.Transactions) == 0 {
		return nil, ErrNothingToExport
	}
	product := r.Product
	if product == "" {
		product = "FinTrack"
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCreationDate(r.Generated)
	pdf.SetTitle(product+" - Expense Report", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 16)
	pdf.Text(margin, 50, tr(product+" - Expense Report"))
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(margin, 70, "Range: "+tr(r.Window.Description()))
	pdf.Text(margin, 86, "Generated: "+r.Generated.Format(generatedAt))

	s := r.Summary
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(margin, 110, "Total Income: "+FormatAmount(s.TotalIncome))
	pdf.Text(240, 110, "Total Expense: "+FormatAmount(s.TotalExpense))
	pdf.Text(440, 110, "Net: "+FormatAmount(s.NetBalance))

	pdf.SetXY(margin, 130)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(99, 102, 241)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(200, rowHeight, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(100, rowHeight, "Amount", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, c := range s.Categories {
		pdf.CellFormat(200, rowHeight, tr(c.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(100, rowHeight, FormatAmount(c.Amount), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(255, 255, 255)
	for i, col := range txColumns {
		ln := 0
		if i == len(txColumns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, rowHeight, col.title, "1", ln, col.align, true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, t := range r.Transactions {
		category := t.Category
		if category == "" {
			category = "-"
		}
		cells := []string{
			t.Date.Format(dayLayout),
			strings.ToUpper(string(t.Type)),
			tr(category),
			FormatAmount(t.Amount),
			tr(truncate(t.Description, 40)),
		}
		for i, col := range txColumns {
			ln := 0
			if i == len(txColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, rowHeight, cells[i], "1", ln, col.align, false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf report: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatAmount prints m with two decimals and comma thousands separators,
// ASCII only: 1234567.5 -> "1,234,567.50".
func FormatAmount(m core.Money) string {
	s := m.Decimal().Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if m.Cents < 0 {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
