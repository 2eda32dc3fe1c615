// Package reports renders statements and debtor lists as PDF and XLSX
// documents for download.
package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"fuel-backend/internal/ledger"
)

// Content types of the rendered documents
const (
	PDFContentType  = "application/pdf"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func money(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func volume(f float64) string {
	if f == 0 {
		return ""
	}
	return fmt.Sprintf("%.0f", f)
}

// StatementPDF renders the statement on landscape A4: header, client
// block, one row per ledger line and a totals row.
func StatementPDF(st *ledger.Statement, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	title := "Statement of Account"
	if st.CompanyName != "" {
		title = st.CompanyName + " - " + title
	}
	pdf.CellFormat(277, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, fmt.Sprintf("Period: %s    Generated: %s", st.Period, generated.Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(277, 8, "Client", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(92, 7, "Name: "+st.ClientName, "LB", 0, "L", false, 0, "")
	pdf.CellFormat(92, 7, "Code: "+st.ClientCode, "B", 0, "L", false, 0, "")
	pdf.CellFormat(93, 7, "Phone: "+st.ClientPhone, "RB", 1, "L", false, 0, "")
	pdf.Ln(4)

	// date, description, 3 per category, total, paid, balance
	catW := 0.0
	if n := len(st.Categories); n > 0 {
		catW = 120.0 / float64(n*3)
	}
	descW := 277.0 - 24 - 120 - 3*26
	if len(st.Categories) == 0 {
		descW += 120
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(24, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(descW, 7, "Description", "1", 0, "C", true, 0, "")
	for _, c := range st.Categories {
		pdf.CellFormat(catW, 7, c+" Vol", "1", 0, "C", true, 0, "")
		pdf.CellFormat(catW, 7, c+" Price", "1", 0, "C", true, 0, "")
		pdf.CellFormat(catW, 7, c+" Amt", "1", 0, "C", true, 0, "")
	}
	pdf.CellFormat(26, 7, "Total", "1", 0, "C", true, 0, "")
	pdf.CellFormat(26, 7, "Paid", "1", 0, "C", true, 0, "")
	pdf.CellFormat(26, 7, "Balance", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, r := range st.Rows {
		pdf.CellFormat(24, 6, r.DateLabel, "1", 0, "C", false, 0, "")
		pdf.CellFormat(descW, 6, r.Description, "1", 0, "L", false, 0, "")
		for _, cell := range r.Cells {
			pdf.CellFormat(catW, 6, volume(cell.Volume), "1", 0, "R", false, 0, "")
			price := ""
			if cell.Price != 0 {
				price = money(cell.Price)
			}
			pdf.CellFormat(catW, 6, price, "1", 0, "R", false, 0, "")
			amt := ""
			if cell.Amount != 0 {
				amt = money(cell.Amount)
			}
			pdf.CellFormat(catW, 6, amt, "1", 0, "R", false, 0, "")
		}
		total, paid := "", ""
		if r.Total != 0 || r.Kind == ledger.KindOpening {
			total = money(r.Total)
		}
		if r.Paid != 0 {
			paid = money(r.Paid)
		}
		pdf.CellFormat(26, 6, total, "1", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, paid, "1", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, money(r.Balance), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(24+descW, 7, "Totals", "1", 0, "R", true, 0, "")
	for _, cell := range st.Totals.Cells {
		pdf.CellFormat(catW, 7, volume(cell.Volume), "1", 0, "R", true, 0, "")
		pdf.CellFormat(catW, 7, "", "1", 0, "R", true, 0, "")
		pdf.CellFormat(catW, 7, money(cell.Amount), "1", 0, "R", true, 0, "")
	}
	pdf.CellFormat(26, 7, money(st.Totals.TotalDebt), "1", 0, "R", true, 0, "")
	pdf.CellFormat(26, 7, money(st.Totals.TotalPaid), "1", 0, "R", true, 0, "")
	pdf.CellFormat(26, 7, money(st.Totals.Closing), "1", 1, "R", true, 0, "")
	pdf.Ln(4)

	if st.Totals.Closing > 0 {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(277, 9, "Closing balance: "+money(st.Totals.Closing), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render statement pdf: %w", err)
	}
	return buf.Bytes(), nil
}
