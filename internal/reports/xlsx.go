package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"fuel-backend/internal/ledger"
	"fuel-backend/internal/reconcile"
)

// Sheet names
const (
	StatementSheet = "Statement"
	DebtorsSheet   = "Debtors"
)

func newBook(sheet string) (*excelize.File, int, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, 0, err
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, bold, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func finish(f *excelize.File) ([]byte, error) {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StatementHeader is the column header row of the statement sheet.
func StatementHeader(categories []string) []interface{} {
	header := []interface{}{"Date", "Description"}
	for _, c := range categories {
		header = append(header, c+" Volume", c+" Price", c+" Amount")
	}
	return append(header, "Total", "Paid", "Balance")
}

// StatementXLSX writes the statement to a single sheet: a title block,
// the header, one row per ledger line and the totals.
func StatementXLSX(st *ledger.Statement) ([]byte, error) {
	f, bold, err := newBook(StatementSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create workbook: %w", err)
	}
	s := StatementSheet
	header := StatementHeader(st.Categories)

	rows := [][]interface{}{
		{st.CompanyName},
		{"Client", st.ClientName, "Code", st.ClientCode, "Phone", st.ClientPhone},
		{"Period", st.Period, "Opening balance", st.OpeningBalance},
		{},
		header,
	}
	for _, r := range st.Rows {
		line := []interface{}{r.DateLabel, r.Description}
		for _, c := range r.Cells {
			line = append(line, c.Volume, c.Price, c.Amount)
		}
		rows = append(rows, append(line, r.Total, r.Paid, r.Balance))
	}
	totals := []interface{}{"", "Totals"}
	for _, c := range st.Totals.Cells {
		totals = append(totals, c.Volume, "", c.Amount)
	}
	rows = append(rows, append(totals, st.Totals.TotalDebt, st.Totals.TotalPaid, st.Totals.Closing))

	for i, r := range rows {
		if err := setRow(f, s, i+1, r); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write statement row %d: %w", i+1, err)
		}
	}
	headerRow, totalsRow := 5, len(rows)
	for _, r := range []int{headerRow, totalsRow} {
		if err := styleRow(f, s, r, len(header), bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style statement: %w", err)
		}
	}
	_ = f.SetColWidth(s, "B", "B", 36)
	return finish(f)
}

// DebtorsHeader is the column header row of the debtors sheet.
var DebtorsHeader = []interface{}{
	"Client Code", "Name", "Phone", "Orders", "Total Debt", "Total Paid",
	"Amount Left", "Latest Due Date", "Debt Age", "Tag",
}

// DebtorsXLSX writes one row per debtor and a grand total.
func DebtorsXLSX(period string, debtors []reconcile.DebtorRow) ([]byte, error) {
	f, bold, err := newBook(DebtorsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create workbook: %w", err)
	}
	s := DebtorsSheet
	if err := setRow(f, s, 1, []interface{}{"Debtors", period}); err != nil {
		f.Close()
		return nil, err
	}
	if err := setRow(f, s, 2, DebtorsHeader); err != nil {
		f.Close()
		return nil, err
	}

	var debt, paid, left float64
	row := 3
	for _, d := range debtors {
		err := setRow(f, s, row, []interface{}{
			d.ClientCode, d.Name, d.Phone, d.OrderCount, d.TotalDebt, d.TotalPaid,
			d.AmountLeft, d.LatestDueDate, d.DebtAge, d.TagLabel,
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write debtor %s: %w", d.ClientCode, err)
		}
		debt += d.TotalDebt
		paid += d.TotalPaid
		left += d.AmountLeft
		row++
	}
	total := []interface{}{"", "Total", "", "", reconcile.Round2(debt), reconcile.Round2(paid), reconcile.Round2(left)}
	if err := setRow(f, s, row, total); err != nil {
		f.Close()
		return nil, err
	}
	for _, r := range []int{2, row} {
		if err := styleRow(f, s, r, len(DebtorsHeader), bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style debtors: %w", err)
		}
	}
	_ = f.SetColWidth(s, "B", "B", 28)
	return finish(f)
}
