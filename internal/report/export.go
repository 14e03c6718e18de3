package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheet = "Statement"

func dateLabel(r *PartyReport) string {
	from, to := "All", "All"
	if !r.From.IsZero() {
		from = r.From.Format("2006-01-02")
	}
	if !r.To.IsZero() {
		to = r.To.AddDate(0, 0, -1).Format("2006-01-02")
	}
	return from + " to " + to
}

// WriteXLSX renders the statement with one row per line followed by its item
// breakdown, and the totals at the bottom.
func WriteXLSX(w io.Writer, r *PartyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][]any{
		{fmt.Sprintf("%s (%s)", r.Party.Name, r.Party.Grade)},
		{"Date range", dateLabel(r)},
		{},
		{"Date", "Description", "Voucher", "Credit", "Debit", "Balance", "Amount", "GST", "Line total"},
	}
	boldRows := map[int]bool{1: true, 4: true}

	for _, l := range r.Lines {
		credit, debit := any(""), any("")
		if l.Type == Credit {
			credit = l.Amount.Round(2).InexactFloat64()
		} else {
			debit = l.Amount.Round(2).InexactFloat64()
		}
		rows = append(rows, []any{
			l.Date.Format("02-01-2006"), l.Description, l.Voucher, credit, debit, l.Balance.Round(2).InexactFloat64(),
		})
		for _, it := range l.Items {
			rows = append(rows, []any{
				"", fmt.Sprintf("  %s %s kg x %s", it.ProductName, it.WeightKg.String(), it.PricePerKg.StringFixed(2)),
				"", "", "", "", it.Amount.Round(2).InexactFloat64(), it.GST.Round(2).InexactFloat64(), it.Total.Round(2).InexactFloat64(),
			})
		}
	}
	rows = append(rows, []any{}, []any{
		"", "Total", "", r.TotalCredit.Round(2).InexactFloat64(), r.TotalDebit.Round(2).InexactFloat64(), r.Balance.Round(2).InexactFloat64(),
	})
	boldRows[len(rows)] = true

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		if boldRows[i+1] {
			end, _ := excelize.CoordinatesToCellName(9, i+1)
			if err := f.SetCellStyle(sheet, cell, end, bold); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheet, "B", "B", 48); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
