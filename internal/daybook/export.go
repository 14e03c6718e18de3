package daybook

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Daybook"

var exportHeader = []any{"Date", "Description", "Voucher", "Credit", "Debit"}

// WriteXLSX renders a range as a single sheet workbook: one block per day
// with section headers, the day's totals and closing cash, and the range
// totals at the bottom.
func WriteXLSX(w io.Writer, r RangeSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}
	boldMoney, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return err
	}

	row := 1
	put := func(values []any, style int) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
		if style != 0 {
			end, _ := excelize.CoordinatesToCellName(len(exportHeader), row)
			if err := f.SetCellStyle(exportSheet, cell, end, style); err != nil {
				return err
			}
		}
		row++
		return nil
	}
	amountCells := func(style int) error {
		from, _ := excelize.CoordinatesToCellName(4, row-1)
		to, _ := excelize.CoordinatesToCellName(5, row-1)
		return f.SetCellStyle(exportSheet, from, to, style)
	}

	title := fmt.Sprintf("Daybook %s to %s", r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	if err := put([]any{title}, bold); err != nil {
		return err
	}
	if err := put([]any{"Opening cash in hand", "", "", cellTotal(r.OpeningCashInHand)}, 0); err != nil {
		return err
	}
	if err := amountCells(boldMoney); err != nil {
		return err
	}
	row++

	for _, d := range r.Days {
		if err := put([]any{d.Date.Format("02-01-2006")}, bold); err != nil {
			return err
		}
		if err := put(exportHeader, bold); err != nil {
			return err
		}
		sections := Sections(d.Entries)
		for i, e := range d.Entries {
			if s, ok := sections[i]; ok {
				if err := put([]any{"", string(s)}, bold); err != nil {
					return err
				}
			}
			if err := put([]any{
				e.Date.Format("02-01-2006"), e.Description, e.Voucher,
				cellAmount(e.Credit), cellAmount(e.Debit),
			}, 0); err != nil {
				return err
			}
			if err := amountCells(money); err != nil {
				return err
			}
		}
		if err := put([]any{"", "Total", "", cellTotal(d.TotalCredit), cellTotal(d.TotalDebit)}, 0); err != nil {
			return err
		}
		if err := amountCells(boldMoney); err != nil {
			return err
		}
		if err := put([]any{"", "Closing cash in hand", "", cellTotal(d.ClosingCashInHand)}, 0); err != nil {
			return err
		}
		if err := amountCells(boldMoney); err != nil {
			return err
		}
		row++
	}

	if err := put([]any{"", "Range total", "", cellTotal(r.TotalCredit), cellTotal(r.TotalDebit)}, 0); err != nil {
		return err
	}
	if err := amountCells(boldMoney); err != nil {
		return err
	}
	if err := put([]any{"", "Final cash in hand", "", cellTotal(r.FinalCashInHand)}, 0); err != nil {
		return err
	}
	if err := amountCells(boldMoney); err != nil {
		return err
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "B", "B", 44); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "C", "E", 14); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

// cellAmount is the value written to an amount cell. Zero amounts are left
// blank the way a printed daybook shows them.
func cellAmount(d decimal.Decimal) any {
	if d.IsZero() {
		return ""
	}
	return d.Round(2).InexactFloat64()
}

func cellTotal(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }
