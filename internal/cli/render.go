package cli

import (
	"fmt"
	"io"
	"strings"

	"ledger-backend/internal/daybook"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func amount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

func signed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.IsNegative() {
		return negStyle.Render(s)
	}
	return s
}

func row(desc, voucher, credit, debit string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		descCol.Render(desc),
		voucherCol.Render(voucher),
		amountCol.Render(credit),
		amountCol.Render(debit),
	)
}

// Render prints a range the way it is laid out in the export: one block per
// day with its section headers and totals.
func Render(w io.Writer, r daybook.RangeSummary) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Daybook %s to %s",
		r.From.Format("02-01-2006"), r.To.Format("02-01-2006"))))
	fmt.Fprintf(w, "Opening cash in hand: %s\n", signed(r.OpeningCashInHand))

	rule := mutedStyle.Render(strings.Repeat("-", 84))
	for _, day := range r.Days {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render(day.Date.Format("Monday, 02-01-2006")))
		fmt.Fprintln(w, mutedStyle.Render(row("Description", "Voucher", "Credit", "Debit")))

		headers := daybook.Sections(day.Entries)
		for i, e := range day.Entries {
			if s, ok := headers[i]; ok {
				fmt.Fprintln(w, sectionStyle.Render(string(s)))
			}
			fmt.Fprintln(w, row(e.Description, e.Voucher, amount(e.Credit), amount(e.Debit)))
		}
		fmt.Fprintln(w, rule)
		fmt.Fprintln(w, totalStyle.Render(row("Total", "", day.TotalCredit.StringFixed(2), day.TotalDebit.StringFixed(2))))
		fmt.Fprintf(w, "Closing cash in hand: %s\n", signed(day.ClosingCashInHand))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, totalStyle.Render(row("Range total", "", r.TotalCredit.StringFixed(2), r.TotalDebit.StringFixed(2))))
	fmt.Fprintf(w, "Final cash in hand: %s\n", signed(r.FinalCashInHand))
}
