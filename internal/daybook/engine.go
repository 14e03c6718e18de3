package daybook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledger-backend/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const DefaultFetchTimeout = 10 * time.Second

// Engine computes daybooks from a Source. It keeps no state between calls.
type Engine struct {
	src     Source
	loc     *time.Location
	timeout time.Duration
}

type Option func(*Engine)

// WithLocation sets the time zone whose calendar days make up the daybook.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithFetchTimeout bounds the reads of the opening balance and of each day.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func New(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, loc: time.Local, timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the time zone the engine builds calendar days in.
func (e *Engine) Location() *time.Location { return e.loc }

// StartOfDay returns the first instant of t's calendar day in the engine's
// location. That is midnight, or the DST transition on days where midnight
// is skipped.
func (e *Engine) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(e.loc).Date()
	return e.dayStart(y, m, d)
}

// dayStart is the first instant of the civil date y-m-d. d may overflow the
// month.
func (e *Engine) dayStart(y int, m time.Month, d int) time.Time {
	y, m, d = time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, e.loc)
	if ty, tm, td := t.Date(); ty != y || tm != m || td != d {
		// midnight does not exist and time.Date went back into the previous
		// day; the day starts where that zone period ends
		if _, end := t.ZoneBounds(); !end.IsZero() {
			t = end
		}
	}
	return t
}

// nextDay is the first instant of the calendar day after day.
func (e *Engine) nextDay(day time.Time) time.Time {
	y, m, d := day.In(e.loc).Date()
	return e.dayStart(y, m, d+1)
}

// OpeningBalance is the cash in hand at the start of before's day: receipts
// minus payments minus expenses dated strictly before it. Purchases and
// supplies do not move cash and are not read.
func (e *Engine) OpeningBalance(ctx context.Context, before time.Time) (decimal.Decimal, error) {
	p := Before(e.StartOfDay(before))

	var receipts []models.Receipt
	var payments []models.Payment
	var expenses []models.Expense

	err := e.fetch(ctx, "opening balance", func(g *errgroup.Group, ctx context.Context) {
		g.Go(func() (err error) {
			receipts, err = e.src.Receipts(ctx, p)
			return wrap("receipts", err)
		})
		g.Go(func() (err error) {
			payments, err = e.src.Payments(ctx, p)
			return wrap("payments", err)
		})
		g.Go(func() (err error) {
			expenses, err = e.src.Expenses(ctx, p)
			return wrap("expenses", err)
		})
	})
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, r := range receipts {
		balance = balance.Add(r.Amount)
	}
	for _, pm := range payments {
		balance = balance.Sub(pm.PaidAmount)
	}
	for _, ex := range expenses {
		balance = balance.Sub(ex.Amount)
	}
	return balance, nil
}

// dayData is everything read for one day.
type dayData struct {
	purchases     []models.PurchaseTransaction
	purchaseItems map[uint][]models.PurchaseTransactionItem
	supplies      []models.SupplyTransaction
	supplyItems   map[uint][]models.SupplyTransactionItem
	receipts      []models.Receipt
	payments      []models.Payment
	expenses      []models.Expense
}

func (e *Engine) load(ctx context.Context, day time.Time) (*dayData, error) {
	p := Period{From: day, To: e.nextDay(day)}
	data := &dayData{}

	err := e.fetch(ctx, day.Format("2006-01-02"), func(g *errgroup.Group, ctx context.Context) {
		g.Go(func() error {
			purchases, err := e.src.Purchases(ctx, p)
			if err != nil {
				return wrap("purchases", err)
			}
			data.purchases = purchases
			if len(purchases) == 0 {
				return nil
			}
			ids := make([]uint, len(purchases))
			for i, pt := range purchases {
				ids[i] = pt.ID
			}
			items, err := e.src.PurchaseItems(ctx, ids)
			if err != nil {
				return wrap("purchase items", err)
			}
			data.purchaseItems = make(map[uint][]models.PurchaseTransactionItem, len(purchases))
			for _, it := range items {
				data.purchaseItems[it.PurchaseTransactionID] = append(data.purchaseItems[it.PurchaseTransactionID], it)
			}
			return nil
		})
		g.Go(func() error {
			supplies, err := e.src.Supplies(ctx, p)
			if err != nil {
				return wrap("supplies", err)
			}
			data.supplies = supplies
			if len(supplies) == 0 {
				return nil
			}
			ids := make([]uint, len(supplies))
			for i, st := range supplies {
				ids[i] = st.ID
			}
			items, err := e.src.SupplyItems(ctx, ids)
			if err != nil {
				return wrap("supply items", err)
			}
			data.supplyItems = make(map[uint][]models.SupplyTransactionItem, len(supplies))
			for _, it := range items {
				data.supplyItems[it.SupplyTransactionID] = append(data.supplyItems[it.SupplyTransactionID], it)
			}
			return nil
		})
		g.Go(func() (err error) {
			data.receipts, err = e.src.Receipts(ctx, p)
			return wrap("receipts", err)
		})
		g.Go(func() (err error) {
			data.payments, err = e.src.Payments(ctx, p)
			return wrap("payments", err)
		})
		g.Go(func() (err error) {
			data.expenses, err = e.src.Expenses(ctx, p)
			return wrap("expenses", err)
		})
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Day builds the entries and totals of date's calendar day starting from the
// given opening cash in hand.
func (e *Engine) Day(ctx context.Context, date time.Time, opening decimal.Decimal) (DaySummary, error) {
	day := e.StartOfDay(date)
	data, err := e.load(ctx, day)
	if err != nil {
		return DaySummary{}, err
	}
	return e.aggregate(day, opening, data), nil
}

func (e *Engine) aggregate(day time.Time, opening decimal.Decimal, data *dayData) DaySummary {
	entries := make([]Entry, 0, 3+len(data.purchases)+len(data.supplies)+
		len(data.receipts)+len(data.payments)+len(data.expenses))

	cash := Entry{Kind: KindCashInHand, Description: "Cash in Hand", Credit: decimal.Zero, Debit: decimal.Zero, Date: day}
	if opening.IsNegative() {
		cash.Debit = opening.Abs()
	} else {
		cash.Credit = opening
	}
	entries = append(entries, cash)

	purchaseSum := decimal.Zero
	for _, pt := range data.purchases {
		total := models.PurchaseTotal(pt, data.purchaseItems[pt.ID])
		if !total.IsPositive() {
			continue
		}
		purchaseSum = purchaseSum.Add(total)
		entries = append(entries, Entry{
			Kind:        KindPurchase,
			Description: fmt.Sprintf("%s (%s)", models.PartyName(pt.Party), pt.PurchaseVoucherNumber),
			Credit:      decimal.Zero,
			Debit:       total,
			Voucher:     pt.PurchaseVoucherNumber,
			Date:        e.StartOfDay(pt.CreatedAt),
		})
	}
	if purchaseSum.IsPositive() {
		entries = append(entries, Entry{
			Kind:        KindPurchaseAC,
			Description: "Purchase A/C Credit",
			Credit:      purchaseSum,
			Debit:       decimal.Zero,
			Date:        day,
		})
	}

	supplySum := decimal.Zero
	for _, st := range data.supplies {
		total := models.SupplyTotal(st, data.supplyItems[st.ID])
		if !total.IsPositive() {
			continue
		}
		supplySum = supplySum.Add(total)
		entries = append(entries, Entry{
			Kind:        KindSupply,
			Description: fmt.Sprintf("%s (%s)", models.PartyName(st.Party), st.Voucher()),
			Credit:      total,
			Debit:       decimal.Zero,
			Voucher:     st.Voucher(),
			Date:        e.StartOfDay(st.CreatedAt),
		})
	}
	if supplySum.IsPositive() {
		entries = append(entries, Entry{
			Kind:        KindSalesAC,
			Description: "Sales A/C Debit",
			Credit:      decimal.Zero,
			Debit:       supplySum,
			Date:        day,
		})
	}

	for _, r := range data.receipts {
		entries = append(entries, Entry{
			Kind:        KindReceipt,
			Description: fmt.Sprintf("Receipt - %s (%s)", models.PartyName(r.Party), r.ReceiptNumber),
			Credit:      r.Amount,
			Debit:       decimal.Zero,
			Voucher:     r.ReceiptNumber,
			Date:        e.StartOfDay(r.Date),
		})
	}
	for _, pm := range data.payments {
		entries = append(entries, Entry{
			Kind:        KindPayment,
			Description: fmt.Sprintf("Payment - %s (%s)", models.PartyName(pm.Party), pm.Mode),
			Credit:      decimal.Zero,
			Debit:       pm.PaidAmount,
			Voucher:     "-",
			Date:        e.StartOfDay(pm.Date),
		})
	}
	for _, ex := range data.expenses {
		entries = append(entries, Entry{
			Kind:        KindExpense,
			Description: fmt.Sprintf("Expense - %s (%s)", ex.PayTo, ex.VoucherNumber),
			Credit:      decimal.Zero,
			Debit:       ex.Amount,
			Voucher:     ex.VoucherNumber,
			Date:        e.StartOfDay(ex.Date),
		})
	}

	credit, debit := decimal.Zero, decimal.Zero
	for _, en := range entries {
		credit = credit.Add(en.Credit)
		debit = debit.Add(en.Debit)
	}

	return DaySummary{
		Date:              day,
		Entries:           entries,
		OpeningCashInHand: opening,
		TotalCredit:       credit,
		TotalDebit:        debit,
		ClosingCashInHand: credit.Sub(debit),
	}
}

// Generate builds the daybook for every calendar day in [from, to]. The
// first day opens with OpeningBalance; every later day opens with the
// previous day's closing cash, so days are computed one after another. Any
// error fails the whole range.
func (e *Engine) Generate(ctx context.Context, from, to time.Time) (RangeSummary, error) {
	first, last := e.StartOfDay(from), e.StartOfDay(to)
	if first.After(last) {
		return RangeSummary{}, &InvalidRangeError{From: first, To: last}
	}

	opening, err := e.OpeningBalance(ctx, first)
	if err != nil {
		return RangeSummary{}, err
	}

	out := RangeSummary{
		From:              first,
		To:                last,
		OpeningCashInHand: opening,
		TotalCredit:       decimal.Zero,
		TotalDebit:        decimal.Zero,
	}

	carry := opening
	for day := first; !day.After(last); day = e.nextDay(day) {
		if err := ctx.Err(); err != nil {
			return RangeSummary{}, err
		}
		summary, err := e.Day(ctx, day, carry)
		if err != nil {
			return RangeSummary{}, err
		}
		out.Days = append(out.Days, summary)
		out.TotalCredit = out.TotalCredit.Add(summary.TotalCredit)
		out.TotalDebit = out.TotalDebit.Add(summary.TotalDebit)
		carry = summary.ClosingCashInHand
	}
	out.FinalCashInHand = carry

	return out, nil
}

// fetch runs the reads registered by start concurrently under the fetch
// timeout and returns the first failure. Running past the deadline is a
// failure even when a read ignored its context and returned data. When ctx
// itself is done its error is returned as is.
func (e *Engine) fetch(ctx context.Context, what string, start func(g *errgroup.Group, ctx context.Context)) error {
	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(fetchCtx)
	start(g, gctx)
	err := g.Wait()

	// the caller gave up: its error, not a source failure
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		return &DataSourceError{Source: what, Err: fmt.Errorf("%w after %s: %w", ErrFetchTimeout, e.timeout, context.DeadlineExceeded)}
	}
	return err
}

func wrap(source string, err error) error {
	if err == nil {
		return nil
	}
	return &DataSourceError{Source: source, Err: err}
}
