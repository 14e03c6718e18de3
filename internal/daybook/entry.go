// Package daybook builds the cash-in-hand daybook: for every calendar day in a
// range it lists purchases, supplies, receipts, payments and expenses as
// credit/debit entries and carries the closing cash forward to the next day.
package daybook

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind tags an Entry. It marshals as its snake_case name.
type EntryKind int

const (
	KindCashInHand EntryKind = iota
	KindPurchase
	KindPurchaseAC
	KindSupply
	KindSalesAC
	KindReceipt
	KindPayment
	KindExpense
)

var kindTags = [...]string{
	KindCashInHand: "cash_in_hand",
	KindPurchase:   "purchase",
	KindPurchaseAC: "purchase_ac",
	KindSupply:     "supply",
	KindSalesAC:    "sales_ac",
	KindReceipt:    "receipt",
	KindPayment:    "payment",
	KindExpense:    "expense",
}

func (k EntryKind) String() string {
	if k < 0 || int(k) >= len(kindTags) {
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
	return kindTags[k]
}

func (k EntryKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindTags) {
		return nil, fmt.Errorf("unknown entry kind %d", int(k))
	}
	return []byte(kindTags[k]), nil
}

func (k *EntryKind) UnmarshalText(b []byte) error {
	for i, tag := range kindTags {
		if tag == string(b) {
			*k = EntryKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown entry kind %q", string(b))
}

// Entry is one line of a day. Exactly one of Credit and Debit is non-zero,
// except for a zero opening balance.
type Entry struct {
	Kind        EntryKind
	Description string
	Credit      decimal.Decimal
	Debit       decimal.Decimal
	Voucher     string
	Date        time.Time
}

// DaySummary is one calendar day: its entries in display order and totals.
// ClosingCashInHand is TotalCredit minus TotalDebit.
type DaySummary struct {
	Date              time.Time
	Entries           []Entry
	OpeningCashInHand decimal.Decimal
	TotalCredit       decimal.Decimal
	TotalDebit        decimal.Decimal
	ClosingCashInHand decimal.Decimal
}

// RangeSummary is the daybook of an inclusive range of days. Its totals sum
// the day totals and FinalCashInHand is the last day's closing cash.
type RangeSummary struct {
	From              time.Time
	To                time.Time
	Days              []DaySummary
	OpeningCashInHand decimal.Decimal
	TotalCredit       decimal.Decimal
	TotalDebit        decimal.Decimal
	FinalCashInHand   decimal.Decimal
}
