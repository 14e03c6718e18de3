package daybook

// Section is a header printed above a run of entries of one kind.
type Section string

const (
	SectionPurchase Section = "PURCHASE"
	SectionSales    Section = "SALES"
	SectionReceipts Section = "RECEIPTS"
	SectionPayments Section = "PAYMENTS"
	SectionExpenses Section = "EXPENSES"
)

// SectionFor reports the header to print before an entry of kind cur that
// follows an entry of kind prev. Only the transitions below open a section,
// so a section without entries never gets a header and a header is printed
// once per run of entries.
//
//	purchase after cash_in_hand                     -> PURCHASE
//	supply   after purchase_ac, purchase, cash_in_hand -> SALES
//	receipt  after sales_ac                         -> RECEIPTS
//	payment  after receipt                          -> PAYMENTS
//	expense  after payment                          -> EXPENSES
func SectionFor(prev, cur EntryKind) (Section, bool) {
	switch cur {
	case KindPurchase:
		if prev == KindCashInHand {
			return SectionPurchase, true
		}
	case KindSupply:
		switch prev {
		case KindPurchaseAC, KindPurchase, KindCashInHand:
			return SectionSales, true
		}
	case KindReceipt:
		if prev == KindSalesAC {
			return SectionReceipts, true
		}
	case KindPayment:
		if prev == KindReceipt {
			return SectionPayments, true
		}
	case KindExpense:
		if prev == KindPayment {
			return SectionExpenses, true
		}
	}
	return "", false
}

// Sections maps entry index to the header that goes right before it.
func Sections(entries []Entry) map[int]Section {
	out := make(map[int]Section)
	for i := 1; i < len(entries); i++ {
		if s, ok := SectionFor(entries[i-1].Kind, entries[i].Kind); ok {
			out[i] = s
		}
	}
	return out
}
