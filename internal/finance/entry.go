// Package finance holds the branch accounting rules: splitting branch entries
// into loans and payments, branch summaries, the cross-branch dashboard and
// customer ledgers. Everything here is pure; callers fetch the data.
package finance

import (
	"strings"

	"finance-console/internal/models"
)

// Base is what loans and payments have in common.
type Base struct {
	ID       string      `json:"id"`
	Branch   string      `json:"branch"`
	Customer string      `json:"customer"`
	Date     models.Date `json:"date"`
}

// Loan is a BranchEntry whose place is anything but "Payment".
type Loan struct {
	Base
	Place     string        `json:"place"`
	Mobile    string        `json:"mobile"`
	Principal models.Amount `json:"loan"`
	Interest  models.Amount `json:"interest"`
	EMI       models.Amount `json:"emi"`
}

// Payment is a BranchEntry with place "Payment"; the amount paid travels in
// the loan field on the wire.
type Payment struct {
	Base
	Mobile string        `json:"mobile"`
	Amount models.Amount `json:"amount"`
}

func baseOf(e models.BranchEntry) Base {
	return Base{ID: e.ID, Branch: e.Branch, Customer: e.Customer, Date: e.Date}
}

func loanOf(e models.BranchEntry) Loan {
	return Loan{
		Base:      baseOf(e),
		Place:     e.Place,
		Mobile:    e.Mobile,
		Principal: e.Loan,
		Interest:  e.Interest,
		EMI:       e.EMI,
	}
}

func paymentOf(e models.BranchEntry) Payment {
	return Payment{Base: baseOf(e), Mobile: e.Mobile, Amount: e.Loan}
}

// Split partitions entries into loans and payments, keeping input order.
func Split(entries []models.BranchEntry) ([]Loan, []Payment) {
	loans := make([]Loan, 0, len(entries))
	payments := make([]Payment, 0)
	for _, e := range entries {
		if e.IsPayment() {
			payments = append(payments, paymentOf(e))
			continue
		}
		loans = append(loans, loanOf(e))
	}
	return loans, payments
}

// Entry converts a loan back to its wire shape.
func (l Loan) Entry() models.BranchEntry {
	return models.BranchEntry{
		ID:       l.ID,
		Branch:   models.BranchKey(l.Branch),
		Customer: l.Customer,
		Place:    l.Place,
		Mobile:   l.Mobile,
		Loan:     l.Principal,
		Interest: l.Interest,
		EMI:      l.EMI,
		Date:     l.Date,
	}
}

// Entry converts a payment back to its wire shape: place "Payment", zero
// interest and EMI, and the placeholder mobile when none was captured.
func (p Payment) Entry() models.BranchEntry {
	mobile := strings.TrimSpace(p.Mobile)
	if mobile == "" {
		mobile = models.PlaceholderMobile
	}
	return models.BranchEntry{
		ID:       p.ID,
		Branch:   models.BranchKey(p.Branch),
		Customer: p.Customer,
		Place:    models.PaymentPlace,
		Mobile:   mobile,
		Loan:     p.Amount,
		Date:     p.Date,
	}
}

// ForBranch keeps the entries filed under branch, compared case-insensitively.
func ForBranch(entries []models.BranchEntry, branch string) []models.BranchEntry {
	out := make([]models.BranchEntry, 0, len(entries))
	for _, e := range entries {
		if models.SameBranch(e.Branch, branch) {
			out = append(out, e)
		}
	}
	return out
}
