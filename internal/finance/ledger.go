package finance

import (
	"sort"
	"strconv"

	"finance-console/internal/models"
)

type LedgerStatus string

const (
	StatusDue      LedgerStatus = "due"
	StatusOverpaid LedgerStatus = "overpaid"
	StatusSettled  LedgerStatus = "settled"
)

// LedgerLoan is a loan with its position among the customer's loans.
type LedgerLoan struct {
	Loan
	Seq   int    `json:"seq"`
	Label string `json:"label"` // "1st Loan"
}

type Ledger struct {
	Branch        string        `json:"branch"`
	Customer      string        `json:"customer"`
	Loans         []LedgerLoan  `json:"loans"`
	Payments      []Payment     `json:"payments"`
	TotalLoan     models.Amount `json:"total_loan"`
	TotalInterest models.Amount `json:"total_interest"`
	TotalPaid     models.Amount `json:"total_paid"`
	// TotalDue is signed: negative means the customer overpaid.
	TotalDue models.Amount `json:"total_due"`
	// BalanceDue is |TotalDue|, read together with Status.
	BalanceDue models.Amount `json:"balance_due"`
	Status     LedgerStatus  `json:"status"`
}

// Ordinal suffixes the literal number: 1st, 2nd, 3rd, everything else "th"
// (so 11th, 12th, but also 21th, 22th).
func Ordinal(n int) string {
	s := strconv.Itoa(n)
	switch n {
	case 1:
		return s + "st"
	case 2:
		return s + "nd"
	case 3:
		return s + "rd"
	default:
		return s + "th"
	}
}

// CustomerLedger builds the loan and payment history of one customer at one
// branch. Loans are ordered by date ascending (ties keep input order) and
// numbered from 1. The due balance is never clamped.
func CustomerLedger(branch, customer string, entries []models.BranchEntry) Ledger {
	key := models.BranchKey(branch)
	loans, payments := Split(ForBranch(entries, key))

	l := Ledger{
		Branch:   key,
		Customer: customer,
		Loans:    make([]LedgerLoan, 0),
		Payments: make([]Payment, 0),
	}

	mine := make([]Loan, 0, len(loans))
	for _, ln := range loans {
		if ln.Customer == customer {
			mine = append(mine, ln)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].Date.Before(mine[j].Date.Time)
	})
	for i, ln := range mine {
		seq := i + 1
		l.Loans = append(l.Loans, LedgerLoan{Loan: ln, Seq: seq, Label: Ordinal(seq) + " Loan"})
		l.TotalLoan = l.TotalLoan.Plus(ln.Principal)
		l.TotalInterest = l.TotalInterest.Plus(ln.Interest)
	}

	for _, p := range payments {
		if p.Customer == customer {
			l.Payments = append(l.Payments, p)
			l.TotalPaid = l.TotalPaid.Plus(p.Amount)
		}
	}

	l.TotalDue = l.TotalLoan.Plus(l.TotalInterest).Minus(l.TotalPaid)
	l.BalanceDue = l.TotalDue.AbsValue()
	switch {
	case l.TotalDue.IsNegative():
		l.Status = StatusOverpaid
	case l.TotalDue.IsZero():
		l.Status = StatusSettled
	default:
		l.Status = StatusDue
	}
	return l
}
