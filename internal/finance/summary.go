package finance

import (
	"finance-console/internal/models"
)

type Band string

const (
	BandProfit Band = "profit"
	BandLoss   Band = "loss"
)

// Summary is the branch-level statistics card.
type Summary struct {
	Branch          string        `json:"branch"`
	LoanCount       int           `json:"loan_count"`
	PaymentCount    int           `json:"payment_count"`
	UniqueCustomers int           `json:"unique_customers"`
	TotalLoan       models.Amount `json:"total_loan"`
	TotalInterest   models.Amount `json:"total_interest"`
	TotalEMI        models.Amount `json:"total_emi"`
	TotalPayments   models.Amount `json:"total_payments"`
	BranchExpenses  models.Amount `json:"branch_expenses"`
	EmployeeCosts   models.Amount `json:"employee_expenses"`
	TotalExpenses   models.Amount `json:"total_expenses"`
	Net             models.Amount `json:"net"`
	Band            Band          `json:"band"`
}

// UniqueCustomers counts distinct non-empty customer names among loans.
// Payments never add customers.
func UniqueCustomers(loans []Loan) int {
	seen := make(map[string]struct{}, len(loans))
	for _, l := range loans {
		if l.Customer == "" {
			continue
		}
		seen[l.Customer] = struct{}{}
	}
	return len(seen)
}

func sumLoans(loans []Loan) (principal, interest, emi models.Amount) {
	for _, l := range loans {
		principal = principal.Plus(l.Principal)
		interest = interest.Plus(l.Interest)
		emi = emi.Plus(l.EMI)
	}
	return principal, interest, emi
}

func sumPayments(payments []Payment) models.Amount {
	var total models.Amount
	for _, p := range payments {
		total = total.Plus(p.Amount)
	}
	return total
}

func sumExpenses(expenses []models.Expense, branch string) models.Amount {
	var total models.Amount
	for _, e := range expenses {
		if models.SameBranch(e.Branch, branch) {
			total = total.Plus(e.Amount)
		}
	}
	return total
}

func sumEmployeeExpenses(rows []models.EmployeeExpense, branch string) models.Amount {
	var total models.Amount
	for _, e := range rows {
		if models.SameBranch(e.Branch, branch) {
			total = total.Plus(e.Amount)
		}
	}
	return total
}

// Summarize computes the branch card. Rows filed under other branches are
// ignored, so callers may pass unfiltered collections.
func Summarize(branch string, entries []models.BranchEntry, expenses []models.Expense, employeeExpenses []models.EmployeeExpense) Summary {
	key := models.BranchKey(branch)
	loans, payments := Split(ForBranch(entries, key))
	principal, interest, emi := sumLoans(loans)

	s := Summary{
		Branch:          key,
		LoanCount:       len(loans),
		PaymentCount:    len(payments),
		UniqueCustomers: UniqueCustomers(loans),
		TotalLoan:       principal,
		TotalInterest:   interest,
		TotalEMI:        emi,
		TotalPayments:   sumPayments(payments),
		BranchExpenses:  sumExpenses(expenses, key),
		EmployeeCosts:   sumEmployeeExpenses(employeeExpenses, key),
	}
	s.TotalExpenses = s.BranchExpenses.Plus(s.EmployeeCosts)
	s.Net = s.TotalPayments.Minus(s.TotalExpenses)
	s.Band = BandFor(s.Net)
	return s
}

// BandFor classifies a net figure; exactly zero counts as profit.
func BandFor(net models.Amount) Band {
	if net.IsNegative() {
		return BandLoss
	}
	return BandProfit
}
