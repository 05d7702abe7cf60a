package finance

import (
	"finance-console/internal/models"
)

// BranchCard is one branch's line on the global dashboard.
type BranchCard struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Key           string        `json:"key"`
	Customers     int           `json:"customers"`
	Loans         int           `json:"loans"`
	Payments      int           `json:"payments"`
	TotalLoan     models.Amount `json:"total_loan"`
	TotalInterest models.Amount `json:"total_interest"`
	TotalPayments models.Amount `json:"total_payments"`
}

type Dashboard struct {
	TotalBranches  int           `json:"total_branches"`
	TotalCustomers int           `json:"total_customers"`
	TotalLoans     int           `json:"total_loans"`
	TotalLoan      models.Amount `json:"total_loan"`
	TotalInterest  models.Amount `json:"total_interest"`
	TotalPayments  models.Amount `json:"total_payments"`
	// Discarded counts entries filed under a branch that is no longer in the
	// branch list.
	Discarded int          `json:"discarded"`
	Branches  []BranchCard `json:"branches"`
}

// BuildDashboard aggregates entries across the authoritative branch list.
// Entries whose branch matches no listed branch are dropped, so deleted
// branches never inflate the totals. Customers are counted per branch and
// summed.
func BuildDashboard(branches []models.Branch, entries []models.BranchEntry) Dashboard {
	byKey := make(map[string][]models.BranchEntry, len(branches))
	order := make([]string, 0, len(branches))
	info := make(map[string]models.Branch, len(branches))
	for _, b := range branches {
		key := b.Key()
		if _, dup := info[key]; dup {
			continue
		}
		info[key] = b
		order = append(order, key)
		byKey[key] = nil
	}

	d := Dashboard{Branches: make([]BranchCard, 0, len(order))}
	for _, e := range entries {
		key := models.BranchKey(e.Branch)
		if _, ok := info[key]; !ok {
			d.Discarded++
			continue
		}
		byKey[key] = append(byKey[key], e)
	}

	for _, key := range order {
		loans, payments := Split(byKey[key])
		principal, interest, _ := sumLoans(loans)
		card := BranchCard{
			ID:            info[key].ID,
			Name:          info[key].Name,
			Key:           key,
			Customers:     UniqueCustomers(loans),
			Loans:         len(loans),
			Payments:      len(payments),
			TotalLoan:     principal,
			TotalInterest: interest,
			TotalPayments: sumPayments(payments),
		}
		d.Branches = append(d.Branches, card)
		d.TotalCustomers += card.Customers
		d.TotalLoans += card.Loans
		d.TotalLoan = d.TotalLoan.Plus(card.TotalLoan)
		d.TotalInterest = d.TotalInterest.Plus(card.TotalInterest)
		d.TotalPayments = d.TotalPayments.Plus(card.TotalPayments)
	}
	d.TotalBranches = len(d.Branches)
	return d
}
