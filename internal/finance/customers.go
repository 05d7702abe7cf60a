package finance

import (
	"finance-console/internal/models"
)

// CustomerSummary is one row of the branch customer list.
type CustomerSummary struct {
	Name          string        `json:"name"`
	Mobile        string        `json:"mobile"`
	Place         string        `json:"place"`
	Loans         int           `json:"loans"`
	TotalLoan     models.Amount `json:"total_loan"`
	TotalInterest models.Amount `json:"total_interest"`
	TotalPaid     models.Amount `json:"total_paid"`
	TotalDue      models.Amount `json:"total_due"`
}

// Customers lists the branch's customers in first-loan order. Only names that
// hold at least one loan are listed; payments are attributed to them.
func Customers(branch string, entries []models.BranchEntry) []CustomerSummary {
	loans, payments := Split(ForBranch(entries, branch))

	out := make([]CustomerSummary, 0)
	index := make(map[string]int)
	for _, l := range loans {
		if l.Customer == "" {
			continue
		}
		i, ok := index[l.Customer]
		if !ok {
			i = len(out)
			index[l.Customer] = i
			out = append(out, CustomerSummary{Name: l.Customer})
		}
		c := &out[i]
		// later entries overwrite contact details
		c.Mobile = l.Mobile
		c.Place = l.Place
		c.Loans++
		c.TotalLoan = c.TotalLoan.Plus(l.Principal)
		c.TotalInterest = c.TotalInterest.Plus(l.Interest)
	}
	for _, p := range payments {
		if i, ok := index[p.Customer]; ok {
			out[i].TotalPaid = out[i].TotalPaid.Plus(p.Amount)
		}
	}
	for i := range out {
		out[i].TotalDue = out[i].TotalLoan.Plus(out[i].TotalInterest).Minus(out[i].TotalPaid)
	}
	return out
}
