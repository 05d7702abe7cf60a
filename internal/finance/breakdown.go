package finance

import (
	"finance-console/internal/models"
)

type CategoryTotal struct {
	Category         string        `json:"category"`
	BranchExpenses   models.Amount `json:"branch_expenses"`
	EmployeeExpenses models.Amount `json:"employee_expenses"`
	Total            models.Amount `json:"total"`
}

type MonthTotal struct {
	Month string        `json:"month"`
	Total models.Amount `json:"total"`
}

type Breakdown struct {
	Categories []CategoryTotal `json:"categories"`
	Months     []MonthTotal    `json:"months"`
	Total      models.Amount   `json:"total"`
}

// ExpenseBreakdown totals a branch's expenses per category (both collections)
// and per informational month (branch expenses only; a blank month falls back
// to the expense date). Groups appear in first-seen order.
func ExpenseBreakdown(expenses []models.Expense, employeeExpenses []models.EmployeeExpense) Breakdown {
	b := Breakdown{Categories: []CategoryTotal{}, Months: []MonthTotal{}}
	catIndex := make(map[string]int)
	monthIndex := make(map[string]int)

	category := func(name string) *CategoryTotal {
		i, ok := catIndex[name]
		if !ok {
			i = len(b.Categories)
			catIndex[name] = i
			b.Categories = append(b.Categories, CategoryTotal{Category: name})
		}
		return &b.Categories[i]
	}

	for _, e := range expenses {
		c := category(e.Category)
		c.BranchExpenses = c.BranchExpenses.Plus(e.Amount)
		c.Total = c.Total.Plus(e.Amount)

		month := e.Month
		if month == "" {
			month = e.Date.MonthLabel()
		}
		i, ok := monthIndex[month]
		if !ok {
			i = len(b.Months)
			monthIndex[month] = i
			b.Months = append(b.Months, MonthTotal{Month: month})
		}
		b.Months[i].Total = b.Months[i].Total.Plus(e.Amount)
		b.Total = b.Total.Plus(e.Amount)
	}

	for _, e := range employeeExpenses {
		c := category(e.Category)
		c.EmployeeExpenses = c.EmployeeExpenses.Plus(e.Amount)
		c.Total = c.Total.Plus(e.Amount)
		b.Total = b.Total.Plus(e.Amount)
	}
	return b
}
