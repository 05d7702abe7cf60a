package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-console/internal/models"
)

func amt(v int64) models.Amount { return models.AmountFromInt(v) }

func day(d int) models.Date { return models.NewDate(2024, time.January, d) }

func loan(branch, customer string, principal, interest, emi int64, d int) models.BranchEntry {
	return models.BranchEntry{
		Branch:   branch,
		Customer: customer,
		Place:    "Kothrud",
		Mobile:   "9876543210",
		Loan:     amt(principal),
		Interest: amt(interest),
		EMI:      amt(emi),
		Date:     day(d),
	}
}

func payment(branch, customer string, amount int64, d int) models.BranchEntry {
	return models.BranchEntry{
		Branch:   branch,
		Customer: customer,
		Place:    models.PaymentPlace,
		Mobile:   models.PlaceholderMobile,
		Loan:     amt(amount),
		Date:     day(d),
	}
}

func assertAmount(t *testing.T, want int64, got models.Amount, msg string) {
	t.Helper()
	assert.True(t, got.Equal(amt(want).Decimal), "%s: want %d, got %s", msg, want, got.String())
}

func TestSplit(t *testing.T) {
	entries := []models.BranchEntry{
		loan("pune", "Ravi", 10000, 500, 1000, 1),
		payment("pune", "Ravi", 3000, 2),
		loan("pune", "Asha", 2000, 100, 200, 3),
	}
	loans, payments := Split(entries)
	require.Len(t, loans, 2)
	require.Len(t, payments, 1)
	assert.Equal(t, "Ravi", loans[0].Customer)
	assert.Equal(t, "Asha", loans[1].Customer)
	assertAmount(t, 3000, payments[0].Amount, "payment amount")
}

func TestPaymentEntry(t *testing.T) {
	p := Payment{Base: Base{Branch: "Pune", Customer: "Ravi", Date: day(5)}, Amount: amt(3000)}
	e := p.Entry()
	assert.Equal(t, "pune", e.Branch)
	assert.Equal(t, models.PaymentPlace, e.Place)
	assert.Equal(t, models.PlaceholderMobile, e.Mobile)
	assert.True(t, e.Interest.IsZero())
	assert.True(t, e.EMI.IsZero())
	assertAmount(t, 3000, e.Loan, "loan field")

	p.Mobile = "9123456780"
	assert.Equal(t, "9123456780", p.Entry().Mobile)
}

func TestSummarize(t *testing.T) {
	entries := []models.BranchEntry{
		loan("pune", "Ravi", 10000, 500, 1000, 1),
		payment("Pune", "Ravi", 3000, 2),
		loan("mumbai", "Kiran", 9999, 1, 1, 1),
	}
	expenses := []models.Expense{
		{Branch: "pune", Category: "Rent", Amount: amt(1200)},
		{Branch: "mumbai", Category: "Rent", Amount: amt(400)},
	}
	employeeExpenses := []models.EmployeeExpense{
		{Branch: "PUNE", EmployeeName: "Sunil", Category: "Salary", Amount: amt(800)},
	}

	s := Summarize("Pune", entries, expenses, employeeExpenses)
	assert.Equal(t, "pune", s.Branch)
	assert.Equal(t, 1, s.LoanCount)
	assert.Equal(t, 1, s.PaymentCount)
	assert.Equal(t, 1, s.UniqueCustomers)
	assertAmount(t, 10000, s.TotalLoan, "total loan")
	assertAmount(t, 500, s.TotalInterest, "total interest")
	assertAmount(t, 1000, s.TotalEMI, "total emi")
	assertAmount(t, 3000, s.TotalPayments, "total payments")
	assertAmount(t, 1200, s.BranchExpenses, "branch expenses")
	assertAmount(t, 800, s.EmployeeCosts, "employee costs")
	assertAmount(t, 2000, s.TotalExpenses, "total expenses")
	assertAmount(t, 1000, s.Net, "net")
	assert.Equal(t, BandProfit, s.Band)
}

func TestUniqueCustomers(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.BranchEntry
		want    int
	}{
		{"no entries", nil, 0},
		{"payments only", []models.BranchEntry{payment("pune", "Ravi", 100, 1)}, 0},
		{"repeat borrower", []models.BranchEntry{
			loan("pune", "Ravi", 100, 0, 0, 1),
			loan("pune", "Ravi", 200, 0, 0, 2),
		}, 1},
		{"blank names ignored", []models.BranchEntry{
			loan("pune", "", 100, 0, 0, 1),
			loan("pune", "Asha", 100, 0, 0, 1),
		}, 1},
		{"names are case sensitive", []models.BranchEntry{
			loan("pune", "ravi", 100, 0, 0, 1),
			loan("pune", "Ravi", 100, 0, 0, 1),
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loans, _ := Split(tt.entries)
			assert.Equal(t, tt.want, UniqueCustomers(loans))
		})
	}
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, BandProfit, BandFor(amt(0)))
	assert.Equal(t, BandProfit, BandFor(amt(1)))
	assert.Equal(t, BandLoss, BandFor(amt(-1)))
}

func TestBuildDashboardDropsDeletedBranches(t *testing.T) {
	branches := []models.Branch{{ID: "b1", Name: "Pune"}, {ID: "b2", Name: "Nashik"}}
	entries := []models.BranchEntry{
		loan("pune", "Ravi", 10000, 500, 1000, 1),
		loan("Nashik", "Asha", 5000, 250, 500, 1),
		loan("nashik", "Ravi", 1000, 50, 100, 2),
		payment("pune", "Ravi", 3000, 3),
		loan("mumbai", "Kiran", 7000, 350, 700, 1),
		payment("mumbai", "Kiran", 700, 2),
	}

	d := BuildDashboard(branches, entries)
	assert.Equal(t, 2, d.TotalBranches)
	assert.Equal(t, 2, d.Discarded)
	assert.Equal(t, 3, d.TotalLoans)
	// Ravi borrows at both branches and is counted once per branch.
	assert.Equal(t, 3, d.TotalCustomers)
	assertAmount(t, 16000, d.TotalLoan, "total loan")
	assertAmount(t, 800, d.TotalInterest, "total interest")
	assertAmount(t, 3000, d.TotalPayments, "total payments")

	require.Len(t, d.Branches, 2)
	assert.Equal(t, "pune", d.Branches[0].Key)
	assert.Equal(t, "b2", d.Branches[1].ID)
	assert.Equal(t, 2, d.Branches[1].Loans)
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{
		1:  "1st",
		2:  "2nd",
		3:  "3rd",
		4:  "4th",
		11: "11th",
		12: "12th",
		21: "21th",
		22: "22th",
	}
	for n, want := range tests {
		assert.Equal(t, want, Ordinal(n))
	}
}

func TestCustomerLedger(t *testing.T) {
	entries := []models.BranchEntry{
		loan("pune", "Ravi", 10000, 500, 1000, 10),
		payment("pune", "Ravi", 3000, 12),
	}

	l := CustomerLedger("Pune", "Ravi", entries)
	require.Len(t, l.Loans, 1)
	assert.Equal(t, "1st Loan", l.Loans[0].Label)
	assertAmount(t, 10000, l.TotalLoan, "total loan")
	assertAmount(t, 500, l.TotalInterest, "total interest")
	assertAmount(t, 3000, l.TotalPaid, "total paid")
	assertAmount(t, 7500, l.BalanceDue, "balance due")
	assert.Equal(t, StatusDue, l.Status)
}

func TestCustomerLedgerOrdering(t *testing.T) {
	entries := []models.BranchEntry{
		loan("pune", "Ravi", 300, 0, 0, 20),
		loan("pune", "Ravi", 100, 0, 0, 5),
		loan("pune", "ravi", 999, 0, 0, 1),
		loan("nashik", "Ravi", 999, 0, 0, 1),
		loan("pune", "Ravi", 200, 0, 0, 5),
	}

	l := CustomerLedger("pune", "Ravi", entries)
	require.Len(t, l.Loans, 3)
	assertAmount(t, 100, l.Loans[0].Principal, "first")
	assertAmount(t, 200, l.Loans[1].Principal, "second keeps input order on tie")
	assertAmount(t, 300, l.Loans[2].Principal, "third")
	assert.Equal(t, "3rd Loan", l.Loans[2].Label)
}

func TestCustomerLedgerOverpaid(t *testing.T) {
	entries := []models.BranchEntry{
		loan("pune", "Ravi", 1000, 100, 100, 1),
		payment("pune", "Ravi", 1500, 2),
	}

	l := CustomerLedger("pune", "Ravi", entries)
	assertAmount(t, -400, l.TotalDue, "total due")
	assertAmount(t, 400, l.BalanceDue, "balance due")
	assert.Equal(t, StatusOverpaid, l.Status)

	entries = append(entries, loan("pune", "Ravi", 400, 0, 0, 3))
	l = CustomerLedger("pune", "Ravi", entries)
	assert.Equal(t, StatusSettled, l.Status)
}

func TestCustomers(t *testing.T) {
	entries := []models.BranchEntry{
		loan("pune", "Ravi", 10000, 500, 1000, 1),
		loan("pune", "Asha", 2000, 100, 200, 2),
		payment("pune", "Ravi", 3000, 3),
		payment("pune", "Ghost", 50, 3),
		loan("pune", "Ravi", 1000, 50, 100, 4),
	}

	got := Customers("pune", entries)
	require.Len(t, got, 2)
	assert.Equal(t, "Ravi", got[0].Name)
	assert.Equal(t, 2, got[0].Loans)
	assertAmount(t, 11000, got[0].TotalLoan, "ravi loan")
	assertAmount(t, 8550, got[0].TotalDue, "ravi due")
	assert.Equal(t, "Asha", got[1].Name)
	assert.True(t, got[1].TotalPaid.IsZero())
}

func TestGroupEmployeeExpenses(t *testing.T) {
	employees := []models.Employee{{ID: "e1", Name: "Sunil"}, {ID: "e2", Name: "Meena"}}
	rows := []models.EmployeeExpense{
		{ID: "x1", EmployeeName: "Sunil", Category: "Travel", Amount: amt(100)},
		{ID: "x2", EmployeeName: "Raj", Category: "Travel", Amount: amt(70)},
		{ID: "x3", EmployeeName: "Sunil", Category: "Tea & Snacks", Amount: amt(30)},
	}

	groups := GroupEmployeeExpenses(employees, rows)
	require.Len(t, groups, 3)

	assert.Equal(t, "Sunil", groups[0].EmployeeName)
	assert.False(t, groups[0].Orphaned)
	require.NotNil(t, groups[0].Employee)
	assert.Equal(t, "e1", groups[0].Employee.ID)
	assert.Len(t, groups[0].Rows, 2)
	assertAmount(t, 130, groups[0].Total, "sunil total")

	assert.Equal(t, "Meena", groups[1].EmployeeName)
	assert.Empty(t, groups[1].Rows)
	assert.Equal(t, "e2", groups[1].Employee.ID)

	assert.Equal(t, "Raj", groups[2].EmployeeName)
	assert.True(t, groups[2].Orphaned)
	assert.Nil(t, groups[2].Employee)
	assertAmount(t, 70, groups[2].Total, "raj total")
}

func TestExpenseBreakdown(t *testing.T) {
	expenses := []models.Expense{
		{Category: "Rent", Amount: amt(1000), Month: "January 2024"},
		{Category: "Petrol", Amount: amt(200), Date: models.NewDate(2024, time.February, 3)},
		{Category: "Rent", Amount: amt(1000), Month: "February 2024"},
	}
	employeeExpenses := []models.EmployeeExpense{
		{Category: "Petrol", Amount: amt(50)},
		{Category: "Salary", Amount: amt(5000)},
	}

	b := ExpenseBreakdown(expenses, employeeExpenses)
	require.Len(t, b.Categories, 3)
	assert.Equal(t, "Rent", b.Categories[0].Category)
	assertAmount(t, 2000, b.Categories[0].Total, "rent")
	assertAmount(t, 200, b.Categories[1].BranchExpenses, "petrol branch")
	assertAmount(t, 50, b.Categories[1].EmployeeExpenses, "petrol employee")
	assertAmount(t, 250, b.Categories[1].Total, "petrol")
	assert.Equal(t, "Salary", b.Categories[2].Category)

	require.Len(t, b.Months, 2)
	assert.Equal(t, "January 2024", b.Months[0].Month)
	assertAmount(t, 1000, b.Months[0].Total, "january")
	assertAmount(t, 1200, b.Months[1].Total, "february")
	assertAmount(t, 7250, b.Total, "total")
}
