package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-console/internal/models"
)

func TestValidateMobile(t *testing.T) {
	tests := []struct {
		mobile string
		ok     bool
	}{
		{"9876543210", true},
		{"0000000000", true},
		{"987654321", false},
		{"98765432100", false},
		{"98765x3210", false},
		{"", false},
		{"९८७६५४३२१०", false},
	}
	for _, tt := range tests {
		t.Run(tt.mobile, func(t *testing.T) {
			err := ValidateMobile(tt.mobile)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateLoanCollectsAllProblems(t *testing.T) {
	err := ValidateLoan(models.BranchEntry{Place: models.PaymentPlace, Mobile: "123"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	fields := map[string]bool{}
	for _, fe := range Fields(err) {
		fields[fe.Field] = true
	}
	for _, f := range []string{"customer", "place", "mobile", "loan", "date"} {
		assert.True(t, fields[f], "expected a problem on %s", f)
	}
}

func TestValidateLoan(t *testing.T) {
	e := models.BranchEntry{
		Customer: "Ravi",
		Place:    "Kothrud",
		Mobile:   "9876543210",
		Loan:     models.AmountFromInt(10000),
		Interest: models.AmountFromInt(500),
		EMI:      models.AmountFromInt(1000),
		Date:     models.NewDate(2024, time.January, 5),
	}
	assert.NoError(t, ValidateLoan(e))

	e.Interest = models.AmountFromInt(-1)
	assert.ErrorIs(t, ValidateLoan(e), ErrInvalid)
}

func TestValidatePayment(t *testing.T) {
	date := models.NewDate(2024, time.January, 5)
	assert.NoError(t, ValidatePayment("Ravi", "", models.AmountFromInt(3000), date))
	assert.Error(t, ValidatePayment("Ravi", "12", models.AmountFromInt(3000), date))
	assert.Error(t, ValidatePayment("Ravi", "", models.AmountFromInt(0), date))
	assert.Error(t, ValidatePayment("", "", models.AmountFromInt(10), date))
}

func TestValidateEmployee(t *testing.T) {
	assert.NoError(t, ValidateEmployee(models.Employee{Name: "Sunil"}))
	assert.Error(t, ValidateEmployee(models.Employee{Name: "Sunil", Mobile: "1"}))
	assert.Error(t, ValidateEmployee(models.Employee{}))
}

func TestValidateExpenses(t *testing.T) {
	date := models.NewDate(2024, time.March, 1)
	assert.NoError(t, ValidateExpense(models.Expense{Category: "Rent", Amount: models.AmountFromInt(1), Date: date}))
	assert.Error(t, ValidateExpense(models.Expense{Category: "Rent", Amount: models.AmountFromInt(1)}))
	assert.NoError(t, ValidateEmployeeExpense(models.EmployeeExpense{EmployeeName: "Sunil", Category: "Travel", Amount: models.AmountFromInt(5)}))
	assert.Len(t, Fields(ValidateEmployeeExpense(models.EmployeeExpense{})), 3)
	assert.Error(t, ValidateCustomerExpense(models.CustomerExpense{Branch: "pune"}))
	assert.Nil(t, Fields(errors.New("other")))
}
