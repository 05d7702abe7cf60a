package expense

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-console/internal/console/consoletest"
	"finance-console/internal/finance"
	"finance-console/internal/models"
)

func newHarness(t *testing.T) *consoletest.Harness {
	h := consoletest.New(t)
	r := h.App.Group("/api/branches/:branch")
	r.Get("/expenses", ListExpensesHandler(h.Deps))
	r.Post("/expenses", CreateExpenseHandler(h.Deps))
	r.Get("/expenses/breakdown", BreakdownHandler(h.Deps))
	r.Put("/expenses/:id", UpdateExpenseHandler(h.Deps))
	r.Delete("/expenses/:id", DeleteExpenseHandler(h.Deps))
	r.Get("/employee-expenses", ListEmployeeExpensesHandler(h.Deps))
	r.Post("/employee-expenses", CreateEmployeeExpenseHandler(h.Deps))
	r.Get("/employee-expenses/grouped", GroupedEmployeeExpensesHandler(h.Deps))
	r.Put("/employee-expenses/:id", UpdateEmployeeExpenseHandler(h.Deps))
	r.Delete("/employee-expenses/:id", DeleteEmployeeExpenseHandler(h.Deps))
	h.App.Get("/api/customer-expenses", ListCustomerExpensesHandler(h.Deps))
	h.App.Post("/api/customer-expenses", CreateCustomerExpenseHandler(h.Deps))
	h.App.Delete("/api/customer-expenses/:id", DeleteCustomerExpenseHandler(h.Deps))
	return h
}

func TestCreateExpenseDefaultsMonth(t *testing.T) {
	h := newHarness(t)

	status, body := h.Do(t, http.MethodPost, "/api/branches/pune/expenses", map[string]any{
		"category": "Rent", "amount": 4000, "date": "2024-03-10",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var created models.Expense
	consoletest.JSON(t, body, &created)
	assert.Equal(t, "March 2024", created.Month)
	assert.Equal(t, "pune", created.Branch)
}

func TestCreateExpenseValidation(t *testing.T) {
	h := newHarness(t)
	status, _ := h.Do(t, http.MethodPost, "/api/branches/pune/expenses", map[string]any{"amount": -1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateAndDeleteExpense(t *testing.T) {
	h := newHarness(t)
	row, err := h.Store.CreateExpense(context.Background(), models.Expense{
		Branch: "pune", Category: "Rent", Amount: models.AmountFromInt(4000), Date: models.NewDate(2024, 3, 1),
	})
	require.NoError(t, err)

	status, body := h.Do(t, http.MethodPut, "/api/branches/pune/expenses/"+row.ID, map[string]any{
		"category": "Rent", "amount": 4500, "month": "February 2024", "date": "2024-03-01",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var updated models.Expense
	consoletest.JSON(t, body, &updated)
	assert.Equal(t, "February 2024", updated.Month)
	assert.Equal(t, "4500", updated.Amount.String())

	status, _ = h.Do(t, http.MethodDelete, "/api/branches/pune/expenses/"+row.ID, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.Do(t, http.MethodDelete, "/api/branches/pune/expenses/"+row.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = h.Do(t, http.MethodDelete, "/api/branches/pune/expenses/"+row.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBreakdown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.Store.CreateExpense(ctx, models.Expense{Branch: "pune", Category: "Rent", Amount: models.AmountFromInt(4000), Date: models.NewDate(2024, 3, 1)})
	require.NoError(t, err)
	_, err = h.Store.CreateEmployeeExpense(ctx, models.EmployeeExpense{Branch: "pune", EmployeeName: "Meena", Category: "Rent", Amount: models.AmountFromInt(500)})
	require.NoError(t, err)

	status, body := h.Do(t, http.MethodGet, "/api/branches/pune/expenses/breakdown", nil)
	require.Equal(t, http.StatusOK, status)

	var b finance.Breakdown
	consoletest.JSON(t, body, &b)
	require.Len(t, b.Categories, 1)
	assert.Equal(t, "Rent", b.Categories[0].Category)
	assert.Equal(t, "4500", b.Categories[0].Total.String())
	require.Len(t, b.Months, 1)
	assert.Equal(t, "March 2024", b.Months[0].Month)
}

func TestEmployeeExpensesGroupedKeepsOrphans(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.Store.CreateEmployee(ctx, models.Employee{Branch: "pune", Name: "Meena"})
	require.NoError(t, err)

	status, body := h.Do(t, http.MethodPost, "/api/branches/pune/employee-expenses", map[string]any{
		"employeeName": "Meena", "category": "Travel", "amount": 300,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	status, _ = h.Do(t, http.MethodPost, "/api/branches/pune/employee-expenses", map[string]any{
		"employeeName": "Former Staff", "category": "Travel", "amount": 200,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = h.Do(t, http.MethodGet, "/api/branches/pune/employee-expenses/grouped", nil)
	require.Equal(t, http.StatusOK, status)

	var resp struct {
		Groups []finance.EmployeeGroup `json:"groups"`
	}
	consoletest.JSON(t, body, &resp)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "Meena", resp.Groups[0].EmployeeName)
	assert.False(t, resp.Groups[0].Orphaned)
	assert.Equal(t, "Former Staff", resp.Groups[1].EmployeeName)
	assert.True(t, resp.Groups[1].Orphaned)
}

func TestEmployeeExpenseValidation(t *testing.T) {
	h := newHarness(t)
	status, _ := h.Do(t, http.MethodPost, "/api/branches/pune/employee-expenses", map[string]any{"amount": 10})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCustomerExpensesScopedToBranchLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, b := range []string{"pune", "nashik"} {
		_, err := h.Store.CreateCustomerExpense(ctx, models.CustomerExpense{
			Branch: b, Customer: "Asha", Category: "Stamp", Amount: models.AmountFromInt(50),
		})
		require.NoError(t, err)
	}

	var resp struct {
		Rows []models.CustomerExpense `json:"customer_expenses"`
	}
	_, body := h.Do(t, http.MethodGet, "/api/customer-expenses", nil)
	consoletest.JSON(t, body, &resp)
	assert.Len(t, resp.Rows, 2)

	h.AsBranch("pune")
	_, body = h.Do(t, http.MethodGet, "/api/customer-expenses?branch=nashik", nil)
	consoletest.JSON(t, body, &resp)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "pune", resp.Rows[0].Branch)

	status, _ := h.Do(t, http.MethodPost, "/api/customer-expenses", map[string]any{
		"branch": "nashik", "customer": "Asha", "category": "Stamp", "amount": 20,
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = h.Do(t, http.MethodPost, "/api/customer-expenses", map[string]any{
		"customer": "Asha", "category": "Stamp", "amount": 20,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var created models.CustomerExpense
	consoletest.JSON(t, body, &created)
	assert.Equal(t, "pune", created.Branch)

	status, _ = h.Do(t, http.MethodDelete, "/api/customer-expenses/"+resp.Rows[0].ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestExpenseCategoryMustBeOffered(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.Store.SaveCategorySettings(ctx, "pune", models.CategorySettings{
		DeletedCategories: []string{"petrol"},
	}))

	status, body := h.Do(t, http.MethodPost, "/api/branches/pune/expenses", map[string]any{
		"category": "Petrol", "amount": 300, "date": "2024-03-10",
	})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	var resp struct {
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	consoletest.JSON(t, body, &resp)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "category", resp.Fields[0].Field)

	status, _ = h.Do(t, http.MethodPost, "/api/branches/pune/expenses", map[string]any{
		"category": "Courier", "amount": 300, "date": "2024-03-10",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.Do(t, http.MethodPost, "/api/branches/pune/employee-expenses", map[string]any{
		"employeeName": "Meena", "category": "Courier", "amount": 300,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	rows, err := h.Store.ListExpenses(ctx, "pune")
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, h.Store.SaveCategorySettings(ctx, "pune", models.CategorySettings{
		AddedCategories:   []string{"Courier"},
		DeletedCategories: []string{"petrol"},
	}))
	h.Deps.Cache.Invalidate("pune")

	status, body = h.Do(t, http.MethodPost, "/api/branches/pune/expenses", map[string]any{
		"category": "Courier", "amount": 300, "date": "2024-03-10",
	})
	assert.Equal(t, http.StatusCreated, status, string(body))
}

func TestUpdateMayKeepDeletedCategory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	row, err := h.Store.CreateExpense(ctx, models.Expense{
		Branch: "pune", Category: "Petrol", Amount: models.AmountFromInt(300), Date: models.NewDate(2024, 3, 1),
	})
	require.NoError(t, err)
	require.NoError(t, h.Store.SaveCategorySettings(ctx, "pune", models.CategorySettings{
		DeletedCategories: []string{"petrol"},
	}))

	status, body := h.Do(t, http.MethodPut, "/api/branches/pune/expenses/"+row.ID, map[string]any{
		"category": "Petrol", "amount": 350, "date": "2024-03-01",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = h.Do(t, http.MethodPut, "/api/branches/pune/expenses/"+row.ID, map[string]any{
		"category": "Courier", "amount": 350, "date": "2024-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.Do(t, http.MethodPut, "/api/branches/pune/expenses/"+row.ID, map[string]any{
		"category": "Rent", "amount": 350, "date": "2024-03-01",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestStoredBranchOutlivesRequest(t *testing.T) {
	h := newHarness(t)
	h.AsBranch("pune")

	status, body := h.Do(t, http.MethodPost, "/api/branches/pune/expenses", map[string]any{
		"category": "Rent", "amount": 4000, "date": "2024-03-10",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	for _, path := range []string{
		"/api/branches/pune/expenses/breakdown",
		"/api/customer-expenses?branch=xxxx",
		"/api/branches/pune/employee-expenses/grouped",
	} {
		h.Do(t, http.MethodGet, path, nil)
	}

	rows, err := h.Store.ListExpenses(context.Background(), "pune")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "pune", rows[0].Branch)
}
