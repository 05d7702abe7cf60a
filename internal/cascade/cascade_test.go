package cascade

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-console/internal/backend/memory"
	"finance-console/internal/batch"
	"finance-console/internal/models"
)

func seed(t *testing.T) (*memory.Store, map[string]string) {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	ids := map[string]string{}

	e1, err := s.CreateExpense(ctx, models.Expense{Branch: "pune", Category: "Petrol", Amount: models.AmountFromInt(200)})
	require.NoError(t, err)
	ids["e1"] = e1.ID
	e2, err := s.CreateExpense(ctx, models.Expense{Branch: "pune", Category: "Rent", Amount: models.AmountFromInt(1000)})
	require.NoError(t, err)
	ids["e2"] = e2.ID
	e3, err := s.CreateExpense(ctx, models.Expense{Branch: "nashik", Category: "Petrol", Amount: models.AmountFromInt(90)})
	require.NoError(t, err)
	ids["e3"] = e3.ID
	x1, err := s.CreateEmployeeExpense(ctx, models.EmployeeExpense{Branch: "pune", EmployeeName: "Sunil", Category: "Petrol", Amount: models.AmountFromInt(50)})
	require.NoError(t, err)
	ids["x1"] = x1.ID
	en, err := s.CreateEntry(ctx, models.BranchEntry{Branch: "pune", Customer: "Ravi", Place: "Kothrud"})
	require.NoError(t, err)
	ids["entry"] = en.ID
	emp, err := s.CreateEmployee(ctx, models.Employee{Branch: "pune", Name: "Sunil"})
	require.NoError(t, err)
	ids["emp"] = emp.ID
	return s, ids
}

func runner() *batch.Runner {
	log, _ := test.NewNullLogger()
	return batch.NewRunner(2, log)
}

func TestRenameCategoryUpdatesOnlyMatchingRows(t *testing.T) {
	ctx := context.Background()
	s, _ := seed(t)
	p := NewPlanner(s)

	ops, err := p.RenameCategory(ctx, "Pune", "Petrol", "Fuel")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, ResourceExpenses, ops[0].Resource)
	assert.Equal(t, ResourceEmployeeExpenses, ops[1].Resource)
	assert.Equal(t, 1, ops[1].Position)

	res := runner().Run(ctx, batch.Job{Operation: OpCategoryRename}, ops)
	assert.Equal(t, 0, res.Failed)

	expenses, err := s.ListExpenses(ctx, "pune")
	require.NoError(t, err)
	cats := []string{}
	for _, e := range expenses {
		cats = append(cats, e.Category)
	}
	assert.ElementsMatch(t, []string{"Fuel", "Rent"}, cats)

	nashik, err := s.ListExpenses(ctx, "nashik")
	require.NoError(t, err)
	assert.Equal(t, "Petrol", nashik[0].Category)

	ee, err := s.ListEmployeeExpenses(ctx, "pune")
	require.NoError(t, err)
	assert.Equal(t, "Fuel", ee[0].Category)
}

func TestDeleteCategoryReportsFailedRows(t *testing.T) {
	ctx := context.Background()
	s, ids := seed(t)
	p := NewPlanner(s)

	boom := errors.New("boom")
	s.SetFault(func(op, id string) error {
		if op == "DeleteEmployeeExpense" && id == ids["x1"] {
			return boom
		}
		return nil
	})

	ops, err := p.DeleteCategory(ctx, "pune", "Petrol")
	require.NoError(t, err)
	res := runner().Run(ctx, batch.Job{Operation: OpCategoryDelete}, ops)
	assert.Equal(t, 1, res.Succeeded)
	require.Equal(t, 1, res.Failed)
	assert.Equal(t, ids["x1"], res.Failures()[0].RowID)

	s.SetFault(nil)
	retry, err := p.Retry(ctx, "pune", []Item{{
		Position: res.Failures()[0].Position,
		Resource: ResourceEmployeeExpenses,
		RowID:    ids["x1"],
		Action:   batch.ActionDelete,
	}})
	require.NoError(t, err)
	res = runner().Run(ctx, batch.Job{}, retry)
	assert.Equal(t, 0, res.Failed)

	ee, err := s.ListEmployeeExpenses(ctx, "pune")
	require.NoError(t, err)
	assert.Empty(t, ee)
}

func TestRelabelBranchMovesEveryCollection(t *testing.T) {
	ctx := context.Background()
	s, _ := seed(t)
	p := NewPlanner(s)

	ops, err := p.RelabelBranch(ctx, "pune", "Pune Camp")
	require.NoError(t, err)
	assert.Len(t, ops, 5)

	res := runner().Run(ctx, batch.Job{Operation: OpBranchRelabel}, ops)
	require.Equal(t, 0, res.Failed)

	left, err := p.branchRows(ctx, "pune")
	require.NoError(t, err)
	assert.Equal(t, 0, left.len())

	moved, err := p.branchRows(ctx, "pune camp")
	require.NoError(t, err)
	assert.Equal(t, 5, moved.len())
}

func TestRetryUpdateUsesCurrentRow(t *testing.T) {
	ctx := context.Background()
	s, ids := seed(t)
	p := NewPlanner(s)

	// row changed since the failed attempt; retry must keep the new amount
	_, err := s.UpdateExpense(ctx, ids["e1"], models.Expense{Branch: "pune", Category: "Petrol", Amount: models.AmountFromInt(999)})
	require.NoError(t, err)

	ops, err := p.Retry(ctx, "pune", []Item{
		{Position: 0, Resource: ResourceExpenses, RowID: ids["e1"], Action: batch.ActionUpdate, Patch: &batch.Patch{Field: FieldCategory, Value: "Fuel"}},
		{Position: 3, Resource: ResourceExpenses, RowID: "gone", Action: batch.ActionUpdate, Patch: &batch.Patch{Field: FieldCategory, Value: "Fuel"}},
	})
	require.NoError(t, err)
	res := runner().Run(ctx, batch.Job{}, ops)
	assert.Equal(t, 1, res.Succeeded)
	require.Equal(t, 1, res.Failed)
	assert.Equal(t, 3, res.Failures()[0].Position)
	assert.ErrorIs(t, res.Failures()[0].Err(), ErrRowGone)

	expenses, err := s.ListExpenses(ctx, "pune")
	require.NoError(t, err)
	for _, e := range expenses {
		if e.ID == ids["e1"] {
			assert.Equal(t, "Fuel", e.Category)
			assert.True(t, e.Amount.Equal(models.AmountFromInt(999).Decimal))
		}
	}
}

func TestRetryRejectsUnknownResource(t *testing.T) {
	s, _ := seed(t)
	_, err := NewPlanner(s).Retry(context.Background(), "pune", []Item{
		{Resource: "nope", Action: batch.ActionUpdate, Patch: &batch.Patch{Field: FieldBranch, Value: "x"}},
	})
	assert.Error(t, err)
}
