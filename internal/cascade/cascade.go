// Package cascade turns category and branch changes into the row mutations
// the remote API needs. There is no bulk endpoint, so every affected row gets
// its own batch.Op.
package cascade

import (
	"context"
	"errors"
	"fmt"

	"finance-console/internal/backend"
	"finance-console/internal/batch"
	"finance-console/internal/models"
)

// Resources, named after their remote collections.
const (
	ResourceEntries          = "branch-entries"
	ResourceExpenses         = "branch-expenses"
	ResourceEmployeeExpenses = "employee-expenses"
	ResourceEmployees        = "branch-employees"
)

// Batch operations.
const (
	OpCategoryRename = "category.rename"
	OpCategoryDelete = "category.delete"
	OpBranchRelabel  = "branch.relabel"
)

const (
	FieldCategory = "category"
	FieldBranch   = "branch"
)

// ErrRowGone is returned by a retried update whose row no longer exists.
var ErrRowGone = errors.New("row no longer exists")

type Planner struct {
	api backend.Backend
}

func NewPlanner(api backend.Backend) *Planner {
	return &Planner{api: api}
}

// RenameCategory plans an update of every expense and employee expense of
// branch whose category is exactly from.
func (p *Planner) RenameCategory(ctx context.Context, branch, from, to string) ([]batch.Op, error) {
	expenses, employeeExpenses, err := p.categoryRows(ctx, branch, from)
	if err != nil {
		return nil, err
	}
	patch := batch.Patch{Field: FieldCategory, Value: to}
	ops := make([]batch.Op, 0, len(expenses)+len(employeeExpenses))
	for _, e := range expenses {
		ops = append(ops, p.updateExpense(len(ops), e, patch))
	}
	for _, e := range employeeExpenses {
		ops = append(ops, p.updateEmployeeExpense(len(ops), e, patch))
	}
	return ops, nil
}

// DeleteCategory plans the deletion of every expense and employee expense
// of branch filed under category.
func (p *Planner) DeleteCategory(ctx context.Context, branch, category string) ([]batch.Op, error) {
	expenses, employeeExpenses, err := p.categoryRows(ctx, branch, category)
	if err != nil {
		return nil, err
	}
	ops := make([]batch.Op, 0, len(expenses)+len(employeeExpenses))
	for _, e := range expenses {
		ops = append(ops, p.deleteOp(len(ops), ResourceExpenses, e.ID))
	}
	for _, e := range employeeExpenses {
		ops = append(ops, p.deleteOp(len(ops), ResourceEmployeeExpenses, e.ID))
	}
	return ops, nil
}

// RelabelBranch plans moving every row filed under from to the branch key to.
func (p *Planner) RelabelBranch(ctx context.Context, from, to string) ([]batch.Op, error) {
	rows, err := p.branchRows(ctx, from)
	if err != nil {
		return nil, err
	}
	patch := batch.Patch{Field: FieldBranch, Value: models.BranchKey(to)}
	ops := make([]batch.Op, 0, rows.len())
	for _, e := range rows.entries {
		ops = append(ops, p.updateEntry(len(ops), e, patch))
	}
	for _, e := range rows.expenses {
		ops = append(ops, p.updateExpense(len(ops), e, patch))
	}
	for _, e := range rows.employeeExpenses {
		ops = append(ops, p.updateEmployeeExpense(len(ops), e, patch))
	}
	for _, e := range rows.employees {
		ops = append(ops, p.updateEmployee(len(ops), e, patch))
	}
	return ops, nil
}

// Item is a previously attempted row mutation.
type Item struct {
	Position int
	Resource string
	RowID    string
	Action   batch.Action
	Patch    *batch.Patch
}

// Retry plans items again against the rows currently filed under branch.
// Updates re-read the row so the patch is applied to its latest state.
func (p *Planner) Retry(ctx context.Context, branch string, items []Item) ([]batch.Op, error) {
	var rows *branchRows
	ops := make([]batch.Op, 0, len(items))
	for _, it := range items {
		if it.Action == batch.ActionDelete {
			ops = append(ops, p.deleteOp(it.Position, it.Resource, it.RowID))
			continue
		}
		if it.Patch == nil {
			return nil, fmt.Errorf("item %d: update without patch", it.Position)
		}
		if rows == nil {
			loaded, err := p.branchRows(ctx, branch)
			if err != nil {
				return nil, err
			}
			rows = &loaded
		}
		op, err := p.retryUpdate(it, rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (p *Planner) retryUpdate(it Item, rows *branchRows) (batch.Op, error) {
	patch := *it.Patch
	switch it.Resource {
	case ResourceEntries:
		if e, ok := find(rows.entries, it.RowID, func(e models.BranchEntry) string { return e.ID }); ok {
			return p.updateEntry(it.Position, e, patch), nil
		}
	case ResourceExpenses:
		if e, ok := find(rows.expenses, it.RowID, func(e models.Expense) string { return e.ID }); ok {
			return p.updateExpense(it.Position, e, patch), nil
		}
	case ResourceEmployeeExpenses:
		if e, ok := find(rows.employeeExpenses, it.RowID, func(e models.EmployeeExpense) string { return e.ID }); ok {
			return p.updateEmployeeExpense(it.Position, e, patch), nil
		}
	case ResourceEmployees:
		if e, ok := find(rows.employees, it.RowID, func(e models.Employee) string { return e.ID }); ok {
			return p.updateEmployee(it.Position, e, patch), nil
		}
	default:
		return batch.Op{}, fmt.Errorf("item %d: unknown resource %q", it.Position, it.Resource)
	}
	return batch.Op{
		Position: it.Position,
		Resource: it.Resource,
		RowID:    it.RowID,
		Action:   batch.ActionUpdate,
		Patch:    it.Patch,
		Do: func(context.Context) error {
			return ErrRowGone
		},
	}, nil
}

// -------------------------
// Row loading
// -------------------------

type branchRows struct {
	entries          []models.BranchEntry
	expenses         []models.Expense
	employeeExpenses []models.EmployeeExpense
	employees        []models.Employee
}

func (r branchRows) len() int {
	return len(r.entries) + len(r.expenses) + len(r.employeeExpenses) + len(r.employees)
}

func (p *Planner) branchRows(ctx context.Context, branch string) (branchRows, error) {
	var rows branchRows
	var err error
	if rows.entries, err = p.api.ListBranchEntries(ctx, branch); err != nil {
		return rows, fmt.Errorf("list entries: %w", err)
	}
	if rows.expenses, err = p.api.ListExpenses(ctx, branch); err != nil {
		return rows, fmt.Errorf("list expenses: %w", err)
	}
	if rows.employeeExpenses, err = p.api.ListEmployeeExpenses(ctx, branch); err != nil {
		return rows, fmt.Errorf("list employee expenses: %w", err)
	}
	if rows.employees, err = p.api.ListEmployees(ctx, branch); err != nil {
		return rows, fmt.Errorf("list employees: %w", err)
	}
	return rows, nil
}

func (p *Planner) categoryRows(ctx context.Context, branch, category string) ([]models.Expense, []models.EmployeeExpense, error) {
	expenses, err := p.api.ListExpenses(ctx, branch)
	if err != nil {
		return nil, nil, fmt.Errorf("list expenses: %w", err)
	}
	employeeExpenses, err := p.api.ListEmployeeExpenses(ctx, branch)
	if err != nil {
		return nil, nil, fmt.Errorf("list employee expenses: %w", err)
	}

	var ex []models.Expense
	for _, e := range expenses {
		if e.Category == category {
			ex = append(ex, e)
		}
	}
	var ee []models.EmployeeExpense
	for _, e := range employeeExpenses {
		if e.Category == category {
			ee = append(ee, e)
		}
	}
	return ex, ee, nil
}

func find[T any](rows []T, id string, idOf func(T) string) (T, bool) {
	for _, r := range rows {
		if idOf(r) == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// -------------------------
// Ops
// -------------------------

func (p *Planner) deleteOp(pos int, resource, id string) batch.Op {
	return batch.Op{
		Position: pos,
		Resource: resource,
		RowID:    id,
		Action:   batch.ActionDelete,
		Do: func(ctx context.Context) error {
			switch resource {
			case ResourceEntries:
				return p.api.DeleteEntry(ctx, id)
			case ResourceExpenses:
				return p.api.DeleteExpense(ctx, id)
			case ResourceEmployeeExpenses:
				return p.api.DeleteEmployeeExpense(ctx, id)
			case ResourceEmployees:
				return p.api.DeleteEmployee(ctx, id)
			}
			return fmt.Errorf("unknown resource %q", resource)
		},
	}
}

func updateOp(pos int, resource, id string, patch batch.Patch, do func(ctx context.Context) error) batch.Op {
	return batch.Op{
		Position: pos,
		Resource: resource,
		RowID:    id,
		Action:   batch.ActionUpdate,
		Patch:    &patch,
		Do:       do,
	}
}

func unsupported(resource string, patch batch.Patch) error {
	return fmt.Errorf("%s: cannot patch field %q", resource, patch.Field)
}

func (p *Planner) updateEntry(pos int, e models.BranchEntry, patch batch.Patch) batch.Op {
	return updateOp(pos, ResourceEntries, e.ID, patch, func(ctx context.Context) error {
		if patch.Field != FieldBranch {
			return unsupported(ResourceEntries, patch)
		}
		e.Branch = patch.Value
		_, err := p.api.UpdateEntry(ctx, e.ID, e)
		return err
	})
}

func (p *Planner) updateExpense(pos int, e models.Expense, patch batch.Patch) batch.Op {
	return updateOp(pos, ResourceExpenses, e.ID, patch, func(ctx context.Context) error {
		switch patch.Field {
		case FieldCategory:
			e.Category = patch.Value
		case FieldBranch:
			e.Branch = patch.Value
		default:
			return unsupported(ResourceExpenses, patch)
		}
		_, err := p.api.UpdateExpense(ctx, e.ID, e)
		return err
	})
}

func (p *Planner) updateEmployeeExpense(pos int, e models.EmployeeExpense, patch batch.Patch) batch.Op {
	return updateOp(pos, ResourceEmployeeExpenses, e.ID, patch, func(ctx context.Context) error {
		switch patch.Field {
		case FieldCategory:
			e.Category = patch.Value
		case FieldBranch:
			e.Branch = patch.Value
		default:
			return unsupported(ResourceEmployeeExpenses, patch)
		}
		_, err := p.api.UpdateEmployeeExpense(ctx, e.ID, e)
		return err
	})
}

func (p *Planner) updateEmployee(pos int, e models.Employee, patch batch.Patch) batch.Op {
	return updateOp(pos, ResourceEmployees, e.ID, patch, func(ctx context.Context) error {
		if patch.Field != FieldBranch {
			return unsupported(ResourceEmployees, patch)
		}
		e.Branch = patch.Value
		_, err := p.api.UpdateEmployee(ctx, e.ID, e)
		return err
	})
}
