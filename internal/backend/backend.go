// Package backend defines the ports the console uses to reach the remote
// finance API. Implementations live in httpapi (the real REST API) and memory
// (development and tests).
package backend

import (
	"context"
	"errors"

	"finance-console/internal/models"
)

// ErrNotFound is returned when the remote resource does not exist.
var ErrNotFound = errors.New("resource not found")

type Branches interface {
	ListBranches(ctx context.Context) ([]models.Branch, error)
	CreateBranch(ctx context.Context, b models.Branch) (models.Branch, error)
	UpdateBranch(ctx context.Context, id string, b models.Branch) (models.Branch, error)
	DeleteBranch(ctx context.Context, id string) error
}

// Entries covers loans and payments; both live in /api/branch-entries.
type Entries interface {
	ListEntries(ctx context.Context) ([]models.BranchEntry, error)
	ListBranchEntries(ctx context.Context, branch string) ([]models.BranchEntry, error)
	CreateEntry(ctx context.Context, e models.BranchEntry) (models.BranchEntry, error)
	UpdateEntry(ctx context.Context, id string, e models.BranchEntry) (models.BranchEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

type Expenses interface {
	ListExpenses(ctx context.Context, branch string) ([]models.Expense, error)
	CreateExpense(ctx context.Context, e models.Expense) (models.Expense, error)
	UpdateExpense(ctx context.Context, id string, e models.Expense) (models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

type EmployeeExpenses interface {
	ListEmployeeExpenses(ctx context.Context, branch string) ([]models.EmployeeExpense, error)
	CreateEmployeeExpense(ctx context.Context, e models.EmployeeExpense) (models.EmployeeExpense, error)
	UpdateEmployeeExpense(ctx context.Context, id string, e models.EmployeeExpense) (models.EmployeeExpense, error)
	DeleteEmployeeExpense(ctx context.Context, id string) error
}

type Employees interface {
	ListEmployees(ctx context.Context, branch string) ([]models.Employee, error)
	ListAllEmployees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error)
	UpdateEmployee(ctx context.Context, id string, e models.Employee) (models.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

type CustomerExpenses interface {
	ListCustomerExpenses(ctx context.Context) ([]models.CustomerExpense, error)
	CreateCustomerExpense(ctx context.Context, e models.CustomerExpense) (models.CustomerExpense, error)
	DeleteCustomerExpense(ctx context.Context, id string) error
}

// CategorySettings reads and writes the per-branch added/deleted sets. A
// branch that never saved settings reads as empty, not as ErrNotFound.
type CategorySettings interface {
	GetCategorySettings(ctx context.Context, branch string) (models.CategorySettings, error)
	SaveCategorySettings(ctx context.Context, branch string, s models.CategorySettings) error
}

// Backend is everything the console needs from the remote API.
type Backend interface {
	Branches
	Entries
	Expenses
	EmployeeExpenses
	Employees
	CustomerExpenses
	CategorySettings
}

// Type selects the Backend implementation.
type Type string

const (
	HTTPBackend   Type = "http"
	MemoryBackend Type = "memory"
)

func (t Type) IsValid() bool {
	switch t {
	case HTTPBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
