// Package memory is an in-process stand-in for the remote finance API, used
// for local development (DATA_BACKEND=memory) and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"finance-console/internal/backend"
	"finance-console/internal/models"
)

// FaultFunc lets tests make individual calls fail. op is e.g. "UpdateExpense",
// id is the row id (empty for list/create calls).
type FaultFunc func(op, id string) error

type Store struct {
	mu     sync.Mutex
	nextID int
	fault  FaultFunc

	branches         []models.Branch
	entries          []models.BranchEntry
	expenses         []models.Expense
	employeeExpenses []models.EmployeeExpense
	employees        []models.Employee
	customerExpenses []models.CustomerExpense
	settings         map[string]models.CategorySettings
}

var _ backend.Backend = (*Store)(nil)

func New() *Store {
	return &Store{settings: make(map[string]models.CategorySettings)}
}

// SetFault installs (or clears, with nil) a fault hook.
func (s *Store) SetFault(f FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

func (s *Store) check(op, id string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op, id)
}

func (s *Store) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func ensureID(id *string, gen func() string) {
	if strings.TrimSpace(*id) == "" {
		*id = gen()
	}
}

// indexOf finds the row with id, returning -1 when absent.
func indexOf[T any](rows []T, id string, idOf func(T) string) int {
	for i, r := range rows {
		if idOf(r) == id {
			return i
		}
	}
	return -1
}

func filterBranch[T any](rows []T, branch string, branchOf func(T) string) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if models.SameBranch(branchOf(r), branch) {
			out = append(out, r)
		}
	}
	return out
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, backend.ErrNotFound)
}

// -------------------------
// Branches
// -------------------------

func (s *Store) ListBranches(_ context.Context) ([]models.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("ListBranches", ""); err != nil {
		return nil, err
	}
	return append([]models.Branch{}, s.branches...), nil
}

func (s *Store) CreateBranch(_ context.Context, b models.Branch) (models.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateBranch", ""); err != nil {
		return models.Branch{}, err
	}
	ensureID(&b.ID, func() string { return s.newID("branch") })
	s.branches = append(s.branches, b)
	return b, nil
}

func (s *Store) UpdateBranch(_ context.Context, id string, b models.Branch) (models.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("UpdateBranch", id); err != nil {
		return models.Branch{}, err
	}
	i := indexOf(s.branches, id, func(b models.Branch) string { return b.ID })
	if i < 0 {
		return models.Branch{}, notFound("branch", id)
	}
	b.ID = id
	s.branches[i] = b
	return b, nil
}

func (s *Store) DeleteBranch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("DeleteBranch", id); err != nil {
		return err
	}
	i := indexOf(s.branches, id, func(b models.Branch) string { return b.ID })
	if i < 0 {
		return notFound("branch", id)
	}
	s.branches = append(s.branches[:i], s.branches[i+1:]...)
	return nil
}

// -------------------------
// Branch entries
// -------------------------

func entryID(e models.BranchEntry) string     { return e.ID }
func entryBranch(e models.BranchEntry) string { return e.Branch }

func (s *Store) ListEntries(_ context.Context) ([]models.BranchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("ListEntries", ""); err != nil {
		return nil, err
	}
	return append([]models.BranchEntry{}, s.entries...), nil
}

func (s *Store) ListBranchEntries(_ context.Context, branch string) ([]models.BranchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("ListBranchEntries", ""); err != nil {
		return nil, err
	}
	return filterBranch(s.entries, branch, entryBranch), nil
}

func (s *Store) CreateEntry(_ context.Context, e models.BranchEntry) (models.BranchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateEntry", ""); err != nil {
		return models.BranchEntry{}, err
	}
	ensureID(&e.ID, func() string { return s.newID("entry") })
	e.Branch = models.BranchKey(e.Branch)
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *Store) UpdateEntry(_ context.Context, id string, e models.BranchEntry) (models.BranchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("UpdateEntry", id); err != nil {
		return models.BranchEntry{}, err
	}
	i := indexOf(s.entries, id, entryID)
	if i < 0 {
		return models.BranchEntry{}, notFound("entry", id)
	}
	e.ID = id
	e.Branch = models.BranchKey(e.Branch)
	s.entries[i] = e
	return e, nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("DeleteEntry", id); err != nil {
		return err
	}
	i := indexOf(s.entries, id, entryID)
	if i < 0 {
		return notFound("entry", id)
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return nil
}

// -------------------------
// Branch expenses
// -------------------------

func expenseID(e models.Expense) string     { return e.ID }
func expenseBranch(e models.Expense) string { return e.Branch }

func (s *Store) ListExpenses(_ context.Context, branch string) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("ListExpenses", ""); err != nil {
		return nil, err
	}
	return filterBranch(s.expenses, branch, expenseBranch), nil
}

func (s *Store) CreateExpense(_ context.Context, e models.Expense) (models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateExpense", ""); err != nil {
		return models.Expense{}, err
	}
	ensureID(&e.ID, func() string { return s.newID("expense") })
	e.Branch = models.BranchKey(e.Branch)
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, id string, e models.Expense) (models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("UpdateExpense", id); err != nil {
		return models.Expense{}, err
	}
	i := indexOf(s.expenses, id, expenseID)
	if i < 0 {
		return models.Expense{}, notFound("expense", id)
	}
	e.ID = id
	e.Branch = models.BranchKey(e.Branch)
	s.expenses[i] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("DeleteExpense", id); err != nil {
		return err
	}
	i := indexOf(s.expenses, id, expenseID)
	if i < 0 {
		return notFound("expense", id)
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	return nil
}

// -------------------------
// Employee expenses
// -------------------------

func employeeExpenseID(e models.EmployeeExpense) string     { return e.ID }
func employeeExpenseBranch(e models.EmployeeExpense) string { return e.Branch }

func (s *Store) ListEmployeeExpenses(_ context.Context, branch string) ([]models.EmployeeExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("ListEmployeeExpenses", ""); err != nil {
		return nil, err
	}
	return filterBranch(s.employeeExpenses, branch, employeeExpenseBranch), nil
}

func (s *Store) CreateEmployeeExpense(_ context.Context, e models.EmployeeExpense) (models.EmployeeExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateEmployeeExpense", ""); err != nil {
		return models.EmployeeExpense{}, err
	}
	ensureID(&e.ID, func() string { return s.newID("empexp") })
	e.Branch = models.BranchKey(e.Branch)
	s.employeeExpenses = append(s.employeeExpenses, e)
	return e, nil
}

func (s *Store) UpdateEmployeeExpense(_ context.Context, id string, e models.EmployeeExpense) (models.EmployeeExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("UpdateEmployeeExpense", id); err != nil {
		return models.EmployeeExpense{}, err
	}
	i := indexOf(s.employeeExpenses, id, employeeExpenseID)
	if i < 0 {
		return models.EmployeeExpense{}, notFound("employee expense", id)
	}
	e.ID = id
	e.Branch = models.BranchKey(e.Branch)
	s.employeeExpenses[i] = e
	return e, nil
}

func (s *Store) DeleteEmployeeExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("DeleteEmployeeExpense", id); err != nil {
		return err
	}
	i := indexOf(s.employeeExpenses, id, employeeExpenseID)
	if i < 0 {
		return notFound("employee expense", id)
	}
	s.employeeExpenses = append(s.employeeExpenses[:i], s.employeeExpenses[i+1:]...)
	return nil
}

// -------------------------
// Employees
// -------------------------

func employeeID(e models.Employee) string     { return e.ID }
func employeeBranch(e models.Employee) string { return e.Branch }

func (s *Store) ListEmployees(_ context.Context, branch string) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("ListEmployees", ""); err != nil {
		return nil, err
	}
	return filterBranch(s.employees, branch, employeeBranch), nil
}

func (s *Store) ListAllEmployees(_ context.Context) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("ListAllEmployees", ""); err != nil {
		return nil, err
	}
	return append([]models.Employee{}, s.employees...), nil
}

func (s *Store) CreateEmployee(_ context.Context, e models.Employee) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateEmployee", ""); err != nil {
		return models.Employee{}, err
	}
	ensureID(&e.ID, func() string { return s.newID("employee") })
	e.Branch = models.BranchKey(e.Branch)
	s.employees = append(s.employees, e)
	return e, nil
}

func (s *Store) UpdateEmployee(_ context.Context, id string, e models.Employee) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("UpdateEmployee", id); err != nil {
		return models.Employee{}, err
	}
	i := indexOf(s.employees, id, employeeID)
	if i < 0 {
		return models.Employee{}, notFound("employee", id)
	}
	e.ID = id
	e.Branch = models.BranchKey(e.Branch)
	s.employees[i] = e
	return e, nil
}

func (s *Store) DeleteEmployee(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("DeleteEmployee", id); err != nil {
		return err
	}
	i := indexOf(s.employees, id, employeeID)
	if i < 0 {
		return notFound("employee", id)
	}
	s.employees = append(s.employees[:i], s.employees[i+1:]...)
	return nil
}

// -------------------------
// Customer expenses
// -------------------------

func (s *Store) ListCustomerExpenses(_ context.Context) ([]models.CustomerExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("ListCustomerExpenses", ""); err != nil {
		return nil, err
	}
	return append([]models.CustomerExpense{}, s.customerExpenses...), nil
}

func (s *Store) CreateCustomerExpense(_ context.Context, e models.CustomerExpense) (models.CustomerExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateCustomerExpense", ""); err != nil {
		return models.CustomerExpense{}, err
	}
	ensureID(&e.ID, func() string { return s.newID("custexp") })
	e.Branch = models.BranchKey(e.Branch)
	s.customerExpenses = append(s.customerExpenses, e)
	return e, nil
}

func (s *Store) DeleteCustomerExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("DeleteCustomerExpense", id); err != nil {
		return err
	}
	i := indexOf(s.customerExpenses, id, func(e models.CustomerExpense) string { return e.ID })
	if i < 0 {
		return notFound("customer expense", id)
	}
	s.customerExpenses = append(s.customerExpenses[:i], s.customerExpenses[i+1:]...)
	return nil
}

// -------------------------
// Category settings
// -------------------------

func (s *Store) GetCategorySettings(_ context.Context, branch string) (models.CategorySettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("GetCategorySettings", ""); err != nil {
		return models.CategorySettings{}, err
	}
	cs, ok := s.settings[models.BranchKey(branch)]
	if !ok {
		return models.CategorySettings{AddedCategories: []string{}, DeletedCategories: []string{}}, nil
	}
	return cs.Clone(), nil
}

func (s *Store) SaveCategorySettings(_ context.Context, branch string, cs models.CategorySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("SaveCategorySettings", ""); err != nil {
		return err
	}
	s.settings[models.BranchKey(branch)] = cs.Clone()
	return nil
}
