// Package expense serves branch expenses, employee expenses and customer
// expenses.
package expense

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"finance-console/internal/auth"
	"finance-console/internal/console"
	"finance-console/internal/finance"
	"finance-console/internal/httpx"
	"finance-console/internal/models"
	"finance-console/internal/validation"
)

const (
	resourceExpense         = "expense"
	resourceEmployeeExpense = "employee_expense"
	resourceCustomerExpense = "customer_expense"
)

type ExpenseRequest struct {
	Category    string        `json:"category"`
	Amount      models.Amount `json:"amount"`
	Month       string        `json:"month"`
	Date        models.Date   `json:"date"`
	Description string        `json:"description"`
}

type EmployeeExpenseRequest struct {
	EmployeeName string        `json:"employeeName"`
	Category     string        `json:"category"`
	Amount       models.Amount `json:"amount"`
	Date         models.Date   `json:"date"`
	Description  string        `json:"description"`
}

// expense builds the wire row; a blank month falls back to the date's month.
func (r ExpenseRequest) expense(branch string) models.Expense {
	e := models.Expense{
		Branch:      branch,
		Category:    strings.TrimSpace(r.Category),
		Amount:      r.Amount,
		Month:       strings.TrimSpace(r.Month),
		Date:        r.Date,
		Description: strings.TrimSpace(r.Description),
	}
	if e.Month == "" {
		e.Month = e.Date.MonthLabel()
	}
	return e
}

func (r EmployeeExpenseRequest) employeeExpense(branch string) models.EmployeeExpense {
	return models.EmployeeExpense{
		Branch:       branch,
		EmployeeName: strings.TrimSpace(r.EmployeeName),
		Category:     strings.TrimSpace(r.Category),
		Amount:       r.Amount,
		Date:         r.Date,
		Description:  strings.TrimSpace(r.Description),
	}
}

func findExpense(rows []models.Expense, id string) (models.Expense, bool) {
	for _, r := range rows {
		if r.ID == id {
			return r, true
		}
	}
	return models.Expense{}, false
}

func findEmployeeExpense(rows []models.EmployeeExpense, id string) (models.EmployeeExpense, bool) {
	for _, r := range rows {
		if r.ID == id {
			return r, true
		}
	}
	return models.EmployeeExpense{}, false
}

// checkCategory rejects a category the branch does not offer. An update may
// keep the row's current category even if it has since been deleted.
func checkCategory(c *fiber.Ctx, d *console.Deps, branch, name, current string) error {
	if current != "" && name == current {
		return nil
	}
	return d.Categories.Check(c.UserContext(), branch, name)
}

// -------------------------
// BRANCH EXPENSES
// -------------------------

// GET /api/branches/:branch/expenses
func ListExpensesHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"branch": branch, "expenses": snap.Expenses})
	}
}

// POST /api/branches/:branch/expenses
func CreateExpenseHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		var body ExpenseRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		e := body.expense(branch)
		if err := validation.ValidateExpense(e); err != nil {
			return err
		}
		if err := checkCategory(c, d, branch, e.Category, ""); err != nil {
			return err
		}
		created, err := d.API.CreateExpense(c.UserContext(), e)
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resourceExpense, Action: "created", ID: created.ID})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// PUT /api/branches/:branch/expenses/:id
func UpdateExpenseHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		id := httpx.Param(c, "id")
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		current, ok := findExpense(snap.Expenses, id)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "expense not found")
		}

		var body ExpenseRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		e := body.expense(branch)
		if err := validation.ValidateExpense(e); err != nil {
			return err
		}
		if err := checkCategory(c, d, branch, e.Category, current.Category); err != nil {
			return err
		}
		e.ID = id

		updated, err := d.API.UpdateExpense(c.UserContext(), id, e)
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resourceExpense, Action: "updated", ID: id})
		return c.JSON(updated)
	}
}

// DELETE /api/branches/:branch/expenses/:id?confirm=true
func DeleteExpenseHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		if err := httpx.RequireConfirm(c); err != nil {
			return err
		}
		id := httpx.Param(c, "id")
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		if _, ok := findExpense(snap.Expenses, id); !ok {
			return fiber.NewError(fiber.StatusNotFound, "expense not found")
		}
		if err := d.API.DeleteExpense(c.UserContext(), id); err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resourceExpense, Action: "deleted", ID: id})
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/branches/:branch/expenses/breakdown
func BreakdownHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		return c.JSON(finance.ExpenseBreakdown(snap.Expenses, snap.EmployeeExpenses))
	}
}

// -------------------------
// EMPLOYEE EXPENSES
// -------------------------

// GET /api/branches/:branch/employee-expenses
func ListEmployeeExpensesHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"branch": branch, "employee_expenses": snap.EmployeeExpenses})
	}
}

// GET /api/branches/:branch/employee-expenses/grouped
func GroupedEmployeeExpensesHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"branch": branch,
			"groups": finance.GroupEmployeeExpenses(snap.Employees, snap.EmployeeExpenses),
		})
	}
}

// POST /api/branches/:branch/employee-expenses
func CreateEmployeeExpenseHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		var body EmployeeExpenseRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		e := body.employeeExpense(branch)
		if err := validation.ValidateEmployeeExpense(e); err != nil {
			return err
		}
		if err := checkCategory(c, d, branch, e.Category, ""); err != nil {
			return err
		}
		created, err := d.API.CreateEmployeeExpense(c.UserContext(), e)
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resourceEmployeeExpense, Action: "created", ID: created.ID})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// PUT /api/branches/:branch/employee-expenses/:id
func UpdateEmployeeExpenseHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		id := httpx.Param(c, "id")
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		current, ok := findEmployeeExpense(snap.EmployeeExpenses, id)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "employee expense not found")
		}

		var body EmployeeExpenseRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		e := body.employeeExpense(branch)
		if err := validation.ValidateEmployeeExpense(e); err != nil {
			return err
		}
		if err := checkCategory(c, d, branch, e.Category, current.Category); err != nil {
			return err
		}
		e.ID = id

		updated, err := d.API.UpdateEmployeeExpense(c.UserContext(), id, e)
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resourceEmployeeExpense, Action: "updated", ID: id})
		return c.JSON(updated)
	}
}

// DELETE /api/branches/:branch/employee-expenses/:id?confirm=true
func DeleteEmployeeExpenseHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		if err := httpx.RequireConfirm(c); err != nil {
			return err
		}
		id := httpx.Param(c, "id")
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		if _, ok := findEmployeeExpense(snap.EmployeeExpenses, id); !ok {
			return fiber.NewError(fiber.StatusNotFound, "employee expense not found")
		}
		if err := d.API.DeleteEmployeeExpense(c.UserContext(), id); err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resourceEmployeeExpense, Action: "deleted", ID: id})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
