package expense

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"finance-console/internal/auth"
	"finance-console/internal/console"
	"finance-console/internal/httpx"
	"finance-console/internal/models"
	"finance-console/internal/validation"
)

type CustomerExpenseRequest struct {
	Branch      string        `json:"branch"`
	Customer    string        `json:"customer"`
	Category    string        `json:"category"`
	Amount      models.Amount `json:"amount"`
	Date        models.Date   `json:"date"`
	Description string        `json:"description"`
}

// scope is the branch a customer-expense request is limited to. Branch
// logins always see their own branch; admins may pass ?branch= or see all.
func scope(c *fiber.Ctx) string {
	if role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole); role == models.RoleBranch {
		own, _ := c.Locals(auth.CtxBranchKey).(string)
		return own
	}
	return models.BranchKey(c.Query("branch"))
}

// GET /api/customer-expenses?branch=&customer=
func ListCustomerExpensesHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := d.API.ListCustomerExpenses(c.UserContext())
		if err != nil {
			return err
		}
		branch := scope(c)
		customer := strings.TrimSpace(c.Query("customer"))

		out := make([]models.CustomerExpense, 0, len(rows))
		for _, r := range rows {
			if branch != "" && !models.SameBranch(r.Branch, branch) {
				continue
			}
			if customer != "" && r.Customer != customer {
				continue
			}
			out = append(out, r)
		}
		return c.JSON(fiber.Map{"customer_expenses": out})
	}
}

// POST /api/customer-expenses
func CreateCustomerExpenseHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerExpenseRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		e := models.CustomerExpense{
			Branch:      models.BranchKey(body.Branch),
			Customer:    strings.TrimSpace(body.Customer),
			Category:    strings.TrimSpace(body.Category),
			Amount:      body.Amount,
			Date:        body.Date,
			Description: strings.TrimSpace(body.Description),
		}
		if e.Branch == "" {
			e.Branch = scope(c)
		}
		if err := validation.ValidateCustomerExpense(e); err != nil {
			return err
		}
		if err := auth.Allow(c, e.Branch); err != nil {
			return err
		}
		created, err := d.API.CreateCustomerExpense(c.UserContext(), e)
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), e.Branch, console.Change{Resource: resourceCustomerExpense, Action: "created", ID: created.ID})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// DELETE /api/customer-expenses/:id?confirm=true
func DeleteCustomerExpenseHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := httpx.RequireConfirm(c); err != nil {
			return err
		}
		id := httpx.Param(c, "id")
		rows, err := d.API.ListCustomerExpenses(c.UserContext())
		if err != nil {
			return err
		}
		var row *models.CustomerExpense
		for i := range rows {
			if rows[i].ID == id {
				row = &rows[i]
				break
			}
		}
		if row == nil {
			return fiber.NewError(fiber.StatusNotFound, "customer expense not found")
		}
		if err := auth.Allow(c, row.Branch); err != nil {
			return err
		}
		if err := d.API.DeleteCustomerExpense(c.UserContext(), id); err != nil {
			return err
		}
		d.Changed(c.UserContext(), row.Branch, console.Change{Resource: resourceCustomerExpense, Action: "deleted", ID: id})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
