// Package employee serves the branch employee roster.
package employee

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"finance-console/internal/auth"
	"finance-console/internal/console"
	"finance-console/internal/httpx"
	"finance-console/internal/models"
	"finance-console/internal/validation"
)

const resource = "employee"

type EmployeeRequest struct {
	Name        string        `json:"name"`
	Mobile      string        `json:"mobile"`
	Designation string        `json:"designation"`
	Department  string        `json:"department"`
	JoiningDate models.Date   `json:"joiningDate"`
	Salary      models.Amount `json:"salary"`
}

func (r EmployeeRequest) employee(branch string) models.Employee {
	return models.Employee{
		Branch:      branch,
		Name:        strings.TrimSpace(r.Name),
		Mobile:      strings.TrimSpace(r.Mobile),
		Designation: strings.TrimSpace(r.Designation),
		Department:  strings.TrimSpace(r.Department),
		JoiningDate: r.JoiningDate,
		Salary:      r.Salary,
	}
}

func has(rows []models.Employee, id string) bool {
	for _, r := range rows {
		if r.ID == id {
			return true
		}
	}
	return false
}

// GET /api/employees
func ListAllEmployeesHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := d.API.ListAllEmployees(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"employees": rows})
	}
}

// GET /api/branches/:branch/employees
func ListEmployeesHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"branch": branch, "employees": snap.Employees})
	}
}

// POST /api/branches/:branch/employees
func CreateEmployeeHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		var body EmployeeRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		e := body.employee(branch)
		if err := validation.ValidateEmployee(e); err != nil {
			return err
		}
		created, err := d.API.CreateEmployee(c.UserContext(), e)
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resource, Action: "created", ID: created.ID})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// PUT /api/branches/:branch/employees/:id
// Renaming an employee leaves their existing expenses under the old name.
func UpdateEmployeeHandler(d *console.Deps) fiber.Handler {
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
		if !has(snap.Employees, id) {
			return fiber.NewError(fiber.StatusNotFound, "employee not found")
		}

		var body EmployeeRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		e := body.employee(branch)
		if err := validation.ValidateEmployee(e); err != nil {
			return err
		}
		e.ID = id

		updated, err := d.API.UpdateEmployee(c.UserContext(), id, e)
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resource, Action: "updated", ID: id})
		return c.JSON(updated)
	}
}

// DELETE /api/branches/:branch/employees/:id?confirm=true
func DeleteEmployeeHandler(d *console.Deps) fiber.Handler {
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
		if !has(snap.Employees, id) {
			return fiber.NewError(fiber.StatusNotFound, "employee not found")
		}
		if err := d.API.DeleteEmployee(c.UserContext(), id); err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resource, Action: "deleted", ID: id})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
