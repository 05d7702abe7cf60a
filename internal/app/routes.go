package app

import (
	"github.com/gofiber/fiber/v2"

	"finance-console/internal/admin"
	"finance-console/internal/audit"
	"finance-console/internal/auth"
	"finance-console/internal/category"
	"finance-console/internal/dashboard"
	"finance-console/internal/employee"
	"finance-console/internal/entry"
	"finance-console/internal/expense"
	"finance-console/internal/models"
)

func Routes(app *fiber.App, c *Container) {
	d := c.Deps
	cfg := c.Config

	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/login", auth.LoginHandler(auth.Credentials{
		JWTSecret:          cfg.JWTSecret,
		AdminPasswordHash:  cfg.AdminPasswordHash,
		BranchPasswordHash: cfg.BranchPasswordHash,
	}, d.API, c.Log))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler())

	adminOnly := auth.RequireRole(models.RoleAdmin)

	// Branch management
	protected.Get("/branches", adminOnly, admin.ListBranchesHandler(d))
	protected.Post("/branches", adminOnly, admin.CreateBranchHandler(d))
	protected.Get("/branches/:id", adminOnly, admin.GetBranchHandler(d))
	protected.Put("/branches/:id", adminOnly, admin.UpdateBranchHandler(d))
	protected.Delete("/branches/:id", adminOnly, admin.DeleteBranchHandler(d))

	// Dashboard
	protected.Get("/dashboard", adminOnly, dashboard.DashboardHandler(d))

	// Global employee roster
	protected.Get("/employees", adminOnly, employee.ListAllEmployeesHandler(d))

	// Branch-scoped routes; auth.Branch enforces the branch login's own branch
	branch := protected.Group("/branches/:branch")

	// Loans & payments
	branch.Get("/entries", entry.ListEntriesHandler(d))
	branch.Get("/entries.csv", entry.EntriesCSVHandler(d))
	branch.Post("/loans", entry.CreateLoanHandler(d))
	branch.Post("/payments", entry.CreatePaymentHandler(d))
	branch.Put("/entries/:id", entry.UpdateEntryHandler(d))
	branch.Delete("/entries/:id", entry.DeleteEntryHandler(d))

	// Summary & customers
	branch.Get("/summary", entry.SummaryHandler(d))
	branch.Get("/customers", entry.CustomersHandler(d))
	branch.Get("/customers/:customer/ledger", entry.LedgerHandler(d))
	branch.Get("/customers/:customer/ledger.csv", entry.LedgerCSVHandler(d))

	// Branch expenses
	branch.Get("/expenses", expense.ListExpensesHandler(d))
	branch.Post("/expenses", expense.CreateExpenseHandler(d))
	branch.Get("/expenses/breakdown", expense.BreakdownHandler(d))
	branch.Put("/expenses/:id", expense.UpdateExpenseHandler(d))
	branch.Delete("/expenses/:id", expense.DeleteExpenseHandler(d))

	// Employee expenses
	branch.Get("/employee-expenses", expense.ListEmployeeExpensesHandler(d))
	branch.Post("/employee-expenses", expense.CreateEmployeeExpenseHandler(d))
	branch.Get("/employee-expenses/grouped", expense.GroupedEmployeeExpensesHandler(d))
	branch.Put("/employee-expenses/:id", expense.UpdateEmployeeExpenseHandler(d))
	branch.Delete("/employee-expenses/:id", expense.DeleteEmployeeExpenseHandler(d))

	// Employees
	branch.Get("/employees", employee.ListEmployeesHandler(d))
	branch.Post("/employees", employee.CreateEmployeeHandler(d))
	branch.Put("/employees/:id", employee.UpdateEmployeeHandler(d))
	branch.Delete("/employees/:id", employee.DeleteEmployeeHandler(d))

	// Categories
	branch.Get("/categories", category.ListHandler(c.Categories))
	branch.Post("/categories", category.AddHandler(c.Categories))
	branch.Put("/categories/:name", category.RenameHandler(c.Categories))
	branch.Delete("/categories/:name", category.DeleteHandler(c.Categories))

	// Customer expenses
	protected.Get("/customer-expenses", expense.ListCustomerExpensesHandler(d))
	protected.Post("/customer-expenses", expense.CreateCustomerExpenseHandler(d))
	protected.Delete("/customer-expenses/:id", expense.DeleteCustomerExpenseHandler(d))

	// Batch runs
	protected.Get("/batches", audit.ListBatchesHandler(c.Audit))
	protected.Get("/batches/:id", audit.GetBatchHandler(c.Audit))
	protected.Post("/batches/:id/retry", audit.RetryBatchHandler(c.Audit))
}
