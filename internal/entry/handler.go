// Package entry serves loans, payments and the customer views derived from
// them.
package entry

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"finance-console/internal/auth"
	"finance-console/internal/console"
	"finance-console/internal/export"
	"finance-console/internal/finance"
	"finance-console/internal/httpx"
	"finance-console/internal/models"
	"finance-console/internal/validation"
)

const resource = "entry"

type LoanRequest struct {
	Customer string        `json:"customer"`
	Place    string        `json:"place"`
	Mobile   string        `json:"mobile"`
	Loan     models.Amount `json:"loan"`
	Interest models.Amount `json:"interest"`
	EMI      models.Amount `json:"emi"`
	Date     models.Date   `json:"date"`
}

type PaymentRequest struct {
	Customer string        `json:"customer"`
	Mobile   string        `json:"mobile"`
	Amount   models.Amount `json:"amount"`
	Date     models.Date   `json:"date"`
}

// UpdateRequest carries either shape; Amount is only read for payments.
type UpdateRequest struct {
	LoanRequest
	Amount models.Amount `json:"amount"`
}

type EntriesResponse struct {
	Branch   string            `json:"branch"`
	Loans    []finance.Loan    `json:"loans"`
	Payments []finance.Payment `json:"payments"`
}

func (r LoanRequest) entry(branch string) models.BranchEntry {
	return models.BranchEntry{
		Branch:   branch,
		Customer: r.Customer,
		Place:    r.Place,
		Mobile:   r.Mobile,
		Loan:     r.Loan,
		Interest: r.Interest,
		EMI:      r.EMI,
		Date:     r.Date,
	}
}

func (r PaymentRequest) payment(branch string) finance.Payment {
	return finance.Payment{
		Base:   finance.Base{Branch: branch, Customer: r.Customer, Date: r.Date},
		Mobile: r.Mobile,
		Amount: r.Amount,
	}
}

func find(entries []models.BranchEntry, id string) (models.BranchEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.BranchEntry{}, false
}

// -------------------------
// ENTRIES
// -------------------------

// GET /api/branches/:branch/entries
func ListEntriesHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		loans, payments := finance.Split(finance.ForBranch(snap.Entries, branch))
		return c.JSON(EntriesResponse{Branch: branch, Loans: loans, Payments: payments})
	}
}

// POST /api/branches/:branch/loans
func CreateLoanHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		var body LoanRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		e := body.entry(branch)
		if err := validation.ValidateLoan(e); err != nil {
			return err
		}
		created, err := d.API.CreateEntry(c.UserContext(), e)
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resource, Action: "created", ID: created.ID})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// POST /api/branches/:branch/payments
func CreatePaymentHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		var body PaymentRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		if err := validation.ValidatePayment(body.Customer, body.Mobile, body.Amount, body.Date); err != nil {
			return err
		}
		created, err := d.API.CreateEntry(c.UserContext(), body.payment(branch).Entry())
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resource, Action: "created", ID: created.ID})
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// PUT /api/branches/:branch/entries/:id
// A payment stays a payment and a loan stays a loan.
func UpdateEntryHandler(d *console.Deps) fiber.Handler {
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
		current, ok := find(snap.Entries, id)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "entry not found")
		}

		var body UpdateRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}

		var e models.BranchEntry
		if current.IsPayment() {
			if err := validation.ValidatePayment(body.Customer, body.Mobile, body.Amount, body.Date); err != nil {
				return err
			}
			p := PaymentRequest{Customer: body.Customer, Mobile: body.Mobile, Amount: body.Amount, Date: body.Date}.payment(branch)
			e = p.Entry()
		} else {
			e = body.LoanRequest.entry(branch)
			if err := validation.ValidateLoan(e); err != nil {
				return err
			}
		}
		e.ID = id

		updated, err := d.API.UpdateEntry(c.UserContext(), id, e)
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resource, Action: "updated", ID: id})
		return c.JSON(updated)
	}
}

// DELETE /api/branches/:branch/entries/:id?confirm=true
func DeleteEntryHandler(d *console.Deps) fiber.Handler {
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
		if _, ok := find(snap.Entries, id); !ok {
			return fiber.NewError(fiber.StatusNotFound, "entry not found")
		}
		if err := d.API.DeleteEntry(c.UserContext(), id); err != nil {
			return err
		}
		d.Changed(c.UserContext(), branch, console.Change{Resource: resource, Action: "deleted", ID: id})
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/branches/:branch/entries.csv
func EntriesCSVHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := export.EntriesCSV(&buf, finance.ForBranch(snap.Entries, branch)); err != nil {
			return err
		}
		return sendCSV(c, branch+"-entries.csv", buf.Bytes())
	}
}

// -------------------------
// SUMMARY & CUSTOMERS
// -------------------------

// GET /api/branches/:branch/summary
func SummaryHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		snap, err := d.Cache.Get(c.UserContext(), branch)
		if err != nil {
			return err
		}
		return c.JSON(finance.Summarize(branch, snap.Entries, snap.Expenses, snap.EmployeeExpenses))
	}
}

// GET /api/branches/:branch/customers
func CustomersHandler(d *console.Deps) fiber.Handler {
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
			"branch":    branch,
			"customers": finance.Customers(branch, snap.Entries),
		})
	}
}

func ledger(c *fiber.Ctx, d *console.Deps) (finance.Ledger, error) {
	branch, err := auth.Branch(c)
	if err != nil {
		return finance.Ledger{}, err
	}
	customer := httpx.Param(c, "customer")
	if customer == "" {
		return finance.Ledger{}, fiber.NewError(fiber.StatusBadRequest, "customer is required")
	}
	snap, err := d.Cache.Get(c.UserContext(), branch)
	if err != nil {
		return finance.Ledger{}, err
	}
	l := finance.CustomerLedger(branch, customer, snap.Entries)
	if len(l.Loans) == 0 && len(l.Payments) == 0 {
		return finance.Ledger{}, fiber.NewError(fiber.StatusNotFound, "no entries for customer")
	}
	return l, nil
}

// GET /api/branches/:branch/customers/:customer/ledger
func LedgerHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := ledger(c, d)
		if err != nil {
			return err
		}
		return c.JSON(l)
	}
}

// GET /api/branches/:branch/customers/:customer/ledger.csv
func LedgerCSVHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := ledger(c, d)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := export.LedgerCSV(&buf, l); err != nil {
			return err
		}
		return sendCSV(c, fmt.Sprintf("%s-%s-ledger.csv", l.Branch, l.Customer), buf.Bytes())
	}
}

func sendCSV(c *fiber.Ctx, filename string, body []byte) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(body)
}
