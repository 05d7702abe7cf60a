// Package validation checks operator input before anything is sent to the
// remote API. Every problem in a record is reported at once.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"finance-console/internal/models"
)

var ErrInvalid = errors.New("invalid input")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors is the set of field problems found in one record.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(parts, "; "))
}

func (e Errors) Is(target error) bool {
	return target == ErrInvalid
}

func (e *Errors) add(field, msg string) {
	*e = append(*e, FieldError{Field: field, Message: msg})
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidateMobile requires exactly ten ASCII digits.
func ValidateMobile(mobile string) error {
	if len(mobile) != 10 {
		return fmt.Errorf("mobile must be exactly 10 digits, got %d characters", len(mobile))
	}
	for _, r := range mobile {
		if r < '0' || r > '9' {
			return fmt.Errorf("mobile must contain digits only")
		}
	}
	return nil
}

func required(errs *Errors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.add(field, "is required")
	}
}

func positive(errs *Errors, field string, a models.Amount) {
	if !a.IsPositive() {
		errs.add(field, "must be greater than zero")
	}
}

func nonNegative(errs *Errors, field string, a models.Amount) {
	if a.IsNegative() {
		errs.add(field, "must not be negative")
	}
}

func mobile(errs *Errors, value string) {
	if err := ValidateMobile(value); err != nil {
		errs.add("mobile", err.Error())
	}
}

// ValidateLoan checks a loan entry as captured on the loan form.
func ValidateLoan(e models.BranchEntry) error {
	var errs Errors
	required(&errs, "customer", e.Customer)
	required(&errs, "place", e.Place)
	if e.IsPayment() {
		errs.add("place", fmt.Sprintf("%q is reserved for payments", models.PaymentPlace))
	}
	mobile(&errs, e.Mobile)
	positive(&errs, "loan", e.Loan)
	nonNegative(&errs, "interest", e.Interest)
	nonNegative(&errs, "emi", e.EMI)
	if e.Date.IsZero() {
		errs.add("date", "is required")
	}
	return errs.orNil()
}

// ValidatePayment checks a repayment; amount is the value stored in the loan
// field. A blank mobile is allowed and later replaced by the placeholder.
func ValidatePayment(customer, mobileNo string, amount models.Amount, date models.Date) error {
	var errs Errors
	required(&errs, "customer", customer)
	if strings.TrimSpace(mobileNo) != "" {
		mobile(&errs, mobileNo)
	}
	positive(&errs, "amount", amount)
	if date.IsZero() {
		errs.add("date", "is required")
	}
	return errs.orNil()
}

func ValidateExpense(e models.Expense) error {
	var errs Errors
	required(&errs, "category", e.Category)
	positive(&errs, "amount", e.Amount)
	if e.Date.IsZero() {
		errs.add("date", "is required")
	}
	return errs.orNil()
}

func ValidateEmployeeExpense(e models.EmployeeExpense) error {
	var errs Errors
	required(&errs, "employeeName", e.EmployeeName)
	required(&errs, "category", e.Category)
	positive(&errs, "amount", e.Amount)
	return errs.orNil()
}

func ValidateCustomerExpense(e models.CustomerExpense) error {
	var errs Errors
	required(&errs, "branch", e.Branch)
	required(&errs, "customer", e.Customer)
	required(&errs, "category", e.Category)
	positive(&errs, "amount", e.Amount)
	return errs.orNil()
}

func ValidateEmployee(e models.Employee) error {
	var errs Errors
	required(&errs, "name", e.Name)
	if e.Mobile != "" {
		mobile(&errs, e.Mobile)
	}
	nonNegative(&errs, "salary", e.Salary)
	return errs.orNil()
}

// ValidateCategoryName rejects blank category names.
func ValidateCategoryName(name string) error {
	var errs Errors
	required(&errs, "name", name)
	return errs.orNil()
}

// Invalid reports a single field problem found outside the record rules,
// such as a value the branch does not offer.
func Invalid(field, msg string) error {
	return Errors{{Field: field, Message: msg}}
}

// Fields returns the field problems carried by err, if any.
func Fields(err error) []FieldError {
	var errs Errors
	if errors.As(err, &errs) {
		return errs
	}
	return nil
}
