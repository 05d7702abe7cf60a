package models

// Expense is a branch-level indirect expense.
type Expense struct {
	ID          string `json:"_id,omitempty"`
	Branch      string `json:"branch"`
	Category    string `json:"category"`
	Amount      Amount `json:"amount"`
	Month       string `json:"month"`
	Date        Date   `json:"date"`
	Description string `json:"description,omitempty"`
}

// EmployeeExpense is an expense booked against an employee. EmployeeName is
// free text matched against Employee.Name for display only.
type EmployeeExpense struct {
	ID           string `json:"_id,omitempty"`
	Branch       string `json:"branch"`
	EmployeeName string `json:"employeeName"`
	Category     string `json:"category"`
	Amount       Amount `json:"amount"`
	Date         Date   `json:"date"`
	Description  string `json:"description,omitempty"`
}

// CustomerExpense is an expense charged to a customer (/api/customer-expenses).
type CustomerExpense struct {
	ID          string `json:"_id,omitempty"`
	Branch      string `json:"branch"`
	Customer    string `json:"customer"`
	Category    string `json:"category"`
	Amount      Amount `json:"amount"`
	Date        Date   `json:"date"`
	Description string `json:"description,omitempty"`
}
