package models

// Employee is a roster entry scoped to a branch. Only Name is required.
type Employee struct {
	ID          string `json:"_id,omitempty"`
	Branch      string `json:"branch,omitempty"`
	Name        string `json:"name"`
	Mobile      string `json:"mobile,omitempty"`
	Designation string `json:"designation,omitempty"`
	Department  string `json:"department,omitempty"`
	JoiningDate Date   `json:"joiningDate"`
	Salary      Amount `json:"salary"`
}
