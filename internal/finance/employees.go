package finance

import (
	"finance-console/internal/models"
)

// EmployeeGroup gathers the employee expenses booked under one name.
type EmployeeGroup struct {
	EmployeeName string                   `json:"employee_name"`
	Employee     *models.Employee         `json:"employee,omitempty"`
	Orphaned     bool                     `json:"orphaned"`
	Rows         []models.EmployeeExpense `json:"rows"`
	Total        models.Amount            `json:"total"`
}

// GroupEmployeeExpenses joins rows to the roster by exact name. Every roster
// employee gets a group (possibly empty), in roster order; rows whose name
// matches nobody, e.g. after a rename or deletion, follow as orphaned groups
// in first-seen order rather than being dropped.
func GroupEmployeeExpenses(employees []models.Employee, rows []models.EmployeeExpense) []EmployeeGroup {
	groups := make([]EmployeeGroup, 0, len(employees))
	index := make(map[string]int, len(employees))
	for i := range employees {
		emp := employees[i]
		if _, dup := index[emp.Name]; dup {
			continue
		}
		index[emp.Name] = len(groups)
		groups = append(groups, EmployeeGroup{
			EmployeeName: emp.Name,
			Employee:     &emp,
			Rows:         []models.EmployeeExpense{},
		})
	}

	for _, r := range rows {
		i, ok := index[r.EmployeeName]
		if !ok {
			i = len(groups)
			index[r.EmployeeName] = i
			groups = append(groups, EmployeeGroup{
				EmployeeName: r.EmployeeName,
				Orphaned:     true,
				Rows:         []models.EmployeeExpense{},
			})
		}
		groups[i].Rows = append(groups[i].Rows, r)
		groups[i].Total = groups[i].Total.Plus(r.Amount)
	}
	return groups
}
