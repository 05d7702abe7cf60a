// Package category owns the per-branch expense category list: merging the
// defaults with what the branch's expenses use and with the staff overrides
// persisted as category settings.
package category

import (
	"strings"

	"finance-console/internal/models"
)

// DefaultCategories is offered to every branch unless it deletes one.
var DefaultCategories = []string{
	"Rent",
	"Electricity",
	"Petrol",
	"Salary",
	"Stationery",
	"Tea & Snacks",
	"Internet",
	"Maintenance",
	"Travel",
	"Miscellaneous",
}

type Input struct {
	Defaults         []string
	Expenses         []models.Expense
	EmployeeExpenses []models.EmployeeExpense
	Settings         models.CategorySettings
}

// Reconcile returns the ordered, duplicate-free category list of a branch:
// defaults, then categories used by expenses, then by employee expenses,
// then manually added ones. Names whose lower-cased form is in the deleted
// set are dropped, except manually added names, which always survive and
// keep the position where they were first seen. Duplicates are
// exact-string; the first occurrence keeps its place.
func Reconcile(in Input) []string {
	deleted := make(map[string]struct{}, len(in.Settings.DeletedCategories))
	for _, d := range in.Settings.DeletedCategories {
		deleted[strings.ToLower(d)] = struct{}{}
	}
	added := make(map[string]struct{}, len(in.Settings.AddedCategories))
	for _, a := range in.Settings.AddedCategories {
		added[a] = struct{}{}
	}

	out := make([]string, 0, len(in.Defaults)+len(in.Settings.AddedCategories))
	seen := make(map[string]struct{})
	push := func(name string) {
		if strings.TrimSpace(name) == "" {
			return
		}
		if _, keep := added[name]; !keep {
			if _, gone := deleted[strings.ToLower(name)]; gone {
				return
			}
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, name := range in.Defaults {
		push(name)
	}
	for _, e := range in.Expenses {
		push(e.Category)
	}
	for _, e := range in.EmployeeExpenses {
		push(e.Category)
	}
	for _, name := range in.Settings.AddedCategories {
		push(name)
	}
	return out
}

// contains reports whether list holds name, ignoring case.
func contains(list []string, name string) bool {
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}

func containsExact(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

func removeFold(list []string, name string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if !strings.EqualFold(v, name) {
			out = append(out, v)
		}
	}
	return out
}
