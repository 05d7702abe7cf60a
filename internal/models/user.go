package models

type UserRole string

const (
	// RoleAdmin sees every branch, the global dashboard and branch management.
	RoleAdmin UserRole = "admin"
	// RoleBranch is the shared-password branch login, scoped to one branch.
	RoleBranch UserRole = "branch"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleBranch
}
