package models

import "strings"

// Branch is the tenant every other record is partitioned by. ID is the remote
// API's stable identifier; Name is the mutable display name.
type Branch struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// Key is the lower-cased name the remote API files branch data under.
func (b Branch) Key() string {
	return BranchKey(b.Name)
}

// BranchKey normalises a branch name or path segment for comparison.
func BranchKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameBranch compares two branch labels case-insensitively.
func SameBranch(a, b string) bool {
	return BranchKey(a) == BranchKey(b)
}
