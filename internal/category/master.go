package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finance-console/internal/models"
)

var (
	ErrNotLoaded    = errors.New("category settings not loaded")
	ErrNotConfirmed = errors.New("deletion must be confirmed")
	ErrExists       = errors.New("category already exists")
	ErrUnknown      = errors.New("unknown category")
)

// ErrSettingsNotSaved is returned together with a batch result whose rows
// were already written.
var ErrSettingsNotSaved = errors.New("category settings not saved")

type State int

const (
	Uninitialized State = iota
	Loaded
	Dirty
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Dirty:
		return "dirty"
	default:
		return "uninitialized"
	}
}

// Saver persists a branch's category settings.
type Saver interface {
	SaveCategorySettings(ctx context.Context, branch string, s models.CategorySettings) error
}

// Master tracks one branch's category settings. Loading never writes back;
// only mutations mark it Dirty, and Commit persists Dirty state once.
type Master struct {
	branch   string
	state    State
	settings models.CategorySettings
}

func NewMaster() *Master {
	return &Master{}
}

// Load replaces the tracked settings with the persisted ones of branch.
func (m *Master) Load(branch string, s models.CategorySettings) {
	m.branch = models.BranchKey(branch)
	m.settings = s.Clone()
	if m.settings.AddedCategories == nil {
		m.settings.AddedCategories = []string{}
	}
	if m.settings.DeletedCategories == nil {
		m.settings.DeletedCategories = []string{}
	}
	m.state = Loaded
}

// Reset forgets the branch, e.g. when the operator switches branches.
func (m *Master) Reset() {
	*m = Master{}
}

func (m *Master) State() State { return m.state }

func (m *Master) Branch() string { return m.branch }

func (m *Master) Settings() models.CategorySettings { return m.settings.Clone() }

func (m *Master) mutate() error {
	if m.state == Uninitialized {
		return ErrNotLoaded
	}
	m.state = Dirty
	return nil
}

// Add records a manually added category. A matching entry in the deleted set
// is left alone; added names win over it during reconciliation.
func (m *Master) Add(name string) error {
	if err := m.mutate(); err != nil {
		return err
	}
	if !containsExact(m.settings.AddedCategories, name) {
		m.settings.AddedCategories = append(m.settings.AddedCategories, name)
	}
	return nil
}

// Rename replaces from with to in the added set and suppresses from, unless
// the two differ only in case.
func (m *Master) Rename(from, to string) error {
	if err := m.mutate(); err != nil {
		return err
	}
	m.settings.AddedCategories = removeFold(m.settings.AddedCategories, from)
	if !containsExact(m.settings.AddedCategories, to) {
		m.settings.AddedCategories = append(m.settings.AddedCategories, to)
	}
	if !strings.EqualFold(from, to) {
		m.suppress(from)
	}
	return nil
}

// Remove suppresses name and drops it from the added set.
func (m *Master) Remove(name string) error {
	if err := m.mutate(); err != nil {
		return err
	}
	m.suppress(name)
	m.settings.AddedCategories = removeFold(m.settings.AddedCategories, name)
	return nil
}

func (m *Master) suppress(name string) {
	lower := strings.ToLower(name)
	if !containsExact(m.settings.DeletedCategories, lower) {
		m.settings.DeletedCategories = append(m.settings.DeletedCategories, lower)
	}
}

// Commit persists Dirty settings and returns to Loaded. It is a no-op in any
// other state.
func (m *Master) Commit(ctx context.Context, s Saver) error {
	if m.state != Dirty {
		return nil
	}
	if err := s.SaveCategorySettings(ctx, m.branch, m.settings.Clone()); err != nil {
		return fmt.Errorf("save category settings for %s: %w", m.branch, err)
	}
	m.state = Loaded
	return nil
}
