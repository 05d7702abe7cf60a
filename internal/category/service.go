package category

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"finance-console/internal/backend"
	"finance-console/internal/batch"
	"finance-console/internal/cascade"
	"finance-console/internal/models"
	"finance-console/internal/snapshot"
	"finance-console/internal/validation"
)

// Service applies category changes for a branch: it runs the row cascade and
// then persists the adjusted settings. Changes to the same branch are
// serialised.
type Service struct {
	api      backend.CategorySettings
	cache    *snapshot.Cache
	planner  *cascade.Planner
	runner   *batch.Runner
	defaults []string
	log      logrus.FieldLogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(api backend.CategorySettings, cache *snapshot.Cache, planner *cascade.Planner, runner *batch.Runner, defaults []string, log logrus.FieldLogger) *Service {
	if len(defaults) == 0 {
		defaults = DefaultCategories
	}
	return &Service{
		api:      api,
		cache:    cache,
		planner:  planner,
		runner:   runner,
		defaults: defaults,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Service) lock(branch string) func() {
	s.mu.Lock()
	l, ok := s.locks[branch]
	if !ok {
		l = &sync.Mutex{}
		s.locks[branch] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *Service) reconcile(snap *snapshot.Snapshot) []string {
	return Reconcile(Input{
		Defaults:         s.defaults,
		Expenses:         snap.Expenses,
		EmployeeExpenses: snap.EmployeeExpenses,
		Settings:         snap.Settings,
	})
}

// List returns the reconciled categories of branch.
func (s *Service) List(ctx context.Context, branch string) ([]string, error) {
	snap, err := s.cache.Get(ctx, branch)
	if err != nil {
		return nil, err
	}
	return s.reconcile(snap), nil
}

// Check reports whether name is one of the categories branch offers. An
// unknown name is a validation error, so rows are rejected before any write.
func (s *Service) Check(ctx context.Context, branch, name string) error {
	list, err := s.List(ctx, branch)
	if err != nil {
		return err
	}
	if !containsExact(list, name) {
		return validation.Invalid("category", fmt.Sprintf("%q is not a category of this branch", name))
	}
	return nil
}

// Add makes name available to branch and returns the new list.
func (s *Service) Add(ctx context.Context, branch, name string) ([]string, error) {
	key := models.BranchKey(branch)
	name = strings.TrimSpace(name)
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, err
	}
	defer s.lock(key)()

	snap, err := s.cache.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if contains(s.reconcile(snap), name) {
		return nil, fmt.Errorf("%q: %w", name, ErrExists)
	}

	m := NewMaster()
	m.Load(key, snap.Settings)
	if err := m.Add(name); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, m); err != nil {
		return nil, err
	}
	return s.List(ctx, key)
}

// Rename moves every expense and employee expense of branch from one
// category to another. Row failures are reported in the result; the settings
// change is persisted regardless so failed rows can be retried. If that save
// fails the result is still returned, with ErrSettingsNotSaved.
func (s *Service) Rename(ctx context.Context, branch, from, to string) (*batch.Result, error) {
	key := models.BranchKey(branch)
	to = strings.TrimSpace(to)
	if err := validation.ValidateCategoryName(to); err != nil {
		return nil, err
	}
	defer s.lock(key)()

	snap, err := s.cache.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	current := s.reconcile(snap)
	if !containsExact(current, from) {
		return nil, fmt.Errorf("%q: %w", from, ErrUnknown)
	}
	if from == to || (!strings.EqualFold(from, to) && contains(current, to)) {
		return nil, fmt.Errorf("%q: %w", to, ErrExists)
	}

	ops, err := s.planner.RenameCategory(ctx, key, from, to)
	if err != nil {
		return nil, err
	}
	res := s.runner.Run(ctx, batch.Job{
		Operation: cascade.OpCategoryRename,
		Branch:    key,
		Subject:   from + " -> " + to,
	}, ops)

	m := NewMaster()
	m.Load(key, snap.Settings)
	if err := m.Rename(from, to); err != nil {
		return res, err
	}
	return res, s.commitAfter(ctx, m)
}

// Delete removes name from branch together with every expense and employee
// expense filed under it. Nothing happens unless confirmed is true.
func (s *Service) Delete(ctx context.Context, branch, name string, confirmed bool) (*batch.Result, error) {
	if !confirmed {
		return nil, ErrNotConfirmed
	}
	key := models.BranchKey(branch)
	defer s.lock(key)()

	snap, err := s.cache.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !containsExact(s.reconcile(snap), name) {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknown)
	}

	ops, err := s.planner.DeleteCategory(ctx, key, name)
	if err != nil {
		return nil, err
	}
	res := s.runner.Run(ctx, batch.Job{
		Operation: cascade.OpCategoryDelete,
		Branch:    key,
		Subject:   name,
	}, ops)

	m := NewMaster()
	m.Load(key, snap.Settings)
	if err := m.Remove(name); err != nil {
		return res, err
	}
	return res, s.commitAfter(ctx, m)
}

// commitAfter persists settings once rows have been mutated; a failure is
// marked so callers still report the batch.
func (s *Service) commitAfter(ctx context.Context, m *Master) error {
	if err := s.commit(ctx, m); err != nil {
		s.log.WithError(err).WithField("branch", m.Branch()).Warn("rows changed but category settings not saved")
		return fmt.Errorf("%w: %w", ErrSettingsNotSaved, err)
	}
	return nil
}

func (s *Service) commit(ctx context.Context, m *Master) error {
	defer s.cache.Invalidate(m.Branch())
	if err := m.Commit(ctx, s.api); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"branch":  m.Branch(),
		"added":   len(m.settings.AddedCategories),
		"deleted": len(m.settings.DeletedCategories),
	}).Debug("category settings saved")
	return nil
}
