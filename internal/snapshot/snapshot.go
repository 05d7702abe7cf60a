// Package snapshot caches the per-branch data the console reads on every
// screen. Each branch carries a generation counter: writes bump it, and a load
// that finishes after a bump is discarded instead of overwriting newer state.
package snapshot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"finance-console/internal/backend"
	"finance-console/internal/models"
)

// staleRetries is how many times a load superseded by a write is repeated
// before its result is returned uncached.
const staleRetries = 2

// Snapshot is everything filed under one branch key. Snapshots are shared
// between callers and must be treated as read-only.
type Snapshot struct {
	Branch           string
	Generation       uint64
	LoadedAt         time.Time
	Entries          []models.BranchEntry
	Expenses         []models.Expense
	EmployeeExpenses []models.EmployeeExpense
	Employees        []models.Employee
	Settings         models.CategorySettings
}

type Cache struct {
	api backend.Backend
	ttl time.Duration
	log logrus.FieldLogger

	mu    sync.Mutex
	gens  map[string]uint64
	snaps map[string]*Snapshot
	group singleflight.Group
}

// New returns a cache over api. A ttl of zero keeps snapshots until they are
// invalidated.
func New(api backend.Backend, ttl time.Duration, log logrus.FieldLogger) *Cache {
	return &Cache{
		api:   api,
		ttl:   ttl,
		log:   log,
		gens:  make(map[string]uint64),
		snaps: make(map[string]*Snapshot),
	}
}

// Get returns the cached snapshot for branch, loading it when missing or
// expired.
func (c *Cache) Get(ctx context.Context, branch string) (*Snapshot, error) {
	key := models.BranchKey(branch)
	c.mu.Lock()
	snap, ok := c.snaps[key]
	c.mu.Unlock()
	if ok && (c.ttl <= 0 || time.Since(snap.LoadedAt) < c.ttl) {
		return snap, nil
	}
	return c.Load(ctx, key)
}

// Load fetches branch from the remote API, bypassing the cache.
func (c *Cache) Load(ctx context.Context, branch string) (*Snapshot, error) {
	key := models.BranchKey(branch)
	for attempt := 0; ; attempt++ {
		gen := c.Generation(key)
		v, err, _ := c.group.Do(key+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
			return c.fetch(ctx, key, gen)
		})
		if err != nil {
			return nil, err
		}
		snap := v.(*Snapshot)

		if c.store(snap) {
			return snap, nil
		}
		if attempt >= staleRetries {
			c.log.WithField("branch", key).Warn("snapshot kept going stale, returning uncached")
			return snap, nil
		}
		c.log.WithFields(logrus.Fields{"branch": key, "generation": gen}).Debug("discarding stale snapshot")
	}
}

// Invalidate drops the branch snapshot and supersedes any load in flight.
func (c *Cache) Invalidate(branch string) {
	key := models.BranchKey(branch)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	delete(c.snaps, key)
}

// InvalidateAll is used after writes that span branches.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.snaps {
		c.gens[key]++
	}
	c.snaps = make(map[string]*Snapshot)
}

func (c *Cache) Generation(branch string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[models.BranchKey(branch)]
}

// store caches snap if no write happened since its load began.
func (c *Cache) store(snap *Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[snap.Branch] != snap.Generation {
		return false
	}
	c.snaps[snap.Branch] = snap
	return true
}

func (c *Cache) fetch(ctx context.Context, key string, gen uint64) (*Snapshot, error) {
	snap := &Snapshot{Branch: key, Generation: gen}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := c.api.ListBranchEntries(gctx, key)
		if err != nil {
			return fmt.Errorf("load entries: %w", err)
		}
		snap.Entries = rows
		return nil
	})
	g.Go(func() error {
		rows, err := c.api.ListExpenses(gctx, key)
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		snap.Expenses = rows
		return nil
	})
	g.Go(func() error {
		rows, err := c.api.ListEmployeeExpenses(gctx, key)
		if err != nil {
			return fmt.Errorf("load employee expenses: %w", err)
		}
		snap.EmployeeExpenses = rows
		return nil
	})
	g.Go(func() error {
		rows, err := c.api.ListEmployees(gctx, key)
		if err != nil {
			return fmt.Errorf("load employees: %w", err)
		}
		snap.Employees = rows
		return nil
	})
	g.Go(func() error {
		s, err := c.api.GetCategorySettings(gctx, key)
		if err != nil {
			return fmt.Errorf("load category settings: %w", err)
		}
		snap.Settings = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.LoadedAt = time.Now()
	return snap, nil
}
