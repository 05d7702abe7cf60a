package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"finance-console/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("batch run not found")

type Filter struct {
	Branch    string
	Operation string
	Status    models.BatchStatus
	Limit     int
}

// Store persists batch runs together with their items.
type Store interface {
	Create(ctx context.Context, run *models.BatchRun) error
	// Update saves the run counters and every item in run.Items.
	Update(ctx context.Context, run *models.BatchRun) error
	Get(ctx context.Context, id uint) (*models.BatchRun, error)
	// List returns runs newest first, without items.
	List(ctx context.Context, f Filter) ([]models.BatchRun, error)
}

// -------------------------
// gorm
// -------------------------

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, run *models.BatchRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("batch run could not be saved: %w", err)
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, run *models.BatchRun) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(run).Error; err != nil {
			return fmt.Errorf("batch run could not be updated: %w", err)
		}
		for i := range run.Items {
			if err := tx.Save(&run.Items[i]).Error; err != nil {
				return fmt.Errorf("batch item %d could not be updated: %w", run.Items[i].Position, err)
			}
		}
		return nil
	})
}

func (s *GormStore) Get(ctx context.Context, id uint) (*models.BatchRun, error) {
	var run models.BatchRun
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("batch run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *GormStore) List(ctx context.Context, f Filter) ([]models.BatchRun, error) {
	dbq := s.db.WithContext(ctx).Model(&models.BatchRun{})
	if f.Branch != "" {
		dbq = dbq.Where("branch = ?", f.Branch)
	}
	if f.Operation != "" {
		dbq = dbq.Where("operation = ?", f.Operation)
	}
	if f.Status != "" {
		dbq = dbq.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		dbq = dbq.Limit(f.Limit)
	}

	var runs []models.BatchRun
	if err := dbq.Order("created_at DESC").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("batch runs could not be listed: %w", err)
	}
	return runs, nil
}

// -------------------------
// memory
// -------------------------

// MemoryStore keeps runs in process; used when no DATABASE_DSN is set.
type MemoryStore struct {
	mu     sync.Mutex
	nextID uint
	runs   map[uint]models.BatchRun
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[uint]models.BatchRun)}
}

func cloneRun(run models.BatchRun) models.BatchRun {
	run.Items = append([]models.BatchItem(nil), run.Items...)
	return run
}

func (s *MemoryStore) Create(_ context.Context, run *models.BatchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now()
	run.ID = s.nextID
	run.CreatedAt = now
	run.UpdatedAt = now
	for i := range run.Items {
		run.Items[i].ID = uint(i + 1)
		run.Items[i].BatchRunID = run.ID
		run.Items[i].UpdatedAt = now
	}
	s.runs[run.ID] = cloneRun(*run)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, run *models.BatchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return fmt.Errorf("batch run %d: %w", run.ID, ErrNotFound)
	}
	run.UpdatedAt = time.Now()
	s.runs[run.ID] = cloneRun(*run)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uint) (*models.BatchRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("batch run %d: %w", id, ErrNotFound)
	}
	out := cloneRun(run)
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]models.BatchRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BatchRun, 0, len(s.runs))
	for _, run := range s.runs {
		if f.Branch != "" && run.Branch != f.Branch {
			continue
		}
		if f.Operation != "" && run.Operation != f.Operation {
			continue
		}
		if f.Status != "" && run.Status != f.Status {
			continue
		}
		run.Items = nil
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
