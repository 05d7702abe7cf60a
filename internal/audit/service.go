// Package audit records every batch run and its per-row outcomes so failed
// rows can be inspected and retried later.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"finance-console/internal/batch"
	"finance-console/internal/cascade"
	"finance-console/internal/models"
)

var ErrNothingToRetry = errors.New("batch run has no failed items")

type Service struct {
	store   Store
	planner *cascade.Planner
	runner  *batch.Runner
	log     logrus.FieldLogger

	retryMu sync.Mutex
}

// NewService registers the service as an observer of runner, so every batch
// the runner finishes is recorded.
func NewService(store Store, planner *cascade.Planner, runner *batch.Runner, log logrus.FieldLogger) *Service {
	s := &Service{store: store, planner: planner, runner: runner, log: log}
	runner.Observe(s)
	return s
}

// BatchCompleted stores a new run, or merges a retry into its existing run.
// Storage failures are logged; the batch itself already happened.
func (s *Service) BatchCompleted(ctx context.Context, res *batch.Result) {
	var err error
	if res.RunID == 0 {
		err = s.create(ctx, res)
	} else {
		err = s.merge(ctx, res)
	}
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"batch_key": res.Key,
			"operation": res.Operation,
		}).Error("batch run could not be recorded")
	}
}

func (s *Service) create(ctx context.Context, res *batch.Result) error {
	run := &models.BatchRun{
		Key:       res.Key,
		Branch:    res.Branch,
		Operation: res.Operation,
		Subject:   res.Subject,
		Total:     res.Total,
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
		Status:    res.Status(),
		Items:     make([]models.BatchItem, 0, len(res.Items)),
	}
	for _, it := range res.Items {
		run.Items = append(run.Items, models.BatchItem{
			Position:  it.Position,
			Resource:  it.Resource,
			RowID:     it.RowID,
			Action:    string(it.Action),
			Payload:   payload(it.Patch),
			Succeeded: it.Succeeded,
			Error:     truncate(it.Error, 500),
			Attempts:  1,
		})
	}
	if err := s.store.Create(ctx, run); err != nil {
		return err
	}
	res.RunID = run.ID
	return nil
}

func (s *Service) merge(ctx context.Context, res *batch.Result) error {
	run, err := s.store.Get(ctx, res.RunID)
	if err != nil {
		return err
	}
	byPos := make(map[int]batch.ItemResult, len(res.Items))
	for _, it := range res.Items {
		byPos[it.Position] = it
	}
	for i := range run.Items {
		it, ok := byPos[run.Items[i].Position]
		if !ok {
			continue
		}
		run.Items[i].Succeeded = it.Succeeded
		run.Items[i].Error = truncate(it.Error, 500)
		run.Items[i].Attempts++
	}
	recount(run)
	run.Retries++
	return s.store.Update(ctx, run)
}

func recount(run *models.BatchRun) {
	run.Total = len(run.Items)
	run.Succeeded, run.Failed = 0, 0
	for _, it := range run.Items {
		if it.Succeeded {
			run.Succeeded++
		} else {
			run.Failed++
		}
	}
	switch {
	case run.Failed == 0:
		run.Status = models.BatchStatusSucceeded
	case run.Succeeded == 0:
		run.Status = models.BatchStatusFailed
	default:
		run.Status = models.BatchStatusPartial
	}
}

func (s *Service) Get(ctx context.Context, id uint) (*models.BatchRun, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.BatchRun, error) {
	return s.store.List(ctx, f)
}

// Retry re-runs the failed items of run id against the current remote rows.
// The returned result covers only the retried items; the stored run is
// updated with their outcome.
func (s *Service) Retry(ctx context.Context, id uint) (*batch.Result, error) {
	s.retryMu.Lock()
	defer s.retryMu.Unlock()

	run, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]cascade.Item, 0, run.Failed)
	for _, it := range run.Items {
		if it.Succeeded {
			continue
		}
		patch, err := parsePayload(it.Payload)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", it.Position, err)
		}
		items = append(items, cascade.Item{
			Position: it.Position,
			Resource: it.Resource,
			RowID:    it.RowID,
			Action:   batch.Action(it.Action),
			Patch:    patch,
		})
	}
	if len(items) == 0 {
		return nil, ErrNothingToRetry
	}

	ops, err := s.planner.Retry(ctx, run.Branch, items)
	if err != nil {
		return nil, err
	}
	return s.runner.Run(ctx, batch.Job{
		RunID:     run.ID,
		Key:       run.Key,
		Operation: run.Operation,
		Branch:    run.Branch,
		Subject:   run.Subject,
	}, ops), nil
}

// payload encodes an item patch for the jsonb column; deletes store "null".
func payload(p *batch.Patch) string {
	if p == nil {
		return "null"
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "null"
	}
	return string(b)
}

func parsePayload(s string) (*batch.Patch, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var p batch.Patch
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return &p, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
