// Package batch runs multi-row mutations against the remote API. A batch
// never stops at the first failure: every row is attempted and the outcome
// of each one is reported.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"finance-console/internal/models"
)

type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Patch is the single field an update item rewrites.
type Patch struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Op is one row mutation. Position identifies it within its run and is kept
// across retries.
type Op struct {
	Position int
	Resource string
	RowID    string
	Action   Action
	Patch    *Patch
	Do       func(ctx context.Context) error
}

type ItemResult struct {
	Position  int    `json:"position"`
	Resource  string `json:"resource"`
	RowID     string `json:"row_id"`
	Action    Action `json:"action"`
	Patch     *Patch `json:"patch,omitempty"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
	err       error
}

func (r ItemResult) Err() error { return r.err }

// Job names the batch. RunID and Key are set when re-running items of an
// existing run.
type Job struct {
	RunID     uint
	Key       string
	Operation string
	Branch    string
	Subject   string
}

type Result struct {
	RunID     uint          `json:"run_id"`
	Key       string        `json:"key"`
	Operation string        `json:"operation"`
	Branch    string        `json:"branch"`
	Subject   string        `json:"subject"`
	Retry     bool          `json:"retry"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Items     []ItemResult  `json:"items"`
	Duration  time.Duration `json:"-"`
}

// Err joins the errors of all failed rows; nil when every row succeeded.
func (r *Result) Err() error {
	var errs []error
	for _, it := range r.Items {
		if it.err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", it.Resource, it.RowID, it.err))
		}
	}
	return errors.Join(errs...)
}

// Partial reports whether some, but not all, rows failed.
func (r *Result) Partial() bool {
	return r.Failed > 0 && r.Succeeded > 0
}

func (r *Result) Status() models.BatchStatus {
	switch {
	case r.Failed == 0:
		return models.BatchStatusSucceeded
	case r.Succeeded == 0:
		return models.BatchStatusFailed
	default:
		return models.BatchStatusPartial
	}
}

// Failures returns the failed items only.
func (r *Result) Failures() []ItemResult {
	out := make([]ItemResult, 0, r.Failed)
	for _, it := range r.Items {
		if !it.Succeeded {
			out = append(out, it)
		}
	}
	return out
}

// Observer is told about every finished batch, in registration order.
type Observer interface {
	BatchCompleted(ctx context.Context, res *Result)
}

type ObserverFunc func(ctx context.Context, res *Result)

func (f ObserverFunc) BatchCompleted(ctx context.Context, res *Result) { f(ctx, res) }

type Runner struct {
	limit     int
	log       logrus.FieldLogger
	observers []Observer
}

// NewRunner runs at most limit rows concurrently (1 when limit < 1).
func NewRunner(limit int, log logrus.FieldLogger) *Runner {
	if limit < 1 {
		limit = 1
	}
	return &Runner{limit: limit, log: log}
}

// Observe registers o. Not safe to call concurrently with Run.
func (r *Runner) Observe(o Observer) {
	r.observers = append(r.observers, o)
}

// Run attempts every op and returns the collected outcome. Row failures are
// recorded in the result, never returned.
func (r *Runner) Run(ctx context.Context, job Job, ops []Op) *Result {
	start := time.Now()
	res := &Result{
		RunID:     job.RunID,
		Key:       job.Key,
		Operation: job.Operation,
		Branch:    job.Branch,
		Subject:   job.Subject,
		Retry:     job.RunID != 0,
		Total:     len(ops),
		Items:     make([]ItemResult, len(ops)),
	}
	if res.Key == "" {
		res.Key = uuid.NewString()
	}

	g := new(errgroup.Group)
	g.SetLimit(r.limit)
	for i, op := range ops {
		g.Go(func() error {
			item := ItemResult{
				Position: op.Position,
				Resource: op.Resource,
				RowID:    op.RowID,
				Action:   op.Action,
				Patch:    op.Patch,
			}
			var err error
			if ctx.Err() != nil {
				err = ctx.Err()
			} else {
				err = op.Do(ctx)
			}
			if err != nil {
				item.err = err
				item.Error = err.Error()
			} else {
				item.Succeeded = true
			}
			res.Items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	for _, it := range res.Items {
		if it.Succeeded {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
	res.Duration = time.Since(start)

	entry := r.log.WithFields(logrus.Fields{
		"batch_key": res.Key,
		"operation": res.Operation,
		"branch":    res.Branch,
		"total":     res.Total,
		"failed":    res.Failed,
		"latency":   res.Duration,
	})
	if res.Failed > 0 {
		entry.WithError(res.Err()).Warn("batch finished with failures")
	} else {
		entry.Info("batch finished")
	}

	for _, o := range r.observers {
		o.BatchCompleted(ctx, res)
	}
	return res
}
