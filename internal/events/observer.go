package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"finance-console/internal/batch"
	"finance-console/internal/models"
)

// BatchSummary is the payload of batch.completed.
type BatchSummary struct {
	RunID     uint               `json:"run_id"`
	Key       string             `json:"key"`
	Operation string             `json:"operation"`
	Subject   string             `json:"subject"`
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Status    models.BatchStatus `json:"status"`
	Retry     bool               `json:"retry"`
}

// BatchObserver publishes batch.completed for every finished batch.
// Register it after the audit observer so RunID is known.
type BatchObserver struct {
	pub Publisher
	log logrus.FieldLogger
}

func NewBatchObserver(pub Publisher, log logrus.FieldLogger) *BatchObserver {
	return &BatchObserver{pub: pub, log: log}
}

func (o *BatchObserver) BatchCompleted(ctx context.Context, res *batch.Result) {
	e := NewEvent(TypeBatchCompleted, res.Branch, BatchSummary{
		RunID:     res.RunID,
		Key:       res.Key,
		Operation: res.Operation,
		Subject:   res.Subject,
		Total:     res.Total,
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
		Status:    res.Status(),
		Retry:     res.Retry,
	})
	Notify(ctx, o.pub, o.log, e)
}

// Notify publishes e and logs, rather than returns, a failure.
func Notify(ctx context.Context, pub Publisher, log logrus.FieldLogger, e Event) {
	if err := pub.Publish(ctx, e); err != nil {
		log.WithError(err).WithField("event", e.Type).Warn("event could not be published")
	}
}
