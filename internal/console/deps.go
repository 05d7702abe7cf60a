// Package console carries the collaborators every console handler needs.
package console

import (
	"context"

	"github.com/sirupsen/logrus"

	"finance-console/internal/backend"
	"finance-console/internal/batch"
	"finance-console/internal/cascade"
	"finance-console/internal/category"
	"finance-console/internal/events"
	"finance-console/internal/snapshot"
)

type Deps struct {
	API        backend.Backend
	Cache      *snapshot.Cache
	Planner    *cascade.Planner
	Runner     *batch.Runner
	Categories *category.Service
	Events     events.Publisher
	Log        logrus.FieldLogger
}

// Change describes a single-row write.
type Change struct {
	Resource string `json:"resource"`
	Action   string `json:"action"` // created / updated / deleted
	ID       string `json:"id"`
}

// Changed drops the branch snapshot and publishes "<resource>.<action>".
func (d *Deps) Changed(ctx context.Context, branch string, ch Change) {
	d.Cache.Invalidate(branch)
	events.Notify(ctx, d.Events, d.Log, events.NewEvent(ch.Resource+"."+ch.Action, branch, ch))
	d.Log.WithFields(logrus.Fields{
		"branch":   branch,
		"resource": ch.Resource,
		"action":   ch.Action,
		"id":       ch.ID,
	}).Debug("row written")
}
