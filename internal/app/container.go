// Package app wires the console: backend, caches, batch runner, audit
// store, event publisher and the fiber application.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"finance-console/internal/audit"
	"finance-console/internal/backend"
	"finance-console/internal/backend/httpapi"
	"finance-console/internal/backend/memory"
	"finance-console/internal/batch"
	"finance-console/internal/cascade"
	"finance-console/internal/category"
	"finance-console/internal/config"
	"finance-console/internal/console"
	"finance-console/internal/database"
	"finance-console/internal/events"
	"finance-console/internal/snapshot"
)

// NewBackend builds the Backend selected by DATA_BACKEND.
func NewBackend(cfg *config.Config, log logrus.FieldLogger) (backend.Backend, error) {
	switch t := backend.Type(cfg.DataBackend); t {
	case backend.HTTPBackend:
		return httpapi.New(cfg.APIBaseURL, cfg.APITimeout, log.WithField("component", "httpapi")), nil
	case backend.MemoryBackend:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported data backend %q", t)
	}
}

type Container struct {
	Config     *config.Config
	Log        *logrus.Logger
	API        backend.Backend
	Deps       *console.Deps
	Categories *category.Service
	Audit      *audit.Service

	db        *gorm.DB
	publisher events.Publisher
}

// New builds the container with the configured backend.
func New(cfg *config.Config, log *logrus.Logger) (*Container, error) {
	api, err := NewBackend(cfg, log)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(cfg, log, api)
}

// NewWithBackend builds the container over an existing backend.
func NewWithBackend(cfg *config.Config, log *logrus.Logger, api backend.Backend) (*Container, error) {
	c := &Container{Config: cfg, Log: log, API: api}

	defaults, err := config.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		return nil, err
	}

	var store audit.Store = audit.NewMemoryStore()
	if cfg.DatabaseDSN != "" {
		db, err := database.Open(cfg.DatabaseDSN, log)
		if err != nil {
			return nil, err
		}
		c.db = db
		store = audit.NewGormStore(db)
	}

	var pub events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, log.WithField("component", "amqp"))
		if err != nil {
			c.Close()
			return nil, err
		}
		pub = p
	}
	c.publisher = pub

	cache := snapshot.New(api, cfg.SnapshotTTL, log.WithField("component", "snapshot"))
	planner := cascade.NewPlanner(api)
	runner := batch.NewRunner(cfg.BatchConcurrency, log.WithField("component", "batch"))

	// audit first: it assigns the run id the later observers report
	c.Audit = audit.NewService(store, planner, runner, log.WithField("component", "audit"))
	runner.Observe(events.NewBatchObserver(pub, log))
	runner.Observe(batch.ObserverFunc(func(_ context.Context, res *batch.Result) {
		cache.Invalidate(res.Branch)
	}))

	c.Categories = category.NewService(api, cache, planner, runner, defaults, log.WithField("component", "category"))
	c.Deps = &console.Deps{
		API:        api,
		Cache:      cache,
		Planner:    planner,
		Runner:     runner,
		Categories: c.Categories,
		Events:     pub,
		Log:        log,
	}

	log.WithFields(logrus.Fields{
		"backend":     cfg.DataBackend,
		"audit_store": auditStoreName(c.db),
		"events":      cfg.AMQPURL != "",
	}).Debug("container ready")
	return c, nil
}

func auditStoreName(db *gorm.DB) string {
	if db == nil {
		return "memory"
	}
	return "postgres"
}

// Close releases the publisher and the database.
func (c *Container) Close() error {
	var errs []error
	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}
	if c.db != nil {
		errs = append(errs, database.Close(c.db))
	}
	return errors.Join(errs...)
}
