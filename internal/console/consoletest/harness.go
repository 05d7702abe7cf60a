// Package consoletest builds a fiber app over the memory backend for handler
// tests.
package consoletest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"finance-console/internal/auth"
	"finance-console/internal/backend/memory"
	"finance-console/internal/batch"
	"finance-console/internal/cascade"
	"finance-console/internal/category"
	"finance-console/internal/console"
	"finance-console/internal/events"
	"finance-console/internal/httpx"
	"finance-console/internal/models"
	"finance-console/internal/snapshot"
)

type Harness struct {
	App    *fiber.App
	Store  *memory.Store
	Events *events.Recorder
	Deps   *console.Deps
	Logs   *test.Hook

	// Role and Branch are the session every request runs as.
	Role   models.UserRole
	Branch string
}

func New(t *testing.T, mappings ...httpx.Mapping) *Harness {
	t.Helper()
	log, hook := test.NewNullLogger()
	store := memory.New()
	rec := &events.Recorder{}
	cache := snapshot.New(store, 0, log)
	planner := cascade.NewPlanner(store)
	runner := batch.NewRunner(2, log)
	h := &Harness{
		Store:  store,
		Events: rec,
		Logs:   hook,
		Role:   models.RoleAdmin,
		Deps: &console.Deps{
			API:        store,
			Cache:      cache,
			Planner:    planner,
			Runner:     runner,
			Categories: category.NewService(store, cache, planner, runner, nil, log),
			Events:     rec,
			Log:        log,
		},
	}
	h.App = fiber.New(fiber.Config{
		Immutable:    true,
		ErrorHandler: httpx.ErrorHandler(log, mappings...),
	})
	h.App.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserRoleKey, h.Role)
		c.Locals(auth.CtxBranchKey, h.Branch)
		return c.Next()
	})
	return h
}

// AsBranch switches the session to a branch login.
func (h *Harness) AsBranch(key string) {
	h.Role = models.RoleBranch
	h.Branch = key
}

// Do sends a request with an optional JSON body and returns status and body.
func (h *Harness) Do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// JSON decodes a response body into v.
func JSON(t *testing.T, raw []byte, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}
