// Package admin serves branch management for admin logins.
package admin

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"finance-console/internal/batch"
	"finance-console/internal/cascade"
	"finance-console/internal/console"
	"finance-console/internal/httpx"
	"finance-console/internal/models"
)

type BranchResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

type BranchRequest struct {
	Name string `json:"name"`
}

// UpdateBranchResponse carries the relabel batch when the branch key changed.
type UpdateBranchResponse struct {
	Branch   BranchResponse     `json:"branch"`
	Batch    *batch.Result      `json:"batch,omitempty"`
	Status   models.BatchStatus `json:"status,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
}

func toResponse(b models.Branch) BranchResponse {
	return BranchResponse{ID: b.ID, Name: b.Name, Key: b.Key()}
}

func findBranch(branches []models.Branch, id string) (models.Branch, bool) {
	for _, b := range branches {
		if b.ID == id {
			return b, true
		}
	}
	return models.Branch{}, false
}

// nameTaken reports whether another branch already files data under name's key.
func nameTaken(branches []models.Branch, name, exceptID string) bool {
	for _, b := range branches {
		if b.ID != exceptID && models.SameBranch(b.Name, name) {
			return true
		}
	}
	return false
}

// -------------------------
// BRANCH CRUD
// -------------------------

// GET /api/branches
func ListBranchesHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branches, err := d.API.ListBranches(c.UserContext())
		if err != nil {
			return err
		}
		res := make([]BranchResponse, 0, len(branches))
		for _, b := range branches {
			res = append(res, toResponse(b))
		}
		return c.JSON(res)
	}
}

// GET /api/branches/:id
func GetBranchHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branches, err := d.API.ListBranches(c.UserContext())
		if err != nil {
			return err
		}
		b, ok := findBranch(branches, httpx.Param(c, "id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "branch not found")
		}
		return c.JSON(toResponse(b))
	}
}

// POST /api/branches
func CreateBranchHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BranchRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "branch name is required")
		}

		branches, err := d.API.ListBranches(c.UserContext())
		if err != nil {
			return err
		}
		if nameTaken(branches, body.Name, "") {
			return fiber.NewError(fiber.StatusConflict, "a branch with this name already exists")
		}

		created, err := d.API.CreateBranch(c.UserContext(), models.Branch{Name: body.Name})
		if err != nil {
			return err
		}
		d.Changed(c.UserContext(), created.Key(), console.Change{Resource: "branch", Action: "created", ID: created.ID})
		return c.Status(fiber.StatusCreated).JSON(toResponse(created))
	}
}

// PUT /api/branches/:id
// The remote API files data under the lower-cased name, so a rename that
// changes the key relabels every row of the old key.
func UpdateBranchHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := httpx.Param(c, "id")

		var body BranchRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "branch name is required")
		}

		branches, err := d.API.ListBranches(ctx)
		if err != nil {
			return err
		}
		old, ok := findBranch(branches, id)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "branch not found")
		}
		if nameTaken(branches, body.Name, id) {
			return fiber.NewError(fiber.StatusConflict, "a branch with this name already exists")
		}

		updated, err := d.API.UpdateBranch(ctx, id, models.Branch{ID: id, Name: body.Name})
		if err != nil {
			return err
		}
		resp := UpdateBranchResponse{Branch: toResponse(updated)}
		if old.Key() == updated.Key() {
			d.Changed(ctx, updated.Key(), console.Change{Resource: "branch", Action: "updated", ID: id})
			return c.JSON(resp)
		}

		res, warnings, err := relabel(ctx, d, old, updated)
		if err != nil {
			return err
		}
		resp.Batch = res
		resp.Status = res.Status()
		resp.Warnings = warnings

		status := fiber.StatusOK
		if res.Failed > 0 {
			status = fiber.StatusMultiStatus
		}
		return c.Status(status).JSON(resp)
	}
}

func relabel(ctx context.Context, d *console.Deps, old, updated models.Branch) (*batch.Result, []string, error) {
	from, to := old.Key(), updated.Key()
	defer func() {
		d.Cache.Invalidate(from)
		d.Cache.Invalidate(to)
	}()

	ops, err := d.Planner.RelabelBranch(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}
	res := d.Runner.Run(ctx, batch.Job{
		Operation: cascade.OpBranchRelabel,
		Branch:    from,
		Subject:   old.Name + " -> " + updated.Name,
	}, ops)

	var warnings []string
	if err := copySettings(ctx, d, from, to); err != nil {
		d.Log.WithError(err).WithFields(logrus.Fields{"from": from, "to": to}).Error("category settings not copied")
		warnings = append(warnings, "category settings were not copied: "+err.Error())
	}
	return res, warnings, nil
}

// copySettings carries the added/deleted category sets over to the new key.
func copySettings(ctx context.Context, d *console.Deps, from, to string) error {
	s, err := d.API.GetCategorySettings(ctx, from)
	if err != nil {
		return err
	}
	if len(s.AddedCategories) == 0 && len(s.DeletedCategories) == 0 {
		return nil
	}
	return d.API.SaveCategorySettings(ctx, to, s)
}

// DELETE /api/branches/:id?confirm=true
// Rows filed under the branch stay on the remote API; the dashboard drops
// them once the branch is gone.
func DeleteBranchHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := httpx.RequireConfirm(c); err != nil {
			return err
		}
		id := httpx.Param(c, "id")
		branches, err := d.API.ListBranches(c.UserContext())
		if err != nil {
			return err
		}
		b, ok := findBranch(branches, id)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "branch not found")
		}
		if err := d.API.DeleteBranch(c.UserContext(), id); err != nil {
			return err
		}
		d.Changed(c.UserContext(), b.Key(), console.Change{Resource: "branch", Action: "deleted", ID: id})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
