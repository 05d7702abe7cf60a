package category

import (
	"errors"

	"finance-console/internal/auth"
	"finance-console/internal/batch"
	"finance-console/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

type nameRequest struct {
	Name string `json:"name"`
}

// writeResult still reports the rows of a batch whose settings save failed.
func writeResult(c *fiber.Ctx, res *batch.Result, err error) error {
	if res != nil && errors.Is(err, ErrSettingsNotSaved) {
		return httpx.WriteBatch(c, res, err.Error())
	}
	if err != nil {
		return err
	}
	return httpx.WriteBatch(c, res)
}

// GET /api/branches/:branch/categories
func ListHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		list, err := svc.List(c.UserContext(), branch)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"branch": branch, "categories": list})
	}
}

// POST /api/branches/:branch/categories
func AddHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		var body nameRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		list, err := svc.Add(c.UserContext(), branch, body.Name)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"branch": branch, "categories": list})
	}
}

// PUT /api/branches/:branch/categories/:name
func RenameHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		var body nameRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		res, err := svc.Rename(c.UserContext(), branch, httpx.Param(c, "name"), body.Name)
		return writeResult(c, res, err)
	}
}

// DELETE /api/branches/:branch/categories/:name?confirm=true
func DeleteHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := auth.Branch(c)
		if err != nil {
			return err
		}
		res, err := svc.Delete(c.UserContext(), branch, httpx.Param(c, "name"), httpx.Confirmed(c))
		return writeResult(c, res, err)
	}
}
