// Package httpx holds the small response helpers shared by the fiber
// handlers.
package httpx

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"finance-console/internal/batch"
)

// WriteBatch answers 200 when every row succeeded and 207 otherwise, with
// the full per-row result either way. Warnings also force a 207.
func WriteBatch(c *fiber.Ctx, res *batch.Result, warnings ...string) error {
	status := fiber.StatusOK
	if res.Failed > 0 || len(warnings) > 0 {
		status = fiber.StatusMultiStatus
	}
	body := fiber.Map{
		"batch":  res,
		"status": res.Status(),
	}
	if len(warnings) > 0 {
		body["warnings"] = warnings
	}
	return c.Status(status).JSON(body)
}

// Param returns the unescaped, trimmed route parameter. The result owns its
// bytes and may be kept after the request ends.
func Param(c *fiber.Ctx, name string) string {
	raw := utils.CopyString(c.Params(name))
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}
	return strings.TrimSpace(raw)
}

// Confirmed reports whether the request carries confirm=true.
func Confirmed(c *fiber.Ctx) bool {
	return c.QueryBool("confirm", false)
}

// Body parses the JSON request body into v.
func Body(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

// RequireConfirm rejects destructive requests that lack confirm=true.
func RequireConfirm(c *fiber.Ctx) error {
	if !Confirmed(c) {
		return fiber.NewError(fiber.StatusBadRequest, "deletion must be confirmed with confirm=true")
	}
	return nil
}
