package httpx

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"finance-console/internal/backend"
	"finance-console/internal/backend/httpapi"
	"finance-console/internal/validation"
)

// Mapping translates a sentinel error into an HTTP status.
type Mapping struct {
	Err    error
	Status int
}

// ErrorHandler renders every error as {"error": msg}. Validation failures
// also carry the offending fields. Remote API failures answer 502.
func ErrorHandler(log logrus.FieldLogger, mappings ...Mapping) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		if errors.Is(err, validation.ErrInvalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  err.Error(),
				"fields": validation.Fields(err),
			})
		}

		if errors.Is(err, backend.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		for _, m := range mappings {
			if errors.Is(err, m.Err) {
				return c.Status(m.Status).JSON(fiber.Map{"error": err.Error()})
			}
		}

		var apiErr *httpapi.APIError
		if errors.As(err, &apiErr) {
			log.WithError(err).WithField("path", c.Path()).Warn("remote api call failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}

		log.WithError(err).WithField("path", c.Path()).Error("unexpected error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unexpected server error",
		})
	}
}
