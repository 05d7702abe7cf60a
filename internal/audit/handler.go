package audit

import (
	"fmt"

	"finance-console/internal/auth"
	"finance-console/internal/httpx"
	"finance-console/internal/models"

	"github.com/gofiber/fiber/v2"
)

type BatchRunResponse struct {
	ID        uint               `json:"id"`
	Key       string             `json:"key"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
	Branch    string             `json:"branch"`
	Operation string             `json:"operation"`
	Subject   string             `json:"subject"`
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Status    models.BatchStatus `json:"status"`
	Retries   int                `json:"retries"`
	Items     []models.BatchItem `json:"items,omitempty"`
}

func toResponse(run models.BatchRun) BatchRunResponse {
	return BatchRunResponse{
		ID:        run.ID,
		Key:       run.Key,
		CreatedAt: run.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: run.UpdatedAt.Format("2006-01-02 15:04:05"),
		Branch:    run.Branch,
		Operation: run.Operation,
		Subject:   run.Subject,
		Total:     run.Total,
		Succeeded: run.Succeeded,
		Failed:    run.Failed,
		Status:    run.Status,
		Retries:   run.Retries,
		Items:     run.Items,
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid batch id")
	}
	return id, nil
}

// GET /api/batches?branch=pune&operation=category.delete&status=partial
func ListBatchesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := Filter{
			Branch:    models.BranchKey(c.Query("branch")),
			Operation: c.Query("operation"),
			Status:    models.BatchStatus(c.Query("status")),
			Limit:     c.QueryInt("limit", 100),
		}

		// branch logins only see their own runs
		if role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole); role == models.RoleBranch {
			f.Branch, _ = c.Locals(auth.CtxBranchKey).(string)
		}

		runs, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		resp := make([]BatchRunResponse, 0, len(runs))
		for _, run := range runs {
			resp = append(resp, toResponse(run))
		}
		return c.JSON(resp)
	}
}

// GET /api/batches/:id
func GetBatchHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		run, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := auth.Allow(c, run.Branch); err != nil {
			return err
		}
		return c.JSON(toResponse(*run))
	}
}

// POST /api/batches/:id/retry
func RetryBatchHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		run, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := auth.Allow(c, run.Branch); err != nil {
			return err
		}
		res, err := svc.Retry(c.UserContext(), id)
		if err != nil {
			return err
		}
		return httpx.WriteBatch(c, res)
	}
}
