// Package dashboard serves the cross-branch admin dashboard.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"finance-console/internal/console"
	"finance-console/internal/finance"
	"finance-console/internal/models"
)

// GET /api/dashboard
// Entries filed under a branch that no longer exists are left out of the
// totals and counted in "discarded".
func DashboardHandler(d *console.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			branches []models.Branch
			entries  []models.BranchEntry
		)
		g, ctx := errgroup.WithContext(c.UserContext())
		g.Go(func() error {
			var err error
			branches, err = d.API.ListBranches(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			entries, err = d.API.ListEntries(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		dash := finance.BuildDashboard(branches, entries)
		if dash.Discarded > 0 {
			d.Log.WithField("discarded", dash.Discarded).Debug("dashboard skipped entries of unknown branches")
		}
		return c.JSON(dash)
	}
}
