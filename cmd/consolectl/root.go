package main

import (
	"encoding/json"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"finance-console/internal/backend"
	"finance-console/internal/config"
)

// env is what every subcommand runs with.
type env struct {
	cfg     *config.Config
	log     *logrus.Logger
	out     io.Writer
	backend func() (backend.Backend, error)

	asJSON bool
	api    backend.Backend
}

func newRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consolectl",
		Short: "Branch reports and category maintenance for the finance console",
		Long: `consolectl reads branch data from the remote finance API and applies the
same summary, ledger, dashboard and category rules as the console server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			api, err := e.backend()
			if err != nil {
				return err
			}
			e.api = api
			return nil
		},
	}
	cmd.SetOut(e.out)
	cmd.PersistentFlags().BoolVar(&e.asJSON, "json", false, "Print JSON instead of a table")

	cmd.AddCommand(
		newSummaryCmd(e),
		newLedgerCmd(e),
		newDashboardCmd(e),
		newCategoriesCmd(e),
	)
	return cmd
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
