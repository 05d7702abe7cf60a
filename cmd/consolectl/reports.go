package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"finance-console/internal/export"
	"finance-console/internal/finance"
	"finance-console/internal/models"
)

func newSummaryCmd(e *env) *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the statistics card of a branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := models.BranchKey(branch)
			if key == "" {
				return errors.New("--branch is required")
			}
			ctx := cmd.Context()

			var (
				entries          []models.BranchEntry
				expenses         []models.Expense
				employeeExpenses []models.EmployeeExpense
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) {
				entries, err = e.api.ListBranchEntries(gctx, key)
				return err
			})
			g.Go(func() (err error) {
				expenses, err = e.api.ListExpenses(gctx, key)
				return err
			})
			g.Go(func() (err error) {
				employeeExpenses, err = e.api.ListEmployeeExpenses(gctx, key)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			s := finance.Summarize(key, entries, expenses, employeeExpenses)
			if e.asJSON {
				return e.printJSON(s)
			}
			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Branch\t%s\n", s.Branch)
			fmt.Fprintf(w, "Loans\t%d\n", s.LoanCount)
			fmt.Fprintf(w, "Payments\t%d\n", s.PaymentCount)
			fmt.Fprintf(w, "Customers\t%d\n", s.UniqueCustomers)
			fmt.Fprintf(w, "Total loan\t%s\n", s.TotalLoan.StringFixed(2))
			fmt.Fprintf(w, "Total interest\t%s\n", s.TotalInterest.StringFixed(2))
			fmt.Fprintf(w, "Total EMI\t%s\n", s.TotalEMI.StringFixed(2))
			fmt.Fprintf(w, "Total payments\t%s\n", s.TotalPayments.StringFixed(2))
			fmt.Fprintf(w, "Expenses\t%s\n", s.TotalExpenses.StringFixed(2))
			fmt.Fprintf(w, "Net\t%s (%s)\n", s.Net.StringFixed(2), s.Band)
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch name")
	return cmd
}

func newLedgerCmd(e *env) *cobra.Command {
	var (
		branch   string
		customer string
		asCSV    bool
	)
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show the loan and payment history of a customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := models.BranchKey(branch)
			if key == "" || customer == "" {
				return errors.New("--branch and --customer are required")
			}
			entries, err := e.api.ListBranchEntries(cmd.Context(), key)
			if err != nil {
				return err
			}
			l := finance.CustomerLedger(key, customer, entries)
			if len(l.Loans) == 0 && len(l.Payments) == 0 {
				return fmt.Errorf("no entries for customer %q at %s", customer, key)
			}

			switch {
			case asCSV:
				return export.LedgerCSV(e.out, l)
			case e.asJSON:
				return e.printJSON(l)
			}

			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LOAN\tDATE\tPLACE\tAMOUNT\tINTEREST\tEMI")
			for _, ln := range l.Loans {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", ln.Label, ln.Date, ln.Place,
					ln.Principal.StringFixed(2), ln.Interest.StringFixed(2), ln.EMI.StringFixed(2))
			}
			fmt.Fprintln(w, "\nPAYMENT\tDATE\tAMOUNT")
			for i, p := range l.Payments {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, p.Date, p.Amount.StringFixed(2))
			}
			fmt.Fprintf(w, "\nBalance\t%s (%s)\n", l.BalanceDue.StringFixed(2), l.Status)
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch name")
	cmd.Flags().StringVarP(&customer, "customer", "c", "", "Customer name, matched exactly")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Write the ledger as CSV")
	return cmd
}

func newDashboardCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals across every branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			branches, err := e.api.ListBranches(ctx)
			if err != nil {
				return err
			}
			entries, err := e.api.ListEntries(ctx)
			if err != nil {
				return err
			}
			dash := finance.BuildDashboard(branches, entries)
			if dash.Discarded > 0 {
				e.log.WithField("discarded", dash.Discarded).Warn("entries of unknown branches skipped")
			}
			if e.asJSON {
				return e.printJSON(dash)
			}

			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BRANCH\tCUSTOMERS\tLOANS\tPAYMENTS\tLOAN\tINTEREST\tPAID")
			for _, b := range dash.Branches {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%s\n", b.Name, b.Customers, b.Loans, b.Payments,
					b.TotalLoan.StringFixed(2), b.TotalInterest.StringFixed(2), b.TotalPayments.StringFixed(2))
			}
			fmt.Fprintf(w, "TOTAL\t%d\t%d\t\t%s\t%s\t%s\n", dash.TotalCustomers, dash.TotalLoans,
				dash.TotalLoan.StringFixed(2), dash.TotalInterest.StringFixed(2), dash.TotalPayments.StringFixed(2))
			return w.Flush()
		},
	}
}
