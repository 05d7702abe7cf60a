package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"finance-console/internal/batch"
	"finance-console/internal/cascade"
	"finance-console/internal/category"
	"finance-console/internal/config"
	"finance-console/internal/models"
	"finance-console/internal/snapshot"
)

func newCategoriesCmd(e *env) *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and maintain the expense categories of a branch",
	}
	cmd.PersistentFlags().StringVarP(&branch, "branch", "b", "", "Branch name")

	service := func() (*category.Service, string, error) {
		key := models.BranchKey(branch)
		if key == "" {
			return nil, "", errors.New("--branch is required")
		}
		defaults, err := config.LoadCategories(e.cfg.CategoriesFile)
		if err != nil {
			return nil, "", err
		}
		cache := snapshot.New(e.api, 0, e.log)
		runner := batch.NewRunner(e.cfg.BatchConcurrency, e.log)
		svc := category.NewService(e.api, cache, cascade.NewPlanner(e.api), runner, defaults, e.log)
		return svc, key, nil
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the categories offered for a branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, key, err := service()
			if err != nil {
				return err
			}
			names, err := svc.List(cmd.Context(), key)
			if err != nil {
				return err
			}
			return e.printNames(names)
		},
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, key, err := service()
			if err != nil {
				return err
			}
			names, err := svc.Add(cmd.Context(), key, args[0])
			if err != nil {
				return err
			}
			return e.printNames(names)
		},
	}

	rename := &cobra.Command{
		Use:   "rename FROM TO",
		Short: "Rename a category and every expense filed under it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, key, err := service()
			if err != nil {
				return err
			}
			res, err := svc.Rename(cmd.Context(), key, args[0], args[1])
			if res != nil && errors.Is(err, category.ErrSettingsNotSaved) {
				return errors.Join(e.printBatch(res), err)
			}
			if err != nil {
				return err
			}
			return e.printBatch(res)
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a category and every expense filed under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("deleting a category removes its expenses; pass --yes to confirm")
			}
			svc, key, err := service()
			if err != nil {
				return err
			}
			res, err := svc.Delete(cmd.Context(), key, args[0], true)
			if res != nil && errors.Is(err, category.ErrSettingsNotSaved) {
				return errors.Join(e.printBatch(res), err)
			}
			if err != nil {
				return err
			}
			return e.printBatch(res)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")

	cmd.AddCommand(list, add, rename, del)
	return cmd
}

func (e *env) printNames(names []string) error {
	if e.asJSON {
		return e.printJSON(names)
	}
	for _, n := range names {
		fmt.Fprintln(e.out, n)
	}
	return nil
}

// printBatch reports every failed row and fails the command when any did.
func (e *env) printBatch(res *batch.Result) error {
	if e.asJSON {
		if err := e.printJSON(res); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(e.out, "%s %s: %d of %d rows succeeded\n", res.Operation, res.Subject, res.Succeeded, res.Total)
		for _, it := range res.Failures() {
			fmt.Fprintf(e.out, "  failed %s %s: %s\n", it.Resource, it.RowID, it.Error)
		}
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d rows failed", res.Failed, res.Total)
	}
	return nil
}
