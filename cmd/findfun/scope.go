package main

import (
	"fmt"

	"github.com/alexivanou/findfun-api/internal/service"
	"github.com/spf13/cobra"
)

// newScopeCmd creates the scope command group
func newScopeCmd(opts *rootOptions) *cobra.Command {
	var (
		city       string
		activities []string
	)

	cmd := &cobra.Command{
		Use:   "scope",
		Short: "Inspect and reset cached discovery results",
		Long: `Inspect and reset cached discovery results.

A scope is the cached answer for one city and set of activities. Clearing it
keeps the places but makes the next discover call query the places API.

Examples:
  findfun scope count --city Boston --activities food,museum
  findfun scope clear --city Boston --activities food,museum`,
	}
	cmd.PersistentFlags().StringVar(&city, "city", "", "City name")
	cmd.PersistentFlags().StringSliceVar(&activities, "activities", nil, "Comma separated activity keys")
	_ = cmd.MarkPersistentFlagRequired("city")
	_ = cmd.MarkPersistentFlagRequired("activities")

	withService := func(cmd *cobra.Command, fn func(svc *service.Service) error) error {
		e, err := openEnv(cmd.Context(), opts)
		if err != nil {
			return err
		}
		defer e.Close()

		svc, err := e.newService()
		if err != nil {
			return err
		}
		return fn(svc)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Count the places cached for a scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *service.Service) error {
				n, err := svc.ScopeSize(cmd.Context(), city, activities)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d cached places\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the cached answer for a scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *service.Service) error {
				if err := svc.ClearScope(cmd.Context(), city, activities); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Scope cleared")
				return nil
			})
		},
	})

	return cmd
}
