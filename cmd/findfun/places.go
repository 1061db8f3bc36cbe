package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/spf13/cobra"
)

func newDiscoverCmd(opts *rootOptions) *cobra.Command {
	var (
		city       string
		activities []string
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find places for a city and activities",
		Long: `Find places for a city and activities.

Cached results for the same city and activities are shown unless --refresh
is given, in which case the places API is queried and the cache updated.

Examples:
  findfun discover --city Boston --activities food,museum
  findfun discover --city "New York" --activities park --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			svc, err := e.newService()
			if err != nil {
				return err
			}

			resp, err := svc.Discover(cmd.Context(), model.DiscoverRequest{
				City:       city,
				Activities: activities,
				Refresh:    refresh,
			})
			if err != nil {
				return err
			}

			if opts.format == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d places from %s)\n\n",
				resp.City, strings.Join(resp.Activities, ", "), len(resp.Places), resp.Source)
			return printPlaces(cmd.OutOrStdout(), resp.Places)
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "City name")
	cmd.Flags().StringSliceVar(&activities, "activities", nil, "Comma separated activity keys")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Query the places API even when cached")
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("activities")

	return cmd
}

// newPlacesCmd creates the places command group
func newPlacesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "places",
		Short: "Inspect and prune cached places",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every cached place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			places, err := e.repos.Place.ListPlaces(cmd.Context())
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return printJSON(cmd.OutOrStdout(), places)
			}
			return printPlaces(cmd.OutOrStdout(), places)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <fsq_id>",
		Short: "Show one cached place with all its details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			place, err := e.repos.Place.GetPlace(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("place %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), place)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <fsq_id>",
		Short: "Remove a place and everything it owns from the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.repos.Place.DeletePlace(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("place %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func printPlaces(out io.Writer, places []model.Place) error {
	if len(places) == 0 {
		fmt.Fprintln(out, "No places.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FSQ_ID\tNAME\tCATEGORY\tDISTANCE\tADDRESS")
	for _, p := range places {
		category := ""
		if len(p.Categories) > 0 {
			category = p.Categories[0].Name
		}
		address := ""
		if p.Location != nil {
			address = p.Location.FormattedAddress
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dm\t%s\n", p.FsqID, truncate(p.Name, 40), category, p.Distance, truncate(address, 50))
	}
	return w.Flush()
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
