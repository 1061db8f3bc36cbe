package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/alexivanou/findfun-api/internal/service"
	"github.com/spf13/cobra"
)

// newItineraryCmd creates the itinerary command group
func newItineraryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "itinerary",
		Aliases: []string{"it"},
		Short:   "Plan itineraries out of cached places",
	}

	// withService runs fn against a service over the configured database
	withService := func(cmd *cobra.Command, fn func(svc *service.Service) error) error {
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
		return fn(svc)
	}

	show := func(cmd *cobra.Command, it *model.Itinerary) error {
		if opts.format == "json" {
			return printJSON(cmd.OutOrStdout(), it)
		}
		return printItinerary(cmd.OutOrStdout(), it)
	}

	var date string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *service.Service) error {
				it, err := svc.CreateItinerary(cmd.Context(), model.ItineraryRequest{Name: args[0], Date: date})
				if err != nil {
					return err
				}
				return show(cmd, it)
			})
		},
	}
	create.Flags().StringVar(&date, "date", "", "Day of the outing (YYYY-MM-DD)")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List itineraries, most recent date first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *service.Service) error {
				itineraries, err := svc.ListItineraries(cmd.Context())
				if err != nil {
					return err
				}
				if opts.format == "json" {
					return printJSON(cmd.OutOrStdout(), itineraries)
				}
				return printItineraries(cmd.OutOrStdout(), itineraries)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show an itinerary with its places",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(svc *service.Service) error {
				it, err := svc.GetItinerary(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("itinerary %d: %w", id, err)
				}
				return show(cmd, it)
			})
		},
	})

	var visitTime, note string
	add := &cobra.Command{
		Use:   "add <id> <fsq_id>",
		Short: "Add a cached place to an itinerary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(svc *service.Service) error {
				it, err := svc.AddItineraryPlace(cmd.Context(), id, model.ItineraryPlaceRequest{
					FsqID:     args[1],
					VisitTime: visitTime,
					Note:      note,
				})
				if err != nil {
					return err
				}
				return show(cmd, it)
			})
		},
	}
	add.Flags().StringVar(&visitTime, "time", "", "Planned visit time (HH:MM)")
	add.Flags().StringVar(&note, "note", "", "Free-form note")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id> <fsq_id>",
		Short: "Remove a place from an itinerary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(svc *service.Service) error {
				if err := svc.RemoveItineraryPlace(cmd.Context(), id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from itinerary %d\n", args[1], id)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, func(svc *service.Service) error {
				if err := svc.DeleteItinerary(cmd.Context(), id); err != nil {
					return fmt.Errorf("itinerary %d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted itinerary %d\n", id)
				return nil
			})
		},
	})

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid itinerary id %q", s)
	}
	return id, nil
}

func printItineraries(out io.Writer, itineraries []model.Itinerary) error {
	if len(itineraries) == 0 {
		fmt.Fprintln(out, "No itineraries.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDATE\tPLACES")
	for _, it := range itineraries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", it.ID, truncate(it.Name, 40), it.Date, len(it.Places))
	}
	return w.Flush()
}

func printItinerary(out io.Writer, it *model.Itinerary) error {
	fmt.Fprintf(out, "#%d %s", it.ID, it.Name)
	if it.Date != "" {
		fmt.Fprintf(out, " (%s)", it.Date)
	}
	fmt.Fprintln(out)

	if len(it.Places) == 0 {
		fmt.Fprintln(out, "No places yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, ip := range it.Places {
		fmt.Fprintf(w, "%d.\t%s\t%s\t%s\t%s\n", ip.Position, ip.VisitTime, ip.Place.FsqID, truncate(ip.Place.Name, 40), ip.Note)
	}
	return w.Flush()
}
