package main

import (
	"fmt"
	"io"

	"github.com/alexivanou/findfun-api/internal/stats"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache and runtime statistics",
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

			e.logger.Info("Collecting statistics...", zap.String("db_type", string(e.cfg.DB.Type)))
			statistics, err := stats.NewCollector(e.db, e.cfg.DB).Collect(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to collect statistics: %w", err)
			}

			if opts.format == "json" {
				return printJSON(cmd.OutOrStdout(), statistics)
			}
			printHumanReadable(cmd.OutOrStdout(), statistics)
			return nil
		},
	}
}

func printHumanReadable(w io.Writer, s *stats.Stats) {
	fmt.Fprintln(w, "=== FindFun Statistics ===")
	fmt.Fprintf(w, "Timestamp: %s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Cache ---")
	fmt.Fprintf(w, "Places:          %d (%d outside any scope)\n", s.Cache.Places, s.Cache.UnscopedPlaces)
	fmt.Fprintf(w, "Scopes:          %d\n", s.Cache.Scopes)
	fmt.Fprintf(w, "Itineraries:     %d\n", s.Cache.Itineraries)
	if s.Cache.OldestFetch != nil && s.Cache.NewestFetch != nil {
		fmt.Fprintf(w, "Fetched:         %s .. %s\n",
			s.Cache.OldestFetch.Format("2006-01-02 15:04"), s.Cache.NewestFetch.Format("2006-01-02 15:04"))
	}
	if len(s.Cache.TopLocalities) > 0 {
		fmt.Fprintln(w, "Top Localities:")
		for _, lc := range s.Cache.TopLocalities {
			fmt.Fprintf(w, "  %-25s: %10d places\n", lc.Locality, lc.Places)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Database Statistics ---")
	fmt.Fprintf(w, "Type:            %s\n", s.Database.Type)
	fmt.Fprintf(w, "Total Records:   %d\n", s.Database.TotalRecords)
	if s.Database.SizeBytes > 0 {
		fmt.Fprintf(w, "Size:            %s\n", formatBytes(uint64(s.Database.SizeBytes)))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Table Statistics:")
	for _, ts := range s.Database.TableStats {
		fmt.Fprintf(w, "  %-25s: %10d rows", ts.Name, ts.RowCount)
		if ts.SizeBytes > 0 {
			fmt.Fprintf(w, " (%s)", formatBytes(uint64(ts.SizeBytes)))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Runtime Statistics ---")
	fmt.Fprintf(w, "Heap:            %s (%d GC cycles)\n", formatBytes(s.Runtime.HeapAlloc), s.Runtime.NumGC)
	fmt.Fprintf(w, "Goroutines:      %d\n", s.Runtime.Goroutines)
	fmt.Fprintf(w, "Uptime:          %ds\n", s.Runtime.UptimeSeconds)
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
