package main

import (
	"fmt"

	"github.com/alexivanou/findfun-api/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a saved place search into the cache",
		Long: `Load a saved place search into the cache.

The file is a places search response ({"results": [...]}) or a bare array
of places, either as .json or as the first .json entry of a .zip archive.
Each batch is written in its own transaction.

Examples:
  findfun import data/places.json
  findfun import --batch-size 500 data/places.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			cfg := e.cfg.Importer
			if batchSize > 0 {
				cfg.BatchSize = batchSize
			}

			res, err := importer.New(e.repos.Place, cfg, e.logger).ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if opts.format == "json" {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d places in %d batches (%d skipped)\n", res.Saved, res.Batches, res.Skipped)
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Places per transaction (default from IMPORT_BATCH_SIZE)")

	return cmd
}
