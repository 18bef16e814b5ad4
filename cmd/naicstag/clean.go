package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"naicstag/internal/corpus"
)

type cleanOptions struct {
	in        string
	out       string
	rawColumn string
}

func newCleanCmd(root *rootOptions) *cobra.Command {
	opts := &cleanOptions{}
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize a raw subsector file into a cleaned corpus",
		Long: `Clean reads a subsector file with a raw description column, normalizes
every description the same way queries are normalized, and writes a CSV
with subsector_code, subsector_name and cleaned_content columns.`,
		Example: `  naicstag clean --in subsectors.csv --raw-column description --out subsector_cleaned_data.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			cols := corpusColumns(cfg)
			if opts.rawColumn != "" {
				cols.Raw = opts.rawColumn
			}
			f, err := os.Open(opts.in)
			if err != nil {
				return fmt.Errorf("open %s: %w", opts.in, err)
			}
			defer f.Close()

			var w io.Writer = cmd.OutOrStdout()
			if opts.out != "" && opts.out != "-" {
				of, err := os.Create(opts.out)
				if err != nil {
					return fmt.Errorf("create %s: %w", opts.out, err)
				}
				defer of.Close()
				w = of
			}

			n, err := corpus.Clean(corpus.NewReader(f, opts.in), w, cols, newNormalizer(cfg))
			if err != nil {
				return err
			}
			logger.Info("cleaned corpus written", "rows", n, "from", opts.in, "to", opts.out)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.in, "in", "", "Raw subsector CSV/TSV")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output CSV (default stdout)")
	cmd.Flags().StringVar(&opts.rawColumn, "raw-column", "description", "Column holding the raw description")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
