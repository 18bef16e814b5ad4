package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"naicstag/internal/domain"
	"naicstag/internal/tui"
)

const (
	formatText  = "text"
	formatJSON  = "json"
	formatTable = "table"
)

type classifyOptions struct {
	input  string
	format string
}

func newClassifyCmd(root *rootOptions) *cobra.Command {
	opts := &classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify [description]",
		Short: "Print the three closest subsectors for a description",
		Long: `Classify a company description against the subsector corpus.

The description is taken from the arguments. With --input, every non-empty
line of the file (or "-" for stdin) is classified as its own description.
With neither, a single description is read from stdin.`,
		Example: `  naicstag classify "We sell crops and livestock from our farm."
  naicstag classify --input companies.txt --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, root, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "File with one description per line (\"-\" for stdin)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json or table")
	return cmd
}

func runClassify(cmd *cobra.Command, root *rootOptions, opts *classifyOptions, args []string) error {
	if opts.input != "" && len(args) > 0 {
		return errors.New("pass a description or --input, not both")
	}
	switch opts.format {
	case formatText, formatJSON, formatTable:
	default:
		return fmt.Errorf("unknown output format %q", opts.format)
	}
	cfg, err := root.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	svc, err := buildService(cfg, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.input != "" {
		queries, err := readQueries(cmd.InOrStdin(), opts.input)
		if err != nil {
			return err
		}
		reports, err := svc.ClassifyBatch(cmd.Context(), queries)
		if err != nil {
			return err
		}
		return writeReports(out, reports, opts.format)
	}

	query := strings.Join(args, " ")
	if len(args) == 0 {
		query, err = promptQuery(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}
	report, err := svc.Classify(query)
	if err != nil {
		return err
	}
	return writeReports(out, []*domain.MatchReport{report}, opts.format)
}

func promptQuery(in io.Reader, prompt io.Writer) (string, error) {
	if isTerminal(in) {
		fmt.Fprint(prompt, "Input a company description: ")
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read description: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readQueries(stdin io.Reader, path string) ([]string, error) {
	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}
	var queries []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			queries = append(queries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("no descriptions in %s", path)
	}
	return queries, nil
}

func writeReports(w io.Writer, reports []*domain.MatchReport, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	case formatTable:
		for _, r := range reports {
			fmt.Fprintln(w, renderReportTable(r, len(reports) > 1))
		}
		return nil
	}
	for i, r := range reports {
		if len(reports) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "# %s\n", r.Query)
		}
		for _, m := range r.Matches {
			fmt.Fprintln(w, tui.FormatMatch(m))
		}
	}
	return nil
}

func renderReportTable(r *domain.MatchReport, titled bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	if titled {
		tw.SetTitle(r.Query)
	}
	tw.AppendHeader(table.Row{"Rank", "Code", "Subsector", "Score", "Shared terms"})
	for _, m := range r.Matches {
		tw.AppendRow(table.Row{m.Rank, m.Code, m.Name, fmt.Sprintf("%.4f", m.Score), strings.Join(m.Shared, ", ")})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return tw.Render()
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
