package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/analyze"
	"github.com/inodb/vibe-pgx/internal/duckdb"
	"github.com/inodb/vibe-pgx/internal/output"
)

func newScoreCmd() *cobra.Command {
	var (
		format     string
		outputFile string
		duckdbPath string
		preview    int
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "score <input-file>...",
		Short: "Score drug response from genotype files",
		Long: `Parse marker tables or VCF files (optionally compressed) and print one
scored result per drug. Several files are analyzed in parallel and reported
in argument order. Use '-' to read from stdin.`,
		Example: `  vibe-pgx score genome_23andme.txt
  vibe-pgx score -f json -o report.json sample.vcf.gz
  vibe-pgx score --duckdb results.duckdb sample.vcf
  vibe-pgx score --workers 4 cohort/*.vcf.gz
  cat genome.csv | vibe-pgx score -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = viper.GetString("output.format")
			}
			if !cmd.Flags().Changed("preview") {
				preview = viper.GetInt("preview.limit")
			}
			return runScore(cmd, args, format, outputFile, duckdbPath, preview, workers)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tab", "Output format: tab, json")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&duckdbPath, "duckdb", "", "Also export markers and results to this DuckDB file")
	cmd.Flags().IntVar(&preview, "preview", 25, "Number of markers in the JSON preview")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Files analyzed in parallel (0 = all CPUs)")

	return cmd
}

func newMarkersCmd() *cobra.Command {
	var (
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "markers <input-file>",
		Short: "Show the markers parsed from a genotype file",
		Example: `  vibe-pgx markers genome_23andme.txt
  vibe-pgx markers --all sample.vcf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = viper.GetInt("preview.limit")
			}
			return runMarkers(cmd, args[0], limit, all)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "Number of markers to show")
	cmd.Flags().BoolVar(&all, "all", false, "Show every parsed marker")

	return cmd
}

func newAnalyzer(logger *zap.Logger, preview int) *analyze.Analyzer {
	a := analyze.NewAnalyzer()
	a.SetLogger(logger)
	a.SetPreviewLimit(preview)
	a.SetMaxBytes(viper.GetInt64("input.max_bytes"))
	return a
}

func runScore(cmd *cobra.Command, inputs []string, format, outputFile, duckdbPath string, preview, workers int) error {
	if format != "tab" && format != "json" {
		return usageError{fmt.Errorf("unknown output format %q", format)}
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	out, closeOut, err := openOutput(cmd, outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	var store *duckdb.Store
	if duckdbPath != "" {
		if store, err = duckdb.Open(duckdbPath); err != nil {
			return err
		}
		defer store.Close()
	}

	a := newAnalyzer(logger, preview)
	multi := len(inputs) > 1
	var failed []error

	err = analyze.OrderedCollect(a.ParallelAnalyze(analyze.Paths(inputs), workers), func(r analyze.WorkResult) error {
		if r.Err != nil {
			if !multi {
				return r.Err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", r.Path, r.Err)
			failed = append(failed, r.Err)
			return nil
		}

		rep := r.Report
		printWarnings(cmd.ErrOrStderr(), rep)

		switch format {
		case "json":
			if err := output.NewJSONWriter(out).WriteReport(rep); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		default:
			if multi {
				fmt.Fprintf(out, "## source: %s\n", r.Path)
			}
			if err := writeResultTable(out, rep); err != nil {
				return err
			}
		}

		if store != nil {
			if err := exportReport(store, r.Path, rep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported report %s to %s\n", rep.ID, duckdbPath)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d inputs could not be analyzed: %w", len(failed), len(inputs), errors.Join(failed...))
	}
	return nil
}

func writeResultTable(w io.Writer, rep *analyze.Report) error {
	tw := output.NewTabWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range rep.Results {
		if err := tw.Write(&rep.Results[i]); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return tw.Flush()
}

func exportReport(store *duckdb.Store, inputPath string, rep *analyze.Report) error {
	var fp duckdb.FileFingerprint
	if inputPath != "-" {
		var err error
		if fp, err = duckdb.StatFile(inputPath); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
	}
	if err := store.WriteReport(rep, fp); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	return nil
}

func runMarkers(cmd *cobra.Command, inputPath string, limit int, all bool) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	rep, err := newAnalyzer(logger, limit).AnalyzeFile(inputPath)
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), rep)

	shown := rep.Preview
	if all {
		shown = rep.Markers.Markers()
	}

	mw := output.NewMarkerWriter(cmd.OutOrStdout())
	if err := mw.WriteHeader(); err != nil {
		return err
	}
	for _, m := range shown {
		if err := mw.Write(m); err != nil {
			return err
		}
	}
	if err := mw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Showing %d of %d markers (%s, %d pharmacogenomic)\n",
		len(shown), rep.MarkerCount, rep.Format, rep.Matched)
	return nil
}

func printWarnings(w io.Writer, rep *analyze.Report) {
	for _, warning := range rep.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
}

// openOutput returns stdout or the named file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
