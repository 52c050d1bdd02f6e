package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shamshad-ather/vina-pipeline/apps/rdkit"
	"github.com/shamshad-ather/vina-pipeline/dispatch"
	"github.com/shamshad-ather/vina-pipeline/metrics"
	"github.com/shamshad-ather/vina-pipeline/results"
	"github.com/shamshad-ather/vina-pipeline/vinalog"
)

func newMetricsCmd() *cobra.Command {
	var (
		outDir     string
		ligandDirs []string
		tablePath  string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Parse docking logs and build the ligand-efficiency table",
		Long: "metrics scans a batch output directory, extracts the best affinity\n" +
			"from each job's log, fetches molecular descriptors for each ligand,\n" +
			"derives the efficiency metrics, and writes the aggregated CSV table.\n" +
			"Rows that fail are reported and omitted; only a table that cannot\n" +
			"be written fails the run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetrics(cmd, outDir, ligandDirs, tablePath)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&outDir, "out-dir", "docking_results",
		"batch output directory written by 'run'")
	fl.StringSliceVar(&ligandDirs, "ligand-dirs", []string{"ligands", "ligands_pdbqt"},
		"directories searched for ligand source files (SDF preferred)")
	fl.StringVar(&tablePath, "table", "docking_summary_metrics.csv",
		"path of the aggregated metrics table")
	fl.String("descriptor-bin", "ligand-descriptors",
		"descriptor helper executable")
	fl.StringSlice("descriptor-args", nil,
		"arguments passed to the descriptor helper before the ligand path")
	mustBind("descriptors.binary", fl, "descriptor-bin")
	mustBind("descriptors.args", fl, "descriptor-args")

	return cmd
}

func runMetrics(cmd *cobra.Command, outDir string, ligandDirs []string, tablePath string) error {
	outcomes, err := vinalog.ScanDir(outDir)
	if err != nil {
		return err
	}

	calc := rdkit.Config{
		Binary: viper.GetString("descriptors.binary"),
		Args:   viper.GetStringSlice("descriptors.args"),
	}

	rows := make(chan results.RowResult)
	go func() {
		defer close(rows)
		for _, outcome := range outcomes {
			rows <- buildRow(cmd, calc, ligandDirs, outcome)
		}
	}()
	table := results.Aggregate(rows, logger)

	if err := table.WriteFile(tablePath); err != nil {
		return fmt.Errorf("cannot persist metrics table: %w", err)
	}

	printSummary(cmd, table, tablePath)
	return nil
}

// buildRow runs the pure per-job pipeline: log → affinity record →
// descriptors → derived metrics. Any failure rides back as the row's
// error; the aggregator turns it into a diagnostic.
func buildRow(cmd *cobra.Command, calc metrics.Calculator, ligandDirs []string, outcome dispatch.Outcome) results.RowResult {
	res := results.RowResult{
		Receptor: outcome.Job.Receptor.ID,
		Ligand:   outcome.Job.Ligand.ID,
	}

	rec, err := vinalog.Parse(outcome)
	if err != nil {
		res.Err = err
		return res
	}

	ligandFile, err := findLigandFile(ligandDirs, rec.Ligand)
	if err != nil {
		res.Err = err
		return res
	}
	desc, err := calc.Descriptors(cmd.Context(), ligandFile)
	if err != nil {
		res.Err = err
		return res
	}

	row, err := metrics.Derive(rec, desc)
	if err != nil {
		res.Err = err
		return res
	}
	res.Row = row
	return res
}

func printSummary(cmd *cobra.Command, table *results.Table, tablePath string) {
	s := table.Summarize()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %d rows to %s\n", s.Succeeded, tablePath)
	if len(table.Diagnostics) == 0 {
		return
	}

	kinds := make([]string, 0, len(s.Failed))
	for kind := range s.Failed {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	fmt.Fprintf(out, "%d rows omitted:\n", len(table.Diagnostics))
	for _, kind := range kinds {
		fmt.Fprintf(out, "  %s: %d\n", kind, s.Failed[kind])
	}
}
