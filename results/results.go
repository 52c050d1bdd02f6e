// Package results accumulates per-job metrics rows into the final ranked
// table and persists it as delimited text.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/shamshad-ather/vina-pipeline/metrics"
	"github.com/shamshad-ather/vina-pipeline/vinalog"
)

// Columns is the fixed output schema, in order. It matches the header the
// downstream analysis expects and never varies with row failures.
var Columns = []string{
	"Receptor", "Ligand", "Affinity_kcal_mol", "pKi", "MW", "LogP", "TPSA",
	"NHA", "NRB", "HBD", "HBA", "SASA_A2", "QED",
	"LE", "LLE", "SILE_N", "SILE_SASA",
}

// RowResult is one job's contribution to the table: either a derived
// metrics row or the error that kept it out.
type RowResult struct {
	Receptor string
	Ligand   string
	Row      metrics.Row
	Err      error
}

// Diagnostic records why a row was omitted from the table.
type Diagnostic struct {
	Receptor string
	Ligand   string
	Err      error
}

// Table is the aggregated output: successful rows in arrival order plus a
// diagnostic per omitted row. (receptor, ligand) pairs are unique among
// kept rows.
type Table struct {
	Rows        []metrics.Row
	Diagnostics []Diagnostic
}

// errDuplicatePair keeps the uniqueness invariant: a second row for the
// same (receptor, ligand) pair becomes a diagnostic, the first row wins.
var errDuplicatePair = errors.New("duplicate (receptor, ligand) pair")

// Aggregate consumes row results in arrival order until the channel
// closes. Ok rows are appended; every failure is logged and recorded as a
// diagnostic, and aggregation always continues: a batch must never deliver
// nothing just because some pairs failed.
func Aggregate(rows <-chan RowResult, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}

	table := &Table{}
	seen := make(map[[2]string]bool)
	for res := range rows {
		if res.Err != nil {
			logger.Warn("row omitted from table",
				zap.String("receptor", res.Receptor),
				zap.String("ligand", res.Ligand),
				zap.Error(res.Err))
			table.Diagnostics = append(table.Diagnostics, Diagnostic{
				Receptor: res.Receptor,
				Ligand:   res.Ligand,
				Err:      res.Err,
			})
			continue
		}

		key := [2]string{res.Row.Receptor, res.Row.Ligand}
		if seen[key] {
			table.Diagnostics = append(table.Diagnostics, Diagnostic{
				Receptor: res.Row.Receptor,
				Ligand:   res.Row.Ligand,
				Err: fmt.Errorf("%s/%s: %w",
					res.Row.Receptor, res.Row.Ligand, errDuplicatePair),
			})
			continue
		}
		seen[key] = true
		table.Rows = append(table.Rows, res.Row)
	}
	return table
}

// record formats one row in column order. Affinity, LE and SILE_N carry
// three decimals, the remaining floats two, matching the precision the
// downstream plots were built around.
func record(row metrics.Row) []string {
	return []string{
		row.Receptor,
		row.Ligand,
		strconv.FormatFloat(row.Affinity, 'f', 3, 64),
		strconv.FormatFloat(row.PKi, 'f', 2, 64),
		strconv.FormatFloat(row.MolWeight, 'f', 2, 64),
		strconv.FormatFloat(row.LogP, 'f', 2, 64),
		strconv.FormatFloat(row.TPSA, 'f', 2, 64),
		strconv.Itoa(row.HeavyAtoms),
		strconv.Itoa(row.RotatableBonds),
		strconv.Itoa(row.Donors),
		strconv.Itoa(row.Acceptors),
		strconv.FormatFloat(row.SASA, 'f', 2, 64),
		strconv.FormatFloat(row.QED, 'f', 2, 64),
		strconv.FormatFloat(row.LE, 'f', 3, 64),
		strconv.FormatFloat(row.LLE, 'f', 2, 64),
		strconv.FormatFloat(row.SILEN, 'f', 3, 64),
		strconv.FormatFloat(row.SILESASA, 'f', 2, 64),
	}
}

// Records returns the table body in the fixed column order, formatted as
// it is persisted.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, record(row))
	}
	return records
}

// WriteFile persists the table as CSV with the fixed header. This is the
// only fatal step of aggregation: if the table cannot be delivered, the
// run has produced nothing.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return err
	}
	if err := w.WriteAll(t.Records()); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// ReadFile loads a persisted table back as its header and formatted
// records, exactly as written.
func ReadFile(path string) (header []string, records [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s: empty table", path)
	}
	return all[0], all[1:], nil
}

// Summary reports the completion counts shown to the user at the end of a
// run.
type Summary struct {
	Succeeded int
	Failed    map[string]int
}

// Summarize classifies the table's diagnostics by failure kind.
func (t *Table) Summarize() Summary {
	s := Summary{Succeeded: len(t.Rows), Failed: make(map[string]int)}
	for _, d := range t.Diagnostics {
		s.Failed[failureKind(d.Err)]++
	}
	return s
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, vinalog.ErrNotRun):
		return "not-run"
	case errors.Is(err, vinalog.ErrEngineFailed):
		return "engine-failed"
	case errors.Is(err, vinalog.ErrNoScoreFound):
		return "no-score"
	case errors.Is(err, metrics.ErrDegenerateLigand):
		return "degenerate-ligand"
	case errors.Is(err, errDuplicatePair):
		return "duplicate"
	default:
		return "other"
	}
}
