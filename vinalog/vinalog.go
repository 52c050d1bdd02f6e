// Package vinalog extracts binding affinities from AutoDock Vina logs.
//
// A Vina log ends with a ranked table of binding modes:
//
//	mode |   affinity | dist from best mode
//	     | (kcal/mol) | rmsd l.b.| rmsd u.b.
//	-----+------------+----------+----------
//	   1       -8.5      0.000      0.000
//	   2       -7.9      1.322      2.041
//
// The table is ordered best-first by convention, but the parser does not
// trust that: it keeps the numerically lowest score over all rows, since
// output conventions vary across engine builds.
package vinalog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shamshad-ather/vina-pipeline/dispatch"
)

var (
	// ErrNotRun marks a job whose engine was never invoked (no search
	// volume config for its receptor).
	ErrNotRun = errors.New("engine not run for job")

	// ErrEngineFailed marks a job whose engine invocation failed; its log
	// is not trusted to contain a result table.
	ErrEngineFailed = errors.New("engine failed for job")

	// ErrNoScoreFound marks a log with no parseable mode-table row.
	ErrNoScoreFound = errors.New("no affinity score found in log")
)

// Record is the best binding affinity extracted from one job's log.
// Identity comes from the job, not from the log text: Vina logs do not
// self-identify their ligand.
type Record struct {
	Receptor string
	Ligand   string

	// Affinity is the best (numerically lowest) predicted binding free
	// energy over all reported modes, in kcal/mol.
	Affinity float64
}

// modeRow matches one row of the binding-mode table: a rank, an affinity,
// and the two RMSD columns, all numeric.
var modeRow = regexp.MustCompile(
	`^\s*\d+\s+(-?\d+(?:\.\d+)?)\s+\d+(?:\.\d+)?\s+\d+(?:\.\d+)?\s*$`)

// Parse extracts the AffinityRecord from a job outcome. Only Success
// outcomes have their log read; the other statuses fail immediately.
func Parse(outcome dispatch.Outcome) (Record, error) {
	rec := Record{
		Receptor: outcome.Job.Receptor.ID,
		Ligand:   outcome.Job.Ligand.ID,
	}
	switch outcome.Status {
	case dispatch.MissingConfig:
		return rec, fmt.Errorf("%s/%s: %w", rec.Receptor, rec.Ligand, ErrNotRun)
	case dispatch.EngineFailure:
		return rec, fmt.Errorf("%s/%s: %w", rec.Receptor, rec.Ligand, ErrEngineFailed)
	}

	f, err := os.Open(outcome.LogPath)
	if err != nil {
		return rec, err
	}
	defer f.Close()

	best := 0.0
	found := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := modeRow.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		score, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if !found || score < best {
			best = score
			found = true
		}
	}
	if err := scanner.Err(); err != nil {
		return rec, err
	}
	if !found {
		return rec, fmt.Errorf("%s: %w", outcome.LogPath, ErrNoScoreFound)
	}

	rec.Affinity = best
	return rec, nil
}

// ScanDir reconstructs job outcomes from a batch output directory written
// by a previous dispatch run, so parsing and metrics can run as a separate
// invocation. Each subdirectory named <receptor>_<ligand> is one job; the
// receptor is the first underscore-separated token and the ligand is the
// remainder (ligand names may themselves contain underscores). A job
// directory without a log file is reported as an engine failure.
func ScanDir(outDir string) ([]dispatch.Outcome, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, err
	}

	outcomes := make([]dispatch.Outcome, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		receptor, ligand, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			continue
		}

		dir := filepath.Join(outDir, entry.Name())
		out := dispatch.Outcome{
			Job: dispatch.Job{
				Receptor: dispatch.Target{ID: receptor},
				Ligand:   dispatch.Target{ID: ligand},
			},
			LogPath:   filepath.Join(dir, dispatch.LogName),
			PosesPath: filepath.Join(dir, dispatch.PosesName),
		}
		if _, err := os.Stat(out.LogPath); err != nil {
			out.Status = dispatch.EngineFailure
			out.Err = err
		} else {
			out.Status = dispatch.Success
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
