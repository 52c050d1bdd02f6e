// Package dispatch fans the receptor×ligand job matrix out against the
// docking engine. Every pair gets exactly one Outcome; a failing job never
// aborts its siblings, since one numerically difficult pair must not void
// hours of otherwise-successful computation.
package dispatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Target identifies one receptor or ligand: its pipeline ID and the path of
// its prepared structure file.
type Target struct {
	ID   string
	Path string
}

// Job is one cell of the receptor×ligand matrix.
type Job struct {
	Receptor Target
	Ligand   Target
}

// Dir returns the job's output directory under root. The name is
// deterministic in (receptor, ligand) and cannot collide with any other
// job's directory because receptor IDs may not contain underscores
// (enforced by Batch.Run).
func (j Job) Dir(root string) string {
	return filepath.Join(root, j.Receptor.ID+"_"+j.Ligand.ID)
}

// Status classifies how a job ended.
type Status int

const (
	// Success: the engine ran and exited zero; log and poses artifacts
	// exist.
	Success Status = iota

	// EngineFailure: the engine exited non-zero, timed out, or its
	// artifacts could not be set up. The batch continues.
	EngineFailure

	// MissingConfig: the job's receptor had no search-volume config, so
	// the engine was never invoked.
	MissingConfig
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case EngineFailure:
		return "engine-failure"
	case MissingConfig:
		return "missing-config"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome is the result of one job. LogPath and PosesPath are set whenever
// the engine was invoked, even if it failed, so the log can be inspected.
type Outcome struct {
	Job       Job
	Status    Status
	LogPath   string
	PosesPath string

	// Err carries the underlying failure for EngineFailure outcomes.
	Err error
}

// Engine is the docking capability the dispatcher drives. The subprocess
// implementation lives in apps/vina; tests substitute fakes.
type Engine interface {
	// Dock runs one receptor-ligand docking. The engine's combined
	// stdout/stderr must be captured verbatim into logPath and the scored
	// poses into posesPath. A non-zero exit or a canceled ctx is an error.
	Dock(ctx context.Context, receptor, ligand, configPath, posesPath, logPath string) error
}

const (
	// LogName and PosesName are the artifact file names inside each job's
	// output directory.
	LogName   = "vina.log"
	PosesName = "poses.pdbqt"
)

// Batch runs a receptor×ligand docking sweep.
type Batch struct {
	Engine Engine

	// OutDir is the root under which per-job directories are created.
	OutDir string

	// Workers bounds concurrent engine invocations. Zero means
	// runtime.NumCPU(): each invocation is a CPU-bound external process,
	// so unbounded fan-out would only thrash the host.
	Workers int

	// Timeout cancels a single engine invocation. Zero means no timeout.
	// A timed-out job is an EngineFailure like any other.
	Timeout time.Duration

	Log *zap.Logger
}

// Run executes every (receptor, ligand) pair and returns one Outcome per
// pair. Outcomes are indexed by job, not by completion order; no ordering
// is guaranteed between jobs. Receptors absent from configs are
// short-circuited to MissingConfig without invoking the engine. Run returns
// an error only for malformed input (a receptor ID containing '_', which
// would make job directories ambiguous), never for job failures.
func (b *Batch) Run(ctx context.Context, receptors, ligands []Target, configs map[string]string) ([]Outcome, error) {
	for _, r := range receptors {
		if strings.Contains(r.ID, "_") {
			return nil, fmt.Errorf(
				"receptor ID '%s' contains '_', which is reserved as the job directory separator", r.ID)
		}
	}

	logger := b.Log
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make([]Job, 0, len(receptors)*len(ligands))
	for _, r := range receptors {
		for _, l := range ligands {
			jobs = append(jobs, Job{Receptor: r, Ligand: l})
		}
	}

	outcomes := make([]Outcome, len(jobs))
	sem := semaphore.NewWeighted(int64(workers))
	wg := new(sync.WaitGroup)

	for i, job := range jobs {
		conf, ok := configs[job.Receptor.ID]
		if !ok {
			logger.Warn("no search volume config for receptor, skipping job",
				zap.String("receptor", job.Receptor.ID),
				zap.String("ligand", job.Ligand.ID))
			outcomes[i] = Outcome{Job: job, Status: MissingConfig}
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			// The batch context itself was canceled; everything not yet
			// started fails as an engine failure.
			outcomes[i] = Outcome{Job: job, Status: EngineFailure, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, job Job, conf string) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = b.runJob(ctx, logger, job, conf)
		}(i, job, conf)
	}
	wg.Wait()

	return outcomes, nil
}

func (b *Batch) runJob(ctx context.Context, logger *zap.Logger, job Job, conf string) Outcome {
	dir := job.Dir(b.OutDir)
	out := Outcome{
		Job:       job,
		LogPath:   filepath.Join(dir, LogName),
		PosesPath: filepath.Join(dir, PosesName),
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		out.Status = EngineFailure
		out.Err = err
		return out
	}

	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := b.Engine.Dock(ctx,
		job.Receptor.Path, job.Ligand.Path, conf, out.PosesPath, out.LogPath)
	if err != nil {
		out.Status = EngineFailure
		out.Err = err
		logger.Warn("docking job failed",
			zap.String("receptor", job.Receptor.ID),
			zap.String("ligand", job.Ligand.ID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return out
	}

	out.Status = Success
	logger.Info("docking job finished",
		zap.String("receptor", job.Receptor.ID),
		zap.String("ligand", job.Ligand.ID),
		zap.Duration("elapsed", time.Since(start)))
	return out
}

// Summarize counts outcomes by status for the batch completion report.
func Summarize(outcomes []Outcome) map[Status]int {
	counts := make(map[Status]int, 3)
	for _, out := range outcomes {
		counts[out.Status]++
	}
	return counts
}
