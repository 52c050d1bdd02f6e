package dispatch

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEngine counts invocations and writes artifact files like the real
// engine would. fail selects jobs that should exit non-zero; block selects
// jobs that hang until their context is canceled.
type fakeEngine struct {
	calls int32

	fail  func(ligand string) bool
	block func(ligand string) bool
}

func (e *fakeEngine) Dock(ctx context.Context, receptor, ligand, configPath, posesPath, logPath string) error {
	atomic.AddInt32(&e.calls, 1)

	if e.block != nil && e.block(ligand) {
		<-ctx.Done()
		return ctx.Err()
	}
	if e.fail != nil && e.fail(ligand) {
		return fmt.Errorf("engine exited 1 for %s", ligand)
	}
	if err := os.WriteFile(logPath, []byte("mode table\n"), 0644); err != nil {
		return err
	}
	return os.WriteFile(posesPath, []byte("poses\n"), 0644)
}

func targets(ids ...string) []Target {
	ts := make([]Target, len(ids))
	for i, id := range ids {
		ts[i] = Target{ID: id, Path: id + ".pdbqt"}
	}
	return ts
}

func TestRunMissingConfigSkipsEngine(t *testing.T) {
	engine := &fakeEngine{}
	batch := &Batch{Engine: engine, OutDir: t.TempDir(), Log: zap.NewNop()}

	outcomes, err := batch.Run(context.Background(),
		targets("r1"), targets("l1", "l2"), map[string]string{})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	for _, out := range outcomes {
		assert.Equal(t, MissingConfig, out.Status)
	}
	assert.Zero(t, atomic.LoadInt32(&engine.calls),
		"engine must never be invoked without a config")
}

func TestRunFailureIsolation(t *testing.T) {
	engine := &fakeEngine{fail: func(ligand string) bool { return ligand == "l2" }}
	batch := &Batch{Engine: engine, OutDir: t.TempDir(), Workers: 2, Log: zap.NewNop()}

	outcomes, err := batch.Run(context.Background(),
		targets("r1"), targets("l1", "l2", "l3"),
		map[string]string{"r1": "r1.conf"})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	byLigand := make(map[string]Outcome)
	for _, out := range outcomes {
		byLigand[out.Job.Ligand.ID] = out
	}
	assert.Equal(t, Success, byLigand["l1"].Status)
	assert.Equal(t, EngineFailure, byLigand["l2"].Status)
	assert.Error(t, byLigand["l2"].Err)
	assert.Equal(t, Success, byLigand["l3"].Status)
}

func TestRunCartesianProductAndDirs(t *testing.T) {
	engine := &fakeEngine{}
	root := t.TempDir()
	batch := &Batch{Engine: engine, OutDir: root, Log: zap.NewNop()}

	receptors := targets("r1", "r2")
	ligands := targets("l1", "l2", "l3")
	configs := map[string]string{"r1": "r1.conf", "r2": "r2.conf"}

	outcomes, err := batch.Run(context.Background(), receptors, ligands, configs)
	require.NoError(t, err)
	require.Len(t, outcomes, 6)

	dirs := make(map[string]bool)
	for _, out := range outcomes {
		assert.Equal(t, Success, out.Status)
		dir := out.Job.Dir(root)
		assert.False(t, dirs[dir], "job directory %s collides", dir)
		dirs[dir] = true

		assert.FileExists(t, out.LogPath)
		assert.FileExists(t, out.PosesPath)
	}
	assert.Equal(t, int32(6), atomic.LoadInt32(&engine.calls))
}

func TestRunPartialConfigs(t *testing.T) {
	engine := &fakeEngine{}
	batch := &Batch{Engine: engine, OutDir: t.TempDir(), Log: zap.NewNop()}

	outcomes, err := batch.Run(context.Background(),
		targets("r1", "r2"), targets("l1"),
		map[string]string{"r2": "r2.conf"})
	require.NoError(t, err)

	byReceptor := make(map[string]Status)
	for _, out := range outcomes {
		byReceptor[out.Job.Receptor.ID] = out.Status
	}
	assert.Equal(t, MissingConfig, byReceptor["r1"])
	assert.Equal(t, Success, byReceptor["r2"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&engine.calls))
}

func TestRunTimeoutIsEngineFailure(t *testing.T) {
	engine := &fakeEngine{block: func(ligand string) bool { return ligand == "slow" }}
	batch := &Batch{
		Engine:  engine,
		OutDir:  t.TempDir(),
		Workers: 2,
		Timeout: 20 * time.Millisecond,
		Log:     zap.NewNop(),
	}

	outcomes, err := batch.Run(context.Background(),
		targets("r1"), targets("fast", "slow"),
		map[string]string{"r1": "r1.conf"})
	require.NoError(t, err)

	byLigand := make(map[string]Outcome)
	for _, out := range outcomes {
		byLigand[out.Job.Ligand.ID] = out
	}
	assert.Equal(t, Success, byLigand["fast"].Status,
		"a timed-out sibling must not block or fail other jobs")
	assert.Equal(t, EngineFailure, byLigand["slow"].Status)
	assert.ErrorIs(t, byLigand["slow"].Err, context.DeadlineExceeded)
}

func TestRunRejectsUnderscoredReceptor(t *testing.T) {
	batch := &Batch{Engine: &fakeEngine{}, OutDir: t.TempDir(), Log: zap.NewNop()}
	_, err := batch.Run(context.Background(),
		targets("bad_receptor"), targets("l1"), nil)
	assert.ErrorContains(t, err, "reserved")
}

func TestSummarize(t *testing.T) {
	outcomes := []Outcome{
		{Status: Success}, {Status: Success},
		{Status: EngineFailure},
		{Status: MissingConfig}, {Status: MissingConfig}, {Status: MissingConfig},
	}
	counts := Summarize(outcomes)
	assert.Equal(t, 2, counts[Success])
	assert.Equal(t, 1, counts[EngineFailure])
	assert.Equal(t, 3, counts[MissingConfig])
}
