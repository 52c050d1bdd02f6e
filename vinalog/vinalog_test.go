package vinalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamshad-ather/vina-pipeline/dispatch"
)

const sampleLog = `#################################################################
# If you used AutoDock Vina in your work, please cite:          #
#################################################################

Reading input ... done.
Setting up the scoring function ... done.
Analyzing the binding site ... done.
Performing search ... done.

mode |   affinity | dist from best mode
     | (kcal/mol) | rmsd l.b.| rmsd u.b.
-----+------------+----------+----------
   1       -7.1      0.000      0.000
   2       -8.5      2.115      4.284
   3       -6.9      3.790      6.103
Writing output ... done.
`

func successOutcome(t *testing.T, log string) dispatch.Outcome {
	t.Helper()
	path := filepath.Join(t.TempDir(), dispatch.LogName)
	require.NoError(t, os.WriteFile(path, []byte(log), 0644))
	return dispatch.Outcome{
		Job: dispatch.Job{
			Receptor: dispatch.Target{ID: "r1"},
			Ligand:   dispatch.Target{ID: "lig_a"},
		},
		Status:  dispatch.Success,
		LogPath: path,
	}
}

func TestParsePicksLowestScoreNotFirstRow(t *testing.T) {
	rec, err := Parse(successOutcome(t, sampleLog))
	require.NoError(t, err)

	assert.Equal(t, "r1", rec.Receptor)
	assert.Equal(t, "lig_a", rec.Ligand)
	assert.Equal(t, -8.5, rec.Affinity)
}

func TestParseNoScore(t *testing.T) {
	log := "Performing search ... done.\nWriting output ... done.\n"
	_, err := Parse(successOutcome(t, log))
	assert.ErrorIs(t, err, ErrNoScoreFound)
}

func TestParseSkipsNonTableNumbers(t *testing.T) {
	// Lines with the wrong column count (like the "WARNING: 2 rotatable
	// bonds" style chatter) must not be mistaken for mode rows.
	log := "Detected 4 CPUs\nRandom seed: -123456\n" +
		"   1       -5.0      0.000      0.000\n"
	rec, err := Parse(successOutcome(t, log))
	require.NoError(t, err)
	assert.Equal(t, -5.0, rec.Affinity)
}

func TestParseNotRun(t *testing.T) {
	out := dispatch.Outcome{
		Job:    dispatch.Job{Receptor: dispatch.Target{ID: "r1"}, Ligand: dispatch.Target{ID: "l1"}},
		Status: dispatch.MissingConfig,
	}
	rec, err := Parse(out)
	assert.ErrorIs(t, err, ErrNotRun)
	assert.Equal(t, "r1", rec.Receptor)
	assert.Equal(t, "l1", rec.Ligand)
}

func TestParseEngineFailed(t *testing.T) {
	out := dispatch.Outcome{
		Job:     dispatch.Job{Receptor: dispatch.Target{ID: "r1"}, Ligand: dispatch.Target{ID: "l1"}},
		Status:  dispatch.EngineFailure,
		LogPath: "/nonexistent/vina.log",
	}
	// The log must not be read at all: a bogus path still classifies.
	_, err := Parse(out)
	assert.ErrorIs(t, err, ErrEngineFailed)
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()

	okDir := filepath.Join(root, "r1_lig_a_2")
	require.NoError(t, os.MkdirAll(okDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(okDir, dispatch.LogName), []byte(sampleLog), 0644))

	failedDir := filepath.Join(root, "r2_lig_b")
	require.NoError(t, os.MkdirAll(failedDir, 0755))

	// A stray file and a non-job directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "plots"), 0755))

	outcomes, err := ScanDir(root)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	byReceptor := make(map[string]dispatch.Outcome)
	for _, out := range outcomes {
		byReceptor[out.Job.Receptor.ID] = out
	}

	ok := byReceptor["r1"]
	assert.Equal(t, dispatch.Success, ok.Status)
	assert.Equal(t, "lig_a_2", ok.Job.Ligand.ID,
		"underscored ligand names must survive directory-name recovery")

	failed := byReceptor["r2"]
	assert.Equal(t, dispatch.EngineFailure, failed.Status)
	assert.Equal(t, "lig_b", failed.Job.Ligand.ID)
}
