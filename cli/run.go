package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/shamshad-ather/vina-pipeline/apps/vina"
	"github.com/shamshad-ather/vina-pipeline/dispatch"
)

func newRunCmd() *cobra.Command {
	var (
		receptorDir string
		ligandDir   string
		confDir     string
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dock every ligand against every receptor",
		Long: "run builds the receptor×ligand job matrix and invokes the docking\n" +
			"engine once per pair through a bounded worker pool. Failures are\n" +
			"isolated per job: one difficult pair never aborts the batch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, receptorDir, ligandDir, confDir, outDir)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&receptorDir, "receptor-dir", "receptors_pdbqt",
		"directory of prepared receptor .pdbqt files")
	fl.StringVar(&ligandDir, "ligand-dir", "ligands_pdbqt",
		"directory of prepared ligand .pdbqt files")
	fl.StringVar(&confDir, "conf-dir", "configs",
		"directory of per-receptor config artifacts (see 'box')")
	fl.StringVar(&outDir, "out-dir", "docking_results",
		"root directory for per-job output directories")
	fl.Int("workers", 0,
		"max concurrent engine invocations (0 = number of CPUs)")
	fl.Duration("timeout", 0,
		"per-job engine timeout (0 = none)")
	fl.String("vina-bin", "vina",
		"path to the vina executable")
	mustBind("run.workers", fl, "workers")
	mustBind("run.timeout", fl, "timeout")
	mustBind("vina.binary", fl, "vina-bin")

	return cmd
}

func runBatch(cmd *cobra.Command, receptorDir, ligandDir, confDir, outDir string) error {
	receptors, err := listStructures(receptorDir)
	if err != nil {
		return err
	}
	ligands, err := listStructures(ligandDir)
	if err != nil {
		return err
	}
	configs := findConfigs(confDir, receptors)

	batchID := uuid.NewString()
	log := logger.With(zap.String("batch", batchID))
	log.Info("dispatching docking batch",
		zap.Int("receptors", len(receptors)),
		zap.Int("ligands", len(ligands)),
		zap.Int("jobs", len(receptors)*len(ligands)),
		zap.Int("configured_receptors", len(configs)))

	batch := &dispatch.Batch{
		Engine:  vina.Config{Binary: viper.GetString("vina.binary")},
		OutDir:  outDir,
		Workers: viper.GetInt("run.workers"),
		Timeout: viper.GetDuration("run.timeout"),
		Log:     log,
	}

	start := time.Now()
	outcomes, err := batch.Run(cmd.Context(), receptors, ligands, configs)
	if err != nil {
		return err
	}

	counts := dispatch.Summarize(outcomes)
	log.Info("batch finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("success", counts[dispatch.Success]),
		zap.Int("engine_failure", counts[dispatch.EngineFailure]),
		zap.Int("missing_config", counts[dispatch.MissingConfig]))

	fmt.Fprintf(cmd.OutOrStdout(),
		"%d jobs: %d succeeded, %d engine failures, %d skipped (no config)\n",
		len(outcomes), counts[dispatch.Success],
		counts[dispatch.EngineFailure], counts[dispatch.MissingConfig])
	return nil
}
