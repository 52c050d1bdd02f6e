package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/shamshad-ather/vina-pipeline/box"
	"github.com/shamshad-ather/vina-pipeline/pdbqt"
)

func newBoxCmd() *cobra.Command {
	var (
		receptorDir string
		confDir     string
	)

	cmd := &cobra.Command{
		Use:   "box",
		Short: "Compute per-receptor docking boxes and write config artifacts",
		Long: "box reads every prepared receptor, bounds its atoms with an\n" +
			"axis-aligned search volume plus a symmetric buffer, and writes one\n" +
			"Vina config artifact per receptor. A receptor with unusable\n" +
			"geometry is skipped with a warning; the sweep continues.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBox(cmd, receptorDir, confDir)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&receptorDir, "receptor-dir", "receptors_pdbqt",
		"directory of prepared receptor .pdbqt files")
	fl.StringVar(&confDir, "conf-dir", "configs",
		"directory to write per-receptor config artifacts into")
	fl.Float64("buffer", 10.0,
		"symmetric box margin in Å added around the receptor extent")
	fl.Int("exhaustiveness", 8,
		"engine search effort level")
	fl.Int("num-modes", 9,
		"number of binding poses the engine reports")
	mustBind("box.buffer", fl, "buffer")
	mustBind("box.exhaustiveness", fl, "exhaustiveness")
	mustBind("box.num_modes", fl, "num-modes")

	return cmd
}

func runBox(cmd *cobra.Command, receptorDir, confDir string) error {
	receptors, err := listStructures(receptorDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(confDir, 0755); err != nil {
		return err
	}

	buffer := viper.GetFloat64("box.buffer")
	params := box.Params{
		Exhaustiveness: viper.GetInt("box.exhaustiveness"),
		NumModes:       viper.GetInt("box.num_modes"),
	}

	written := 0
	for _, r := range receptors {
		s, err := pdbqt.Read(r.Path)
		if err != nil {
			logger.Warn("cannot read receptor, skipping",
				zap.String("receptor", r.ID), zap.Error(err))
			continue
		}
		vol, err := box.Compute(s.Atoms, buffer)
		if err != nil {
			logger.Warn("cannot bound receptor, skipping",
				zap.String("receptor", r.ID), zap.Error(err))
			continue
		}
		conf := filepath.Join(confDir, r.ID+".conf")
		if err := box.WriteConfig(conf, vol, params); err != nil {
			return err
		}
		logger.Info("wrote docking box",
			zap.String("receptor", r.ID),
			zap.Float64s("center", []float64{vol.CenterX, vol.CenterY, vol.CenterZ}),
			zap.Float64s("size", []float64{vol.SizeX, vol.SizeY, vol.SizeZ}))
		written++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d/%d receptor configs to %s\n",
		written, len(receptors), confDir)
	return nil
}
