package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/shamshad-ather/vina-pipeline/apps/obabel"
)

func newPrepareCmd() *cobra.Command {
	var (
		inDir    string
		outDir   string
		receptor bool
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Convert structures to docking-ready PDBQT",
		Long: "prepare converts every structure file in a directory to PDBQT with\n" +
			"Gasteiger partial charges via Open Babel. Use --receptor for the\n" +
			"target side (rigid receptor output). A file that fails conversion\n" +
			"is skipped with a warning.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepare(cmd, inDir, outDir, receptor)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&inDir, "in", "ligands", "directory of source structure files")
	fl.StringVar(&outDir, "out", "ligands_pdbqt", "directory for prepared .pdbqt files")
	fl.BoolVar(&receptor, "receptor", false, "prepare rigid receptors instead of ligands")
	fl.String("obabel-bin", "obabel",
		"path to the obabel executable")
	mustBind("obabel.binary", fl, "obabel-bin")

	return cmd
}

func runPrepare(cmd *cobra.Command, inDir, outDir string, receptor bool) error {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	conv := obabel.Config{Binary: viper.GetString("obabel.binary")}
	converted, total := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		total++
		in := filepath.Join(inDir, entry.Name())
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		out := filepath.Join(outDir, base+".pdbqt")

		if receptor {
			err = conv.ConvertReceptor(cmd.Context(), in, out)
		} else {
			err = conv.ConvertLigand(cmd.Context(), in, out)
		}
		if err != nil {
			logger.Warn("conversion failed, skipping",
				zap.String("file", in), zap.Error(err))
			continue
		}
		converted++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "prepared %d/%d structures into %s\n",
		converted, total, outDir)
	return nil
}
