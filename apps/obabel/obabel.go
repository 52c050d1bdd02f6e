// Package obabel wraps Open Babel for structure preparation: converting
// receptor and ligand files into docking-ready PDBQT with partial charges.
// The chemistry itself stays in the external toolkit.
package obabel

import (
	"context"
	"fmt"
	"os/exec"
)

// DefaultConfig runs whatever 'obabel' resolves to on PATH.
var DefaultConfig = Config{Binary: "obabel"}

// Config locates the Open Babel executable.
type Config struct {
	Binary string
}

// ConvertLigand prepares a small molecule: output format is inferred from
// the destination extension, Gasteiger partial charges are assigned and
// hydrogens added for physiological pH.
func (conf Config) ConvertLigand(ctx context.Context, in, out string) error {
	return conf.run(ctx, in, out, "-p", "7.4", "--partialcharge", "gasteiger")
}

// ConvertReceptor prepares a macromolecular target. The -xr flag writes a
// rigid receptor (no torsion tree), which is what the engine expects on
// its --receptor side.
func (conf Config) ConvertReceptor(ctx context.Context, in, out string) error {
	return conf.run(ctx, in, out, "-xr", "--partialcharge", "gasteiger")
}

func (conf Config) run(ctx context.Context, in, out string, extra ...string) error {
	args := append([]string{in, "-O", out}, extra...)
	if msg, err := exec.CommandContext(ctx, conf.Binary, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s %v: %s: %w", conf.Binary, args, msg, err)
	}
	return nil
}
