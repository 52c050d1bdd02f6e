// Package rdkit wraps an external molecular-descriptor helper built on
// RDKit. The helper takes a ligand structure file and prints a single JSON
// object with the descriptor set the metrics engine consumes.
package rdkit

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/shamshad-ather/vina-pipeline/metrics"
)

// DefaultConfig runs the 'ligand-descriptors' helper from PATH.
var DefaultConfig = Config{Binary: "ligand-descriptors"}

// Config locates the descriptor helper. Args are prepended before the
// ligand path, so a python interpreter plus script also works:
//
//	Config{Binary: "python3", Args: []string{"descriptors.py"}}
type Config struct {
	Binary string
	Args   []string
}

// Descriptors invokes the helper on one ligand and decodes its JSON
// output. It satisfies metrics.Calculator.
func (conf Config) Descriptors(ctx context.Context, ligandPath string) (metrics.Descriptors, error) {
	args := append(append([]string{}, conf.Args...), ligandPath)
	out, err := exec.CommandContext(ctx, conf.Binary, args...).Output()
	if err != nil {
		return metrics.Descriptors{}, fmt.Errorf("%s %v: %w", conf.Binary, args, err)
	}
	return Decode(out)
}

// Decode parses the helper's JSON output, e.g.
//
//	{"mw":180.16,"logp":1.31,"tpsa":63.6,"nha":13,"nrb":2,
//	 "hbd":1,"hba":3,"sasa":244.7,"qed":0.55}
func Decode(out []byte) (metrics.Descriptors, error) {
	var d metrics.Descriptors
	if err := json.Unmarshal(out, &d); err != nil {
		return metrics.Descriptors{}, fmt.Errorf("bad descriptor output: %w", err)
	}
	return d, nil
}
