// Package vina wraps the AutoDock Vina docking engine as a subprocess. The
// engine is a black box here: it consumes a receptor, a ligand and a
// search-volume config, and produces scored poses plus a free-text log.
package vina

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// DefaultConfig runs whatever 'vina' resolves to on PATH.
var DefaultConfig = Config{Binary: "vina"}

// Config locates the Vina executable.
type Config struct {
	// Binary points to the vina executable. If vina is in your PATH, it
	// is sufficient to leave this as "vina".
	Binary string
}

// Dock runs one docking. The engine's combined stdout/stderr is written
// verbatim to logPath even when the run fails, so the log can always be
// inspected; poses go to posesPath via the engine's own --out handling.
// Context cancellation (the per-job timeout) kills the engine and is
// reported as an error like any non-zero exit.
func (conf Config) Dock(ctx context.Context, receptor, ligand, configPath, posesPath, logPath string) error {
	args := dockArgs(receptor, ligand, configPath, posesPath)
	out, err := exec.CommandContext(ctx, conf.Binary, args...).CombinedOutput()

	if werr := os.WriteFile(logPath, out, 0644); werr != nil {
		if err == nil {
			err = werr
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("%s %v: %w", conf.Binary, args, err)
	}
	return nil
}

func dockArgs(receptor, ligand, configPath, posesPath string) []string {
	return []string{
		"--receptor", receptor,
		"--ligand", ligand,
		"--config", configPath,
		"--out", posesPath,
	}
}
