package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shamshad-ather/vina-pipeline/dispatch"
	"github.com/shamshad-ather/vina-pipeline/pdbqt"
)

// listStructures collects the prepared structure files in a directory as
// dispatch targets, sorted by ID so runs enumerate jobs deterministically.
func listStructures(dir string) ([]dispatch.Target, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.pdbqt"))
	if err != nil {
		return nil, err
	}
	gz, err := filepath.Glob(filepath.Join(dir, "*.pdbqt.gz"))
	if err != nil {
		return nil, err
	}
	paths = append(paths, gz...)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .pdbqt structures in %s", dir)
	}

	targets := make([]dispatch.Target, 0, len(paths))
	for _, p := range paths {
		targets = append(targets, dispatch.Target{ID: pdbqt.ID(p), Path: p})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].ID < targets[j].ID })
	return targets, nil
}

// findConfigs maps each receptor to its search-volume config artifact.
// Receptors without one are simply absent from the map; the dispatcher
// short-circuits their jobs.
func findConfigs(confDir string, receptors []dispatch.Target) map[string]string {
	configs := make(map[string]string, len(receptors))
	for _, r := range receptors {
		path := filepath.Join(confDir, r.ID+".conf")
		if _, err := os.Stat(path); err == nil {
			configs[r.ID] = path
		}
	}
	return configs
}

// findLigandFile locates the source file for a ligand ID, preferring SDF
// (better bond/conformer information for the descriptor service) and
// falling back to the prepared PDBQT.
func findLigandFile(dirs []string, ligand string) (string, error) {
	for _, ext := range []string{".sdf", ".pdbqt"} {
		for _, dir := range dirs {
			path := filepath.Join(dir, ligand+ext)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("no source file for ligand '%s' in %v", ligand, dirs)
}
