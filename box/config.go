package box

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Params are the engine tunables written alongside the search volume into
// each receptor's config artifact.
type Params struct {
	// Exhaustiveness is Vina's search effort level.
	Exhaustiveness int

	// NumModes is the number of binding poses the engine reports.
	NumModes int
}

// DefaultParams matches Vina's own defaults.
var DefaultParams = Params{Exhaustiveness: 8, NumModes: 9}

// WriteConfig writes a Vina key-value config file describing the search
// volume and engine parameters. Coordinates are written to three decimals,
// which is the resolution of the PDB coordinate columns they came from.
func WriteConfig(path string, vol Volume, params Params) error {
	var b strings.Builder
	fmt.Fprintf(&b, "center_x = %.3f\n", vol.CenterX)
	fmt.Fprintf(&b, "center_y = %.3f\n", vol.CenterY)
	fmt.Fprintf(&b, "center_z = %.3f\n", vol.CenterZ)
	fmt.Fprintf(&b, "size_x = %.3f\n", vol.SizeX)
	fmt.Fprintf(&b, "size_y = %.3f\n", vol.SizeY)
	fmt.Fprintf(&b, "size_z = %.3f\n", vol.SizeZ)
	fmt.Fprintf(&b, "exhaustiveness = %d\n", params.Exhaustiveness)
	fmt.Fprintf(&b, "num_modes = %d\n", params.NumModes)
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// ReadConfig parses a config artifact written by WriteConfig (or by hand in
// the same key-value format). Unknown keys are ignored; a config missing
// any of the six volume keys is an error.
func ReadConfig(path string) (Volume, Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return Volume{}, Params{}, err
	}
	defer f.Close()

	var vol Volume
	params := DefaultParams
	seen := make(map[string]bool, 6)

	floatKeys := map[string]*float64{
		"center_x": &vol.CenterX, "center_y": &vol.CenterY, "center_z": &vol.CenterZ,
		"size_x": &vol.SizeX, "size_y": &vol.SizeY, "size_z": &vol.SizeZ,
	}
	intKeys := map[string]*int{
		"exhaustiveness": &params.Exhaustiveness,
		"num_modes":      &params.NumModes,
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if dest, ok := floatKeys[key]; ok {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Volume{}, Params{}, fmt.Errorf(
					"%s: bad value '%s' for %s", path, value, key)
			}
			*dest = v
			seen[key] = true
		} else if dest, ok := intKeys[key]; ok {
			v, err := strconv.Atoi(value)
			if err != nil {
				return Volume{}, Params{}, fmt.Errorf(
					"%s: bad value '%s' for %s", path, value, key)
			}
			*dest = v
		}
	}
	if err := scanner.Err(); err != nil {
		return Volume{}, Params{}, err
	}

	for key := range floatKeys {
		if !seen[key] {
			return Volume{}, Params{}, fmt.Errorf("%s: missing key %s", path, key)
		}
	}
	return vol, params, nil
}
