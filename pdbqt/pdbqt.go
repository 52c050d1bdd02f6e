// Package pdbqt reads docking-ready structure files in PDBQT format (the
// AutoDock family's extension of PDB). Only the atomic coordinate records
// are read; torsion tree and charge bookkeeping records are skipped, since
// the pipeline needs geometry and identity, not docking state.
package pdbqt

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Atom is a single ATOM or HETATM record.
type Atom struct {
	// Name is the atom name from columns 13-16, e.g. "CA" or "N1".
	Name string

	// Type is the AutoDock atom type from the tail of the record (columns
	// 78-79 in PDBQT). Empty for plain PDB input.
	Type string

	X, Y, Z float64
}

// Structure is one receptor or ligand: the ordered list of atoms read from
// a single structure file. A Structure is never mutated after Read returns.
type Structure struct {
	Path  string
	Atoms []Atom
}

// ID derives the structure identity used throughout the pipeline from a
// file path: the base name with any ".gz" and ".pdbqt"/".pdb" suffix
// stripped.
func ID(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".pdbqt")
	name = strings.TrimSuffix(name, ".pdb")
	return name
}

// Read parses a PDBQT (or PDB) file into a Structure. If the file name ends
// with ".gz", gzip decompression is used. A file with no ATOM/HETATM
// records yields a Structure with an empty atom list; malformed coordinate
// fields are an error.
func Read(fileName string) (*Structure, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if filepath.Ext(fileName) == ".gz" {
		if reader, err = gzip.NewReader(f); err != nil {
			return nil, err
		}
	}

	s := &Structure{
		Path:  fileName,
		Atoms: make([]Atom, 0, 64),
	}

	breader := bufio.NewReaderSize(reader, 1000)
	lineNum := 0
	for {
		// isPrefix is ignored: no structure record comes close to the
		// 1000 byte buffer.
		line, _, err := breader.ReadLine()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		lineNum++

		if len(line) < 6 {
			continue
		}
		switch strings.TrimSpace(string(line[0:6])) {
		case "ATOM", "HETATM":
			atom, err := parseAtom(line)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", fileName, lineNum, err)
			}
			s.Atoms = append(s.Atoms, atom)
		}
	}
	return s, nil
}

// parseAtom reads one ATOM/HETATM record. The coordinate fields are in the
// fixed PDB columns: x in 31-38, y in 39-46, z in 47-54 (1-indexed).
func parseAtom(line []byte) (Atom, error) {
	if len(line) < 54 {
		return Atom{}, fmt.Errorf("atom record too short (%d columns)", len(line))
	}

	var atom Atom
	atom.Name = strings.TrimSpace(string(line[12:16]))

	coords := [3]struct {
		field  string
		lo, hi int
		dest   *float64
	}{
		{"x", 30, 38, &atom.X},
		{"y", 38, 46, &atom.Y},
		{"z", 46, 54, &atom.Z},
	}
	for _, c := range coords {
		raw := strings.TrimSpace(string(line[c.lo:c.hi]))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Atom{}, fmt.Errorf("bad %s coordinate '%s'", c.field, raw)
		}
		*c.dest = v
	}

	// PDBQT atom type sits in columns 78-79; plain PDB files end sooner
	// and single-letter types may leave column 79 off entirely.
	if len(line) > 77 {
		end := 79
		if len(line) < end {
			end = len(line)
		}
		atom.Type = strings.TrimSpace(string(line[77:end]))
	}
	return atom, nil
}
