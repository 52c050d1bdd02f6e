// Package metrics derives ligand-efficiency descriptors from a docking
// affinity and externally supplied molecular descriptors.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shamshad-ather/vina-pipeline/vinalog"
)

// ErrDegenerateLigand marks a ligand whose descriptors cannot support the
// efficiency derivations (no heavy atoms, or no surface area). It fails a
// single row, never the batch.
var ErrDegenerateLigand = errors.New("degenerate ligand descriptors")

// Thermodynamic constants for the affinity→pKi conversion:
// Ki = exp(ΔG/RT) at the standard reference temperature, so
// pKi = -log10(Ki) = -ΔG / (RT·ln 10).
const (
	gasConstant   = 1.987204259e-3 // kcal/(mol·K)
	referenceTemp = 298.15         // K
	rt            = gasConstant * referenceTemp
)

// Descriptors are the scalar molecular properties supplied by the external
// descriptor service for one ligand.
type Descriptors struct {
	// MolWeight is the molecular weight in g/mol.
	MolWeight float64 `json:"mw"`

	// LogP is the octanol-water partition coefficient.
	LogP float64 `json:"logp"`

	// TPSA is the topological polar surface area in Å².
	TPSA float64 `json:"tpsa"`

	// HeavyAtoms is the non-hydrogen atom count.
	HeavyAtoms int `json:"nha"`

	// RotatableBonds is the rotatable bond count.
	RotatableBonds int `json:"nrb"`

	// Donors and Acceptors are the hydrogen bond donor/acceptor counts.
	Donors    int `json:"hbd"`
	Acceptors int `json:"hba"`

	// SASA is the solvent-accessible surface area in Å².
	SASA float64 `json:"sasa"`

	// QED is the quantitative drug-likeness estimate in [0, 1].
	QED float64 `json:"qed"`
}

// Calculator is the external molecular-descriptor capability. The
// subprocess implementation lives in apps/rdkit; tests substitute fakes.
type Calculator interface {
	Descriptors(ctx context.Context, ligandPath string) (Descriptors, error)
}

// Row is one line of the final metrics table: identity, affinity, the
// supplied descriptors, and the derived efficiency fields.
type Row struct {
	Receptor string
	Ligand   string

	// Affinity is the predicted binding free energy in kcal/mol.
	Affinity float64

	// PKi is the -log10 of the binding constant implied by Affinity.
	PKi float64

	Descriptors

	// LE is the ligand efficiency: affinity per heavy atom.
	LE float64

	// LLE is the lipophilic ligand efficiency: pKi - LogP.
	LLE float64

	// SILEN is the size-independent ligand efficiency over heavy atoms:
	// affinity / NHA^0.3.
	SILEN float64

	// SILESASA is the surface-normalized efficiency: pKi / SASA.
	SILESASA float64
}

// PKi converts a binding free energy in kcal/mol to a -log-molar binding
// constant. More negative affinities give larger pKi.
func PKi(affinity float64) float64 {
	return -affinity / (rt * math.Ln10)
}

// Derive computes the efficiency metrics for one affinity record. A ligand
// with zero heavy atoms or zero surface area fails with
// ErrDegenerateLigand; such a row is dropped, not zero-filled.
func Derive(rec vinalog.Record, d Descriptors) (Row, error) {
	if d.HeavyAtoms <= 0 {
		return Row{}, fmt.Errorf("%s/%s: %w: heavy atom count %d",
			rec.Receptor, rec.Ligand, ErrDegenerateLigand, d.HeavyAtoms)
	}
	if d.SASA <= 0 {
		return Row{}, fmt.Errorf("%s/%s: %w: surface area %g",
			rec.Receptor, rec.Ligand, ErrDegenerateLigand, d.SASA)
	}

	pki := PKi(rec.Affinity)
	return Row{
		Receptor:    rec.Receptor,
		Ligand:      rec.Ligand,
		Affinity:    rec.Affinity,
		PKi:         pki,
		Descriptors: d,
		LE:          rec.Affinity / float64(d.HeavyAtoms),
		LLE:         pki - d.LogP,
		SILEN:       rec.Affinity / math.Pow(float64(d.HeavyAtoms), 0.3),
		SILESASA:    pki / d.SASA,
	}, nil
}
