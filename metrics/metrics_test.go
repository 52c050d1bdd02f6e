package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamshad-ather/vina-pipeline/vinalog"
)

func descriptors() Descriptors {
	return Descriptors{
		MolWeight:      250.3,
		LogP:           2.1,
		TPSA:           63.6,
		HeavyAtoms:     17,
		RotatableBonds: 4,
		Donors:         1,
		Acceptors:      3,
		SASA:           310.5,
		QED:            0.72,
	}
}

func TestPKi(t *testing.T) {
	// pKi = -ΔG/(RT·ln10) with RT at 298.15 K.
	assert.InDelta(t, 6.2305, PKi(-8.5), 1e-3)
	assert.InDelta(t, 0, PKi(0), 1e-12)

	// More favorable (more negative) affinity gives strictly larger pKi.
	assert.Greater(t, PKi(-9.0), PKi(-8.5))
	assert.Greater(t, PKi(-8.5), PKi(-1.0))
}

func TestDerive(t *testing.T) {
	rec := vinalog.Record{Receptor: "r1", Ligand: "l1", Affinity: -8.5}
	row, err := Derive(rec, descriptors())
	require.NoError(t, err)

	assert.Equal(t, "r1", row.Receptor)
	assert.Equal(t, "l1", row.Ligand)
	assert.Equal(t, -8.5, row.Affinity)
	assert.Equal(t, -0.5, row.LE)
	assert.InDelta(t, row.PKi-2.1, row.LLE, 1e-12)
	assert.InDelta(t, -8.5/math.Pow(17, 0.3), row.SILEN, 1e-12)
	assert.InDelta(t, row.PKi/310.5, row.SILESASA, 1e-12)
}

func TestDeriveDegenerate(t *testing.T) {
	rec := vinalog.Record{Receptor: "r1", Ligand: "l1", Affinity: -8.5}

	noAtoms := descriptors()
	noAtoms.HeavyAtoms = 0
	_, err := Derive(rec, noAtoms)
	assert.ErrorIs(t, err, ErrDegenerateLigand)

	noSurface := descriptors()
	noSurface.SASA = 0
	_, err = Derive(rec, noSurface)
	assert.ErrorIs(t, err, ErrDegenerateLigand)
}
