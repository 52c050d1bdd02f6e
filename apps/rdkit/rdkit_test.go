package rdkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shamshad-ather/vina-pipeline/metrics"
)

func TestDecode(t *testing.T) {
	out := []byte(`{"mw":180.16,"logp":1.31,"tpsa":63.6,"nha":13,"nrb":2,
		"hbd":1,"hba":3,"sasa":244.7,"qed":0.55}`)

	d, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, metrics.Descriptors{
		MolWeight: 180.16, LogP: 1.31, TPSA: 63.6,
		HeavyAtoms: 13, RotatableBonds: 2, Donors: 1, Acceptors: 3,
		SASA: 244.7, QED: 0.55,
	}, d)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("Traceback (most recent call last):\n"))
	assert.ErrorContains(t, err, "bad descriptor output")
}
