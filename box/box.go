// Package box computes the docking search volume for a receptor and
// persists it as a Vina configuration artifact.
package box

import (
	"errors"
	"fmt"
	"math"

	"github.com/shamshad-ather/vina-pipeline/pdbqt"
)

// ErrInvalidGeometry is returned when a receptor's atom set cannot bound a
// search volume: no atoms, a non-finite coordinate, or a negative buffer.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Volume is an axis-aligned docking box in the receptor's coordinate frame.
// Every receptor atom lies within center ± size/2.
type Volume struct {
	CenterX, CenterY, CenterZ float64
	SizeX, SizeY, SizeZ       float64
}

// Compute bounds the given atoms with an axis-aligned box and inflates each
// axis by 2×buffer so the margin is symmetric. The center is the midpoint
// of the per-axis extrema, not the centroid: a centroid can sit far from
// the geometric middle of an uneven atom distribution and lose coverage
// once sizes are derived from it.
//
// A single atom (or fully coincident atoms) is a valid degenerate case: the
// pre-buffer extent is zero and the buffer alone defines the volume.
func Compute(atoms []pdbqt.Atom, buffer float64) (Volume, error) {
	if len(atoms) == 0 {
		return Volume{}, fmt.Errorf("%w: structure has no atoms", ErrInvalidGeometry)
	}
	if buffer < 0 {
		return Volume{}, fmt.Errorf("%w: negative buffer %g", ErrInvalidGeometry, buffer)
	}

	min := [3]float64{atoms[0].X, atoms[0].Y, atoms[0].Z}
	max := min
	for _, atom := range atoms {
		for i, v := range [3]float64{atom.X, atom.Y, atom.Z} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Volume{}, fmt.Errorf(
					"%w: non-finite coordinate %g", ErrInvalidGeometry, v)
			}
			if v < min[i] {
				min[i] = v
			}
			if v > max[i] {
				max[i] = v
			}
		}
	}

	return Volume{
		CenterX: (min[0] + max[0]) / 2,
		CenterY: (min[1] + max[1]) / 2,
		CenterZ: (min[2] + max[2]) / 2,
		SizeX:   (max[0] - min[0]) + 2*buffer,
		SizeY:   (max[1] - min[1]) + 2*buffer,
		SizeZ:   (max[2] - min[2]) + 2*buffer,
	}, nil
}

// Contains reports whether the point is inside center ± size/2 on all
// three axes.
func (v Volume) Contains(x, y, z float64) bool {
	return math.Abs(x-v.CenterX) <= v.SizeX/2 &&
		math.Abs(y-v.CenterY) <= v.SizeY/2 &&
		math.Abs(z-v.CenterZ) <= v.SizeZ/2
}
