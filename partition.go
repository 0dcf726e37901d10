/*
Copyright © 2024 the TREX authors.
This file is part of TREX.

TREX is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TREX is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TREX.  If not, see <http://www.gnu.org/licenses/>.
*/

package trex

// PartitionFractions is the three-phase equilibrium split of one
// chemical's mass at one (cell, layer): dissolved, DOC-bound, and
// particulate per solid class. FParticulate is indexed like a layer's
// CSed slice: index 0 is unused (always zero), classes start at 1.
type PartitionFractions struct {
	FDissolved   float64
	FBound       float64
	FParticulate []float64
}

// Partition computes the equilibrium phase split for one chemical given
// the DOC concentration and solids concentrations (csed, CSed-indexed)
// and per-solid organic-carbon fractions (foc, same indexing) resident at
// one (cell, layer). If chem.Flags.Partition is false, all mass is
// dissolved regardless of kp (spec.md §8, boundary behavior).
func Partition(chem *Chemical, docConc float64, csed, foc []float64) PartitionFractions {
	fp := PartitionFractions{FParticulate: make([]float64, len(csed))}
	if !chem.Flags.Partition {
		fp.FDissolved = 1
		return fp
	}

	m := csed[0] // total suspended/bed solids concentration
	nux := chem.NuX
	if nux <= 0 {
		nux = 1
	}
	phiNu := nux / (nux + m)

	kbEff := chem.Kb * phiNu
	kpEff := make([]float64, len(csed))
	for s := 1; s < len(csed); s++ {
		kp := chem.Kp
		if kp == 0 {
			kp = chem.Koc * foc[s]
		}
		kpEff[s] = kp * phiNu
	}

	denom := 1.0
	denom += kbEff * docConc
	for s := 1; s < len(csed); s++ {
		denom += kpEff[s] * csed[s]
	}

	fp.FDissolved = 1 / denom
	fp.FBound = kbEff * docConc / denom
	for s := 1; s < len(csed); s++ {
		fp.FParticulate[s] = kpEff[s] * csed[s] / denom
	}
	return fp
}

// Sum returns fdissolved + fbound + sum_s fparticulate[s], which must
// equal 1 within the tolerance spec.md §8 requires.
func (fp PartitionFractions) Sum() float64 {
	total := fp.FDissolved + fp.FBound
	for s := 1; s < len(fp.FParticulate); s++ {
		total += fp.FParticulate[s]
	}
	return total
}
