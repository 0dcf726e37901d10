package trex

import "testing"

func TestPartitionDisabledAllDissolved(t *testing.T) {
	chem := &Chemical{Flags: ProcessFlags{Partition: false}, Kp: 5}
	fp := Partition(chem, 10, []float64{0, 2, 3}, []float64{0, 0.1, 0.1})
	if fp.FDissolved != 1 {
		t.Errorf("FDissolved = %g, want 1 when partitioning is disabled", fp.FDissolved)
	}
	if fp.FBound != 0 {
		t.Errorf("FBound = %g, want 0 when partitioning is disabled", fp.FBound)
	}
	for s, v := range fp.FParticulate {
		if v != 0 {
			t.Errorf("FParticulate[%d] = %g, want 0 when partitioning is disabled", s, v)
		}
	}
}

func TestPartitionFractionsSumToOne(t *testing.T) {
	chem := &Chemical{
		Flags: ProcessFlags{Partition: true},
		Kp:    2.0,
		Kb:    0.5,
		NuX:   1.0,
	}
	csed := []float64{0, 10, 20, 5}
	foc := []float64{0, 0.05, 0.1, 0.02}
	fp := Partition(chem, 3.0, csed, foc)
	if got := fp.Sum(); !almostEqual(got, 1) {
		t.Errorf("fraction sum = %g, want 1", got)
	}
}

func TestPartitionUsesKocWhenKpZero(t *testing.T) {
	chem := &Chemical{
		Flags: ProcessFlags{Partition: true},
		Kp:    0,
		Koc:   4.0,
		NuX:   1.0,
	}
	csed := []float64{0, 10}
	foc := []float64{0, 0.1}
	fp := Partition(chem, 0, csed, foc)
	if got := fp.Sum(); !almostEqual(got, 1) {
		t.Errorf("fraction sum = %g, want 1", got)
	}
	if fp.FParticulate[1] <= 0 {
		t.Error("expected nonzero particulate fraction when Koc*foc > 0")
	}
}

func TestPartitionZeroSolidsAllDissolvedOrBound(t *testing.T) {
	chem := &Chemical{Flags: ProcessFlags{Partition: true}, Kp: 2, Kb: 1, NuX: 1}
	csed := []float64{0, 0, 0}
	foc := []float64{0, 0, 0}
	fp := Partition(chem, 0, csed, foc)
	if !almostEqual(fp.FDissolved, 1) {
		t.Errorf("with no solids and no DOC, FDissolved = %g, want 1", fp.FDissolved)
	}
	for s, v := range fp.FParticulate {
		if v != 0 {
			t.Errorf("FParticulate[%d] = %g, want 0 with no suspended solids", s, v)
		}
	}
}

func TestPartitionNuXDefaultsWhenNonPositive(t *testing.T) {
	chemZero := &Chemical{Flags: ProcessFlags{Partition: true}, Kp: 1, NuX: 0}
	chemNeg := &Chemical{Flags: ProcessFlags{Partition: true}, Kp: 1, NuX: -5}
	csed := []float64{0, 5}
	foc := []float64{0, 0.1}
	fpZero := Partition(chemZero, 0, csed, foc)
	fpNeg := Partition(chemNeg, 0, csed, foc)
	if !almostEqual(fpZero.FDissolved, fpNeg.FDissolved) {
		t.Errorf("NuX<=0 should default identically: zero=%g neg=%g", fpZero.FDissolved, fpNeg.FDissolved)
	}
}
