package trex

import "testing"

func TestBiodegradationFluxDisabledIsZero(t *testing.T) {
	chem := &Chemical{Flags: ProcessFlags{Biodegrade: false}, Rates: RateConstants{BiodegradeWater: 1}}
	ctx := ReactionContext{CChem: 10, Volume: 1, Fractions: PartitionFractions{FDissolved: 1}}
	if f := biodegradationFlux(chem, ctx); f != 0 {
		t.Errorf("biodegradationFlux = %g, want 0 when disabled", f)
	}
}

func TestBiodegradationFluxUsesCompartmentRate(t *testing.T) {
	chem := &Chemical{
		Flags: ProcessFlags{Biodegrade: true},
		Rates: RateConstants{BiodegradeWater: 0.1, BiodegradeSediment: 0.5},
	}
	ctx := ReactionContext{CChem: 2, Volume: 3, Fractions: PartitionFractions{FDissolved: 1}, Compartment: CompartmentOverlandWater}
	want := 0.1 * 1 * 2 * 3
	if f := biodegradationFlux(chem, ctx); !almostEqual(f, want) {
		t.Errorf("water biodegradationFlux = %g, want %g", f, want)
	}
	ctx.Compartment = CompartmentOverlandSoil
	want = 0.5 * 1 * 2 * 3
	if f := biodegradationFlux(chem, ctx); !almostEqual(f, want) {
		t.Errorf("soil biodegradationFlux = %g, want %g", f, want)
	}
}

func TestPhotolysisOnlyInWater(t *testing.T) {
	chem := &Chemical{Flags: ProcessFlags{Photolyze: true}, Rates: RateConstants{PhotolyzeWater: 1}}
	ctx := ReactionContext{
		CChem: 5, Volume: 1, Fractions: PartitionFractions{FDissolved: 1},
		Compartment: CompartmentOverlandSoil, LightExtinction: 0.1, WaterColumnThickness: 1,
	}
	if f := photolysisFlux(chem, ctx); f != 0 {
		t.Errorf("photolysisFlux in a soil compartment = %g, want 0", f)
	}
	ctx.Compartment = CompartmentOverlandWater
	if f := photolysisFlux(chem, ctx); f <= 0 {
		t.Errorf("photolysisFlux in a water compartment = %g, want > 0", f)
	}
}

func TestPhotolysisZeroExtinctionUsesFullFlux(t *testing.T) {
	chem := &Chemical{Flags: ProcessFlags{Photolyze: true}, Rates: RateConstants{PhotolyzeWater: 2}}
	ctx := ReactionContext{
		CChem: 5, Volume: 1, Fractions: PartitionFractions{FDissolved: 1},
		Compartment: CompartmentOverlandWater, LightExtinction: 0, WaterColumnThickness: 1,
	}
	want := 2.0 * 1 * 1 * 5 * 1
	if f := photolysisFlux(chem, ctx); !almostEqual(f, want) {
		t.Errorf("photolysisFlux with zero extinction = %g, want %g (unattenuated)", f, want)
	}
}

func TestVolatilizationUsesOnlyDissolvedFraction(t *testing.T) {
	chem := &Chemical{Flags: ProcessFlags{Volatilize: true}, Rates: RateConstants{VolatilizeWater: 1}}
	ctx := ReactionContext{
		CChem: 10, Volume: 1, Compartment: CompartmentChannelWater,
		Fractions: PartitionFractions{FDissolved: 0.4, FBound: 0.6},
	}
	want := 1.0 * 0.4 * 10 * 1
	if f := volatilizationFlux(chem, ctx); !almostEqual(f, want) {
		t.Errorf("volatilizationFlux = %g, want %g", f, want)
	}
}

func TestRadioactiveFluxIgnoresPhase(t *testing.T) {
	chem := &Chemical{Flags: ProcessFlags{Radioactive: true}, Rates: RateConstants{Radioactive: 0.01}}
	ctx := ReactionContext{CChem: 100, Volume: 2, Fractions: PartitionFractions{FParticulate: []float64{0, 0.9}}}
	want := 0.01 * 100 * 2
	if f := radioactiveFlux(chem, ctx); !almostEqual(f, want) {
		t.Errorf("radioactiveFlux = %g, want %g (phase-independent)", f, want)
	}
}

func TestComputeFluxesOmitsZeroAndDisabledProcesses(t *testing.T) {
	chem := &Chemical{
		Flags: ProcessFlags{Hydrolyze: true, Oxidize: false},
		Rates: RateConstants{HydrolyzeWater: 0.2},
	}
	ctx := ReactionContext{CChem: 5, Volume: 1, Fractions: PartitionFractions{FDissolved: 1}, Compartment: CompartmentOverlandWater}
	fluxes := ComputeFluxes(chem, ctx)
	if len(fluxes) != 1 {
		t.Fatalf("expected exactly one non-zero flux, got %d: %+v", len(fluxes), fluxes)
	}
	if fluxes[0].Process != ProcessHydrolysis {
		t.Errorf("expected ProcessHydrolysis, got %v", fluxes[0].Process)
	}
}

func TestLimitFluxUnaffectedBelowAvailable(t *testing.T) {
	limited, hit := LimitFlux(1.0, 10, 1000)
	if hit {
		t.Error("LimitFlux should not report a hit when ample mass is available")
	}
	if limited != 1.0 {
		t.Errorf("limited flux = %g, want 1.0 (unchanged)", limited)
	}
}

func TestLimitFluxRescalesWhenExceedingAvailable(t *testing.T) {
	limited, hit := LimitFlux(10.0, 1, 5)
	if !hit {
		t.Error("LimitFlux should report a hit when the flux exceeds available mass")
	}
	if !almostEqual(limited, 5.0) {
		t.Errorf("limited flux = %g, want 5.0 (available/dt)", limited)
	}
}

func TestLimitFluxClampsNegativeAvailableToZero(t *testing.T) {
	limited, hit := LimitFlux(10.0, 1, -3)
	if !hit {
		t.Error("LimitFlux should report a hit with negative available mass")
	}
	if limited != 0 {
		t.Errorf("limited flux = %g, want 0 when no mass is available", limited)
	}
}

func TestLimitFluxPassesThroughNonPositiveInputs(t *testing.T) {
	if limited, hit := LimitFlux(-5, 1, 10); limited != -5 || hit {
		t.Errorf("LimitFlux(-5, ...) = (%g, %v), want (-5, false): influx is never limited", limited, hit)
	}
	if limited, hit := LimitFlux(5, 0, 10); limited != 5 || hit {
		t.Errorf("LimitFlux(_, 0, _) = (%g, %v), want (5, false): zero dt is a no-op", limited, hit)
	}
}

func TestApplyYieldDistributesScaledMass(t *testing.T) {
	entries := []YieldEntry{
		{From: 0, To: 1, Process: ProcessBiodegradation, Yield: 0.5},
		{From: 0, To: 2, Process: ProcessBiodegradation, Yield: 0.25},
		{From: 0, To: 1, Process: ProcessHydrolysis, Yield: 1.0}, // different process, must not apply
	}
	influx := make([]float64, 3)
	ApplyYield(entries, ProcessBiodegradation, 0, 10, influx)
	if !almostEqual(influx[1], 5) {
		t.Errorf("influx[1] = %g, want 5", influx[1])
	}
	if !almostEqual(influx[2], 2.5) {
		t.Errorf("influx[2] = %g, want 2.5", influx[2])
	}
	if influx[0] != 0 {
		t.Errorf("influx[0] = %g, want 0 (reactant itself never receives yield)", influx[0])
	}
}

func TestDissolutionFluxZeroWhenNoSolidOrVolume(t *testing.T) {
	solid := NewSolid("sand", 0.001, 2650)
	if f := DissolutionFlux(solid, 0, 1, 1, 100, 0, 0, 0); f != 0 {
		t.Errorf("DissolutionFlux with zero solid concentration = %g, want 0", f)
	}
	if f := DissolutionFlux(solid, 10, 0, 1, 100, 0, 0, 0); f != 0 {
		t.Errorf("DissolutionFlux with zero volume = %g, want 0", f)
	}
}

func TestDissolutionFluxPositiveBelowSaturation(t *testing.T) {
	solid := NewSolid("sand", 0.0005, 2650)
	f := DissolutionFlux(solid, 50, 1, 0.01, 100, 0, 0.5, 10)
	if f <= 0 {
		t.Errorf("DissolutionFlux below saturation = %g, want > 0", f)
	}
}

func TestDissolutionFluxMolWtCorrectionReducesFlux(t *testing.T) {
	solid := NewSolid("sand", 0.0005, 2650)
	unweighted := DissolutionFlux(solid, 50, 1, 0.01, 100, 0, 0.5, 10)
	weighted := DissolutionFlux(solid, 50, 1, 0.01, 100, 216, 0.5, 10)
	if weighted <= 0 || weighted >= unweighted {
		t.Errorf("DissolutionFlux with molWt=216 = %g, want in (0, %g)", weighted, unweighted)
	}
}
