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

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// waterDensity is the constant rho_w used by the dissolution surface-area
// term (spec.md §4.E).
const waterDensity = 1000.0 // kg/m3

// ReactionContext is everything the reaction flux kernel needs to
// evaluate one chemical at one (cell|node, layer) at the current step.
type ReactionContext struct {
	T  float64 // simulation time, s
	Dt float64

	Compartment Compartment
	Volume      float64 // m3
	CChem       float64 // g/m3, current concentration of the chemical being evaluated
	Fractions   PartitionFractions

	DOC                  float64 // g/m3
	LightExtinction      float64 // 1/m, water column layers only
	WaterColumnThickness float64 // m
}

// isWater reports whether ctx's compartment is a water-column compartment
// (overland or channel), as opposed to a soil/sediment bed.
func (ctx ReactionContext) isWater() bool {
	return ctx.Compartment == CompartmentOverlandWater || ctx.Compartment == CompartmentChannelWater
}

func rateForCompartment(water, sediment float64, c Compartment) float64 {
	if c == CompartmentOverlandWater || c == CompartmentChannelWater {
		return water
	}
	return sediment
}

// mobileFraction is the phase subset (dissolved + DOC-bound) eligible for
// the aqueous-exposure reaction pathways: hydrolysis, oxidation,
// photolysis, and user-defined reaction.
func (ctx ReactionContext) mobileFraction() float64 {
	return ctx.Fractions.FDissolved + ctx.Fractions.FBound
}

func biodegradationFlux(chem *Chemical, ctx ReactionContext) float64 {
	if !chem.Flags.Biodegrade {
		return 0
	}
	k := rateForCompartment(chem.Rates.BiodegradeWater, chem.Rates.BiodegradeSediment, ctx.Compartment)
	return k * ctx.mobileFraction() * ctx.CChem * ctx.Volume
}

func hydrolysisFlux(chem *Chemical, ctx ReactionContext) float64 {
	if !chem.Flags.Hydrolyze {
		return 0
	}
	k := rateForCompartment(chem.Rates.HydrolyzeWater, chem.Rates.HydrolyzeSediment, ctx.Compartment)
	return k * ctx.mobileFraction() * ctx.CChem * ctx.Volume
}

func oxidationFlux(chem *Chemical, ctx ReactionContext) float64 {
	if !chem.Flags.Oxidize {
		return 0
	}
	k := rateForCompartment(chem.Rates.OxidizeWater, chem.Rates.OxidizeSediment, ctx.Compartment)
	return k * ctx.mobileFraction() * ctx.CChem * ctx.Volume
}

// photolysisFlux applies only in water-column compartments and is
// weighted by depth-averaged light attenuation (Beer-Lambert average
// over the water column thickness).
func photolysisFlux(chem *Chemical, ctx ReactionContext) float64 {
	if !chem.Flags.Photolyze || !ctx.isWater() {
		return 0
	}
	atten := 1.0
	ed := ctx.LightExtinction * ctx.WaterColumnThickness
	if ed > 0 {
		atten = (1 - math.Exp(-ed)) / ed
	}
	return chem.Rates.PhotolyzeWater * atten * ctx.mobileFraction() * ctx.CChem * ctx.Volume
}

// radioactiveFlux applies to total mass, unconditioned by phase: decay is
// independent of sorption state.
func radioactiveFlux(chem *Chemical, ctx ReactionContext) float64 {
	if !chem.Flags.Radioactive {
		return 0
	}
	return chem.Rates.Radioactive * ctx.CChem * ctx.Volume
}

// volatilizationFlux applies only in water-column compartments and only
// to the truly dissolved fraction.
func volatilizationFlux(chem *Chemical, ctx ReactionContext) float64 {
	if !chem.Flags.Volatilize || !ctx.isWater() {
		return 0
	}
	return chem.Rates.VolatilizeWater * ctx.Fractions.FDissolved * ctx.CChem * ctx.Volume
}

func userDefinedFlux(chem *Chemical, ctx ReactionContext) float64 {
	if !chem.Flags.UserDefined {
		return 0
	}
	k := rateForCompartment(chem.Rates.UserWater, chem.Rates.UserSediment, ctx.Compartment)
	return k * ctx.mobileFraction() * ctx.CChem * ctx.Volume
}

// DissolutionFlux computes the mass-transfer flux of a pure-phase solid
// into its dissolution-product chemical (process 8). csedS is the
// solid's own concentration (g/m3); fdissolvedProduct and cchemProduct
// describe the product chemical's current state. molWt (g/mol), when
// positive, applies a Hayduk-Laudie-style molecular-size correction to
// the particle surface-area term: a heavier dissolution product diffuses
// more slowly through the stagnant film around each particle, so the
// effective surface area scales down with the cube root of molar mass.
func DissolutionFlux(solid Solid, csedS, volume, kDiss, solubility, molWt, fdissolvedProduct, cchemProduct float64) float64 {
	if csedS <= 0 || volume <= 0 {
		return 0
	}
	d := solid.Diameter.Value()
	rho := solid.Density.Value()
	if d <= 0 || rho <= 0 {
		return 0
	}
	alpha := 6 * csedS * volume / (d * rho * waterDensity)
	if molWt > 0 {
		alpha /= math.Cbrt(molWt)
	}
	return kDiss * alpha * (solubility - fdissolvedProduct*cchemProduct)
}

// ReactionFlux is one process's contribution to a chemical's mass
// balance at a (cell|node, layer); positive Flux is an outflux.
type ReactionFlux struct {
	Process Process
	Flux    float64 // g/s
}

// ComputeFluxes evaluates every enabled first-order process on chem
// (excluding dissolution, which is driven from the solid's side by
// DissolutionFlux) and returns the non-zero fluxes.
func ComputeFluxes(chem *Chemical, ctx ReactionContext) []ReactionFlux {
	var out []ReactionFlux
	add := func(p Process, f func(*Chemical, ReactionContext) float64) {
		if v := f(chem, ctx); v != 0 {
			out = append(out, ReactionFlux{p, v})
		}
	}
	add(ProcessBiodegradation, biodegradationFlux)
	add(ProcessHydrolysis, hydrolysisFlux)
	add(ProcessOxidation, oxidationFlux)
	add(ProcessPhotolysis, photolysisFlux)
	add(ProcessRadioactive, radioactiveFlux)
	add(ProcessVolatilization, volatilizationFlux)
	add(ProcessUserDefined, userDefinedFlux)
	return out
}

// LimitFlux applies the available-mass limiter (spec.md §4.E / §7
// MASS-LIMIT-HIT): an outflux may never remove more mass in one step
// than is present in the donor cell/layer. hit reports whether the flux
// was rescaled.
func LimitFlux(flux, dt, available float64) (limited float64, hit bool) {
	if flux <= 0 || dt <= 0 {
		return flux, false
	}
	potential := flux * dt
	if potential > available {
		available = floats.Max([]float64{available, 0})
		return available / dt, true
	}
	return flux, false
}

// ApplyYield distributes the outflux removed from chemical fromIdx by
// process p into the influx accumulators of every chemical yielded from
// it, scaled by each entry's Yield (spec.md §4.E "inter-chemical yield").
func ApplyYield(entries []YieldEntry, p Process, fromIdx int, outFlux float64, influx []float64) {
	for _, e := range entries {
		if e.Process == p && e.From == fromIdx {
			influx[e.To] += outFlux * e.Yield
		}
	}
}
