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

// Direction indexes the eleven slots of a directional flux array
// (spec.md §4.F): index 0 is an external load, not a neighbor; indices
// 1-9 are neighbor directions; index 10 is the outlet export.
type Direction int

const (
	DirExternalLoad Direction = 0
	DirOutlet       Direction = 10
)

// HydraulicFluxes carries one (cell|node, layer)'s externally computed
// transport drivers, consumed from the hydraulic and solids modules this
// package treats as collaborators (spec.md §1, "out of scope").
type HydraulicFluxes struct {
	Advection  [11]float64 // m3/s, water volumetric flow per direction
	Dispersion [11]float64 // m3/s

	DepositionErosion float64 // m3/s, + is net deposition (influx), - is net erosion (outflux)
	PorewaterRelease  float64 // m3/s, upward release from a buried layer into the water column
	Infiltration      float64 // m3/s, downward loss out of the water column
}

// LoadUnits selects how an external chemical source's magnitude is
// expressed.
type LoadUnits int

const (
	// LoadConcentration expresses the load as g/m3, applied to the
	// concurrent volumetric flow to yield a mass rate.
	LoadConcentration LoadUnits = iota
	// LoadMassPerDay expresses the load directly as kg/day.
	LoadMassPerDay
)

// ExternalLoadFlux converts an overland point load, overland distributed
// load, or channel load into a g/s mass flux, for addition as transport
// source index 0.
func ExternalLoadFlux(units LoadUnits, value, concurrentFlow float64) float64 {
	if units == LoadMassPerDay {
		return value * 1000 / 86400
	}
	return value * concurrentFlow
}

// AdvectiveChemicalFlux is the mobile-phase (dissolved + DOC-bound) mass
// flux riding a water advective flow. cchemSource is the concentration of
// the cell the flow originates from: the donor cell for an outflux, the
// upstream neighbor for an influx.
func AdvectiveChemicalFlux(flow, mobileFraction, cchemSource float64) float64 {
	return flow * mobileFraction * cchemSource
}

// DispersiveChemicalFlux is the mobile-phase mass flux riding a
// dispersive exchange.
func DispersiveChemicalFlux(flow, mobileFraction, cchemDonor float64) float64 {
	return flow * mobileFraction * cchemDonor
}

// ParticulateChemicalFlux is the particulate-phase mass flux riding a
// solids deposition/erosion flux of class s: the chemical moves in
// proportion to its loading on that solid class in the donor layer.
func ParticulateChemicalFlux(solidFlux, fparticulateS, cchemDonor, csedSDonor float64) float64 {
	if csedSDonor <= 0 {
		return 0
	}
	return solidFlux * fparticulateS * cchemDonor / csedSDonor
}

// PorewaterReleaseFlux is the dissolved+bound mass carried upward into
// the water column when sediment erodes out of a buried layer, in
// proportion to the eroded volumetric flux.
func PorewaterReleaseFlux(erodedVolumeFlux, mobileFraction, cchemLayer float64) float64 {
	return erodedVolumeFlux * mobileFraction * cchemLayer
}

// OutletBoundaryConcentration overrides the outgoing advective
// concentration at an outlet whenever a boundary condition series is
// specified; otherwise the donor cell's own concentration applies.
func OutletBoundaryConcentration(bc *TimeSeries, t float64, donorConc float64) float64 {
	if bc == nil {
		return donorConc
	}
	return bc.Value(t)
}
