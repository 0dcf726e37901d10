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

package main

import "github.com/watershedmodels/trex"

// zeroProvider is the placeholder HydraulicProvider/LoadProvider wired by
// the CLI when no external hydraulic/solids coupling is configured
// (spec.md §1 Non-goals excludes rewriting the hydraulic/erosion
// closures; this package only consumes their output). A real deployment
// supplies a HydraulicProvider backed by the external hydraulics model.
type zeroProvider struct{}

func (zeroProvider) Overland(row, col, layer int, t float64) trex.HydraulicFluxes {
	return trex.HydraulicFluxes{}
}

func (zeroProvider) Channel(link, node, layer int, t float64) trex.HydraulicFluxes {
	return trex.HydraulicFluxes{}
}

// OverlandDepth and ChannelDepth report no depth update: a real deployment
// supplies a HydraulicProvider that commits the hydraulic model's computed
// depth here.
func (zeroProvider) OverlandDepth(row, col int, t float64) (float64, bool)  { return 0, false }
func (zeroProvider) ChannelDepth(link, node int, t float64) (float64, bool) { return 0, false }

func (zeroProvider) OverlandPointLoad(row, col, chem int, t float64) (trex.LoadUnits, float64, bool) {
	return trex.LoadConcentration, 0, false
}

func (zeroProvider) OverlandDistributedLoad(row, col, chem int, t float64) (trex.LoadUnits, float64, bool) {
	return trex.LoadConcentration, 0, false
}

func (zeroProvider) ChannelLoad(link, node, chem int, t float64) (trex.LoadUnits, float64, bool) {
	return trex.LoadConcentration, 0, false
}

func (zeroProvider) OutletBoundary(outlet trex.Outlet, chem int) *trex.TimeSeries {
	return nil
}
