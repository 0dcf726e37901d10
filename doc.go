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

// Package trex implements the TREX coupled state-integration engine: a
// 2-D overland grid and 1-D channel network, each cell and node carrying
// a bounded layered stack of soil/sediment state plus a water column,
// advanced one timestep at a time through phase partitioning, reaction,
// and transport, with layers re-indexed upward on erosion and downward
// on deposition.
//
// The hydraulic and solids transport computations that drive
// HydraulicFluxes are an external collaborator: this package owns only
// the chemical fate and transport state built on top of them.
package trex
