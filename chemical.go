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

import "github.com/ctessum/unit"

// Process identifies a reaction or transformation channel a chemical can
// participate in. The numbering follows the historical TREX process
// indices so that dissolution (8) keeps the meaning spec.md assigns it.
type Process int

const (
	ProcessPartition Process = iota + 1
	ProcessBiodegradation
	ProcessHydrolysis
	ProcessOxidation
	ProcessPhotolysis
	ProcessRadioactive
	ProcessVolatilization
	ProcessDissolution
	ProcessUserDefined
)

// Compartment is a semantically distinct chemical reservoir.
type Compartment int

const (
	CompartmentOverlandWater Compartment = iota
	CompartmentOverlandSoil
	CompartmentChannelWater
	CompartmentChannelSediment
)

// ProcessFlags enables or disables each reaction/transformation channel for
// one chemical. A zero value disables every process (a chemical is inert
// unless flags are explicitly set).
type ProcessFlags struct {
	Partition     bool
	Biodegrade    bool
	Hydrolyze     bool
	Oxidize       bool
	Photolyze     bool
	Radioactive   bool
	Volatilize    bool
	UserDefined   bool
	Dissolve      bool // chemical is a dissolution product of a pure-phase solid
}

// RateConstants holds the per-compartment first-order rate constants (1/s,
// except Dissolution which is a mass-transfer velocity) that parameterize
// the reaction flux kernel for one chemical.
type RateConstants struct {
	BiodegradeWater, BiodegradeSediment       float64
	HydrolyzeWater, HydrolyzeSediment         float64
	OxidizeWater, OxidizeSediment             float64
	PhotolyzeWater                            float64
	Radioactive                               float64
	VolatilizeWater                           float64
	UserWater, UserSediment                   float64
	DissolutionWater, DissolutionSediment     float64
}

// Chemical is the per-species record driving partitioning and reaction.
type Chemical struct {
	Name  string
	Group string // reporting group membership

	Kp   float64 // partition coefficient, m3/g
	Kb   float64 // DOC binding coefficient, m3/g
	Koc  float64 // organic-carbon partition coefficient, m3/g
	NuX  float64 // particle-interaction parameter

	Flags ProcessFlags
	Rates RateConstants

	// Solubility is the saturation concentration used by the dissolution
	// term for chemicals that are dissolution products (g/m3).
	Solubility float64
	// MolWt is the molar mass (g/mol), used only by the dissolution
	// surface-area term. ctessum/unit has no amount-of-substance
	// dimension, so this stays a plain float64 rather than a *unit.Unit.
	MolWt float64

	// UserReaction names a UserDefinedReaction registered in a
	// UserDefinedRegistry, consulted in place of the built-in first-order
	// rate law when Flags.UserDefined is set and the name resolves.
	UserReaction string
}

// Solid is the per-class record for a suspended/bed solids class. Diameter
// and Density are typed with ctessum/unit so that a caller cannot pass a
// raw float64 of the wrong dimension into the dissolution surface-area
// term (spec.md §4.E) without a compile error.
type Solid struct {
	Name string
	// Diameter is the nominal particle diameter used by the dissolution
	// surface-area term.
	Diameter *unit.Unit
	// Density is the particle density used by the dissolution
	// surface-area term.
	Density *unit.Unit
}

// NewSolid constructs a Solid from a diameter in meters and a density in
// kg/m3.
func NewSolid(name string, diameterM, densityKgM3 float64) Solid {
	return Solid{
		Name:     name,
		Diameter: unit.New(diameterM, unit.Meter),
		Density:  unit.New(densityKgM3, unit.KilogramPerMeter3),
	}
}

// YieldEntry maps a reactant (chemical or, for process 8, solid) to a
// product chemical with a mass yield factor, per a specific process
// channel.
type YieldEntry struct {
	From    int // index of reactant chemical, or solid class if Process==ProcessDissolution
	To      int // index of product chemical
	Process Process
	Yield   float64 // g product per g reactant
}
