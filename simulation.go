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

	"github.com/ctessum/unit"
)

// StepManipulator is one phase of the per-step pipeline. A Simulation
// runs a fixed ordered sequence of these every step (spec.md §5,
// "Ordering guarantees within a step").
type StepManipulator func(sim *Simulation) error

// HydraulicProvider supplies the externally computed hydraulic and
// solids transport drivers this package treats as collaborators
// (spec.md §1). layer == -1 addresses the water column; layer >= 0
// addresses that 0-based index into the cell or node's Stack.
//
// OverlandDepth and ChannelDepth are the seam through which the external
// hydraulic momentum solver's computed water depth (out of this
// package's scope to compute) is committed into WaterColumn.Depth (in
// scope to consume): ok reports whether the provider has a depth to
// report for this step, and the commit is skipped when it doesn't.
type HydraulicProvider interface {
	Overland(row, col, layer int, t float64) HydraulicFluxes
	Channel(link, node, layer int, t float64) HydraulicFluxes
	OverlandDepth(row, col int, t float64) (depth float64, ok bool)
	ChannelDepth(link, node int, t float64) (depth float64, ok bool)
}

// LoadProvider supplies external chemical sources and outlet boundary
// conditions (spec.md §4.F).
type LoadProvider interface {
	OverlandPointLoad(row, col, chem int, t float64) (units LoadUnits, value float64, ok bool)
	OverlandDistributedLoad(row, col, chem int, t float64) (units LoadUnits, value float64, ok bool)
	ChannelLoad(link, node, chem int, t float64) (units LoadUnits, value float64, ok bool)
	OutletBoundary(outlet Outlet, chem int) *TimeSeries
}

// Outlet identifies one export point tracked by the ledger: either an
// overland cell or a channel node, with the unused pair set to -1.
type Outlet struct {
	ID         int
	Row, Col   int
	Link, Node int
}

// Simulation owns the entire live state of one run: the Grid & Stack
// Store, the environmental field updater, the chemical and solids
// catalogs, the mass ledger, and the external collaborators. Every
// kernel in this package is a pure function or a method on Simulation's
// owned state; spec.md §9's "package the live state into one value
// owned by the driver" design note.
type Simulation struct {
	Store *Store
	Env   *Environment

	Chemicals []Chemical
	Solids    []Solid
	Yields    []YieldEntry
	Outlets   []Outlet

	Ledger *Ledger

	Hydraulic   HydraulicProvider
	Loads       LoadProvider
	UserDefined *UserDefinedRegistry

	Dt              float64
	SimTime         float64
	CollapseEnabled bool

	Steps []StepManipulator
}

// NewSimulation constructs a Simulation with the default step pipeline
// (spec.md §5 ordering): environment update, overland integration,
// channel integration, hydraulic-volume commit, stack mutation, outlet
// registers.
func NewSimulation(store *Store, env *Environment, chems []Chemical, solids []Solid, yields []YieldEntry,
	outlets []Outlet, hydraulic HydraulicProvider, loads LoadProvider, dt float64, collapseEnabled bool) *Simulation {
	sim := &Simulation{
		Store:           store,
		Env:             env,
		Chemicals:       chems,
		Solids:          solids,
		Yields:          yields,
		Outlets:         outlets,
		Ledger:          NewLedger(len(chems)),
		Hydraulic:       hydraulic,
		Loads:           loads,
		Dt:              dt,
		CollapseEnabled: collapseEnabled,
	}
	sim.Steps = []StepManipulator{
		stepEnvironment,
		stepOverland,
		stepChannel,
		stepCommitVolumes,
		stepStackMutation,
		stepOutletRegisters,
	}
	return sim
}

// Step advances the simulation by one Dt, running the pipeline in order.
func (sim *Simulation) Step() error {
	for _, f := range sim.Steps {
		if err := f(sim); err != nil {
			return err
		}
	}
	sim.SimTime += sim.Dt
	return nil
}

func stepEnvironment(sim *Simulation) error {
	sim.Env.Advance(sim.SimTime)
	return nil
}

func stepOverland(sim *Simulation) error {
	g := sim.Store.Grid
	for row := 0; row < g.Config.NRows; row++ {
		for col := 0; col < g.Config.NCols; col++ {
			if g.Mask(row, col) == Outside {
				continue
			}
			if err := sim.integrateOverlandCell(row, col); err != nil {
				return err
			}
		}
	}
	return nil
}

func stepChannel(sim *Simulation) error {
	for link := range sim.Store.Links {
		for node := range sim.Store.Links[link].Nodes {
			if err := sim.integrateChannelNode(link, node); err != nil {
				return err
			}
		}
	}
	return nil
}

// stepCommitVolumes copies every surface layer's State-Advancer volume
// estimate into its committed Volume (spec.md §4.H step 1, "copy
// vlayer_new[surface] -> vlayer[surface] so subsequent computations see
// the newly integrated volume"), so the Pop/Push triggers stepStackMutation
// evaluates next see this step's hydraulic-driven change, not the
// previous step's.
func stepCommitVolumes(sim *Simulation) error {
	g := sim.Store.Grid
	for row := 0; row < g.Config.NRows; row++ {
		for col := 0; col < g.Config.NCols; col++ {
			if g.Mask(row, col) == Outside {
				continue
			}
			if stack, ok := sim.Store.CellStack(row, col); ok {
				if err := commitSurfaceVolume(stack); err != nil {
					return newErr("Simulation.stepCommitVolumes", ConfigInvalid, sim.SimTime, err)
				}
			}
		}
	}
	for link := range sim.Store.Links {
		for node := range sim.Store.Links[link].Nodes {
			stack, ok := sim.Store.NodeStack(link, node)
			if !ok {
				continue
			}
			if err := commitSurfaceVolume(stack); err != nil {
				return newErr("Simulation.stepCommitVolumes", ConfigInvalid, sim.SimTime, err).withLinkNode(link, node)
			}
		}
	}
	return nil
}

// commitSurfaceVolume is the single-layer body of stepCommitVolumes.
func commitSurfaceVolume(stack *Stack) error {
	surf, ok := stack.Surface()
	if !ok {
		return nil
	}
	return stack.SetVolume(stack.NStack-1, surf.NewVolume)
}

func stepStackMutation(sim *Simulation) error {
	g := sim.Store.Grid
	for row := 0; row < g.Config.NRows; row++ {
		for col := 0; col < g.Config.NCols; col++ {
			if g.Mask(row, col) == Outside {
				continue
			}
			if err := sim.Store.MutateCellStack(row, col, sim.Ledger, sim.CollapseEnabled); err != nil {
				return err
			}
		}
	}
	for link := range sim.Store.Links {
		for node := range sim.Store.Links[link].Nodes {
			overlandElev := 0.0
			if n, ok := sim.Store.Node(link, node); ok {
				if stk, ok := sim.Store.CellStack(n.Row, n.Col); ok {
					if surf, ok := stk.Surface(); ok {
						overlandElev = surf.Elevation
					}
				}
			}
			if err := sim.Store.MutateNodeStack(link, node, sim.Ledger, sim.CollapseEnabled, overlandElev); err != nil {
				return err
			}
		}
	}
	return nil
}

func stepOutletRegisters(sim *Simulation) error {
	for _, out := range sim.Outlets {
		var water *WaterColumn
		var hyd HydraulicFluxes
		if out.Link >= 0 {
			water, _ = sim.Store.NodeWater(out.Link, out.Node)
			hyd = sim.Hydraulic.Channel(out.Link, out.Node, -1, sim.SimTime)
		} else {
			water, _ = sim.Store.CellWater(out.Row, out.Col)
			hyd = sim.Hydraulic.Overland(out.Row, out.Col, -1, sim.SimTime)
		}
		if water == nil {
			continue
		}
		for c := range sim.Chemicals {
			bc := sim.Loads.OutletBoundary(out, c)
			conc := OutletBoundaryConcentration(bc, sim.SimTime, water.CChem[c])
			advective := hyd.Advection[DirOutlet] * conc
			dispersive := hyd.Dispersion[DirOutlet] * conc
			sim.Ledger.UpdateOutlet(out.ID, c, advective, dispersive, sim.Dt, sim.SimTime)
			sim.Ledger.RecordEgress(c, (advective+dispersive)*sim.Dt)
		}
	}
	return nil
}

// integrateOverlandCell integrates the water column and every bed layer
// of one overland cell for one step: steps 3-6 of spec.md §5 (partition,
// transport, reaction, commit) for every chemical.
func (sim *Simulation) integrateOverlandCell(row, col int) error {
	water, ok := sim.Store.CellWater(row, col)
	if !ok {
		return nil
	}
	stack, _ := sim.Store.CellStack(row, col)

	if d, ok := sim.Hydraulic.OverlandDepth(row, col, sim.SimTime); ok {
		water.Depth = d
	}

	if err := sim.integrateWater(CompartmentOverlandWater, water, func(s int, l int, t float64) (float64, bool) {
		return sim.Env.ParticulateOC(s, row, col, 0, t)
	}, func(p LayerProperty, t float64) (float64, bool) { return sim.Env.FieldLayer(p, row, col, 0, t) },
		sim.Hydraulic.Overland(row, col, -1, sim.SimTime)); err != nil {
		return newErr("Simulation.integrateOverlandCell", ConfigInvalid, sim.SimTime, err)
	}

	for k := 0; k < stack.NStack; k++ {
		layer := &stack.Layers[k]
		if err := sim.integrateLayer(CompartmentOverlandSoil, layer, func(s int, t float64) (float64, bool) {
			return sim.Env.ParticulateOC(s, row, col, k+1, t)
		}, func(p LayerProperty, t float64) (float64, bool) { return sim.Env.FieldLayer(p, row, col, k+1, t) },
			sim.Hydraulic.Overland(row, col, k, sim.SimTime)); err != nil {
			return err
		}
	}

	for c := range sim.Chemicals {
		if units, val, ok := sim.Loads.OverlandPointLoad(row, col, c, sim.SimTime); ok {
			sim.applyLoad(water, c, units, val)
		}
		if units, val, ok := sim.Loads.OverlandDistributedLoad(row, col, c, sim.SimTime); ok {
			sim.applyLoad(water, c, units, val)
		}
	}
	return nil
}

func (sim *Simulation) integrateChannelNode(link, node int) error {
	water, ok := sim.Store.NodeWater(link, node)
	if !ok {
		return nil
	}
	stack, _ := sim.Store.NodeStack(link, node)

	if d, ok := sim.Hydraulic.ChannelDepth(link, node, sim.SimTime); ok {
		water.Depth = d
	}

	if err := sim.integrateWater(CompartmentChannelWater, water, func(s int, l int, t float64) (float64, bool) {
		return sim.Env.ParticulateOCNode(s, link, node, 0, t)
	}, func(p LayerProperty, t float64) (float64, bool) { return sim.Env.FieldLayerNode(p, link, node, 0, t) },
		sim.Hydraulic.Channel(link, node, -1, sim.SimTime)); err != nil {
		return newErr("Simulation.integrateChannelNode", ConfigInvalid, sim.SimTime, err)
	}

	for k := 0; k < stack.NStack; k++ {
		layer := &stack.Layers[k]
		if err := sim.integrateLayer(CompartmentChannelSediment, layer, func(s int, t float64) (float64, bool) {
			return sim.Env.ParticulateOCNode(s, link, node, k+1, t)
		}, func(p LayerProperty, t float64) (float64, bool) { return sim.Env.FieldLayerNode(p, link, node, k+1, t) },
			sim.Hydraulic.Channel(link, node, k, sim.SimTime)); err != nil {
			return err
		}
	}

	for c := range sim.Chemicals {
		if units, val, ok := sim.Loads.ChannelLoad(link, node, c, sim.SimTime); ok {
			sim.applyLoad(water, c, units, val)
		}
	}
	return nil
}

func (sim *Simulation) applyLoad(water *WaterColumn, chem int, units LoadUnits, value float64) {
	flux := ExternalLoadFlux(units, value, water.Volume())
	mass := flux * sim.Dt
	if water.Volume() > 0 {
		water.CChem[chem] += mass / water.Volume()
	}
	sim.Ledger.RecordIngress(chem, mass)
}

// integrateWater runs the partitioning, reaction, and transport kernels
// for every chemical in the water column and commits the result.
func (sim *Simulation) integrateWater(compartment Compartment, water *WaterColumn,
	foc func(solid, layer int, t float64) (float64, bool),
	env func(p LayerProperty, t float64) (float64, bool), hyd HydraulicFluxes) error {

	volume := water.Volume()
	doc, _ := env(PropDOC, sim.SimTime)
	lightExt, _ := env(PropLightExtinction, sim.SimTime)

	focSlice := make([]float64, len(water.CSed))
	for s := 1; s < len(water.CSed); s++ {
		v, _ := foc(s, 0, sim.SimTime)
		focSlice[s] = v
	}

	return sim.integrateChemicals(compartment, volume, water.CSed, water.CChem, focSlice, doc, lightExt, water.Depth, hyd)
}

func (sim *Simulation) integrateLayer(compartment Compartment, layer *Layer,
	foc func(solid int, t float64) (float64, bool),
	env func(p LayerProperty, t float64) (float64, bool), hyd HydraulicFluxes) error {

	doc, _ := env(PropDOC, sim.SimTime)

	focSlice := make([]float64, len(layer.CSed))
	for s := 1; s < len(layer.CSed); s++ {
		v, _ := foc(s, sim.SimTime)
		focSlice[s] = v
	}

	if err := sim.integrateChemicals(compartment, layer.Volume, layer.CSed, layer.CChem, focSlice, doc, 0, 0, hyd); err != nil {
		return err
	}

	// The State Advancer's not-yet-committed volume estimate: deposition
	// adds volume, porewater release drains it. stepCommitVolumes copies
	// the surface layer's estimate into Volume before the Stack Mutator
	// runs, so this step's hydraulic drivers can trigger Pop/Push.
	layer.NewVolume = layer.Volume + (hyd.DepositionErosion-hyd.PorewaterRelease)*sim.Dt
	if layer.NewVolume < 0 {
		layer.NewVolume = 0
	}
	return nil
}

// integrateChemicals computes phase fractions, reaction fluxes (with the
// available-mass limiter), and a first-order transport estimate for
// every chemical at one (compartment, volume), then commits new
// concentrations in place. This realizes spec.md §5 steps 3-6 and §4.F's
// solids-driven and porewater transport terms. The explicit per-neighbor
// exchange that the hydraulic collaborator's directional fluxes would
// otherwise drive (advection, dispersion, deposition/erosion, porewater
// release, infiltration) is approximated as a net exchange evaluated
// against the donor location's own concentration rather than the true
// upstream/upslope/adjacent-layer donor, since neighbor and adjacent-
// layer topology traversal belongs to the external hydraulic model this
// package consumes, not to the chemical kernel.
func (sim *Simulation) integrateChemicals(compartment Compartment, volume float64, csed, cchem, foc []float64,
	doc, lightExtinction, waterColumnThickness float64, hyd HydraulicFluxes) error {

	influx := make([]float64, len(sim.Chemicals))
	outflux := make([]float64, len(sim.Chemicals))

	var advSum, dispSum float64
	for d := 1; d < int(DirOutlet); d++ {
		advSum += hyd.Advection[d]
		dispSum += hyd.Dispersion[d]
	}

	for c := range sim.Chemicals {
		chem := &sim.Chemicals[c]
		fp := Partition(chem, doc, csed, foc)
		mobile := fp.FDissolved + fp.FBound

		ctx := ReactionContext{
			T: sim.SimTime, Dt: sim.Dt, Compartment: compartment, Volume: volume,
			CChem: cchem[c], Fractions: fp, DOC: doc,
			LightExtinction: lightExtinction, WaterColumnThickness: waterColumnThickness,
		}
		fluxes := ComputeFluxes(chem, ctx)
		if chem.Flags.UserDefined && sim.UserDefined != nil && chem.UserReaction != "" {
			if rxn, ok := sim.UserDefined.Lookup(chem.UserReaction); ok {
				builtIn := fluxes
				fluxes = nil
				for _, rf := range builtIn {
					if rf.Process != ProcessUserDefined {
						fluxes = append(fluxes, rf)
					}
				}
				fluxes = append(fluxes, ReactionFlux{ProcessUserDefined, rxn.Flux(chem, ctx)})
			}
		}
		for _, rf := range fluxes {
			flux := rf.Flux
			available := cchem[c] * volume
			limited, hit := LimitFlux(flux, sim.Dt, available)
			if hit {
				sim.Ledger.RecordMassLimitHit()
			}
			outflux[c] += limited
			ApplyYield(sim.Yields, rf.Process, c, limited, influx)
		}

		// spend applies the available-mass limiter against whatever has
		// already been committed to outflux this step, then accumulates
		// the (possibly rescaled) result.
		spend := func(flux float64) {
			available := cchem[c]*volume - outflux[c]*sim.Dt
			limited, hit := LimitFlux(flux, sim.Dt, available)
			if hit {
				sim.Ledger.RecordMassLimitHit()
			}
			outflux[c] += limited
		}

		if advSum > 0 {
			spend(AdvectiveChemicalFlux(advSum, mobile, cchem[c]))
		}
		if dispSum > 0 {
			spend(DispersiveChemicalFlux(dispSum, mobile, cchem[c]))
		}
		if hyd.Infiltration > 0 {
			spend(AdvectiveChemicalFlux(hyd.Infiltration, mobile, cchem[c]))
		}
		if hyd.PorewaterRelease > 0 {
			spend(PorewaterReleaseFlux(hyd.PorewaterRelease, mobile, cchem[c]))
		}

		// Each solids flux (positive deposition, negative erosion) carries
		// a particulate chemical flux weighted by fparticulate[s] (spec.md
		// §4.F). Deposition is credited as an influx (the location is
		// gaining solids and whatever is sorbed to them); erosion is spent
		// as an outflux alongside the other transport terms.
		if hyd.DepositionErosion != 0 {
			magnitude := math.Abs(hyd.DepositionErosion)
			for s := 1; s < len(csed); s++ {
				if csed[s] <= 0 {
					continue
				}
				pflux := ParticulateChemicalFlux(magnitude, fp.FParticulate[s], cchem[c], csed[s])
				if hyd.DepositionErosion > 0 {
					influx[c] += pflux
				} else {
					spend(pflux)
				}
			}
		}

		for s := 1; s < len(csed); s++ {
			if !chem.Flags.Dissolve {
				continue
			}
			kDiss := rateForCompartment(chem.Rates.DissolutionWater, chem.Rates.DissolutionSediment, compartment)
			solid := sim.solidFor(s)
			d := DissolutionFlux(solid, csed[s], volume, kDiss, chem.Solubility, chem.MolWt, fp.FDissolved, cchem[c])
			if d > 0 {
				influx[c] += d
			}
		}

	}

	for c := range sim.Chemicals {
		mass := cchem[c]*volume + (influx[c]-outflux[c])*sim.Dt
		sim.Ledger.RecordEgress(c, outflux[c]*sim.Dt)
		sim.Ledger.RecordIngress(c, influx[c]*sim.Dt)
		if volume > 0 {
			cchem[c] = mass / volume
		}
		if cchem[c] < 0 {
			cchem[c] = 0
		}
		sim.Ledger.UpdateExtrema(compartment, c, cchem[c])
	}
	return nil
}

func (sim *Simulation) solidFor(idx int) Solid {
	if idx-1 < 0 || idx-1 >= len(sim.Solids) {
		return Solid{Diameter: unit.New(0, unit.Meter), Density: unit.New(0, unit.KilogramPerMeter3)}
	}
	return sim.Solids[idx-1]
}

// FinalizeLedger computes the whole-domain final mass snapshot used by
// the shutdown balance report (spec.md §4.H.6).
func (sim *Simulation) FinalizeLedger() {
	g := sim.Store.Grid
	for c := range sim.Chemicals {
		var total float64
		for row := 0; row < g.Config.NRows; row++ {
			for col := 0; col < g.Config.NCols; col++ {
				if water, ok := sim.Store.CellWater(row, col); ok {
					total += water.CChem[c] * water.Volume()
				}
				if stack, ok := sim.Store.CellStack(row, col); ok {
					for k := 0; k < stack.NStack; k++ {
						total += stack.Layers[k].CChem[c] * stack.Layers[k].Volume
					}
				}
			}
		}
		for link := range sim.Store.Links {
			for node := range sim.Store.Links[link].Nodes {
				if water, ok := sim.Store.NodeWater(link, node); ok {
					total += water.CChem[c] * water.Volume()
				}
				if stack, ok := sim.Store.NodeStack(link, node); ok {
					for k := 0; k < stack.NStack; k++ {
						total += stack.Layers[k].CChem[c] * stack.Layers[k].Volume
					}
				}
			}
		}
		sim.Ledger.Final[c] = total
	}
}

// Balance returns the final per-chemical mass-balance report (spec.md
// §4.H.6). Call FinalizeLedger first.
func (sim *Simulation) Balance() []ChemicalBalance {
	out := make([]ChemicalBalance, len(sim.Chemicals))
	for c := range sim.Chemicals {
		out[c] = sim.Ledger.Balance(c)
	}
	return out
}
