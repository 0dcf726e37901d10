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
	"bytes"
	"encoding/gob"
	"math"

	"gonum.org/v1/gonum/floats"
)

// BurialRecord is one symmetric mass transfer between adjacent layers
// raised by a Pop, Push, or Collapse (spec.md §4.G step 3): the same
// mass leaves FromLayer and enters ToLayer, recorded under the scour-ward
// frame-of-reference convention even when the physical motion is
// depositional.
type BurialRecord struct {
	Row, Col   int // overland location, or -1 if a channel record
	Link, Node int // channel location, or -1 if an overland record
	FromLayer  int
	ToLayer    int
	SolidIdx   int // >=0 for a solid class record, -1 for a chemical record
	ChemIdx    int // >=0 for a chemical record, -1 for a solid record
	Mass       float64
}

// OutletRegister accumulates one chemical's cumulative export at one
// outlet, plus its peak instantaneous flux.
type OutletRegister struct {
	AdvectiveOut  float64 // g, cumulative
	DispersiveOut float64 // g, cumulative
	PeakValue     float64 // g/s, largest instantaneous total flux seen
	PeakTime      float64 // s, simulation time of PeakValue
}

// Ledger is the global mass-balance bookkeeper (spec.md §4.H, §3 "Mass
// ledger"). It accumulates domain-wide ingress/egress per chemical,
// per-outlet export registers, per-compartment concentration extrema,
// and the burial audit log, then reduces everything to a final percent-
// error balance at shutdown.
type Ledger struct {
	NumChems int

	MassIn  []float64 // g, cumulative ingress per chemical (loads, dissolution production, yield)
	MassOut []float64 // g, cumulative egress per chemical (reactions, outlet export)

	Initial []float64 // g, whole-domain initial mass per chemical
	Final   []float64 // g, whole-domain final mass per chemical, set at shutdown

	Outlets map[int][]OutletRegister // outlet id -> per-chemical register

	compartmentMin map[Compartment][]float64
	compartmentMax map[Compartment][]float64

	Burial []BurialRecord

	MassLimitHits int // diagnostic counter for MASS-LIMIT-HIT recoveries
}

// NewLedger allocates a Ledger for numChems chemicals.
func NewLedger(numChems int) *Ledger {
	l := &Ledger{
		NumChems:       numChems,
		MassIn:         make([]float64, numChems),
		MassOut:        make([]float64, numChems),
		Initial:        make([]float64, numChems),
		Final:          make([]float64, numChems),
		Outlets:        map[int][]OutletRegister{},
		compartmentMin: map[Compartment][]float64{},
		compartmentMax: map[Compartment][]float64{},
	}
	for _, c := range []Compartment{CompartmentOverlandWater, CompartmentOverlandSoil, CompartmentChannelWater, CompartmentChannelSediment} {
		min := make([]float64, numChems)
		max := make([]float64, numChems)
		for i := range min {
			min[i] = math.Inf(1)
			max[i] = math.Inf(-1)
		}
		l.compartmentMin[c] = min
		l.compartmentMax[c] = max
	}
	return l
}

// ledgerWire is the gob wire format for Ledger, exporting the otherwise-
// unexported compartment extrema tables so a restart file round-trips
// the running min/max concentration registers, not just the cumulative
// mass totals.
type ledgerWire struct {
	NumChems       int
	MassIn         []float64
	MassOut        []float64
	Initial        []float64
	Final          []float64
	Outlets        map[int][]OutletRegister
	CompartmentMin map[Compartment][]float64
	CompartmentMax map[Compartment][]float64
	Burial         []BurialRecord
	MassLimitHits  int
}

// GobEncode implements gob.GobEncoder.
func (l *Ledger) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	w := ledgerWire{
		NumChems: l.NumChems, MassIn: l.MassIn, MassOut: l.MassOut,
		Initial: l.Initial, Final: l.Final, Outlets: l.Outlets,
		CompartmentMin: l.compartmentMin, CompartmentMax: l.compartmentMax,
		Burial: l.Burial, MassLimitHits: l.MassLimitHits,
	}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (l *Ledger) GobDecode(data []byte) error {
	var w ledgerWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	l.NumChems, l.MassIn, l.MassOut = w.NumChems, w.MassIn, w.MassOut
	l.Initial, l.Final, l.Outlets = w.Initial, w.Final, w.Outlets
	l.compartmentMin, l.compartmentMax = w.CompartmentMin, w.CompartmentMax
	l.Burial, l.MassLimitHits = w.Burial, w.MassLimitHits
	return nil
}

// RecordIngress adds mass (g) entering the domain for chemical chem:
// external loads, and dissolution production credited as an influx.
func (l *Ledger) RecordIngress(chem int, mass float64) {
	if mass > 0 {
		l.MassIn[chem] += mass
	}
}

// RecordEgress adds mass (g) leaving the domain for chemical chem:
// reaction losses and outlet export.
func (l *Ledger) RecordEgress(chem int, mass float64) {
	if mass > 0 {
		l.MassOut[chem] += mass
	}
}

// RecordBurial appends a symmetric burial transfer to the audit log.
func (l *Ledger) RecordBurial(rec BurialRecord) {
	l.Burial = append(l.Burial, rec)
}

// outletRegister returns (allocating if necessary) outlet id's per-
// chemical register slice.
func (l *Ledger) outletRegister(id int) []OutletRegister {
	regs, ok := l.Outlets[id]
	if !ok {
		regs = make([]OutletRegister, l.NumChems)
		l.Outlets[id] = regs
	}
	return regs
}

// UpdateOutlet records one step's advective and dispersive export flux
// (g/s) for chemical chem at outlet id, updating the cumulative totals
// and the peak-discharge register.
func (l *Ledger) UpdateOutlet(id, chem int, advectiveFlux, dispersiveFlux, dt, t float64) {
	regs := l.outletRegister(id)
	r := &regs[chem]
	r.AdvectiveOut += advectiveFlux * dt
	r.DispersiveOut += dispersiveFlux * dt
	total := advectiveFlux + dispersiveFlux
	if total > r.PeakValue {
		r.PeakValue = total
		r.PeakTime = t
	}
}

// UpdateExtrema records one step's concentration for chemical chem in
// compartment c, updating the running min/max.
func (l *Ledger) UpdateExtrema(c Compartment, chem int, conc float64) {
	l.compartmentMin[c][chem] = floats.Min([]float64{l.compartmentMin[c][chem], conc})
	l.compartmentMax[c][chem] = floats.Max([]float64{l.compartmentMax[c][chem], conc})
}

// Extrema returns the running min/max concentration for chemical chem in
// compartment c.
func (l *Ledger) Extrema(c Compartment, chem int) (min, max float64) {
	return l.compartmentMin[c][chem], l.compartmentMax[c][chem]
}

// RecordMassLimitHit increments the MASS-LIMIT-HIT diagnostic counter.
func (l *Ledger) RecordMassLimitHit() {
	l.MassLimitHits++
}

// ChemicalBalance is the final-report reduction for one chemical
// (spec.md §4.H.6): percent error of (initial+ingress) vs (final+egress).
type ChemicalBalance struct {
	Initial, Final   float64
	Ingress, Egress  float64
	PercentError     float64
}

// Balance reduces the ledger to a per-chemical balance report. Final must
// have been populated (via l.Final) from a whole-domain mass sum taken
// at shutdown.
func (l *Ledger) Balance(chem int) ChemicalBalance {
	b := ChemicalBalance{
		Initial: l.Initial[chem],
		Final:   l.Final[chem],
		Ingress: l.MassIn[chem],
		Egress:  l.MassOut[chem],
	}
	denom := b.Initial + b.Ingress
	if denom != 0 {
		b.PercentError = 100 * ((b.Initial + b.Ingress) - (b.Final + b.Egress)) / denom
	}
	return b
}
