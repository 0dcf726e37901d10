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

import "fmt"

// Location identifies where a stack mutation occurred, for ledger
// records and error diagnostics: either an overland cell (Row, Col) or a
// channel node (Link, Node), with the unused pair set to -1.
type Location struct {
	Row, Col   int
	Link, Node int
}

func overlandLocation(row, col int) Location { return Location{Row: row, Col: col, Link: -1, Node: -1} }
func channelLocation(link, node int) Location {
	return Location{Row: -1, Col: -1, Link: link, Node: node}
}

// ShouldPop reports whether the surface layer has eroded to or below its
// minimum volume trigger and more than one layer remains (spec.md §4.G,
// Pop pre-condition; the trigger is inclusive at V_min).
func (s *Stack) ShouldPop() bool {
	surf, ok := s.Surface()
	if !ok {
		return false
	}
	return surf.Volume <= surf.MinVolumeTrigger && s.NStack > 1
}

// ShouldPush reports whether the surface layer has deposited strictly
// above its maximum volume trigger (spec.md §4.G, Push pre-condition;
// the trigger is exclusive at V_max).
func (s *Stack) ShouldPush() bool {
	surf, ok := s.Surface()
	if !ok {
		return false
	}
	return surf.Volume > surf.MaxVolumeTrigger
}

// recordBurial appends one ledger record for every chemical and (for
// idx>0) solid class moved between two layers.
func recordBurial(ledger *Ledger, loc Location, from, to int, csedFrom, cchemFrom []float64, volumeMoved float64) {
	for i := 1; i < len(csedFrom); i++ {
		ledger.RecordBurial(BurialRecord{
			Row: loc.Row, Col: loc.Col, Link: loc.Link, Node: loc.Node,
			FromLayer: from, ToLayer: to, SolidIdx: i, ChemIdx: -1,
			Mass: csedFrom[i] * volumeMoved,
		})
	}
	for i := range cchemFrom {
		ledger.RecordBurial(BurialRecord{
			Row: loc.Row, Col: loc.Col, Link: loc.Link, Node: loc.Node,
			FromLayer: from, ToLayer: to, SolidIdx: -1, ChemIdx: i,
			Mass: cchemFrom[i] * volumeMoved,
		})
	}
}

// mergeLayers combines src into dst by the additive-volume, mass-weighted
// concentration rule used by both Pop and bottom-layer Collapse
// (spec.md §4.G step 1).
func mergeLayers(dst, src *Layer) {
	vNew := dst.Volume + src.Volume
	if vNew > 0 {
		for i := range dst.CSed {
			dst.CSed[i] = (src.CSed[i]*src.Volume + dst.CSed[i]*dst.Volume) / vNew
		}
		for i := range dst.CChem {
			dst.CChem[i] = (src.CChem[i]*src.Volume + dst.CChem[i]*dst.Volume) / vNew
		}
	}
	dst.Volume = vNew
	dst.NewVolume = vNew
	if dst.Area > 0 {
		dst.Thickness = vNew / dst.Area
	}
}

// Pop merges the surface layer into the one below it (upward re-
// indexing on erosion to threshold). It is a no-op if ShouldPop is false.
func (s *Stack) Pop(ledger *Ledger, loc Location) {
	if !s.ShouldPop() {
		return
	}
	k := s.NStack - 1   // surface, 0-based
	km1 := k - 1         // layer below
	top := &s.Layers[k]
	below := &s.Layers[km1]

	recordBurial(ledger, loc, k, km1, top.CSed, top.CChem, top.Volume)

	topElevation := top.Elevation
	mergeLayers(below, top)
	below.Elevation = topElevation

	s.Layers[k] = newLayer(s.NumSolids, s.NumChems)
	s.NStack--
}

// collapse merges the bottom two layers and shifts every layer above them
// down by one slot (spec.md §4.G step "optional collapse at bottom").
// Callers must have already verified NStack == MaxStack and MaxStack > 2.
func (s *Stack) collapse(ledger *Ledger, loc Location) {
	bottom := &s.Layers[0]
	second := &s.Layers[1]

	recordBurial(ledger, loc, 1, 0, second.CSed, second.CChem, second.Volume)
	mergeLayers(bottom, second)

	for i := 2; i < s.NStack; i++ {
		src := s.Layers[i]
		recordBurial(ledger, loc, i, i-1, src.CSed, src.CChem, src.Volume)
		s.Layers[i-1] = src
	}
	s.Layers[s.NStack-1] = newLayer(s.NumSolids, s.NumChems)
	s.NStack--
}

// refForPosition returns the pristine reference for depth position p,
// lazily seeding it from the initial surface layer's reference the first
// time the stack grows past its pristine height (spec.md §3, "layers
// restored above nstack0 inherit the soil type and reference volume of
// the original surface layer").
func (s *Stack) refForPosition(p int) layerRef {
	if p >= s.NStack0 {
		s.refs[p] = s.refs[s.NStack0-1]
	}
	return s.refs[p]
}

// Push splits the overflowed surface layer into a restored sub-surface
// layer and a new surface layer carrying the excess volume (downward re-
// indexing on deposition to threshold), preceded by a bottom-layer
// collapse if the stack is full and collapse is enabled. It is a no-op
// if ShouldPush is false. Returns STACK-FULL if the stack is full and
// collapse is disabled or MaxStack <= 2.
func (s *Stack) Push(ledger *Ledger, collapseEnabled bool, loc Location) error {
	if !s.ShouldPush() {
		return nil
	}
	if s.NStack == s.MaxStack {
		if !collapseEnabled || s.MaxStack <= 2 {
			return &SimError{Kind: StackFull, Op: "Stack.Push", Row: loc.Row, Col: loc.Col,
				Link: loc.Link, Node: loc.Node, Layer: s.NStack - 1,
				Err: fmt.Errorf("stack is full (nstack=%d) and cannot collapse (collapse enabled: %v, max stack: %d)",
					s.NStack, collapseEnabled, s.MaxStack)}
		}
		s.collapse(ledger, loc)
	}

	oldIdx := s.NStack - 1 // the overflowed surface, about to become sub-surface
	newIdx := s.NStack     // the brand-new surface slot

	old := &s.Layers[oldIdx]
	oldRef := s.refs[oldIdx]
	newRef := s.refForPosition(newIdx)

	excess := old.Volume - newRef.Volume

	conc := make([]float64, len(old.CSed))
	copy(conc, old.CSed)
	chemConc := make([]float64, len(old.CChem))
	copy(chemConc, old.CChem)

	recordBurial(ledger, loc, newIdx, oldIdx, conc, chemConc, excess)

	oldBottomElevation := old.Elevation - old.Thickness

	old.Volume = oldRef.Volume
	old.Thickness = oldRef.Thickness
	old.MinVolumeTrigger = oldRef.MinTrigger
	old.MaxVolumeTrigger = oldRef.MaxTrigger
	old.Elevation = oldBottomElevation + oldRef.Thickness

	n := &s.Layers[newIdx]
	n.Volume = excess
	n.Area = newRef.Area
	n.BottomWidth = newRef.BottomWidth
	n.SoilType = newRef.SoilType
	n.MinVolumeTrigger = newRef.MinTrigger
	n.MaxVolumeTrigger = newRef.MaxTrigger
	if n.Area > 0 {
		n.Thickness = excess / n.Area
	}
	n.Elevation = old.Elevation + n.Thickness
	copy(n.CSed, conc)
	copy(n.CChem, chemConc)

	s.NStack++
	return nil
}

// MutateCellStack applies Pop then Push to an overland cell's stack,
// matching the state-advancer ordering of spec.md §4.H step 2.
func (st *Store) MutateCellStack(row, col int, ledger *Ledger, collapseEnabled bool) error {
	stk, ok := st.CellStack(row, col)
	if !ok {
		return nil
	}
	stk.Pop(ledger, overlandLocation(row, col))
	return stk.Push(ledger, collapseEnabled, overlandLocation(row, col))
}

// MutateNodeStack applies Pop then Push to a channel node's stack, and
// additionally recomputes bank height and side slope against the
// overland cell's ground elevation, failing with GEOMETRY-INVALID if the
// bank height collapses to zero or below (spec.md §4.G).
func (st *Store) MutateNodeStack(link, node int, ledger *Ledger, collapseEnabled bool, overlandElevation float64) error {
	stk, ok := st.NodeStack(link, node)
	if !ok {
		return nil
	}
	n, ok := st.Node(link, node)
	if !ok {
		return nil
	}

	stk.Pop(ledger, channelLocation(link, node))
	if err := stk.Push(ledger, collapseEnabled, channelLocation(link, node)); err != nil {
		return err
	}

	surf, ok := stk.Surface()
	if !ok {
		return nil
	}
	n.BankHeight = overlandElevation - surf.Elevation
	if n.BankHeight <= 0 {
		return &SimError{Kind: GeometryInvalid, Op: "Store.MutateNodeStack",
			Link: link, Node: node, Row: -1, Col: -1, Layer: stk.NStack - 1,
			Err: fmt.Errorf("bank height %g is not positive after stack mutation", n.BankHeight)}
	}
	if n.BankHeight > 0 {
		n.SideSlope = 0.5 * (n.TopWidth - n.BottomWidth) / n.BankHeight
	}
	return nil
}
