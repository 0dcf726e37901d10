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
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Layer is one element of a layered stack: volume, geometry, and the
// per-solid and per-chemical concentrations resident in it.
//
// CSed[0] is always the sum over solid classes 1..len(CSed)-1; callers
// never write CSed[0] directly, they call Stack.reconcileSolidSum after
// mutating individual classes.
type Layer struct {
	Volume    float64 // m3
	NewVolume float64 // m3, the State Advancer's not-yet-committed estimate

	Thickness    float64 // m
	BottomWidth  float64 // m, channel only
	Area         float64 // m2, ground area (overland) or bed area (channel)
	Elevation    float64 // m, elevation of the layer top

	MinVolumeTrigger float64 // m3, pop fires at Volume <= this
	MaxVolumeTrigger float64 // m3, push fires at Volume > this

	SoilType int

	CSed  []float64 // g/m3, index 0 == sum, 1..NumSolids per class
	CChem []float64 // g/m3, index 0..NumChems-1
}

func newLayer(numSolids, numChems int) Layer {
	return Layer{
		CSed:  make([]float64, numSolids+1),
		CChem: make([]float64, numChems),
	}
}

// layerRef is the pristine reference state for one depth position, used to
// restore a pushed-down layer and to seed a newly created surface layer
// above the original stack height (spec.md §3, "pristine initial stack
// height").
type layerRef struct {
	Volume, Thickness, MinTrigger, MaxTrigger float64
	Area, BottomWidth                         float64
	SoilType                                  int
}

// Stack is the bounded ordered sequence of layers resident in one overland
// cell or one channel node. Layers[0] is the deepest layer (index 1 in the
// 1-based convention of spec.md §3); Layers[NStack-1] is the current
// surface. Positions NStack..MaxStack-1 are allocated but inert.
type Stack struct {
	MaxStack int
	NStack   int // 1 <= NStack <= MaxStack
	NStack0  int // pristine initial stack height

	Layers []Layer // len == MaxStack always

	NumSolids, NumChems int

	refs []layerRef // len == MaxStack, indexed by depth position
}

// NewStack allocates a Stack with MaxStack layer slots, all inert (NStack
// == 0 until an initial-condition reader populates it).
func NewStack(maxStack, numSolids, numChems int) Stack {
	s := Stack{
		MaxStack:  maxStack,
		NumSolids: numSolids,
		NumChems:  numChems,
		Layers:    make([]Layer, maxStack),
		refs:      make([]layerRef, maxStack),
	}
	for i := range s.Layers {
		s.Layers[i] = newLayer(numSolids, numChems)
	}
	return s
}

// Seed populates the bottom nstack0 layers from initial-condition data and
// records them as the pristine reference for their depth positions. It
// must be called exactly once, before the simulation loop starts.
func (s *Stack) Seed(layers []Layer) error {
	if len(layers) < 1 || len(layers) > s.MaxStack {
		return newErr("Stack.Seed", ConfigInvalid, 0,
			fmt.Errorf("initial stack height %d out of range [1,%d]", len(layers), s.MaxStack))
	}
	for i, l := range layers {
		s.Layers[i] = l
		s.refs[i] = layerRef{
			Volume:      l.Volume,
			Thickness:   l.Thickness,
			MinTrigger:  l.MinVolumeTrigger,
			MaxTrigger:  l.MaxVolumeTrigger,
			Area:        l.Area,
			BottomWidth: l.BottomWidth,
			SoilType:    l.SoilType,
		}
	}
	s.NStack = len(layers)
	s.NStack0 = len(layers)
	return nil
}

// LayerCount returns the number of active layers, nstack.
func (s *Stack) LayerCount() int { return s.NStack }

// Layer returns a pointer to layer index k (0-based, 0 == deepest), or nil
// and false if k is absent: negative, or >= NStack. Per the Grid & Stack
// Store contract, an absent layer is never reported as a zero-initialized
// stale value.
func (s *Stack) Layer(k int) (*Layer, bool) {
	if s == nil || k < 0 || k >= s.NStack {
		return nil, false
	}
	return &s.Layers[k], true
}

// Surface returns the top layer, the current surface.
func (s *Stack) Surface() (*Layer, bool) {
	if s == nil || s.NStack == 0 {
		return nil, false
	}
	return s.Layer(s.NStack - 1)
}

// BulkProps returns the volume, thickness, area, and elevation of layer k.
func (s *Stack) BulkProps(k int) (volume, thickness, area, elevation float64, ok bool) {
	l, ok := s.Layer(k)
	if !ok {
		return 0, 0, 0, 0, false
	}
	return l.Volume, l.Thickness, l.Area, l.Elevation, true
}

// SolidConcentration returns the mass concentration of solid class idx (0
// == the all-class sum) in layer k.
func (s *Stack) SolidConcentration(k, idx int) (float64, bool) {
	l, ok := s.Layer(k)
	if !ok || idx < 0 || idx >= len(l.CSed) {
		return 0, false
	}
	return l.CSed[idx], true
}

// ChemConcentration returns the mass concentration of chemical idx in
// layer k.
func (s *Stack) ChemConcentration(k, idx int) (float64, bool) {
	l, ok := s.Layer(k)
	if !ok || idx < 0 || idx >= len(l.CChem) {
		return 0, false
	}
	return l.CChem[idx], true
}

// SetVolume sets layer k's volume. Only the Stack Mutator and State
// Advancer call this; every other component treats volume as read-only.
func (s *Stack) SetVolume(k int, v float64) error {
	l, ok := s.Layer(k)
	if !ok {
		return newErr("Stack.SetVolume", ConfigInvalid, 0, fmt.Errorf("layer %d absent", k))
	}
	l.Volume = v
	return nil
}

// SetSolidConcentration sets solid class idx (1-based; idx==0 is rejected,
// it is derived) in layer k and reconciles the class-0 sum. Only the Stack
// Mutator and State Advancer call this.
func (s *Stack) SetSolidConcentration(k, idx int, v float64) error {
	l, ok := s.Layer(k)
	if !ok {
		return newErr("Stack.SetSolidConcentration", ConfigInvalid, 0, fmt.Errorf("layer %d absent", k))
	}
	if idx <= 0 || idx >= len(l.CSed) {
		return newErr("Stack.SetSolidConcentration", ConfigInvalid, 0, fmt.Errorf("solid index %d out of range", idx))
	}
	l.CSed[idx] = v
	s.reconcileSolidSum(l)
	return nil
}

// SetChemConcentration sets chemical idx's concentration in layer k. Only
// the Stack Mutator and State Advancer call this.
func (s *Stack) SetChemConcentration(k, idx int, v float64) error {
	l, ok := s.Layer(k)
	if !ok {
		return newErr("Stack.SetChemConcentration", ConfigInvalid, 0, fmt.Errorf("layer %d absent", k))
	}
	if idx < 0 || idx >= len(l.CChem) {
		return newErr("Stack.SetChemConcentration", ConfigInvalid, 0, fmt.Errorf("chemical index %d out of range", idx))
	}
	l.CChem[idx] = v
	return nil
}

// stackWire is the gob wire format for Stack, exporting the otherwise-
// unexported reference table so a restart file preserves the pristine
// per-position geometry Push/Pop restore against.
type stackWire struct {
	MaxStack, NStack, NStack0 int
	Layers                    []Layer
	NumSolids, NumChems       int
	Refs                      []layerRef
}

// GobEncode implements gob.GobEncoder.
func (s *Stack) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	w := stackWire{s.MaxStack, s.NStack, s.NStack0, s.Layers, s.NumSolids, s.NumChems, s.refs}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (s *Stack) GobDecode(data []byte) error {
	var w stackWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	s.MaxStack, s.NStack, s.NStack0 = w.MaxStack, w.NStack, w.NStack0
	s.Layers, s.NumSolids, s.NumChems, s.refs = w.Layers, w.NumSolids, w.NumChems, w.Refs
	return nil
}

// reconcileSolidSum recomputes CSed[0], the invariant enforced after every
// solids update (spec.md §3 invariants).
func (s *Stack) reconcileSolidSum(l *Layer) {
	l.CSed[0] = floats.Sum(l.CSed[1:])
}
