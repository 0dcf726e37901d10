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

// GeneralProperty is a per-cell, single-layer environmental scalar
// (spec.md §4.C, "general" table).
type GeneralProperty int

const (
	PropWindSpeed GeneralProperty = iota + 1
	PropAirTemp
	PropSolarRadiation
	PropCloudCover
	PropAlbedo
)

// LayerProperty is a per-cell (or per-node), per-layer environmental
// scalar, evaluated at the water column (layer 0) and at every
// soil/sediment layer.
type LayerProperty int

const (
	PropDOC LayerProperty = iota + 1
	PropDOCBindingFraction
	PropHardness
	PropPH
	PropTemperature
	PropOxidant
	PropBacteria
	PropLightExtinction // water column layer only
	PropUserDefined
)

// field is a per-cell scalar carried as the product of a spatial constant
// and an interpolated time function; tfid == 0 means the constant applies
// directly with no time function.
type field struct {
	constant []float64
	tfid     []int
	series   []*TimeSeries
	group    *TimeFunctionGroup
}

func newField(n int) *field {
	return &field{constant: make([]float64, n), tfid: make([]int, n), series: make([]*TimeSeries, n)}
}

func (f *field) set(idx int, constant float64, tfid int, ts *TimeSeries) {
	f.constant[idx] = constant
	f.tfid[idx] = tfid
	f.series[idx] = ts
}

// build collects every non-nil series into one TimeFunctionGroup. Called
// once after every cell's constant/tfid/series triple has been set.
func (f *field) build() {
	var active []*TimeSeries
	for _, s := range f.series {
		if s != nil {
			active = append(active, s)
		}
	}
	f.group = NewTimeFunctionGroup(active...)
}

func (f *field) advance(t float64) {
	if f.group != nil {
		f.group.Advance(t)
	}
}

func (f *field) value(idx int, t float64) float64 {
	if f.tfid[idx] == 0 || f.series[idx] == nil {
		return f.constant[idx]
	}
	return f.constant[idx] * f.series[idx].Value(t)
}

// layerKey locates one (cell, layer) pair.
type layerKey struct{ Row, Col, Layer int }

// nodeLayerKey locates one (channel node, layer) pair.
type nodeLayerKey struct{ Link, Node, Layer int }

// layerField is the per-layer analog of field, carrying independent
// overland and channel-node tables since the two meshes are indexed
// differently.
type layerField struct {
	overland map[layerKey]*layerEntry
	node     map[nodeLayerKey]*layerEntry
	group    *TimeFunctionGroup
}

type layerEntry struct {
	constant float64
	tfid     int
	series   *TimeSeries
}

func newLayerField() *layerField {
	return &layerField{overland: map[layerKey]*layerEntry{}, node: map[nodeLayerKey]*layerEntry{}}
}

func (f *layerField) setOverland(row, col, layer int, constant float64, tfid int, ts *TimeSeries) {
	f.overland[layerKey{row, col, layer}] = &layerEntry{constant, tfid, ts}
}

func (f *layerField) setNode(link, node, layer int, constant float64, tfid int, ts *TimeSeries) {
	f.node[nodeLayerKey{link, node, layer}] = &layerEntry{constant, tfid, ts}
}

func (f *layerField) build() {
	var active []*TimeSeries
	for _, e := range f.overland {
		if e.series != nil {
			active = append(active, e.series)
		}
	}
	for _, e := range f.node {
		if e.series != nil {
			active = append(active, e.series)
		}
	}
	f.group = NewTimeFunctionGroup(active...)
}

func (f *layerField) advance(t float64) {
	if f.group != nil {
		f.group.Advance(t)
	}
}

func (f *layerField) valueOverland(row, col, layer int, t float64) (float64, bool) {
	e, ok := f.overland[layerKey{row, col, layer}]
	if !ok {
		return 0, false
	}
	if e.tfid == 0 || e.series == nil {
		return e.constant, true
	}
	return e.constant * e.series.Value(t), true
}

func (f *layerField) valueNode(link, node, layer int, t float64) (float64, bool) {
	e, ok := f.node[nodeLayerKey{link, node, layer}]
	if !ok {
		return 0, false
	}
	if e.tfid == 0 || e.series == nil {
		return e.constant, true
	}
	return e.constant * e.series.Value(t), true
}

// Environment composes the environmental scalar fields consumed by the
// partitioning and reaction kernels, as the product of a spatial constant
// and an interpolated time function (spec.md §4.C).
type Environment struct {
	Grid *Grid

	// CellElevation is ground elevation per row-major cell, used by the
	// air temperature lapse.
	CellElevation []float64
	LapseRate     float64 // deg C per m, Gamma
	RefElevation  float64 // z_ref

	general map[GeneralProperty]*field
	layer   map[LayerProperty]*layerField
	solidOC map[int]*layerField // keyed by solid class index

	// MeteorologyTick is the simulation-time interval (s) between calls
	// to ComputeSolarRadiation, when non-nil. Zero disables the hook.
	MeteorologyTick       float64
	nextMetTick           float64
	ComputeSolarRadiation func(t float64, env *Environment)
}

// NewEnvironment allocates an Environment for a grid with nrows*ncols
// cells.
func NewEnvironment(grid *Grid) *Environment {
	n := grid.Config.NRows * grid.Config.NCols
	env := &Environment{
		Grid:          grid,
		CellElevation: make([]float64, n),
		general:       map[GeneralProperty]*field{},
		layer:         map[LayerProperty]*layerField{},
		solidOC:       map[int]*layerField{},
	}
	for _, p := range []GeneralProperty{PropWindSpeed, PropAirTemp, PropSolarRadiation, PropCloudCover, PropAlbedo} {
		env.general[p] = newField(n)
	}
	for _, p := range []LayerProperty{PropDOC, PropDOCBindingFraction, PropHardness, PropPH, PropTemperature,
		PropOxidant, PropBacteria, PropLightExtinction, PropUserDefined} {
		env.layer[p] = newLayerField()
	}
	return env
}

// SetGeneral sets the spatial constant and (optional) time function for
// property p at (row, col).
func (env *Environment) SetGeneral(p GeneralProperty, row, col int, constant float64, tfid int, ts *TimeSeries) {
	env.general[p].set(env.Grid.Config.cellIndex(row, col), constant, tfid, ts)
}

// SetLayer sets the spatial constant and (optional) time function for an
// overland property at (row, col, layer). layer == 0 is the water column.
func (env *Environment) SetLayer(p LayerProperty, row, col, layer int, constant float64, tfid int, ts *TimeSeries) {
	env.layer[p].setOverland(row, col, layer, constant, tfid, ts)
}

// SetLayerNode is the channel-node analog of SetLayer.
func (env *Environment) SetLayerNode(p LayerProperty, link, node, layer int, constant float64, tfid int, ts *TimeSeries) {
	env.layer[p].setNode(link, node, layer, constant, tfid, ts)
}

// SetSolidOC sets the particulate organic-carbon fraction constant and
// (optional) time function for solid class s at (row, col, layer).
func (env *Environment) SetSolidOC(s, row, col, layer int, constant float64, tfid int, ts *TimeSeries) {
	f, ok := env.solidOC[s]
	if !ok {
		f = newLayerField()
		env.solidOC[s] = f
	}
	f.setOverland(row, col, layer, constant, tfid, ts)
}

// SetSolidOCNode is the channel-node analog of SetSolidOC.
func (env *Environment) SetSolidOCNode(s, link, node, layer int, constant float64, tfid int, ts *TimeSeries) {
	f, ok := env.solidOC[s]
	if !ok {
		f = newLayerField()
		env.solidOC[s] = f
	}
	f.setNode(link, node, layer, constant, tfid, ts)
}

// Build groups every registered series for the gated-advance protocol.
// Call once after all Set* calls at initialization.
func (env *Environment) Build() {
	for _, f := range env.general {
		f.build()
	}
	for _, f := range env.layer {
		f.build()
	}
	for _, f := range env.solidOC {
		f.build()
	}
}

// Advance performs the gated time-function search (spec.md §4.B step 2)
// for every registered field, then runs the meteorology hook if due.
// Call once per step, before querying any Field/FieldLayer value.
func (env *Environment) Advance(t float64) {
	for _, f := range env.general {
		f.advance(t)
	}
	for _, f := range env.layer {
		f.advance(t)
	}
	for _, f := range env.solidOC {
		f.advance(t)
	}
	if env.ComputeSolarRadiation != nil && env.MeteorologyTick > 0 && t >= env.nextMetTick {
		env.ComputeSolarRadiation(t, env)
		env.nextMetTick = t + env.MeteorologyTick
	}
}

// Field evaluates a general property at (row, col, t). Air temperature is
// lapsed by elevation relative to RefElevation.
func (env *Environment) Field(p GeneralProperty, row, col int, t float64) float64 {
	idx := env.Grid.Config.cellIndex(row, col)
	v := env.general[p].value(idx, t)
	if p == PropAirTemp {
		v -= env.LapseRate * (env.CellElevation[idx] - env.RefElevation)
	}
	return v
}

// FieldLayer evaluates an overland layer property at (row, col, layer, t).
func (env *Environment) FieldLayer(p LayerProperty, row, col, layer int, t float64) (float64, bool) {
	return env.layer[p].valueOverland(row, col, layer, t)
}

// FieldLayerNode evaluates a channel-node layer property.
func (env *Environment) FieldLayerNode(p LayerProperty, link, node, layer int, t float64) (float64, bool) {
	return env.layer[p].valueNode(link, node, layer, t)
}

// ParticulateOC evaluates the particulate organic-carbon fraction of
// solid class s at (row, col, layer, t).
func (env *Environment) ParticulateOC(s, row, col, layer int, t float64) (float64, bool) {
	f, ok := env.solidOC[s]
	if !ok {
		return 0, false
	}
	return f.valueOverland(row, col, layer, t)
}

// ParticulateOCNode is the channel-node analog of ParticulateOC.
func (env *Environment) ParticulateOCNode(s, link, node, layer int, t float64) (float64, bool) {
	f, ok := env.solidOC[s]
	if !ok {
		return 0, false
	}
	return f.valueNode(link, node, layer, t)
}
