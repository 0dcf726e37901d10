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
)

// ChannelLink is the ordered sequence of nodes making up one link of the
// 1-D channel network (spec.md §3).
type ChannelLink struct {
	Nodes []ChannelNode
}

// ChannelNode carries the channel geometry at one node and its reverse
// index into the overland grid.
type ChannelNode struct {
	BottomWidth float64 // m
	BankHeight  float64 // m, overland_elevation - channel_elevation
	SideSlope   float64 // 0.5*(top_width-bottom_width)/bank_height
	Length      float64 // m, including sinuosity
	TopWidth    float64 // m

	Row, Col int // reverse index to the overland cell
}

// WaterColumn is the water overlying an overland cell or channel node:
// the compartment spec.md §4.C calls "layer 0", distinct from the
// soil/sediment Stack beneath it.
type WaterColumn struct {
	Depth float64 // m
	Area  float64 // m2, free surface area

	CSed  []float64 // g/m3, suspended solids; index 0 == sum
	CChem []float64 // g/m3
}

func newWaterColumn(numSolids, numChems int) WaterColumn {
	return WaterColumn{CSed: make([]float64, numSolids+1), CChem: make([]float64, numChems)}
}

// Volume returns the water column's volume, depth times area.
func (w *WaterColumn) Volume() float64 { return w.Depth * w.Area }

// Store is the Grid & Stack Store: the sole owner of the domain mask, the
// channel network geometry, the water column state, and every per-cell
// and per-node layered stack. Every other component receives references
// or indices into Store, never copies of its arrays.
type Store struct {
	Grid *Grid

	NumSolids, NumChems int

	// overland holds one Stack per row-major cell; cells with
	// Grid.Mask == Outside hold a zero-value (absent) Stack.
	overland      []Stack
	overlandWater []WaterColumn

	// Links holds the channel network in link order; channel[i][j]
	// mirrors Links[i].Nodes[j] one-to-one, index for index.
	Links        []ChannelLink
	channel      [][]Stack
	channelWater [][]WaterColumn
}

// NewStore allocates a Store with every overland cell's stack sized to
// maxStackOverland and every channel node's stack sized to
// maxStackChannel. linkNodeCounts[i] is the node count of link i.
func NewStore(grid *Grid, numSolids, numChems, maxStackOverland int, linkNodeCounts []int, maxStackChannel int) *Store {
	st := &Store{
		Grid:          grid,
		NumSolids:     numSolids,
		NumChems:      numChems,
		overland:      make([]Stack, grid.Config.NRows*grid.Config.NCols),
		overlandWater: make([]WaterColumn, grid.Config.NRows*grid.Config.NCols),
		Links:         make([]ChannelLink, len(linkNodeCounts)),
		channel:       make([][]Stack, len(linkNodeCounts)),
		channelWater:  make([][]WaterColumn, len(linkNodeCounts)),
	}
	for i := range st.overland {
		st.overland[i] = NewStack(maxStackOverland, numSolids, numChems)
		st.overlandWater[i] = newWaterColumn(numSolids, numChems)
	}
	for i, n := range linkNodeCounts {
		st.Links[i].Nodes = make([]ChannelNode, n)
		st.channel[i] = make([]Stack, n)
		st.channelWater[i] = make([]WaterColumn, n)
		for j := range st.channel[i] {
			st.channel[i][j] = NewStack(maxStackChannel, numSolids, numChems)
			st.channelWater[i][j] = newWaterColumn(numSolids, numChems)
		}
	}
	return st
}

// storeWire is the gob wire format for Store, exporting its otherwise-
// unexported per-cell and per-node state so a restart file round-trips
// the full stack and water column contents, not just the geometry.
type storeWire struct {
	Grid                *Grid
	NumSolids, NumChems int
	Overland            []Stack
	OverlandWater       []WaterColumn
	Links               []ChannelLink
	Channel             [][]Stack
	ChannelWater        [][]WaterColumn
}

// GobEncode implements gob.GobEncoder.
func (st *Store) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	w := storeWire{
		Grid: st.Grid, NumSolids: st.NumSolids, NumChems: st.NumChems,
		Overland: st.overland, OverlandWater: st.overlandWater,
		Links: st.Links, Channel: st.channel, ChannelWater: st.channelWater,
	}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (st *Store) GobDecode(data []byte) error {
	var w storeWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	st.Grid, st.NumSolids, st.NumChems = w.Grid, w.NumSolids, w.NumChems
	st.overland, st.overlandWater = w.Overland, w.OverlandWater
	st.Links, st.channel, st.channelWater = w.Links, w.Channel, w.ChannelWater
	return nil
}

// CellWater returns the water column resident at (row, col), or nil and
// false if the cell is out of domain or masked Outside.
func (st *Store) CellWater(row, col int) (*WaterColumn, bool) {
	if st.Grid.Mask(row, col) == Outside {
		return nil, false
	}
	return &st.overlandWater[st.Grid.Config.cellIndex(row, col)], true
}

// NodeWater returns the water column resident at channel node
// (link, node), or nil and false if the index is out of range.
func (st *Store) NodeWater(link, node int) (*WaterColumn, bool) {
	if link < 0 || link >= len(st.channelWater) || node < 0 || node >= len(st.channelWater[link]) {
		return nil, false
	}
	return &st.channelWater[link][node], true
}

// CellStack returns the stack resident at (row, col), or nil and false if
// the cell is out of domain or masked Outside.
func (st *Store) CellStack(row, col int) (*Stack, bool) {
	if st.Grid.Mask(row, col) == Outside {
		return nil, false
	}
	return &st.overland[st.Grid.Config.cellIndex(row, col)], true
}

// NodeStack returns the stack resident at channel node (link, node), or
// nil and false if the index is out of range.
func (st *Store) NodeStack(link, node int) (*Stack, bool) {
	if link < 0 || link >= len(st.channel) || node < 0 || node >= len(st.channel[link]) {
		return nil, false
	}
	return &st.channel[link][node], true
}

// Node returns the channel geometry record at (link, node).
func (st *Store) Node(link, node int) (*ChannelNode, bool) {
	if link < 0 || link >= len(st.Links) || node < 0 || node >= len(st.Links[link].Nodes) {
		return nil, false
	}
	return &st.Links[link].Nodes[node], true
}

// Validate runs the one-time channel geometry consistency pass that the
// CLI driver performs at initialization (original_source Grid-r2.c): every node's bank height
// must be strictly positive and every node's reverse index must land on
// an OVERLAND+CHANNEL cell.
func (st *Store) Validate() error {
	for i, link := range st.Links {
		for j, n := range link.Nodes {
			if n.BankHeight <= 0 {
				return newErr("Store.Validate", GeometryInvalid, 0,
					fmt.Errorf("link %d node %d: bank height %g is not positive", i, j, n.BankHeight)).withLinkNode(i, j)
			}
			if st.Grid.Mask(n.Row, n.Col) != OverlandChannel {
				return newErr("Store.Validate", ConfigInvalid, 0,
					fmt.Errorf("link %d node %d: reverse index (%d,%d) is not marked OVERLAND+CHANNEL", i, j, n.Row, n.Col)).withLinkNode(i, j)
			}
		}
	}
	return nil
}

// withLinkNode is a small fluent helper for attaching link/node location
// to a freshly built SimError, mirroring newErr's row/col convention.
func (e *SimError) withLinkNode(link, node int) *SimError {
	e.Link, e.Node = link, node
	return e
}
