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

	"github.com/ctessum/geom"
)

// MaskValue labels one grid cell's role in the domain.
type MaskValue int

const (
	// Outside marks a nodata cell, not part of the simulated domain.
	Outside MaskValue = iota
	// OverlandOnly marks a cell simulated by the overland plane alone.
	OverlandOnly
	// OverlandChannel marks a cell that also hosts a channel network node.
	OverlandChannel
)

// GridConfig describes the raster geometry, following the ESRI-ASCII
// header convention (spec.md §6).
type GridConfig struct {
	NRows, NCols         int
	CellSize             float64 // m, square cells
	XllCorner, YllCorner float64
	NoData               float64
}

// Bounds returns the geo-anchored extent of the grid, mirroring
// VarGridConfig.bounds() in the teacher.
func (g *GridConfig) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.XllCorner, Y: g.YllCorner},
		Max: geom.Point{
			X: g.XllCorner + g.CellSize*float64(g.NCols),
			Y: g.YllCorner + g.CellSize*float64(g.NRows),
		},
	}
}

// cellIndex converts row/col into the row-major index used by Grid.Mask
// and by the Grid & Stack Store.
func (g *GridConfig) cellIndex(row, col int) int { return row*g.NCols + col }

// Grid owns the 2-D domain mask and the reverse index between
// OVERLAND+CHANNEL cells and their (link, node) channel position.
// Per the cyclic-structure design note, overland->channel and
// channel->overland references are modeled as two independent index
// maps, never as reciprocal pointers.
type Grid struct {
	Config GridConfig
	mask   []MaskValue // row-major, len == NRows*NCols

	// cellToNode maps a row-major cell index to the channel (link, node)
	// resident in it, for OVERLAND+CHANNEL cells only.
	cellToNode map[int]LinkNode
	// nodeToCell maps a channel (link, node) to its row-major cell index.
	nodeToCell map[LinkNode]int
}

// LinkNode identifies a channel network node.
type LinkNode struct {
	Link, Node int
}

// NewGrid allocates a Grid with every cell initialized Outside.
func NewGrid(cfg GridConfig) *Grid {
	return &Grid{
		Config:     cfg,
		mask:       make([]MaskValue, cfg.NRows*cfg.NCols),
		cellToNode: make(map[int]LinkNode),
		nodeToCell: make(map[LinkNode]int),
	}
}

// InDomain reports whether (row, col) is within the grid bounds.
func (g *Grid) InDomain(row, col int) bool {
	return row >= 0 && row < g.Config.NRows && col >= 0 && col < g.Config.NCols
}

// Mask returns the mask value at (row, col), or Outside if out of bounds.
func (g *Grid) Mask(row, col int) MaskValue {
	if !g.InDomain(row, col) {
		return Outside
	}
	return g.mask[g.Config.cellIndex(row, col)]
}

// SetMask sets the mask value at (row, col). Used only during
// initialization.
func (g *Grid) SetMask(row, col int, v MaskValue) error {
	if !g.InDomain(row, col) {
		return newErr("Grid.SetMask", ConfigInvalid, 0,
			fmt.Errorf("cell (%d,%d) is outside the %dx%d domain", row, col, g.Config.NRows, g.Config.NCols))
	}
	g.mask[g.Config.cellIndex(row, col)] = v
	return nil
}

// LinkChannel records the reverse index between an OVERLAND+CHANNEL cell
// and its channel (link, node) position. Both maps are updated so either
// direction can be looked up in O(1).
func (g *Grid) LinkChannel(row, col, link, node int) error {
	if g.Mask(row, col) != OverlandChannel {
		return newErr("Grid.LinkChannel", ConfigInvalid, 0,
			fmt.Errorf("cell (%d,%d) is not marked OVERLAND+CHANNEL", row, col))
	}
	ln := LinkNode{Link: link, Node: node}
	g.cellToNode[g.Config.cellIndex(row, col)] = ln
	g.nodeToCell[ln] = g.Config.cellIndex(row, col)
	return nil
}

// ChannelAt returns the (link, node) resident in (row, col), if any.
func (g *Grid) ChannelAt(row, col int) (LinkNode, bool) {
	ln, ok := g.cellToNode[g.Config.cellIndex(row, col)]
	return ln, ok
}

// CellAt returns the row-major cell index hosting channel node ln, if any.
func (g *Grid) CellAt(ln LinkNode) (row, col int, ok bool) {
	idx, ok := g.nodeToCell[ln]
	if !ok {
		return 0, 0, false
	}
	return idx / g.Config.NCols, idx % g.Config.NCols, true
}

// gridWire is the gob wire format for Grid, exporting its otherwise-
// unexported fields so a restart file round-trips the mask and channel
// reverse index faithfully.
type gridWire struct {
	Config     GridConfig
	Mask       []MaskValue
	CellToNode map[int]LinkNode
	NodeToCell map[LinkNode]int
}

// GobEncode implements gob.GobEncoder.
func (g *Grid) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	w := gridWire{Config: g.Config, Mask: g.mask, CellToNode: g.cellToNode, NodeToCell: g.nodeToCell}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (g *Grid) GobDecode(data []byte) error {
	var w gridWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	g.Config, g.mask, g.cellToNode, g.nodeToCell = w.Config, w.Mask, w.CellToNode, w.NodeToCell
	return nil
}

// NumOverlandCells returns the number of non-Outside cells in the mask.
func (g *Grid) NumOverlandCells() int {
	n := 0
	for _, m := range g.mask {
		if m != Outside {
			n++
		}
	}
	return n
}
