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

// Package gridio reads and writes ESRI-ASCII raster grids (spec.md §6),
// the on-disk format for the domain mask and every spatially distributed
// constant field. Values are staged through a ctessum/sparse.DenseArray
// the way the teacher's LoadCTMData stages a CTM grid before the caller
// reshapes it into domain-specific state.
package gridio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/watershedmodels/trex"
)

// Header is the six-line ESRI-ASCII header.
type Header struct {
	NCols, NRows         int
	XllCorner, YllCorner float64
	CellSize             float64
	NoData               float64
}

// Read parses an ESRI-ASCII raster from r into a Header and a dense
// row-major array of cell values, following the standard six-keyword
// header (ncols, nrows, xllcorner, yllcorner, cellsize, nodata_value).
func Read(r io.Reader) (Header, *sparse.DenseArray, error) {
	var h Header
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	keys := map[string]*float64{
		"xllcorner": &h.XllCorner, "yllcorner": &h.YllCorner, "cellsize": &h.CellSize, "nodata_value": &h.NoData,
	}
	for i := 0; i < 6; i++ {
		if !sc.Scan() {
			return h, nil, fmt.Errorf("gridio.Read: unexpected end of header at line %d", i+1)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			return h, nil, fmt.Errorf("gridio.Read: malformed header line %q", sc.Text())
		}
		key := strings.ToLower(fields[0])
		switch key {
		case "ncols":
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return h, nil, fmt.Errorf("gridio.Read: ncols: %v", err)
			}
			h.NCols = n
		case "nrows":
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return h, nil, fmt.Errorf("gridio.Read: nrows: %v", err)
			}
			h.NRows = n
		default:
			dst, ok := keys[key]
			if !ok {
				return h, nil, fmt.Errorf("gridio.Read: unrecognized header keyword %q", fields[0])
			}
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return h, nil, fmt.Errorf("gridio.Read: %s: %v", key, err)
			}
			*dst = v
		}
	}

	arr := sparse.ZerosDense(h.NRows, h.NCols)
	row := 0
	for sc.Scan() {
		if row >= h.NRows {
			break
		}
		fields := strings.Fields(sc.Text())
		if len(fields) != h.NCols {
			return h, nil, fmt.Errorf("gridio.Read: row %d has %d values, want %d", row, len(fields), h.NCols)
		}
		for col, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return h, nil, fmt.Errorf("gridio.Read: row %d col %d: %v", row, col, err)
			}
			arr.Set(v, row, col)
		}
		row++
	}
	if err := sc.Err(); err != nil {
		return h, nil, fmt.Errorf("gridio.Read: %v", err)
	}
	if row != h.NRows {
		return h, nil, fmt.Errorf("gridio.Read: got %d data rows, want %d", row, h.NRows)
	}
	return h, arr, nil
}

// Write serializes a dense grid back to ESRI-ASCII.
func Write(w io.Writer, h Header, arr *sparse.DenseArray) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", h.NCols)
	fmt.Fprintf(bw, "nrows %d\n", h.NRows)
	fmt.Fprintf(bw, "xllcorner %g\n", h.XllCorner)
	fmt.Fprintf(bw, "yllcorner %g\n", h.YllCorner)
	fmt.Fprintf(bw, "cellsize %g\n", h.CellSize)
	fmt.Fprintf(bw, "nodata_value %g\n", h.NoData)
	for row := 0; row < h.NRows; row++ {
		for col := 0; col < h.NCols; col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%g", arr.Get(row, col))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ToGridConfig converts a parsed Header into a trex.GridConfig.
func (h Header) ToGridConfig() trex.GridConfig {
	return trex.GridConfig{
		NRows: h.NRows, NCols: h.NCols, CellSize: h.CellSize,
		XllCorner: h.XllCorner, YllCorner: h.YllCorner, NoData: h.NoData,
	}
}

// ToMask builds a Grid from a mask raster: any cell equal to NoData is
// Outside, zero is OverlandOnly, and any other value is OverlandChannel
// (spec.md §6, mask file convention).
func ToMask(h Header, arr *sparse.DenseArray) (*trex.Grid, error) {
	g := trex.NewGrid(h.ToGridConfig())
	for row := 0; row < h.NRows; row++ {
		for col := 0; col < h.NCols; col++ {
			v := arr.Get(row, col)
			var m trex.MaskValue
			switch {
			case v == h.NoData:
				m = trex.Outside
			case v == 0:
				m = trex.OverlandOnly
			default:
				m = trex.OverlandChannel
			}
			if err := g.SetMask(row, col, m); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
