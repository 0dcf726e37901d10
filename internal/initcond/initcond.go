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

// Package initcond reads the initial-condition file that seeds every
// overland cell's and channel node's Stack before the simulation loop
// starts (spec.md §3, "pristine initial stack height").
package initcond

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/watershedmodels/trex"
)

// Record is one line of the initial-condition file: one layer at one
// location. Row/Col identify an overland cell; Link/Node identify a
// channel node, with the unused pair left at -1.
type Record struct {
	Row, Col   int
	Link, Node int
	Layer      int // 0-based, deepest first

	Volume, Thickness, Area, Elevation float64
	MinVolumeTrigger, MaxVolumeTrigger float64
	SoilType                          int

	CSed  []float64 // index 1..NumSolids
	CChem []float64 // index 0..NumChems-1
}

// Read parses whitespace-delimited initial-condition records from r. The
// expected column order is:
//
//	row col link node layer volume thickness area elevation
//	min_trigger max_trigger soil_type csed... cchem...
//
// A location is overland if link<0, channel if row<0.
func Read(r io.Reader, numSolids, numChems int) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var out []Record
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		want := 12 + numSolids + numChems
		if len(fields) != want {
			return nil, fmt.Errorf("initcond.Read: line %d: got %d fields, want %d", lineNo, len(fields), want)
		}
		rec := Record{CSed: make([]float64, numSolids+1), CChem: make([]float64, numChems)}
		ints := make([]int, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("initcond.Read: line %d: field %d: %v", lineNo, i, err)
			}
			ints[i] = v
		}
		rec.Row, rec.Col, rec.Link, rec.Node, rec.Layer = ints[0], ints[1], ints[2], ints[3], ints[4]

		floatsFields := []*float64{&rec.Volume, &rec.Thickness, &rec.Area, &rec.Elevation, &rec.MinVolumeTrigger, &rec.MaxVolumeTrigger}
		for i, dst := range floatsFields {
			v, err := strconv.ParseFloat(fields[5+i], 64)
			if err != nil {
				return nil, fmt.Errorf("initcond.Read: line %d: field %d: %v", lineNo, 5+i, err)
			}
			*dst = v
		}
		soilType, err := strconv.Atoi(fields[11])
		if err != nil {
			return nil, fmt.Errorf("initcond.Read: line %d: soil_type: %v", lineNo, err)
		}
		rec.SoilType = soilType

		off := 12
		for s := 1; s <= numSolids; s++ {
			v, err := strconv.ParseFloat(fields[off], 64)
			if err != nil {
				return nil, fmt.Errorf("initcond.Read: line %d: csed[%d]: %v", lineNo, s, err)
			}
			rec.CSed[s] = v
			off++
		}
		for c := 0; c < numChems; c++ {
			v, err := strconv.ParseFloat(fields[off], 64)
			if err != nil {
				return nil, fmt.Errorf("initcond.Read: line %d: cchem[%d]: %v", lineNo, c, err)
			}
			rec.CChem[c] = v
			off++
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("initcond.Read: %v", err)
	}
	return out, nil
}

// toLayer converts a Record into the Stack layer it seeds, reconciling
// the solid-class-0 sum the way every other CSed writer does.
func toLayer(rec Record) trex.Layer {
	sum := 0.0
	for i := 1; i < len(rec.CSed); i++ {
		sum += rec.CSed[i]
	}
	csed := make([]float64, len(rec.CSed))
	copy(csed, rec.CSed)
	csed[0] = sum
	cchem := make([]float64, len(rec.CChem))
	copy(cchem, rec.CChem)

	return trex.Layer{
		Volume: rec.Volume, NewVolume: rec.Volume, Thickness: rec.Thickness, Area: rec.Area,
		Elevation: rec.Elevation, MinVolumeTrigger: rec.MinVolumeTrigger, MaxVolumeTrigger: rec.MaxVolumeTrigger,
		SoilType: rec.SoilType, CSed: csed, CChem: cchem,
	}
}

// Seed groups records by location and calls Stack.Seed on every overland
// cell and channel node stack in store, in layer order.
func Seed(store *trex.Store, records []Record) error {
	type key struct{ row, col, link, node int }
	byLoc := map[key][]Record{}
	for _, rec := range records {
		k := key{rec.Row, rec.Col, rec.Link, rec.Node}
		byLoc[k] = append(byLoc[k], rec)
	}
	for k, recs := range byLoc {
		sortByLayer(recs)
		layers := make([]trex.Layer, len(recs))
		for i, rec := range recs {
			layers[i] = toLayer(rec)
		}
		var stack *trex.Stack
		var ok bool
		if k.link >= 0 {
			stack, ok = store.NodeStack(k.link, k.node)
		} else {
			stack, ok = store.CellStack(k.row, k.col)
		}
		if !ok {
			return fmt.Errorf("initcond.Seed: location row=%d col=%d link=%d node=%d is not in the domain",
				k.row, k.col, k.link, k.node)
		}
		if err := stack.Seed(layers); err != nil {
			return err
		}
	}
	return nil
}

func sortByLayer(recs []Record) {
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && recs[j].Layer < recs[j-1].Layer; j-- {
			recs[j], recs[j-1] = recs[j-1], recs[j]
		}
	}
}
