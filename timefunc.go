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
	"fmt"
	"math"
)

// TimeSeries is a piecewise-linear, cyclically extended time function:
// (t_i, v_i) pairs sorted ascending, with the last t_i taken as the
// period. A stateful cursor ip tracks the current bracket so repeated
// queries at increasing t cost O(1) amortized rather than a fresh search.
type TimeSeries struct {
	Times  []float64
	Values []float64

	EndTime float64 // the period; equal to the last element of Times

	ip     int     // cursor: mtime lies in [Times[ip], Times[ip+1])
	m, b   float64 // current slope and intercept
	pt, nt float64 // current window, in absolute (uncycled) time
}

// NewTimeSeries validates and constructs a TimeSeries. It requires at
// least two points and strictly increasing times.
func NewTimeSeries(times, values []float64) (*TimeSeries, error) {
	if len(times) < 2 {
		return nil, newErr("NewTimeSeries", ConfigInvalid, 0,
			fmt.Errorf("series has %d points, need at least 2", len(times)))
	}
	if len(times) != len(values) {
		return nil, newErr("NewTimeSeries", ConfigInvalid, 0,
			fmt.Errorf("%d times but %d values", len(times), len(values)))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, newErr("NewTimeSeries", ConfigInvalid, 0,
				fmt.Errorf("times not strictly increasing at index %d (%g <= %g)", i, times[i], times[i-1]))
		}
	}
	ts := &TimeSeries{Times: times, Values: values, EndTime: times[len(times)-1]}
	ts.recompute(0)
	return ts, nil
}

// search walks the cursor up or down until mtime lies in
// [Times[ip], Times[ip+1]).
func (ts *TimeSeries) search(mtime float64) {
	n := len(ts.Times)
	for ts.ip < n-2 && mtime >= ts.Times[ts.ip+1] {
		ts.ip++
	}
	for ts.ip > 0 && mtime < ts.Times[ts.ip] {
		ts.ip--
	}
}

// recompute re-derives the bracket, slope, intercept, and window for
// query time t. ncycle and mtime implement the cyclic extension.
func (ts *TimeSeries) recompute(t float64) {
	ncycle := math.Floor(t / ts.EndTime)
	mtime := t - ncycle*ts.EndTime
	ts.search(mtime)
	i := ts.ip
	ts.m = (ts.Values[i] - ts.Values[i+1]) / (ts.Times[i] - ts.Times[i+1])
	ts.b = ts.Values[i+1]
	ts.pt = ncycle*ts.EndTime + ts.Times[i]
	ts.nt = ncycle*ts.EndTime + ts.Times[i+1]
}

// Value evaluates the series at t using the current slope/intercept,
// without moving the cursor. Callers advance the cursor via a
// TimeFunctionGroup before calling Value for the same t.
func (ts *TimeSeries) Value(t float64) float64 {
	return ts.m*(t-ts.nt) + ts.b
}

// TimeFunctionGroup is a set of series sharing one location (a cell, a
// node, or a global control) that are gated together: the bracket search
// is skipped for every series in the group until simulation time crosses
// the earliest next-window time among them, next_any.
type TimeFunctionGroup struct {
	Series []*TimeSeries

	nextAny float64
	started bool
}

// NewTimeFunctionGroup groups series for shared gating. The first call to
// Advance always performs a full search, regardless of t.
func NewTimeFunctionGroup(series ...*TimeSeries) *TimeFunctionGroup {
	return &TimeFunctionGroup{Series: series}
}

// Advance re-searches every series in the group if t has crossed
// next_any, and updates next_any to the new minimum. It must be called
// once per step before Value is queried for that step's t.
func (g *TimeFunctionGroup) Advance(t float64) {
	if g.started && t < g.nextAny {
		return
	}
	min := math.Inf(1)
	for _, ts := range g.Series {
		ts.recompute(t)
		if ts.nt < min {
			min = ts.nt
		}
	}
	g.nextAny = min
	g.started = true
}

// Value evaluates series i at t. Advance must have been called for this
// step first.
func (g *TimeFunctionGroup) Value(i int, t float64) (float64, bool) {
	if i < 0 || i >= len(g.Series) {
		return 0, false
	}
	return g.Series[i].Value(t), true
}
