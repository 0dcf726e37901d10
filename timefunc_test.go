package trex

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewTimeSeriesRejectsTooFewPoints(t *testing.T) {
	if _, err := NewTimeSeries([]float64{0}, []float64{1}); err == nil {
		t.Error("expected error for a series with fewer than 2 points")
	}
}

func TestNewTimeSeriesRejectsMismatchedLengths(t *testing.T) {
	if _, err := NewTimeSeries([]float64{0, 1, 2}, []float64{1, 2}); err == nil {
		t.Error("expected error for mismatched times/values lengths")
	}
}

func TestNewTimeSeriesRejectsNonIncreasingTimes(t *testing.T) {
	if _, err := NewTimeSeries([]float64{0, 2, 1}, []float64{1, 2, 3}); err == nil {
		t.Error("expected error for non-strictly-increasing times")
	}
	if _, err := NewTimeSeries([]float64{0, 1, 1}, []float64{1, 2, 3}); err == nil {
		t.Error("expected error for repeated time values")
	}
}

func TestTimeSeriesValueInterpolatesLinearly(t *testing.T) {
	ts, err := NewTimeSeries([]float64{0, 10, 20}, []float64{0, 100, 0})
	if err != nil {
		t.Fatal(err)
	}
	ts.recompute(5)
	if got := ts.Value(5); !almostEqual(got, 50) {
		t.Errorf("Value(5) = %g, want 50", got)
	}
	ts.recompute(15)
	if got := ts.Value(15); !almostEqual(got, 50) {
		t.Errorf("Value(15) = %g, want 50", got)
	}
}

func TestTimeSeriesValueAtKnotsMatchesInput(t *testing.T) {
	times := []float64{0, 5, 10}
	values := []float64{1, 2, 3}
	ts, err := NewTimeSeries(times, values)
	if err != nil {
		t.Fatal(err)
	}
	for i, tm := range times {
		want := values[i]
		if tm == ts.EndTime {
			// t == EndTime wraps to t = 0 of the next cycle.
			want = values[0]
		}
		ts.recompute(tm)
		if got := ts.Value(tm); !almostEqual(got, want) {
			t.Errorf("Value(%g) = %g, want %g", tm, got, want)
		}
	}
}

func TestTimeSeriesCyclicExtension(t *testing.T) {
	ts, err := NewTimeSeries([]float64{0, 10}, []float64{0, 100})
	if err != nil {
		t.Fatal(err)
	}
	ts.recompute(5)
	first := ts.Value(5)
	ts.recompute(15) // one full period (10) past t=5
	second := ts.Value(15)
	if !almostEqual(first, second) {
		t.Errorf("cyclic extension mismatch: Value(5)=%g Value(15)=%g", first, second)
	}
	ts.recompute(25) // two periods past t=5
	third := ts.Value(25)
	if !almostEqual(first, third) {
		t.Errorf("cyclic extension mismatch across two periods: Value(5)=%g Value(25)=%g", first, third)
	}
}

func TestTimeSeriesSearchCursorMonotonic(t *testing.T) {
	ts, err := NewTimeSeries([]float64{0, 1, 2, 3, 4}, []float64{0, 1, 0, 1, 0})
	if err != nil {
		t.Fatal(err)
	}
	for _, tm := range []float64{0.5, 1.5, 2.5, 3.5} {
		ts.recompute(tm)
		if ts.ip < 0 || ts.ip > len(ts.Times)-2 {
			t.Fatalf("cursor out of bounds at t=%g: ip=%d", tm, ts.ip)
		}
		if tm < ts.Times[ts.ip] || tm >= ts.Times[ts.ip+1] {
			t.Errorf("t=%g not bracketed by [%g, %g)", tm, ts.Times[ts.ip], ts.Times[ts.ip+1])
		}
	}
}

func TestTimeFunctionGroupAdvanceAndValue(t *testing.T) {
	a, err := NewTimeSeries([]float64{0, 10}, []float64{0, 10})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewTimeSeries([]float64{0, 5, 10}, []float64{0, 100, 0})
	if err != nil {
		t.Fatal(err)
	}
	g := NewTimeFunctionGroup(a, b)
	g.Advance(2)
	va, ok := g.Value(0, 2)
	if !ok {
		t.Fatal("Value(0, ...) should be ok for a valid index")
	}
	if !almostEqual(va, 2) {
		t.Errorf("series a Value(2) = %g, want 2", va)
	}
	vb, ok := g.Value(1, 2)
	if !ok {
		t.Fatal("Value(1, ...) should be ok for a valid index")
	}
	if !almostEqual(vb, 40) {
		t.Errorf("series b Value(2) = %g, want 40", vb)
	}
}

func TestTimeFunctionGroupValueOutOfRange(t *testing.T) {
	g := NewTimeFunctionGroup()
	if _, ok := g.Value(0, 0); ok {
		t.Error("Value should report not-ok for an empty group")
	}
	a, _ := NewTimeSeries([]float64{0, 1}, []float64{0, 1})
	g2 := NewTimeFunctionGroup(a)
	if _, ok := g2.Value(5, 0); ok {
		t.Error("Value should report not-ok for an out-of-range index")
	}
	if _, ok := g2.Value(-1, 0); ok {
		t.Error("Value should report not-ok for a negative index")
	}
}

func TestTimeFunctionGroupAdvanceSkipsUntilNextAny(t *testing.T) {
	a, _ := NewTimeSeries([]float64{0, 10, 20}, []float64{0, 1, 0})
	g := NewTimeFunctionGroup(a)
	g.Advance(1)
	ipBefore := a.ip
	g.Advance(2) // still within [0,10), should not re-search
	if a.ip != ipBefore {
		t.Errorf("Advance re-searched before crossing next_any: ip changed from %d to %d", ipBefore, a.ip)
	}
	g.Advance(11) // crosses into [10,20)
	if a.ip == ipBefore {
		t.Error("Advance should have re-searched after crossing next_any")
	}
}
