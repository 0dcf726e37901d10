package trex

import (
	"bytes"
	"encoding/gob"
	"testing"
)

func testGridConfig() GridConfig {
	return GridConfig{NRows: 3, NCols: 4, CellSize: 10, XllCorner: 100, YllCorner: 200, NoData: -9999}
}

func TestGridBounds(t *testing.T) {
	cfg := testGridConfig()
	b := cfg.Bounds()
	if b.Min.X != 100 || b.Min.Y != 200 {
		t.Errorf("Min = (%g,%g), want (100,200)", b.Min.X, b.Min.Y)
	}
	if b.Max.X != 100+10*4 || b.Max.Y != 200+10*3 {
		t.Errorf("Max = (%g,%g), want (%g,%g)", b.Max.X, b.Max.Y, 100+10*4.0, 200+10*3.0)
	}
}

func TestGridInDomain(t *testing.T) {
	g := NewGrid(testGridConfig())
	cases := []struct {
		row, col int
		want     bool
	}{
		{0, 0, true}, {2, 3, true}, {-1, 0, false}, {0, -1, false}, {3, 0, false}, {0, 4, false},
	}
	for _, c := range cases {
		if got := g.InDomain(c.row, c.col); got != c.want {
			t.Errorf("InDomain(%d,%d) = %v, want %v", c.row, c.col, got, c.want)
		}
	}
}

func TestGridMaskOutOfBoundsIsOutside(t *testing.T) {
	g := NewGrid(testGridConfig())
	if m := g.Mask(-1, 0); m != Outside {
		t.Errorf("Mask out of bounds = %v, want Outside", m)
	}
}

func TestGridSetMaskRejectsOutOfBounds(t *testing.T) {
	g := NewGrid(testGridConfig())
	if err := g.SetMask(10, 10, OverlandOnly); err == nil {
		t.Error("expected an error setting mask outside the domain")
	}
}

func TestGridSetMaskAndReadBack(t *testing.T) {
	g := NewGrid(testGridConfig())
	if err := g.SetMask(1, 2, OverlandOnly); err != nil {
		t.Fatal(err)
	}
	if m := g.Mask(1, 2); m != OverlandOnly {
		t.Errorf("Mask(1,2) = %v, want OverlandOnly", m)
	}
	if m := g.Mask(0, 0); m != Outside {
		t.Errorf("unset cell Mask(0,0) = %v, want Outside", m)
	}
}

func TestGridLinkChannelRequiresOverlandChannelMask(t *testing.T) {
	g := NewGrid(testGridConfig())
	if err := g.LinkChannel(0, 0, 1, 1); err == nil {
		t.Error("expected an error linking a channel on a non-OVERLAND+CHANNEL cell")
	}
	if err := g.SetMask(0, 0, OverlandChannel); err != nil {
		t.Fatal(err)
	}
	if err := g.LinkChannel(0, 0, 1, 1); err != nil {
		t.Errorf("LinkChannel should succeed on an OVERLAND+CHANNEL cell: %v", err)
	}
}

func TestGridChannelAtAndCellAtRoundTrip(t *testing.T) {
	g := NewGrid(testGridConfig())
	if err := g.SetMask(1, 2, OverlandChannel); err != nil {
		t.Fatal(err)
	}
	if err := g.LinkChannel(1, 2, 5, 7); err != nil {
		t.Fatal(err)
	}
	ln, ok := g.ChannelAt(1, 2)
	if !ok || ln.Link != 5 || ln.Node != 7 {
		t.Errorf("ChannelAt(1,2) = %+v, %v, want {5 7}, true", ln, ok)
	}
	row, col, ok := g.CellAt(LinkNode{Link: 5, Node: 7})
	if !ok || row != 1 || col != 2 {
		t.Errorf("CellAt = (%d,%d,%v), want (1,2,true)", row, col, ok)
	}
	if _, _, ok := g.CellAt(LinkNode{Link: 99, Node: 99}); ok {
		t.Error("CellAt should report not-ok for an unlinked node")
	}
}

func TestGridNumOverlandCells(t *testing.T) {
	g := NewGrid(testGridConfig())
	if n := g.NumOverlandCells(); n != 0 {
		t.Errorf("NumOverlandCells on a fresh grid = %d, want 0", n)
	}
	g.SetMask(0, 0, OverlandOnly)
	g.SetMask(1, 1, OverlandChannel)
	if n := g.NumOverlandCells(); n != 2 {
		t.Errorf("NumOverlandCells = %d, want 2", n)
	}
}

func TestGridGobRoundTripPreservesUnexportedState(t *testing.T) {
	g := NewGrid(testGridConfig())
	if err := g.SetMask(1, 2, OverlandChannel); err != nil {
		t.Fatal(err)
	}
	if err := g.LinkChannel(1, 2, 3, 4); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded Grid
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Config != g.Config {
		t.Errorf("Config did not round-trip: got %+v, want %+v", decoded.Config, g.Config)
	}
	if m := decoded.Mask(1, 2); m != OverlandChannel {
		t.Errorf("mask did not round-trip: Mask(1,2) = %v, want OverlandChannel", m)
	}
	ln, ok := decoded.ChannelAt(1, 2)
	if !ok || ln.Link != 3 || ln.Node != 4 {
		t.Errorf("cellToNode did not round-trip: ChannelAt(1,2) = %+v, %v", ln, ok)
	}
	row, col, ok := decoded.CellAt(LinkNode{Link: 3, Node: 4})
	if !ok || row != 1 || col != 2 {
		t.Errorf("nodeToCell did not round-trip: CellAt = (%d,%d,%v)", row, col, ok)
	}
}
