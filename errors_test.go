package trex

import (
	"errors"
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{FileIO, "FILE-IO"},
		{ConfigMismatch, "CONFIG-MISMATCH"},
		{ConfigInvalid, "CONFIG-INVALID"},
		{StackFull, "STACK-FULL"},
		{GeometryInvalid, "GEOMETRY-INVALID"},
		{MassLimitHit, "MASS-LIMIT-HIT"},
		{Kind(99), "UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("Kind(%d).String() = %q, want %q", c.k, got, c.want)
		}
	}
}

func TestKindFatal(t *testing.T) {
	if MassLimitHit.Fatal() {
		t.Error("MassLimitHit should be the sole non-fatal kind")
	}
	for _, k := range []Kind{FileIO, ConfigMismatch, ConfigInvalid, StackFull, GeometryInvalid} {
		if !k.Fatal() {
			t.Errorf("Kind %s should be fatal", k)
		}
	}
}

func TestNewErrDefaultsUnset(t *testing.T) {
	err := newErr("pkg.Func", ConfigInvalid, 12.5, errors.New("boom"))
	if err.Row != -1 || err.Col != -1 || err.Link != -1 || err.Node != -1 || err.Layer != -1 {
		t.Errorf("newErr should default all location fields to -1, got %+v", err)
	}
	if err.Kind != ConfigInvalid || err.Op != "pkg.Func" || err.SimTime != 12.5 {
		t.Errorf("newErr did not set basic fields correctly: %+v", err)
	}
}

func TestSimErrorMessageOmitsUnsetLocations(t *testing.T) {
	err := newErr("store.NewStore", FileIO, 0, errors.New("no such file"))
	msg := err.Error()
	if strings.Contains(msg, "row=") || strings.Contains(msg, "link=") || strings.Contains(msg, "layer=") {
		t.Errorf("message should omit unset location fields, got %q", msg)
	}
	if !strings.Contains(msg, "FILE-IO") || !strings.Contains(msg, "no such file") {
		t.Errorf("message missing kind or wrapped cause: %q", msg)
	}
}

func TestSimErrorMessageIncludesSetLocations(t *testing.T) {
	err := &SimError{Kind: GeometryInvalid, Op: "stack.Collapse", Row: 3, Col: 4, Link: -1, Node: -1, Layer: 2, SimTime: 10}
	msg := err.Error()
	if !strings.Contains(msg, "row=3") || !strings.Contains(msg, "col=4") || !strings.Contains(msg, "layer=2") {
		t.Errorf("message missing set location fields, got %q", msg)
	}
	if strings.Contains(msg, "link=") {
		t.Errorf("message should omit link/node when both are -1, got %q", msg)
	}
}

func TestSimErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := newErr("op", FileIO, 0, cause)
	if !errors.Is(err, cause) {
		t.Error("SimError should unwrap to its wrapped cause via errors.Is")
	}
}

func TestSimErrorNoCauseOmitsNilCause(t *testing.T) {
	err := newErr("op", StackFull, 5, nil)
	msg := err.Error()
	if strings.Contains(msg, "<nil>") {
		t.Errorf("message should not print a nil cause, got %q", msg)
	}
}
