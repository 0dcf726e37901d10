package export

import (
	"strings"
	"testing"

	"github.com/watershedmodels/trex"
)

func TestBalanceWritesOneRowPerChemical(t *testing.T) {
	ledger := trex.NewLedger(2)
	ledger.Initial[0], ledger.Final[0] = 100, 90
	ledger.Initial[1], ledger.Final[1] = 50, 50

	var buf strings.Builder
	if err := Balance(&buf, []string{"atrazine", "lead"}, ledger); err != nil {
		t.Fatalf("Balance: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 { // header + 2 chemicals
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if !strings.Contains(lines[0], "percent_error") {
		t.Errorf("header missing percent_error column: %q", lines[0])
	}
	if !strings.Contains(lines[1], "atrazine") {
		t.Errorf("row 1 missing chemical name: %q", lines[1])
	}
}

func TestCompartmentExtremaWritesOneRowPerChemicalCompartment(t *testing.T) {
	ledger := trex.NewLedger(1)
	ledger.UpdateExtrema(trex.CompartmentOverlandWater, 0, 3)
	ledger.UpdateExtrema(trex.CompartmentOverlandWater, 0, 7)

	var buf strings.Builder
	if err := CompartmentExtrema(&buf, []string{"atrazine"}, ledger); err != nil {
		t.Fatalf("CompartmentExtrema: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1+len(compartments) {
		t.Fatalf("len(lines) = %d, want %d", len(lines), 1+len(compartments))
	}
	if !strings.Contains(lines[1], "overland_water") || !strings.Contains(lines[1], "3") || !strings.Contains(lines[1], "7") {
		t.Errorf("overland_water row missing expected min/max: %q", lines[1])
	}
}

func TestOutletsWritesCumulativeAndPeakRegisters(t *testing.T) {
	ledger := trex.NewLedger(1)
	ledger.UpdateOutlet(5, 0, 10, 0, 2, 1)
	ledger.UpdateOutlet(5, 0, 20, 0, 5, 2)

	var buf strings.Builder
	if err := Outlets(&buf, []string{"atrazine"}, []int{5}, ledger); err != nil {
		t.Fatalf("Outlets: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 { // header + 1 outlet row
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[1], "5") || !strings.Contains(lines[1], "atrazine") {
		t.Errorf("outlet row missing id/name: %q", lines[1])
	}
}

func TestOutletsSkipsUnregisteredOutlet(t *testing.T) {
	ledger := trex.NewLedger(1)
	var buf strings.Builder
	if err := Outlets(&buf, []string{"atrazine"}, []int{99}, ledger); err != nil {
		t.Fatalf("Outlets: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1 (header only, no registered outlet 99)", len(lines))
	}
}
