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

// Package restartio saves and restores a Simulation's live state as a
// gob-encoded stream (spec.md §4.H, "restart file"), following the
// teacher's save/load pattern for its own cell array.
package restartio

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/watershedmodels/trex"
)

// FormatVersion is bumped whenever the encoded shape of RestartState
// changes in a way that would make an old restart file unreadable.
const FormatVersion = "trex-restart-v1"

// RestartState is the full snapshot written at a checkpoint and read back
// at a restart (spec.md §4.H.5, "mid-run restart").
type RestartState struct {
	Version string
	SimTime float64

	Store  *trex.Store
	Ledger *trex.Ledger
}

// Save writes sim's current Store and Ledger to w as a single gob record.
func Save(w io.Writer, sim *trex.Simulation) error {
	state := RestartState{
		Version: FormatVersion,
		SimTime: sim.SimTime,
		Store:   sim.Store,
		Ledger:  sim.Ledger,
	}
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("restartio.Save: %v", err)
	}
	return nil
}

// Load reads a RestartState previously written by Save and installs it
// into sim in place, restoring sim.Store, sim.Ledger, and sim.SimTime.
// It returns an error if the file's format version does not match.
func Load(r io.Reader, sim *trex.Simulation) error {
	var state RestartState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("restartio.Load: %v", err)
	}
	if state.Version != FormatVersion {
		return fmt.Errorf("restartio.Load: restart file version %q is not compatible with %q",
			state.Version, FormatVersion)
	}
	sim.Store = state.Store
	sim.Ledger = state.Ledger
	sim.SimTime = state.SimTime
	return nil
}
