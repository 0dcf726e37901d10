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

// Package export writes the final chemical mass-balance report to CSV
// (spec.md §4.H.6), supplemented per WriteSummaryChemical.c with a
// per-compartment breakdown rather than only a whole-domain total.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/watershedmodels/trex"
)

var compartments = []trex.Compartment{
	trex.CompartmentOverlandWater, trex.CompartmentOverlandSoil,
	trex.CompartmentChannelWater, trex.CompartmentChannelSediment,
}

var compartmentNames = map[trex.Compartment]string{
	trex.CompartmentOverlandWater:    "overland_water",
	trex.CompartmentOverlandSoil:     "overland_soil",
	trex.CompartmentChannelWater:     "channel_water",
	trex.CompartmentChannelSediment:  "channel_sediment",
}

// Balance writes one row per chemical with its whole-domain mass-balance
// reduction (spec.md §4.H.6: initial, final, ingress, egress, percent
// error).
func Balance(w io.Writer, chemNames []string, ledger *trex.Ledger) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"chemical", "initial_g", "final_g", "ingress_g", "egress_g", "percent_error"}); err != nil {
		return fmt.Errorf("export.Balance: %v", err)
	}
	for i, name := range chemNames {
		b := ledger.Balance(i)
		row := []string{
			name,
			fmt.Sprintf("%g", b.Initial), fmt.Sprintf("%g", b.Final),
			fmt.Sprintf("%g", b.Ingress), fmt.Sprintf("%g", b.Egress),
			fmt.Sprintf("%g", b.PercentError),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export.Balance: %v", err)
		}
	}
	return cw.Error()
}

// CompartmentExtrema writes one row per (chemical, compartment) with the
// running min/max concentration observed over the run, the supplemented
// per-compartment breakdown WriteSummaryChemical.c performs.
func CompartmentExtrema(w io.Writer, chemNames []string, ledger *trex.Ledger) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"chemical", "compartment", "min_conc_g_m3", "max_conc_g_m3"}); err != nil {
		return fmt.Errorf("export.CompartmentExtrema: %v", err)
	}
	for i, name := range chemNames {
		for _, c := range compartments {
			min, max := ledger.Extrema(c, i)
			row := []string{name, compartmentNames[c], fmt.Sprintf("%g", min), fmt.Sprintf("%g", max)}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("export.CompartmentExtrema: %v", err)
			}
		}
	}
	return cw.Error()
}

// Outlets writes one row per (outlet, chemical) with the cumulative
// advective/dispersive export and peak discharge register.
func Outlets(w io.Writer, chemNames []string, outletIDs []int, ledger *trex.Ledger) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"outlet_id", "chemical", "advective_out_g", "dispersive_out_g", "peak_value_g_s", "peak_time_s"}); err != nil {
		return fmt.Errorf("export.Outlets: %v", err)
	}
	for _, id := range outletIDs {
		regs := ledger.Outlets[id]
		for i, name := range chemNames {
			if i >= len(regs) {
				continue
			}
			r := regs[i]
			row := []string{
				fmt.Sprintf("%d", id), name,
				fmt.Sprintf("%g", r.AdvectiveOut), fmt.Sprintf("%g", r.DispersiveOut),
				fmt.Sprintf("%g", r.PeakValue), fmt.Sprintf("%g", r.PeakTime),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("export.Outlets: %v", err)
			}
		}
	}
	return cw.Error()
}
