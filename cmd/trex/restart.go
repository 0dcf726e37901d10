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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/watershedmodels/trex"
	"github.com/watershedmodels/trex/internal/config"
	"github.com/watershedmodels/trex/internal/export"
	"github.com/watershedmodels/trex/internal/restartio"
)

func restartCmd() *cobra.Command {
	var scenarioPath, restartPath, outDir string
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "resume a scenario from a restart file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRestart(scenarioPath, restartPath, outDir)
		},
	}
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "path to the TOML scenario file")
	cmd.Flags().StringVar(&restartPath, "restart", "", "path to the restart file to resume from")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write output CSVs into")
	cmd.MarkFlagRequired("scenario")
	cmd.MarkFlagRequired("restart")
	return cmd
}

func doRestart(scenarioPath, restartPath, outDir string) error {
	cfg, err := config.Load(scenarioPath)
	if err != nil {
		return err
	}
	sim, chemNames, logger, err := buildSimulation(cfg, scenarioPath, "")
	if err != nil {
		return err
	}

	rf, err := os.Open(restartPath)
	if err != nil {
		return fmt.Errorf("trex restart: %v", err)
	}
	if err := restartio.Load(rf, sim); err != nil {
		rf.Close()
		return err
	}
	rf.Close()
	logger.Info(fmt.Sprintf("resumed from %q at t=%g", restartPath, sim.SimTime))

	for i := 0; i < cfg.Run.NSteps; i++ {
		if err := sim.Step(); err != nil {
			if se, ok := err.(*trex.SimError); ok {
				logger.Fatal(se)
			}
			return err
		}
		logger.Step(sim.SimTime, sim.Dt)
	}
	sim.FinalizeLedger()

	if cfg.Run.RestartFile != "" {
		wf, err := os.Create(cfg.Run.RestartFile)
		if err != nil {
			return fmt.Errorf("trex restart: %v", err)
		}
		defer wf.Close()
		if err := restartio.Save(wf, sim); err != nil {
			return err
		}
	}

	balanceFile, err := os.Create(outDir + "/balance.csv")
	if err != nil {
		return fmt.Errorf("trex restart: %v", err)
	}
	defer balanceFile.Close()
	return export.Balance(balanceFile, chemNames, sim.Ledger)
}
