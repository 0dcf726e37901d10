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
	"github.com/watershedmodels/trex/internal/diag"
	"github.com/watershedmodels/trex/internal/export"
	"github.com/watershedmodels/trex/internal/gridio"
	"github.com/watershedmodels/trex/internal/initcond"
)

func runCmd() *cobra.Command {
	var scenarioPath, initCondPath, outDir string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "advance a scenario to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRun(scenarioPath, initCondPath, outDir)
		},
	}
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "path to the TOML scenario file")
	cmd.Flags().StringVar(&initCondPath, "initcond", "", "path to the initial-condition file")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write output CSVs into")
	cmd.MarkFlagRequired("scenario")
	return cmd
}

func buildSimulation(cfg *config.ScenarioConfig, scenarioPath, initCondPath string) (*trex.Simulation, []string, *diag.Logger, error) {
	logger, err := diag.New(cfg.Run.EchoFile, cfg.Run.ErrorFile)
	if err != nil {
		return nil, nil, nil, err
	}

	maskFile, err := os.Open(cfg.Grid.MaskFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("trex run: %v", err)
	}
	defer maskFile.Close()
	h, arr, err := gridio.Read(maskFile)
	if err != nil {
		return nil, nil, nil, err
	}
	grid, err := gridio.ToMask(h, arr)
	if err != nil {
		return nil, nil, nil, err
	}

	chems := make([]trex.Chemical, len(cfg.Chemicals))
	chemNames := make([]string, len(cfg.Chemicals))
	for i, c := range cfg.Chemicals {
		chems[i] = c.ToChemical()
		chemNames[i] = c.Name
	}
	solids := make([]trex.Solid, len(cfg.Solids))
	for i, s := range cfg.Solids {
		solids[i] = s.ToSolid()
	}
	yields := make([]trex.YieldEntry, 0, len(cfg.Yields))
	for _, y := range cfg.Yields {
		ye, err := y.Resolve()
		if err != nil {
			return nil, nil, nil, err
		}
		yields = append(yields, ye)
	}

	store := trex.NewStore(grid, len(solids), len(chems), cfg.Run.MaxStackOverland, nil, cfg.Run.MaxStackChannel)
	if err := store.Validate(); err != nil {
		return nil, nil, nil, err
	}

	if initCondPath != "" {
		f, err := os.Open(initCondPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("trex run: %v", err)
		}
		defer f.Close()
		records, err := initcond.Read(f, len(solids), len(chems))
		if err != nil {
			return nil, nil, nil, err
		}
		if err := initcond.Seed(store, records); err != nil {
			return nil, nil, nil, err
		}
	}

	env := trex.NewEnvironment(grid)
	env.Build()

	sim := trex.NewSimulation(store, env, chems, solids, yields, nil, zeroProvider{}, zeroProvider{},
		cfg.Run.Dt, cfg.Run.CollapseEnabled)
	logger.Info(fmt.Sprintf("loaded scenario %q: %d chemicals, %d solids", scenarioPath, len(chems), len(solids)))
	return sim, chemNames, logger, nil
}

func doRun(scenarioPath, initCondPath, outDir string) error {
	cfg, err := config.Load(scenarioPath)
	if err != nil {
		return err
	}
	sim, chemNames, logger, err := buildSimulation(cfg, scenarioPath, initCondPath)
	if err != nil {
		return err
	}

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

	balanceFile, err := os.Create(outDir + "/balance.csv")
	if err != nil {
		return fmt.Errorf("trex run: %v", err)
	}
	defer balanceFile.Close()
	if err := export.Balance(balanceFile, chemNames, sim.Ledger); err != nil {
		return err
	}

	extremaFile, err := os.Create(outDir + "/extrema.csv")
	if err != nil {
		return fmt.Errorf("trex run: %v", err)
	}
	defer extremaFile.Close()
	return export.CompartmentExtrema(extremaFile, chemNames, sim.Ledger)
}
