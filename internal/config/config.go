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

// Package config loads a TOML scenario file describing a TREX run: grid
// geometry, chemical and solids catalogs, stack sizing, and run control.
// It supersedes the historical fixed-keyword Groups A-F text format
// (spec.md §6), which this package's ScenarioConfig-shaped data satisfies
// only in the sense of carrying the same information, not the same
// on-disk grammar.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"

	"github.com/watershedmodels/trex"
)

// ChemicalConfig is the TOML representation of one trex.Chemical.
type ChemicalConfig struct {
	Name  string
	Group string

	Kp, Kb, Koc, NuX float64

	Partition   bool
	Biodegrade  bool
	Hydrolyze   bool
	Oxidize     bool
	Photolyze   bool
	Radioactive bool
	Volatilize  bool
	UserDefined bool
	Dissolve    bool

	BiodegradeWater, BiodegradeSediment   float64
	HydrolyzeWater, HydrolyzeSediment     float64
	OxidizeWater, OxidizeSediment         float64
	PhotolyzeWater                        float64
	RadioactiveRate                       float64
	VolatilizeWater                       float64
	UserWater, UserSediment               float64
	DissolutionWater, DissolutionSediment float64

	Solubility   float64
	MolWt        float64
	UserReaction string
}

// ToChemical converts a ChemicalConfig into its runtime trex.Chemical.
func (c ChemicalConfig) ToChemical() trex.Chemical {
	return trex.Chemical{
		Name: c.Name, Group: c.Group,
		Kp: c.Kp, Kb: c.Kb, Koc: c.Koc, NuX: c.NuX,
		Flags: trex.ProcessFlags{
			Partition: c.Partition, Biodegrade: c.Biodegrade, Hydrolyze: c.Hydrolyze,
			Oxidize: c.Oxidize, Photolyze: c.Photolyze, Radioactive: c.Radioactive,
			Volatilize: c.Volatilize, UserDefined: c.UserDefined, Dissolve: c.Dissolve,
		},
		Rates: trex.RateConstants{
			BiodegradeWater: c.BiodegradeWater, BiodegradeSediment: c.BiodegradeSediment,
			HydrolyzeWater: c.HydrolyzeWater, HydrolyzeSediment: c.HydrolyzeSediment,
			OxidizeWater: c.OxidizeWater, OxidizeSediment: c.OxidizeSediment,
			PhotolyzeWater: c.PhotolyzeWater, Radioactive: c.RadioactiveRate,
			VolatilizeWater: c.VolatilizeWater, UserWater: c.UserWater, UserSediment: c.UserSediment,
			DissolutionWater: c.DissolutionWater, DissolutionSediment: c.DissolutionSediment,
		},
		Solubility: c.Solubility, MolWt: c.MolWt, UserReaction: c.UserReaction,
	}
}

// SolidConfig is the TOML representation of one trex.Solid.
type SolidConfig struct {
	Name        string
	DiameterM   float64
	DensityKgM3 float64
}

// ToSolid converts a SolidConfig into its runtime trex.Solid.
func (s SolidConfig) ToSolid() trex.Solid {
	return trex.NewSolid(s.Name, s.DiameterM, s.DensityKgM3)
}

// YieldConfig is the TOML representation of one trex.YieldEntry. Process
// is read as a string ("biodegradation", "hydrolysis", ...) and resolved
// to a trex.Process by Resolve.
type YieldConfig struct {
	From, To int
	Process  string
	Yield    float64
}

var processNames = map[string]trex.Process{
	"partition":      trex.ProcessPartition,
	"biodegradation": trex.ProcessBiodegradation,
	"hydrolysis":     trex.ProcessHydrolysis,
	"oxidation":      trex.ProcessOxidation,
	"photolysis":     trex.ProcessPhotolysis,
	"radioactive":    trex.ProcessRadioactive,
	"volatilization": trex.ProcessVolatilization,
	"dissolution":    trex.ProcessDissolution,
	"user_defined":   trex.ProcessUserDefined,
}

// Resolve converts y into a trex.YieldEntry, returning an error if
// Process does not name a known reaction channel.
func (y YieldConfig) Resolve() (trex.YieldEntry, error) {
	p, ok := processNames[y.Process]
	if !ok {
		return trex.YieldEntry{}, fmt.Errorf("config: unrecognized yield process %q", y.Process)
	}
	return trex.YieldEntry{From: y.From, To: y.To, Process: p, Yield: y.Yield}, nil
}

// GridConfig is the TOML representation of the grid geometry and mask
// file location (spec.md §6).
type GridConfig struct {
	MaskFile     string `toml:"mask_file"`
	NRows        int    `toml:"n_rows"`
	NCols        int    `toml:"n_cols"`
	CellSize     float64
	XllCorner, YllCorner float64
	NoData       float64
}

// RunConfig controls the time stepping and output cadence (spec.md §4.H).
type RunConfig struct {
	Dt              float64
	NSteps          int `toml:"n_steps"`
	CollapseEnabled bool
	MaxStackOverland int `toml:"max_stack_overland"`
	MaxStackChannel  int `toml:"max_stack_channel"`
	RestartFile      string
	EchoFile         string
	ErrorFile        string
}

// ScenarioConfig is the root TOML document for a run.
type ScenarioConfig struct {
	Grid      GridConfig
	Run       RunConfig
	Chemicals []ChemicalConfig
	Solids    []SolidConfig
	Yields    []YieldConfig
}

// Load reads and decodes a TOML scenario file at path, applying
// os.ExpandEnv to every file-path field the way the teacher's CLI config
// binder expands environment variables in configured paths.
func Load(path string) (*ScenarioConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %v", err)
	}
	expanded := os.ExpandEnv(string(raw))

	var cfg ScenarioConfig
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %v", err)
	}
	cfg.Grid.MaskFile = os.ExpandEnv(cfg.Grid.MaskFile)
	cfg.Run.RestartFile = os.ExpandEnv(cfg.Run.RestartFile)
	cfg.Run.EchoFile = os.ExpandEnv(cfg.Run.EchoFile)
	cfg.Run.ErrorFile = os.ExpandEnv(cfg.Run.ErrorFile)

	if cfg.Run.MaxStackOverland <= 0 || cfg.Run.MaxStackChannel <= 0 {
		return nil, &trex.SimError{Kind: trex.ConfigInvalid, Op: "config.Load",
			Row: -1, Col: -1, Link: -1, Node: -1, Layer: -1,
			Err: &trexConfigError{msg: "run.max_stack_overland and run.max_stack_channel must be positive"}}
	}
	return &cfg, nil
}

// trexConfigError is the cause carried by the CONFIG-INVALID *trex.SimError
// that Load returns for a failed scenario validation.
type trexConfigError struct{ msg string }

func (e *trexConfigError) Error() string { return "config: " + e.msg }

// CastDuration coerces a loosely typed TOML scalar (int, float64, or a
// numeric string) into seconds, the way inmaputil's config binder uses
// spf13/cast to tolerate either representation from a user-edited file.
func CastDuration(v interface{}) (float64, error) {
	return cast.ToFloat64E(v)
}
