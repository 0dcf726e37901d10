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

	"github.com/watershedmodels/trex/internal/gridio"
)

func gridCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "grid", Short: "grid file utilities"}
	cmd.AddCommand(gridConvertCmd())
	return cmd
}

func gridConvertCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "round-trip an ESRI-ASCII raster, validating its header",
		RunE: func(cmd *cobra.Command, args []string) error {
			inFile, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("trex grid convert: %v", err)
			}
			defer inFile.Close()
			h, arr, err := gridio.Read(inFile)
			if err != nil {
				return err
			}
			outFile, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("trex grid convert: %v", err)
			}
			defer outFile.Close()
			return gridio.Write(outFile, h, arr)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input ESRI-ASCII raster")
	cmd.Flags().StringVar(&out, "out", "", "output ESRI-ASCII raster")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}
