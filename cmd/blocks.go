/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/spf13/cobra"
)

const blocksExample = `
########################################
Title: "Two blocks"
Levels: 2
SpeciesFile: air.yaml
Ghost: [1, 1, 1, 1, 1, 1]
State: {Species: [1], Velocity: [100, 0, 0], Pressure: 101325, Density: 1.225, Gamma: 1.4}
InflowStates:
  - {Species: [1], Velocity: [120, 0, 0], Pressure: 110000, Density: 1.3, Gamma: 1.4}
Blocks:
  - Name: left
    Cells: [8, 4, 4]
    Box: {XMin: 0, XMax: 2, YMin: 0, YMax: 1, ZMin: 0, ZMax: 1}
    Faces:
      "-i": {BC: inflow1, Inflow: 0}
      "+i": {BC: adjacent, Neighbor: 2}
      "-j": {BC: wall}
      "+j": {BC: wall}
      "-k": {BC: symmetry}
      "+k": {BC: symmetry}
  - Name: right
    Cells: [8, 4, 4]
    Box: {XMin: 2, XMax: 4, YMin: 0, YMax: 1, ZMin: 0, ZMax: 1}
    Faces:
      "-i": {BC: adjacent, Neighbor: 1}
      "+i": {BC: outflow}
      "-j": {BC: wall}
      "+j": {BC: wall}
      "-k": {BC: symmetry}
      "+k": {BC: symmetry}
########################################
`

// BlocksCmd represents the blocks command
var BlocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Generate Cartesian blocks described directly in the input file",
	Long: `
Generates axis aligned Cartesian blocks from their bounding boxes and cell counts, with
multigrid levels, face boundary conditions and a uniform initial state per block.
Adjacent blocks share orientation and connect opposite faces.

mbgrid blocks -I blocks.yaml -o out`,
	Run: func(cmd *cobra.Command, args []string) {
		inputFile, _ := cmd.Flags().GetString("inputFile")
		newGenerate(ModeBlocks, inputFile).execute(blocksExample)
	},
}

func init() {
	rootCmd.AddCommand(BlocksCmd)
	BlocksCmd.Flags().StringP("inputFile", "I", "", "YAML file describing the blocks, levels and states")
}
