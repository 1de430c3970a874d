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

const icemExample = `
########################################
Title: "Imported grid"
Levels: 3
LevelOrder: fine-first # Can be "coarse-first"
SpeciesFile: air.yaml
Ghost: [2, 2, 2, 2, 2, 2]
DefaultBC: wall # Empty makes faces without a record an error
State: {Species: [1], Velocity: [0, 0, 0], Pressure: 101325, Density: 1.225, Gamma: 1.4}
Files:
  - {Geometry: part1.geo, Topology: part1.topo}
  - {Geometry: part2.geo, Topology: part2.topo}
########################################
`

// ICEMCmd represents the icem command
var ICEMCmd = &cobra.Command{
	Use:   "icem",
	Short: "Import an ICEM multiblock grid",
	Long: `
Imports the geometry and topology streams of an ICEM multiblock grid, resolves the
relative orientation of every connected face pair and writes the mesh, boundary
conditions and initial state of every block at every multigrid level.

mbgrid icem -I import.yaml -o out --spill`,
	Run: func(cmd *cobra.Command, args []string) {
		inputFile, _ := cmd.Flags().GetString("inputFile")
		newGenerate(ModeICEM, inputFile).execute(icemExample)
	},
}

func init() {
	rootCmd.AddCommand(ICEMCmd)
	ICEMCmd.Flags().StringP("inputFile", "I", "", "YAML file naming the ICEM files, levels and states")
}
