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

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate an input without writing output",
	Long: `
Runs the whole generator for an input file, resolving every boundary condition on every
multigrid level, and reports the first error found. No solver files are written.

mbgrid check --mode icem -I import.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		inputFile, _ := cmd.Flags().GetString("inputFile")
		mode, _ := cmd.Flags().GetString("mode")
		g := newGenerate(Mode(mode), inputFile)
		g.CheckOnly = true
		example := blocksExample
		if g.Mode == ModeICEM {
			example = icemExample
		}
		g.execute(example)
	},
}

func init() {
	rootCmd.AddCommand(CheckCmd)
	CheckCmd.Flags().StringP("inputFile", "I", "", "YAML input file of the blocks or icem command")
	CheckCmd.Flags().StringP("mode", "m", string(ModeBlocks), "input mode: blocks or icem")
}
