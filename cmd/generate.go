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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/notargets/mbgrid/InputParameters"
	"github.com/notargets/mbgrid/mesh"
	"github.com/notargets/mbgrid/pipeline"
	"github.com/notargets/mbgrid/species"
	"github.com/notargets/mbgrid/types"
)

type Mode string

const (
	ModeBlocks Mode = "blocks"
	ModeICEM   Mode = "icem"
)

// Generate is one invocation of the generator
type Generate struct {
	Mode      Mode
	InputFile string
	OutputDir string
	Scratch   string
	Spill     bool
	Verbose   bool
	CheckOnly bool
}

// newGenerate collects the tool wide settings from flags, environment and config file
func newGenerate(mode Mode, inputFile string) *Generate {
	return &Generate{
		Mode:      mode,
		InputFile: inputFile,
		OutputDir: viper.GetString("outputDir"),
		Scratch:   viper.GetString("scratchDir"),
		Spill:     viper.GetBool("spill"),
		Verbose:   viper.GetBool("verbose"),
	}
}

func (g *Generate) options(c *InputParameters.Common, dir string) (opts pipeline.Options, err error) {
	opts = c.Options()
	opts.OutputDir = g.OutputDir
	opts.ScratchDir = g.Scratch
	opts.Spill = g.Spill
	opts.Verbose = g.Verbose
	opts.CheckOnly = g.CheckOnly
	if c.SpeciesFile != "" {
		if opts.Species, err = species.Load(InputParameters.Resolve(dir, c.SpeciesFile)); err != nil {
			return
		}
		if g.Verbose {
			opts.Species.Print()
		}
	}
	for n, st := range c.InflowStates {
		fs := st.FlowState()
		ns := len(fs.Species)
		if opts.Species != nil {
			ns = opts.Species.Ns()
		}
		if err = fs.Check(ns); err != nil {
			err = &types.CrossRefError{Msg: fmt.Sprintf("InflowStates[%d]", n), Err: err}
			return
		}
	}
	return
}

// Run reads the input file and runs the pipeline of the selected mode
func (g *Generate) Run() (res *pipeline.Result, err error) {
	var (
		data []byte
		dir  = filepath.Dir(g.InputFile)
		opts pipeline.Options
	)
	if data, err = os.ReadFile(g.InputFile); err != nil {
		return nil, &types.InputError{File: g.InputFile, Msg: "reading input parameters", Err: err}
	}
	switch g.Mode {
	case ModeBlocks:
		ip := &InputParameters.BlocksInput{}
		if err = ip.Parse(data); err != nil {
			return nil, &types.InputError{File: g.InputFile, Msg: "parsing input parameters", Err: err}
		}
		if g.Verbose {
			ip.Print()
		}
		if opts, err = g.options(&ip.Common, dir); err != nil {
			return
		}
		var tbl *mesh.Table
		if tbl, err = ip.Table(); err != nil {
			return
		}
		return pipeline.RunDirect(tbl, len(ip.InflowStates), opts)
	case ModeICEM:
		ip := &InputParameters.ICEMInput{}
		if err = ip.Parse(data); err != nil {
			return nil, &types.InputError{File: g.InputFile, Msg: "parsing input parameters", Err: err}
		}
		if g.Verbose {
			ip.Print()
		}
		if opts, err = g.options(&ip.Common, dir); err != nil {
			return
		}
		var run *pipeline.ICEMRun
		if run, err = ip.Run(dir); err != nil {
			return
		}
		return pipeline.RunICEM(run, opts)
	default:
		return nil, fmt.Errorf("unknown mode %q, use %q or %q", g.Mode, ModeBlocks, ModeICEM)
	}
}

// execute runs the generator and exits with status 1 on any error
func (g *Generate) execute(example string) {
	if len(g.InputFile) == 0 {
		fmt.Printf("error: %s\n", "must supply an input parameters file (-I, --inputFile)")
		fmt.Printf("Example File:%s\n", example)
		os.Exit(1)
	}
	res, err := g.Run()
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	switch {
	case g.CheckOnly:
		fmt.Printf("%s: %d blocks, %d cells, boundary conditions complete on every level\n",
			g.InputFile, res.Blocks, res.Cells)
	case g.Verbose:
		fmt.Printf("%d blocks, %d cells written to %s\n", res.Blocks, res.Cells, g.OutputDir)
	}
}
