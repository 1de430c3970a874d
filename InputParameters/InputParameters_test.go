package InputParameters

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/mbgrid/types"
)

func TestBlocksInput(t *testing.T) {
	var (
		err       error
		fileInput = []byte(`
Title: Two blocks
Levels: 2
LevelOrder: coarse-first
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
    Ghost: [1, 0, 1, 1, 1, 1]
    Box: {XMin: 2, XMax: 4, YMin: 0, YMax: 1, ZMin: 0, ZMax: 1}
    State: {Species: [1], Velocity: [0, 0, 0], Pressure: 90000, Density: 1.1, Gamma: 1.4}
    Faces:
      imin: {BC: adjacent, Neighbor: 1}
      imax: {BC: outflow}
      jmin: {BC: wall}
      jmax: {BC: wall}
      kmin: {BC: symmetry}
      kmax: {BC: symmetry}
`)
	)
	var input BlocksInput
	require.NoError(t, input.Parse(fileInput))
	input.Print()
	assert.Equal(t, 2, input.Levels)
	assert.Equal(t, "air.yaml", input.SpeciesFile)
	assert.Equal(t, 2, input.Blocks[0].Faces["+i"].Neighbor)
	assert.Equal(t, "coarse-first", input.Options().LevelOrder)

	tbl, err := input.Table()
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	left, right := tbl.Block(1), tbl.Block(2)
	assert.Equal(t, [types.NFaces]int{1, 1, 1, 1, 1, 1}, left.Ghost)
	assert.Equal(t, [types.NFaces]int{1, 0, 1, 1, 1, 1}, right.Ghost)
	assert.Equal(t, types.BC_Inflow1, left.Faces[types.FaceIMin].Kind)
	assert.Equal(t, 1, right.Faces[types.FaceIMin].Neighbor)
	assert.Equal(t, r3.Vec{X: 100}, left.State.Velocity)
	assert.Equal(t, 90000., right.State.Pressure)
	assert.Equal(t, 4., right.Box.XMax)

	{ // A face without a BC
		delete(input.Blocks[1].Faces, "kmax")
		_, err = input.Table()
		var ie *types.InputError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, 2, ie.Block)
	}
	{ // Unknown BC kind and face name
		input.Blocks[1].Faces["kmax"] = FaceInput{BC: "porous"}
		_, err = input.Table()
		assert.Error(t, err)
		input.Blocks[1].Faces["kmax"] = FaceInput{BC: "wall"}
		input.Blocks[1].Faces["top"] = FaceInput{BC: "wall"}
		_, err = input.Table()
		assert.Error(t, err)
	}
	{ // Short ghost list
		input.Ghost = []int{1, 1}
		_, err = input.Table()
		assert.Error(t, err)
	}
}

func TestICEMInput(t *testing.T) {
	fileInput := []byte(`
Title: Imported grid
Levels: 3
Ghost: [2, 2, 2, 2, 2, 2]
DefaultBC: Wall
State: {Species: [1], Velocity: [0, 0, 0], Pressure: 101325, Density: 1.225, Gamma: 1.4}
InflowStates:
  - {Species: [1], Velocity: [50, 0, 0], Pressure: 101325, Density: 1.225, Gamma: 1.4}
  - {Species: [1], Velocity: [60, 0, 0], Pressure: 101325, Density: 1.225, Gamma: 1.4}
Files:
  - {Geometry: part1.geo, Topology: part1.topo}
  - {Geometry: /data/part2.geo, Topology: part2.topo}
`)
	var input ICEMInput
	require.NoError(t, input.Parse(fileInput))
	input.Print()
	run, err := input.Run("/work/case")
	require.NoError(t, err)
	assert.Equal(t, types.Plain{K: types.BC_Wall}, run.DefaultBC)
	assert.Equal(t, 2, run.InflowStates)
	assert.Equal(t, [types.NFaces]int{2, 2, 2, 2, 2, 2}, run.Ghost)
	require.Len(t, run.Files, 2)
	assert.Equal(t, filepath.Join("/work/case", "part1.geo"), run.Files[0].Geometry)
	assert.Equal(t, "/data/part2.geo", run.Files[1].Geometry)
	assert.Equal(t, "", run.CompanionDir)

	input.DefaultBC = "inflow2"
	_, err = input.Run("")
	assert.Error(t, err)
	input.DefaultBC = ""
	input.Files[1].Topology = ""
	_, err = input.Run("")
	assert.Error(t, err)
}
