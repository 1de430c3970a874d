package readfiles

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/mbgrid/types"
)

// geometryText writes a domain of unit spaced nodes shifted by x0 along x
func geometryText(cells [3]int, x0 float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %d %d\n", cells[0]+1, cells[1]+1, cells[2]+1)
	for k := 0; k <= cells[2]; k++ {
		for j := 0; j <= cells[1]; j++ {
			for i := 0; i <= cells[0]; i++ {
				fmt.Fprintf(&sb, "%g %g %g\n", x0+float64(i), float64(j), float64(k))
			}
		}
	}
	return sb.String()
}

func TestReadICEMGeometry(t *testing.T) {
	text := "# two domains\n" + geometryText([3]int{2, 1, 1}, 0) + "\n" + geometryText([3]int{1, 2, 3}, 10)
	{
		cells, err := CountICEMDomains("test.geo", strings.NewReader(text))
		require.NoError(t, err)
		assert.Equal(t, [][3]int{{2, 1, 1}, {1, 2, 3}}, cells)
	}
	{
		gr := NewICEMGeometryReader("test.geo", strings.NewReader(text))
		ghost := [types.NFaces]int{1, 1, 0, 0, 2, 0}
		na, err := gr.Next(ghost)
		require.NoError(t, err)
		assert.Equal(t, [3]int{2, 1, 1}, na.Cells)
		assert.Equal(t, r3.Vec{X: 2, Y: 1, Z: 1}, na.At(2, 1, 1))
		// Ghosts extrapolated from the unit spacing
		assert.Equal(t, r3.Vec{X: -1, Y: 0, Z: 0}, na.At(-1, 0, 0))
		assert.Equal(t, r3.Vec{X: 3, Y: 1, Z: -2}, na.At(3, 1, -2))

		na, err = gr.Next(ghost)
		require.NoError(t, err)
		assert.Equal(t, 2, gr.Domain())
		assert.Equal(t, r3.Vec{X: 11, Y: 2, Z: 3}, na.At(1, 2, 3))

		_, err = gr.Next(ghost)
		assert.Equal(t, io.EOF, err)
	}
}

func TestReadICEMGeometryErrors(t *testing.T) {
	var ie *types.InputError
	{ // Truncated domain
		text := geometryText([3]int{2, 2, 2}, 0)
		text = text[:len(text)-20]
		_, err := CountICEMDomains("short.geo", strings.NewReader(text))
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, "short.geo", ie.File)
	}
	{ // Bad header
		_, err := CountICEMDomains("bad.geo", strings.NewReader("3 3\n"))
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, 1, ie.Line)
		_, err = CountICEMDomains("bad.geo", strings.NewReader("3 1 3\n"))
		assert.Error(t, err)
	}
	{ // Bad coordinate
		gr := NewICEMGeometryReader("bad.geo", strings.NewReader("2 2 2\n0 0 0\n1 0 x\n"))
		_, err := gr.Next([types.NFaces]int{})
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, 3, ie.Line)
	}
	{ // Non finite coordinate
		gr := NewICEMGeometryReader("nan.geo", strings.NewReader("2 2 2\n0 0 0\n1 NaN 0\n"))
		_, err := gr.Next([types.NFaces]int{})
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, 3, ie.Line)
		assert.Contains(t, ie.Msg, "not finite")
	}
}

const topologyText = `# ICEM topology
# Connectivity for domain.1
	f	4,0:4,0:4	domain.2	0,0:4,0:4	 i j k
	e	ignored edge record
# Boundary conditions and/or properties for domain.1
	f	inflow1	3	0,0:4,0:4
	f	wall	0:4,0,0:4
	b	itc	blockA
	v	ignored vertex record
# Connectivity for domain.2
	f	0,0:4,0:4	domain.1	4,0:4,0:4	 i j k
	f	0:4,0:4,4	domain.1@1	0:4,0:4,0	-j i k
# Boundary conditions and/or properties for domain.2
	f	outflow	4,0:4,0:4
	b	gc	blockB
`

func TestReadICEMTopology(t *testing.T) {
	// Second file of a run whose first file holds 3 domains
	offsets := []int{0, 3}
	renumber := func(file, domain int) (int, error) {
		if file >= len(offsets) {
			return 0, fmt.Errorf("no file %d", file+1)
		}
		return offsets[file] + domain, nil
	}
	domains, err := ReadICEMTopology("b.topo", strings.NewReader(topologyText), 1, renumber)
	require.NoError(t, err)
	require.Len(t, domains, 2)

	d1 := domains[0]
	assert.Equal(t, 4, d1.Block)
	require.Len(t, d1.Connectivity, 1)
	assert.Equal(t, 5, d1.Connectivity[0].Neighbor)
	assert.Equal(t, " i j k", d1.Connectivity[0].Orientation)
	assert.Equal(t, "b.topo", d1.Connectivity[0].File)
	assert.Equal(t, 3, d1.Connectivity[0].Line)
	assert.Equal(t, [3]int{4, 0, 0}, d1.Connectivity[0].Box.Lo)
	assert.Equal(t, [3]int{0, 4, 4}, d1.Connectivity[0].NeighborBox.Hi)
	require.Len(t, d1.Boundaries, 2)
	assert.Equal(t, BoundaryRecord{File: "b.topo", Line: 6, Box: d1.Boundaries[0].Box, Kind: "inflow1", Inflow: 3, HasInflow: true}, d1.Boundaries[0])
	assert.False(t, d1.Boundaries[1].HasInflow)
	assert.Equal(t, []PropertyRecord{{File: "b.topo", Line: 8, Key: "itc", Value: "blockA"}}, d1.Properties)

	d2 := domains[1]
	assert.Equal(t, 5, d2.Block)
	require.Len(t, d2.Connectivity, 2)
	assert.Equal(t, 4, d2.Connectivity[0].Neighbor)
	assert.Equal(t, 1, d2.Connectivity[1].Neighbor) // explicit reference into file 1
	assert.Equal(t, "-j i k", d2.Connectivity[1].Orientation)
	assert.Equal(t, "gc", d2.Properties[0].Key)

	// Splicing record sets of the same block
	d1.Merge(d2)
	assert.Len(t, d1.Connectivity, 3)
	assert.Len(t, d1.Boundaries, 3)
	assert.Len(t, d1.Properties, 2)
}

func TestReadICEMTopologyErrors(t *testing.T) {
	renumber := func(file, domain int) (int, error) {
		if domain > 2 {
			return 0, fmt.Errorf("file %d has 2 domains", file+1)
		}
		return domain, nil
	}
	for _, text := range []string{
		"\tf\twall\t0,0:4,0:4\n", // before a section
		"# Connectivity for domain.1\n\tf\t4,0:4,0:4\tdomain.3\t0,0:4,0:4\t i j k\n",
		"# Connectivity for domain.1\n\tf\t4,0:4,0:4\tdomain.2\t0,0:4\t i j k\n",
		"# Connectivity for domain.1\n\tf\t4,0:4,0:4\tdomain.2\n",
		"# Connectivity for blocks.1\n",
		"# Boundary conditions and/or properties for domain.1\n\tf\tinflow1\tx\t0,0:4,0:4\n",
		"# Boundary conditions and/or properties for domain.1\n\tq\twall\t0,0:4,0:4\n",
		"# Boundary conditions and/or properties for domain.1\nwall 0,0:4,0:4\n",
		"# Boundary conditions and/or properties for domain.1\n\tb\titc\n",
	} {
		_, err := ReadICEMTopology("bad.topo", strings.NewReader(text), 0, renumber)
		var ie *types.InputError
		assert.True(t, errors.As(err, &ie), "%q", text)
	}
}

func TestCompanionFiles(t *testing.T) {
	dir := t.TempDir()
	{
		path := CompanionPath(dir, "blockB", ".gc")
		assert.Equal(t, filepath.Join(dir, "blockB.gc"), path)
		require.NoError(t, os.WriteFile(path, []byte("2 2\n1 1\n0 3\n"), 0644))
		ghost, err := ReadGhostFile(path)
		require.NoError(t, err)
		assert.Equal(t, [types.NFaces]int{2, 2, 1, 1, 0, 3}, ghost)
	}
	{
		path := CompanionPath(dir, "blockA.itc", ".itc")
		require.NoError(t, os.WriteFile(path, []byte("0.25\n0.75\n10\n0\n-1\n101325\n1.25\n1.4\n"), 0644))
		fs, err := ReadStateFile(path, 2)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.25, 0.75}, fs.Species)
		assert.Equal(t, r3.Vec{X: 10, Y: 0, Z: -1}, fs.Velocity)
		assert.Equal(t, 101325., fs.Pressure)
		assert.Equal(t, 1.25, fs.Density)
		assert.Equal(t, 1.4, fs.Gamma)
		_, err = ReadStateFile(path, 3)
		assert.Error(t, err)
	}
	{
		_, err := ReadGhostFile(filepath.Join(dir, "missing.gc"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
		_, err = ParseGhostDepths("x.gc", strings.NewReader("1 1 1 1 1 1.5"))
		assert.Error(t, err)
		_, err = ParseGhostDepths("x.gc", strings.NewReader("1 1 1 1 1"))
		assert.Error(t, err)
	}
	assert.Equal(t, "/abs/blockA.itc", CompanionPath("dir", "/abs/blockA", ".itc"))
}
