package icem

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/mbgrid/bcs"
	"github.com/notargets/mbgrid/types"
	"github.com/notargets/mbgrid/utils"
)

// faceBox is the full node box of face f
func faceBox(f types.Face, cells [3]int) (w utils.Window) {
	w.Hi = cells
	a := f.Axis()
	if f.Side() == types.Min {
		w.Hi[a] = 0
	} else {
		w.Lo[a] = cells[a]
	}
	return
}

func mustPatch(t *testing.T, block int, box utils.Window, cells [3]int) Patch {
	t.Helper()
	p, err := NewPatch(block, box, cells)
	require.NoError(t, err)
	return p
}

func mustConnection(t *testing.T, lf, nf types.Face, lc, nc [3]int, token string) *Connection {
	t.Helper()
	o, err := ParseOrientation(token)
	require.NoError(t, err)
	c, err := NewConnection(mustPatch(t, 1, faceBox(lf, lc), lc), mustPatch(t, 2, faceBox(nf, nc), nc), o)
	require.NoError(t, err)
	return c
}

func TestNewPatch(t *testing.T) {
	cells := [3]int{4, 6, 8}
	for f := 0; f < types.NFaces; f++ {
		p, err := NewPatch(3, faceBox(types.Face(f), cells), cells)
		require.NoError(t, err)
		assert.Equal(t, types.Face(f), p.Face)
	}
	box, _ := utils.ParseBox("2,0:6,0:8")
	_, err := NewPatch(3, box, cells)
	assert.Error(t, err) // interior plane
	box, _ = utils.ParseBox("0,0,0:8")
	_, err = NewPatch(3, box, cells)
	assert.Error(t, err) // edge
	box, _ = utils.ParseBox("0:4,0:7,8")
	_, err = NewPatch(3, box, cells)
	assert.Error(t, err) // outside
}

func TestIdentityOrientation(t *testing.T) {
	// Two 4x4x4 blocks without ghost cells joined +i to -i
	cells := [3]int{4, 4, 4}
	c := mustConnection(t, types.FaceIMax, types.FaceIMin, cells, cells, " i j k")
	ff := bcs.NewFaceField(types.FaceIMax, cells, 0)
	require.NoError(t, c.Apply(1, 0, ff))
	assert.Equal(t, 0, ff.Unset())
	for k := 1; k <= 4; k++ {
		for j := 1; j <= 4; j++ {
			adj, ok := ff.At(5, j, k).(types.Adjacent)
			require.True(t, ok)
			assert.Equal(t, 2, adj.Block)
			// Unshifted in the face, the normal enters the neighbor at its first cell
			assert.Equal(t, [3]int{1, j, k}, adj.Offset)
			if j > 1 {
				prev := ff.At(5, j-1, k).(types.Adjacent)
				assert.Equal(t, prev.Offset[1]+1, adj.Offset[1])
			}
			if k > 1 {
				prev := ff.At(5, j, k-1).(types.Adjacent)
				assert.Equal(t, prev.Offset[2]+1, adj.Offset[2])
			}
		}
	}
}

func TestMirroredOrientations(t *testing.T) {
	cells := [3]int{4, 4, 4}
	{ // "-i j k" across j faces: i mirrored, j and k pass through
		c := mustConnection(t, types.FaceJMax, types.FaceJMin, cells, cells, "-i j k")
		for k := 1; k <= 4; k++ {
			for i := 1; i <= 4; i++ {
				nbr, err := c.Map(1, [3]int{i, 5, k})
				require.NoError(t, err)
				assert.Equal(t, [3]int{5 - i, 1, k}, nbr)
			}
		}
	}
	{ // "-j i k" across k faces: neighbor j runs backward as local i advances
		c := mustConnection(t, types.FaceKMax, types.FaceKMin, cells, cells, "-j i k")
		for j := 1; j <= 4; j++ {
			prev := 5
			for i := 1; i <= 4; i++ {
				nbr, err := c.Map(1, [3]int{i, j, 5})
				require.NoError(t, err)
				assert.Equal(t, prev-1, nbr[1])
				prev = nbr[1]
				assert.Equal(t, j, nbr[0])
				assert.Equal(t, 1, nbr[2])
			}
		}
	}
	{ // Same side faces reverse the normal: +i against +i
		nc := [3]int{6, 4, 4}
		c := mustConnection(t, types.FaceIMax, types.FaceIMax, cells, nc, "-i-j k")
		nbr, err := c.Map(1, [3]int{5, 1, 3})
		require.NoError(t, err)
		assert.Equal(t, [3]int{6, 4, 3}, nbr)
		nbr, err = c.Map(1, [3]int{6, 1, 3})
		require.NoError(t, err)
		assert.Equal(t, [3]int{5, 4, 3}, nbr)
	}
}

func TestNormalRuleOnIFaces(t *testing.T) {
	// "-j i k" sends the local i normal onto neighbor j, which does not pair +i with -i
	cells := [3]int{4, 4, 4}
	o, err := ParseOrientation("-j i k")
	require.NoError(t, err)
	_, err = NewConnection(mustPatch(t, 1, faceBox(types.FaceIMax, cells), cells),
		mustPatch(t, 2, faceBox(types.FaceIMin, cells), cells), o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "local normal i onto neighbor j")
}

func TestGhostDepthPastNeighbor(t *testing.T) {
	// Two 4x4x4 blocks with two ghost layers: level 3 leaves one neighbor cell along i
	cells := [3]int{4, 4, 4}
	c := mustConnection(t, types.FaceIMax, types.FaceIMin, cells, cells, " i j k")
	require.NoError(t, c.Apply(2, 2, bcs.NewFaceField(types.FaceIMax, [3]int{2, 2, 2}, 2)))

	ff := bcs.NewFaceField(types.FaceIMax, [3]int{1, 1, 1}, 2)
	err := c.Apply(3, 2, ff)
	var ge *types.GeometryError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, 1, ge.Block)
	assert.Equal(t, 3, ge.Level)
	assert.Equal(t, types.AxisI, ge.Axis)
	assert.Equal(t, 1, ge.Count)
	assert.Equal(t, ff.Window.Size(), ff.Unset())

	// One layer still fits
	require.NoError(t, c.Apply(3, 1, bcs.NewFaceField(types.FaceIMax, [3]int{1, 1, 1}, 1)))
}

func TestSelfAdjacencyRoundTrip(t *testing.T) {
	// A block without ghost cells whose +i face wraps onto its own -i face
	cells := [3]int{4, 4, 4}
	fwd, err := NewConnection(
		mustPatch(t, 1, faceBox(types.FaceIMax, cells), cells),
		mustPatch(t, 1, faceBox(types.FaceIMin, cells), cells),
		Orientation{{types.AxisI, 1}, {types.AxisJ, 1}, {types.AxisK, 1}})
	require.NoError(t, err)
	back := fwd.Reverse()
	for k := 1; k <= 4; k++ {
		for j := 1; j <= 4; j++ {
			start := [3]int{4, j, k}
			across, err := fwd.Map(1, [3]int{start[0] + 1, j, k})
			require.NoError(t, err)
			assert.Equal(t, [3]int{1, j, k}, across)
			home, err := back.Map(1, [3]int{across[0] - 1, across[1], across[2]})
			require.NoError(t, err)
			assert.Equal(t, start, home)
		}
	}
}

func TestMultigridPatches(t *testing.T) {
	// The upper half of +i of block 1 meets the lower half of -i of block 2
	lc, nc := [3]int{8, 8, 8}, [3]int{8, 8, 8}
	lbox, _ := utils.ParseBox("8,4:8,0:8")
	nbox, _ := utils.ParseBox("0,0:4,0:8")
	c, err := NewConnection(mustPatch(t, 1, lbox, lc), mustPatch(t, 2, nbox, nc),
		Orientation{{types.AxisI, 1}, {types.AxisJ, 1}, {types.AxisK, 1}})
	require.NoError(t, err)
	for _, tc := range []struct {
		level     int
		cell, nbr [3]int
	}{
		{1, [3]int{9, 5, 1}, [3]int{1, 1, 1}},
		{1, [3]int{10, 8, 8}, [3]int{2, 4, 8}},
		{2, [3]int{5, 3, 2}, [3]int{1, 1, 2}},
		{3, [3]int{3, 2, 1}, [3]int{1, 1, 1}},
	} {
		nbr, err := c.Map(tc.level, tc.cell)
		require.NoError(t, err)
		assert.Equal(t, tc.nbr, nbr, "level %d cell %v", tc.level, tc.cell)
	}
	_, err = c.Map(4, [3]int{2, 1, 1})
	var ge *types.GeometryError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, 4, ge.Level)
	assert.Equal(t, 1, ge.Block)

	// The connection and a wall tag together cover the face exactly once
	wallBox, _ := utils.ParseBox("8,0:4,0:8")
	tag := Tag{Patch: mustPatch(t, 1, wallBox, lc), BC: types.Plain{K: types.BC_Wall}}
	for level := 1; level <= 3; level++ {
		cells := [3]int{8 >> (level - 1), 8 >> (level - 1), 8 >> (level - 1)}
		ff := bcs.NewFaceField(types.FaceIMax, cells, 2)
		require.NoError(t, c.Apply(level, 2, ff))
		require.NoError(t, tag.Apply(level, 2, ff))
		assert.Equal(t, 0, ff.Unset(), "level %d", level)
		assert.Error(t, tag.Apply(level, 2, ff))
		assert.Error(t, tag.Apply(level, 2, bcs.NewFaceField(types.FaceIMin, cells, 2)))
	}
}

func TestNewConnectionChecks(t *testing.T) {
	cells := [3]int{4, 4, 4}
	lp := mustPatch(t, 1, faceBox(types.FaceIMax, cells), cells)
	{ // Normal maps onto the wrong neighbor axis
		o, _ := ParseOrientation(" j i k")
		_, err := NewConnection(lp, mustPatch(t, 2, faceBox(types.FaceIMin, cells), cells), o)
		assert.Error(t, err)
	}
	{ // Opposite sides need a positive normal
		o, _ := ParseOrientation("-i-j k")
		_, err := NewConnection(lp, mustPatch(t, 2, faceBox(types.FaceIMin, cells), cells), o)
		assert.Error(t, err)
	}
	{ // Span mismatch after the permutation
		nc := [3]int{4, 4, 8}
		o, _ := ParseOrientation(" i j k")
		_, err := NewConnection(lp, mustPatch(t, 2, faceBox(types.FaceIMin, nc), nc), o)
		assert.Error(t, err)
	}
}

type facePair struct {
	local, nbr types.Face
	o          Orientation
}

// consistentPairs lists every orientation with every local face and the neighbor face it implies
func consistentPairs() (pairs []facePair) {
	for _, o := range AllOrientations() {
		for f := 0; f < types.NFaces; f++ {
			lf := types.Face(f)
			am := o[lf.Axis()]
			side := 1 - lf.Side()
			if am.Sign < 0 {
				side = lf.Side()
			}
			pairs = append(pairs, facePair{local: lf, nbr: types.NewFace(am.Axis, side), o: o})
		}
	}
	return
}

func TestAllOrientationsBijective(t *testing.T) {
	var (
		lc    = [3]int{4, 6, 8}
		ghost = 2
	)
	pairs := consistentPairs()
	require.Len(t, pairs, NOrientations*types.NFaces)
	for _, fp := range pairs {
		var nc [3]int
		for a := 0; a < 3; a++ {
			nc[fp.o[a].Axis] = lc[a]
		}
		name := fmt.Sprintf("%q %s->%s", fp.o, fp.local, fp.nbr)
		c, err := NewConnection(mustPatch(t, 1, faceBox(fp.local, lc), lc),
			mustPatch(t, 2, faceBox(fp.nbr, nc), nc), fp.o)
		require.NoError(t, err, name)
		rev := c.Reverse()
		for level := 1; level <= 2; level++ {
			f := 1 << (level - 1)
			lcl := [3]int{lc[0] / f, lc[1] / f, lc[2] / f}
			ncl := [3]int{nc[0] / f, nc[1] / f, nc[2] / f}
			win, err := c.Local.CellWindow(level, ghost)
			require.NoError(t, err, name)

			// The neighbor cells are its first ghost-depth layers inside the shared face
			want := bcs.FaceWindow(fp.nbr, ncl, ghost)
			b := fp.nbr.Axis()
			if fp.nbr.Side() == types.Min {
				want.Lo[b], want.Hi[b] = 1, ghost
			} else {
				want.Lo[b], want.Hi[b] = ncl[b]-ghost+1, ncl[b]
			}
			hit := make(map[[3]int]bool)
			a := fp.local.Axis()
			win.Each(func(i, j, k int) {
				cell := [3]int{i, j, k}
				nbr, err := c.Map(level, cell)
				require.NoError(t, err, name)
				require.True(t, want.Contains(nbr[0], nbr[1], nbr[2]), "%s level %d: %v -> %v", name, level, cell, nbr)
				require.False(t, hit[nbr], "%s level %d: %v hit twice", name, level, nbr)
				hit[nbr] = true

				// Stepping out of the neighbor at the same layer lands back on the local face
				var m int
				if fp.local.Side() == types.Min {
					m = 1 - cell[a]
				} else {
					m = cell[a] - lcl[a]
				}
				ghostN := nbr
				if fp.nbr.Side() == types.Min {
					ghostN[b] = 1 - m
				} else {
					ghostN[b] = ncl[b] + m
				}
				home, err := rev.Map(level, ghostN)
				require.NoError(t, err, name)
				wantHome := cell
				if fp.local.Side() == types.Min {
					wantHome[a] = m
				} else {
					wantHome[a] = lcl[a] + 1 - m
				}
				require.Equal(t, wantHome, home, "%s level %d", name, level)
			})
			assert.Equal(t, want.Size(), len(hit), name)
		}
	}
}
