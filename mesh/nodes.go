package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/mbgrid/types"
	"github.com/notargets/mbgrid/utils"
)

/*
NodeArray holds the node coordinates of one block at one level.

Interior nodes along an axis with N cells are 0..N. The window extends below 0 by
the ghost depth of the min face and above N by the ghost depth of the max face.
*/
type NodeArray struct {
	Cells [3]int
	Ghost [types.NFaces]int
	Win   utils.Window
	X     []r3.Vec
}

func NewNodeArray(cells [3]int, ghost [types.NFaces]int) *NodeArray {
	var lo, hi [3]int
	for n := 0; n < 3; n++ {
		lo[n] = -ghost[2*n]
		hi[n] = cells[n] + ghost[2*n+1]
	}
	win := utils.NewWindow(lo, hi)
	return &NodeArray{
		Cells: cells,
		Ghost: ghost,
		Win:   win,
		X:     make([]r3.Vec, win.Size()),
	}
}

func (na *NodeArray) At(i, j, k int) r3.Vec {
	return na.X[na.Win.Index(i, j, k)]
}

func (na *NodeArray) Set(i, j, k int, v r3.Vec) {
	na.X[na.Win.Index(i, j, k)] = v
}

// Interior is the window of nodes 0..N on every axis
func (na *NodeArray) Interior() utils.Window {
	return utils.NewWindow([3]int{}, na.Cells)
}

/*
ExtrapolateGhosts fills every ghost node by linear extrapolation of the boundary spacing.
Axes are swept in order: i ghosts over interior j,k, then j ghosts over the i-extended
range, then k ghosts over the i,j-extended range, so edge and corner ghosts are filled too.
*/
func (na *NodeArray) ExtrapolateGhosts() {
	for a := 0; a < 3; a++ {
		var lo, hi [3]int
		for n := 0; n < 3; n++ {
			switch {
			case n < a:
				lo[n], hi[n] = na.Win.Lo[n], na.Win.Hi[n]
			default:
				lo[n], hi[n] = 0, na.Cells[n]
			}
		}
		// Sweep the face plane of axis a
		lo[a], hi[a] = 0, 0
		nmax := na.Cells[a]
		utils.NewWindow(lo, hi).Each(func(i, j, k int) {
			ijk := [3]int{i, j, k}
			at := func(idx int) r3.Vec {
				ijk[a] = idx
				return na.At(ijk[0], ijk[1], ijk[2])
			}
			set := func(idx int, v r3.Vec) {
				ijk[a] = idx
				na.Set(ijk[0], ijk[1], ijk[2], v)
			}
			x0, x1 := at(0), at(1)
			dMin := r3.Sub(x0, x1)
			for m := 1; m <= na.Ghost[2*a]; m++ {
				set(-m, r3.Add(x0, r3.Scale(float64(m), dMin)))
			}
			xN, xN1 := at(nmax), at(nmax-1)
			dMax := r3.Sub(xN, xN1)
			for m := 1; m <= na.Ghost[2*a+1]; m++ {
				set(nmax+m, r3.Add(xN, r3.Scale(float64(m), dMax)))
			}
		})
	}
}

// Bounds returns the min/max corners of the interior nodes
func (na *NodeArray) Bounds() (min, max r3.Vec) {
	first := true
	na.Interior().Each(func(i, j, k int) {
		x := na.At(i, j, k)
		if first {
			min, max = x, x
			first = false
			return
		}
		min = r3.Vec{X: minf(min.X, x.X), Y: minf(min.Y, x.Y), Z: minf(min.Z, x.Z)}
		max = r3.Vec{X: maxf(max.X, x.X), Y: maxf(max.Y, x.Y), Z: maxf(max.Z, x.Z)}
	})
	return
}

func (na *NodeArray) String() string {
	return fmt.Sprintf("cells %v, ghost %v, node window %s", na.Cells, na.Ghost, na.Win)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
