package mesh

import (
	"fmt"

	"github.com/notargets/mbgrid/types"
)

/*
LevelDims returns the cell counts of levels 1..nl, where level L has the level 1
counts divided by 2^(L-1). The first odd count met while halving is reported as a
GeometryError naming the block, the level that could not be formed and the axis.
*/
func LevelDims(block int, cells [3]int, nl int) (dims [][3]int, err error) {
	if nl < 1 {
		err = fmt.Errorf("number of multigrid levels must be at least 1, have %d", nl)
		return
	}
	for n := 0; n < 3; n++ {
		if cells[n] < 1 {
			err = &types.GeometryError{Block: block, Level: 1, Axis: types.Axis(n), Count: cells[n],
				Msg: fmt.Sprintf("cell count %d must be positive", cells[n])}
			return
		}
	}
	dims = make([][3]int, nl)
	dims[0] = cells
	for L := 2; L <= nl; L++ {
		prev := dims[L-2]
		for n := 0; n < 3; n++ {
			if prev[n]%2 != 0 {
				dims = nil
				err = &types.GeometryError{Block: block, Level: L, Axis: types.Axis(n), Count: prev[n]}
				return
			}
			dims[L-1][n] = prev[n] / 2
		}
	}
	return
}

/*
Coarsen forms the next coarser level of a node array.
Interior nodes are the fine nodes at even positions, copied exactly. The ghost depth is
unchanged and ghost nodes are extrapolated again from the coarse boundary spacing rather
than sampled from the fine ghosts.
*/
func Coarsen(fine *NodeArray) (coarse *NodeArray, err error) {
	var cells [3]int
	for n := 0; n < 3; n++ {
		if fine.Cells[n]%2 != 0 {
			err = fmt.Errorf("can not coarsen %d cells along axis %s", fine.Cells[n], types.Axis(n))
			return
		}
		cells[n] = fine.Cells[n] / 2
	}
	coarse = NewNodeArray(cells, fine.Ghost)
	coarse.Interior().Each(func(i, j, k int) {
		coarse.Set(i, j, k, fine.At(2*i, 2*j, 2*k))
	})
	coarse.ExtrapolateGhosts()
	return
}

// BuildLevels returns levels 1..nl, level 1 being the array passed in
func BuildLevels(block int, level1 *NodeArray, nl int) (levels []*NodeArray, err error) {
	if _, err = LevelDims(block, level1.Cells, nl); err != nil {
		return
	}
	levels = make([]*NodeArray, nl)
	levels[0] = level1
	for L := 2; L <= nl; L++ {
		if levels[L-1], err = Coarsen(levels[L-2]); err != nil {
			levels = nil
			return
		}
	}
	return
}
