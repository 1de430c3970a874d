package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/mbgrid/types"
)

// Box is the axis aligned extent of a Cartesian block
type Box struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

func (b Box) Check() error {
	if b.XMax <= b.XMin || b.YMax <= b.YMin || b.ZMax <= b.ZMin {
		return fmt.Errorf("bounding box must have max > min on every axis, have %+v", b)
	}
	return nil
}

// NewCartesianNodes builds the level 1 nodes of a uniformly spaced block, ghosts included
func NewCartesianNodes(box Box, cells [3]int, ghost [types.NFaces]int) (na *NodeArray) {
	na = NewNodeArray(cells, ghost)
	var (
		dx = (box.XMax - box.XMin) / float64(cells[0])
		dy = (box.YMax - box.YMin) / float64(cells[1])
		dz = (box.ZMax - box.ZMin) / float64(cells[2])
	)
	na.Interior().Each(func(i, j, k int) {
		na.Set(i, j, k, r3.Vec{
			X: box.XMin + float64(i)*dx,
			Y: box.YMin + float64(j)*dy,
			Z: box.ZMin + float64(k)*dz,
		})
	})
	na.ExtrapolateGhosts()
	return
}
