package icem

import (
	"fmt"

	"github.com/notargets/mbgrid/bcs"
	"github.com/notargets/mbgrid/types"
	"github.com/notargets/mbgrid/utils"
)

// Patch is a rectangular part of one block face, given as a box of level 1 node indices
type Patch struct {
	Block int
	Box   utils.Window
	Cells [3]int // level 1 cell counts of the block
	Face  types.Face
}

/*
NewPatch locates the face of a node box. Exactly one axis must be constant and it must
sit on the block boundary: node 0 is the min face, node N the max face.
*/
func NewPatch(block int, box utils.Window, cells [3]int) (p Patch, err error) {
	p = Patch{Block: block, Box: box, Cells: cells}
	for n := 0; n < 3; n++ {
		if box.Lo[n] < 0 || box.Hi[n] > cells[n] {
			err = fmt.Errorf("block %d: box %s exceeds node range 0:%d on axis %s",
				block, box, cells[n], types.Axis(n))
			return
		}
	}
	constant := box.ConstantAxes()
	if len(constant) != 1 {
		err = fmt.Errorf("block %d: box %s must be constant along exactly one axis, found %d",
			block, box, len(constant))
		return
	}
	a := constant[0]
	switch box.Lo[a] {
	case 0:
		p.Face = types.NewFace(types.Axis(a), types.Min)
	case cells[a]:
		p.Face = types.NewFace(types.Axis(a), types.Max)
	default:
		err = fmt.Errorf("block %d: box %s lies inside the block, not on a face", block, box)
	}
	return
}

// levelBox scales the box and cell counts to a multigrid level
func (p Patch) levelBox(level int) (box utils.Window, cells [3]int, err error) {
	f := 1 << (level - 1)
	for n := 0; n < 3; n++ {
		for _, v := range []int{p.Box.Lo[n], p.Box.Hi[n], p.Cells[n]} {
			if v%f != 0 {
				err = &types.GeometryError{Block: p.Block, Level: level, Axis: types.Axis(n), Count: v,
					Msg: fmt.Sprintf("patch %s index %d is not divisible by %d", p.Box, v, f)}
				return
			}
		}
		box.Lo[n], box.Hi[n], cells[n] = p.Box.Lo[n]/f, p.Box.Hi[n]/f, p.Cells[n]/f
	}
	return
}

// CellWindow is the window of ghost cells beyond the patch at a level, ghost layers deep
func (p Patch) CellWindow(level, ghost int) (win utils.Window, err error) {
	var (
		box   utils.Window
		cells [3]int
	)
	if box, cells, err = p.levelBox(level); err != nil {
		return
	}
	for n := 0; n < 3; n++ {
		win.Lo[n], win.Hi[n] = box.Lo[n]+1, box.Hi[n]
	}
	a := p.Face.Axis()
	d := bcs.Depth(ghost)
	if p.Face.Side() == types.Min {
		win.Lo[a], win.Hi[a] = 1-d, 0
	} else {
		win.Lo[a], win.Hi[a] = cells[a]+1, cells[a]+d
	}
	return
}

// Connection joins a patch of the local block to a patch of a neighbor block
type Connection struct {
	Local    Patch
	Neighbor Patch
	Orient   Orientation
}

/*
NewConnection checks that the orientation agrees with the two patches: the local face
normal must map onto the neighbor face normal, positively when the faces sit on opposite
sides (min against max) and negatively when on the same side, and every tangential span
must match the span of the neighbor axis it maps onto.
*/
func NewConnection(local, nbr Patch, o Orientation) (c *Connection, err error) {
	var (
		a      = local.Face.Axis()
		b      = nbr.Face.Axis()
		t1, t2 = a.Tangents()
	)
	if o[a].Axis != b {
		err = fmt.Errorf("orientation %q maps local normal %s onto neighbor %s, neighbor face is %s",
			o, a, o[a].Axis, nbr.Face)
		return
	}
	wantSign := 1
	if local.Face.Side() == nbr.Face.Side() {
		wantSign = -1
	}
	if o[a].Sign != wantSign {
		err = fmt.Errorf("orientation %q has the wrong normal sign for faces %s and %s",
			o, local.Face, nbr.Face)
		return
	}
	for _, t := range []types.Axis{t1, t2} {
		nb := o[t].Axis
		if local.Box.Hi[t]-local.Box.Lo[t] != nbr.Box.Hi[nb]-nbr.Box.Lo[nb] {
			err = fmt.Errorf("orientation %q: local %s span %d:%d does not match neighbor %s span %d:%d",
				o, t, local.Box.Lo[t], local.Box.Hi[t], nb, nbr.Box.Lo[nb], nbr.Box.Hi[nb])
			return
		}
		if local.Box.Hi[t] == local.Box.Lo[t] {
			err = fmt.Errorf("patch %s of block %d is degenerate along %s", local.Box, local.Block, t)
			return
		}
	}
	c = &Connection{Local: local, Neighbor: nbr, Orient: o}
	return
}

// Reverse is the same connection seen from the neighbor
func (c *Connection) Reverse() *Connection {
	return &Connection{Local: c.Neighbor, Neighbor: c.Local, Orient: c.Orient.Inverse()}
}

// levelMap holds a connection scaled to one level
type levelMap struct {
	c              *Connection
	lbox, nbox     utils.Window
	lcells, ncells [3]int
}

func (c *Connection) atLevel(level int) (lm levelMap, err error) {
	lm.c = c
	if lm.lbox, lm.lcells, err = c.Local.levelBox(level); err != nil {
		return
	}
	lm.nbox, lm.ncells, err = c.Neighbor.levelBox(level)
	return
}

/*
mapCell returns the neighbor cell matching a local ghost cell.
Along the face normal, ghost layer m re-enters the neighbor as its m-th cell from the
neighbor face. Along a tangential axis the neighbor index advances with the local index
when the mapping sign is positive and is mirrored within the neighbor span when negative.
*/
func (lm levelMap) mapCell(cell [3]int) (nbr [3]int) {
	var (
		lf, nf = lm.c.Local.Face, lm.c.Neighbor.Face
		a, b   = lf.Axis(), nf.Axis()
		t1, t2 = a.Tangents()
		m      int
	)
	if lf.Side() == types.Min {
		m = 1 - cell[a]
	} else {
		m = cell[a] - lm.lcells[a]
	}
	if nf.Side() == types.Min {
		nbr[b] = m
	} else {
		nbr[b] = lm.ncells[b] + 1 - m
	}
	for _, t := range []types.Axis{t1, t2} {
		var (
			am  = lm.c.Orient[t]
			off = cell[t] - (lm.lbox.Lo[t] + 1)
		)
		if am.Sign > 0 {
			nbr[am.Axis] = lm.nbox.Lo[am.Axis] + 1 + off
		} else {
			nbr[am.Axis] = lm.nbox.Hi[am.Axis] - off
		}
	}
	return
}

// Map returns the neighbor cell of a local ghost cell at a level
func (c *Connection) Map(level int, cell [3]int) (nbr [3]int, err error) {
	var lm levelMap
	if lm, err = c.atLevel(level); err != nil {
		return
	}
	nbr = lm.mapCell(cell)
	return
}

/*
Apply writes an adjacent descriptor into every ghost cell of the patch at a level. The
ghost layers must fit inside the neighbor's cells along its face normal.
*/
func (c *Connection) Apply(level, ghost int, ff *bcs.FaceField) (err error) {
	var (
		lm  levelMap
		win utils.Window
	)
	if ff.Face != c.Local.Face {
		return fmt.Errorf("connection on face %s applied to face %s", c.Local.Face, ff.Face)
	}
	if lm, err = c.atLevel(level); err != nil {
		return
	}
	if b := c.Neighbor.Face.Axis(); bcs.Depth(ghost) > lm.ncells[b] {
		return &types.GeometryError{Block: c.Local.Block, Level: level, Axis: b, Count: lm.ncells[b],
			Msg: fmt.Sprintf("%d ghost layers on face %s reach past the %d cells of block %d",
				bcs.Depth(ghost), c.Local.Face, lm.ncells[b], c.Neighbor.Block)}
	}
	if win, err = c.Local.CellWindow(level, ghost); err != nil {
		return
	}
	win.Each(func(i, j, k int) {
		if err != nil {
			return
		}
		bc := types.Adjacent{Block: c.Neighbor.Block, Offset: lm.mapCell([3]int{i, j, k})}
		if err = ff.Set(i, j, k, bc); err != nil {
			err = fmt.Errorf("block %d level %d: %w", c.Local.Block, level, err)
		}
	})
	return
}

// Tag is a physical boundary patch
type Tag struct {
	Patch Patch
	BC    types.FaceBC
}

func (tg Tag) Apply(level, ghost int, ff *bcs.FaceField) (err error) {
	var win utils.Window
	if ff.Face != tg.Patch.Face {
		return fmt.Errorf("boundary tag on face %s applied to face %s", tg.Patch.Face, ff.Face)
	}
	if win, err = tg.Patch.CellWindow(level, ghost); err != nil {
		return
	}
	win.Each(func(i, j, k int) {
		if err != nil {
			return
		}
		if err = ff.Set(i, j, k, tg.BC); err != nil {
			err = fmt.Errorf("block %d level %d: %w", tg.Patch.Block, level, err)
		}
	})
	return
}
