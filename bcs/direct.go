package bcs

import (
	"fmt"

	"github.com/notargets/mbgrid/mesh"
	"github.com/notargets/mbgrid/types"
)

/*
DirectResolver assigns face BCs for blocks given directly as Cartesian boxes.

Adjacent blocks are assumed to share orientation: a face connects to the opposite face
of its neighbor with no axis permutation. Adjacent descriptors carry the aligned zero
offset, computed once and reused at every level since factor 2 coarsening keeps
aligned blocks aligned.
*/
type DirectResolver struct {
	Table        *mesh.Table
	InflowStates int // rows of the inflow state table, 0 when no table is supplied
}

func NewDirectResolver(tbl *mesh.Table, inflowStates int) *DirectResolver {
	return &DirectResolver{Table: tbl, InflowStates: inflowStates}
}

// Validate checks neighbor ids, matching face sizes and inflow table references
func (r *DirectResolver) Validate() error {
	for _, d := range r.Table.Blocks {
		for f, fs := range d.Faces {
			face := types.Face(f)
			switch {
			case fs.Kind == types.BC_None:
				return &types.InputError{Block: d.ID, Msg: fmt.Sprintf("face %s has no boundary condition", face)}
			case fs.Kind == types.BC_Adjacent:
				if err := r.checkNeighbor(d, face, fs); err != nil {
					return err
				}
			case fs.Kind.IsInflow():
				if fs.Inflow < 0 || (r.InflowStates > 0 && fs.Inflow >= r.InflowStates) {
					return &types.CrossRefError{Block: d.ID,
						Msg: fmt.Sprintf("face %s references inflow state %d, table has %d rows",
							face, fs.Inflow, r.InflowStates)}
				}
			}
		}
	}
	return nil
}

func (r *DirectResolver) checkNeighbor(d *mesh.Descriptor, face types.Face, fs mesh.FaceSpec) error {
	nbr := r.Table.Block(fs.Neighbor)
	if nbr == nil {
		return &types.CrossRefError{Block: d.ID,
			Msg: fmt.Sprintf("face %s is adjacent to block %d, table has %d blocks", face, fs.Neighbor, r.Table.Len())}
	}
	t1, t2 := face.Axis().Tangents()
	if d.Cells[t1] != nbr.Cells[t1] || d.Cells[t2] != nbr.Cells[t2] {
		return &types.CrossRefError{Block: d.ID,
			Msg: fmt.Sprintf("face %s has %dx%d cells, face %s of block %d has %dx%d",
				face, d.Cells[t1], d.Cells[t2], face.Opposite(), nbr.ID, nbr.Cells[t1], nbr.Cells[t2])}
	}
	back := nbr.Faces[face.Opposite()]
	if back.Kind != types.BC_Adjacent || back.Neighbor != d.ID {
		return &types.CrossRefError{Block: d.ID,
			Msg: fmt.Sprintf("face %s is adjacent to block %d, but face %s of block %d does not point back",
				face, nbr.ID, face.Opposite(), nbr.ID)}
	}
	return nil
}

// Resolve builds the BC assignment of block id at one level
func (r *DirectResolver) Resolve(id, level int, cells [3]int) (lv *Level, err error) {
	d := r.Table.Block(id)
	if d == nil {
		err = fmt.Errorf("no block with id %d", id)
		return
	}
	lv = NewLevel(level, cells, d.Ghost)
	for f, fs := range d.Faces {
		var bc types.FaceBC
		if bc, err = types.NewFaceBC(fs.Kind, fs.Neighbor, fs.Inflow); err != nil {
			err = &types.InputError{Block: id, Msg: fmt.Sprintf("face %s", types.Face(f)), Err: err}
			return
		}
		if fs.Kind == types.BC_Adjacent {
			if err = r.checkDepth(d, types.Face(f), level); err != nil {
				return nil, err
			}
		}
		if _, err = lv.Faces[f].Fill(bc); err != nil {
			return
		}
	}
	err = lv.Complete(id)
	return
}

// checkDepth requires the ghost layers of an adjacent face to fit inside the neighbor at a level
func (r *DirectResolver) checkDepth(d *mesh.Descriptor, face types.Face, level int) error {
	nbr := r.Table.Block(d.Faces[face].Neighbor)
	if nbr == nil {
		return &types.CrossRefError{Block: d.ID, Level: level,
			Msg: fmt.Sprintf("face %s is adjacent to block %d, table has %d blocks", face, d.Faces[face].Neighbor, r.Table.Len())}
	}
	var (
		a = face.Axis()
		n = nbr.Cells[a] >> uint(level-1)
	)
	if depth := Depth(d.Ghost[face]); depth > n {
		return &types.GeometryError{Block: d.ID, Level: level, Axis: a, Count: n,
			Msg: fmt.Sprintf("%d ghost layers on face %s reach past the %d cells of block %d",
				depth, face, n, nbr.ID)}
	}
	return nil
}

/*
AlignedNeighbor translates a ghost cell beyond face f of a block into the neighbor's index
space for an aligned connection: the normal index re-enters the neighbor from the opposite
face, the tangential indices pass through.
*/
func AlignedNeighbor(f types.Face, cell [3]int, cells, nbrCells [3]int) (nbr [3]int) {
	nbr = cell
	a := f.Axis()
	if f.Side() == types.Max {
		nbr[a] = cell[a] - cells[a]
	} else {
		nbr[a] = cell[a] + nbrCells[a]
	}
	return
}
