package bcs

import (
	"fmt"

	"github.com/notargets/mbgrid/types"
	"github.com/notargets/mbgrid/utils"
)

// Depth is the number of BC layers held for a face with ghost depth g
func Depth(g int) int {
	if g < 1 {
		return 1
	}
	return g
}

// FaceWindow is the cell window of the BC layers beyond face f of a block with the given cell counts
func FaceWindow(f types.Face, cells [3]int, ghost int) utils.Window {
	var (
		lo, hi = [3]int{1, 1, 1}, cells
		a      = f.Axis()
		d      = Depth(ghost)
	)
	if f.Side() == types.Min {
		lo[a], hi[a] = 1-d, 0
	} else {
		lo[a], hi[a] = cells[a]+1, cells[a]+d
	}
	return utils.NewWindow(lo, hi)
}

/*
FaceField holds one BC descriptor per cell of a face's BC window.
Each cell is written exactly once; a second write to the same cell is an error.
*/
type FaceField struct {
	Face   types.Face
	Window utils.Window
	BCs    []types.FaceBC
	unset  int
}

func NewFaceField(f types.Face, cells [3]int, ghost int) *FaceField {
	win := FaceWindow(f, cells, ghost)
	return &FaceField{
		Face:   f,
		Window: win,
		BCs:    make([]types.FaceBC, win.Size()),
		unset:  win.Size(),
	}
}

func (ff *FaceField) Set(i, j, k int, bc types.FaceBC) error {
	if !ff.Window.Contains(i, j, k) {
		return fmt.Errorf("cell (%d,%d,%d) outside of face %s window %s", i, j, k, ff.Face, ff.Window)
	}
	if bc == nil || bc.Kind() == types.BC_None {
		return fmt.Errorf("cell (%d,%d,%d) on face %s: refusing to write an unset BC", i, j, k, ff.Face)
	}
	idx := ff.Window.Index(i, j, k)
	if prev := ff.BCs[idx]; prev != nil {
		return fmt.Errorf("cell (%d,%d,%d) on face %s already has BC %s", i, j, k, ff.Face, prev.Kind())
	}
	ff.BCs[idx] = bc
	ff.unset--
	return nil
}

// At returns the descriptor of a cell, nil when unset or outside the window
func (ff *FaceField) At(i, j, k int) types.FaceBC {
	if !ff.Window.Contains(i, j, k) {
		return nil
	}
	return ff.BCs[ff.Window.Index(i, j, k)]
}

// Fill writes bc into every cell that is still unset and returns the count written
func (ff *FaceField) Fill(bc types.FaceBC) (n int, err error) {
	ff.Window.Each(func(i, j, k int) {
		if err != nil || ff.At(i, j, k) != nil {
			return
		}
		if err = ff.Set(i, j, k, bc); err == nil {
			n++
		}
	})
	return
}

func (ff *FaceField) Unset() int { return ff.unset }

// Level is the BC assignment of all six faces of a block at one multigrid level
type Level struct {
	Level int
	Cells [3]int
	Faces [types.NFaces]*FaceField
}

func NewLevel(level int, cells [3]int, ghost [types.NFaces]int) *Level {
	lv := &Level{Level: level, Cells: cells}
	for f := range lv.Faces {
		lv.Faces[f] = NewFaceField(types.Face(f), cells, ghost[f])
	}
	return lv
}

// Complete fails when any face cell was left without a BC
func (lv *Level) Complete(block int) error {
	for _, ff := range lv.Faces {
		if ff.Unset() != 0 {
			return &types.InputError{Block: block,
				Msg: fmt.Sprintf("level %d, face %s: %d of %d boundary cells have no boundary condition",
					lv.Level, ff.Face, ff.Unset(), ff.Window.Size())}
		}
	}
	return nil
}
