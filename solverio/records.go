package solverio

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/mbgrid/bcs"
	"github.com/notargets/mbgrid/mesh"
	"github.com/notargets/mbgrid/types"
	"github.com/notargets/mbgrid/utils"
)

// MeshRecord is the node field of one block at one level, ghost nodes included, i fastest
type MeshRecord struct {
	Block, Level int
	Window       utils.Window
	X            []r3.Vec
}

func NewMeshRecord(block, level int, na *mesh.NodeArray) MeshRecord {
	return MeshRecord{
		Block:  block,
		Level:  level,
		Window: na.Win,
		X:      append([]r3.Vec(nil), na.X...),
	}
}

type FaceRecord struct {
	Face   types.Face
	Window utils.Window
	BCs    []types.FaceBC
}

// BCRecord holds the six faces of a block at one level in face order -i,+i,-j,+j,-k,+k
type BCRecord struct {
	Block, Level int
	Faces        [types.NFaces]FaceRecord
}

// NewBCRecord copies a resolved BC level; every face cell must have a descriptor
func NewBCRecord(block int, lv *bcs.Level) (rec BCRecord, err error) {
	if err = lv.Complete(block); err != nil {
		return
	}
	rec = BCRecord{Block: block, Level: lv.Level}
	for f, ff := range lv.Faces {
		rec.Faces[f] = FaceRecord{
			Face:   ff.Face,
			Window: ff.Window,
			BCs:    append([]types.FaceBC(nil), ff.BCs...),
		}
	}
	return
}

// StateRecord is the initial state field over the interior cells of one block at one level
type StateRecord struct {
	Block, Level int
	Timestep     int
	Ns           int
	Cells        [3]int
	Values       []float64 // per cell: Ns species, u, v, w, p, rho, gamma
}

// NewStateRecord spreads a uniform state over every interior cell
func NewStateRecord(block, level int, cells [3]int, fs types.FlowState) StateRecord {
	var (
		nc  = cells[0] * cells[1] * cells[2]
		rec = StateRecord{Block: block, Level: level, Ns: len(fs.Species), Cells: cells}
	)
	rec.Values = make([]float64, 0, nc*fs.NumVars())
	for n := 0; n < nc; n++ {
		rec.Values = fs.Pack(rec.Values)
	}
	return rec
}

// NumVars is the number of values per cell
func (sr StateRecord) NumVars() int { return sr.Ns + 6 }

// Cell returns the state vector of interior cell (i,j,k), 1-based
func (sr StateRecord) Cell(i, j, k int) []float64 {
	var (
		nv  = sr.NumVars()
		idx = (i - 1) + sr.Cells[0]*((j-1)+sr.Cells[1]*(k-1))
	)
	return sr.Values[idx*nv : (idx+1)*nv]
}

func (sr StateRecord) check() error {
	nc := sr.Cells[0] * sr.Cells[1] * sr.Cells[2]
	if len(sr.Values) != nc*sr.NumVars() {
		return fmt.Errorf("block %d level %d: state has %d values, want %d cells of %d",
			sr.Block, sr.Level, len(sr.Values), nc, sr.NumVars())
	}
	return nil
}
