package mesh

import (
	"fmt"

	"github.com/notargets/mbgrid/types"
)

// FaceSpec is the BC request for a whole face in the direct blocks input
type FaceSpec struct {
	Kind     types.BCKind
	Neighbor int // adjacent: 1-based neighbor block id
	Inflow   int // inflow1/inflow2: row of the inflow state table
}

// Source locates the node coordinates of an imported block in the geometry streams
type Source struct {
	File   int // 0-based index of the geometry/topology file pair
	Domain int // 1-based domain number within the file
}

// Descriptor is the static data of one block, shared read-only by the whole run
type Descriptor struct {
	ID    int // 1-based global block id
	Name  string
	Cells [3]int
	Ghost [types.NFaces]int
	Faces [types.NFaces]FaceSpec
	Box   *Box    // direct blocks only
	Src   *Source // imported blocks only
	State types.FlowState
}

func (d *Descriptor) String() string {
	name := d.Name
	if name == "" {
		name = fmt.Sprintf("block%d", d.ID)
	}
	return fmt.Sprintf("%s (id %d, cells %dx%dx%d)", name, d.ID, d.Cells[0], d.Cells[1], d.Cells[2])
}

// Table is the Block Descriptor Table
type Table struct {
	Levels int
	Blocks []*Descriptor
}

func NewTable(nl int) *Table {
	return &Table{Levels: nl}
}

// Add appends a descriptor and assigns it the next global id
func (t *Table) Add(d *Descriptor) int {
	t.Blocks = append(t.Blocks, d)
	d.ID = len(t.Blocks)
	return d.ID
}

func (t *Table) Len() int { return len(t.Blocks) }

// Block returns the descriptor for a 1-based id, nil when out of range
func (t *Table) Block(id int) *Descriptor {
	if id < 1 || id > len(t.Blocks) {
		return nil
	}
	return t.Blocks[id-1]
}

// Dims returns the cell counts of block id at every level
func (t *Table) Dims(id int) ([][3]int, error) {
	d := t.Block(id)
	if d == nil {
		return nil, fmt.Errorf("no block with id %d, table has %d blocks", id, t.Len())
	}
	return LevelDims(id, d.Cells, t.Levels)
}

// Validate checks every block can be coarsened to the requested number of levels
func (t *Table) Validate() error {
	if t.Len() == 0 {
		return fmt.Errorf("block table is empty")
	}
	for _, d := range t.Blocks {
		if _, err := LevelDims(d.ID, d.Cells, t.Levels); err != nil {
			return err
		}
		for f, g := range d.Ghost {
			if g < 0 {
				return fmt.Errorf("block %d: ghost depth %d on face %s is negative", d.ID, g, types.Face(f))
			}
		}
	}
	return nil
}
