package types

import (
	"encoding/gob"
	"fmt"
	"strings"
)

// BCKind is the tag of a face boundary condition descriptor
type BCKind uint8

const (
	BC_None BCKind = iota // unset, never valid after resolution
	BC_Adjacent
	BC_Inflow1
	BC_Inflow2
	BC_Outflow
	BC_Wall
	BC_Slip
	BC_Symmetry
	BC_Far
	BC_Extrapolate
)

func (k BCKind) String() string {
	names := [...]string{"none", "adjacent", "inflow1", "inflow2", "outflow",
		"wall", "slip", "symmetry", "far", "extrapolate"}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("BCKind(%d)", int(k))
}

// IsInflow is true for the kinds that carry an inflow table index
func (k BCKind) IsInflow() bool {
	return k == BC_Inflow1 || k == BC_Inflow2
}

var BCNameMap = map[string]BCKind{
	"adjacent":    BC_Adjacent,
	"connect":     BC_Adjacent,
	"inflow1":     BC_Inflow1,
	"inflow":      BC_Inflow1,
	"in":          BC_Inflow1,
	"inflow2":     BC_Inflow2,
	"outflow":     BC_Outflow,
	"out":         BC_Outflow,
	"wall":        BC_Wall,
	"noslip":      BC_Wall,
	"slip":        BC_Slip,
	"symmetry":    BC_Symmetry,
	"sym":         BC_Symmetry,
	"far":         BC_Far,
	"farfield":    BC_Far,
	"extrapolate": BC_Extrapolate,
}

// ParseBCKind matches a BC token against the fixed vocabulary, case-insensitive
func ParseBCKind(name string) (BCKind, error) {
	if k, ok := BCNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return BC_None, fmt.Errorf("unknown boundary condition %q", name)
}

/*
FaceBC is the boundary condition assigned to one boundary cell of one face.
Exactly one of the concrete types below is held, selected by Kind():
  - Plain    for kinds without payload (wall, slip, symmetry, outflow, far, extrapolate)
  - Adjacent for a connection into another block's index space
  - Inflow   for inflow1/inflow2 pointing at a row of the inflow state table
*/
type FaceBC interface {
	Kind() BCKind
	isFaceBC()
}

type Plain struct {
	K BCKind
}

func (p Plain) Kind() BCKind { return p.K }
func (Plain) isFaceBC()      {}

/*
Adjacent points at the matching cell of a neighbor block.
Offset is the 1-based (i,j,k) of that cell in the neighbor's index space. The zero
triple marks an aligned connection, where the neighbor cell is found by translating
the local ghost index across the shared face.
*/
type Adjacent struct {
	Block  int
	Offset [3]int
}

func (Adjacent) Kind() BCKind { return BC_Adjacent }
func (Adjacent) isFaceBC()    {}

// Aligned reports whether the offset is the aligned marker
func (a Adjacent) Aligned() bool { return a.Offset == [3]int{} }

type Inflow struct {
	K     BCKind
	Index int
}

func (in Inflow) Kind() BCKind { return in.K }
func (Inflow) isFaceBC()       {}

// NewFaceBC builds the descriptor for a kind and its optional payload values
func NewFaceBC(kind BCKind, block, inflow int) (bc FaceBC, err error) {
	switch {
	case kind == BC_None:
		err = fmt.Errorf("boundary condition kind is unset")
	case kind == BC_Adjacent:
		bc = Adjacent{Block: block}
	case kind.IsInflow():
		bc = Inflow{K: kind, Index: inflow}
	default:
		bc = Plain{K: kind}
	}
	return
}

func init() {
	// Scratch stores carry FaceBC values through gob
	gob.Register(Plain{})
	gob.Register(Adjacent{})
	gob.Register(Inflow{})
}
