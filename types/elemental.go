package types

import (
	"fmt"
	"strings"
)

// Axis is one of the three logical index directions of a structured block
type Axis uint8

const (
	AxisI Axis = iota
	AxisJ
	AxisK
)

const NAxes = 3

func (a Axis) String() string {
	return [...]string{"i", "j", "k"}[a]
}

// ParseAxis decodes an axis letter, upper or lower case
func ParseAxis(c byte) (a Axis, ok bool) {
	switch c {
	case 'i', 'I':
		return AxisI, true
	case 'j', 'J':
		return AxisJ, true
	case 'k', 'K':
		return AxisK, true
	}
	return
}

// Tangents returns the two axes lying in a face whose normal is a, in increasing axis order
func (a Axis) Tangents() (t1, t2 Axis) {
	switch a {
	case AxisI:
		return AxisJ, AxisK
	case AxisJ:
		return AxisI, AxisK
	default:
		return AxisI, AxisJ
	}
}

// Side distinguishes the low index end of an axis from the high index end
type Side uint8

const (
	Min Side = iota
	Max
)

func (s Side) String() string {
	if s == Min {
		return "min"
	}
	return "max"
}

/*
Face identifies one of the six sides of a block, ordered -i, +i, -j, +j, -k, +k.
The ordering is shared by ghost depth tables, face BC specs and the companion .gc files.
*/
type Face uint8

const (
	FaceIMin Face = iota
	FaceIMax
	FaceJMin
	FaceJMax
	FaceKMin
	FaceKMax
)

const NFaces = 6

func NewFace(a Axis, s Side) Face {
	return Face(2*int(a) + int(s))
}

func (f Face) Axis() Axis { return Axis(f / 2) }

func (f Face) Side() Side { return Side(f % 2) }

// Opposite returns the face on the other end of the same axis
func (f Face) Opposite() Face {
	return NewFace(f.Axis(), 1-f.Side())
}

func (f Face) String() string {
	if int(f) >= NFaces {
		return fmt.Sprintf("Face(%d)", int(f))
	}
	return [...]string{"-i", "+i", "-j", "+j", "-k", "+k"}[f]
}

// ParseFace reads a face name: "-i", "+i" ... or "imin", "imax" ..., case-insensitive
func ParseFace(name string) (f Face, ok bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for n := 0; n < NFaces; n++ {
		f = Face(n)
		alt := f.Axis().String() + f.Side().String()
		if name == f.String() || name == alt {
			return f, true
		}
	}
	return 0, false
}
