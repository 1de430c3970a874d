package icem

import (
	"fmt"
	"strings"

	"github.com/notargets/mbgrid/types"
)

// AxisMap states which neighbor axis runs along a local axis, and whether it runs the same way
type AxisMap struct {
	Axis types.Axis
	Sign int // +1 or -1
}

/*
Orientation maps each local axis (i, j, k) onto a signed neighbor axis.

The text form is six characters, groups 1-2, 3-4 and 5-6 belonging to local i, j and k.
Each group is a sign (' ' or '+' positive, '-' negative) and a neighbor axis letter:

	" i j k"  identity
	"-i j k"  neighbor i reversed against local i
	"-j i k"  local i runs along neighbor j reversed, local j along neighbor i
*/
type Orientation [3]AxisMap

// OrientationKey enumerates the 48 orientations: permutation index * 8 + sign bits
type OrientationKey uint8

const NOrientations = 48

var (
	permutations = [6][3]types.Axis{
		{types.AxisI, types.AxisJ, types.AxisK},
		{types.AxisI, types.AxisK, types.AxisJ},
		{types.AxisJ, types.AxisI, types.AxisK},
		{types.AxisJ, types.AxisK, types.AxisI},
		{types.AxisK, types.AxisI, types.AxisJ},
		{types.AxisK, types.AxisJ, types.AxisI},
	}
	orientations [NOrientations]Orientation
)

func init() {
	for p, perm := range permutations {
		for bits := 0; bits < 8; bits++ {
			var o Orientation
			for a := 0; a < 3; a++ {
				o[a] = AxisMap{Axis: perm[a], Sign: 1}
				if bits&(1<<a) != 0 {
					o[a].Sign = -1
				}
			}
			orientations[p*8+bits] = o
		}
	}
}

func (k OrientationKey) Orientation() Orientation {
	return orientations[k]
}

// AllOrientations returns the full vocabulary in key order
func AllOrientations() []Orientation {
	all := make([]Orientation, NOrientations)
	copy(all, orientations[:])
	return all
}

// Key finds the table entry of o; ok is false when o is not a signed permutation
func (o Orientation) Key() (key OrientationKey, ok bool) {
	for p, perm := range permutations {
		if perm[0] != o[0].Axis || perm[1] != o[1].Axis || perm[2] != o[2].Axis {
			continue
		}
		bits := 0
		for a := 0; a < 3; a++ {
			switch o[a].Sign {
			case 1:
			case -1:
				bits |= 1 << a
			default:
				return
			}
		}
		return OrientationKey(p*8 + bits), true
	}
	return
}

func (o Orientation) String() string {
	var sb strings.Builder
	for _, am := range o {
		if am.Sign < 0 {
			sb.WriteByte('-')
		} else {
			sb.WriteByte(' ')
		}
		sb.WriteString(am.Axis.String())
	}
	return sb.String()
}

// Inverse is the orientation seen from the neighbor: neighbor axis b maps back onto local axis a
func (o Orientation) Inverse() (inv Orientation) {
	for a, am := range o {
		inv[am.Axis] = AxisMap{Axis: types.Axis(a), Sign: am.Sign}
	}
	return
}

// Local returns the local axis that runs along neighbor axis b
func (o Orientation) Local(b types.Axis) types.Axis {
	return o.Inverse()[b].Axis
}

/*
ParseOrientation decodes a 6 character token into a table entry.
Each group decodes to a (sign, axis) pair; the three pairs must form a signed
permutation, anything else is not in the vocabulary.
*/
func ParseOrientation(token string) (o Orientation, err error) {
	if len(token) != 6 {
		err = fmt.Errorf("orientation token %q must have 6 characters", token)
		return
	}
	for a := 0; a < 3; a++ {
		var (
			sc, ac = token[2*a], token[2*a+1]
			ok     bool
		)
		switch sc {
		case ' ', '+':
			o[a].Sign = 1
		case '-':
			o[a].Sign = -1
		default:
			err = fmt.Errorf("orientation token %q: bad sign %q in group %d", token, sc, a+1)
			return
		}
		if o[a].Axis, ok = types.ParseAxis(ac); !ok {
			err = fmt.Errorf("orientation token %q: bad axis %q in group %d", token, ac, a+1)
			return
		}
	}
	var (
		key OrientationKey
		ok  bool
	)
	if key, ok = o.Key(); !ok {
		err = fmt.Errorf("orientation token %q is not one of the 48 block orientations", token)
		return
	}
	o = key.Orientation()
	return
}
