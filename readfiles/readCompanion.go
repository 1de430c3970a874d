package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/mbgrid/types"
	"github.com/notargets/mbgrid/utils"
)

func readNumbers(name string, r io.Reader) (vals []float64, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		var v float64
		if v, err = strconv.ParseFloat(scanner.Text(), 64); err != nil {
			err = &types.InputError{File: name, Msg: fmt.Sprintf("bad number %q", scanner.Text())}
			return
		}
		vals = append(vals, v)
	}
	if scErr := scanner.Err(); scErr != nil {
		err = &types.InputError{File: name, Msg: "reading", Err: scErr}
	}
	return
}

// ParseGhostDepths reads six integer ghost depths in face order -i,+i,-j,+j,-k,+k
func ParseGhostDepths(name string, r io.Reader) (ghost [types.NFaces]int, err error) {
	var vals []float64
	if vals, err = readNumbers(name, r); err != nil {
		return
	}
	if len(vals) != types.NFaces {
		err = &types.InputError{File: name, Msg: fmt.Sprintf("ghost file needs %d depths, found %d", types.NFaces, len(vals))}
		return
	}
	for f, v := range vals {
		if v < 0 || v != float64(int(v)) {
			err = &types.InputError{File: name, Msg: fmt.Sprintf("ghost depth %v on face %s must be a non negative integer", v, types.Face(f))}
			return
		}
		ghost[f] = int(v)
	}
	return
}

// ParseStateFile reads ns species values, then u, v, w, p, rho and gamma
func ParseStateFile(name string, r io.Reader, ns int) (fs types.FlowState, err error) {
	var vals []float64
	if vals, err = readNumbers(name, r); err != nil {
		return
	}
	if len(vals) != ns+6 {
		err = &types.InputError{File: name,
			Msg: fmt.Sprintf("state file needs %d species values and 6 flow values, found %d values", ns, len(vals))}
		return
	}
	if n := utils.FirstNonFinite(vals...); n >= 0 {
		err = &types.InputError{File: name, Msg: fmt.Sprintf("value %d is not finite", n+1)}
		return
	}
	fs = types.FlowState{
		Species:  append([]float64(nil), vals[:ns]...),
		Velocity: r3.Vec{X: vals[ns], Y: vals[ns+1], Z: vals[ns+2]},
		Pressure: vals[ns+3],
		Density:  vals[ns+4],
		Gamma:    vals[ns+5],
	}
	return
}

func ReadGhostFile(path string) (ghost [types.NFaces]int, err error) {
	var file *os.File
	if file, err = os.Open(path); err != nil {
		return
	}
	defer file.Close()
	return ParseGhostDepths(path, file)
}

func ReadStateFile(path string, ns int) (fs types.FlowState, err error) {
	var file *os.File
	if file, err = os.Open(path); err != nil {
		return
	}
	defer file.Close()
	return ParseStateFile(path, file, ns)
}

// CompanionPath names the companion file of a "b" property: dir/value.ext unless value already has ext
func CompanionPath(dir, value, ext string) string {
	if !strings.HasSuffix(value, ext) {
		value += ext
	}
	if dir == "" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(dir, value)
}
