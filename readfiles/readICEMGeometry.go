package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/mbgrid/mesh"
	"github.com/notargets/mbgrid/types"
	"github.com/notargets/mbgrid/utils"
)

/*
ICEMGeometryReader streams the domains of an ICEM multiblock geometry file.

Each domain is a header line with the node counts Ni+1 Nj+1 Nk+1 followed by one
"x y z" line per node, i fastest, then j, then k. Blank lines and lines starting
with '#' are skipped.
*/
type ICEMGeometryReader struct {
	name    string
	scanner *bufio.Scanner
	line    int
	domain  int
}

func NewICEMGeometryReader(name string, r io.Reader) *ICEMGeometryReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &ICEMGeometryReader{name: name, scanner: scanner}
}

func (gr *ICEMGeometryReader) errorf(format string, args ...interface{}) error {
	return &types.InputError{File: gr.name, Line: gr.line, Msg: fmt.Sprintf(format, args...)}
}

// nextFields returns the fields of the next data line, io.EOF at the end of the stream
func (gr *ICEMGeometryReader) nextFields() ([]string, error) {
	for gr.scanner.Scan() {
		gr.line++
		line := strings.TrimSpace(gr.scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.Fields(line), nil
	}
	if err := gr.scanner.Err(); err != nil {
		return nil, &types.InputError{File: gr.name, Line: gr.line, Msg: "reading geometry", Err: err}
	}
	return nil, io.EOF
}

// Header reads the next domain header and returns its cell counts
func (gr *ICEMGeometryReader) Header() (cells [3]int, err error) {
	var fields []string
	if fields, err = gr.nextFields(); err != nil {
		return
	}
	if len(fields) != 3 {
		err = gr.errorf("domain header must hold three node counts, found %q", strings.Join(fields, " "))
		return
	}
	for n, fld := range fields {
		var nn int
		if nn, err = strconv.Atoi(fld); err != nil {
			err = gr.errorf("domain header node count %q is not an integer", fld)
			return
		}
		if nn < 2 {
			err = gr.errorf("domain header node count %d along %s must be at least 2", nn, types.Axis(n))
			return
		}
		cells[n] = nn - 1
	}
	gr.domain++
	return
}

func (gr *ICEMGeometryReader) skipNodes(cells [3]int) error {
	count := (cells[0] + 1) * (cells[1] + 1) * (cells[2] + 1)
	for n := 0; n < count; n++ {
		if _, err := gr.nextFields(); err != nil {
			if err == io.EOF {
				return gr.errorf("domain %d ends after %d of %d nodes", gr.domain, n, count)
			}
			return err
		}
	}
	return nil
}

/*
Next reads the next domain into a level 1 node array with the given ghost depths and
fills the ghost nodes by extrapolation. It returns io.EOF when no domain is left.
*/
func (gr *ICEMGeometryReader) Next(ghost [types.NFaces]int) (na *mesh.NodeArray, err error) {
	var cells [3]int
	if cells, err = gr.Header(); err != nil {
		return
	}
	na = mesh.NewNodeArray(cells, ghost)
	na.Interior().Each(func(i, j, k int) {
		if err != nil {
			return
		}
		var fields []string
		if fields, err = gr.nextFields(); err != nil {
			if err == io.EOF {
				err = gr.errorf("domain %d ends at node (%d,%d,%d)", gr.domain, i, j, k)
			}
			return
		}
		if len(fields) != 3 {
			err = gr.errorf("node line must hold x y z, found %d fields", len(fields))
			return
		}
		var x [3]float64
		for n, fld := range fields {
			if x[n], err = strconv.ParseFloat(fld, 64); err != nil {
				err = gr.errorf("bad coordinate %q", fld)
				return
			}
		}
		if n := utils.FirstNonFinite(x[:]...); n >= 0 {
			err = gr.errorf("coordinate %q is not finite", fields[n])
			return
		}
		na.Set(i, j, k, r3.Vec{X: x[0], Y: x[1], Z: x[2]})
	})
	if err != nil {
		na = nil
		return
	}
	na.ExtrapolateGhosts()
	return
}

// Domain is the number of domain headers read so far
func (gr *ICEMGeometryReader) Domain() int { return gr.domain }

// CountICEMDomains scans a geometry stream and returns the cell counts of every domain without parsing nodes
func CountICEMDomains(name string, r io.Reader) (cells [][3]int, err error) {
	gr := NewICEMGeometryReader(name, r)
	for {
		var c [3]int
		if c, err = gr.Header(); err != nil {
			if err == io.EOF {
				err = nil
			}
			return
		}
		if err = gr.skipNodes(c); err != nil {
			return
		}
		cells = append(cells, c)
	}
}
