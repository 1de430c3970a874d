package solverio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/mbgrid/types"
	"github.com/notargets/mbgrid/utils"
)

const version = 1

// Record family markers at the start of every output file
var (
	meshMagic  = [4]byte{'M', 'B', 'G', 'M'}
	bcMagic    = [4]byte{'M', 'B', 'G', 'B'}
	stateMagic = [4]byte{'M', 'B', 'G', 'S'}
)

func MeshFile(block int) string  { return fmt.Sprintf("mesh.%d.bin", block) }
func BCFile(block int) string    { return fmt.Sprintf("bc.%d.bin", block) }
func StateFile(block int) string { return fmt.Sprintf("init.%d.bin", block) }

/*
Writer emits the solver input files of every block into one directory.

All values are little endian; integers are int32 and reals float64. A file starts with
its 4 byte family marker, the format version, the block id and the number of level
sections, then holds one section per level:

	mesh:  level, window lo[3] hi[3], then x y z per node, i fastest
	bc:    level, then per face in order -i,+i,-j,+j,-k,+k:
	       face, window lo[3] hi[3], then per cell kind and four payload integers
	       (adjacent: block, i, j, k; inflow: table index, 0, 0, 0; others zero)
	state: level, timestep, Ns, cells[3], then per interior cell the state vector
*/
type Writer struct {
	Dir string
}

func NewWriter(dir string) (w *Writer, err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return
	}
	w = &Writer{Dir: dir}
	return
}

type binWriter struct {
	w   *bufio.Writer
	err error
}

func (bw *binWriter) put(v interface{}) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *binWriter) ints(vals ...int) {
	buf := make([]int32, len(vals))
	for n, v := range vals {
		buf[n] = int32(v)
	}
	bw.put(buf)
}

func (bw *binWriter) window(win utils.Window) {
	bw.ints(win.Lo[0], win.Lo[1], win.Lo[2], win.Hi[0], win.Hi[1], win.Hi[2])
}

func (w *Writer) create(name string, magic [4]byte, block, nsec int, body func(bw *binWriter)) (err error) {
	var file *os.File
	if file, err = os.Create(filepath.Join(w.Dir, name)); err != nil {
		return
	}
	bw := &binWriter{w: bufio.NewWriter(file)}
	bw.put(magic)
	bw.ints(version, block, nsec)
	body(bw)
	if bw.err == nil {
		bw.err = bw.w.Flush()
	}
	if cErr := file.Close(); bw.err == nil {
		bw.err = cErr
	}
	if bw.err != nil {
		err = fmt.Errorf("writing %s: %w", name, bw.err)
	}
	return
}

func (w *Writer) WriteMesh(block int, recs []MeshRecord) error {
	return w.create(MeshFile(block), meshMagic, block, len(recs), func(bw *binWriter) {
		for _, rec := range recs {
			bw.ints(rec.Level)
			bw.window(rec.Window)
			buf := make([]float64, 0, 3*len(rec.X))
			for _, x := range rec.X {
				buf = append(buf, x.X, x.Y, x.Z)
			}
			bw.put(buf)
		}
	})
}

// payload encodes a descriptor as its kind and four integers
func payload(bc types.FaceBC) (p [5]int) {
	p[0] = int(bc.Kind())
	switch b := bc.(type) {
	case types.Adjacent:
		p[1], p[2], p[3], p[4] = b.Block, b.Offset[0], b.Offset[1], b.Offset[2]
	case types.Inflow:
		p[1] = b.Index
	}
	return
}

func (w *Writer) WriteBC(block int, recs []BCRecord) (err error) {
	for _, rec := range recs {
		for _, fr := range rec.Faces {
			for _, bc := range fr.BCs {
				if bc == nil {
					return fmt.Errorf("block %d level %d face %s: unset boundary condition", block, rec.Level, fr.Face)
				}
			}
		}
	}
	return w.create(BCFile(block), bcMagic, block, len(recs), func(bw *binWriter) {
		for _, rec := range recs {
			bw.ints(rec.Level)
			for _, fr := range rec.Faces {
				bw.ints(int(fr.Face))
				bw.window(fr.Window)
				buf := make([]int, 0, 5*len(fr.BCs))
				for _, bc := range fr.BCs {
					p := payload(bc)
					buf = append(buf, p[:]...)
				}
				bw.ints(buf...)
			}
		}
	})
}

func (w *Writer) WriteState(block int, recs []StateRecord) (err error) {
	for _, rec := range recs {
		if err = rec.check(); err != nil {
			return
		}
	}
	return w.create(StateFile(block), stateMagic, block, len(recs), func(bw *binWriter) {
		for _, rec := range recs {
			bw.ints(rec.Level, rec.Timestep, rec.Ns, rec.Cells[0], rec.Cells[1], rec.Cells[2])
			bw.put(rec.Values)
		}
	})
}

type binReader struct {
	r   *bufio.Reader
	err error
}

func (br *binReader) get(v interface{}) {
	if br.err != nil {
		return
	}
	br.err = binary.Read(br.r, binary.LittleEndian, v)
}

func (br *binReader) ints(n int) (vals []int) {
	buf := make([]int32, n)
	br.get(buf)
	vals = make([]int, n)
	for i, v := range buf {
		vals[i] = int(v)
	}
	return
}

func (br *binReader) window() (win utils.Window) {
	v := br.ints(6)
	copy(win.Lo[:], v[:3])
	copy(win.Hi[:], v[3:])
	return
}

func open(path string, magic [4]byte, body func(br *binReader, block, nsec int)) (err error) {
	var file *os.File
	if file, err = os.Open(path); err != nil {
		return
	}
	defer file.Close()
	var (
		br  = &binReader{r: bufio.NewReader(file)}
		got [4]byte
	)
	br.get(&got)
	hdr := br.ints(3)
	if br.err == nil {
		switch {
		case got != magic:
			br.err = fmt.Errorf("file marker %q, want %q", got[:], magic[:])
		case hdr[0] != version:
			br.err = fmt.Errorf("format version %d, want %d", hdr[0], version)
		}
	}
	if br.err == nil {
		body(br, hdr[1], hdr[2])
	}
	if br.err == io.EOF || br.err == io.ErrUnexpectedEOF {
		br.err = fmt.Errorf("file is truncated")
	}
	if br.err != nil {
		err = &types.InputError{File: path, Msg: "reading solver file", Err: br.err}
	}
	return
}

// ReadMesh reads a mesh file written by WriteMesh
func ReadMesh(path string) (recs []MeshRecord, err error) {
	err = open(path, meshMagic, func(br *binReader, block, nsec int) {
		for s := 0; s < nsec && br.err == nil; s++ {
			rec := MeshRecord{Block: block, Level: br.ints(1)[0], Window: br.window()}
			buf := make([]float64, 3*rec.Window.Size())
			br.get(buf)
			rec.X = make([]r3.Vec, rec.Window.Size())
			for n := range rec.X {
				rec.X[n] = r3.Vec{X: buf[3*n], Y: buf[3*n+1], Z: buf[3*n+2]}
			}
			recs = append(recs, rec)
		}
	})
	return
}

// ReadBC reads a BC file written by WriteBC
func ReadBC(path string) (recs []BCRecord, err error) {
	err = open(path, bcMagic, func(br *binReader, block, nsec int) {
		for s := 0; s < nsec && br.err == nil; s++ {
			rec := BCRecord{Block: block, Level: br.ints(1)[0]}
			for f := range rec.Faces {
				fr := FaceRecord{Face: types.Face(br.ints(1)[0]), Window: br.window()}
				vals := br.ints(5 * fr.Window.Size())
				if br.err != nil {
					return
				}
				for n := 0; n < fr.Window.Size(); n++ {
					p := vals[5*n : 5*n+5]
					bc, bErr := types.NewFaceBC(types.BCKind(p[0]), p[1], p[1])
					if bErr != nil {
						br.err = fmt.Errorf("level %d face %s: %w", rec.Level, fr.Face, bErr)
						return
					}
					if adj, ok := bc.(types.Adjacent); ok {
						adj.Offset = [3]int{p[2], p[3], p[4]}
						bc = adj
					}
					fr.BCs = append(fr.BCs, bc)
				}
				rec.Faces[f] = fr
			}
			recs = append(recs, rec)
		}
	})
	return
}

// ReadState reads an initial state file written by WriteState
func ReadState(path string) (recs []StateRecord, err error) {
	err = open(path, stateMagic, func(br *binReader, block, nsec int) {
		for s := 0; s < nsec && br.err == nil; s++ {
			h := br.ints(6)
			if br.err != nil {
				return
			}
			rec := StateRecord{Block: block, Level: h[0], Timestep: h[1], Ns: h[2], Cells: [3]int{h[3], h[4], h[5]}}
			rec.Values = make([]float64, rec.Cells[0]*rec.Cells[1]*rec.Cells[2]*rec.NumVars())
			br.get(rec.Values)
			recs = append(recs, rec)
		}
	})
	return
}
