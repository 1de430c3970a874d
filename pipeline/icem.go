package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/notargets/mbgrid/bcs"
	"github.com/notargets/mbgrid/icem"
	"github.com/notargets/mbgrid/mesh"
	"github.com/notargets/mbgrid/readfiles"
	"github.com/notargets/mbgrid/types"
)

// topologyLevel keys the block level topology records
const topologyLevel = 0

// ICEMFiles is one geometry stream and its topology stream
type ICEMFiles struct {
	Geometry, Topology string
}

type ICEMRun struct {
	Files        []ICEMFiles
	Ghost        [types.NFaces]int // default ghost depths, "b gc" records override
	State        types.FlowState   // default initial state, "b itc" records override
	DefaultBC    types.FaceBC      // fills face cells no record covers, nil makes them an error
	InflowStates int               // rows of the inflow state table, 0 when none is supplied
	CompanionDir string            // directory of .gc and .itc files, empty for the topology file's directory
}

type icemRun struct {
	*run
	in      *ICEMRun
	offsets []int // global id of the first domain of each file, less one
	counts  []int
}

func (ir *icemRun) renumber(file, domain int) (int, error) {
	if file < 0 || file >= len(ir.counts) {
		return 0, fmt.Errorf("file %d is not one of the %d input files", file+1, len(ir.counts))
	}
	if domain < 1 || domain > ir.counts[file] {
		return 0, fmt.Errorf("domain %d is not in file %d, which holds %d domains", domain, file+1, ir.counts[file])
	}
	return ir.offsets[file] + domain, nil
}

func openInput(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &types.InputError{File: path, Msg: "opening input", Err: err}
	}
	return file, nil
}

/*
RunICEM imports ICEM multiblock grids. Domains are numbered globally by file order, then
by order within the file. The topology streams are read in a first pass into the
topology store; geometry is then streamed one block at a time.
*/
func RunICEM(in *ICEMRun, opts Options) (res *Result, err error) {
	if len(in.Files) == 0 {
		return nil, &types.InputError{Msg: "no ICEM files"}
	}
	var (
		tbl = mesh.NewTable(opts.Levels)
		ir  = &icemRun{in: in}
	)
	for fn, pair := range in.Files {
		var cells [][3]int
		if cells, err = countDomains(pair.Geometry); err != nil {
			return
		}
		ir.offsets = append(ir.offsets, tbl.Len())
		ir.counts = append(ir.counts, len(cells))
		for d, c := range cells {
			tbl.Add(&mesh.Descriptor{
				Name:  fmt.Sprintf("%s:domain.%d", filepath.Base(pair.Geometry), d+1),
				Cells: c,
				Ghost: in.Ghost,
				State: in.State.Clone(),
				Src:   &mesh.Source{File: fn, Domain: d + 1},
			})
		}
	}
	var topo map[int]*readfiles.DomainTopology
	if topo, err = ir.readTopology(); err != nil {
		return
	}
	ns := len(in.State.Species)
	if opts.Species != nil {
		ns = opts.Species.Ns()
	}
	if err = ir.applyProperties(tbl, topo, ns); err != nil {
		return
	}
	if ir.run, err = newRun(tbl, &opts, "icem", meshStore, bcStore, stateStore, topologyStore); err != nil {
		return
	}
	defer ir.close()
	if err = ir.checkConnections(topo); err != nil {
		return
	}
	for _, d := range tbl.Blocks {
		dt := topo[d.ID]
		if dt == nil {
			dt = &readfiles.DomainTopology{Block: d.ID}
		}
		if err = ir.set.Store(topologyStore).Put(d.ID, topologyLevel, dt); err != nil {
			return
		}
	}
	topo = nil
	for fn, pair := range in.Files {
		if err = ir.streamGeometry(fn, pair.Geometry); err != nil {
			return
		}
	}
	return ir.finalize()
}

func countDomains(path string) (cells [][3]int, err error) {
	var file *os.File
	if file, err = openInput(path); err != nil {
		return
	}
	defer file.Close()
	if cells, err = readfiles.CountICEMDomains(path, file); err == nil && len(cells) == 0 {
		err = &types.InputError{File: path, Msg: "geometry file holds no domains"}
	}
	return
}

// readTopology splices the topology records of every file into one record set per block
func (ir *icemRun) readTopology() (topo map[int]*readfiles.DomainTopology, err error) {
	topo = make(map[int]*readfiles.DomainTopology)
	for fn, pair := range ir.in.Files {
		var (
			file    *os.File
			domains []*readfiles.DomainTopology
		)
		if file, err = openInput(pair.Topology); err != nil {
			return
		}
		domains, err = readfiles.ReadICEMTopology(pair.Topology, file, fn, ir.renumber)
		file.Close()
		if err != nil {
			return
		}
		for _, dt := range domains {
			if prev := topo[dt.Block]; prev != nil {
				prev.Merge(dt)
			} else {
				topo[dt.Block] = dt
			}
		}
	}
	return
}

// companionDir is where the companion files of a property record are looked up
func (ir *icemRun) companionDir(prop readfiles.PropertyRecord) string {
	if ir.in.CompanionDir != "" {
		return ir.in.CompanionDir
	}
	return filepath.Dir(prop.File)
}

// applyProperties loads the companion files named by "b" records into the block table
func (ir *icemRun) applyProperties(tbl *mesh.Table, topo map[int]*readfiles.DomainTopology, ns int) (err error) {
	for _, d := range tbl.Blocks {
		dt := topo[d.ID]
		if dt == nil {
			continue
		}
		for _, prop := range dt.Properties {
			var path string
			switch prop.Key {
			case "itc":
				path = readfiles.CompanionPath(ir.companionDir(prop), prop.Value, ".itc")
				d.State, err = readfiles.ReadStateFile(path, ns)
			case "gc":
				path = readfiles.CompanionPath(ir.companionDir(prop), prop.Value, ".gc")
				d.Ghost, err = readfiles.ReadGhostFile(path)
			default:
				log.Printf("%s:%d: block %d: ignoring property %q", prop.File, prop.Line, d.ID, prop.Key)
				continue
			}
			if errors.Is(err, os.ErrNotExist) {
				return &types.CrossRefError{Block: d.ID,
					Msg: fmt.Sprintf("%s companion file of %s:%d", prop.Key, prop.File, prop.Line), Err: err}
			}
			var ie *types.InputError
			if errors.As(err, &ie) {
				ie.Block = d.ID
			}
			if err != nil {
				return
			}
		}
	}
	return
}

func lineError(block int, file string, line int, msg string, err error) error {
	return &types.InputError{File: file, Line: line, Block: block, Msg: msg, Err: err}
}

// connections builds the patch connections of one block from its topology records
func (ir *icemRun) connections(dt *readfiles.DomainTopology) (conns []*icem.Connection, err error) {
	d := ir.tbl.Block(dt.Block)
	for _, rec := range dt.Connectivity {
		var (
			local, nbr icem.Patch
			o          icem.Orientation
			c          *icem.Connection
			nd         = ir.tbl.Block(rec.Neighbor)
		)
		if local, err = icem.NewPatch(d.ID, rec.Box, d.Cells); err != nil {
			return nil, lineError(dt.Block, rec.File, rec.Line, "local box", err)
		}
		if nbr, err = icem.NewPatch(nd.ID, rec.NeighborBox, nd.Cells); err != nil {
			return nil, lineError(dt.Block, rec.File, rec.Line, "neighbor box", err)
		}
		if o, err = icem.ParseOrientation(rec.Orientation); err != nil {
			return nil, lineError(dt.Block, rec.File, rec.Line, "orientation", err)
		}
		if c, err = icem.NewConnection(local, nbr, o); err != nil {
			return nil, lineError(dt.Block, rec.File, rec.Line, "connection", err)
		}
		conns = append(conns, c)
	}
	return
}

func (ir *icemRun) tags(dt *readfiles.DomainTopology) (tags []icem.Tag, err error) {
	d := ir.tbl.Block(dt.Block)
	for _, rec := range dt.Boundaries {
		var (
			tag  icem.Tag
			kind types.BCKind
		)
		if tag.Patch, err = icem.NewPatch(d.ID, rec.Box, d.Cells); err != nil {
			return nil, lineError(dt.Block, rec.File, rec.Line, "boundary box", err)
		}
		if kind, err = types.ParseBCKind(rec.Kind); err != nil {
			return nil, lineError(dt.Block, rec.File, rec.Line, "boundary kind", err)
		}
		switch {
		case kind == types.BC_Adjacent:
			return nil, lineError(dt.Block, rec.File, rec.Line, "adjacent faces must be given as connectivity records", nil)
		case kind.IsInflow() && !rec.HasInflow:
			return nil, lineError(dt.Block, rec.File, rec.Line, fmt.Sprintf("%s boundary needs an inflow index", kind), nil)
		case kind.IsInflow() && (rec.Inflow < 0 || (ir.in.InflowStates > 0 && rec.Inflow >= ir.in.InflowStates)):
			return nil, &types.CrossRefError{Block: d.ID,
				Msg: fmt.Sprintf("%s:%d references inflow state %d, table has %d rows",
					rec.File, rec.Line, rec.Inflow, ir.in.InflowStates)}
		}
		if tag.BC, err = types.NewFaceBC(kind, 0, rec.Inflow); err != nil {
			return nil, lineError(dt.Block, rec.File, rec.Line, "boundary", err)
		}
		tags = append(tags, tag)
	}
	return
}

/*
checkConnections requires every connection to be listed from both sides, with the same
pair of boxes and inverse orientations.
*/
func (ir *icemRun) checkConnections(topo map[int]*readfiles.DomainTopology) (err error) {
	for _, d := range ir.tbl.Blocks {
		dt := topo[d.ID]
		if dt == nil {
			continue
		}
		var conns []*icem.Connection
		if conns, err = ir.connections(dt); err != nil {
			return
		}
		for n, c := range conns {
			var (
				rec   = dt.Connectivity[n]
				found bool
				back  []*icem.Connection
			)
			if nt := topo[c.Neighbor.Block]; nt != nil {
				if back, err = ir.connections(nt); err != nil {
					return
				}
			}
			for _, b := range back {
				if b.Neighbor.Block == d.ID && b.Local.Box == c.Neighbor.Box && b.Neighbor.Box == c.Local.Box {
					if b.Orient != c.Orient.Inverse() {
						return &types.CrossRefError{Block: d.ID,
							Msg: fmt.Sprintf("%s:%d: orientation %q is not the inverse of %q given by block %d",
								rec.File, rec.Line, c.Orient, b.Orient, b.Local.Block)}
					}
					found = true
					break
				}
			}
			if !found {
				return &types.CrossRefError{Block: d.ID,
					Msg: fmt.Sprintf("%s:%d: connection to block %d box %s is not listed by block %d",
						rec.File, rec.Line, c.Neighbor.Block, c.Neighbor.Box, c.Neighbor.Block)}
			}
		}
	}
	return
}

type icemResolver struct {
	conns     []*icem.Connection
	tags      []icem.Tag
	defaultBC types.FaceBC
}

func (res *icemResolver) Resolve(wb *WorkBlock) (err error) {
	var (
		d  = wb.Desc
		nl = len(wb.Dims)
	)
	wb.BCs = make([]*bcs.Level, nl)
	for L := 1; L <= nl; L++ {
		lv := bcs.NewLevel(L, wb.Dims[L-1], d.Ghost)
		for _, c := range res.conns {
			f := c.Local.Face
			if err = c.Apply(L, d.Ghost[f], lv.Faces[f]); err != nil {
				return
			}
		}
		for _, tg := range res.tags {
			f := tg.Patch.Face
			if err = tg.Apply(L, d.Ghost[f], lv.Faces[f]); err != nil {
				return
			}
		}
		if res.defaultBC != nil {
			for _, ff := range lv.Faces {
				if _, err = ff.Fill(res.defaultBC); err != nil {
					return
				}
			}
		}
		if err = lv.Complete(d.ID); err != nil {
			return
		}
		wb.BCs[L-1] = lv
	}
	return
}

// streamGeometry reads the domains of one geometry file and processes them in order
func (ir *icemRun) streamGeometry(fn int, path string) (err error) {
	var file *os.File
	if file, err = openInput(path); err != nil {
		return
	}
	defer file.Close()
	gr := readfiles.NewICEMGeometryReader(path, file)
	for domain := 1; domain <= ir.counts[fn]; domain++ {
		var (
			d   = ir.tbl.Block(ir.offsets[fn] + domain)
			dt  readfiles.DomainTopology
			na  *mesh.NodeArray
			wb  *WorkBlock
			res = &icemResolver{defaultBC: ir.in.DefaultBC}
		)
		if na, err = gr.Next(d.Ghost); err != nil {
			if err == io.EOF {
				err = &types.InputError{File: path, Block: d.ID, Msg: "geometry file ended early"}
			}
			return
		}
		if err = ir.set.Store(topologyStore).Get(d.ID, topologyLevel, &dt); err != nil {
			return
		}
		if res.conns, err = ir.connections(&dt); err != nil {
			return
		}
		if res.tags, err = ir.tags(&dt); err != nil {
			return
		}
		if wb, err = ir.newWorkBlock(d); err != nil {
			return
		}
		if err = ir.processBlock(wb, na, res); err != nil {
			return
		}
	}
	return
}
