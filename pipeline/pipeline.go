package pipeline

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/notargets/mbgrid/bcs"
	"github.com/notargets/mbgrid/mesh"
	"github.com/notargets/mbgrid/scratch"
	"github.com/notargets/mbgrid/solverio"
	"github.com/notargets/mbgrid/species"
	"github.com/notargets/mbgrid/types"
	"github.com/notargets/mbgrid/utils"
)

const (
	FineFirst   = "fine-first"
	CoarseFirst = "coarse-first"
)

// Scratch store names
const (
	meshStore     = "mesh"
	bcStore       = "bc"
	stateStore    = "state"
	topologyStore = "topology"
)

type Options struct {
	Title      string
	Levels     int
	LevelOrder string // fine-first or coarse-first, empty is fine-first
	OutputDir  string
	ScratchDir string // parent of the spill directory, empty for the system temp dir
	Spill      bool   // spill scratch stores to compressed files instead of memory
	CheckOnly  bool   // resolve every block but write no output
	Verbose    bool
	Species    *species.Table // nil: Ns is taken from the first block
}

func (o *Options) check() error {
	if o.Levels < 1 {
		return &types.InputError{Msg: fmt.Sprintf("number of multigrid levels must be at least 1, have %d", o.Levels)}
	}
	switch o.LevelOrder {
	case "":
		o.LevelOrder = FineFirst
	case FineFirst, CoarseFirst:
	default:
		return &types.InputError{Msg: fmt.Sprintf("level order %q must be %q or %q", o.LevelOrder, FineFirst, CoarseFirst)}
	}
	if !o.CheckOnly && o.OutputDir == "" {
		return &types.InputError{Msg: "no output directory"}
	}
	return nil
}

// OutputLevel renumbers a multigrid level, level 1 being the finest
func (o *Options) OutputLevel(level int) int {
	if o.LevelOrder == CoarseFirst {
		return o.Levels + 1 - level
	}
	return level
}

/*
WorkBlock is the working buffer of the one block being generated. It is built per
block, handed to processBlock, drained into the scratch stores and dropped.
*/
type WorkBlock struct {
	Desc  *mesh.Descriptor
	Dims  [][3]int
	Nodes []*mesh.NodeArray
	BCs   []*bcs.Level
	State types.FlowState
}

// Resolver fills the BC levels of a work block whose dims and nodes are built
type Resolver interface {
	Resolve(wb *WorkBlock) error
}

type Result struct {
	Manifest *solverio.Manifest // nil for check only runs
	Blocks   int
	Cells    int // level 1 interior cells over all blocks
}

type run struct {
	tbl   *mesh.Table
	opts  *Options
	mode  string
	ns    int
	set   *scratch.Set
	proc  *process.Process
	start time.Time
}

func newRun(tbl *mesh.Table, opts *Options, mode string, stores ...string) (r *run, err error) {
	if err = opts.check(); err != nil {
		return
	}
	tbl.Levels = opts.Levels
	if err = tbl.Validate(); err != nil {
		return
	}
	r = &run{tbl: tbl, opts: opts, mode: mode, start: time.Now()}
	if opts.Species != nil {
		r.ns = opts.Species.Ns()
	} else {
		r.ns = len(tbl.Blocks[0].State.Species)
	}
	if r.set, err = scratch.Open(opts.ScratchDir, opts.Spill, stores...); err != nil {
		r = nil
		return
	}
	if opts.Verbose {
		if r.proc, err = process.NewProcess(int32(os.Getpid())); err != nil {
			log.Printf("process memory reporting disabled: %v", err)
			err = nil
		}
		log.Printf("%s run: %d blocks, %d levels, %d species, scratch spill %v",
			mode, tbl.Len(), opts.Levels, r.ns, opts.Spill)
	}
	return
}

func (r *run) close() {
	if err := r.set.Close(); err != nil {
		log.Printf("closing scratch stores: %v", err)
	}
}

// newWorkBlock sizes the working buffer of block d
func (r *run) newWorkBlock(d *mesh.Descriptor) (wb *WorkBlock, err error) {
	wb = &WorkBlock{Desc: d, State: d.State.Clone()}
	if wb.Dims, err = mesh.LevelDims(d.ID, d.Cells, r.opts.Levels); err != nil {
		wb = nil
	}
	return
}

/*
processBlock generates every level of the mesh, BCs and state of one block and puts
them into the scratch stores. The work block is drained and must not be reused.
*/
func (r *run) processBlock(wb *WorkBlock, level1 *mesh.NodeArray, res Resolver) (err error) {
	id := wb.Desc.ID
	if level1.Cells != wb.Desc.Cells {
		return &types.InputError{Block: id,
			Msg: fmt.Sprintf("node array has %v cells, block table has %v", level1.Cells, wb.Desc.Cells)}
	}
	if err = wb.State.Check(r.ns); err != nil {
		return &types.CrossRefError{Block: id, Msg: "initial state", Err: err}
	}
	if wb.Nodes, err = mesh.BuildLevels(id, level1, r.opts.Levels); err != nil {
		return
	}
	if err = res.Resolve(wb); err != nil {
		return
	}
	if len(wb.BCs) != r.opts.Levels {
		return fmt.Errorf("block %d: resolver produced %d of %d BC levels", id, len(wb.BCs), r.opts.Levels)
	}
	for L := 1; L <= r.opts.Levels; L++ {
		var bcRec solverio.BCRecord
		if bcRec, err = solverio.NewBCRecord(id, wb.BCs[L-1]); err != nil {
			return
		}
		if err = r.set.Store(meshStore).Put(id, L, solverio.NewMeshRecord(id, L, wb.Nodes[L-1])); err != nil {
			return
		}
		if err = r.set.Store(bcStore).Put(id, L, bcRec); err != nil {
			return
		}
		if err = r.set.Store(stateStore).Put(id, L, solverio.NewStateRecord(id, L, wb.Dims[L-1], wb.State)); err != nil {
			return
		}
	}
	wb.Nodes, wb.BCs = nil, nil
	r.progress(wb.Desc)
	return
}

func (r *run) progress(d *mesh.Descriptor) {
	if !r.opts.Verbose {
		return
	}
	rss := "n/a"
	if r.proc != nil {
		if mi, err := r.proc.MemoryInfo(); err == nil {
			rss = fmt.Sprintf("%.1f MiB", float64(mi.RSS)/(1<<20))
		}
	}
	log.Printf("block %d of %d done: %s, rss %s, %s, elapsed %v",
		d.ID, r.tbl.Len(), d, rss, utils.GetMemUsage(), time.Since(r.start).Round(time.Millisecond))
}

/*
finalize reads every block back from the scratch stores, renumbers the levels and
writes the per block solver files and the run manifest.
*/
func (r *run) finalize() (res *Result, err error) {
	res = &Result{Blocks: r.tbl.Len()}
	for _, d := range r.tbl.Blocks {
		res.Cells += d.Cells[0] * d.Cells[1] * d.Cells[2]
	}
	if r.opts.CheckOnly {
		return
	}
	var (
		w     *solverio.Writer
		names []string
	)
	if w, err = solverio.NewWriter(r.opts.OutputDir); err != nil {
		return
	}
	if r.opts.Species != nil {
		names = r.opts.Species.Names()
	}
	m := solverio.NewManifest(r.opts.Title, r.mode, r.opts.Levels, r.opts.LevelOrder, names)
	nl := r.opts.Levels
	for _, d := range r.tbl.Blocks {
		var (
			meshRecs  = make([]solverio.MeshRecord, nl)
			bcRecs    = make([]solverio.BCRecord, nl)
			stateRecs = make([]solverio.StateRecord, nl)
			cells     = make([][3]int, nl)
		)
		for L := 1; L <= nl; L++ {
			out := r.opts.OutputLevel(L)
			if err = r.set.Store(meshStore).Get(d.ID, L, &meshRecs[out-1]); err != nil {
				return
			}
			if err = r.set.Store(bcStore).Get(d.ID, L, &bcRecs[out-1]); err != nil {
				return
			}
			if err = r.set.Store(stateStore).Get(d.ID, L, &stateRecs[out-1]); err != nil {
				return
			}
			meshRecs[out-1].Level, bcRecs[out-1].Level, stateRecs[out-1].Level = out, out, out
			cells[out-1] = stateRecs[out-1].Cells
		}
		if err = w.WriteMesh(d.ID, meshRecs); err != nil {
			return
		}
		if err = w.WriteBC(d.ID, bcRecs); err != nil {
			return
		}
		if err = w.WriteState(d.ID, stateRecs); err != nil {
			return
		}
		m.AddBlock(d.ID, d.Name, cells, d.Ghost)
	}
	if err = w.WriteManifest(m); err != nil {
		return
	}
	res.Manifest = m
	if r.opts.Verbose {
		log.Printf("wrote %d blocks to %s, run id %s", r.tbl.Len(), r.opts.OutputDir, m.RunID)
	}
	return
}
