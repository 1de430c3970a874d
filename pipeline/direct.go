package pipeline

import (
	"github.com/notargets/mbgrid/bcs"
	"github.com/notargets/mbgrid/mesh"
	"github.com/notargets/mbgrid/types"
)

type directResolver struct {
	*bcs.DirectResolver
}

func (dr directResolver) Resolve(wb *WorkBlock) (err error) {
	wb.BCs = make([]*bcs.Level, len(wb.Dims))
	for L, cells := range wb.Dims {
		if wb.BCs[L], err = dr.DirectResolver.Resolve(wb.Desc.ID, L+1, cells); err != nil {
			return
		}
	}
	return
}

/*
RunDirect generates Cartesian blocks from their bounding boxes. Every descriptor needs
a box and six face specs; inflowStates is the number of rows of the inflow state table,
zero when none is supplied.
*/
func RunDirect(tbl *mesh.Table, inflowStates int, opts Options) (res *Result, err error) {
	var r *run
	if r, err = newRun(tbl, &opts, "blocks", meshStore, bcStore, stateStore); err != nil {
		return
	}
	defer r.close()
	for _, d := range tbl.Blocks {
		if d.Box == nil {
			return nil, &types.InputError{Block: d.ID, Msg: "block has no bounding box"}
		}
		if err = d.Box.Check(); err != nil {
			return nil, &types.InputError{Block: d.ID, Msg: "bounding box", Err: err}
		}
	}
	resolver := directResolver{bcs.NewDirectResolver(tbl, inflowStates)}
	if err = resolver.Validate(); err != nil {
		return
	}
	for _, d := range tbl.Blocks {
		var wb *WorkBlock
		if wb, err = r.newWorkBlock(d); err != nil {
			return
		}
		if err = r.processBlock(wb, mesh.NewCartesianNodes(*d.Box, d.Cells, d.Ghost), resolver); err != nil {
			return
		}
	}
	return r.finalize()
}
