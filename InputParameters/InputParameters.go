package InputParameters

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/mbgrid/mesh"
	"github.com/notargets/mbgrid/pipeline"
	"github.com/notargets/mbgrid/types"
)

// StateInput is a uniform flow state
type StateInput struct {
	Species  []float64 `json:"Species"`
	Velocity [3]float64 `json:"Velocity"`
	Pressure float64   `json:"Pressure"`
	Density  float64   `json:"Density"`
	Gamma    float64   `json:"Gamma"`
}

func (si *StateInput) FlowState() types.FlowState {
	return types.FlowState{
		Species:  append([]float64(nil), si.Species...),
		Velocity: r3.Vec{X: si.Velocity[0], Y: si.Velocity[1], Z: si.Velocity[2]},
		Pressure: si.Pressure,
		Density:  si.Density,
		Gamma:    si.Gamma,
	}
}

type FaceInput struct {
	BC       string `json:"BC"`
	Neighbor int    `json:"Neighbor,omitempty"` // adjacent: 1-based block number
	Inflow   int    `json:"Inflow,omitempty"`   // inflow1/inflow2: row of InflowStates
}

type BoxInput struct {
	XMin float64 `json:"XMin"`
	XMax float64 `json:"XMax"`
	YMin float64 `json:"YMin"`
	YMax float64 `json:"YMax"`
	ZMin float64 `json:"ZMin"`
	ZMax float64 `json:"ZMax"`
}

type BlockInput struct {
	Name  string               `json:"Name"`
	Cells [3]int               `json:"Cells"`
	Ghost []int                `json:"Ghost"` // six depths in face order, empty for the file default
	Box   BoxInput             `json:"Box"`
	Faces map[string]FaceInput `json:"Faces"` // keyed by face: -i, +i, -j, +j, -k, +k
	State *StateInput          `json:"State"` // nil for the file default
}

// Common holds the parameters shared by both input modes
type Common struct {
	Title        string       `json:"Title"`
	Levels       int          `json:"Levels"`
	LevelOrder   string       `json:"LevelOrder"`
	SpeciesFile  string       `json:"SpeciesFile"`
	Ghost        []int        `json:"Ghost"`
	State        StateInput   `json:"State"`
	InflowStates []StateInput `json:"InflowStates"`
}

func (c *Common) Options() pipeline.Options {
	return pipeline.Options{Title: c.Title, Levels: c.Levels, LevelOrder: c.LevelOrder}
}

func (c *Common) print() {
	fmt.Printf("\"%s\"\t\t= Title\n", c.Title)
	fmt.Printf("[%d]\t\t\t\t= Multigrid Levels\n", c.Levels)
	fmt.Printf("[%s]\t\t= Level Order\n", c.LevelOrder)
	fmt.Printf("[%s]\t\t= Species File\n", c.SpeciesFile)
	fmt.Printf("%v\t\t= Default Ghost Depths\n", c.Ghost)
	fmt.Printf("%+v\t= Default State\n", c.State)
	for n, st := range c.InflowStates {
		fmt.Printf("InflowStates[%d] = %+v\n", n, st)
	}
}

func ghostDepths(vals []int, def [types.NFaces]int) (ghost [types.NFaces]int, err error) {
	switch len(vals) {
	case 0:
		ghost = def
	case types.NFaces:
		copy(ghost[:], vals)
		for f, g := range ghost {
			if g < 0 {
				err = fmt.Errorf("ghost depth %d on face %s is negative", g, types.Face(f))
				return
			}
		}
	default:
		err = fmt.Errorf("ghost depths need %d values in order -i,+i,-j,+j,-k,+k, have %d", types.NFaces, len(vals))
	}
	return
}

// DefaultGhost is the file wide ghost depth, zero on every face when not given
func (c *Common) DefaultGhost() ([types.NFaces]int, error) {
	return ghostDepths(c.Ghost, [types.NFaces]int{})
}

/*
BlocksInput is the YAML input of the direct blocks mode:

	Title: "Two blocks"
	Levels: 2
	SpeciesFile: air.yaml
	Ghost: [1, 1, 1, 1, 1, 1]
	State: {Species: [1], Velocity: [100, 0, 0], Pressure: 101325, Density: 1.225, Gamma: 1.4}
	InflowStates:
	  - {Species: [1], Velocity: [120, 0, 0], Pressure: 110000, Density: 1.3, Gamma: 1.4}
	Blocks:
	  - Name: left
	    Cells: [8, 4, 4]
	    Box: {XMin: 0, XMax: 2, YMin: 0, YMax: 1, ZMin: 0, ZMax: 1}
	    Faces:
	      -i: {BC: inflow1, Inflow: 0}
	      +i: {BC: adjacent, Neighbor: 2}
	      -j: {BC: wall}
	      ...
*/
type BlocksInput struct {
	Common
	Blocks []BlockInput `json:"Blocks"`
}

func (ip *BlocksInput) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *BlocksInput) Print() {
	ip.print()
	for n, b := range ip.Blocks {
		fmt.Printf("Blocks[%d] = %s, cells %v, box %+v\n", n+1, b.Name, b.Cells, b.Box)
		keys := make([]string, 0, len(b.Faces))
		for k := range b.Faces {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("\tFaces[%s] = %+v\n", key, b.Faces[key])
		}
	}
}

// Table converts the blocks into a block descriptor table
func (ip *BlocksInput) Table() (tbl *mesh.Table, err error) {
	var def [types.NFaces]int
	if def, err = ip.DefaultGhost(); err != nil {
		return nil, &types.InputError{Msg: "Ghost", Err: err}
	}
	if len(ip.Blocks) == 0 {
		return nil, &types.InputError{Msg: "no Blocks"}
	}
	tbl = mesh.NewTable(ip.Levels)
	for n, b := range ip.Blocks {
		d := &mesh.Descriptor{
			Name:  b.Name,
			Cells: b.Cells,
			Box:   &mesh.Box{XMin: b.Box.XMin, XMax: b.Box.XMax, YMin: b.Box.YMin, YMax: b.Box.YMax, ZMin: b.Box.ZMin, ZMax: b.Box.ZMax},
			State: ip.State.FlowState(),
		}
		if b.State != nil {
			d.State = b.State.FlowState()
		}
		if d.Ghost, err = ghostDepths(b.Ghost, def); err != nil {
			return nil, &types.InputError{Block: n + 1, Msg: "Ghost", Err: err}
		}
		if err = faceSpecs(b.Faces, &d.Faces); err != nil {
			return nil, &types.InputError{Block: n + 1, Msg: "Faces", Err: err}
		}
		tbl.Add(d)
	}
	return
}

func faceSpecs(faces map[string]FaceInput, specs *[types.NFaces]mesh.FaceSpec) error {
	var set [types.NFaces]bool
	for key, fi := range faces {
		f, ok := types.ParseFace(key)
		if !ok {
			return fmt.Errorf("unknown face %q, faces are -i, +i, -j, +j, -k, +k", key)
		}
		kind, err := types.ParseBCKind(fi.BC)
		if err != nil {
			return fmt.Errorf("face %s: %w", f, err)
		}
		specs[f] = mesh.FaceSpec{Kind: kind, Neighbor: fi.Neighbor, Inflow: fi.Inflow}
		set[f] = true
	}
	var missing []string
	for f, ok := range set {
		if !ok {
			missing = append(missing, types.Face(f).String())
		}
	}
	if len(missing) != 0 {
		return fmt.Errorf("no BC for faces %s", strings.Join(missing, ", "))
	}
	return nil
}

type ICEMFilePair struct {
	Geometry string `json:"Geometry"`
	Topology string `json:"Topology"`
}

/*
ICEMInput is the YAML input of the ICEM import mode:

	Title: "Imported grid"
	Levels: 3
	LevelOrder: coarse-first
	SpeciesFile: air.yaml
	Ghost: [2, 2, 2, 2, 2, 2]
	DefaultBC: wall
	State: {Species: [1], Velocity: [0, 0, 0], Pressure: 101325, Density: 1.225, Gamma: 1.4}
	Files:
	  - {Geometry: part1.geo, Topology: part1.topo}
	  - {Geometry: part2.geo, Topology: part2.topo}
*/
type ICEMInput struct {
	Common
	DefaultBC    string         `json:"DefaultBC"`
	CompanionDir string         `json:"CompanionDir"`
	Files        []ICEMFilePair `json:"Files"`
}

func (ip *ICEMInput) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *ICEMInput) Print() {
	ip.print()
	fmt.Printf("[%s]\t\t\t= Default BC\n", ip.DefaultBC)
	for n, fp := range ip.Files {
		fmt.Printf("Files[%d] = %s, %s\n", n+1, fp.Geometry, fp.Topology)
	}
}

// Run converts the input into an import run, relative paths taken from dir
func (ip *ICEMInput) Run(dir string) (run *pipeline.ICEMRun, err error) {
	run = &pipeline.ICEMRun{
		State:        ip.State.FlowState(),
		InflowStates: len(ip.InflowStates),
	}
	if run.Ghost, err = ip.DefaultGhost(); err != nil {
		return nil, &types.InputError{Msg: "Ghost", Err: err}
	}
	if ip.DefaultBC != "" {
		var kind types.BCKind
		if kind, err = types.ParseBCKind(ip.DefaultBC); err != nil {
			return nil, &types.InputError{Msg: "DefaultBC", Err: err}
		}
		if kind == types.BC_Adjacent || kind.IsInflow() {
			return nil, &types.InputError{Msg: fmt.Sprintf("DefaultBC %s needs a payload, use a plain kind", kind)}
		}
		run.DefaultBC = types.Plain{K: kind}
	}
	if ip.CompanionDir != "" {
		run.CompanionDir = Resolve(dir, ip.CompanionDir)
	}
	if len(ip.Files) == 0 {
		return nil, &types.InputError{Msg: "no Files"}
	}
	for n, fp := range ip.Files {
		if fp.Geometry == "" || fp.Topology == "" {
			return nil, &types.InputError{Msg: fmt.Sprintf("Files[%d] needs a Geometry and a Topology file", n+1)}
		}
		run.Files = append(run.Files, pipeline.ICEMFiles{
			Geometry: Resolve(dir, fp.Geometry),
			Topology: Resolve(dir, fp.Topology),
		})
	}
	return
}

// Resolve makes a path named in an input file relative to the input file's directory
func Resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
