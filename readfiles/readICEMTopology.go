package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/notargets/mbgrid/types"
	"github.com/notargets/mbgrid/utils"
)

const (
	connectivityMarker = "# Connectivity for "
	boundaryMarker     = "# Boundary conditions and/or properties for "
)

// Records keep the topology file and line they were read from
type ConnectivityRecord struct {
	File        string
	Line        int
	Box         utils.Window
	Neighbor    int // global block id
	NeighborBox utils.Window
	Orientation string
}

type BoundaryRecord struct {
	File      string
	Line      int
	Box       utils.Window
	Kind      string
	Inflow    int
	HasInflow bool
}

// PropertyRecord is a block level "b" record such as "itc <name>" or "gc <name>"
type PropertyRecord struct {
	File       string
	Line       int
	Key, Value string
}

// DomainTopology is the spliced topology of one global block, records possibly from several files
type DomainTopology struct {
	Block        int
	Connectivity []ConnectivityRecord
	Boundaries   []BoundaryRecord
	Properties   []PropertyRecord
}

// Merge appends the records of other, which must describe the same block
func (dt *DomainTopology) Merge(other *DomainTopology) {
	dt.Connectivity = append(dt.Connectivity, other.Connectivity...)
	dt.Boundaries = append(dt.Boundaries, other.Boundaries...)
	dt.Properties = append(dt.Properties, other.Properties...)
}

// Renumber maps a domain number local to a file (both 1-based) to a global block id
type Renumber func(file, domain int) (int, error)

type topologySection uint8

const (
	noSection topologySection = iota
	connectivitySection
	boundarySection
)

type topologyReader struct {
	name     string
	file     int
	renumber Renumber
	line     int
}

func (tr *topologyReader) errorf(format string, args ...interface{}) error {
	return &types.InputError{File: tr.name, Line: tr.line, Msg: fmt.Sprintf(format, args...)}
}

/*
parseDomainRef reads "domain.<id>" or "domain.<id>@<file>". Ids are local to the file
being read unless a 1-based file number selects another file of the same run.
*/
func (tr *topologyReader) parseDomainRef(ref string) (block int, err error) {
	var (
		file  = tr.file
		local int
	)
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "domain.") {
		err = tr.errorf("domain reference %q must start with \"domain.\"", ref)
		return
	}
	ref = strings.TrimPrefix(ref, "domain.")
	if at := strings.IndexByte(ref, '@'); at >= 0 {
		var fn int
		if fn, err = strconv.Atoi(ref[at+1:]); err != nil || fn < 1 {
			err = tr.errorf("bad file number in domain reference %q", ref)
			return
		}
		file = fn - 1
		ref = ref[:at]
	}
	if local, err = strconv.Atoi(ref); err != nil || local < 1 {
		err = tr.errorf("bad domain number %q", ref)
		return
	}
	if block, err = tr.renumber(file, local); err != nil {
		err = &types.InputError{File: tr.name, Line: tr.line, Msg: "renumbering domain", Err: err}
	}
	return
}

func (tr *topologyReader) parseBox(token string) (w utils.Window, err error) {
	if w, err = utils.ParseBox(token); err != nil {
		err = &types.InputError{File: tr.name, Line: tr.line, Msg: "bad index box", Err: err}
	}
	return
}

/*
ReadICEMTopology reads the topology stream of file number file (0-based) and returns one
record set per domain section, in order of first appearance, with all domain ids
renumbered to global block ids.

Records are tab prefixed and tab separated:

	f <box> domain.<id>[@<file>] <box> <orientation>   connectivity section
	f <kind> [<inflow index>] <box>                    boundary section
	b <key> <value>                                    block property
	e ..., v ...                                       ignored
*/
func ReadICEMTopology(name string, r io.Reader, file int, renumber Renumber) (domains []*DomainTopology, err error) {
	var (
		tr      = &topologyReader{name: name, file: file, renumber: renumber}
		scanner = bufio.NewScanner(r)
		byBlock = make(map[int]*DomainTopology)
		section = noSection
		current *DomainTopology
	)
	for scanner.Scan() {
		tr.line++
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case len(strings.TrimSpace(line)) == 0:
			continue
		case strings.HasPrefix(line, "#"):
			var ref string
			switch {
			case strings.HasPrefix(line, connectivityMarker):
				section, ref = connectivitySection, line[len(connectivityMarker):]
			case strings.HasPrefix(line, boundaryMarker):
				section, ref = boundarySection, line[len(boundaryMarker):]
			default:
				continue // comment
			}
			var block int
			if block, err = tr.parseDomainRef(ref); err != nil {
				return
			}
			if current = byBlock[block]; current == nil {
				current = &DomainTopology{Block: block}
				byBlock[block] = current
				domains = append(domains, current)
			}
			continue
		case !strings.HasPrefix(line, "\t"):
			err = tr.errorf("unrecognized line %q", line)
			return
		}
		fields := strings.Split(line[1:], "\t")
		marker := strings.TrimSpace(fields[0])
		if marker == "e" || marker == "v" {
			continue
		}
		if current == nil {
			err = tr.errorf("record before any domain section")
			return
		}
		switch marker {
		case "f":
			if section == connectivitySection {
				err = tr.connectivity(fields, current)
			} else {
				err = tr.boundary(fields, current)
			}
		case "b":
			if len(fields) != 3 {
				err = tr.errorf("block property needs a key and a value, found %d fields", len(fields)-1)
			} else {
				current.Properties = append(current.Properties, PropertyRecord{File: tr.name, Line: tr.line,
					Key: strings.ToLower(strings.TrimSpace(fields[1])), Value: strings.TrimSpace(fields[2])})
			}
		default:
			err = tr.errorf("unknown record type %q", marker)
		}
		if err != nil {
			return
		}
	}
	if scErr := scanner.Err(); scErr != nil {
		err = &types.InputError{File: name, Line: tr.line, Msg: "reading topology", Err: scErr}
	}
	return
}

func (tr *topologyReader) connectivity(fields []string, dt *DomainTopology) (err error) {
	if len(fields) != 5 {
		return tr.errorf("connectivity record needs box, domain, box and orientation, found %d fields", len(fields)-1)
	}
	rec := ConnectivityRecord{File: tr.name, Line: tr.line, Orientation: fields[4]}
	if rec.Box, err = tr.parseBox(fields[1]); err != nil {
		return
	}
	if rec.Neighbor, err = tr.parseDomainRef(fields[2]); err != nil {
		return
	}
	if rec.NeighborBox, err = tr.parseBox(fields[3]); err != nil {
		return
	}
	dt.Connectivity = append(dt.Connectivity, rec)
	return
}

func (tr *topologyReader) boundary(fields []string, dt *DomainTopology) (err error) {
	if len(fields) != 3 && len(fields) != 4 {
		return tr.errorf("boundary record needs a kind, an optional inflow index and a box, found %d fields", len(fields)-1)
	}
	rec := BoundaryRecord{File: tr.name, Line: tr.line, Kind: strings.TrimSpace(fields[1])}
	if rec.Box, err = tr.parseBox(fields[len(fields)-1]); err != nil {
		return
	}
	if len(fields) == 4 {
		// The inflow index directly precedes the box
		if rec.Inflow, err = strconv.Atoi(strings.TrimSpace(fields[len(fields)-2])); err != nil {
			return tr.errorf("bad inflow index %q", fields[len(fields)-2])
		}
		rec.HasInflow = true
	}
	dt.Boundaries = append(dt.Boundaries, rec)
	return
}
