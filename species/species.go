package species

import (
	"fmt"
	"os"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/mbgrid/types"
)

type Species struct {
	Name            string  `json:"Name"`
	MolecularWeight float64 `json:"MolecularWeight"`
}

/*
Table is the species and fluid property file:

	Species:
	  - Name: N2
	    MolecularWeight: 28.0134
	  - Name: O2
	    MolecularWeight: 31.9988
*/
type Table struct {
	Species []Species `json:"Species"`
}

func (st *Table) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, st); err != nil {
		return
	}
	return st.check()
}

func (st *Table) check() error {
	if len(st.Species) == 0 {
		return fmt.Errorf("species file defines no species")
	}
	seen := make(map[string]bool, len(st.Species))
	for n, sp := range st.Species {
		name := strings.TrimSpace(sp.Name)
		if name == "" {
			return fmt.Errorf("species %d has no name", n+1)
		}
		if seen[strings.ToLower(name)] {
			return fmt.Errorf("species %q is defined twice", name)
		}
		seen[strings.ToLower(name)] = true
		if sp.MolecularWeight <= 0 {
			return fmt.Errorf("species %q must have a positive molecular weight, have %v", name, sp.MolecularWeight)
		}
	}
	return nil
}

// Ns is the number of species carried in every state vector
func (st *Table) Ns() int { return len(st.Species) }

func (st *Table) Names() (names []string) {
	for _, sp := range st.Species {
		names = append(names, sp.Name)
	}
	return
}

func (st *Table) Print() {
	fmt.Printf("[%d]\t\t\t\t= Number of Species\n", st.Ns())
	for _, sp := range st.Species {
		fmt.Printf("%-8s %10.5f\t= Molecular Weight\n", sp.Name, sp.MolecularWeight)
	}
}

// Load reads a species file; a missing or malformed file is an input error
func Load(path string) (st *Table, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		err = &types.InputError{File: path, Msg: "reading species file", Err: err}
		return
	}
	st = &Table{}
	if err = st.Parse(data); err != nil {
		st = nil
		err = &types.InputError{File: path, Msg: "parsing species file", Err: err}
	}
	return
}
