package solverio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/google/uuid"
)

const ManifestFile = "manifest.yaml"

type ManifestBlock struct {
	ID        int      `json:"ID"`
	Name      string   `json:"Name,omitempty"`
	Cells     [][3]int `json:"Cells"` // per output level
	Ghost     [6]int   `json:"Ghost"`
	MeshFile  string   `json:"MeshFile"`
	BCFile    string   `json:"BCFile"`
	StateFile string   `json:"StateFile"`
}

// Manifest describes one generator run and the files it wrote
type Manifest struct {
	RunID      string          `json:"RunID"`
	Title      string          `json:"Title,omitempty"`
	Mode       string          `json:"Mode"`
	Levels     int             `json:"Levels"`
	LevelOrder string          `json:"LevelOrder"`
	Species    []string        `json:"Species,omitempty"`
	Blocks     []ManifestBlock `json:"Blocks"`
}

func NewManifest(title, mode string, levels int, levelOrder string, species []string) *Manifest {
	return &Manifest{
		RunID:      uuid.NewString(),
		Title:      title,
		Mode:       mode,
		Levels:     levels,
		LevelOrder: levelOrder,
		Species:    species,
	}
}

// AddBlock records a block whose files were written with the default names
func (m *Manifest) AddBlock(id int, name string, cells [][3]int, ghost [6]int) {
	m.Blocks = append(m.Blocks, ManifestBlock{
		ID:        id,
		Name:      name,
		Cells:     cells,
		Ghost:     ghost,
		MeshFile:  MeshFile(id),
		BCFile:    BCFile(id),
		StateFile: StateFile(id),
	})
}

func (w *Writer) WriteManifest(m *Manifest) (err error) {
	var data []byte
	if data, err = yaml.Marshal(m); err != nil {
		return
	}
	return os.WriteFile(filepath.Join(w.Dir, ManifestFile), data, 0644)
}

func ReadManifest(dir string) (m *Manifest, err error) {
	var data []byte
	if data, err = os.ReadFile(filepath.Join(dir, ManifestFile)); err != nil {
		return
	}
	m = &Manifest{}
	if err = yaml.Unmarshal(data, m); err != nil {
		m = nil
		return
	}
	if _, err = uuid.Parse(m.RunID); err != nil {
		err = fmt.Errorf("manifest run id %q: %w", m.RunID, err)
		m = nil
	}
	return
}
