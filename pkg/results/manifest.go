package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

// NetworkInfo describes the network a run was computed on, after preparation
type NetworkInfo struct {
	Name         string `yaml:"name"`
	Source       string `yaml:"source,omitempty"`
	Nodes        int    `yaml:"nodes"`
	Edges        int    `yaml:"edges"`
	DroppedNodes int    `yaml:"dropped_nodes"`
	DroppedEdges int    `yaml:"dropped_edges"`
}

// Manifest records how a blob was produced
type Manifest struct {
	RunID       string         `yaml:"run_id"`
	CreatedAt   time.Time      `yaml:"created_at"`
	Blob        string         `yaml:"blob"`
	Network     NetworkInfo    `yaml:"network"`
	Model       string         `yaml:"model"`
	Beta        float64        `yaml:"beta"`
	Gamma       float64        `yaml:"gamma"`
	Lambda      float64        `yaml:"lambda"`
	Iterations  int            `yaml:"iterations"`
	Repetitions int            `yaml:"repetitions"`
	Seed        uint64         `yaml:"seed"`
	Workers     int            `yaml:"workers"`
	Elapsed     string         `yaml:"elapsed"`
	Artifacts   []string       `yaml:"artifacts,omitempty"`
	Config      map[string]any `yaml:"config,omitempty"`
}

// NewManifest describes blob b, written to blobPath, for the prepared graph g
func NewManifest(b *Blob, blobPath string, g *network.Graph, stats network.PrepareStats) *Manifest {
	return &Manifest{
		RunID:     b.RunID,
		CreatedAt: b.CreatedAt,
		Blob:      filepath.Base(blobPath),
		Network: NetworkInfo{
			Name:         g.Name,
			Nodes:        g.NumNodes,
			Edges:        g.NumEdges,
			DroppedNodes: stats.DroppedNodes,
			DroppedEdges: stats.DroppedEdges,
		},
		Model:       b.Model,
		Beta:        b.Beta,
		Gamma:       b.Gamma,
		Lambda:      b.Lambda,
		Iterations:  b.Iterations,
		Repetitions: b.Repetitions,
		Seed:        b.Seed,
	}
}

// SaveManifest writes m as YAML
func SaveManifest(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush manifest: %w", err)
	}
	return file.Close()
}

// LoadManifest reads a YAML manifest
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest %s: %v", ErrSchema, path, err)
	}
	return &m, nil
}
