// Package results persists sweep outputs: a self-describing JSON blob per
// run, a YAML manifest recording how it was produced, and an optional
// SQLite archive holding many runs.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gilchrisn/spreading-analysis/pkg/epidemic"
	"github.com/gilchrisn/spreading-analysis/pkg/network"
	"github.com/gilchrisn/spreading-analysis/pkg/structure"
	"github.com/gilchrisn/spreading-analysis/pkg/sweep"
)

var (
	// ErrSchema is returned when a blob is missing fields or its arrays disagree in length.
	ErrSchema = errors.New("result blob does not match schema")
	// ErrNotFound is returned when an archive has no matching run.
	ErrNotFound = errors.New("run not found")
)

// Blob is the serialized result of one sweep. Per-node arrays are in node
// index order; the structural arrays are optional.
type Blob struct {
	RunID        string    `json:"run_id"`
	NetworkName  string    `json:"network_name"`
	CreatedAt    time.Time `json:"created_at"`
	Model        string    `json:"model"`
	Beta         float64   `json:"beta"`
	Gamma        float64   `json:"gamma"`
	Lambda       float64   `json:"lambda"`
	Iterations   int       `json:"iterations"`
	Repetitions  int       `json:"repetitions"`
	Seed         uint64    `json:"seed"`
	Labels       []string  `json:"labels,omitempty"`
	M            []float64 `json:"M"`
	MStd         []float64 `json:"m_std,omitempty"`
	Degrees      []int     `json:"degrees,omitempty"`
	Centralities []float64 `json:"centralities,omitempty"`
	Corenesses   []int     `json:"corenesses,omitempty"`
}

// New assembles a blob from a finished sweep
func New(g *network.Graph, metrics *structure.Metrics, res *sweep.Result, model epidemic.Model, params epidemic.Params, seed uint64) *Blob {
	b := &Blob{
		RunID:       uuid.New().String(),
		NetworkName: g.Name,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		Model:       string(model),
		Beta:        params.Beta,
		Gamma:       params.Gamma,
		Lambda:      params.Lambda,
		Iterations:  params.Iterations,
		Repetitions: res.Repetitions,
		Seed:        seed,
		Labels:      append([]string(nil), g.Labels...),
		M:           append([]float64(nil), res.M...),
		MStd:        append([]float64(nil), res.StdDev...),
	}
	if metrics != nil {
		b.Degrees = append([]int(nil), metrics.Degrees...)
		b.Centralities = append([]float64(nil), metrics.Centralities...)
		b.Corenesses = append([]int(nil), metrics.Corenesses...)
	}
	return b
}

// Validate checks the required fields and that every present per-node
// array has one entry per node
func (b *Blob) Validate() error {
	if b.NetworkName == "" {
		return fmt.Errorf("%w: network_name is empty", ErrSchema)
	}
	n := len(b.M)
	if n == 0 {
		return fmt.Errorf("%w: M is empty", ErrSchema)
	}
	for v, m := range b.M {
		if m < 0 || math.IsNaN(m) {
			return fmt.Errorf("%w: M[%d] = %v", ErrSchema, v, m)
		}
	}

	lengths := map[string]int{
		"labels":       len(b.Labels),
		"m_std":        len(b.MStd),
		"degrees":      len(b.Degrees),
		"centralities": len(b.Centralities),
		"corenesses":   len(b.Corenesses),
	}
	for field, l := range lengths {
		if l != 0 && l != n {
			return fmt.Errorf("%w: %s has %d entries, M has %d", ErrSchema, field, l, n)
		}
	}
	return nil
}

// HasStructure reports whether the blob carries degree, centrality and
// coreness arrays
func (b *Blob) HasStructure() bool {
	n := len(b.M)
	return len(b.Degrees) == n && len(b.Centralities) == n && len(b.Corenesses) == n
}

// Metrics rebuilds structural metrics from the stored arrays
func (b *Blob) Metrics() (*structure.Metrics, error) {
	if !b.HasStructure() {
		return nil, fmt.Errorf("%w: blob has no structural arrays", ErrSchema)
	}

	m := &structure.Metrics{
		Degrees:      b.Degrees,
		Corenesses:   b.Corenesses,
		Centralities: b.Centralities,
		PageRanks:    make([]float64, len(b.M)),
	}
	for v, k := range b.Corenesses {
		for len(m.Shells) <= k {
			m.Shells = append(m.Shells, nil)
		}
		m.Shells[k] = append(m.Shells[k], v)
		m.FinalLayer = max(m.FinalLayer, k)
	}
	return m, nil
}

// Params returns the epidemic parameters the blob was produced with
func (b *Blob) Params() epidemic.Params {
	return epidemic.Params{Beta: b.Beta, Gamma: b.Gamma, Lambda: b.Lambda, Iterations: b.Iterations}
}

// DefaultFileName returns the conventional blob name for a network and beta
func DefaultFileName(networkName string, beta float64) string {
	return fmt.Sprintf("sir_simulation_%s_beta%d.json", networkName, int(math.Round(beta*100)))
}

// Save writes the blob as indented JSON, creating parent directories
func Save(path string, b *Blob) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(b); err != nil {
		return fmt.Errorf("failed to encode blob: %w", err)
	}
	return file.Close()
}

// Load reads and validates a blob
func Load(path string) (*Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid blob %s: %w", path, err)
	}
	return &b, nil
}

// ManifestPath returns the manifest path that accompanies a blob
func ManifestPath(blobPath string) string {
	return strings.TrimSuffix(blobPath, filepath.Ext(blobPath)) + ".manifest.yaml"
}
