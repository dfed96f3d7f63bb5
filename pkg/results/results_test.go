package results

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/spreading-analysis/pkg/epidemic"
	"github.com/gilchrisn/spreading-analysis/pkg/network"
	"github.com/gilchrisn/spreading-analysis/pkg/structure"
	"github.com/gilchrisn/spreading-analysis/pkg/sweep"
)

func starBlob(t *testing.T) *Blob {
	t.Helper()

	g := network.Star(4)
	g.Name = "star"
	metrics, err := structure.Compute(context.Background(), g, structure.DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	params := epidemic.Params{Beta: 0.65, Gamma: 1, Iterations: 30}
	res, err := sweep.Run(context.Background(), g, sweep.Options{
		Params:      params,
		Repetitions: 5,
		Seed:        9,
		Workers:     2,
	}, zerolog.Nop())
	require.NoError(t, err)

	return New(g, metrics, res, epidemic.SIR, params, 9)
}

func TestNewBlob(t *testing.T) {
	b := starBlob(t)

	require.NoError(t, b.Validate())
	assert.NotEmpty(t, b.RunID)
	assert.Equal(t, "star", b.NetworkName)
	assert.Equal(t, "sir", b.Model)
	assert.Equal(t, 5, b.Repetitions)
	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, b.Labels)
	assert.Equal(t, []int{4, 1, 1, 1, 1}, b.Degrees)
	assert.Equal(t, []int{1, 1, 1, 1, 1}, b.Corenesses)
	assert.Len(t, b.M, 5)
	assert.True(t, b.HasStructure())
	assert.Equal(t, epidemic.Params{Beta: 0.65, Gamma: 1, Iterations: 30}, b.Params())

	m, err := b.Metrics()
	require.NoError(t, err)
	assert.Equal(t, 1, m.FinalLayer)
	assert.Equal(t, [][]int{nil, {0, 1, 2, 3, 4}}, m.Shells)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Blob)
	}{
		{"empty network name", func(b *Blob) { b.NetworkName = "" }},
		{"empty M", func(b *Blob) { b.M = nil }},
		{"negative M", func(b *Blob) { b.M[2] = -1 }},
		{"short labels", func(b *Blob) { b.Labels = b.Labels[:2] }},
		{"long degrees", func(b *Blob) { b.Degrees = append(b.Degrees, 1) }},
		{"short corenesses", func(b *Blob) { b.Corenesses = b.Corenesses[:4] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := starBlob(t)
			tt.mutate(b)
			assert.ErrorIs(t, b.Validate(), ErrSchema)
		})
	}
}

func TestBlobWithoutStructure(t *testing.T) {
	b := &Blob{NetworkName: "bare", M: []float64{1, 2, 3}}
	require.NoError(t, b.Validate())
	assert.False(t, b.HasStructure())

	_, err := b.Metrics()
	assert.ErrorIs(t, err, ErrSchema)
}

func TestSaveLoad(t *testing.T) {
	b := starBlob(t)
	path := filepath.Join(t.TempDir(), "debugging", DefaultFileName(b.NetworkName, b.Beta))

	require.NoError(t, Save(path, b))
	loaded, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(b, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBadBlobs(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{not json"), 0644))
	_, err := Load(garbage)
	assert.ErrorIs(t, err, ErrSchema)

	mismatched := filepath.Join(dir, "mismatch.json")
	require.NoError(t, os.WriteFile(mismatched, []byte(`{"network_name":"x","M":[1,2],"degrees":[1]}`), 0644))
	_, err = Load(mismatched)
	assert.ErrorIs(t, err, ErrSchema)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "sir_simulation_power_beta65.json", DefaultFileName("power", 0.65))
	assert.Equal(t, "sir_simulation_email_beta29.json", DefaultFileName("email", 0.29))
	assert.Equal(t, "sir_simulation_er_beta100.json", DefaultFileName("er", 1))
}

func TestManifestRoundTrip(t *testing.T) {
	b := starBlob(t)
	dir := t.TempDir()
	blobPath := filepath.Join(dir, DefaultFileName(b.NetworkName, b.Beta))

	g := network.Star(4)
	g.Name = "star"
	m := NewManifest(b, blobPath, g, network.PrepareStats{OriginalNodes: 6, OriginalEdges: 4, Components: 2, DroppedNodes: 1})
	m.Workers = 2
	m.Elapsed = "1.5s"
	m.Artifacts = []string{"ks_vs_k_spreading_prediction_star.png"}
	m.Config = map[string]any{"epidemic": map[string]any{"beta": 0.65}}

	path := ManifestPath(blobPath)
	assert.Equal(t, filepath.Join(dir, "sir_simulation_star_beta65.manifest.yaml"), path)
	require.NoError(t, SaveManifest(path, m))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, b.RunID, loaded.RunID)
	assert.True(t, b.CreatedAt.Equal(loaded.CreatedAt))
	assert.Equal(t, "sir_simulation_star_beta65.json", loaded.Blob)
	assert.Equal(t, NetworkInfo{Name: "star", Nodes: 5, Edges: 4, DroppedNodes: 1}, loaded.Network)
	assert.Equal(t, 0.65, loaded.Beta)
	assert.Equal(t, 2, loaded.Workers)
	assert.Equal(t, m.Artifacts, loaded.Artifacts)
	assert.Equal(t, 0.65, loaded.Config["epidemic"].(map[string]any)["beta"])
}

func openArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchivePutGet(t *testing.T) {
	ctx := context.Background()
	a := openArchive(t)
	b := starBlob(t)

	require.NoError(t, a.Put(ctx, b))
	got, err := a.Get(ctx, b.RunID)
	require.NoError(t, err)

	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("archive round trip mismatch (-want +got):\n%s", diff)
	}

	// storing the same run again replaces it
	b.M[0] = 4
	require.NoError(t, a.Put(ctx, b))
	got, err = a.Get(ctx, b.RunID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.M[0])

	_, err = a.Get(ctx, "no-such-run")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveOptionalColumns(t *testing.T) {
	ctx := context.Background()
	a := openArchive(t)

	b := &Blob{
		RunID:       "bare",
		NetworkName: "bare",
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Model:       "sis",
		Seed:        ^uint64(0),
		M:           []float64{1, 2},
	}
	require.NoError(t, a.Put(ctx, b))

	got, err := a.Get(ctx, "bare")
	require.NoError(t, err)
	assert.Nil(t, got.Labels)
	assert.Nil(t, got.Degrees)
	assert.Nil(t, got.Centralities)
	assert.Equal(t, []float64{1, 2}, got.M)
	assert.Equal(t, ^uint64(0), got.Seed)
}

func TestArchiveLatestAndList(t *testing.T) {
	ctx := context.Background()
	a := openArchive(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, beta := range []float64{0.65, 0.65, 0.3} {
		b := &Blob{
			RunID:       []string{"first", "second", "other"}[i],
			NetworkName: "power",
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
			Model:       "sir",
			Beta:        beta,
			M:           []float64{float64(i)},
		}
		require.NoError(t, a.Put(ctx, b))
	}

	latest, err := a.Latest(ctx, "power", 0.65)
	require.NoError(t, err)
	assert.Equal(t, "second", latest.RunID)

	_, err = a.Latest(ctx, "power", 0.9)
	assert.ErrorIs(t, err, ErrNotFound)

	runs, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"other", "second", "first"}, []string{runs[0].RunID, runs[1].RunID, runs[2].RunID})
	assert.Equal(t, 1, runs[0].Nodes)
	assert.True(t, base.Equal(runs[2].CreatedAt))
}
