package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/spreading-analysis/pkg/network"
	"github.com/gilchrisn/spreading-analysis/pkg/results"
)

// execute runs the root command once. Flag values persist between calls,
// so every call names all the flags it depends on.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), "spread %s", strings.Join(args, " "))
	return out.String()
}

func TestCommandPipeline(t *testing.T) {
	dir := t.TempDir()
	netPath := filepath.Join(dir, "ring.txt")
	figures := filepath.Join(dir, "figures")
	debug := filepath.Join(dir, "debug")
	archivePath := filepath.Join(dir, "runs.db")

	out := execute(t, "generate",
		"--network-model", "cycle", "--model-nodes", "12", "--seed", "3",
		"--out", netPath)
	assert.Equal(t, netPath, strings.TrimSpace(out))

	g, err := network.Load(netPath, network.FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, 12, g.NumNodes)
	assert.Equal(t, 12, g.NumEdges)

	common := []string{
		"--network", "ring", "--network-path", netPath, "--network-model", "",
		"--beta", "0.3", "--gamma", "1", "--repetitions", "4", "--workers", "2",
		"--output-dir", figures, "--debug-dir", debug, "--archive", archivePath,
	}

	out = execute(t, append([]string{"simulate"}, common...)...)
	blobPath := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(debug, "sir_simulation_ring_beta30.json"), blobPath)

	blob, err := results.Load(blobPath)
	require.NoError(t, err)
	assert.Equal(t, "ring", blob.NetworkName)
	assert.Len(t, blob.M, 12)
	assert.True(t, blob.HasStructure())
	assert.FileExists(t, results.ManifestPath(blobPath))

	out = execute(t, append([]string{"analyze", "--latest"}, common...)...)
	assert.Contains(t, out, blob.RunID)
	assert.Contains(t, out, "degree")
	assert.FileExists(t, filepath.Join(figures, "ks_vs_k_spreading_prediction_ring.png"))
	assert.FileExists(t, filepath.Join(figures, "ks_vs_cb_spreading_prediction_ring.png"))

	out = execute(t, append([]string{"runs"}, common...)...)
	assert.Contains(t, out, blob.RunID)
	assert.Contains(t, out, "ring")

	out = execute(t, append([]string{"trend", "--start-node", "2"}, common...)...)
	trendPath := filepath.Join(figures, "diffusion_trend_start_node_2_ring.png")
	assert.Equal(t, trendPath, strings.TrimSpace(out))
	assert.FileExists(t, trendPath)
}

func TestCharacterise(t *testing.T) {
	dir := t.TempDir()
	netPath := filepath.Join(dir, "karate.txt")
	require.NoError(t, network.SaveEdgeList(netPath, network.Star(6)))

	out := execute(t, "characterise",
		"--network", "star", "--network-path", netPath, "--network-model", "",
		"--output-dir", dir, "--archive", "")
	assert.Contains(t, out, "star")

	for _, name := range []string{
		"network_characterisation_star.png",
		"degree_rank_star.png",
		"node_coreness_characterisation_star.png",
		"network_and_outer_shell_star.png",
		"star_annotated.dot",
		"star_profiles.json",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	dot, err := os.ReadFile(filepath.Join(dir, "star_annotated.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(dot), "coreness")
}

func TestGenerateRequiresModel(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"generate", "--network-model", "", "--out", filepath.Join(t.TempDir(), "x.txt"), "--log-level", "error"})
	assert.Error(t, rootCmd.Execute())
}
