package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/spreading-analysis/pkg/layout"
	"github.com/gilchrisn/spreading-analysis/pkg/network"
	"github.com/gilchrisn/spreading-analysis/pkg/plotting"
	"github.com/gilchrisn/spreading-analysis/pkg/results"
	"github.com/gilchrisn/spreading-analysis/pkg/structure"
)

var characteriseBlob string

var characteriseCmd = &cobra.Command{
	Use:     "characterise",
	Aliases: []string{"characterize"},
	Short:   "Describe the structure of a network",
	Long: `characterise computes degree, betweenness centrality, coreness and
PageRank for every node, prints summary statistics, and writes:

  network_characterisation_<name>.png     degree, centrality and coreness distributions
  degree_rank_<name>.png                  degree against rank, log-log
  node_*_characterisation_<name>.png      network layouts coloured by each metric
  network_and_outer_shell_<name>.png      the innermost shell highlighted
  <name>_annotated.dot                    the network with per-node metrics
  <name>_profiles.json                    the per-node metrics

With --blob the outbreak sizes of a simulation are added to the layouts and
the annotated network.`,
	Args: cobra.NoArgs,
	RunE: runCharacterise,
}

func init() {
	characteriseCmd.Flags().StringVar(&characteriseBlob, "blob", "", "result blob whose outbreak sizes are included")
}

// layoutFigure is a network layout coloured by one per-node value
type layoutFigure struct {
	kind, title, label string
	values             []float64
}

func runCharacterise(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := commandLogger(cmd)

	g, _, err := loadNetwork(cfg, log)
	if err != nil {
		return err
	}

	metrics, err := structure.Compute(ctx, g, structure.DefaultOptions(), log)
	if err != nil {
		return err
	}

	var outbreaks []float64
	if characteriseBlob != "" {
		blob, err := results.Load(characteriseBlob)
		if err != nil {
			return err
		}
		if len(blob.M) != g.NumNodes {
			return fmt.Errorf("%w: blob has %d nodes, network %s has %d",
				results.ErrSchema, len(blob.M), g.Name, g.NumNodes)
		}
		outbreaks = blob.M
	}

	summary := metrics.Summarize(g)
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to print summary: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	opts := plotOptions(cfg)
	name := g.Name

	if err := plotting.Characterisation(figurePath(cfg, "network_characterisation", name), name, metrics, opts); err != nil {
		return err
	}
	if err := plotting.DegreeRank(figurePath(cfg, "degree_rank", name), name, metrics.Degrees, opts); err != nil {
		return err
	}

	pos, err := layout.Compute(g, metrics.Corenesses, layout.Options{MaxNodes: cfg.LayoutMaxNodes()})
	if err != nil {
		return err
	}
	log.Info().Str("method", string(pos.Method)).Int("nodes", pos.Len()).Msg("Computed layout")

	layouts := []layoutFigure{
		{"node_coreness_characterisation", "Shell layer of each node", "Shell layer", structure.IntsToFloats(metrics.Corenesses)},
		{"node_degree_characterisation", "Degree of each node", "Degree", structure.IntsToFloats(metrics.Degrees)},
		{"node_centrality_characterisation", "Betweenness centrality of each node", "Betweenness centrality", metrics.Centralities},
	}
	if outbreaks != nil {
		layouts = append(layouts, layoutFigure{"node_infectiousness_characterisation", "Mean outbreak size of each origin", "M", outbreaks})
	}
	for _, l := range layouts {
		if err := plotting.NodeValues(figurePath(cfg, l.kind, name), g, pos, l.values, l.title, l.label, opts); err != nil {
			return fmt.Errorf("failed to draw %s: %w", l.kind, err)
		}
	}

	wide := opts
	wide.Width = opts.Width * 2
	if err := plotting.OuterShell(figurePath(cfg, "network_and_outer_shell", name), name, g, pos, metrics.OuterShell(), wide); err != nil {
		return err
	}

	annotations := []network.Annotation{
		network.IntAnnotation("degree", metrics.Degrees),
		network.IntAnnotation("coreness", metrics.Corenesses),
		{Name: "centrality", Values: metrics.Centralities},
		{Name: "pagerank", Values: metrics.PageRanks},
	}
	if outbreaks != nil {
		annotations = append(annotations, network.Annotation{Name: "M", Values: outbreaks})
	}
	dotPath := filepath.Join(cfg.OutputDir(), name+"_annotated.dot")
	if err := network.SaveDOT(dotPath, g, annotations...); err != nil {
		return err
	}

	profiles, err := metrics.Profiles(g)
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(cfg.OutputDir(), name+"_profiles.json"), profiles); err != nil {
		return err
	}

	log.Info().
		Str("network", name).
		Int("final_layer", metrics.FinalLayer).
		Int("outer_shell", len(metrics.OuterShell())).
		Str("output_dir", cfg.OutputDir()).
		Msg("Characterisation written")
	return nil
}

func writeJSON(path string, v interface{}) error {
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
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}
