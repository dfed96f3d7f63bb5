package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/spreading-analysis/pkg/aggregate"
	"github.com/gilchrisn/spreading-analysis/pkg/plotting"
	"github.com/gilchrisn/spreading-analysis/pkg/results"
	"github.com/gilchrisn/spreading-analysis/pkg/structure"
)

var (
	analyzeBlob   string
	analyzeRunID  string
	analyzeLatest bool
	analyzeRows   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Relate outbreak sizes to coreness, degree and centrality",
	Long: `analyze reads a result blob, groups nodes by (coreness, degree) and by
(coreness, betweenness centrality), and draws the mean outbreak size of each
group, as a percentage of the network size, as a heatmap.

The blob is taken from --blob, from the archive by --run-id or --latest, or
by default from the debug directory under the conventional name for the
configured network and beta. Blobs without structural arrays are completed
by recomputing the metrics on the configured network.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeBlob, "blob", "", "result blob to analyze")
	analyzeCmd.Flags().StringVar(&analyzeRunID, "run-id", "", "archived run to analyze")
	analyzeCmd.Flags().BoolVar(&analyzeLatest, "latest", false, "analyze the newest archived run for the configured network and beta")
	analyzeCmd.Flags().IntVar(&analyzeRows, "rows", 20, "bucket rows printed per table, 0 for all")
	analyzeCmd.MarkFlagsMutuallyExclusive("blob", "run-id", "latest")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := commandLogger(cmd)

	blob, err := resolveBlob(ctx, log)
	if err != nil {
		return err
	}

	metrics, err := blobMetrics(ctx, blob, log)
	if err != nil {
		return err
	}

	byDegree, err := aggregate.ByDegree(blob.M, metrics)
	if err != nil {
		return err
	}
	byCentrality, err := aggregate.ByCentrality(blob.M, metrics)
	if err != nil {
		return err
	}

	opts := plotOptions(cfg)
	figures := []struct {
		kind   string
		table  *aggregate.Table
		labels plotting.HeatmapLabels
	}{
		{"ks_vs_k_spreading_prediction", byDegree, plotting.HeatmapLabels{
			Title:  "Spreading efficiency: " + blob.NetworkName,
			XLabel: "Coreness ks",
			YLabel: "Degree k",
		}},
		{"ks_vs_cb_spreading_prediction", byCentrality, plotting.HeatmapLabels{
			Title:  "Spreading efficiency: " + blob.NetworkName,
			XLabel: "Coreness ks",
			YLabel: "Betweenness centrality CB",
		}},
	}
	for _, f := range figures {
		path := figurePath(cfg, f.kind, blob.NetworkName)
		if err := plotting.Heatmap(path, f.table.Grid(), f.labels, opts); err != nil {
			return fmt.Errorf("failed to draw %s: %w", f.kind, err)
		}
		log.Info().Str("figure", path).Int("buckets", f.table.Len()).Msg("Saved heatmap")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s  network %s  nodes %d  beta %g  repetitions %d\n\n",
		blob.RunID, blob.NetworkName, len(blob.M), blob.Beta, blob.Repetitions)
	if err := printTable(out, byDegree, analyzeRows); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return printTable(out, byCentrality, analyzeRows)
}

func resolveBlob(ctx context.Context, log zerolog.Logger) (*results.Blob, error) {
	if analyzeRunID != "" || analyzeLatest {
		if cfg.ArchivePath() == "" {
			return nil, errors.New("--run-id and --latest need an archive (--archive)")
		}
		archive, err := results.OpenArchive(cfg.ArchivePath())
		if err != nil {
			return nil, err
		}
		defer archive.Close()

		if analyzeRunID != "" {
			return archive.Get(ctx, analyzeRunID)
		}
		return archive.Latest(ctx, cfg.NetworkName(), cfg.Beta())
	}

	path := analyzeBlob
	if path == "" {
		path = filepath.Join(cfg.DebugDir(), results.DefaultFileName(cfg.NetworkName(), cfg.Beta()))
	}
	log.Info().Str("blob", path).Msg("Reading result blob")
	return results.Load(path)
}

// blobMetrics returns the structural metrics stored in the blob, or
// recomputes them on the configured network when the blob has none
func blobMetrics(ctx context.Context, blob *results.Blob, log zerolog.Logger) (*structure.Metrics, error) {
	if blob.HasStructure() {
		return blob.Metrics()
	}

	log.Info().Msg("Blob has no structural arrays, recomputing metrics")
	g, _, err := loadNetwork(cfg, log)
	if err != nil {
		return nil, err
	}
	if g.NumNodes != len(blob.M) {
		return nil, fmt.Errorf("%w: blob has %d nodes, network %s has %d",
			results.ErrSchema, len(blob.M), g.Name, g.NumNodes)
	}
	return structure.Compute(ctx, g, structure.Options{SkipRanking: true}, log)
}

func printTable(w io.Writer, t *aggregate.Table, rows int) error {
	cells := t.Cells()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "coreness\t%s\tnodes\tmean M\tM(%%)\n", t.Name)
	for i, c := range cells {
		if rows > 0 && i == rows {
			fmt.Fprintf(tw, "...\t%d more\t\t\t\n", len(cells)-rows)
			break
		}
		fmt.Fprintf(tw, "%d\t%.4g\t%d\t%.3f\t%.2f\n", c.Coreness, c.Value, c.Count, c.Mean, c.Percent)
	}
	return tw.Flush()
}
