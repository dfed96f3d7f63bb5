package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/spreading-analysis/pkg/results"
	"github.com/gilchrisn/spreading-analysis/pkg/structure"
	"github.com/gilchrisn/spreading-analysis/pkg/sweep"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Estimate the mean outbreak size of every node",
	Long: `simulate seeds the configured number of outbreaks at every node of the
network and writes the per-node means, together with each node's degree,
betweenness centrality and coreness, to a JSON result blob in the debug
directory. A YAML manifest is written next to it, and the run is stored in
the SQLite archive when one is configured.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := commandLogger(cmd)

	settings, err := cfg.Simulation()
	if err != nil {
		return err
	}

	g, stats, err := loadNetwork(cfg, log)
	if err != nil {
		return err
	}

	metrics, err := structure.Compute(ctx, g, structure.Options{SkipRanking: true}, log)
	if err != nil {
		return err
	}

	var sweepMetrics *sweep.Metrics
	if cfg.MetricsFile() != "" {
		sweepMetrics = sweep.NewMetrics("spread")
	}

	res, err := sweep.Run(ctx, g, sweep.Options{
		Model:            settings.Model,
		Params:           settings.Params,
		Repetitions:      settings.Repetitions,
		Seed:             settings.Seed,
		Workers:          settings.Workers,
		ProgressInterval: settings.ProgressInterval,
		Metrics:          sweepMetrics,
	}, log)
	if err != nil {
		return err
	}

	blob := results.New(g, metrics, res, settings.Model, settings.Params, settings.Seed)
	blobPath := filepath.Join(cfg.DebugDir(), results.DefaultFileName(g.Name, settings.Params.Beta))
	if err := results.Save(blobPath, blob); err != nil {
		return err
	}

	manifest := results.NewManifest(blob, blobPath, g, stats)
	manifest.Network.Source = cfg.NetworkPath()
	if cfg.NetworkModel() != "" {
		manifest.Network.Source = cfg.NetworkModel()
	}
	manifest.Workers = res.Workers
	manifest.Elapsed = res.Elapsed.String()
	manifest.Config = cfg.AllSettings()
	if err := results.SaveManifest(results.ManifestPath(blobPath), manifest); err != nil {
		return err
	}

	if err := archiveRun(ctx, blob, log); err != nil {
		return err
	}

	if sweepMetrics != nil {
		if err := sweepMetrics.WriteToTextfile(cfg.MetricsFile()); err != nil {
			return err
		}
	}

	log.Info().
		Str("run_id", blob.RunID).
		Str("blob", blobPath).
		Dur("elapsed", res.Elapsed).
		Msg("Simulation saved")
	fmt.Fprintln(cmd.OutOrStdout(), blobPath)
	return nil
}

// archiveRun stores the blob when an archive is configured
func archiveRun(ctx context.Context, blob *results.Blob, log zerolog.Logger) error {
	if cfg.ArchivePath() == "" {
		return nil
	}

	archive, err := results.OpenArchive(cfg.ArchivePath())
	if err != nil {
		return err
	}
	defer archive.Close()

	if err := archive.Put(ctx, blob); err != nil {
		return err
	}
	log.Info().Str("run_id", blob.RunID).Str("archive", archive.Path()).Msg("Archived run")
	return nil
}
