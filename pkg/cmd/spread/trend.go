package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/spreading-analysis/pkg/epidemic"
	"github.com/gilchrisn/spreading-analysis/pkg/plotting"
)

var (
	trendStartLabel string
	trendByFraction bool
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Plot the diffusion trend of a single outbreak",
	Long: `trend runs one outbreak and plots how many nodes are susceptible,
infected and recovered at every step. The outbreak starts at --start-node (a
node index) or --start-label (a node identifier from the input file). With
--by-fraction, or for the SIS model, a random fraction of the nodes is seeded
instead.`,
	Args: cobra.NoArgs,
	RunE: runTrend,
}

func init() {
	trendCmd.Flags().Int("start-node", 0, "index of the origin node")
	if err := cfg.Viper().BindPFlag("simulation.start_node", trendCmd.Flags().Lookup("start-node")); err != nil {
		panic(err)
	}
	trendCmd.Flags().StringVar(&trendStartLabel, "start-label", "", "identifier of the origin node, overriding --start-node")
	trendCmd.Flags().BoolVar(&trendByFraction, "by-fraction", false, "seed a random fraction of nodes (see --fraction)")
}

func runTrend(cmd *cobra.Command, args []string) error {
	log := commandLogger(cmd)

	settings, err := cfg.Simulation()
	if err != nil {
		return err
	}

	g, _, err := loadNetwork(cfg, log)
	if err != nil {
		return err
	}

	rng := epidemic.NewRand(settings.Seed, 0)

	var (
		seeds []int
		kind  string
	)
	switch {
	case trendByFraction || settings.Model == epidemic.SIS:
		seeds, err = epidemic.SeedFraction(g.NumNodes, settings.FractionInfected, rng)
		if err != nil {
			return err
		}
		kind = fmt.Sprintf("diffusion_trend_fraction_%d", int(math.Round(settings.FractionInfected*100)))
	case trendStartLabel != "":
		origin, ok := g.IndexOf(trendStartLabel)
		if !ok {
			return fmt.Errorf("%w: no node labelled %q in %s", epidemic.ErrOrigin, trendStartLabel, g.Name)
		}
		seeds = []int{origin}
		kind = fmt.Sprintf("diffusion_trend_start_node_%s", trendStartLabel)
	default:
		seeds = []int{settings.StartNode}
		kind = fmt.Sprintf("diffusion_trend_start_node_%d", settings.StartNode)
	}

	sim, err := epidemic.NewSimulator(g, settings.Model, settings.Params)
	if err != nil {
		return err
	}
	out, err := sim.RecordTrend(true).Run(seeds, rng)
	if err != nil {
		return err
	}

	log.Info().
		Str("model", string(settings.Model)).
		Int("seeds", len(seeds)).
		Int("steps", out.Steps).
		Int("susceptible", out.Susceptible).
		Int("infected", out.Infected).
		Int("recovered", out.Recovered).
		Msg("Outbreak finished")

	title := fmt.Sprintf("%s %s diffusion, beta=%g", g.Name, settings.Model, settings.Params.Beta)
	path := figurePath(cfg, kind, g.Name)
	if err := plotting.Trend(path, title, out.Trend, plotOptions(cfg)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
