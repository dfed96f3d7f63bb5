// Command spread studies epidemic spreading on networks: it simulates
// outbreaks seeded at every node, stores the per-node outbreak sizes and
// relates them to the structural position of the origin.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/spreading-analysis/pkg/config"
)

var (
	cfgFile string
	cfg     = config.NewConfig()
	logger  = cfg.CreateLogger()
)

var rootCmd = &cobra.Command{
	Use:   "spread",
	Short: "Epidemic spreading analysis on complex networks",
	Long: `spread runs SIR/SIS outbreak simulations on a network and relates the
mean outbreak size of every origin to its degree, betweenness centrality
and k-shell coreness.

Settings come from defaults, --config, SPREAD_* environment variables
(e.g. SPREAD_EPIDEMIC_BETA) and flags, in increasing precedence.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// globalFlags maps persistent flags onto configuration keys
var globalFlags = []struct {
	name, key, usage string
}{
	{"network", "network.name", "network name, used for {name} in the path and in output file names"},
	{"network-path", "network.path", "network file; {name} is replaced by the network name"},
	{"format", "network.format", "network file format: auto, edgelist, gml, dot, graph6"},
	{"network-model", "network.model", "generate a model network instead of reading a file: erdos-renyi, barabasi-albert, small-world"},
	{"model-nodes", "network.model_nodes", "nodes of the generated network"},
	{"model-p", "network.model_p", "edge (erdos-renyi) or rewiring (small-world) probability"},
	{"model-m", "network.model_m", "edges per new node (barabasi-albert)"},
	{"model-degree", "network.model_degree", "lattice half-degree (small-world)"},
	{"epidemic", "epidemic.model", "epidemic model: sir or sis"},
	{"beta", "epidemic.beta", "infection probability per contact and step"},
	{"gamma", "epidemic.gamma", "SIR recovery probability per step"},
	{"lambda", "epidemic.lambda", "SIS recovery probability per step"},
	{"fraction", "epidemic.fraction_infected", "fraction of nodes seeded by fraction seeding"},
	{"iterations", "simulation.iterations", "maximum steps per outbreak"},
	{"repetitions", "simulation.repetitions", "outbreaks per origin"},
	{"seed", "simulation.random_seed", "random seed"},
	{"workers", "performance.num_workers", "parallel workers"},
	{"output-dir", "output.dir", "directory for figures"},
	{"debug-dir", "output.debug_dir", "directory for result blobs"},
	{"archive", "output.archive_path", "SQLite archive of runs; empty disables it"},
	{"metrics-file", "output.metrics_file", "Prometheus textfile written after a sweep; empty disables it"},
	{"log-level", "logging.level", "log level: debug, info, warn, error"},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	flags := rootCmd.PersistentFlags()
	v := cfg.Viper()
	for _, f := range globalFlags {
		// viper's default doubles as the flag's documented default
		flags.String(f.name, v.GetString(f.key), f.usage)
		if err := v.BindPFlag(f.key, flags.Lookup(f.name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", f.name, err))
		}
	}

	rootCmd.AddCommand(
		simulateCmd,
		analyzeCmd,
		characteriseCmd,
		trendCmd,
		generateCmd,
		runsCmd,
	)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		if err := cfg.LoadFromFile(cfgFile); err != nil {
			return fmt.Errorf("failed to load config %s: %w", cfgFile, err)
		}
	}
	logger = cfg.CreateLogger()
	if cfgFile != "" {
		logger.Debug().Str("config", cfgFile).Msg("Loaded configuration")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// commandLogger tags log lines with the running subcommand
func commandLogger(cmd *cobra.Command) zerolog.Logger {
	return logger.With().Str("command", cmd.Name()).Logger()
}
