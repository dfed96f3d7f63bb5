package main

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/spreading-analysis/pkg/config"
	"github.com/gilchrisn/spreading-analysis/pkg/network"
	"github.com/gilchrisn/spreading-analysis/pkg/plotting"
)

// loadNetwork reads or generates the configured network and reduces it to
// its largest connected component. A configured network name overrides the
// name derived from the file.
func loadNetwork(c *config.Config, logger zerolog.Logger) (*network.Graph, network.PrepareStats, error) {
	var (
		raw    *network.Graph
		source string
	)

	modelCfg, generated, err := c.GeneratorConfig()
	if err != nil {
		return nil, network.PrepareStats{}, err
	}

	if generated {
		raw, err = network.Generate(modelCfg)
		if err != nil {
			return nil, network.PrepareStats{}, err
		}
		source = string(modelCfg.Model)
	} else {
		format, err := network.ParseFormat(c.NetworkFormat())
		if err != nil {
			return nil, network.PrepareStats{}, err
		}
		source = c.NetworkPath()
		raw, err = network.Load(source, format)
		if err != nil {
			return nil, network.PrepareStats{}, err
		}
	}
	if name := c.NetworkName(); name != "" && !generated {
		raw.Name = name
	}

	logger.Info().
		Str("network", raw.Name).
		Str("source", source).
		Int("nodes", raw.NumNodes).
		Int("edges", raw.NumEdges).
		Msg("Loaded network")

	g, stats, err := network.Prepare(raw, logger)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to prepare %s: %w", raw.Name, err)
	}
	return g, stats, nil
}

func plotOptions(c *config.Config) plotting.Options {
	return plotting.SizeCM(c.PlotWidthCM(), c.PlotHeightCM())
}

// figurePath names an output figure after its kind and the network
func figurePath(c *config.Config, kind, networkName string) string {
	return filepath.Join(c.OutputDir(), fmt.Sprintf("%s_%s.png", kind, networkName))
}
