package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/spreading-analysis/pkg/results"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the runs stored in the archive",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	if cfg.ArchivePath() == "" {
		return errors.New("no archive configured, use --archive")
	}

	archive, err := results.OpenArchive(cfg.ArchivePath())
	if err != nil {
		return err
	}
	defer archive.Close()

	runs, err := archive.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No archived runs.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tNETWORK\tMODEL\tBETA\tNODES\tREPETITIONS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\t%d\t%d\n",
			r.RunID, r.CreatedAt.Local().Format(time.DateTime), r.NetworkName, r.Model, r.Beta, r.Nodes, r.Repetitions)
	}
	return tw.Flush()
}
