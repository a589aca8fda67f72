package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3leaps/pipelog/pkg/runindex"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs for a workdir",
	Long: `Runs lists the run records a workdir's .logs directory accumulated,
newest first, with the log file each run produced.

Example:
  pipelog runs --workdir /data/align-pipeline`,
	RunE: runRuns,
}

var runsWorkdir string

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().StringVarP(&runsWorkdir, "workdir", "w", "", "Pipeline working directory (required)")
	_ = runsCmd.MarkFlagRequired("workdir")
}

func runRuns(cmd *cobra.Command, args []string) error {
	if strings.HasPrefix(runsWorkdir, "s3://") {
		return fmt.Errorf("listing runs needs a local workdir; run records for %s are mirrored under %s/.logs/runs/",
			runsWorkdir, strings.TrimSuffix(runsWorkdir, "/"))
	}

	store := runindex.NewStore(filepath.Join(runsWorkdir, ".logs", "runs"))
	records, err := store.List()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no recorded runs")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-36s  %-9s  %-20s  %s\n", "RUN", "STATE", "STARTED", "LOG")
	for _, r := range records {
		fmt.Fprintf(out, "%-36s  %-9s  %-20s  %s\n",
			r.RunID,
			r.State,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.LogFile,
		)
	}
	return nil
}
