package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the most recent run log for a workdir",
	Long: `Latest resolves the workdir's run-latest.log link and prints the
timestamped log file it points at.

For remote workdirs the mirrored run-latest.log copy is printed, since
object storage has no symlinks.

Example:
  pipelog latest --workdir /data/align-pipeline`,
	RunE: runLatest,
}

var latestWorkdir string

func init() {
	rootCmd.AddCommand(latestCmd)

	latestCmd.Flags().StringVarP(&latestWorkdir, "workdir", "w", "", "Pipeline working directory (required)")
	_ = latestCmd.MarkFlagRequired("workdir")
}

func runLatest(cmd *cobra.Command, args []string) error {
	if strings.HasPrefix(latestWorkdir, "s3://") {
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSuffix(latestWorkdir, "/")+"/run-latest.log")
		return nil
	}

	link := filepath.Join(latestWorkdir, "run-latest.log")
	target, err := os.Readlink(link)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", link, err)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(latestWorkdir, target)
	}
	fmt.Fprintln(cmd.OutOrStdout(), target)
	return nil
}
