package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cv-generator/internal/workspace"
)

var (
	sweepRoot   string
	sweepMaxAge time.Duration
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete workspace directories older than --max-age",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepRoot, "root", "", "workspace root (default: TEMP_ROOT)")
	sweepCmd.Flags().DurationVar(&sweepMaxAge, "max-age", 0, "age threshold (default: SWEEP_MAX_AGE or 24h)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	root := cfg.TempRoot
	if sweepRoot != "" {
		root = sweepRoot
	}
	maxAge := cfg.SweepMaxAge
	if sweepMaxAge > 0 {
		maxAge = sweepMaxAge
	}

	sweeper := &workspace.Sweeper{Root: root, MaxAge: maxAge}
	report, err := sweeper.SweepExpired(root, maxAge)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, path := range report.Deleted {
		fmt.Fprintf(out, "deleted %s\n", path)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(out, "failed  %s: %v\n", f.Path, f.Err)
	}
	fmt.Fprintf(out, "scanned %d, deleted %d, failed %d\n", report.Scanned, len(report.Deleted), len(report.Failures))
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d workspaces could not be removed", len(report.Failures))
	}
	return nil
}
