package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cv-generator/internal/convert"
)

var (
	convertOut     string
	convertTimeout string
)

var convertCmd = &cobra.Command{
	Use:   "convert <document>",
	Short: "Convert a document to PDF with the headless office suite",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output directory (default: next to the document)")
	convertCmd.Flags().StringVar(&convertTimeout, "timeout", "", "conversion timeout, e.g. 90s (default: CONVERT_TIMEOUT or 300s)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if convertTimeout != "" {
		d, err := parseTimeout(convertTimeout)
		if err != nil {
			return err
		}
		cfg.ConvertTimeout = d
	}
	outDir := convertOut
	if outDir == "" {
		outDir = filepath.Dir(args[0])
	}
	dir, err := ensureDir(outDir)
	if err != nil {
		return err
	}

	res, err := convert.New(cfg.SofficeBin, cfg.ConvertTimeout).Convert(cmd.Context(), args[0], dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", res.OutputPath, res.Duration.Round(time.Millisecond))
	return nil
}
