package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cv-generator/internal/shared/util"
	"cv-generator/internal/workspace"
	"cv-generator/resume/render"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <form.yaml>",
	Short: "Fill the template and write the DOCX",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", ".", "output directory")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	form, err := loadForm(args[0])
	if err != nil {
		return err
	}
	cfg := loadConfig()
	dir, err := ensureDir(renderOut)
	if err != nil {
		return err
	}

	filler := &render.Filler{TemplatePath: cfg.TemplatePath}
	docx, err := filler.Render(form)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	path, reused, err := workspace.StoreFile(dir, util.DocumentFileName(form.JobTitle, form.CandidateName, ".docx"), docx)
	if err != nil {
		return err
	}
	if reused {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (unchanged)\n", filepath.Clean(path))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), filepath.Clean(path))
	return nil
}
