package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cv-generator/internal/convert"
	"cv-generator/internal/generations"
	"cv-generator/internal/session"
	"cv-generator/internal/workspace"
	"cv-generator/resume/render"
)

var (
	generateOut      string
	generatePreview  bool
	generateWorkRoot string
)

var generateCmd = &cobra.Command{
	Use:   "generate <form.yaml>",
	Short: "Render and convert a form to PDF in one step",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", ".", "directory receiving the PDF")
	generateCmd.Flags().BoolVar(&generatePreview, "preview", false, "print the base64 data URI instead of the path")
	generateCmd.Flags().StringVar(&generateWorkRoot, "work-root", "", "workspace root (default: TEMP_ROOT)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	form, err := loadForm(args[0])
	if err != nil {
		return err
	}
	cfg := loadConfig()
	if generateWorkRoot != "" {
		cfg.TempRoot = generateWorkRoot
	}
	outDir, err := ensureDir(generateOut)
	if err != nil {
		return err
	}

	manager := &workspace.Manager{Root: cfg.TempRoot}
	svc := &generations.Service{
		Workspaces: manager,
		Renderer:   &render.Filler{TemplatePath: cfg.TemplatePath},
		Converter:  convert.New(cfg.SofficeBin, cfg.ConvertTimeout),
	}
	state := session.NewState()
	defer func() { _ = manager.Remove(state) }()

	out, err := svc.Generate(cmd.Context(), "cli", state, form)
	if err != nil {
		return err
	}
	if generatePreview {
		fmt.Fprintln(cmd.OutOrStdout(), out.PreviewDataURI)
		return nil
	}

	dest := filepath.Join(outDir, filepath.Base(out.PDFPath))
	if err := os.WriteFile(dest, out.PDF, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages)\n", dest, out.Generation.Pages)
	return nil
}
