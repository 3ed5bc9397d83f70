package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cv-generator/internal/shared/config"
	"cv-generator/resume/model"
)

var (
	templatePath string
	sofficeBin   string
)

var rootCmd = &cobra.Command{
	Use:           "cvctl",
	Short:         "Fill, convert and inspect CV documents",
	Long:          "cvctl runs the CV pipeline from the command line: render a DOCX from a YAML or JSON form, convert it to PDF, sweep stale workspaces and inspect outputs.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&templatePath, "template", "", "path to a .docx template (default: TEMPLATE_PATH or the built-in template)")
	rootCmd.PersistentFlags().StringVar(&sofficeBin, "soffice", "", "office binary (default: SOFFICE_BIN or soffice)")
}

// loadConfig merges flags over the environment configuration.
func loadConfig() config.Config {
	cfg := config.Load()
	if templatePath != "" {
		cfg.TemplatePath = templatePath
	}
	if sofficeBin != "" {
		cfg.SofficeBin = sofficeBin
	}
	return cfg
}

// loadForm reads a form from a .yaml, .yml or .json file. JSON is valid YAML.
func loadForm(path string) (model.FormContext, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return model.FormContext{}, fmt.Errorf("read form: %w", err)
	}
	var form model.FormContext
	if err := yaml.Unmarshal(raw, &form); err != nil {
		return model.FormContext{}, fmt.Errorf("parse form %s: %w", filepath.Base(path), err)
	}
	if err := form.Validate(); err != nil {
		return model.FormContext{}, fmt.Errorf("invalid form: %w", err)
	}
	return form, nil
}

func ensureDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", err
	}
	return abs, nil
}
