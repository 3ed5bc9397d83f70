package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cv-generator/internal/extract"
)

var inspectText bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the type, size and page count of a DOCX or PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectText, "text", false, "also print the extracted text")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(filepath.Clean(args[0]))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	mime := extract.DetectMIME(data)
	fmt.Fprintf(out, "file:  %s\ntype:  %s\nsize:  %d bytes\n", filepath.Base(args[0]), mime, len(data))
	if mime == extract.MimePDF {
		info, err := extract.InspectPDF(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pages: %d\n", info.Pages)
	}
	if inspectText {
		text, err := extract.Text(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "---")
		fmt.Fprintln(out, text)
	}
	return nil
}
