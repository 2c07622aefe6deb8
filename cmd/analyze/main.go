package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mediastats/internal/analysis"
	"mediastats/internal/upload"
	"mediastats/pkg/logger"
	"mediastats/pkg/models"
	"mediastats/pkg/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		outDir   string
		clearOut bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:          "analyze <catalog.csv>",
		Short:        "Render the catalog charts for a CSV file and print its summary",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(utils.LogConfig{Level: logLevel, Format: "console"})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if clearOut {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
				if err := upload.ClearDir(outDir); err != nil {
					return err
				}
			}

			res, err := analysis.New(log).RunFile(args[0], outDir)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", args[0], err)
			}
			return printResult(cmd.OutOrStdout(), outDir, res)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", filepath.Join("static", "outputs"), "directory to write charts into")
	cmd.Flags().BoolVar(&clearOut, "clear", false, "remove existing files in the output directory first")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	return cmd
}

func printResult(w io.Writer, outDir string, res *analysis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Summary); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tARTIFACT\tSTATUS")
	for _, r := range res.Manifest {
		status := string(r.Status)
		if r.Status == models.StepSkipped && r.Reason != "" {
			status += " (" + r.Reason + ")"
		}
		name := r.Artifact
		if r.Status == models.StepProduced {
			name = filepath.Join(outDir, r.Artifact)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Step, name, status)
	}
	return tw.Flush()
}
