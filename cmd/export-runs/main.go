package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediastats/internal/runs"
	"mediastats/pkg/database"
	"mediastats/pkg/models"
	"mediastats/pkg/utils"
)

func main() {
	var (
		configPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:          "export-runs",
		Short:        "Export the recorded analysis runs to CSV",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := utils.Load(configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := database.OpenAndMigrate(database.Config{Path: cfg.DBPath})
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := exportRuns(ctx, runs.NewRepo(db), outPath)
			if err != nil {
				return fmt.Errorf("export runs: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d runs to %s\n", n, outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "mediastats.yaml", "YAML config file (optional)")
	cmd.Flags().StringVarP(&outPath, "out", "o", filepath.Join("data", "runs.csv"), "output CSV path")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func exportRuns(ctx context.Context, repo *runs.Repo, outPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := writeRuns(ctx, repo, f)
	if err != nil {
		return n, err
	}
	return n, f.Close()
}

var runHeader = []string{
	"id", "filename", "created_at", "total_rows", "movies", "tv_shows",
	"unique_countries", "top_genres", "artifacts",
}

func writeRuns(ctx context.Context, repo *runs.Repo, out io.Writer) (int, error) {
	w := csv.NewWriter(out)
	if err := w.Write(runHeader); err != nil {
		return 0, err
	}

	n := 0
	err := repo.Each(ctx, func(r models.Run) error {
		n++
		return w.Write([]string{
			r.ID,
			r.Filename,
			r.CreatedAt.Format(time.RFC3339),
			strconv.Itoa(r.Summary.TotalRows),
			strconv.Itoa(r.Summary.Movies),
			strconv.Itoa(r.Summary.TVShows),
			strconv.Itoa(r.Summary.UniqueCountries),
			formatRanking(r.Summary.TopGenres),
			strings.Join(r.Manifest.Artifacts(), ";"),
		})
	})
	if err != nil {
		return n, err
	}

	w.Flush()
	return n, w.Error()
}

// formatRanking renders "Dramas:2;Comedies:1".
func formatRanking(r models.Ranking) string {
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = c.Name + ":" + strconv.Itoa(c.Count)
	}
	return strings.Join(parts, ";")
}
