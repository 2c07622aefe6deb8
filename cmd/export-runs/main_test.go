package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediastats/internal/runs"
	"mediastats/pkg/database"
	"mediastats/pkg/models"
)

func TestExportRuns(t *testing.T) {
	db, err := database.OpenAndMigrate(database.Config{Path: database.Memory})
	require.NoError(t, err)
	defer db.Close()

	repo := runs.NewRepo(db)
	require.NoError(t, repo.Create(context.Background(), &models.Run{
		ID:       "r1",
		Filename: "netflix.csv",
		Summary: models.Summary{
			TotalRows: 2, Movies: 1, TVShows: 1, UniqueCountries: 1,
			TopGenres: models.Ranking{{Name: "Dramas", Count: 2}, {Name: "Comedies", Count: 1}},
		},
		Manifest: models.Manifest{
			models.Produced(1, "01_movies_vs_tvshows.png"),
			models.Skipped(4, "04_release_trend.png", "release_year column absent"),
			models.Produced(5, "05_top_countries.png"),
		},
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}))

	out := filepath.Join(t.TempDir(), "data", "runs.csv")
	n, err := exportRuns(context.Background(), repo, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, runHeader, records[0])
	assert.Equal(t, []string{
		"r1", "netflix.csv", "2024-05-01T12:00:00Z", "2", "1", "1", "1",
		"Dramas:2;Comedies:1", "01_movies_vs_tvshows.png;05_top_countries.png",
	}, records[1])
}
