package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "titles.csv")
	require.NoError(t, os.WriteFile(csv, []byte("type,rating,country,duration,listed_in\n"+
		"Movie,PG,US,90 min,\"Dramas, Comedies\"\n"+
		"TV Show,TV-MA,US,2 Seasons,Dramas\n"), 0o644))

	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale.png"), []byte("x"), 0o644))

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{csv, "--out", out, "--clear"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), `"total_rows": 2`)
	assert.Contains(t, stdout.String(), "release_year column absent")
	assert.NoFileExists(t, filepath.Join(out, "stale.png"))
	assert.FileExists(t, filepath.Join(out, "01_movies_vs_tvshows.png"))
}

func TestAnalyzeCommand_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(csv, []byte("type,rating\nMovie,PG\n"), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{csv, "--out", filepath.Join(dir, "out")})
	assert.Error(t, cmd.Execute())
}
