package analysis

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"mediastats/internal/catalog"
	"mediastats/internal/charts"
	"mediastats/pkg/models"
)

// Artifact names. Consumers sort them lexicographically to recover display order.
const (
	ArtifactTypes     = "01_movies_vs_tvshows.png"
	ArtifactRatings   = "02_ratings_pie.png"
	ArtifactDurations = "03_movie_duration.png"
	ArtifactReleases  = "04_release_trend.png"
	ArtifactCountries = "05_top_countries.png"
	ArtifactGenres    = "06_genre_analysis.png"
	ArtifactCast      = "07_cast_wordcloud.png"
	ArtifactDirectors = "08_director_wordcloud.png"
)

const (
	durationBins  = 30
	topCountries  = 10
	topGenreChart = 15
	topGenreSum   = 5
)

// Result is what a run hands back to its caller.
type Result struct {
	Summary  models.Summary  `json:"summary"`
	Manifest models.Manifest `json:"manifest"`
}

// Analyzer runs the fixed chart battery over a catalog.
type Analyzer struct {
	Logger *zap.Logger
}

func New(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{Logger: logger}
}

// RunFile loads the CSV at path and runs the analysis into outDir.
func (a *Analyzer) RunFile(path, outDir string) (*Result, error) {
	tbl, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return a.Run(tbl, outDir)
}

// Run cleans tbl, writes up to eight charts into outDir and returns the
// summary together with a manifest of produced and skipped steps. tbl is
// not modified. Chart failures other than the optional word clouds are
// returned as errors.
func (a *Analyzer) Run(tbl *catalog.Table, outDir string) (*Result, error) {
	if tbl == nil {
		return nil, errors.New("analysis: nil table")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}

	log := a.logger()
	clean := tbl.Clean()
	log.Info("catalog cleaned",
		zap.Int("rows_in", tbl.Len()),
		zap.Int("rows_kept", clean.Len()))

	genres := valueCounts(explode(column(clean, func(r catalog.Row) string { return r.ListedIn }), GenreSeparator))

	steps := []struct {
		n        int
		artifact string
		run      func(path string) (models.StepResult, error)
	}{
		{1, ArtifactTypes, func(p string) (models.StepResult, error) { return a.typeDistribution(clean, p) }},
		{2, ArtifactRatings, func(p string) (models.StepResult, error) { return a.ratingDistribution(clean, p) }},
		{3, ArtifactDurations, func(p string) (models.StepResult, error) { return a.movieDurations(clean, p) }},
		{4, ArtifactReleases, func(p string) (models.StepResult, error) { return a.releasesPerYear(clean, p) }},
		{5, ArtifactCountries, func(p string) (models.StepResult, error) { return a.topCountries(clean, p) }},
		{6, ArtifactGenres, func(p string) (models.StepResult, error) { return a.topGenres(genres, p) }},
		{7, ArtifactCast, func(p string) (models.StepResult, error) {
			return a.wordCloud(7, ArtifactCast, "Cast Word Cloud", clean.HasCast,
				column(clean, func(r catalog.Row) string { return r.Cast }), p), nil
		}},
		{8, ArtifactDirectors, func(p string) (models.StepResult, error) {
			return a.wordCloud(8, ArtifactDirectors, "Director Word Cloud", clean.HasDirector,
				column(clean, func(r catalog.Row) string { return r.Director }), p), nil
		}},
	}

	manifest := make(models.Manifest, 0, len(steps))
	for _, s := range steps {
		res, err := s.run(filepath.Join(outDir, s.artifact))
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", s.n, s.artifact, err)
		}
		res.Step, res.Artifact = s.n, s.artifact
		if res.Status == models.StepSkipped {
			log.Info("step skipped", zap.Int("step", s.n), zap.String("artifact", s.artifact), zap.String("reason", res.Reason))
		}
		manifest = append(manifest, res)
	}

	return &Result{
		Summary:  Summarize(clean, genres),
		Manifest: manifest,
	}, nil
}

func (a *Analyzer) logger() *zap.Logger {
	if a == nil || a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// renderOrSkip turns charts.ErrNoData into a skip; other errors are fatal.
func renderOrSkip(err error) (models.StepResult, error) {
	switch {
	case err == nil:
		return models.StepResult{Status: models.StepProduced}, nil
	case errors.Is(err, charts.ErrNoData):
		return models.StepResult{Status: models.StepSkipped, Reason: "no data"}, nil
	default:
		return models.StepResult{}, err
	}
}

func (a *Analyzer) typeDistribution(t *catalog.Table, path string) (models.StepResult, error) {
	counts := valueCounts(column(t, func(r catalog.Row) string { return r.Type }))
	return renderOrSkip(charts.Bars(path, "Movies vs TV Shows", "Type", "Count", counts))
}

func (a *Analyzer) ratingDistribution(t *catalog.Table, path string) (models.StepResult, error) {
	counts := valueCounts(column(t, func(r catalog.Row) string { return orUnknown(r.Rating) }))
	return renderOrSkip(charts.Pie(path, "Content Ratings Distribution", counts))
}

// MovieMinutes returns the parsed durations of Movie rows, skipping values
// that do not parse.
func MovieMinutes(t *catalog.Table) []float64 {
	numeric := catalog.NumericDurations(t.Rows)
	out := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Type != catalog.TypeMovie {
			continue
		}
		if m, ok := catalog.DurationMinutes(r.Duration, numeric); ok {
			out = append(out, m)
		}
	}
	return out
}

func (a *Analyzer) movieDurations(t *catalog.Table, path string) (models.StepResult, error) {
	minutes := MovieMinutes(t)
	err := charts.Histogram(path, "Distribution of Movie Durations", "Minutes", "Count", minutes, durationBins)
	return renderOrSkip(err)
}

// ReleasesPerYear counts rows per release year, ascending by year. Cells
// that are not integers are ignored.
func ReleasesPerYear(t *catalog.Table) (years []int, counts []int) {
	byYear := make(map[int]int)
	for _, r := range t.Rows {
		if y, ok := catalog.Year(r.ReleaseYear); ok {
			byYear[y]++
		}
	}
	years = make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	counts = make([]int, len(years))
	for i, y := range years {
		counts[i] = byYear[y]
	}
	return years, counts
}

func (a *Analyzer) releasesPerYear(t *catalog.Table, path string) (models.StepResult, error) {
	if !t.HasReleaseYear {
		return models.StepResult{Status: models.StepSkipped, Reason: "release_year column absent"}, nil
	}
	years, counts := ReleasesPerYear(t)
	xs := make([]float64, len(years))
	ys := make([]float64, len(years))
	for i := range years {
		xs[i] = float64(years[i])
		ys[i] = float64(counts[i])
	}
	return renderOrSkip(charts.Trend(path, "Number of Releases per Year", "Year", "Count", xs, ys))
}

func (a *Analyzer) topCountries(t *catalog.Table, path string) (models.StepResult, error) {
	counts := head(valueCounts(column(t, func(r catalog.Row) string { return orUnknown(r.Country) })), topCountries)
	return renderOrSkip(charts.HorizontalBars(path, "Top 10 Countries by Netflix Content", "Number of Shows", counts, nil))
}

func (a *Analyzer) topGenres(genres models.Ranking, path string) (models.StepResult, error) {
	top := head(genres, topGenreChart)
	return renderOrSkip(charts.HorizontalBars(path, "Top 15 Genres on Netflix", "Count", top, charts.Viridis(len(top))))
}

// wordCloud never fails the run: any error or panic while rendering is
// logged and reported as a skip.
func (a *Analyzer) wordCloud(step int, artifact, title string, present bool, values []string, path string) (res models.StepResult) {
	if !present {
		return models.Skipped(step, artifact, "column absent")
	}

	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	text := strings.Join(parts, " ")
	if strings.TrimSpace(text) == "" {
		return models.Skipped(step, artifact, "no text")
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger().Error("word cloud panicked", zap.String("artifact", artifact), zap.Any("panic", r))
			_ = os.Remove(path)
			res = models.Skipped(step, artifact, fmt.Sprintf("render panic: %v", r))
		}
	}()

	if err := charts.WordCloud(path, title, text); err != nil {
		a.logger().Warn("word cloud failed", zap.String("artifact", artifact), zap.Error(err))
		return models.Skipped(step, artifact, err.Error())
	}
	return models.Produced(step, artifact)
}

func column(t *catalog.Table, get func(catalog.Row) string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = get(r)
	}
	return out
}
