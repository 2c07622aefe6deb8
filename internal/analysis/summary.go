package analysis

import (
	"mediastats/internal/catalog"
	"mediastats/pkg/models"
)

// Summarize computes the digest of a cleaned table. genres is the full
// exploded genre ranking; its first five entries become TopGenres.
func Summarize(clean *catalog.Table, genres models.Ranking) models.Summary {
	s := models.Summary{
		TotalRows: clean.Len(),
		TopGenres: append(models.Ranking{}, head(genres, topGenreSum)...),
	}
	for _, r := range clean.Rows {
		switch r.Type {
		case catalog.TypeMovie:
			s.Movies++
		case catalog.TypeTVShow:
			s.TVShows++
		}
	}
	s.UniqueCountries = distinct(column(clean, func(r catalog.Row) string { return r.Country }))
	return s
}
