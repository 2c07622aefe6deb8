package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("required columns only", func(t *testing.T) {
		in := "type,rating,country,duration,listed_in\n" +
			"Movie,PG,US,90 min,\"Dramas, Comedies\"\n" +
			"TV Show,TV-MA,US,2 Seasons,Dramas\n"

		tbl, err := Load(strings.NewReader(in))
		require.NoError(t, err)
		require.Equal(t, 2, tbl.Len())
		assert.False(t, tbl.HasReleaseYear)
		assert.False(t, tbl.HasCast)
		assert.False(t, tbl.HasDirector)
		assert.Equal(t, "Dramas, Comedies", tbl.Rows[0].ListedIn)
		assert.Equal(t, "TV Show", tbl.Rows[1].Type)
	})

	t.Run("optional columns and case-insensitive header", func(t *testing.T) {
		in := "Show_ID,Type,Title,Director,Cast,Country,Release_Year,Rating,Duration,Listed_In\n" +
			"s1,Movie,A,Jane Doe,\"Ann, Bob\",India,2019,TV-14,95 min,Dramas\n"

		tbl, err := Load(strings.NewReader(in))
		require.NoError(t, err)
		require.Equal(t, 1, tbl.Len())
		assert.True(t, tbl.HasReleaseYear)
		assert.True(t, tbl.HasCast)
		assert.True(t, tbl.HasDirector)
		assert.Equal(t, Row{
			Type: "Movie", Rating: "TV-14", Country: "India", Duration: "95 min",
			ListedIn: "Dramas", ReleaseYear: "2019", Cast: "Ann, Bob", Director: "Jane Doe",
		}, tbl.Rows[0])
	})

	t.Run("missing required column is fatal", func(t *testing.T) {
		_, err := Load(strings.NewReader("type,rating,country,duration\nMovie,PG,US,90 min\n"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingColumn))
		assert.Contains(t, err.Error(), "listed_in")
	})

	t.Run("empty input is fatal", func(t *testing.T) {
		_, err := Load(strings.NewReader(""))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnreadable))
	})

	t.Run("short rows read as missing cells", func(t *testing.T) {
		tbl, err := Load(strings.NewReader("type,rating,country,duration,listed_in\nMovie,PG\n"))
		require.NoError(t, err)
		require.Equal(t, 1, tbl.Len())
		assert.Equal(t, "", tbl.Rows[0].Country)
		assert.False(t, tbl.Rows[0].Complete())
	})
}

func TestClean(t *testing.T) {
	src := &Table{
		HasCast: true,
		Rows: []Row{
			{Type: "Movie", Rating: "PG", Country: "US", Duration: "90 min", ListedIn: "Dramas"},
			{Type: "Movie", Rating: "", Country: "US", Duration: "90 min", ListedIn: "Dramas"},
			{Type: "Movie", Rating: "R", Country: "", Duration: "90 min", ListedIn: "Dramas"},
			{Type: "", Rating: "R", Country: "UK", Duration: "90 min", ListedIn: "Dramas"},
			{Type: "TV Show", Rating: "R", Country: "UK", Duration: "", ListedIn: "Dramas"},
			{Type: "TV Show", Rating: "R", Country: "UK", Duration: "1 Season", ListedIn: ""},
			{Type: "Movie", Rating: "R", Country: "UK", Duration: "N/A", ListedIn: "Horror"},
		},
	}

	cleaned := src.Clean()

	require.Equal(t, 2, cleaned.Len())
	assert.Equal(t, 7, src.Len(), "source table must not be mutated")
	assert.True(t, cleaned.HasCast)
	for _, r := range cleaned.Rows {
		assert.True(t, r.Complete())
	}
	assert.Equal(t, "N/A", cleaned.Rows[1].Duration)
}

func TestDurationMinutes(t *testing.T) {
	cases := []struct {
		raw     string
		numeric bool
		want    float64
		ok      bool
	}{
		{"90 min", false, 90, true},
		{"  125 min ", false, 125, true},
		{"2 Seasons", false, 2, true},
		{"N/A", false, 0, false},
		{"", false, 0, false},
		{"approx 88", false, 88, true},
		{"90", true, 90, true},
		{"90.5", true, 90.5, true},
		{"ninety", true, 0, false},
		{"NaN", true, 0, false},
		{"+Inf", true, 0, false},
	}
	for _, tc := range cases {
		got, ok := DurationMinutes(tc.raw, tc.numeric)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestNumericDurations(t *testing.T) {
	assert.True(t, NumericDurations([]Row{{Duration: "90"}, {Duration: "1.5"}}))
	assert.False(t, NumericDurations([]Row{{Duration: "90"}, {Duration: "90 min"}}))
	assert.False(t, NumericDurations(nil))
	assert.False(t, NumericDurations([]Row{{Duration: "90"}, {Duration: "NaN"}}))
}

func TestYear(t *testing.T) {
	y, ok := Year("2019")
	assert.True(t, ok)
	assert.Equal(t, 2019, y)

	y, ok = Year("2001.0")
	assert.True(t, ok)
	assert.Equal(t, 2001, y)

	_, ok = Year("NaN")
	assert.False(t, ok)
	_, ok = Year("soon")
	assert.False(t, ok)
	_, ok = Year("")
	assert.False(t, ok)
}
