package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrUnreadable is returned when the input cannot be read as CSV at all.
	ErrUnreadable = errors.New("catalog: input is not tabular")
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("catalog: required column missing")
)

// RequiredColumns must be present in the header; rows missing any of them are dropped by Clean.
var RequiredColumns = []string{"type", "rating", "country", "duration", "listed_in"}

const (
	TypeMovie  = "Movie"
	TypeTVShow = "TV Show"
)

// Row is one catalog entry. An empty string means the cell was missing.
type Row struct {
	Type        string
	Rating      string
	Country     string
	Duration    string
	ListedIn    string
	ReleaseYear string
	Cast        string
	Director    string
}

// Complete reports whether every required field is present.
func (r Row) Complete() bool {
	return r.Type != "" && r.Rating != "" && r.Country != "" && r.Duration != "" && r.ListedIn != ""
}

// Table is an ordered set of rows. The Has* flags record which optional
// columns existed in the source header.
type Table struct {
	Rows []Row

	HasReleaseYear bool
	HasCast        bool
	HasDirector    bool
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Clean returns a new table holding only complete rows. t is left untouched.
func (t *Table) Clean() *Table {
	out := &Table{
		Rows:           make([]Row, 0, len(t.Rows)),
		HasReleaseYear: t.HasReleaseYear,
		HasCast:        t.HasCast,
		HasDirector:    t.HasDirector,
	}
	for _, r := range t.Rows {
		if r.Complete() {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// LoadFile reads a CSV catalog from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a CSV catalog. The header row is matched case-insensitively.
func Load(in io.Reader) (*Table, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := readHeader(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrUnreadable)
		}
		return nil, fmt.Errorf("%w: header: %v", ErrUnreadable, err)
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	t := &Table{}
	_, t.HasReleaseYear = header["release_year"]
	_, t.HasCast = header["cast"]
	_, t.HasDirector = header["director"]

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		t.Rows = append(t.Rows, Row{
			Type:        valueAt(header, row, "type"),
			Rating:      valueAt(header, row, "rating"),
			Country:     valueAt(header, row, "country"),
			Duration:    valueAt(header, row, "duration"),
			ListedIn:    valueAt(header, row, "listed_in"),
			ReleaseYear: valueAt(header, row, "release_year"),
			Cast:        valueAt(header, row, "cast"),
			Director:    valueAt(header, row, "director"),
		})
	}

	return t, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		name = strings.TrimPrefix(name, "\ufeff")
		key := strings.TrimSpace(strings.ToLower(name))
		if _, dup := header[key]; dup {
			continue
		}
		header[key] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
