package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Count is one entry of a frequency ranking.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Ranking is an ordered label ranking. It marshals to a JSON object whose
// key order follows the ranking.
type Ranking []Count

func (g Ranking) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", e.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (g *Ranking) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*g = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ranking: expected object")
	}

	out := Ranking{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("ranking %q: %w", key, err)
		}
		out = append(out, Count{Name: key, Count: n})
	}
	*g = out
	return nil
}

// Summary is the numeric digest returned alongside the chart artifacts.
type Summary struct {
	TotalRows       int     `json:"total_rows"`
	Movies          int     `json:"movies"`
	TVShows         int     `json:"tv_shows"`
	UniqueCountries int     `json:"unique_countries"`
	TopGenres       Ranking `json:"top_genres"`
}
