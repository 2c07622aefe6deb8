package analysis

import (
	"sort"
	"strings"

	"mediastats/pkg/models"
)

const unknown = "Unknown"

// GenreSeparator splits the listed_in field.
const GenreSeparator = ", "

// valueCounts counts occurrences of each value and ranks them by count,
// highest first. Ties keep the order of first appearance.
func valueCounts(values []string) models.Ranking {
	index := make(map[string]int, len(values))
	out := make(models.Ranking, 0)
	for _, v := range values {
		if i, ok := index[v]; ok {
			out[i].Count++
			continue
		}
		index[v] = len(out)
		out = append(out, models.Count{Name: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func head(counts models.Ranking, n int) models.Ranking {
	if len(counts) <= n {
		return counts
	}
	return counts[:n]
}

// explode splits every value on sep, yielding one token per occurrence.
func explode(values []string, sep string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		out = append(out, strings.Split(v, sep)...)
	}
	return out
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return unknown
	}
	return v
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
