package report

import (
	"cmp"
	"slices"
	"strings"

	"github.com/heartmarshall/dreamjournal/internal/domain"
)

// topFrequencies counts in how many lists each value appears and returns the
// n most frequent, ties broken alphabetically. Values are compared
// case-insensitively.
func topFrequencies(lists [][]string, n int) []domain.FrequencyEntry {
	counts := make(map[string]int)
	for _, list := range lists {
		seen := make(map[string]bool, len(list))
		for _, v := range list {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			counts[v]++
		}
	}

	entries := make([]domain.FrequencyEntry, 0, len(counts))
	for v, c := range counts {
		entries = append(entries, domain.FrequencyEntry{Value: v, Count: c})
	}
	slices.SortFunc(entries, func(a, b domain.FrequencyEntry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
