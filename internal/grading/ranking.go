package grading

import (
	"sort"
	"strings"
)

// RankEntry is one student competing for a class rank.
type RankEntry struct {
	EnrollmentID string
	StudentName  string
	Average      float64
}

// Rank assigns 1-based, distinct ranks ordered by average descending.
// Ties fall back to student name (case-insensitive) then enrollment id so the
// outcome never depends on load order.
func Rank(entries []RankEntry) map[string]int {
	ordered := make([]RankEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		an, bn := strings.ToLower(a.StudentName), strings.ToLower(b.StudentName)
		if an != bn {
			return an < bn
		}
		return a.EnrollmentID < b.EnrollmentID
	})
	ranks := make(map[string]int, len(ordered))
	for i, entry := range ordered {
		ranks[entry.EnrollmentID] = i + 1
	}
	return ranks
}
