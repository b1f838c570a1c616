package grading

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankIsPermutationWithTopFirst(t *testing.T) {
	entries := []RankEntry{
		{EnrollmentID: "e1", StudentName: "Budi", Average: 78},
		{EnrollmentID: "e2", StudentName: "Ani", Average: 91.5},
		{EnrollmentID: "e3", StudentName: "Citra", Average: 64},
		{EnrollmentID: "e4", StudentName: "Dewi", Average: 85},
	}
	ranks := Rank(entries)

	values := make([]int, 0, len(ranks))
	for _, r := range ranks {
		values = append(values, r)
	}
	sort.Ints(values)
	assert.Equal(t, []int{1, 2, 3, 4}, values)
	assert.Equal(t, 1, ranks["e2"])
	assert.Equal(t, 4, ranks["e3"])
}

func TestRankBreaksTiesDeterministically(t *testing.T) {
	entries := []RankEntry{
		{EnrollmentID: "e9", StudentName: "budi", Average: 80},
		{EnrollmentID: "e2", StudentName: "Ani", Average: 80},
		{EnrollmentID: "e1", StudentName: "Budi", Average: 80},
	}
	ranks := Rank(entries)
	assert.Equal(t, 1, ranks["e2"])
	assert.Equal(t, 2, ranks["e1"])
	assert.Equal(t, 3, ranks["e9"])

	reversed := []RankEntry{entries[2], entries[1], entries[0]}
	assert.Equal(t, ranks, Rank(reversed))
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
