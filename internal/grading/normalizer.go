// Package grading holds the pure scoring rules of the report card engine:
// score normalisation, the letter grade scale, weighted subject averages and
// class ranking. Nothing in here touches storage.
package grading

import "fmt"

// Grade is a letter on the report card scale.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
)

// Valid returns true when the letter is on the scale.
func (g Grade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeE:
		return true
	default:
		return false
	}
}

// Normalize converts a raw score against maxScore into a 0-100 percentage.
// maxScore must be positive; ValidateScore guards that at entry time.
func Normalize(raw, maxScore float64) float64 {
	return raw / maxScore * 100
}

// ValidateScore checks a raw score against its assessment maximum.
func ValidateScore(raw, maxScore float64) error {
	if maxScore <= 0 {
		return fmt.Errorf("max score must be positive, got %v", maxScore)
	}
	if raw < 0 || raw > maxScore {
		return fmt.Errorf("score %v outside [0, %v]", raw, maxScore)
	}
	return nil
}

// GradeFor maps a 0-100 average onto the letter scale.
func GradeFor(average float64) Grade {
	switch {
	case average >= 90:
		return GradeA
	case average >= 80:
		return GradeB
	case average >= 70:
		return GradeC
	case average >= 60:
		return GradeD
	default:
		return GradeE
	}
}

// Passes reports whether an average meets the passing threshold.
func Passes(average, kkm float64) bool {
	return average >= kkm
}
