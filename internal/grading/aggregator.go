package grading

// WeightedScore is one assessment score prepared for aggregation.
type WeightedScore struct {
	Raw      float64
	MaxScore float64
	// Weight is nil when the assessment has none configured.
	Weight *int
}

// DefaultWeight applies to assessments without a configured weight.
const DefaultWeight = 100

// SkillPolicy decides how the skill column of a subject is produced.
type SkillPolicy string

const (
	// SkillMirrorKnowledge copies the knowledge score and grade into skill.
	SkillMirrorKnowledge SkillPolicy = "mirror"
	// SkillOmit leaves the skill columns empty.
	SkillOmit SkillPolicy = "omit"
)

// SubjectResult is the aggregated outcome of one subject for one student.
type SubjectResult struct {
	Average        float64
	KnowledgeGrade Grade
	SkillScore     *float64
	SkillGrade     *Grade
	KKM            float64
	Passed         bool
}

// SubjectAverage returns the weighted average of normalised scores.
// ok is false when there are no scores, meaning the subject is skipped.
func SubjectAverage(scores []WeightedScore) (average float64, ok bool) {
	if len(scores) == 0 {
		return 0, false
	}
	var weightedSum, totalWeight float64
	for _, s := range scores {
		weight := float64(DefaultWeight)
		if s.Weight != nil {
			weight = float64(*s.Weight)
		}
		weightedSum += Normalize(s.Raw, s.MaxScore) * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0, true
	}
	return weightedSum / totalWeight, true
}

// AggregateSubject builds the subject result, applying the skill policy and KKM.
func AggregateSubject(scores []WeightedScore, kkm float64, policy SkillPolicy) (SubjectResult, bool) {
	average, ok := SubjectAverage(scores)
	if !ok {
		return SubjectResult{}, false
	}
	result := SubjectResult{
		Average:        average,
		KnowledgeGrade: GradeFor(average),
		KKM:            kkm,
		Passed:         Passes(average, kkm),
	}
	if policy != SkillOmit {
		skill := average
		grade := result.KnowledgeGrade
		result.SkillScore = &skill
		result.SkillGrade = &grade
	}
	return result, true
}

// StudentTotals sums subject averages into the report card totals.
func StudentTotals(averages []float64) (total, average float64, count int) {
	for _, a := range averages {
		total += a
	}
	count = len(averages)
	if count == 0 {
		return total, 0, 0
	}
	return total, total / float64(count), count
}
