package enrollment

import (
	"sort"

	"edpulse/pkg/contracts/domain"
)

// ComputeMedianBaselines computes, per grade, the median rate of change
// across all real entities. The synthetic overall rollup is excluded so the
// baseline reflects the typical entity, not the aggregate it is meant to
// contextualize. Medians use the interpolated-midpoint definition for even
// counts and are rounded to 3 decimals.
func ComputeMedianBaselines(changes []ChangeRecord, groupCode string) []MedianBaseline {
	ratesByGrade := make(map[domain.GradeLevel][]float64)
	for _, c := range changes {
		if c.EntityCode == groupCode {
			continue
		}
		ratesByGrade[c.Grade] = append(ratesByGrade[c.Grade], c.Rate)
	}

	grades := make([]domain.GradeLevel, 0, len(ratesByGrade))
	for g := range ratesByGrade {
		grades = append(grades, g)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i] < grades[j] })

	baselines := make([]MedianBaseline, 0, len(grades))
	for _, g := range grades {
		baselines = append(baselines, MedianBaseline{
			Grade: g,
			Rate:  round3(median(ratesByGrade[g])),
		})
	}
	return baselines
}

// median returns the interpolated-midpoint median of values. The input slice
// is not modified.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
