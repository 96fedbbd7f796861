package enrollment

import (
	"sort"

	"edpulse/pkg/contracts/domain"
)

// entityGrade keys the two-year reshape.
type entityGrade struct {
	code  string
	grade domain.GradeLevel
}

type twoYearCounts struct {
	name string
	y1   int
	y2   int
}

// ComputeChanges joins the two years per (entity, grade), computes absolute
// and relative change, and applies the minimum-count exclusion. A pair that
// existed in only one year defaults the missing year to zero before the
// exclusion filter; pairs failing the threshold are dropped entirely from the
// change table but still exist upstream, so the exclusion never distorts the
// overall rollup.
//
// Rounding to 3 decimals happens once, after the division. If the threshold
// is relaxed enough to let a zero baseline survive, the calculator fails with
// UndefinedRateError rather than propagate an infinite or NaN rate.
func ComputeChanges(records []domain.EnrollmentRecord, yearY1, yearY2 int, opts Options) ([]ChangeRecord, error) {
	counts := make(map[entityGrade]*twoYearCounts)
	for _, r := range records {
		key := entityGrade{r.EntityCode, r.Grade}
		c, ok := counts[key]
		if !ok {
			// Explicit zero fill: a key present in one year only still gets
			// both fields, with the missing year at zero.
			c = &twoYearCounts{}
			counts[key] = c
		}
		c.name = r.EntityName
		switch r.Year {
		case yearY1:
			c.y1 = r.Enrolled
		case yearY2:
			c.y2 = r.Enrolled
		}
	}

	keys := make([]entityGrade, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].code != keys[j].code {
			return keys[i].code < keys[j].code
		}
		return keys[i].grade < keys[j].grade
	})

	changes := make([]ChangeRecord, 0, len(keys))
	for _, k := range keys {
		c := counts[k]
		if c.y1 < opts.MinEnrollment || c.y2 < opts.MinEnrollment {
			continue
		}
		if c.y1 == 0 {
			return nil, &UndefinedRateError{EntityCode: k.code, Grade: k.grade.String()}
		}
		name := c.name
		if k.code == opts.GroupCode {
			// The synthetic rollup carries the reserved presentation label.
			name = OverallLabel
		}
		change := c.y2 - c.y1
		changes = append(changes, ChangeRecord{
			EntityCode: k.code,
			EntityName: name,
			Grade:      k.grade,
			EnrolledY1: c.y1,
			EnrolledY2: c.y2,
			Change:     change,
			Rate:       round3(float64(change) / float64(c.y1)),
		})
	}
	return changes, nil
}
