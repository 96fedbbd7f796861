package enrollment

import (
	"sort"

	"edpulse/pkg/contracts/domain"
)

// AppendGroupRollup derives the overall rollup: one synthetic record per
// (year, grade) whose count is the sum of all entity-level counts for that
// combination. The synthetic record reuses the group's own code and name as
// its entity identity, so every downstream stage treats it uniformly with
// real entities.
func AppendGroupRollup(records []domain.EnrollmentRecord, groupCode, groupName string) []domain.EnrollmentRecord {
	type yearGrade struct {
		year  int
		grade domain.GradeLevel
	}
	sums := make(map[yearGrade]int)
	for _, r := range records {
		sums[yearGrade{r.Year, r.Grade}] += r.Enrolled
	}

	keys := make([]yearGrade, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].grade < keys[j].grade
	})

	out := make([]domain.EnrollmentRecord, 0, len(records)+len(keys))
	out = append(out, records...)
	for _, k := range keys {
		out = append(out, domain.EnrollmentRecord{
			Year:       k.year,
			EntityCode: groupCode,
			EntityName: groupName,
			GroupCode:  groupCode,
			GroupName:  groupName,
			Grade:      k.grade,
			Enrolled:   sums[k],
		})
	}
	return out
}
