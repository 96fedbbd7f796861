package enrollment

import (
	"strings"

	"edpulse/pkg/contracts/domain"
)

// gradeAliases maps normalized source labels that are not themselves
// canonical grade labels onto their grade level. The audited enrollment
// column of the wide snapshot is the district-audited total.
var gradeAliases = map[string]domain.GradeLevel{
	"audited enrollment": domain.GradeTotal,
	"total enrollment":   domain.GradeTotal,
	"pk 3":               domain.GradePK3,
	"pk 4":               domain.GradePK4,
	"k":                  domain.GradeKG,
	"kindergarten":       domain.GradeKG,
	"un":                 domain.GradeUngraded,
}

// NormalizeGradeLabel reduces a free-text grade label from either snapshot
// shape to its comparable form: lower-case, underscores to spaces,
// surrounding descriptive words ("grade ", " enrolled") stripped, whitespace
// collapsed.
func NormalizeGradeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSuffix(s, " enrolled")
	s = strings.TrimPrefix(s, "grade ")
	s = strings.TrimPrefix(s, "gr ")
	return strings.TrimSpace(s)
}

// MapGradeLabel maps a free-text grade label onto the closed GradeLevel
// enumeration by exact match after normalization. An unmapped label is a hard
// stop, not a silent drop: misclassifying a grade would corrupt every
// downstream sum.
func MapGradeLabel(label string, year int) (domain.GradeLevel, error) {
	normalized := NormalizeGradeLabel(label)
	if g, ok := domain.LookupGradeLevel(normalized); ok {
		return g, nil
	}
	if g, ok := gradeAliases[normalized]; ok {
		return g, nil
	}
	return 0, &UnknownGradeLabelError{Label: label, Year: year}
}
