package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edpulse/pkg/contracts/domain"
)

func TestAppendGroupRollup(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2019, "0450", "Anacostia", domain.Grade9, 130),
		rec(2019, "0461", "Ballou", domain.Grade9, 305),
		rec(2019, "0450", "Anacostia", domain.Grade10, 140),
		rec(2022, "0450", "Anacostia", domain.Grade9, 118),
	}

	out := AppendGroupRollup(records, "0001", "DCPS")
	require.Len(t, out, 4+3) // one rollup per (year, grade)

	rollups := map[string]domain.EnrollmentRecord{}
	for _, r := range out[4:] {
		assert.Equal(t, "0001", r.EntityCode)
		assert.Equal(t, "DCPS", r.EntityName)
		rollups[r.Key()] = r
	}

	assert.Equal(t, 435, rollups["2019/0001/9"].Enrolled)
	assert.Equal(t, 140, rollups["2019/0001/10"].Enrolled)
	assert.Equal(t, 118, rollups["2022/0001/9"].Enrolled)
}

// The overall count always equals the sum of the real entities for each
// (year, grade), whatever the input composition.
func TestAppendGroupRollup_Consistency(t *testing.T) {
	records := []domain.EnrollmentRecord{
		rec(2019, "0450", "Anacostia", domain.Grade12, 125),
		rec(2019, "0461", "Ballou", domain.Grade12, 446),
		rec(2019, "0462", "Cardozo", domain.Grade12, 88),
		rec(2022, "0450", "Anacostia", domain.Grade12, 131),
		rec(2022, "0461", "Ballou", domain.Grade12, 391),
	}

	out := AppendGroupRollup(records, "0001", "DCPS")

	type yearGrade struct {
		year  int
		grade domain.GradeLevel
	}
	sums := map[yearGrade]int{}
	rollup := map[yearGrade]int{}
	for _, r := range out {
		key := yearGrade{r.Year, r.Grade}
		if r.EntityCode == "0001" {
			rollup[key] = r.Enrolled
		} else {
			sums[key] += r.Enrolled
		}
	}
	require.Len(t, rollup, len(sums))
	for key, want := range sums {
		assert.Equal(t, want, rollup[key])
	}
}

func TestAppendGroupRollup_Empty(t *testing.T) {
	out := AppendGroupRollup(nil, "0001", "DCPS")
	assert.Empty(t, out)
}
