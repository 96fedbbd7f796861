package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edpulse/pkg/contracts/domain"
)

func wideTable() domain.Table {
	return domain.Table{
		Columns: []string{"LEA Code", "LEA Name", "School Code", "School Name", "Audited Enrollment", "Grade 9", "Grade 10", "Grade 11", "Grade 12"},
		Rows: [][]string{
			{"1", "DCPS", "450", "Anacostia HS", "520", "130", "140", "125", "125"},
			{"1", "DCPS", "402", "Ballou HS", "1,011", "305", "", "260", "446"},
		},
	}
}

func longTable() domain.Table {
	return domain.Table{
		Columns: []string{"lea_code", "lea_name", "school_code", "school_name", "grade", "enrolled"},
		Rows: [][]string{
			{"1", "DCPS", "450", "Anacostia High School", "Grade 9", "118"},
			{"1", "DCPS", "450", "Anacostia High School", "Grade 10", "112"},
		},
	}
}

func TestNormalizeWide(t *testing.T) {
	records, err := NormalizeWide(2019, wideTable())
	require.NoError(t, err)

	// Ballou's empty grade 10 cell stays implicit, so 5 + 4 records.
	require.Len(t, records, 9)

	first := records[0]
	assert.Equal(t, 2019, first.Year)
	assert.Equal(t, "0450", first.EntityCode)
	assert.Equal(t, "Anacostia HS", first.EntityName)
	assert.Equal(t, "0001", first.GroupCode)
	assert.Equal(t, "DCPS", first.GroupName)
	assert.Equal(t, domain.GradeTotal, first.Grade)
	assert.Equal(t, 520, first.Enrolled)

	// Thousands separators are tolerated.
	var ballouTotal *domain.EnrollmentRecord
	for i := range records {
		if records[i].EntityCode == "0402" && records[i].Grade == domain.GradeTotal {
			ballouTotal = &records[i]
		}
	}
	require.NotNil(t, ballouTotal)
	assert.Equal(t, 1011, ballouTotal.Enrolled)
}

func TestNormalizeWide_HeaderTolerance(t *testing.T) {
	table := wideTable()
	table.Columns = []string{"lea_code", "LEA NAME", " School Code ", "school_name", "audited_enrollment", "9", "10", "11", "12"}

	records, err := NormalizeWide(2019, table)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, "0450", records[0].EntityCode)
}

func TestNormalizeWide_MissingColumn(t *testing.T) {
	table := wideTable()
	table.Columns = []string{"LEA Code", "LEA Name", "School Name", "Audited Enrollment", "Grade 9"}

	_, err := NormalizeWide(2019, table)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "school code", schemaErr.Column)
}

func TestNormalizeWide_UnknownGradeColumn(t *testing.T) {
	table := wideTable()
	table.Columns[5] = "Grade 13"

	_, err := NormalizeWide(2019, table)
	var unknownErr *UnknownGradeLabelError
	require.ErrorAs(t, err, &unknownErr)
}

func TestNormalizeLong(t *testing.T) {
	records, err := NormalizeLong(2022, longTable())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2022, records[0].Year)
	assert.Equal(t, "0450", records[0].EntityCode)
	assert.Equal(t, domain.Grade9, records[0].Grade)
	assert.Equal(t, 118, records[0].Enrolled)
	assert.Equal(t, domain.Grade10, records[1].Grade)
}

func TestNormalizeLong_MissingCountColumn(t *testing.T) {
	table := longTable()
	table.Columns[5] = "headcount"

	_, err := NormalizeLong(2022, table)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "enrolled", schemaErr.Column)
	assert.Equal(t, "long", schemaErr.Layout)
}

func TestNormalizeLong_UnknownGradeRow(t *testing.T) {
	table := longTable()
	table.Rows[1][4] = "Sophomore"

	_, err := NormalizeLong(2022, table)
	var unknownErr *UnknownGradeLabelError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "Sophomore", unknownErr.Label)
}

func TestNormalize_DispatchesOnLayout(t *testing.T) {
	wide, err := Normalize(domain.Snapshot{Year: 2019, Layout: domain.LayoutWide, Table: wideTable()})
	require.NoError(t, err)
	long, err := Normalize(domain.Snapshot{Year: 2022, Layout: domain.LayoutLong, Table: longTable()})
	require.NoError(t, err)

	assert.NotEmpty(t, wide)
	assert.NotEmpty(t, long)

	_, err = Normalize(domain.Snapshot{Year: 2022, Layout: "diagonal"})
	require.Error(t, err)
}

func TestPadCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1", "0001"},
		{"450", "0450"},
		{"1234", "1234"},
		{"12345", "12345"},
		{" 42 ", "0042"},
		{"A115", "A115"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, padCode(tt.input))
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"130", 130, true},
		{"1,011", 1011, true},
		{"", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseCount(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
