package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"edpulse/internal/enrollment"
	"edpulse/pkg/contracts/domain"
)

func intPtr(n int) *int          { return &n }
func ratePtr(r float64) *float64 { return &r }

func sampleResult() *enrollment.Result {
	return &enrollment.Result{
		YearY1: 2019,
		YearY2: 2022,
		Report: []enrollment.ReportRow{
			{
				EntityName: enrollment.OverallLabel,
				Grade:      domain.Grade9,
				EnrolledY1: intPtr(3305),
				EnrolledY2: intPtr(4396),
				Change:     intPtr(1091),
				Rate:       ratePtr(0.33),
			},
			{
				EntityName: enrollment.MedianLabel,
				Grade:      domain.Grade9,
				Rate:       ratePtr(-0.11),
			},
			{
				EntityName: "Anacostia",
				Grade:      domain.Grade9,
				EnrolledY1: intPtr(130),
				EnrolledY2: intPtr(118),
				Change:     intPtr(-12),
				Rate:       ratePtr(-0.092),
			},
		},
		Longitudinal: []domain.EnrollmentRecord{
			{Year: 2019, EntityCode: "0450", EntityName: "Anacostia", GroupCode: "0001", GroupName: "DCPS", Grade: domain.Grade9, Enrolled: 130},
			{Year: 2022, EntityCode: "0450", EntityName: "Anacostia", GroupCode: "0001", GroupName: "DCPS", Grade: domain.Grade9, Enrolled: 118},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_WriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteReport(path, sampleResult()))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{
		"entity_name", "grade", "n_enrolled_2019", "n_enrolled_2022",
		"n_enrolled_change", "rate_enrolled_change",
	}, rows[0])
	assert.Equal(t, []string{"Overall", "9", "3305", "4396", "1091", "0.330"}, rows[1])

	// Median rows keep their count cells empty.
	assert.Equal(t, []string{"Median", "9", "", "", "", "-0.110"}, rows[2])
}

func TestCSVWriter_WriteLongitudinal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteLongitudinal(path, sampleResult()))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2019", "0450", "Anacostia", "0001", "DCPS", "9", "130"}, rows[1])
}

func TestCSVWriter_BOMPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	w := NewCSVWriter(nil)
	w.BOMPrefix = true

	require.NoError(t, w.WriteReport(path, sampleResult()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3])
}

func TestWorkbookWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.xlsx")
	w := NewWorkbookWriter(nil)

	require.NoError(t, w.Write(path, sampleResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Change", "Longitudinal"}, f.GetSheetList())

	rows, err := f.GetRows("Change")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Overall", rows[1][0])

	longRows, err := f.GetRows("Longitudinal")
	require.NoError(t, err)
	require.Len(t, longRows, 3)
	assert.Equal(t, "0450", longRows[1][1])
}
