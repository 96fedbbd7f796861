package domain

import (
	"fmt"
)

// GradeLevel is the closed, ordered enumeration of grade levels tracked in
// enrollment snapshots. The ordering of the constants is the presentation
// ordering: the audited total first, then early childhood, then grades 1-12,
// then the adult and ungraded buckets.
type GradeLevel int

const (
	GradeTotal GradeLevel = iota
	GradePK3
	GradePK4
	GradeKG
	Grade1
	Grade2
	Grade3
	Grade4
	Grade5
	Grade6
	Grade7
	Grade8
	Grade9
	Grade10
	Grade11
	Grade12
	GradeAdult
	GradeUngraded
)

// gradeLabels maps each GradeLevel to its canonical label. The labels are the
// normalized forms produced by the schema normalizer; parsing is exact-match
// against this set, never numeric.
var gradeLabels = map[GradeLevel]string{
	GradeTotal:    "total",
	GradePK3:      "pk3",
	GradePK4:      "pk4",
	GradeKG:       "kg",
	Grade1:        "1",
	Grade2:        "2",
	Grade3:        "3",
	Grade4:        "4",
	Grade5:        "5",
	Grade6:        "6",
	Grade7:        "7",
	Grade8:        "8",
	Grade9:        "9",
	Grade10:       "10",
	Grade11:       "11",
	Grade12:       "12",
	GradeAdult:    "adult",
	GradeUngraded: "ungraded",
}

var gradeByLabel = func() map[string]GradeLevel {
	m := make(map[string]GradeLevel, len(gradeLabels))
	for g, label := range gradeLabels {
		m[label] = g
	}
	return m
}()

// String returns the canonical label for the grade level.
func (g GradeLevel) String() string {
	if label, ok := gradeLabels[g]; ok {
		return label
	}
	return fmt.Sprintf("grade(%d)", int(g))
}

// IsValid reports whether g is a member of the closed enumeration.
func (g GradeLevel) IsValid() bool {
	_, ok := gradeLabels[g]
	return ok
}

// LookupGradeLevel resolves a canonical label to its GradeLevel by exact
// match. It reports false for any label outside the closed set.
func LookupGradeLevel(label string) (GradeLevel, bool) {
	g, ok := gradeByLabel[label]
	return g, ok
}

// AllGradeLevels returns every member of the enumeration in order.
func AllGradeLevels() []GradeLevel {
	return []GradeLevel{
		GradeTotal, GradePK3, GradePK4, GradeKG,
		Grade1, Grade2, Grade3, Grade4, Grade5, Grade6,
		Grade7, Grade8, Grade9, Grade10, Grade11, Grade12,
		GradeAdult, GradeUngraded,
	}
}

// HighSchoolGrades returns the high-school subset {9, 10, 11, 12}.
func HighSchoolGrades() []GradeLevel {
	return []GradeLevel{Grade9, Grade10, Grade11, Grade12}
}

// EnrollmentRecord is one observation of enrolled count for one entity, one
// grade, one year. Absent (year, entity, grade) combinations mean a count of
// zero and are not stored. At most one record exists per
// (Year, EntityCode, Grade).
type EnrollmentRecord struct {
	Year       int        `json:"year" csv:"Year"`
	EntityCode string     `json:"entity_code" csv:"EntityCode"`
	EntityName string     `json:"entity_name" csv:"EntityName"`
	GroupCode  string     `json:"group_code" csv:"GroupCode"`
	GroupName  string     `json:"group_name" csv:"GroupName"`
	Grade      GradeLevel `json:"grade" csv:"Grade"`
	Enrolled   int        `json:"n_enrolled" csv:"NEnrolled"`
}

// IsValid checks the record invariants: a non-empty stable code, a member
// grade, and a non-negative count.
func (r EnrollmentRecord) IsValid() bool {
	return r.EntityCode != "" && r.Grade.IsValid() && r.Enrolled >= 0 && r.Year > 0
}

// Key identifies the record within its year.
func (r EnrollmentRecord) Key() string {
	return fmt.Sprintf("%d/%s/%s", r.Year, r.EntityCode, r.Grade)
}

// Table is a raw in-memory snapshot table as handed over by the ingestion
// collaborator: one header row of column names plus data rows. Column naming
// follows whatever the source workbook used; the schema normalizer is the
// component that tolerates casing and spacing drift.
type Table struct {
	Columns []string
	Rows    [][]string
}

// SnapshotLayout describes the column shape of a yearly snapshot.
type SnapshotLayout string

const (
	// LayoutWide has one count column per grade plus an audited total column.
	LayoutWide SnapshotLayout = "wide"
	// LayoutLong has one row per grade with a label column and a count column.
	LayoutLong SnapshotLayout = "long"
)

// Snapshot is one yearly enrollment snapshot awaiting normalization.
type Snapshot struct {
	Year   int
	Layout SnapshotLayout
	Table  Table
}
