package enrollment

import (
	"strconv"
	"strings"

	"edpulse/pkg/contracts/domain"
)

// codeWidth is the fixed width entity and group codes are zero-padded to.
const codeWidth = 4

// identity columns shared by both snapshot shapes, with the header variants
// observed across source years.
var (
	groupCodeAliases  = []string{"lea code", "lea id"}
	groupNameAliases  = []string{"lea name", "lea"}
	entityCodeAliases = []string{"school code", "school id"}
	entityNameAliases = []string{"school name", "school"}
	gradeColAliases   = []string{"grade", "grade level"}
	countColAliases   = []string{"enrolled", "n enrolled", "enrollment count"}
)

// Normalize converts a yearly snapshot of either layout into the canonical
// record shape. It is a pure transform; both paths run every grade label
// through the taxonomy mapper, so an unknown label aborts normalization.
func Normalize(snap domain.Snapshot) ([]domain.EnrollmentRecord, error) {
	switch snap.Layout {
	case domain.LayoutWide:
		return NormalizeWide(snap.Year, snap.Table)
	case domain.LayoutLong:
		return NormalizeLong(snap.Year, snap.Table)
	default:
		return nil, NewSchemaError(string(snap.Layout), "unknown snapshot layout")
	}
}

// NormalizeWide converts a wide-format snapshot (one count column per grade,
// plus a distinguished audited total column) into canonical records. For each
// entity row it emits one record per non-empty grade cell; absent cells stay
// implicit zeros and are not stored.
func NormalizeWide(year int, table domain.Table) ([]domain.EnrollmentRecord, error) {
	cols := headerIndex(table.Columns)

	groupCode, err := requireColumn(cols, "wide", groupCodeAliases)
	if err != nil {
		return nil, err
	}
	groupName, err := requireColumn(cols, "wide", groupNameAliases)
	if err != nil {
		return nil, err
	}
	entityCode, err := requireColumn(cols, "wide", entityCodeAliases)
	if err != nil {
		return nil, err
	}
	entityName, err := requireColumn(cols, "wide", entityNameAliases)
	if err != nil {
		return nil, err
	}

	// Every remaining column is a grade column. Mapping is strict: a column
	// that is neither an identity column nor a grade label is a hard stop.
	identityIdx := map[int]bool{groupCode: true, groupName: true, entityCode: true, entityName: true}
	type gradeColumn struct {
		idx   int
		grade domain.GradeLevel
	}
	var gradeCols []gradeColumn
	for i, name := range table.Columns {
		if identityIdx[i] || strings.TrimSpace(name) == "" {
			continue
		}
		grade, err := MapGradeLabel(name, year)
		if err != nil {
			return nil, err
		}
		gradeCols = append(gradeCols, gradeColumn{idx: i, grade: grade})
	}
	if len(gradeCols) == 0 {
		return nil, NewSchemaError("wide", "grade count columns")
	}

	var records []domain.EnrollmentRecord
	for _, row := range table.Rows {
		code := padCode(cell(row, entityCode))
		if code == "" {
			continue
		}
		for _, gc := range gradeCols {
			count, ok := parseCount(cell(row, gc.idx))
			if !ok {
				continue
			}
			records = append(records, domain.EnrollmentRecord{
				Year:       year,
				EntityCode: code,
				EntityName: cell(row, entityName),
				GroupCode:  padCode(cell(row, groupCode)),
				GroupName:  cell(row, groupName),
				Grade:      gc.grade,
				Enrolled:   count,
			})
		}
	}
	return records, nil
}

// NormalizeLong converts an already-long snapshot (one row per grade with a
// label column and a count column) into canonical records.
func NormalizeLong(year int, table domain.Table) ([]domain.EnrollmentRecord, error) {
	cols := headerIndex(table.Columns)

	groupCode, err := requireColumn(cols, "long", groupCodeAliases)
	if err != nil {
		return nil, err
	}
	groupName, err := requireColumn(cols, "long", groupNameAliases)
	if err != nil {
		return nil, err
	}
	entityCode, err := requireColumn(cols, "long", entityCodeAliases)
	if err != nil {
		return nil, err
	}
	entityName, err := requireColumn(cols, "long", entityNameAliases)
	if err != nil {
		return nil, err
	}
	gradeCol, err := requireColumn(cols, "long", gradeColAliases)
	if err != nil {
		return nil, err
	}
	countCol, err := requireColumn(cols, "long", countColAliases)
	if err != nil {
		return nil, err
	}

	var records []domain.EnrollmentRecord
	for _, row := range table.Rows {
		code := padCode(cell(row, entityCode))
		if code == "" {
			continue
		}
		grade, err := MapGradeLabel(cell(row, gradeCol), year)
		if err != nil {
			return nil, err
		}
		count, ok := parseCount(cell(row, countCol))
		if !ok {
			continue
		}
		records = append(records, domain.EnrollmentRecord{
			Year:       year,
			EntityCode: code,
			EntityName: cell(row, entityName),
			GroupCode:  padCode(cell(row, groupCode)),
			GroupName:  cell(row, groupName),
			Grade:      grade,
			Enrolled:   count,
		})
	}
	return records, nil
}

// headerIndex maps each normalized column name to its position. Header
// matching tolerates casing, underscores, and stray spacing.
func headerIndex(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, name := range columns {
		key := normalizeHeader(name)
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

func normalizeHeader(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// requireColumn resolves the first matching alias or fails with a
// SchemaError naming the preferred column.
func requireColumn(cols map[string]int, layout string, aliases []string) (int, error) {
	for _, alias := range aliases {
		if i, ok := cols[alias]; ok {
			return i, nil
		}
	}
	return 0, NewSchemaError(layout, aliases[0])
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseCount parses a non-negative count cell, tolerating thousands
// separators. Empty, zero, and malformed cells report not-ok so the caller
// leaves the combination implicit instead of storing it.
func parseCount(raw string) (int, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// padCode left-pads a numeric identifier with zeros to the fixed code width.
// Non-numeric identifiers pass through trimmed.
func padCode(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if _, err := strconv.Atoi(s); err != nil {
		return s
	}
	for len(s) < codeWidth {
		s = "0" + s
	}
	return s
}
