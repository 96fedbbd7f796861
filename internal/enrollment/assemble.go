package enrollment

import (
	"sort"
)

// AssembleReport combines the per-entity change records, the overall rollup
// change record, and the median baseline rows into the final reporting
// table. Median rows populate only the grade and rate; their count fields
// stay null. Order: Overall, then Median, then remaining entities in
// ascending name order, with ascending grade order within each.
func AssembleReport(changes []ChangeRecord, medians []MedianBaseline) []ReportRow {
	rows := make([]ReportRow, 0, len(changes)+len(medians))
	for _, c := range changes {
		c := c
		rows = append(rows, ReportRow{
			EntityName: c.EntityName,
			Grade:      c.Grade,
			EnrolledY1: &c.EnrolledY1,
			EnrolledY2: &c.EnrolledY2,
			Change:     &c.Change,
			Rate:       &c.Rate,
		})
	}
	for _, m := range medians {
		m := m
		rows = append(rows, ReportRow{
			EntityName: MedianLabel,
			Grade:      m.Grade,
			Rate:       &m.Rate,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := labelRank(rows[i].EntityName), labelRank(rows[j].EntityName)
		if ri != rj {
			return ri < rj
		}
		if rows[i].EntityName != rows[j].EntityName {
			return rows[i].EntityName < rows[j].EntityName
		}
		return rows[i].Grade < rows[j].Grade
	})
	return rows
}

// labelRank pins the reserved synthetic labels ahead of real entities.
func labelRank(name string) int {
	switch name {
	case OverallLabel:
		return 0
	case MedianLabel:
		return 1
	default:
		return 2
	}
}
