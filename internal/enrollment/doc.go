// Package enrollment implements the yearly enrollment reconciliation and
// change-metric pipeline.
//
// The pipeline takes two differently-shaped yearly snapshots of per-school,
// per-grade enrollment counts and produces a single longitudinal dataset plus
// year-over-year change metrics at both the individual-entity and aggregate
// level. It answers the analyst's question: did enrollment change evenly
// across schools, or was the overall trend driven by a few outliers?
//
// # Architecture
//
// The package is organized as a strict one-directional flow:
//
//   - normalize.go: converts each snapshot (wide or long layout) into the
//     canonical EnrollmentRecord shape
//   - grades.go: maps free-text grade labels onto the closed GradeLevel
//     enumeration (a hard stop on unknown labels)
//   - reconcile.go: scope filtering and identity drift resolution (stable
//     codes, drifting display names)
//   - aggregate.go: the synthetic district-wide rollup per year and grade
//   - change.go: the two-year join with absolute and relative change and
//     the minimum-count exclusion rule
//   - median.go: the cross-entity median baseline per grade
//   - assemble.go: the final reporting table ordering
//   - pipeline.go: the Calculator orchestrator tying the stages together
//
// # Usage
//
//	opts := enrollment.DefaultOptions("0001", "District of Columbia Public Schools")
//	result, err := enrollment.Run(ctx, snapshot2019, snapshot2022, opts, slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, row := range result.Report {
//	    fmt.Println(row.EntityName, row.Grade, row.Rate)
//	}
//
// # Error Handling
//
// Schema and grade-mapping failures abort the whole run with no partial
// output, because they mean the canonical data model cannot be trusted.
// Identity ambiguity is recoverable: the reconciler applies a deterministic
// default and surfaces IdentityWarning values on the Result.
package enrollment
