package enrollment

import (
	"fmt"
)

// SchemaError indicates an input table is missing a required column. It is
// fatal: the analysis is meaningless without complete schema, so no partial
// output is produced.
type SchemaError struct {
	Column string
	Layout string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: required column %q not found in %s snapshot", e.Column, e.Layout)
}

// NewSchemaError creates a schema error for a missing column.
func NewSchemaError(layout, column string) *SchemaError {
	return &SchemaError{Column: column, Layout: layout}
}

// UnknownGradeLabelError indicates a grade label that does not map onto the
// closed GradeLevel enumeration. It is fatal rather than a silent drop,
// because an unmapped grade would corrupt every downstream sum.
type UnknownGradeLabelError struct {
	Label string
	Year  int
}

// Error implements the error interface
func (e *UnknownGradeLabelError) Error() string {
	return fmt.Sprintf("grade label %q (year %d) does not match any known grade level", e.Label, e.Year)
}

// UndefinedRateError indicates a rate computation that would divide by zero.
// The exclusion threshold is expected to prevent it; its occurrence signals a
// logic defect upstream, so it aborts the run.
type UndefinedRateError struct {
	EntityCode string
	Grade      string
}

// Error implements the error interface
func (e *UndefinedRateError) Error() string {
	return fmt.Sprintf("undefined rate of change for entity %s grade %s: baseline year count is zero", e.EntityCode, e.Grade)
}

// IdentityWarningKind classifies the ambiguity the reconciler observed.
type IdentityWarningKind string

const (
	// WarnNameSharedByCodes flags one display name observed under two or
	// more distinct entity codes. Codes are never merged; the warning is
	// surfaced so an analyst can review.
	WarnNameSharedByCodes IdentityWarningKind = "name_shared_by_codes"
	// WarnAmbiguousCanonicalName flags a code whose most recent year carries
	// more than one distinct name, so the most-recent-year heuristic could
	// not pick a unique canonical name on its own.
	WarnAmbiguousCanonicalName IdentityWarningKind = "ambiguous_canonical_name"
)

// IdentityWarning is a non-fatal identity ambiguity surfaced to the caller
// alongside the normal result. The ambiguous rows are still resolved by the
// deterministic default policy.
type IdentityWarning struct {
	Kind       IdentityWarningKind `json:"kind"`
	EntityName string              `json:"entity_name,omitempty"`
	Codes      []string            `json:"codes,omitempty"`
	EntityCode string              `json:"entity_code,omitempty"`
	Names      []string            `json:"names,omitempty"`
	Resolution string              `json:"resolution"`
}

// String renders the warning for logs.
func (w IdentityWarning) String() string {
	switch w.Kind {
	case WarnNameSharedByCodes:
		return fmt.Sprintf("name %q observed under codes %v; codes kept separate", w.EntityName, w.Codes)
	case WarnAmbiguousCanonicalName:
		return fmt.Sprintf("code %s has multiple names %v in its most recent year; using %q", w.EntityCode, w.Names, w.Resolution)
	default:
		return fmt.Sprintf("identity warning (%s)", w.Kind)
	}
}
