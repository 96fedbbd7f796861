package enrollment

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"edpulse/pkg/contracts/domain"
)

// Reserved display labels for the synthetic rows. They are chosen so the
// assembler can pin them ahead of every real entity in the final table.
const (
	OverallLabel = "Overall"
	MedianLabel  = "Median"
)

// DefaultMinEnrollment is the default exclusion threshold: an entity-grade
// pair must have at least this many enrolled in both years to appear in the
// change table. It exists to avoid division blow-up and to keep programs
// starting from near-zero out of the rate comparison.
const DefaultMinEnrollment = 10

// Options configures one reconciliation run.
type Options struct {
	// GroupCode scopes the analysis to entities sharing this parent code.
	GroupCode string `validate:"required"`
	// GroupName is the display name of the parent rollup.
	GroupName string
	// Grades is the grade subset under analysis.
	Grades []domain.GradeLevel `validate:"required,min=1"`
	// MinEnrollment is the exclusion threshold applied to both years.
	MinEnrollment int `validate:"min=0"`
}

// DefaultOptions returns options for the standard high-school analysis.
func DefaultOptions(groupCode, groupName string) Options {
	return Options{
		GroupCode:     groupCode,
		GroupName:     groupName,
		Grades:        domain.HighSchoolGrades(),
		MinEnrollment: DefaultMinEnrollment,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the options before a run.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("validate options: %w", err)
	}
	for _, g := range o.Grades {
		if !g.IsValid() {
			return fmt.Errorf("validate options: grade %d is not a member of the grade enumeration", int(g))
		}
	}
	return nil
}

// gradeSet returns the option grades as a membership set.
func (o Options) gradeSet() map[domain.GradeLevel]bool {
	set := make(map[domain.GradeLevel]bool, len(o.Grades))
	for _, g := range o.Grades {
		set[g] = true
	}
	return set
}

// ChangeRecord is one row of the year-over-year change table for one
// (entity, grade) pair that survived the exclusion threshold.
type ChangeRecord struct {
	EntityCode string            `json:"entity_code"`
	EntityName string            `json:"entity_name"`
	Grade      domain.GradeLevel `json:"grade"`
	EnrolledY1 int               `json:"n_enrolled_y1"`
	EnrolledY2 int               `json:"n_enrolled_y2"`
	Change     int               `json:"n_enrolled_change"`
	Rate       float64           `json:"rate_enrolled_change"`
}

// MedianBaseline is the per-grade median rate of change across all real
// entities, used to contextualize the overall rate.
type MedianBaseline struct {
	Grade domain.GradeLevel `json:"grade"`
	Rate  float64           `json:"rate_enrolled_change"`
}

// ReportRow is one assembled row of the final reporting table. Count fields
// are pointers so the Median rows can carry nulls rather than fake zeros.
type ReportRow struct {
	EntityName string            `json:"entity_name"`
	Grade      domain.GradeLevel `json:"grade"`
	EnrolledY1 *int              `json:"n_enrolled_y1,omitempty"`
	EnrolledY2 *int              `json:"n_enrolled_y2,omitempty"`
	Change     *int              `json:"n_enrolled_change,omitempty"`
	Rate       *float64          `json:"rate_enrolled_change,omitempty"`
}

// Result is the output of one reconciliation run: the assembled reporting
// table, the full reconciled long table (pre-exclusion, aggregate included),
// and any identity warnings observed along the way.
type Result struct {
	Report       []ReportRow               `json:"report"`
	Longitudinal []domain.EnrollmentRecord `json:"longitudinal"`
	Warnings     []IdentityWarning         `json:"warnings,omitempty"`
	YearY1       int                       `json:"year_y1"`
	YearY2       int                       `json:"year_y2"`
}

// round3 rounds to 3 decimal places, once, after division. Intermediate
// values are never rounded.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
