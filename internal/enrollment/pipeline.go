package enrollment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"edpulse/pkg/contracts/domain"
)

// Calculator orchestrates the reconciliation and change-metric pipeline. The
// pipeline is a deterministic pure computation over already-materialized
// snapshots: every stage consumes an immutable input population and produces
// a new one, so identical inputs always yield identical output tables.
type Calculator struct {
	opts   Options
	logger *slog.Logger
}

// NewCalculator creates a calculator for the given analysis options.
func NewCalculator(opts Options, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{opts: opts, logger: logger}
}

// Run is the convenience entry point for a single reconciliation.
func Run(ctx context.Context, y1, y2 domain.Snapshot, opts Options, logger *slog.Logger) (*Result, error) {
	return NewCalculator(opts, logger).Reconcile(ctx, y1, y2)
}

// Reconcile normalizes the two yearly snapshots into the canonical record
// shape, resolves identity drift, injects the overall rollup, and computes
// the change table with its median baselines. It returns the assembled
// reporting table together with the full reconciled long table
// (pre-exclusion) and any identity warnings.
func (c *Calculator) Reconcile(ctx context.Context, y1, y2 domain.Snapshot) (*Result, error) {
	if err := c.opts.Validate(); err != nil {
		return nil, err
	}
	if y1.Year == y2.Year {
		return nil, fmt.Errorf("snapshots must cover two distinct years, got %d twice", y1.Year)
	}
	if y1.Year > y2.Year {
		y1, y2 = y2, y1
	}

	c.logger.InfoContext(ctx, "starting enrollment reconciliation",
		slog.Int("year_y1", y1.Year),
		slog.Int("year_y2", y2.Year),
		slog.String("group_code", c.opts.GroupCode),
		slog.Int("min_enrollment", c.opts.MinEnrollment),
	)

	recordsY1, err := Normalize(y1)
	if err != nil {
		return nil, fmt.Errorf("normalize %d snapshot: %w", y1.Year, err)
	}
	recordsY2, err := Normalize(y2)
	if err != nil {
		return nil, fmt.Errorf("normalize %d snapshot: %w", y2.Year, err)
	}
	c.logger.InfoContext(ctx, "normalized snapshots",
		slog.Int("records_y1", len(recordsY1)),
		slog.Int("records_y2", len(recordsY2)),
	)

	combined := make([]domain.EnrollmentRecord, 0, len(recordsY1)+len(recordsY2))
	combined = append(combined, recordsY1...)
	combined = append(combined, recordsY2...)

	scoped := FilterScope(combined, c.opts.GroupCode, c.opts.gradeSet())
	if len(scoped) == 0 {
		return nil, fmt.Errorf("no records in scope for group %s", c.opts.GroupCode)
	}

	reconciled, warnings := ReconcileIdentities(scoped)
	for _, w := range warnings {
		c.logger.WarnContext(ctx, "identity ambiguity",
			slog.String("kind", string(w.Kind)),
			slog.String("detail", w.String()),
		)
	}

	population := AppendGroupRollup(reconciled, c.opts.GroupCode, c.opts.GroupName)

	changes, err := ComputeChanges(population, y1.Year, y2.Year, c.opts)
	if err != nil {
		return nil, fmt.Errorf("compute change metrics: %w", err)
	}
	medians := ComputeMedianBaselines(changes, c.opts.GroupCode)

	result := &Result{
		Report:       AssembleReport(changes, medians),
		Longitudinal: sortLongitudinal(population),
		Warnings:     warnings,
		YearY1:       y1.Year,
		YearY2:       y2.Year,
	}

	c.logger.InfoContext(ctx, "enrollment reconciliation completed",
		slog.Int("report_rows", len(result.Report)),
		slog.Int("longitudinal_rows", len(result.Longitudinal)),
		slog.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

// sortLongitudinal fixes the long table ordering so repeated runs emit
// byte-identical output.
func sortLongitudinal(records []domain.EnrollmentRecord) []domain.EnrollmentRecord {
	out := make([]domain.EnrollmentRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].EntityCode != out[j].EntityCode {
			return out[i].EntityCode < out[j].EntityCode
		}
		return out[i].Grade < out[j].Grade
	})
	return out
}
