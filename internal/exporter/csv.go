package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"edpulse/internal/enrollment"
	apperrors "edpulse/internal/errors"
)

// CSVWriter writes the two result tables as CSV files.
type CSVWriter struct {
	logger *slog.Logger
	// BOMPrefix adds a UTF-8 BOM so Excel opens the files correctly.
	BOMPrefix bool
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteReport writes the assembled change-and-baseline reporting table.
// Median rows leave their count cells empty rather than writing fake zeros.
func (w *CSVWriter) WriteReport(path string, result *enrollment.Result) error {
	header := []string{
		"entity_name",
		"grade",
		fmt.Sprintf("n_enrolled_%d", result.YearY1),
		fmt.Sprintf("n_enrolled_%d", result.YearY2),
		"n_enrolled_change",
		"rate_enrolled_change",
	}

	rows := make([][]string, 0, len(result.Report))
	for _, r := range result.Report {
		rows = append(rows, []string{
			r.EntityName,
			r.Grade.String(),
			formatCount(r.EnrolledY1),
			formatCount(r.EnrolledY2),
			formatCount(r.Change),
			formatRate(r.Rate),
		})
	}
	return w.write(path, header, rows)
}

// WriteLongitudinal writes the full reconciled long table (pre-exclusion).
func (w *CSVWriter) WriteLongitudinal(path string, result *enrollment.Result) error {
	header := []string{
		"year", "entity_code", "entity_name",
		"group_code", "group_name", "grade", "n_enrolled",
	}

	rows := make([][]string, 0, len(result.Longitudinal))
	for _, r := range result.Longitudinal {
		rows = append(rows, []string{
			strconv.Itoa(r.Year),
			r.EntityCode,
			r.EntityName,
			r.GroupCode,
			r.GroupName,
			r.Grade.String(),
			strconv.Itoa(r.Enrolled),
		})
	}
	return w.write(path, header, rows)
}

func (w *CSVWriter) write(path string, header []string, rows [][]string) error {
	w.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(rows)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create output directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create CSV file", err).
			WithContext("path", path)
	}
	defer file.Close()

	if w.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return apperrors.NewStorageError("failed to write CSV header row", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return apperrors.NewStorageError("failed to write CSV data row", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatCount(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatRate(r *float64) string {
	if r == nil {
		return ""
	}
	return strconv.FormatFloat(*r, 'f', 3, 64)
}
