package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"edpulse/internal/enrollment"
	apperrors "edpulse/internal/errors"
)

const (
	reportSheet       = "Change"
	longitudinalSheet = "Longitudinal"
)

// WorkbookWriter writes both result tables into one Excel workbook for
// analysts who work in spreadsheets rather than CSV.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a new workbook writer instance
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// Write writes the report and longitudinal sheets to path.
func (w *WorkbookWriter) Write(path string, result *enrollment.Result) error {
	w.logger.Info("writing result workbook",
		slog.String("path", path),
		slog.Int("report_rows", len(result.Report)),
		slog.Int("longitudinal_rows", len(result.Longitudinal)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create output directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeReportSheet(f, result); err != nil {
		return err
	}
	if err := w.writeLongitudinalSheet(f, result); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return apperrors.NewStorageError("failed to drop default sheet", err)
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save result workbook", err).
			WithContext("path", path)
	}
	return nil
}

func (w *WorkbookWriter) writeReportSheet(f *excelize.File, result *enrollment.Result) error {
	if _, err := f.NewSheet(reportSheet); err != nil {
		return apperrors.NewStorageError("failed to create report sheet", err)
	}

	header := []interface{}{
		"Entity", "Grade",
		fmt.Sprintf("Enrolled %d", result.YearY1),
		fmt.Sprintf("Enrolled %d", result.YearY2),
		"Change", "Rate of Change",
	}
	if err := w.setRow(f, reportSheet, 1, header); err != nil {
		return err
	}

	for i, r := range result.Report {
		row := []interface{}{r.EntityName, r.Grade.String()}
		row = append(row, cellOrNil(r.EnrolledY1), cellOrNil(r.EnrolledY2), cellOrNil(r.Change))
		if r.Rate != nil {
			row = append(row, *r.Rate)
		} else {
			row = append(row, nil)
		}
		if err := w.setRow(f, reportSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) writeLongitudinalSheet(f *excelize.File, result *enrollment.Result) error {
	if _, err := f.NewSheet(longitudinalSheet); err != nil {
		return apperrors.NewStorageError("failed to create longitudinal sheet", err)
	}

	header := []interface{}{
		"Year", "Entity Code", "Entity Name",
		"Group Code", "Group Name", "Grade", "Enrolled",
	}
	if err := w.setRow(f, longitudinalSheet, 1, header); err != nil {
		return err
	}

	for i, r := range result.Longitudinal {
		row := []interface{}{
			r.Year, r.EntityCode, r.EntityName,
			r.GroupCode, r.GroupName, r.Grade.String(), r.Enrolled,
		}
		if err := w.setRow(f, longitudinalSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cellRef, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return apperrors.NewStorageError("failed to compute cell reference", err)
	}
	if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
		return apperrors.NewStorageError("failed to write sheet row", err).
			WithContext("sheet", sheet).
			WithContext("row", rowNum)
	}
	return nil
}

func cellOrNil(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}
