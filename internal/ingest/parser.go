package ingest

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "edpulse/internal/errors"
	"edpulse/pkg/contracts/domain"
)

// Parser extracts raw snapshot tables from enrollment workbooks.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a snapshot workbook parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseSnapshot reads a yearly enrollment workbook and extracts the raw
// snapshot table. Source workbooks vary in sheet naming and carry title rows
// above the header, so the sheet and header row are located by content, not
// position.
func (p *Parser) ParseSnapshot(path string, year int, layout domain.SnapshotLayout) (domain.Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.Snapshot{}, apperrors.NewParsingError("failed to open snapshot workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	rows, sheetName, err := findDataSheet(f)
	if err != nil {
		return domain.Snapshot{}, err
	}
	p.logger.Info("found enrollment data sheet",
		slog.String("path", path),
		slog.String("sheet_name", sheetName),
		slog.Int("total_rows", len(rows)))

	headerRow := findHeaderRow(rows)
	if headerRow < 0 {
		return domain.Snapshot{}, apperrors.NewParsingError("could not find header row in snapshot", nil).
			WithContext("path", path).
			WithContext("sheet", sheetName)
	}

	table := domain.Table{Columns: rows[headerRow]}
	for _, row := range rows[headerRow+1:] {
		if isBlankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	p.logger.Info("parsed snapshot table",
		slog.Int("year", year),
		slog.String("layout", string(layout)),
		slog.Int("data_rows", len(table.Rows)))

	return domain.Snapshot{Year: year, Layout: layout, Table: table}, nil
}

// findDataSheet locates the sheet carrying the enrollment table. Common
// names are tried first, then every sheet is probed for the identity
// columns.
func findDataSheet(f *excelize.File) ([][]string, string, error) {
	preferred := []string{"Enrollment", "enrollment", "Data", "Sheet1"}
	for _, name := range preferred {
		if rows, err := f.GetRows(name); err == nil && len(rows) > 1 {
			if findHeaderRow(rows) >= 0 {
				return rows, name, nil
			}
		}
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) <= 1 {
			continue
		}
		if findHeaderRow(rows) >= 0 {
			return rows, name, nil
		}
	}
	return nil, "", apperrors.NewParsingError("could not find enrollment data sheet in workbook", nil)
}

// findHeaderRow returns the index of the first row that looks like the
// snapshot header: it must name both a school identifier and an LEA
// identifier. Only the leading rows are probed; sources put at most a few
// title rows above the table.
func findHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		rowText := strings.ToLower(strings.Join(rows[i], " "))
		if strings.Contains(rowText, "school") && strings.Contains(rowText, "code") &&
			strings.Contains(rowText, "lea") {
			return i
		}
	}
	return -1
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// SnapshotFileName is the conventional on-disk name for a downloaded
// snapshot workbook.
func SnapshotFileName(year int) string {
	return fmt.Sprintf("enrollment_%d.xlsx", year)
}
