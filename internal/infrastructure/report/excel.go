// Package report materializes datasets into spreadsheet artifacts.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/xuri/excelize/v2"

	"rasid/internal/domain"
	"rasid/internal/ports"
)

const sheetName = "Tenders"

// headerRow is the column contract consumers of the report rely on.
var headerRow = []any{"Title", "Government Description", "Activity Type", "Date", "Category ID"}

// ExcelMaterializer writes one .xlsx file per dataset under a spool
// directory. File names are run-unique so concurrent subscriber runs never
// collide.
type ExcelMaterializer struct {
	dir string
	seq atomic.Uint64
}

var _ ports.ReportMaterializer = (*ExcelMaterializer)(nil)

// NewExcelMaterializer ensures the spool directory exists.
func NewExcelMaterializer(dir string) (*ExcelMaterializer, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &ExcelMaterializer{dir: dir}, nil
}

// Materialize writes the dataset with a header row and one row per record,
// returning the file path. The caller owns the file and removes it after
// delivery, success or not.
func (m *ExcelMaterializer) Materialize(ctx context.Context, ds domain.Dataset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for i, record := range ds {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", i+2, err)
		}
		row := []any{record.Title, record.Description, record.ActivityType, record.Deadline, record.CategoryID}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	path := m.nextPath()
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

func (m *ExcelMaterializer) nextPath() string {
	name := fmt.Sprintf("rasid_tenders_%s_%d.xlsx",
		time.Now().UTC().Format("20060102T150405"), m.seq.Add(1))
	return filepath.Join(m.dir, name)
}
