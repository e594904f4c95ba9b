// =============================================================================
// txtmerge - Merge Reports
// =============================================================================
//
// This module writes the optional reports of a merge run:
//   - An XLSX workbook with three sheets: Months, Duplicates and Files
//   - A plain-text summary log (see pkg/utils.WriteSummaryLog)
//
// Reports are outputs requested by the user; nothing reads them back.
//
// =============================================================================

package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/txtmerge/internal/config"
	"github.com/ginjaninja78/txtmerge/internal/merger"
	"github.com/ginjaninja78/txtmerge/pkg/utils"
)

// Sheet names of the XLSX report.
const (
	SheetMonths     = "Months"
	SheetDuplicates = "Duplicates"
	SheetFiles      = "Files"
)

// Writer writes the reports enabled in the configuration.
type Writer struct {
	fm   *utils.FileManager
	xlsx bool
	text bool
}

// NewWriter creates a Writer from the report configuration.
func NewWriter(cfg config.ReportConfig) *Writer {
	return &Writer{
		fm:   utils.NewFileManager(cfg.Dir, cfg.FileNameFormat),
		xlsx: cfg.XLSX,
		text: cfg.Text,
	}
}

// Write writes every enabled report for res.
//
// RETURNS:
//   - The paths of the files written.
//   - An error if a report cannot be written. The merge itself is unaffected.
func (w *Writer) Write(res *merger.Result) ([]string, error) {
	if !w.xlsx && !w.text {
		return nil, nil
	}
	if err := w.fm.EnsureReportDir(); err != nil {
		return nil, err
	}

	var paths []string
	if w.xlsx {
		p := w.fm.ReportPath(res.RunID, res.Target, ".xlsx")
		if err := WriteXLSX(res, p); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	if w.text {
		p := w.fm.ReportPath(res.RunID, res.Target, ".txt")
		if err := utils.WriteSummaryLog(Summary(res), p); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Summary converts a merge result into the summary log structure.
func Summary(res *merger.Result) utils.MergeSummary {
	s := utils.MergeSummary{
		RunID:        res.RunID,
		StartTime:    res.StartTime,
		EndTime:      res.StartTime.Add(res.Elapsed),
		Target:       res.Target,
		Mode:         string(res.Mode),
		DateRange:    res.DateRange.String(),
		Status:       string(res.Status),
		Message:      res.Message,
		LinesWritten: res.LinesWritten,
		BytesWritten: res.BytesWritten,
		Months:       res.Months,
		Duplicates:   res.Duplicates,
	}
	for _, f := range res.Files {
		s.Sources = append(s.Sources, utils.SourceInfo{Path: f.Path, Encoding: f.Encoding, Lines: f.Lines})
	}
	return s
}

// =============================================================================
// XLSX REPORT
// =============================================================================

// WriteXLSX writes the workbook report for res to path.
func WriteXLSX(res *merger.Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetMonths); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetDuplicates, SheetFiles} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	months := [][]interface{}{{"Month", "Date Range"}}
	for _, m := range res.Months {
		months = append(months, []interface{}{m, res.DateRange.String()})
	}

	dups := [][]interface{}{{"Group", "Lines", "Occurrences", "Content"}}
	for i, g := range res.Duplicates {
		dups = append(dups, []interface{}{i + 1, utils.JoinInts(g.Positions, ", "), len(g.Positions), g.Content})
	}

	files := [][]interface{}{{"Role", "Path", "Encoding", "Lines"}}
	for i, fi := range res.Files {
		role := "source"
		if i == 0 {
			role = "target"
		}
		files = append(files, []interface{}{role, fi.Path, fi.Encoding, fi.Lines})
	}
	files = append(files,
		[]interface{}{},
		[]interface{}{"Run ID", res.RunID},
		[]interface{}{"Status", string(res.Status)},
		[]interface{}{"Mode", string(res.Mode)},
		[]interface{}{"Generated", time.Now().Format("2006-01-02 15:04:05")},
	)

	for sheet, rows := range map[string][][]interface{}{
		SheetMonths:     months,
		SheetDuplicates: dups,
		SheetFiles:      files,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}

	for _, w := range []struct {
		sheet, from, to string
		width           float64
	}{
		{SheetMonths, "A", "B", 25},
		{SheetDuplicates, "B", "B", 20},
		{SheetDuplicates, "D", "D", 80},
		{SheetFiles, "B", "B", 50},
	} {
		if err := f.SetColWidth(w.sheet, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("failed to set %s column width: %w", w.sheet, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
