// =============================================================================
// txtmerge - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the merger, including:
//   - Whole-file replacement that never leaves a partially written target
//   - Report directory management
//   - Report file naming
//   - Summary log generation
//
// REPLACEMENT STRATEGY:
//   - Content is written to a temporary file next to the target
//   - The temporary file is synced and renamed over the target
//   - The target's permission bits are preserved
//   - No backup is kept: the previous content is gone after the rename
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/txtmerge/internal/types"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles report files for the merger.
type FileManager struct {
	// ReportDir is the directory where report files are placed.
	ReportDir string

	// FileNameFormat is the report file name format, without extension.
	FileNameFormat string
}

// NewFileManager creates a new FileManager for the given report directory.
func NewFileManager(reportDir, fileNameFormat string) *FileManager {
	if fileNameFormat == "" {
		fileNameFormat = "merge_{date}_{uuid}"
	}
	return &FileManager{
		ReportDir:      reportDir,
		FileNameFormat: fileNameFormat,
	}
}

// EnsureReportDir creates the report directory if it doesn't exist.
func (fm *FileManager) EnsureReportDir() error {
	if err := os.MkdirAll(fm.ReportDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.ReportDir, err)
	}
	return nil
}

// ReportPath returns the path of a report file with the given extension.
//
// PARAMETERS:
//   - runID: The merge run ID, used for {uuid}.
//   - target: The merge target, used for {target} (base name, no extension).
//   - ext: The file extension including the dot, e.g. ".xlsx".
func (fm *FileManager) ReportPath(runID, target, ext string) string {
	base := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
	name := GenerateFileName(fm.FileNameFormat, map[string]string{
		"uuid":   runID,
		"target": base,
	})
	return filepath.Join(fm.ReportDir, name+ext)
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateFileName expands a file name format.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID, unless params supplies one
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//   - params: Extra placeholder values; these win over the built-ins.
//
// EXAMPLE:
//   format: "merge_{target}_{date}"
//   params: {"target": "bank2024"}
//   output: "merge_bank2024_20240115"
func GenerateFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		if value != "" {
			replacements["{"+key+"}"] = value
		}
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// =============================================================================
// FILE REPLACEMENT
// =============================================================================

// ReplaceFile replaces the content of path with data.
//
// The data goes to a temporary file in the same directory, which is synced and
// renamed over path. A failure at any step leaves path untouched. If path
// exists its permission bits are kept; otherwise the file is created 0644.
//
// RETURNS:
//   - A *types.IOError on failure.
func ReplaceFile(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &types.IOError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &types.IOError{Op: "write", Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &types.IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &types.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// MergeSummary contains summary information about one merge run.
type MergeSummary struct {
	RunID        string
	StartTime    time.Time
	EndTime      time.Time
	Target       string
	Mode         string
	DateRange    string
	Status       string
	Message      string
	LinesWritten int
	BytesWritten int
	Months       []string
	Sources      []SourceInfo
	Duplicates   []types.DuplicateGroup
}

// SourceInfo describes one file read during the merge.
type SourceInfo struct {
	Path     string
	Encoding string
	Lines    int
}

// WriteSummaryLog writes a merge summary to a text file.
//
// RETURNS:
//   - An error if writing fails.
func WriteSummaryLog(summary MergeSummary, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	rule := strings.Repeat("=", 80) + "\n"
	thin := strings.Repeat("-", 80) + "\n"

	fmt.Fprintf(writer, "txtmerge - Merge Summary\n%s\n", rule)
	fmt.Fprintf(writer, "Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Target:         %s\n"+
		"  Mode:           %s\n"+
		"  Date Range:     %s\n"+
		"  Status:         %s\n"+
		"  Message:        %s\n"+
		"  Lines Written:  %d\n"+
		"  Bytes Written:  %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.Target,
		summary.Mode,
		summary.DateRange,
		summary.Status,
		summary.Message,
		summary.LinesWritten,
		summary.BytesWritten)

	if len(summary.Sources) > 0 {
		fmt.Fprintf(writer, "Files Read:\n%s", thin)
		for _, s := range summary.Sources {
			fmt.Fprintf(writer, "  %s (%s, %d lines)\n", s.Path, s.Encoding, s.Lines)
		}
		writer.WriteString("\n")
	}

	fmt.Fprintf(writer, "Months In Target:\n%s", thin)
	if len(summary.Months) == 0 {
		writer.WriteString("  (none)\n")
	}
	for _, m := range summary.Months {
		fmt.Fprintf(writer, "  %s\n", m)
	}
	writer.WriteString("\n")

	if len(summary.Duplicates) > 0 {
		fmt.Fprintf(writer, "Duplicate Records:\n%s", thin)
		for i, g := range summary.Duplicates {
			fmt.Fprintf(writer, "Duplicate #%d\n"+
				"  Lines:   %s\n"+
				"  Content: %s\n\n",
				i+1, JoinInts(g.Positions, ", "), g.Content)
		}
	}

	writer.WriteString(rule + "End of Summary\n")

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush summary file: %w", err)
	}
	return nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// JoinInts renders ints separated by sep.
func JoinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, sep)
}
