// =============================================================================
// txtmerge - Merge Orchestrator
// =============================================================================
//
// This module orchestrates one merge, from reading the target to replacing it
// with the merged content.
//
// MERGE PIPELINE:
//   1. Return early (not an error) when no target or no sources are selected
//   2. Read the target file
//   3. Classify the target's months, honouring the optional date range
//   4. Read every source file, in the order the caller selected them
//   5. Concatenate (list-append or string-join)
//   6. Detect duplicates over the merged lines (list-append only; advisory)
//   7. Ask the optional confirm gate
//   8. Replace the target file
//
// FAILURE MODEL:
//   Any I/O failure in steps 2, 4 or 8 aborts the merge and is returned as a
//   *types.IOError. Every read completes before the write starts, and the
//   write goes through a temporary file, so the target is either fully
//   replaced or untouched.
//
// WARNING:
//   The merge is a destructive overwrite. No backup of the target is kept.
//
// CONCURRENCY:
//   A merge runs on the calling goroutine and reads one file at a time,
//   stopping at the first failure. A Merger holds no per-merge state,
//   but callers must serialise merges that share a target path.
//
// =============================================================================

package merger

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/txtmerge/internal/classifier"
	"github.com/ginjaninja78/txtmerge/internal/config"
	"github.com/ginjaninja78/txtmerge/internal/decoder"
	"github.com/ginjaninja78/txtmerge/internal/duplicates"
	"github.com/ginjaninja78/txtmerge/internal/types"
	"github.com/ginjaninja78/txtmerge/pkg/utils"
)

// =============================================================================
// REQUEST AND RESULT STRUCTURES
// =============================================================================

// Status is the outcome of a merge that did not fail.
type Status string

const (
	// StatusMerged means the target was replaced with the merged content.
	StatusMerged Status = "merged"

	// StatusDryRun means everything ran except the write.
	StatusDryRun Status = "dry-run"

	// StatusCancelled means the confirm gate declined the write.
	StatusCancelled Status = "cancelled"

	// StatusNoSelection means the target or the sources were not provided.
	StatusNoSelection Status = "no-selection"
)

// Request describes one merge.
type Request struct {
	// TargetPath is both the first file read and the only file written.
	TargetPath string

	// SourcePaths are appended after the target, in this order.
	SourcePaths []string

	// DateRange optionally restricts the month report. Nil reports all months.
	DateRange *types.DateRange

	// Mode selects list-append or string-join. Empty means list-append.
	Mode types.Mode

	// DryRun runs the whole pipeline but skips the write.
	DryRun bool

	// Confirm, when set, is called after duplicate detection with the
	// provisional result. Returning false cancels the write. When nil,
	// duplicates are advisory and the write always proceeds.
	Confirm func(*Result) bool
}

// FileInfo describes one file read during the merge.
type FileInfo struct {
	Path     string
	Encoding string
	FellBack bool
	Lines    int
}

// Result represents the outcome of a merge.
type Result struct {
	// RunID identifies this merge in logs and reports.
	RunID string

	// Status is the outcome.
	Status Status

	// Message is a human-readable summary of the outcome.
	Message string

	// Notes are informational remarks for the user.
	Notes []string

	// Target is the target path.
	Target string

	// Mode is the concatenation mode used.
	Mode types.Mode

	// DateRange is the range applied to the month report, if any.
	DateRange *types.DateRange

	// Months are the MM-YYYY keys found in the target, in calendar order.
	Months []string

	// Duplicates are the advisory duplicate groups over the merged lines.
	Duplicates []types.DuplicateGroup

	// Document is the merged content.
	Document Document

	// Files lists the target first, then the sources in selection order.
	Files []FileInfo

	// LinesWritten and BytesWritten are zero unless Status is StatusMerged.
	LinesWritten int
	BytesWritten int

	// StartTime and Elapsed time the merge.
	StartTime time.Time
	Elapsed   time.Duration
}

// Sources returns the FileInfo of the source files, without the target.
func (r *Result) Sources() []FileInfo {
	if len(r.Files) == 0 {
		return nil
	}
	return r.Files[1:]
}

// =============================================================================
// MERGER STRUCTURE
// =============================================================================

// Merger runs merges with a fixed configuration.
type Merger struct {
	reader     *decoder.Reader
	classifier *classifier.Classifier
	detector   *duplicates.Detector
	logger     *zap.Logger

	// replace writes the merged content; swapped in tests.
	replace func(path string, data []byte) error
}

// New creates a Merger.
//
// PARAMETERS:
//   - cfg: The application configuration. Nil uses config.Default().
//   - logger: The logger. Nil disables logging.
//
// RETURNS:
//   - A new Merger, or an error if the fallback encoding is unsupported.
func New(cfg *config.Config, logger *zap.Logger) (*Merger, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	reader, err := decoder.New(cfg.FallbackEncoding)
	if err != nil {
		return nil, err
	}
	return &Merger{
		reader:     reader,
		classifier: classifier.New(cfg.Marker),
		detector:   duplicates.New(cfg.Marker),
		logger:     logger,
		replace:    utils.ReplaceFile,
	}, nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// ScanMonths returns the months present in one file, in calendar order.
//
// RETURNS:
//   - The MM-YYYY keys.
//   - A *types.IOError if the file cannot be read.
func (m *Merger) ScanMonths(path string, rng *types.DateRange) ([]string, error) {
	res, err := m.reader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := m.classifier.Classify(res.Lines, rng)
	m.logger.Debug("Scanned months",
		zap.String("path", path),
		zap.String("encoding", res.Encoding),
		zap.Int("lines", len(res.Lines)),
		zap.Int("matched", c.Matched),
		zap.Int("malformed", c.Malformed),
		zap.Int("out_of_range", c.OutOfRange))
	return c.Months(), nil
}

// FindDuplicates reads the files, list-appends them and returns the duplicate
// groups with positions in the combined sequence. Nothing is written.
func (m *Merger) FindDuplicates(paths []string) ([]types.DuplicateGroup, error) {
	contents, err := m.readAll(paths)
	if err != nil {
		return nil, err
	}
	all := make([][]types.Line, len(contents))
	for i, c := range contents {
		all[i] = c.Lines
	}
	return m.detector.Find(AppendLines(nil, all...)), nil
}

// Merge runs the merge pipeline.
//
// RETURNS:
//   - The Result. For StatusNoSelection no file has been touched.
//   - A *types.IOError (possibly wrapped) if a read or the write fails. The
//     target is unmodified in that case.
func (m *Merger) Merge(req Request) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:     uuid.New().String(),
		Target:    req.TargetPath,
		Mode:      req.Mode,
		DateRange: req.DateRange,
		StartTime: start,
	}
	if result.Mode == "" {
		result.Mode = types.ModeAppend
	}
	log := m.logger.With(zap.String("run_id", result.RunID))

	// =========================================================================
	// STEP 1: CHECK SELECTION
	// =========================================================================

	sources := selectedPaths(req.SourcePaths)
	switch {
	case strings.TrimSpace(req.TargetPath) == "":
		return m.finish(result, StatusNoSelection, "No target file selected."), nil
	case len(sources) == 0:
		return m.finish(result, StatusNoSelection, "No files selected."), nil
	}

	log.Info("Merging files",
		zap.String("target", req.TargetPath),
		zap.Strings("sources", sources),
		zap.String("mode", string(result.Mode)),
		zap.Stringer("date_range", req.DateRange))

	// =========================================================================
	// STEP 2: READ TARGET
	// =========================================================================

	target, err := m.reader.ReadFile(req.TargetPath)
	if err != nil {
		log.Error("Failed to read target", zap.Error(err))
		return nil, fmt.Errorf("failed to read target: %w", err)
	}
	result.Files = append(result.Files, fileInfo(target))
	if target.FellBack {
		log.Warn("Target is not valid UTF-8, decoded with fallback",
			zap.String("encoding", target.Encoding))
	}

	// =========================================================================
	// STEP 3: CLASSIFY TARGET MONTHS
	// =========================================================================

	months := m.classifier.Classify(target.Lines, req.DateRange)
	result.Months = months.Months()
	if len(result.Months) == 0 {
		result.Notes = append(result.Notes, "No months found in the target file.")
	}
	log.Debug("Classified target months",
		zap.Strings("months", result.Months),
		zap.Int("malformed", months.Malformed))

	// =========================================================================
	// STEP 4: READ SOURCES
	// =========================================================================

	targetAbs := absPath(req.TargetPath)
	contents, err := m.readAll(sources)
	if err != nil {
		log.Error("Failed to read source", zap.Error(err))
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	for i, res := range contents {
		if absPath(sources[i]) == targetAbs {
			result.Notes = append(result.Notes,
				fmt.Sprintf("The target file %s is also selected as a source.", sources[i]))
		}
		result.Files = append(result.Files, fileInfo(res))
	}

	// =========================================================================
	// STEP 5: CONCATENATE
	// =========================================================================

	switch result.Mode {
	case types.ModeJoin:
		texts := make([]string, len(contents))
		for i, c := range contents {
			texts[i] = c.Text()
		}
		result.Document = NewTextDocument(JoinText(target.Text(), texts...))
	default:
		lists := make([][]types.Line, len(contents))
		for i, c := range contents {
			lists[i] = c.Lines
		}
		result.Document = NewLineDocument(AppendLines(target.Lines, lists...))
	}

	// =========================================================================
	// STEP 6: DETECT DUPLICATES
	// =========================================================================

	if result.Mode == types.ModeAppend {
		result.Duplicates = m.detector.Find(result.Document.Lines())
		if len(result.Duplicates) > 0 {
			log.Warn("Duplicate records found",
				zap.Int("groups", len(result.Duplicates)),
				zap.Int("surplus_lines", duplicates.Count(result.Duplicates)))
			result.Notes = append(result.Notes,
				fmt.Sprintf("%d duplicate group(s) found.", len(result.Duplicates)))
		}
	}

	// =========================================================================
	// STEP 7: CONFIRM AND WRITE
	// =========================================================================

	if req.Confirm != nil && !req.Confirm(result) {
		log.Info("Merge cancelled before writing")
		return m.finish(result, StatusCancelled, "Merge cancelled; the target file was not changed."), nil
	}

	if req.DryRun {
		return m.finish(result, StatusDryRun,
			fmt.Sprintf("Dry run: %d file(s) would be merged into %s.", len(sources), req.TargetPath)), nil
	}

	data := result.Document.Bytes()
	if err := m.replace(req.TargetPath, data); err != nil {
		log.Error("Failed to write target", zap.Error(err))
		return nil, fmt.Errorf("failed to write merged content: %w", err)
	}
	result.LinesWritten = result.Document.LineCount()
	result.BytesWritten = len(data)

	log.Info("Merge complete",
		zap.Int("lines", result.LinesWritten),
		zap.Int("bytes", result.BytesWritten))

	return m.finish(result, StatusMerged,
		fmt.Sprintf("The files were successfully merged into %s.", req.TargetPath)), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readAll decodes paths one after another in the given order. It stops at
// the first failure and returns no partial result.
func (m *Merger) readAll(paths []string) ([]*decoder.Result, error) {
	out := make([]*decoder.Result, 0, len(paths))
	for _, p := range paths {
		res, err := m.reader.ReadFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (m *Merger) finish(r *Result, status Status, msg string) *Result {
	r.Status = status
	r.Message = msg
	r.Elapsed = time.Since(r.StartTime)
	return r
}

// selectedPaths drops blank entries from the caller's selection.
func selectedPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func fileInfo(r *decoder.Result) FileInfo {
	return FileInfo{Path: r.Path, Encoding: r.Encoding, FellBack: r.FellBack, Lines: len(r.Lines)}
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
