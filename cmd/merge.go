// =============================================================================
// txtmerge - Merge Command
// =============================================================================
//
// This file defines the 'merge' command, which appends source files onto a
// target file and rewrites the target in place.
//
// COMMAND USAGE:
//   txtmerge merge --target FILE [flags] SOURCE...
//
// FLAGS:
//   --target             : The file to merge into (read first, then replaced)
//   --mode               : append (default) or join
//   --from, --to         : Inclusive date range for the month report
//   --dry-run            : Run every step except the write
//   --confirm            : Ask before writing when duplicates are found
//   --fail-on-duplicates : Do not write when duplicates are found
//   --report             : Write the XLSX and text reports
//
// WARNING:
//   The target is overwritten without a backup.
//
// =============================================================================

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/txtmerge/internal/merger"
	"github.com/ginjaninja78/txtmerge/internal/report"
	"github.com/ginjaninja78/txtmerge/internal/types"
	"github.com/ginjaninja78/txtmerge/internal/validation"
	"github.com/ginjaninja78/txtmerge/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	targetPath       string
	mergeMode        string
	fromDate         string
	toDate           string
	dryRun           bool
	confirmWrite     bool
	failOnDuplicates bool
	writeReport      bool
)

// =============================================================================
// MERGE COMMAND DEFINITION
// =============================================================================

var mergeCmd = &cobra.Command{
	Use:   "merge --target FILE SOURCE...",
	Short: "Merge source files into the target file",
	Long: `The merge command reads the target file, reports the months it contains,
reads every source file in the order given and writes the concatenation back
to the target.

Modes:
  append  Every source line is appended verbatim. Duplicate records (same
          content except for the last comma-separated field) are reported.
  join    Each file is trimmed and files are joined with a single newline.
          No duplicate check is done.

Duplicates are reported but do not stop the merge unless --confirm or
--fail-on-duplicates is given.

The target file is overwritten and no backup is kept. If any file cannot be
read the target is left unchanged.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runMerge(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVarP(&targetPath, "target", "t", "", "File to merge into (overwritten)")
	mergeCmd.Flags().StringVarP(&mergeMode, "mode", "m", "", "Concatenation mode: append or join (default from config)")
	mergeCmd.Flags().StringVar(&fromDate, "from", "", "Start of the month report date range (YYYY-MM-DD)")
	mergeCmd.Flags().StringVar(&toDate, "to", "", "End of the month report date range (YYYY-MM-DD)")
	mergeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run every step except writing the target")
	mergeCmd.Flags().BoolVar(&confirmWrite, "confirm", false, "Ask before writing when duplicates are found")
	mergeCmd.Flags().BoolVar(&failOnDuplicates, "fail-on-duplicates", false, "Do not write when duplicates are found")
	mergeCmd.Flags().BoolVar(&writeReport, "report", false, "Write XLSX and text reports to the report directory")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runMerge(cmd *cobra.Command, sources []string) error {
	out := cmd.OutOrStdout()

	mode := mergeMode
	if mode == "" {
		mode = appConfig.DefaultMode
	}

	// =========================================================================
	// STEP 1: VALIDATE THE SELECTION
	// =========================================================================

	input, problems := validation.Validate(validation.MergeInput{
		Target:  targetPath,
		Sources: sources,
		From:    fromDate,
		To:      toDate,
		Mode:    mode,
	})
	for _, w := range validation.Filter(problems, validation.SeverityWarning) {
		fmt.Fprintf(out, "Warning: %s %s\n", w.Value, w.Message)
	}
	if validation.HasErrors(problems) {
		return fmt.Errorf("invalid arguments:\n%s", validation.FormatErrors(validation.Filter(problems, validation.SeverityError)))
	}

	// =========================================================================
	// STEP 2: MERGE
	// =========================================================================

	m, err := merger.New(appConfig, logger)
	if err != nil {
		return err
	}

	req := merger.Request{
		TargetPath:  targetPath,
		SourcePaths: sources,
		DateRange:   input.DateRange,
		Mode:        input.Mode,
		DryRun:      dryRun,
	}
	switch {
	case failOnDuplicates:
		req.Confirm = func(r *merger.Result) bool { return len(r.Duplicates) == 0 }
	case confirmWrite:
		req.Confirm = func(r *merger.Result) bool {
			if len(r.Duplicates) == 0 {
				return true
			}
			printDuplicates(out, r.Duplicates)
			return askYesNo(cmd.InOrStdin(), out, "Duplicates found. Write the merged file anyway? [y/N] ")
		}
	}

	res, err := m.Merge(req)
	if err != nil {
		return fmt.Errorf("merge failed, target not modified: %w", err)
	}

	// =========================================================================
	// STEP 3: PRINT RESULTS
	// =========================================================================

	if res.Status != merger.StatusNoSelection {
		printMonths(out, "Months in the target file", res.Months, res.DateRange)
		if !confirmWrite || len(res.Duplicates) == 0 {
			printDuplicates(out, res.Duplicates)
		}
	}
	for _, n := range res.Notes {
		fmt.Fprintln(out, n)
	}
	fmt.Fprintln(out, res.Message)

	// =========================================================================
	// STEP 4: REPORTS
	// =========================================================================

	if res.Status == merger.StatusNoSelection {
		return nil
	}
	reportCfg := appConfig.Report
	if writeReport {
		reportCfg.XLSX, reportCfg.Text = true, true
	}
	paths, err := report.NewWriter(reportCfg).Write(res)
	if err != nil {
		logger.Warn("Failed to write report", zap.Error(err))
		fmt.Fprintf(out, "Warning: report not written: %v\n", err)
	}
	for _, p := range paths {
		fmt.Fprintf(out, "Report written to %s\n", p)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// printMonths lists months under heading, naming the date range when set.
func printMonths(out io.Writer, heading string, months []string, rng *types.DateRange) {
	if len(months) == 0 {
		return
	}
	if rng != nil {
		fmt.Fprintf(out, "%s (%s):\n", heading, rng)
	} else {
		fmt.Fprintf(out, "%s:\n", heading)
	}
	for _, m := range months {
		fmt.Fprintf(out, "  %s\n", m)
	}
}

func printDuplicates(out io.Writer, groups []types.DuplicateGroup) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintln(out, "Possible duplicate records:")
	for _, g := range groups {
		fmt.Fprintf(out, "  lines %s: %s\n", utils.JoinInts(g.Positions, ", "), g.Content)
	}
}

func askYesNo(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "j", "ja":
		return true
	default:
		return false
	}
}
