package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/txtmerge/internal/merger"
)

// duplicatesCmd reports duplicate records across files without writing.
var duplicatesCmd = &cobra.Command{
	Use:   "duplicates FILE...",
	Short: "Report duplicate records across files",
	Long: `Report "15" records that are identical except for their last
comma-separated field. The files are considered in the order given, as if
appended; line numbers refer to that combined sequence. Nothing is written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		m, err := merger.New(appConfig, logger)
		if err != nil {
			return err
		}
		groups, err := m.FindDuplicates(args)
		if err != nil {
			return err
		}

		if len(groups) == 0 {
			fmt.Fprintln(out, "No duplicate records found.")
			return nil
		}
		printDuplicates(out, groups)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)
}
