package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/txtmerge/internal/merger"
	"github.com/ginjaninja78/txtmerge/internal/validation"
)

var (
	monthsFrom string
	monthsTo   string
)

// monthsCmd lists the months present in a file without merging anything.
var monthsCmd = &cobra.Command{
	Use:   "months FILE",
	Short: "List the months present in a file",
	Long: `List the calendar months (MM-YYYY) of the "15" records in FILE, oldest
first. With --from and --to only records inside the inclusive range count.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		rng, problems := validation.ParseDateRange(monthsFrom, monthsTo)
		if validation.HasErrors(problems) {
			return fmt.Errorf("invalid arguments:\n%s", validation.FormatErrors(problems))
		}

		m, err := merger.New(appConfig, logger)
		if err != nil {
			return err
		}
		months, err := m.ScanMonths(args[0], rng)
		if err != nil {
			return err
		}

		if len(months) == 0 {
			fmt.Fprintln(out, "No months found in the file.")
			return nil
		}
		printMonths(out, fmt.Sprintf("Months in %s", args[0]), months, rng)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monthsCmd)

	monthsCmd.Flags().StringVar(&monthsFrom, "from", "", "Start of the date range (YYYY-MM-DD)")
	monthsCmd.Flags().StringVar(&monthsTo, "to", "", "End of the date range (YYYY-MM-DD)")
}
