package cmd

import (
	"github.com/spf13/cobra"
)

var extractOut outputFlags

func runExtract(cmd *cobra.Command, args []string) error {
	f, err := svc.Extract(cmd.Context(), args[0], args[1:]...)
	if err != nil {
		return err
	}
	return extractOut.emit(cmd, svc.FrameTable(f))
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract FILE LABEL...",
	Short: "Extract time series for one or more labels",
	Long: `Extract time series from an output file.

Each LABEL is TYPE,NAME,VARIABLE. Empty parts match everything, so
"node,,Depth_above_invert" extracts the depth at every node and "link,C2,"
every variable of link C2. VARIABLE may be a name or an index. Columns are
named TYPE_NAME_VARIABLE and indexed by the date of each reporting period.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runExtract,
}

// getdataCmd is the old name of extract.
var getdataCmd = &cobra.Command{
	Use:        "getdata FILE LABEL...",
	Short:      "Alias of extract",
	Deprecated: "use extract instead",
	Args:       cobra.MinimumNArgs(2),
	RunE:       runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd, getdataCmd)
	extractOut.register(extractCmd)
	extractOut.register(getdataCmd)
}
