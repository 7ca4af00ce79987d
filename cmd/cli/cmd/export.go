package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/swmm-toolbox/internal/formatter"
	"github.com/swmm-toolbox/pkg/model"
)

var exportOut outputFlags

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export FILE LABEL...",
	Short: "Extract series and store them in the configured database",
	Long: `Extract series like the extract command and store every value in the
database configured under "database" (sqlite by default). A run record with a
generated UUID ties the stored points to the input file and labels.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := svc.Export(cmd.Context(), args[0], args[1:]...)
		if err != nil {
			return err
		}
		return exportOut.emit(cmd, runsTable([]*model.ExtractRun{res.Run}))
	},
}

var (
	runsOut   outputFlags
	runsLimit int
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent export runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := svc.Repositories(cmd.Context())
		if err != nil {
			return err
		}
		runs, err := repos.Run.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		return runsOut.emit(cmd, runsTable(runs))
	},
}

func runsTable(runs []*model.ExtractRun) *formatter.Table {
	t := &formatter.Table{Header: []string{"RUN_ID", "STATUS", "SOURCE", "PERIODS", "CREATED", "INFO"}}
	for _, r := range runs {
		t.Rows = append(t.Rows, []string{
			r.RunID,
			r.Status.String(),
			r.Source,
			strconv.Itoa(r.Periods),
			r.CreateTime.UTC().Format(formatter.TimeLayout),
			r.StatusInfo,
		})
	}
	return t
}

func init() {
	rootCmd.AddCommand(exportCmd, runsCmd)
	exportOut.register(exportCmd)

	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Number of runs to list")
	runsOut.register(runsCmd)
}
