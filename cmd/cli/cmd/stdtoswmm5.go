package cmd

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/swmm-toolbox/internal/convert"
	apperrors "github.com/swmm-toolbox/pkg/errors"
)

var (
	stdStartDate string
	stdEndDate   string
	stdInputTS   string
	stdOutput    string
)

// stdtoswmm5Cmd represents the stdtoswmm5 command
var stdtoswmm5Cmd = &cobra.Command{
	Use:   "stdtoswmm5",
	Short: "Convert a CSV time series to SWMM 5 time series text",
	Long: `Read a CSV whose first column is a date and whose other columns are
values, and write it as a SWMM 5 time series:

  ;Datetime, col1, col2
  01/31/2023 00:05:00 1.5 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts convert.Options
		var err error
		if stdStartDate != "" {
			if opts.Start, err = convert.ParseTime(stdStartDate); err != nil {
				return err
			}
		}
		if stdEndDate != "" {
			if opts.End, err = convert.ParseTime(stdEndDate); err != nil {
				return err
			}
		}

		var in io.Reader = cmd.InOrStdin()
		if stdInputTS != "-" {
			f, err := os.Open(stdInputTS)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeIO, "failed to open "+stdInputTS, err)
			}
			defer f.Close()
			in = bufio.NewReader(f)
		}

		if stdOutput == "-" {
			return convert.StdToSWMM5(in, cmd.OutOrStdout(), opts)
		}
		out, err := os.Create(stdOutput)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to create "+stdOutput, err)
		}
		if err := convert.StdToSWMM5(in, out, opts); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to write "+stdOutput, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stdtoswmm5Cmd)

	stdtoswmm5Cmd.Flags().StringVar(&stdStartDate, "start-date", "", "Drop rows before this date")
	stdtoswmm5Cmd.Flags().StringVar(&stdEndDate, "end-date", "", "Drop rows after this date")
	stdtoswmm5Cmd.Flags().StringVarP(&stdInputTS, "input-ts", "i", "-", `Input CSV file, "-" for stdin`)
	stdtoswmm5Cmd.Flags().StringVarP(&stdOutput, "output", "o", "-", "Write to this file instead of stdout")
}
