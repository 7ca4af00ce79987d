package cmd

import (
	"github.com/spf13/cobra"

	"github.com/swmm-toolbox/internal/formatter"
	"github.com/swmm-toolbox/internal/service"
	"github.com/swmm-toolbox/pkg/compression"
	apperrors "github.com/swmm-toolbox/pkg/errors"
)

// outputFlags are shared by every command that prints a table.
type outputFlags struct {
	tablefmt string
	header   string
	output   string
	compress string
	upload   string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.tablefmt, "tablefmt", "", "Table format: csv, csv_nos, simple or json (default from config, csv_nos)")
	cmd.Flags().StringVar(&o.header, "header", "", `Comma separated header to print instead of the default, or "none"`)
	cmd.Flags().StringVarP(&o.output, "output", "o", "-", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&o.compress, "compress", "", "Compress output: none, gzip or zstd (default from config)")
	cmd.Flags().StringVar(&o.upload, "upload", "", "Also upload the output to this storage key")
}

// options merges the flags over the configured defaults.
func (o *outputFlags) options(cmd *cobra.Command) (service.OutputOptions, error) {
	opts := svc.DefaultOutputOptions()
	if cmd.Flags().Changed("tablefmt") {
		opts.Format = o.tablefmt
	}
	opts.Header = o.header
	opts.Path = o.output
	opts.UploadKey = o.upload

	if cmd.Flags().Changed("compress") {
		ct, err := compression.ParseType(o.compress)
		if err != nil {
			return opts, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid --compress", err)
		}
		opts.Compress = ct
	}
	return opts, nil
}

// emit renders t according to the flags.
func (o *outputFlags) emit(cmd *cobra.Command, t *formatter.Table) error {
	opts, err := o.options(cmd)
	if err != nil {
		return err
	}
	return svc.Emit(cmd.Context(), cmd.OutOrStdout(), t, opts)
}
