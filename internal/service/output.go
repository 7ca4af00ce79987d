package service

import (
	"bytes"
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"

	"github.com/swmm-toolbox/internal/formatter"
	"github.com/swmm-toolbox/pkg/compression"
	apperrors "github.com/swmm-toolbox/pkg/errors"
	"github.com/swmm-toolbox/pkg/model"
	"github.com/swmm-toolbox/pkg/telemetry"
)

// OutputOptions control where and how a rendered table goes.
type OutputOptions struct {
	formatter.Options

	// Path writes to a file instead of the caller's writer. "-" means the writer.
	Path string
	// Compress wraps the rendered bytes.
	Compress compression.Type
	// UploadKey also stores the rendered bytes under this storage key.
	UploadKey string
}

// DefaultOutputOptions returns output options from the config's output section.
func (s *Service) DefaultOutputOptions() OutputOptions {
	ct, _ := compression.ParseType(s.config.Output.Compress)
	return OutputOptions{
		Options:  formatter.Options{Format: s.config.Output.TableFormat},
		Compress: ct,
	}
}

// FloatFormatter returns the value formatter configured by output.float_format.
func (s *Service) FloatFormatter() formatter.FloatFormatter {
	if s.config.Output.FloatFormat == "" {
		return formatter.ShortestFloat
	}
	return formatter.PrintfFloat(s.config.Output.FloatFormat)
}

// FrameTable renders a frame with the configured float format.
func (s *Service) FrameTable(f *model.Frame) *formatter.Table {
	return formatter.FrameTable(f, s.FloatFormatter())
}

// Emit renders t and delivers it to w or opts.Path, then uploads it when
// opts.UploadKey is set.
func (s *Service) Emit(ctx context.Context, w io.Writer, t *formatter.Table, opts OutputOptions) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "swmm.emit",
		attribute.String("output.format", opts.Format),
		attribute.String("output.compress", opts.Compress.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	var buf bytes.Buffer
	if err := formatter.Render(&buf, t, opts.Options); err != nil {
		return err
	}

	data := buf.Bytes()
	if opts.Compress != compression.TypeNone {
		if data, err = compression.Compress(data, opts.Compress, compression.LevelDefault); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to compress output", err)
		}
	}
	span.SetAttributes(attribute.Int("output.bytes", len(data)))

	if opts.Path != "" && opts.Path != "-" {
		if err := os.WriteFile(opts.Path, data, 0644); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to write "+opts.Path, err)
		}
		s.logger.Debug("wrote %d bytes to %s", len(data), opts.Path)
	} else if _, err := w.Write(data); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to write output", err)
	}

	if opts.UploadKey == "" {
		return nil
	}
	st, err := s.Storage()
	if err != nil {
		return err
	}
	if err := st.Upload(ctx, opts.UploadKey, bytes.NewReader(data)); err != nil {
		return err
	}
	s.logger.Info("uploaded output to %s", st.GetURL(opts.UploadKey))
	return nil
}
