package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/swmm-toolbox/internal/extract"
	"github.com/swmm-toolbox/internal/formatter"
	"github.com/swmm-toolbox/internal/parser/swmm"
	"github.com/swmm-toolbox/pkg/model"
	"github.com/swmm-toolbox/pkg/telemetry"
)

// Catalog lists every (type, name, variable) triple. An empty itemType
// lists all categories; otherwise it names one category.
func (s *Service) Catalog(ctx context.Context, input, itemType string) (t *formatter.Table, err error) {
	ctx, span := telemetry.StartSpan(ctx, "swmm.catalog", attribute.String("swmm.itemtype", itemType))
	defer func() { telemetry.EndSpan(span, err) }()

	var categories []swmm.Category
	if itemType != "" {
		c, err := swmm.ResolveCategory(itemType)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	in, err := s.Open(ctx, input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	entries := in.Catalog(categories...)
	span.SetAttributes(attribute.Int("swmm.entries", len(entries)))
	return formatter.CatalogTable(entries), nil
}

// ListVariables lists the variables recorded for each category.
func (s *Service) ListVariables(ctx context.Context, input string) (t *formatter.Table, err error) {
	ctx, span := telemetry.StartSpan(ctx, "swmm.listvariables")
	defer func() { telemetry.EndSpan(span, err) }()

	in, err := s.Open(ctx, input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	return formatter.VariablesTable(in.ListVariables()), nil
}

// ListDetail lists the static properties of objects of one category,
// optionally restricted to names.
func (s *Service) ListDetail(ctx context.Context, input, itemType string, names ...string) (t *formatter.Table, err error) {
	ctx, span := telemetry.StartSpan(ctx, "swmm.listdetail", attribute.String("swmm.itemtype", itemType))
	defer func() { telemetry.EndSpan(span, err) }()

	c, err := swmm.ResolveCategory(itemType)
	if err != nil {
		return nil, err
	}

	in, err := s.Open(ctx, input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	detail, err := in.ListDetail(c, names...)
	if err != nil {
		return nil, err
	}
	return formatter.DetailTable(detail), nil
}

// Extract reads the series named by labels into a frame.
func (s *Service) Extract(ctx context.Context, input string, labels ...string) (f *model.Frame, err error) {
	ctx, span := telemetry.StartSpan(ctx, "swmm.extract", attribute.StringSlice("swmm.labels", labels))
	defer func() { telemetry.EndSpan(span, err) }()

	in, err := s.Open(ctx, input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	return s.extractFrom(ctx, in, labels)
}

func (s *Service) extractFrom(ctx context.Context, in *Input, labels []string) (*model.Frame, error) {
	start := time.Now()
	f, err := extract.NewExtractor(in.Store, s.logger).
		WithWorkers(s.config.Extract.Workers).
		Extract(ctx, labels...)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("extracted %d columns x %d periods in %v", len(f.Columns), f.Len(), time.Since(start))
	return f, nil
}

// ExportResult describes a persisted export.
type ExportResult struct {
	Run   *model.ExtractRun
	Frame *model.Frame
}

// Export extracts labels and stores the run and its points in the database.
// A run row is written before extraction starts and is marked failed if
// extraction or persistence fails.
func (s *Service) Export(ctx context.Context, input string, labels ...string) (res *ExportResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "swmm.export", attribute.StringSlice("swmm.labels", labels))
	defer func() { telemetry.EndSpan(span, err) }()

	repos, err := s.Repositories(ctx)
	if err != nil {
		return nil, err
	}

	in, err := s.Open(ctx, input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	run := &model.ExtractRun{
		RunID:     uuid.NewString(),
		Source:    input,
		Labels:    labels,
		FlowUnits: in.FlowUnits().String(),
		Version:   in.Version(),
		Periods:   in.Periods(),
		Status:    model.RunStatusRunning,
	}
	if err := repos.Run.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("swmm.run_id", run.RunID))
	log := s.logger.WithField("run_id", run.RunID)
	log.Info("export started for %s", input)

	fail := func(cause error) error {
		if uerr := repos.Run.UpdateRunStatus(ctx, run.RunID, model.RunStatusFailed, cause.Error()); uerr != nil {
			log.Error("failed to mark run failed: %v", uerr)
		}
		run.Status = model.RunStatusFailed
		run.StatusInfo = cause.Error()
		return cause
	}

	f, err := s.extractFrom(ctx, in, labels)
	if err != nil {
		return nil, fail(err)
	}

	points := model.PointsFromFrame(run.RunID, f)
	if err := repos.Series.SavePoints(ctx, points); err != nil {
		return nil, fail(err)
	}

	info := "columns: " + strings.Join(f.ColumnNames(), ",")
	if err := repos.Run.UpdateRunStatus(ctx, run.RunID, model.RunStatusCompleted, info); err != nil {
		return nil, err
	}
	run.Status = model.RunStatusCompleted
	run.StatusInfo = info

	log.Info("export completed: %d points", len(points))
	return &ExportResult{Run: run, Frame: f}, nil
}
