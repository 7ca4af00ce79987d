package extract

import (
	"context"
	"time"

	"github.com/swmm-toolbox/internal/parser/swmm"
	apperrors "github.com/swmm-toolbox/pkg/errors"
	"github.com/swmm-toolbox/pkg/model"
	"github.com/swmm-toolbox/pkg/parallel"
	"github.com/swmm-toolbox/pkg/utils"
)

// Extractor assembles time series from a Source.
type Extractor struct {
	src     Source
	logger  utils.Logger
	workers int
}

// NewExtractor creates an extractor. A nil logger discards output.
func NewExtractor(src Source, logger utils.Logger) *Extractor {
	return &Extractor{src: src, logger: utils.OrNull(logger), workers: 1}
}

// WithWorkers reads up to n columns concurrently. The source must allow
// concurrent GetResult calls when n is greater than 1.
func (e *Extractor) WithWorkers(n int) *Extractor {
	if n < 1 {
		n = 1
	}
	e.workers = n
	return e
}

// Extract resolves labels and reads every period of every resolved series.
// The frame index holds the date stamp of each period block.
func (e *Extractor) Extract(ctx context.Context, labels ...string) (*model.Frame, error) {
	if len(labels) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "at least one label is required")
	}
	series, err := Resolve(e.src, labels...)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("resolved %d labels to %d series", len(labels), len(series))
	return e.ExtractSeries(ctx, series)
}

// ExtractSeries reads every period of the given series. With one worker,
// periods form the outer loop so each period block is visited once;
// otherwise each column is read by its own task.
func (e *Extractor) ExtractSeries(ctx context.Context, series []Series) (*model.Frame, error) {
	var (
		cols  []column
		err   error
		start = time.Now()
	)
	if e.workers > 1 && len(series) > 1 {
		cfg := parallel.DefaultPoolConfig().WithWorkers(e.workers)
		cols, err = parallel.Map(ctx, series, cfg, e.readColumn)
	} else {
		cols, err = e.readByPeriod(ctx, series)
	}
	if err != nil {
		return nil, err
	}
	e.logger.Debug("read %d series with %d workers in %v", len(series), e.workers, time.Since(start))

	var index []time.Time
	if len(cols) > 0 {
		index = cols[0].index
	}
	frame := model.NewFrame(index)
	for i, s := range series {
		if err := frame.AddColumn(s.ColumnName(), cols[i].values); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

type column struct {
	index  []time.Time
	values []float32
}

func (e *Extractor) readByPeriod(ctx context.Context, series []Series) ([]column, error) {
	periods := e.src.Periods()
	index := make([]time.Time, periods)
	cols := make([]column, len(series))
	for i := range cols {
		cols[i] = column{index: index, values: make([]float32, periods)}
	}

	for p := 0; p < periods; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, s := range series {
			r, err := e.src.GetResult(s.Category, s.Name, s.VarIndex, p)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				index[p] = r.Time()
			}
			cols[i].values[p] = r.Value
		}
	}
	return cols, nil
}

func (e *Extractor) readColumn(ctx context.Context, s Series) (column, error) {
	periods := e.src.Periods()
	c := column{index: make([]time.Time, periods), values: make([]float32, periods)}
	for p := 0; p < periods; p++ {
		if err := ctx.Err(); err != nil {
			return column{}, err
		}
		r, err := e.src.GetResult(s.Category, s.Name, s.VarIndex, p)
		if err != nil {
			return column{}, err
		}
		c.index[p] = r.Time()
		c.values[p] = r.Value
	}
	return c, nil
}

// Values returns the raw values of a label that selects exactly one series.
func (e *Extractor) Values(ctx context.Context, label string) ([]float32, error) {
	series, err := Resolve(e.src, label)
	if err != nil {
		return nil, err
	}
	if len(series) != 1 {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput,
			"label %q selects %d series, want exactly one", label, len(series))
	}
	frame, err := e.ExtractSeries(ctx, series)
	if err != nil {
		return nil, err
	}
	return frame.Columns[0].Values, nil
}

// Dates returns the date stamp of every period, read from the period blocks.
func (e *Extractor) Dates(ctx context.Context) ([]time.Time, error) {
	out := make([]time.Time, e.src.Periods())
	for p := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stamp, err := e.src.PeriodStamp(p)
		if err != nil {
			return nil, err
		}
		out[p] = swmm.FromSpreadsheet(stamp)
	}
	return out, nil
}
