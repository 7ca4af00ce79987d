// Package repository persists exported series and the runs that produced them.
package repository

import (
	"context"

	"github.com/swmm-toolbox/pkg/model"
)

// RunRepository defines the interface for export run bookkeeping.
type RunRepository interface {
	// CreateRun inserts a new run. The run's ID is filled in on success.
	CreateRun(ctx context.Context, run *model.ExtractRun) error

	// GetRun retrieves a run by its run ID.
	GetRun(ctx context.Context, runID string) (*model.ExtractRun, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*model.ExtractRun, error)

	// UpdateRunStatus updates the status of a run. Terminal states also stamp the end time.
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, info string) error
}

// SeriesRepository defines the interface for exported series values.
type SeriesRepository interface {
	// SavePoints stores points in batches.
	SavePoints(ctx context.Context, points []model.SeriesPoint) error

	// GetPoints returns one column of a run ordered by period.
	GetPoints(ctx context.Context, runID, column string) ([]model.SeriesPoint, error)

	// ListColumns returns the distinct column names stored for a run.
	ListColumns(ctx context.Context, runID string) ([]string, error)

	// DeletePoints removes every point of a run.
	DeletePoints(ctx context.Context, runID string) error
}
