package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/swmm-toolbox/pkg/errors"
	"github.com/swmm-toolbox/pkg/model"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// pointBatchSize bounds the rows per INSERT statement.
const pointBatchSize = 500

func dbError(msg string, err error) error {
	return apperrors.Wrap(apperrors.CodeDatabaseError, msg, err)
}

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// CreateRun inserts a new run.
func (r *GormRunRepository) CreateRun(ctx context.Context, run *model.ExtractRun) error {
	rec, err := NewExtractRunRecord(run)
	if err != nil {
		return dbError("failed to encode labels", err)
	}

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return dbError("failed to create run", err)
	}

	run.ID = rec.ID
	run.CreateTime = rec.CreateTime
	return nil
}

// GetRun retrieves a run by its run ID.
func (r *GormRunRepository) GetRun(ctx context.Context, runID string) (*model.ExtractRun, error) {
	var rec ExtractRunRecord

	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dbError(fmt.Sprintf("run %s", runID), ErrRunNotFound)
		}
		return nil, dbError("failed to get run", err)
	}

	return rec.ToModel(), nil
}

// ListRuns returns the most recent runs, newest first.
func (r *GormRunRepository) ListRuns(ctx context.Context, limit int) ([]*model.ExtractRun, error) {
	var recs []ExtractRunRecord

	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, dbError("failed to list runs", err)
	}

	runs := make([]*model.ExtractRun, len(recs))
	for i := range recs {
		runs[i] = recs[i].ToModel()
	}
	return runs, nil
}

// UpdateRunStatus updates the status of a run.
func (r *GormRunRepository) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, info string) error {
	updates := map[string]interface{}{
		"status":      status,
		"status_info": info,
	}
	if status.IsTerminal() {
		updates["end_time"] = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&ExtractRunRecord{}).
		Where("run_id = ?", runID).
		Updates(updates)

	if result.Error != nil {
		return dbError("failed to update run status", result.Error)
	}
	if result.RowsAffected == 0 {
		return dbError(fmt.Sprintf("run %s", runID), ErrRunNotFound)
	}

	return nil
}

// GormSeriesRepository implements SeriesRepository using GORM.
type GormSeriesRepository struct {
	db *gorm.DB
}

// NewGormSeriesRepository creates a new GormSeriesRepository.
func NewGormSeriesRepository(db *gorm.DB) *GormSeriesRepository {
	return &GormSeriesRepository{db: db}
}

// SavePoints stores points in a single transaction.
func (r *GormSeriesRepository) SavePoints(ctx context.Context, points []model.SeriesPoint) error {
	if len(points) == 0 {
		return nil
	}

	recs := make([]SeriesPointRecord, len(points))
	for i, p := range points {
		recs[i] = SeriesPointRecord{
			RunID:      p.RunID,
			ColumnName: p.Column,
			Period:     p.Period,
			PointTime:  p.Time,
			Value:      p.Value,
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(recs, pointBatchSize).Error
	})
	if err != nil {
		return dbError("failed to save points", err)
	}
	return nil
}

// GetPoints returns one column of a run ordered by period.
func (r *GormSeriesRepository) GetPoints(ctx context.Context, runID, column string) ([]model.SeriesPoint, error) {
	var recs []SeriesPointRecord

	err := r.db.WithContext(ctx).
		Where("run_id = ? AND column_name = ?", runID, column).
		Order("period ASC").
		Find(&recs).Error
	if err != nil {
		return nil, dbError("failed to query points", err)
	}

	points := make([]model.SeriesPoint, len(recs))
	for i := range recs {
		points[i] = recs[i].ToModel()
	}
	return points, nil
}

// ListColumns returns the distinct column names stored for a run.
func (r *GormSeriesRepository) ListColumns(ctx context.Context, runID string) ([]string, error) {
	var cols []string

	err := r.db.WithContext(ctx).
		Model(&SeriesPointRecord{}).
		Where("run_id = ?", runID).
		Distinct().
		Order("column_name").
		Pluck("column_name", &cols).Error
	if err != nil {
		return nil, dbError("failed to list columns", err)
	}
	return cols, nil
}

// DeletePoints removes every point of a run.
func (r *GormSeriesRepository) DeletePoints(ctx context.Context, runID string) error {
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Delete(&SeriesPointRecord{}).Error
	if err != nil {
		return dbError("failed to delete points", err)
	}
	return nil
}
