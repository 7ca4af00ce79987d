package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/swmm-toolbox/pkg/model"
)

// ExtractRunRecord represents the extract_run table.
type ExtractRunRecord struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	RunID      string          `gorm:"column:run_id;type:varchar(64);uniqueIndex"`
	Source     string          `gorm:"column:source;type:varchar(1024)"`
	Labels     JSONField       `gorm:"column:labels;type:json"`
	FlowUnits  string          `gorm:"column:flow_units;type:varchar(8)"`
	Version    int32           `gorm:"column:version"`
	Periods    int             `gorm:"column:periods"`
	Status     model.RunStatus `gorm:"column:status"`
	StatusInfo string          `gorm:"column:status_info;type:text"`
	CreateTime time.Time       `gorm:"column:create_time;autoCreateTime"`
	EndTime    *time.Time      `gorm:"column:end_time"`
}

// TableName returns the table name for ExtractRunRecord.
func (ExtractRunRecord) TableName() string {
	return "extract_run"
}

// ToModel converts ExtractRunRecord to model.ExtractRun.
func (r *ExtractRunRecord) ToModel() *model.ExtractRun {
	run := &model.ExtractRun{
		ID:         r.ID,
		RunID:      r.RunID,
		Source:     r.Source,
		FlowUnits:  r.FlowUnits,
		Version:    r.Version,
		Periods:    r.Periods,
		Status:     r.Status,
		StatusInfo: r.StatusInfo,
		CreateTime: r.CreateTime,
		EndTime:    r.EndTime,
	}

	if r.Labels != nil {
		_ = json.Unmarshal(r.Labels, &run.Labels)
	}

	return run
}

// NewExtractRunRecord converts a model.ExtractRun for insertion.
func NewExtractRunRecord(run *model.ExtractRun) (*ExtractRunRecord, error) {
	labels, err := json.Marshal(run.Labels)
	if err != nil {
		return nil, err
	}
	return &ExtractRunRecord{
		RunID:      run.RunID,
		Source:     run.Source,
		Labels:     labels,
		FlowUnits:  run.FlowUnits,
		Version:    run.Version,
		Periods:    run.Periods,
		Status:     run.Status,
		StatusInfo: run.StatusInfo,
		EndTime:    run.EndTime,
	}, nil
}

// SeriesPointRecord represents the series_point table.
type SeriesPointRecord struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID      string    `gorm:"column:run_id;type:varchar(64);index:idx_run_column"`
	ColumnName string    `gorm:"column:column_name;type:varchar(255);index:idx_run_column"`
	Period     int       `gorm:"column:period"`
	PointTime  time.Time `gorm:"column:point_time"`
	Value      float64   `gorm:"column:value"`
}

// TableName returns the table name for SeriesPointRecord.
func (SeriesPointRecord) TableName() string {
	return "series_point"
}

// ToModel converts SeriesPointRecord to model.SeriesPoint.
func (r *SeriesPointRecord) ToModel() model.SeriesPoint {
	return model.SeriesPoint{
		RunID:  r.RunID,
		Column: r.ColumnName,
		Period: r.Period,
		Time:   r.PointTime,
		Value:  r.Value,
	}
}

// AllModels lists every table for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{&ExtractRunRecord{}, &SeriesPointRecord{}}
}

// JSONField is a custom type for handling JSON fields in GORM.
type JSONField []byte

// Value implements driver.Valuer interface.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}
