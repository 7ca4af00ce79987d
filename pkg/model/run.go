package model

import "time"

// RunStatus is the lifecycle state of an export run.
type RunStatus int

const (
	RunStatusPending   RunStatus = 0
	RunStatusRunning   RunStatus = 1
	RunStatusCompleted RunStatus = 2
	RunStatusFailed    RunStatus = 3
)

// String returns the string representation of RunStatus.
func (s RunStatus) String() string {
	switch s {
	case RunStatusPending:
		return "pending"
	case RunStatusRunning:
		return "running"
	case RunStatusCompleted:
		return "completed"
	case RunStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the run has finished, successfully or not.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// ExtractRun records one export of series from an output file.
type ExtractRun struct {
	ID         int64
	RunID      string
	Source     string
	Labels     []string
	FlowUnits  string
	Version    int32
	Periods    int
	Status     RunStatus
	StatusInfo string
	CreateTime time.Time
	EndTime    *time.Time
}

// SeriesPoint is one persisted value of an exported column.
type SeriesPoint struct {
	RunID  string
	Column string
	Period int
	Time   time.Time
	Value  float64
}

// PointsFromFrame flattens a frame into series points, column by column.
func PointsFromFrame(runID string, f *Frame) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(f.Columns)*f.Len())
	for _, c := range f.Columns {
		for p, v := range c.Values {
			points = append(points, SeriesPoint{
				RunID:  runID,
				Column: c.Name,
				Period: p,
				Time:   f.Index[p],
				Value:  float64(v),
			})
		}
	}
	return points
}
