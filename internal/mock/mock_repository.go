package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/swmm-toolbox/pkg/model"
)

// MockRunRepository is a mock implementation of the RunRepository interface.
type MockRunRepository struct {
	mock.Mock
}

// CreateRun mocks the CreateRun method.
func (m *MockRunRepository) CreateRun(ctx context.Context, run *model.ExtractRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// GetRun mocks the GetRun method.
func (m *MockRunRepository) GetRun(ctx context.Context, runID string) (*model.ExtractRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExtractRun), args.Error(1)
}

// ListRuns mocks the ListRuns method.
func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]*model.ExtractRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ExtractRun), args.Error(1)
}

// UpdateRunStatus mocks the UpdateRunStatus method.
func (m *MockRunRepository) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, info string) error {
	args := m.Called(ctx, runID, status, info)
	return args.Error(0)
}

// ExpectCreateRun sets up an expectation for any CreateRun call.
func (m *MockRunRepository) ExpectCreateRun(err error) *mock.Call {
	return m.On("CreateRun", mock.Anything, mock.AnythingOfType("*model.ExtractRun")).Return(err)
}

// ExpectUpdateRunStatus sets up an expectation for UpdateRunStatus with any run ID and info.
func (m *MockRunRepository) ExpectUpdateRunStatus(status model.RunStatus, err error) *mock.Call {
	return m.On("UpdateRunStatus", mock.Anything, mock.AnythingOfType("string"), status, mock.AnythingOfType("string")).Return(err)
}

// MockSeriesRepository is a mock implementation of the SeriesRepository interface.
type MockSeriesRepository struct {
	mock.Mock
}

// SavePoints mocks the SavePoints method.
func (m *MockSeriesRepository) SavePoints(ctx context.Context, points []model.SeriesPoint) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}

// GetPoints mocks the GetPoints method.
func (m *MockSeriesRepository) GetPoints(ctx context.Context, runID, column string) ([]model.SeriesPoint, error) {
	args := m.Called(ctx, runID, column)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SeriesPoint), args.Error(1)
}

// ListColumns mocks the ListColumns method.
func (m *MockSeriesRepository) ListColumns(ctx context.Context, runID string) ([]string, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// DeletePoints mocks the DeletePoints method.
func (m *MockSeriesRepository) DeletePoints(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

// ExpectSavePoints sets up an expectation for any SavePoints call.
func (m *MockSeriesRepository) ExpectSavePoints(err error) *mock.Call {
	return m.On("SavePoints", mock.Anything, mock.Anything).Return(err)
}
