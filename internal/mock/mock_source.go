// Package mock provides mock implementations for testing.
package mock

import (
	"github.com/stretchr/testify/mock"

	"github.com/swmm-toolbox/internal/parser/swmm"
)

// MockSource is a mock implementation of the extract.Source interface.
type MockSource struct {
	mock.Mock
}

// Catalog mocks the Catalog method.
func (m *MockSource) Catalog(categories ...swmm.Category) []swmm.CatalogEntry {
	args := m.Called(categories)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]swmm.CatalogEntry)
}

// ResolveVariable mocks the ResolveVariable method.
func (m *MockSource) ResolveVariable(c swmm.Category, token string) (int, error) {
	args := m.Called(c, token)
	return args.Int(0), args.Error(1)
}

// VariableLabel mocks the VariableLabel method.
func (m *MockSource) VariableLabel(c swmm.Category, index int) (string, error) {
	args := m.Called(c, index)
	return args.String(0), args.Error(1)
}

// GetResult mocks the GetResult method.
func (m *MockSource) GetResult(c swmm.Category, name string, variable, period int) (swmm.Result, error) {
	args := m.Called(c, name, variable, period)
	return args.Get(0).(swmm.Result), args.Error(1)
}

// PeriodStamp mocks the PeriodStamp method.
func (m *MockSource) PeriodStamp(period int) (float64, error) {
	args := m.Called(period)
	return args.Get(0).(float64), args.Error(1)
}

// Periods mocks the Periods method.
func (m *MockSource) Periods() int {
	args := m.Called()
	return args.Int(0)
}

// ExpectPeriods sets up an expectation for Periods.
func (m *MockSource) ExpectPeriods(n int) *mock.Call {
	return m.On("Periods").Return(n)
}

// ExpectVariable sets up an expectation for an exact ResolveVariable/VariableLabel pair.
func (m *MockSource) ExpectVariable(c swmm.Category, label string, index int) {
	m.On("ResolveVariable", c, label).Return(index, nil)
	m.On("VariableLabel", c, index).Return(label, nil)
}

// ExpectAnyResult sets up an expectation for every GetResult call.
func (m *MockSource) ExpectAnyResult(r swmm.Result, err error) *mock.Call {
	return m.On("GetResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(r, err)
}
