package swmm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromSpreadsheet(t *testing.T) {
	tests := []struct {
		name string
		days float64
		want time.Time
	}{
		{"epoch", 0, SpreadsheetEpoch},
		{"whole day", 44927, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"half day", 44927.5, time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"just below second", 44927 + 299.9999/86400, time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC)},
		{"just above second", 44927 + 300.0001/86400, time.Date(2023, 1, 1, 0, 5, 0, 0, time.UTC)},
		{"before 1900", -1, time.Date(1899, 12, 29, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromSpreadsheet(tt.days))
		})
	}
}

func TestToSpreadsheet(t *testing.T) {
	ts := time.Date(2023, 1, 1, 6, 0, 0, 0, time.UTC)
	assert.InDelta(t, 44927.25, ToSpreadsheet(ts), 1e-9)
	assert.Equal(t, ts, FromSpreadsheet(ToSpreadsheet(ts)))
}
