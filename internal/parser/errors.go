// Package parser holds the sentinel errors shared by the output-file decoders.
package parser

import "errors"

// Structural failures: the file is not a complete, successful SWMM 5 output file.
var (
	// ErrBadLeadingMagic is returned when the first int32 of the file is not the magic number.
	ErrBadLeadingMagic = errors.New("beginning magic number incorrect")

	// ErrBadTrailingMagic is returned when the last int32 of the file is not the magic number.
	ErrBadTrailingMagic = errors.New("ending magic number incorrect")

	// ErrRunFailed is returned when the trailer carries a nonzero run error code.
	ErrRunFailed = errors.New("error code in output file indicates a problem with the run")

	// ErrNoPeriods is returned when the file records zero reporting periods.
	ErrNoPeriods = errors.New("there are zero time periods in the output file")

	// ErrTruncated is returned when a section extends past the end of the file.
	ErrTruncated = errors.New("output file is truncated")

	// ErrNegativeCount is returned when a declared count or offset is negative.
	ErrNegativeCount = errors.New("negative count in output file")
)

// Lookup failures: the file is fine but the request does not address anything in it.
var (
	// ErrUnknownCategory is returned for a category token outside the five known kinds.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrNotLookupTarget is returned when results are requested for a category without records.
	ErrNotLookupTarget = errors.New("category has no result records")

	// ErrNameNotFound is returned when an object name is not in the category's name list.
	ErrNameNotFound = errors.New("name not found in category")

	// ErrVariableNotFound is returned for an unknown variable label or index.
	ErrVariableNotFound = errors.New("variable not found")

	// ErrPeriodOutOfRange is returned for a period index outside [0, periods).
	ErrPeriodOutOfRange = errors.New("period out of range")

	// ErrNoProperties is returned when details are requested for a category without a property table.
	ErrNoProperties = errors.New("category has no property table")

	// ErrNoMatch is returned when a label pattern selects nothing from the catalog.
	ErrNoMatch = errors.New("label matched nothing in catalog")
)
