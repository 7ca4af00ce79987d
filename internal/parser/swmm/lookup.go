package swmm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/swmm-toolbox/internal/parser"
	apperrors "github.com/swmm-toolbox/pkg/errors"
)

// Result is one value read from a period block together with the block's date stamp.
type Result struct {
	// Stamp is the raw date stamp in days since SpreadsheetEpoch.
	Stamp float64
	Value float32
}

// Time converts the stamp to a UTC time.
func (r Result) Time() time.Time {
	return FromSpreadsheet(r.Stamp)
}

func lookupError(sentinel error, format string, args ...interface{}) error {
	return apperrors.Wrap(apperrors.CodeLookup, fmt.Sprintf(format, args...), sentinel)
}

// ResolveCategory maps a category token to a Category. Accepted tokens are
// the ordinals "0" through "4" and the category names, in any case.
func ResolveCategory(token string) (Category, error) {
	lower := strings.ToLower(token)
	for i, name := range categoryNames {
		if token == strconv.Itoa(i) || lower == name {
			return Category(i), nil
		}
	}
	return 0, lookupError(parser.ErrUnknownCategory, "unknown category %q (valid: %s)", token, validCategoryTokens())
}

// ResolveObjectIndex returns the position of name in the category's name list.
func (s *Store) ResolveObjectIndex(c Category, name string) (int, error) {
	if !c.Valid() {
		return 0, lookupError(parser.ErrUnknownCategory, "unknown category %d", int(c))
	}
	for i, n := range s.names[c] {
		if n == name {
			return i, nil
		}
	}
	return 0, lookupError(parser.ErrNameNotFound, "%q not found in %s names", name, c)
}

// ResolveVariable resolves a variable label, or a decimal index, against the
// working variable table of a category.
func (s *Store) ResolveVariable(c Category, token string) (int, error) {
	if !c.Valid() {
		return 0, lookupError(parser.ErrUnknownCategory, "unknown category %d", int(c))
	}
	table := s.variables[c]
	if i, ok := table.Index(token); ok {
		return i, nil
	}
	if n, err := strconv.Atoi(token); err == nil {
		if _, ok := table.Label(n); ok {
			return n, nil
		}
	}
	return 0, lookupError(parser.ErrVariableNotFound, "variable %q not found for %s", token, c)
}

// VariableLabel returns the label of a variable index in the category's working table.
func (s *Store) VariableLabel(c Category, index int) (string, error) {
	if !c.Valid() {
		return "", lookupError(parser.ErrUnknownCategory, "unknown category %d", int(c))
	}
	label, ok := s.variables[c].Label(index)
	if !ok {
		return "", lookupError(parser.ErrVariableNotFound, "variable index %d not found for %s", index, c)
	}
	return label, nil
}

// GetResult reads one value addressed by object name. The name is ignored for System.
func (s *Store) GetResult(c Category, name string, variable, period int) (Result, error) {
	if !c.HasResults() {
		return Result{}, s.notLookupTarget(c)
	}
	index := 0
	if c != System {
		var err error
		if index, err = s.ResolveObjectIndex(c, name); err != nil {
			return Result{}, err
		}
	}
	return s.GetResultAt(c, index, variable, period)
}

// GetResultAt reads one value addressed by object index. The index is ignored for System.
func (s *Store) GetResultAt(c Category, object, variable, period int) (Result, error) {
	off, err := s.fieldOffset(c, object, variable)
	if err != nil {
		return Result{}, err
	}
	base, err := s.periodOffset(period)
	if err != nil {
		return Result{}, err
	}

	var buf [8]byte
	if err := s.readAt(buf[:8], base, "period date stamp"); err != nil {
		return Result{}, err
	}
	stamp := math.Float64frombits(binary.LittleEndian.Uint64(buf[:8]))

	if err := s.readAt(buf[:RecordSize], base+off*RecordSize, "result value"); err != nil {
		return Result{}, err
	}
	value := math.Float32frombits(binary.LittleEndian.Uint32(buf[:RecordSize]))

	return Result{Stamp: stamp, Value: value}, nil
}

func (s *Store) notLookupTarget(c Category) error {
	if !c.Valid() {
		return lookupError(parser.ErrUnknownCategory, "unknown category %d", int(c))
	}
	return lookupError(parser.ErrNotLookupTarget, "%s has no result records; request the pollutant through a subcatchment, node or link", c)
}

func (s *Store) periodOffset(period int) (int64, error) {
	if period < 0 || period >= s.Periods() {
		return 0, lookupError(parser.ErrPeriodOutOfRange, "period %d outside [0, %d)", period, s.Periods())
	}
	return int64(s.trailer.ResultsOffset) + int64(period)*s.bytesPerPeriod, nil
}

// fieldOffset returns the position of a value within a period block in
// records, counting the two records of the date stamp.
func (s *Store) fieldOffset(c Category, object, variable int) (int64, error) {
	if !c.HasResults() {
		return 0, s.notLookupTarget(c)
	}
	nvars := s.VariableCount(c)
	if variable < 0 || variable >= nvars {
		return 0, lookupError(parser.ErrVariableNotFound, "variable index %d outside [0, %d) for %s", variable, nvars, c)
	}
	if c == System {
		object = 0
	} else if object < 0 || object >= s.count(c) {
		return 0, lookupError(parser.ErrNameNotFound, "object index %d outside [0, %d) for %s", object, s.count(c), c)
	}

	off := int64(2)
	for _, prev := range []Category{Subcatchment, Node, Link} {
		if prev == c {
			break
		}
		off += int64(s.count(prev)) * int64(s.VariableCount(prev))
	}
	off += int64(object)*int64(nvars) + int64(variable)
	return off, nil
}

func (s *Store) readAt(p []byte, off int64, what string) error {
	if s.src == nil {
		return apperrors.New(apperrors.CodeIO, "store is closed")
	}
	if off < 0 || off+int64(len(p)) > s.size {
		return structural(parser.ErrTruncated, "reading %s at offset %d outside file of %d bytes", what, off, s.size)
	}
	n, err := s.src.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to read %s at offset %d", what, off), err)
}

// PeriodStamp reads the date stamp of one period block.
func (s *Store) PeriodStamp(period int) (float64, error) {
	base, err := s.periodOffset(period)
	if err != nil {
		return 0, err
	}
	var buf [8]byte
	if err := s.readAt(buf[:], base, "period date stamp"); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// DateRange returns the dates of the first and last recorded periods.
func (s *Store) DateRange() (time.Time, time.Time, error) {
	first, err := s.PeriodStamp(0)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last, err := s.PeriodStamp(s.Periods() - 1)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return FromSpreadsheet(first), FromSpreadsheet(last), nil
}

// PeriodTimes returns the nominal date of every period, start + (p+1)*interval.
// No period block is read.
func (s *Store) PeriodTimes() []time.Time {
	out := make([]time.Time, s.Periods())
	for p := range out {
		out[p] = s.startDate.Add(time.Duration(p+1) * s.reportInterval)
	}
	return out
}
