package swmm

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/swmm-toolbox/internal/parser"
	apperrors "github.com/swmm-toolbox/pkg/errors"
	"github.com/swmm-toolbox/pkg/utils"
)

// Options configures how a Store is opened.
type Options struct {
	// Logger receives debug output about the decoded layout and version
	// warnings. If nil, nothing is logged.
	Logger utils.Logger
}

// DefaultOptions returns default store options.
func DefaultOptions() *Options {
	return &Options{}
}

// Store is a decoded SWMM 5 binary output file.
//
// All structural tables are parsed by Open and never change afterwards. Result
// lookups read the period blocks on demand with positioned reads (ReadAt), so
// GetResult and GetResultAt may be called from several goroutines at once.
// Close must not race with lookups; a store opened per goroutine avoids that.
type Store struct {
	src    io.ReaderAt
	size   int64
	closer io.Closer
	path   string
	logger utils.Logger

	header  Header
	trailer Trailer

	names          [len(categoryNames)][]string
	pollutantUnits []ConcentrationUnits
	propCodes      [len(categoryNames)][]int32
	props          [len(categoryNames)][][]Property
	varIndex       [len(categoryNames)][]int32
	variables      [len(categoryNames)]VariableTable

	startStamp     float64
	startDate      time.Time
	reportInterval time.Duration
	bytesPerPeriod int64

	warnings []string
}

// Open opens and fully decodes the output file at path. On any failure the
// file is closed and no store is returned.
func Open(path string, opts *Options) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to open %s", path), err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to stat %s", path), err)
	}

	s, err := NewStore(f, fi.Size(), opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	s.closer = f
	s.path = path
	return s, nil
}

// NewStore decodes an output file held by src. The caller keeps ownership of
// src; Close on the returned store does not close it.
func NewStore(src io.ReaderAt, size int64, opts *Options) (*Store, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	s := &Store{
		src:    src,
		size:   size,
		logger: utils.OrNull(opts.Logger),
	}
	if err := s.decode(NewReader(src, size)); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the file handle owned by the store. It is safe to call more than once.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	s.src = nil
	return err
}

func structural(sentinel error, format string, args ...interface{}) error {
	return apperrors.Wrap(apperrors.CodeStructural, fmt.Sprintf(format, args...), sentinel)
}

// decode runs every parse step in on-disk order.
func (s *Store) decode(rd *Reader) error {
	if rd.Size() < int64(trailerFields+headerFields)*RecordSize {
		return structural(parser.ErrTruncated, "file of %d bytes is too short for header and trailer", rd.Size())
	}

	if err := s.readTrailer(rd); err != nil {
		return err
	}
	if err := s.readHeader(rd); err != nil {
		return err
	}
	if err := s.validate(); err != nil {
		return err
	}
	if err := s.readCounts(rd); err != nil {
		return err
	}
	s.checkVersion()

	if err := rd.Seek(int64(s.trailer.NamesOffset)); err != nil {
		return err
	}
	if err := s.readNames(rd); err != nil {
		return err
	}
	s.buildVariableTables()

	if err := s.readPollutantUnits(rd); err != nil {
		return err
	}
	if err := s.readProperties(rd); err != nil {
		return err
	}
	if err := s.readVariableIndices(rd); err != nil {
		return err
	}
	s.buildSystemNames()

	if err := s.readTimeHeader(rd); err != nil {
		return err
	}
	if err := s.computeStride(); err != nil {
		return err
	}

	s.logger.Debug("decoded output file: version=%d flow_units=%s subcatchments=%d nodes=%d links=%d pollutants=%d periods=%d bytes_per_period=%d",
		s.header.Version, s.header.FlowUnits, s.header.NSubcatch, s.header.NNodes, s.header.NLinks,
		s.header.NPollutants, s.trailer.Periods, s.bytesPerPeriod)
	return nil
}

func (s *Store) readTrailer(rd *Reader) error {
	if err := rd.SeekFromEnd(trailerFields * RecordSize); err != nil {
		return err
	}
	v, err := rd.ReadInt32s(trailerFields, "trailer")
	if err != nil {
		return err
	}
	s.trailer = Trailer{
		NamesOffset:      v[0],
		PropertiesOffset: v[1],
		ResultsOffset:    v[2],
		Periods:          v[3],
		ErrorCode:        v[4],
		TrailingMagic:    v[5],
	}
	return nil
}

func (s *Store) readHeader(rd *Reader) error {
	if err := rd.Seek(0); err != nil {
		return err
	}
	magic, err := rd.ReadInt32("leading magic number")
	if err != nil {
		return err
	}
	s.header.LeadingMagic = magic
	return nil
}

// validate applies the integrity checks in their fixed order.
func (s *Store) validate() error {
	switch {
	case s.header.LeadingMagic != MagicNumber:
		return structural(parser.ErrBadLeadingMagic, "leading magic number is %d, want %d", s.header.LeadingMagic, MagicNumber)
	case s.trailer.TrailingMagic != MagicNumber:
		return structural(parser.ErrBadTrailingMagic, "trailing magic number is %d, want %d", s.trailer.TrailingMagic, MagicNumber)
	case s.trailer.ErrorCode != 0:
		return structural(parser.ErrRunFailed, "run error code %d", s.trailer.ErrorCode)
	case s.trailer.Periods <= 0:
		return structural(parser.ErrNoPeriods, "period count is %d", s.trailer.Periods)
	}
	return nil
}

func (s *Store) readCounts(rd *Reader) error {
	v, err := rd.ReadInt32s(6, "header")
	if err != nil {
		return err
	}
	s.header.Version = v[0]
	s.header.FlowUnits = FlowUnits(v[1])
	s.header.NSubcatch = v[2]
	s.header.NNodes = v[3]
	s.header.NLinks = v[4]
	s.header.NPollutants = v[5]

	for i, what := range []string{"subcatchment count", "node count", "link count", "pollutant count"} {
		if v[2+i] < 0 {
			return structural(parser.ErrNegativeCount, "%s is %d", what, v[2+i])
		}
	}
	return nil
}

func (s *Store) checkVersion() {
	if s.header.Version < LowestKnownVersion {
		msg := fmt.Sprintf("engine version %d is older than the oldest known format (%d); decoding with legacy tables",
			s.header.Version, LowestKnownVersion)
		s.warnings = append(s.warnings, msg)
		s.logger.Warn(msg)
	}
}

func (s *Store) count(c Category) int {
	switch c {
	case Subcatchment:
		return int(s.header.NSubcatch)
	case Node:
		return int(s.header.NNodes)
	case Link:
		return int(s.header.NLinks)
	case Pollutant:
		return int(s.header.NPollutants)
	case System:
		return len(s.varIndex[System])
	}
	return 0
}

func (s *Store) readNames(rd *Reader) error {
	for _, c := range []Category{Subcatchment, Node, Link, Pollutant} {
		n := s.count(c)
		// Every name carries at least its length word.
		if err := rd.need(int64(n)*RecordSize, fmt.Sprintf("%s names", c)); err != nil {
			return err
		}
		names := make([]string, 0, n)
		for i := 0; i < n; i++ {
			name, err := rd.ReadString(fmt.Sprintf("%s name %d", c, i))
			if err != nil {
				return err
			}
			names = append(names, name)
		}
		s.names[c] = names
	}
	return nil
}

// buildVariableTables copies the version's base tables and appends one
// variable per pollutant to subcatchments, nodes and links.
func (s *Store) buildVariableTables() {
	for _, c := range Categories {
		s.variables[c] = BaseVariables(c, s.header.Version)
	}
	for _, c := range []Category{Subcatchment, Node, Link} {
		s.variables[c] = append(s.variables[c], s.names[Pollutant]...)
	}
}

func (s *Store) readPollutantUnits(rd *Reader) error {
	codes, err := rd.ReadInt32s(s.count(Pollutant), "pollutant units")
	if err != nil {
		return err
	}
	s.pollutantUnits = make([]ConcentrationUnits, len(codes))
	for i, c := range codes {
		s.pollutantUnits[i] = ConcentrationUnits(c)
	}
	return nil
}

func (s *Store) readProperties(rd *Reader) error {
	for _, c := range []Category{Subcatchment, Node, Link} {
		nprop, err := rd.ReadCount(fmt.Sprintf("%s property count", c))
		if err != nil {
			return err
		}
		codes, err := rd.ReadInt32s(nprop, fmt.Sprintf("%s property codes", c))
		if err != nil {
			return err
		}
		s.propCodes[c] = codes

		n := s.count(c)
		if err := rd.need(int64(n)*int64(nprop)*RecordSize, fmt.Sprintf("%s property values", c)); err != nil {
			return err
		}
		rows := make([][]Property, n)
		for i := 0; i < n; i++ {
			words, err := rd.ReadWords(nprop, fmt.Sprintf("%s %d properties", c, i))
			if err != nil {
				return err
			}
			rows[i] = decodeProperties(codes, words)
		}
		s.props[c] = rows
	}
	return nil
}

// decodeProperties zips codes with raw words. Every value, the type code
// included, is stored as float32 in all format versions.
func decodeProperties(codes []int32, words []uint32) []Property {
	out := make([]Property, len(codes))
	for j, code := range codes {
		p := Property{Code: code, Value: math.Float32frombits(words[j])}
		if code == TypeCodeProperty {
			p.TypeCode = typeCodeFromFloat(p.Value)
		}
		out[j] = p
	}
	return out
}

// typeCodeFromFloat returns -1 for values that are not a whole number, which
// no type table contains.
func typeCodeFromFloat(v float32) int {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return -1
	}
	return int(f)
}

func (s *Store) readVariableIndices(rd *Reader) error {
	for _, c := range []Category{Subcatchment, Node, Link, System} {
		n, err := rd.ReadCount(fmt.Sprintf("%s variable count", c))
		if err != nil {
			return err
		}
		idx, err := rd.ReadInt32s(n, fmt.Sprintf("%s variable codes", c))
		if err != nil {
			return err
		}
		s.varIndex[c] = idx
	}
	s.varIndex[Pollutant] = []int32{0}
	return nil
}

// buildSystemNames labels the system "objects", which are its variables.
func (s *Store) buildSystemNames() {
	names := make([]string, len(s.varIndex[System]))
	for i, code := range s.varIndex[System] {
		names[i] = s.variableLabel(System, int(code))
	}
	s.names[System] = names
}

func (s *Store) variableLabel(c Category, code int) string {
	if label, ok := s.variables[c].Label(code); ok {
		return label
	}
	return strconv.Itoa(code)
}

func (s *Store) readTimeHeader(rd *Reader) error {
	stamp, err := rd.ReadFloat64("start date")
	if err != nil {
		return err
	}
	interval, err := rd.ReadCount("report interval")
	if err != nil {
		return err
	}
	s.startStamp = stamp
	s.startDate = FromSpreadsheet(stamp)
	s.reportInterval = time.Duration(interval) * time.Second
	return nil
}

// computeStride derives the width of one period block and checks that every
// block lies inside the file.
func (s *Store) computeStride() error {
	fields := int64(2) +
		int64(s.header.NSubcatch)*int64(len(s.varIndex[Subcatchment])) +
		int64(s.header.NNodes)*int64(len(s.varIndex[Node])) +
		int64(s.header.NLinks)*int64(len(s.varIndex[Link])) +
		int64(len(s.varIndex[System]))
	s.bytesPerPeriod = RecordSize * fields

	start := int64(s.trailer.ResultsOffset)
	end := start + int64(s.trailer.Periods)*s.bytesPerPeriod
	if start < 0 || end > s.size-trailerFields*RecordSize {
		return structural(parser.ErrTruncated, "results section [%d, %d) exceeds file of %d bytes", start, end, s.size)
	}
	return nil
}

// Path returns the file path the store was opened from, if any.
func (s *Store) Path() string {
	return s.path
}

// Header returns the fixed header fields.
func (s *Store) Header() Header {
	return s.header
}

// Trailer returns the fixed trailer fields.
func (s *Store) Trailer() Trailer {
	return s.trailer
}

// Version returns the engine version that wrote the file.
func (s *Store) Version() int32 {
	return s.header.Version
}

// FlowUnits returns the flow unit code of the run.
func (s *Store) FlowUnits() FlowUnits {
	return s.header.FlowUnits
}

// Periods returns the number of recorded reporting periods.
func (s *Store) Periods() int {
	return int(s.trailer.Periods)
}

// StartDate returns the simulation start date.
func (s *Store) StartDate() time.Time {
	return s.startDate
}

// StartStamp returns the raw spreadsheet-epoch start date.
func (s *Store) StartStamp() float64 {
	return s.startStamp
}

// ReportInterval returns the reporting time step.
func (s *Store) ReportInterval() time.Duration {
	return s.reportInterval
}

// BytesPerPeriod returns the width of one period block.
func (s *Store) BytesPerPeriod() int64 {
	return s.bytesPerPeriod
}

// Warnings returns non-fatal findings recorded while decoding.
func (s *Store) Warnings() []string {
	return append([]string(nil), s.warnings...)
}

// Names returns the object names of a category in on-disk order.
func (s *Store) Names(c Category) []string {
	if !c.Valid() {
		return nil
	}
	return append([]string(nil), s.names[c]...)
}

// ObjectCount returns the number of objects of a category.
func (s *Store) ObjectCount(c Category) int {
	if !c.Valid() {
		return 0
	}
	return len(s.names[c])
}

// Variables returns a copy of the working variable table of a category.
func (s *Store) Variables(c Category) VariableTable {
	if !c.Valid() {
		return nil
	}
	return s.variables[c].Clone()
}

// VariableCodes returns the variable-index table read from the file.
func (s *Store) VariableCodes(c Category) []int32 {
	if !c.Valid() {
		return nil
	}
	return append([]int32(nil), s.varIndex[c]...)
}

// VariableCount returns the number of values recorded per object of a category.
func (s *Store) VariableCount(c Category) int {
	if !c.HasResults() {
		return 0
	}
	return len(s.varIndex[c])
}

// PollutantUnits returns the concentration unit of each pollutant.
func (s *Store) PollutantUnits() []ConcentrationUnits {
	return append([]ConcentrationUnits(nil), s.pollutantUnits...)
}

// PropertyCodes returns the property codes recorded for a category.
func (s *Store) PropertyCodes(c Category) []int32 {
	if !c.hasObjects() {
		return nil
	}
	return append([]int32(nil), s.propCodes[c]...)
}

// Properties returns the property table of one object.
func (s *Store) Properties(c Category, objectIndex int) []Property {
	if !c.hasObjects() || objectIndex < 0 || objectIndex >= len(s.props[c]) {
		return nil
	}
	return append([]Property(nil), s.props[c][objectIndex]...)
}
