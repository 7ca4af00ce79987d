package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// OutMagic is the magic number written at both ends of a fixture file.
const OutMagic int32 = 516114522

// Category ordinals as they appear in the period blocks.
const (
	SubcatchmentBlock = 0
	NodeBlock         = 1
	LinkBlock         = 2
	SystemBlock       = 4
)

// PropTable is the property section of one category: codes plus one value
// row per object. A code 0 column holds the object's type code.
type PropTable struct {
	Codes  []int32
	Values [][]float32
}

// OutFile describes a synthetic SWMM 5 binary output file. Zero values
// produce a structurally valid but empty file; Frutal returns a populated one.
type OutFile struct {
	LeadingMagic  int32
	TrailingMagic int32
	Version       int32
	FlowUnits     int32
	ErrorCode     int32

	Subcatchments []string
	Nodes         []string
	Links         []string
	Pollutants    []string
	// PollutantNameBytes overrides the encoded bytes of pollutant names when set.
	PollutantNameBytes [][]byte
	PollutantUnits     []int32

	SubcatchProps PropTable
	NodeProps     PropTable
	LinkProps     PropTable

	SubcatchVars []int32
	NodeVars     []int32
	LinkVars     []int32
	SystemVars   []int32

	StartDate      float64
	ReportInterval int32
	Periods        int

	// Value, when set, replaces ResultValue for every recorded field.
	Value func(category, object, variable, period int) float32
}

// FrutalStartDate is 2023-01-01 00:00:00 in days since 1899-12-30.
const FrutalStartDate = 44927.0

// Frutal returns a small current-format model with a node and a link both
// named "222" and a single pollutant.
func Frutal() *OutFile {
	return &OutFile{
		LeadingMagic:  OutMagic,
		TrailingMagic: OutMagic,
		Version:       51015,
		FlowUnits:     3,

		Subcatchments:  []string{"S1", "S2"},
		Nodes:          []string{"101", "222", "J3", "OF1"},
		Links:          []string{"222", "C2", "P1"},
		Pollutants:     []string{"TSS"},
		PollutantUnits: []int32{0},

		SubcatchProps: PropTable{
			Codes:  []int32{1},
			Values: [][]float32{{4.5}, {12.25}},
		},
		NodeProps: PropTable{
			Codes: []int32{0, 2, 3},
			Values: [][]float32{
				{0, 100.5, 3},
				{0, 98.25, 2.5},
				{2, 97, 6},
				{1, 95.5, 0},
			},
		},
		LinkProps: PropTable{
			Codes: []int32{0, 3, 4, 4, 5},
			Values: [][]float32{
				{0, 1.5, 0, 0.25, 120},
				{0, 2, 0.5, 0, 80.5},
				{1, 0, 0, 0, 0},
			},
		},

		SubcatchVars: Sequence(9),
		NodeVars:     Sequence(7),
		LinkVars:     Sequence(6),
		SystemVars:   Sequence(15),

		StartDate:      FrutalStartDate,
		ReportInterval: 300,
		Periods:        36,
	}
}

// Legacy returns a pre-5100 model: six subcatchment variables and fourteen
// system variables.
func Legacy() *OutFile {
	f := Frutal()
	f.Version = 5022
	f.SubcatchVars = Sequence(7)
	f.SystemVars = Sequence(14)
	return f
}

// Sequence returns [0, n).
func Sequence(n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(i)
	}
	return out
}

// ResultValue is the default value recorded for a field. It is exact in float32
// and distinct for every field of a small model.
func ResultValue(category, object, variable, period int) float32 {
	return float32(1000*category+100*object+variable) + float32(period)/4
}

// PeriodStamp is the date stamp recorded for a period.
func (f *OutFile) PeriodStamp(period int) float64 {
	return f.StartDate + float64(period+1)*float64(f.ReportInterval)/86400
}

func (f *OutFile) value(category, object, variable, period int) float32 {
	if f.Value != nil {
		return f.Value(category, object, variable, period)
	}
	return ResultValue(category, object, variable, period)
}

// BytesPerPeriod returns the width of one period block.
func (f *OutFile) BytesPerPeriod() int {
	return 4 * (2 +
		len(f.Subcatchments)*len(f.SubcatchVars) +
		len(f.Nodes)*len(f.NodeVars) +
		len(f.Links)*len(f.LinkVars) +
		len(f.SystemVars))
}

type leWriter struct {
	bytes.Buffer
}

func (w *leWriter) i32(v ...int32) {
	for _, x := range v {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(x))
		w.Write(b[:])
	}
}

func (w *leWriter) f32(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.Write(b[:])
}

func (w *leWriter) f64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.Write(b[:])
}

func (w *leWriter) str(b []byte) {
	w.i32(int32(len(b)))
	w.Write(b)
}

func (w *leWriter) props(t PropTable) {
	w.i32(int32(len(t.Codes)))
	w.i32(t.Codes...)
	for _, row := range t.Values {
		for _, v := range row {
			w.f32(v)
		}
	}
}

// Bytes encodes the file.
func (f *OutFile) Bytes() []byte {
	w := &leWriter{}
	w.i32(f.LeadingMagic, f.Version, f.FlowUnits,
		int32(len(f.Subcatchments)), int32(len(f.Nodes)), int32(len(f.Links)), int32(len(f.Pollutants)))

	namesOffset := int32(w.Len())
	for _, list := range [][]string{f.Subcatchments, f.Nodes, f.Links} {
		for _, name := range list {
			w.str([]byte(name))
		}
	}
	for i, name := range f.Pollutants {
		if i < len(f.PollutantNameBytes) && f.PollutantNameBytes[i] != nil {
			w.str(f.PollutantNameBytes[i])
		} else {
			w.str([]byte(name))
		}
	}
	w.i32(f.PollutantUnits...)

	propertiesOffset := int32(w.Len())
	w.props(f.SubcatchProps)
	w.props(f.NodeProps)
	w.props(f.LinkProps)

	for _, vars := range [][]int32{f.SubcatchVars, f.NodeVars, f.LinkVars, f.SystemVars} {
		w.i32(int32(len(vars)))
		w.i32(vars...)
	}
	w.f64(f.StartDate)
	w.i32(f.ReportInterval)

	resultsOffset := int32(w.Len())
	blocks := []struct {
		category int
		objects  int
		vars     int
	}{
		{SubcatchmentBlock, len(f.Subcatchments), len(f.SubcatchVars)},
		{NodeBlock, len(f.Nodes), len(f.NodeVars)},
		{LinkBlock, len(f.Links), len(f.LinkVars)},
		{SystemBlock, 1, len(f.SystemVars)},
	}
	for p := 0; p < f.Periods; p++ {
		w.f64(f.PeriodStamp(p))
		for _, b := range blocks {
			for o := 0; o < b.objects; o++ {
				for v := 0; v < b.vars; v++ {
					w.f32(f.value(b.category, o, v, p))
				}
			}
		}
	}

	w.i32(namesOffset, propertiesOffset, resultsOffset, int32(f.Periods), f.ErrorCode, f.TrailingMagic)
	return w.Bytes()
}

// Write encodes the file into dir and returns its path.
func (f *OutFile) Write(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, f.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write output file: %v", err)
	}
	return path
}

// WriteTemp encodes the file into a fresh temp directory and returns its path.
func (f *OutFile) WriteTemp(t *testing.T) string {
	t.Helper()
	return f.Write(t, t.TempDir(), "model.out")
}
