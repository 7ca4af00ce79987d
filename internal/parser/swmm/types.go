package swmm

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MagicNumber opens and closes every SWMM 5 binary output file.
	MagicNumber int32 = 516114522

	// RecordSize is the width in bytes of every int32/float32 field.
	RecordSize = 4

	// CurrentTableVersion is the first engine version using the current variable tables.
	CurrentTableVersion = 5100

	// LowestKnownVersion is the oldest engine version this decoder has been checked against.
	// Older files are decoded with the legacy tables and flagged with a warning.
	LowestKnownVersion = 5000

	trailerFields = 6
	headerFields  = 7 // leading magic + 6 header fields
)

// Category identifies one of the five object kinds in an output file.
type Category int

const (
	Subcatchment Category = iota
	Node
	Link
	Pollutant
	System
)

var categoryNames = [...]string{"subcatchment", "node", "link", "pollutant", "system"}

// Categories lists every category in ordinal order.
var Categories = []Category{Subcatchment, Node, Link, Pollutant, System}

// String returns the lower-case name used in labels and tables.
func (c Category) String() string {
	if c.Valid() {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Valid reports whether c is one of the five known categories.
func (c Category) Valid() bool {
	return c >= Subcatchment && c <= System
}

// HasResults reports whether c has its own records in the period blocks.
func (c Category) HasResults() bool {
	return c.Valid() && c != Pollutant
}

// hasObjects reports whether c carries a name list and property table of its own.
func (c Category) hasObjects() bool {
	return c == Subcatchment || c == Node || c == Link
}

func validCategoryTokens() string {
	tokens := make([]string, 0, 2*len(categoryNames))
	for i := range categoryNames {
		tokens = append(tokens, strconv.Itoa(i))
	}
	tokens = append(tokens, categoryNames[:]...)
	return strings.Join(tokens, ", ")
}

// VariableTable maps a zero-based variable index to its label. Indices are dense.
type VariableTable []string

// Label returns the label at index i.
func (t VariableTable) Label(i int) (string, bool) {
	if i < 0 || i >= len(t) {
		return "", false
	}
	return t[i], true
}

// Index returns the index of label, or false when it is absent.
func (t VariableTable) Index(label string) (int, bool) {
	for i, l := range t {
		if l == label {
			return i, true
		}
	}
	return 0, false
}

// Clone returns an independent copy of the table.
func (t VariableTable) Clone() VariableTable {
	out := make(VariableTable, len(t))
	copy(out, t)
	return out
}

// Built-in variable tables, indexed by category. Pollutant has no base table.
// These are never handed out directly; see BaseVariables.
var (
	currentVariables = [...]VariableTable{
		Subcatchment: {
			"Rainfall",
			"Snow_depth",
			"Evaporation_loss",
			"Infiltration_loss",
			"Runoff_rate",
			"Groundwater_outflow",
			"Groundwater_elevation",
			"Soil_moisture",
		},
		Node: {
			"Depth_above_invert",
			"Hydraulic_head",
			"Volume_stored_ponded",
			"Lateral_inflow",
			"Total_inflow",
			"Flow_lost_flooding",
		},
		Link: {
			"Flow_rate",
			"Flow_depth",
			"Flow_velocity",
			"Froude_number",
			"Capacity",
		},
		Pollutant: nil,
		System: {
			"Air_temperature",
			"Rainfall",
			"Snow_depth",
			"Evaporation_infiltration",
			"Runoff",
			"Dry_weather_inflow",
			"Groundwater_inflow",
			"RDII_inflow",
			"User_direct_inflow",
			"Total_lateral_inflow",
			"Flow_lost_to_flooding",
			"Flow_leaving_outfalls",
			"Volume_stored_water",
			"Evaporation_rate",
			"Potential_PET",
		},
	}

	legacyVariables = [...]VariableTable{
		Subcatchment: {
			"Rainfall",
			"Snow_depth",
			"Evaporation_loss",
			"Runoff_rate",
			"Groundwater_outflow",
			"Groundwater_elevation",
		},
		Node:      currentVariables[Node],
		Link:      currentVariables[Link],
		Pollutant: nil,
		System:    currentVariables[System][:14],
	}
)

// BaseVariables returns a copy of the built-in variable table for a category
// as selected by the engine version of the file.
func BaseVariables(c Category, version int32) VariableTable {
	if !c.Valid() {
		return nil
	}
	if version < CurrentTableVersion {
		return legacyVariables[c].Clone()
	}
	return currentVariables[c].Clone()
}

// Property code labels used as column headers by ListDetail.
var propertyLabels = map[Category]map[int32]string{
	Subcatchment: {1: "Area"},
	Node:         {0: "Type", 2: "Inv_elev", 3: "Max_depth"},
	Link:         {0: "Type", 3: "Max_depth", 4: "Inv_offset", 5: "Length"},
}

// PropertyLabel returns the header label of a property code.
func PropertyLabel(c Category, code int32) string {
	if label, ok := propertyLabels[c][code]; ok {
		return label
	}
	return fmt.Sprintf("Property_%d", code)
}

// TypeCodeProperty is the property code whose value is an object type code.
const TypeCodeProperty int32 = 0

// Type code labels for property code 0. Entry 0 is the default type.
var typeLabels = map[Category][]string{
	Node: {"Junction", "Outfall", "Storage", "Divider"},
	Link: {"Conduit", "Pump", "Orifice", "Weir", "Outlet"},
}

// TypeLabel maps a type code to its label, falling back to the category's
// default type for unrecognized codes. It returns false only when the
// category has no type table at all.
func TypeLabel(c Category, code int) (string, bool) {
	labels, ok := typeLabels[c]
	if !ok || len(labels) == 0 {
		return "", false
	}
	if code < 0 || code >= len(labels) {
		return labels[0], true
	}
	return labels[code], true
}

// TypeLabels returns the type labels known for a category.
func TypeLabels(c Category) []string {
	return append([]string(nil), typeLabels[c]...)
}

var flowUnitNames = []string{"CFS", "GPM", "MGD", "CMS", "LPS", "LPD"}

// FlowUnits is the flow unit code from the file header.
type FlowUnits int32

// String returns the unit abbreviation.
func (u FlowUnits) String() string {
	if u >= 0 && int(u) < len(flowUnitNames) {
		return flowUnitNames[u]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(u))
}

var concentrationUnitNames = []string{"MG/L", "UG/L", "COUNT/L"}

// ConcentrationUnits is a pollutant concentration unit code.
type ConcentrationUnits int32

// String returns the unit abbreviation.
func (u ConcentrationUnits) String() string {
	if u >= 0 && int(u) < len(concentrationUnitNames) {
		return concentrationUnitNames[u]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(u))
}

// Header is the fixed block following the leading magic number.
type Header struct {
	LeadingMagic int32
	Version      int32
	FlowUnits    FlowUnits
	NSubcatch    int32
	NNodes       int32
	NLinks       int32
	NPollutants  int32
}

// Trailer is the fixed block at the end of the file.
type Trailer struct {
	NamesOffset      int32
	PropertiesOffset int32
	ResultsOffset    int32
	Periods          int32
	ErrorCode        int32
	TrailingMagic    int32
}

// Property is one (code, value) pair of an object's property table.
type Property struct {
	Code  int32
	Value float32
	// TypeCode holds the decoded type for code 0 properties.
	TypeCode int
}

// CatalogEntry is one addressable (category, name, variable) triple.
type CatalogEntry struct {
	Category Category
	Name     string
	Variable string
}

// VariableEntry describes one variable recorded for a category.
type VariableEntry struct {
	Category Category
	Label    string
	Index    int
}

// PropertyValue is a ListDetail cell: a number, or a type label for code 0.
type PropertyValue struct {
	Code      int32
	Value     float32
	TypeLabel string
}

// IsType reports whether the cell holds a type label.
func (v PropertyValue) IsType() bool {
	return v.TypeLabel != ""
}

// String renders the cell the way detail tables print it.
func (v PropertyValue) String() string {
	if v.IsType() {
		return v.TypeLabel
	}
	return strconv.FormatFloat(float64(v.Value), 'f', 2, 32)
}

// ObjectDetail is one ListDetail row.
type ObjectDetail struct {
	Name       string
	Properties []PropertyValue
}

// DetailTable is the result of ListDetail.
type DetailTable struct {
	Category Category
	Header   []string
	Rows     []ObjectDetail
}
