// Package swmm decodes SWMM 5 binary output (.out) files.
//
// # Package Organization
//
//   - types.go: categories, built-in variable/property/type tables, header and trailer
//   - core_reader.go: bounds-checked little-endian cursor
//   - store.go: Open/NewStore, validation and the ordered section parse
//   - lookup.go: category/name/variable resolution and computed-offset result reads
//   - catalog.go: catalog, variable listing and property detail tables
//   - dates.go: spreadsheet-epoch date conversion
//
// # File Layout
//
// A file is a flat sequence of 4-byte little-endian records:
//
//	magic version flowUnits nSubcatch nNodes nLinks nPolluts
//	names (length-prefixed) ... pollutant unit codes
//	properties for subcatchments, nodes, links
//	variable codes for subcatchments, nodes, links, system
//	startDate(float64) reportInterval
//	period blocks: date(float64) + subcatch/node/link/system values
//	namesOffset propertiesOffset resultsOffset periods errorCode magic
//
// Pollutants have no block of their own. Each pollutant is an extra variable
// of every subcatchment, node and link.
//
// # Usage
//
//	store, err := swmm.Open("model.out", nil)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	v, _ := store.ResolveVariable(swmm.Link, "Flow_rate")
//	r, err := store.GetResult(swmm.Link, "C1", v, 0)
package swmm
