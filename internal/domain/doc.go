// Package domain models city-level land temperature observations and the
// cleaning and statistics applied to them.
//
// # Data Source
//
// Input follows the layout of the Berkeley Earth "GlobalLandTemperaturesByCity"
// CSV: one row per city per month.
//
//	dt,AverageTemperature,AverageTemperatureUncertainty,City,Country,Latitude,Longitude
//	1743-11-01,6.068,1.7369999999999999,Århus,Denmark,57.05N,10.33E
//
// Only dt is required. City, AverageTemperature and
// AverageTemperatureUncertainty are optional; their absence switches off the
// features that depend on them. Any other column (Country, Latitude, ...) is
// carried through untouched and only participates in duplicate detection.
//
// # Conventions
//
// Missing numeric readings are represented as NaN. Empty cells, "NaN", "NA"
// and anything that does not parse as a float are missing.
//
// Dates accept ISO dates ("1743-11-01"), ISO timestamps, year-month
// ("1743-11"), slash dates in either order. Rows whose date does not parse
// are dropped.
//
// Calendar fields are derived from the date: Year, Month and
// Decade = floor(Year/10)*10. They are never analyzed as measurements.
//
// # Imputation
//
// Missing temperatures are filled per city by linear interpolation over the
// city's readings in date order. Gaps before the first or after the last
// valid reading take the nearest valid value. Whatever is still missing
// (a city with no readings at all) takes the median of the whole column,
// computed after interpolation.
//
// # Uncertainty levels
//
// AverageTemperatureUncertainty is binned into right-closed intervals:
//
//	(0, 0.5]  Very Low
//	(0.5, 1]  Low
//	(1, 2]    Medium
//	(2, 5]    High
//
// Values outside (0, 5] have no level and are left out of level counts.
package domain
