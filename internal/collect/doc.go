// Package collect implements the data collection stage: geocoding, elevation
// lookup, and map-feature parsing with independent fallbacks for each
// sub-fetch. A missing upstream data point never fails the job; only total
// stage malfunction does.
package collect
