// Package elevation looks up terrain elevation for coordinates through an
// Open-Elevation-compatible endpoint, batching lookups to respect provider
// rate limits.
package elevation
