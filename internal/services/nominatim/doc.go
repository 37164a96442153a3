// Package nominatim resolves course names to coordinates through a
// Nominatim-compatible geocoding endpoint.
package nominatim
