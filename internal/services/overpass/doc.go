// Package overpass fetches golf-related map features from an
// Overpass-compatible query endpoint.
package overpass
