// Package geo provides the small amount of spherical geometry the pipeline
// needs: distances, destination points for procedural hole layout, and
// bounding boxes for map-feature queries.
package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Distance calculates the haversine distance between two points in meters.
func Distance(p1, p2 Point) float64 {
	return orbgeo.DistanceHaversine(orb.Point{p1.Lon, p1.Lat}, orb.Point{p2.Lon, p2.Lat})
}

// DestinationPoint calculates the destination from a start point, given a
// distance in meters and a bearing in degrees.
func DestinationPoint(start Point, distMeters, bearing float64) Point {
	dest := orbgeo.PointAtBearingAndDistance(orb.Point{start.Lon, start.Lat}, bearing, distMeters)
	return Point{Lat: dest.Lat(), Lon: dest.Lon()}
}

// BoundingBox is an axis-aligned box in degrees, the shape Overpass-style
// region queries expect (south, west, north, east).
type BoundingBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// BoundAround returns the bounding box covering a circle of radiusMeters
// around center.
func BoundAround(center Point, radiusMeters float64) BoundingBox {
	bound := orbgeo.NewBoundAroundPoint(orb.Point{center.Lon, center.Lat}, radiusMeters)
	return BoundingBox{
		South: bound.Min.Lat(),
		West:  bound.Min.Lon(),
		North: bound.Max.Lat(),
		East:  bound.Max.Lon(),
	}
}
