package collect

import (
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"fairway/internal/geo"
	"fairway/internal/pipeline"
	"fairway/internal/services/overpass"
)

// synthesizedHoleCount is the layout size used when map features yield no holes.
const synthesizedHoleCount = 18

// holeAngleStep is the angular spacing between synthesized holes, in radians.
const holeAngleStep = 2 * math.Pi / 9

var numberPattern = regexp.MustCompile(`\d+`)

// ParseFeatures extracts holes and amenities from tagged map elements. Holes
// come back sorted by number; elements without a parseable hole number are
// ignored for layout but still contribute amenities.
func ParseFeatures(elements []overpass.Element) ([]pipeline.Hole, []string) {
	var holes []pipeline.Hole
	seen := map[int]bool{}
	amenitySet := map[string]bool{}

	for _, element := range elements {
		if element.Tags == nil {
			continue
		}
		if amenity := classifyAmenity(element.Tags); amenity != "" {
			amenitySet[amenity] = true
		}

		if element.Tags["golf"] != "hole" {
			continue
		}
		number := parseHoleNumber(element.Tags)
		if number <= 0 || seen[number] {
			continue
		}
		seen[number] = true

		hole := pipeline.Hole{
			Number:         number,
			Par:            parseHolePar(element.Tags, number),
			DistanceMeters: parseHoleDistance(element.Tags),
			Coordinates:    pipeline.Coordinates{Lat: element.Lat, Lon: element.Lon},
			Features:       holeFeatures(element.Tags),
		}
		holes = append(holes, hole)
	}

	pipeline.SortHoles(holes)

	amenities := make([]string, 0, len(amenitySet))
	for _, key := range []string{"clubhouse", "driving_range", "practice_green", "pro_shop", "water", "building"} {
		if amenitySet[key] {
			amenities = append(amenities, key)
		}
	}
	return holes, amenities
}

// NearbyHoles drops holes whose marker lies implausibly far from the course
// center. Way centroids can land outside the queried box and would otherwise
// fling scene geometry off the ground plane.
func NearbyHoles(holes []pipeline.Hole, center geo.Point, radiusMeters float64) []pipeline.Hole {
	if radiusMeters <= 0 {
		return holes
	}
	limit := 2 * radiusMeters
	kept := holes[:0]
	for _, hole := range holes {
		marker := geo.Point{Lat: hole.Coordinates.Lat, Lon: hole.Coordinates.Lon}
		if geo.Distance(center, marker) <= limit {
			kept = append(kept, hole)
		}
	}
	return kept
}

// SynthesizeHoles places a full 18-hole layout around the center coordinate.
// Holes step around the center at a fixed angular increment with
// seed-deterministic distances, so the same request always produces the same
// layout.
func SynthesizeHoles(center geo.Point, seed int64) []pipeline.Hole {
	rng := rand.New(rand.NewSource(seed))
	holes := make([]pipeline.Hole, 0, synthesizedHoleCount)

	for number := 1; number <= synthesizedHoleCount; number++ {
		angle := float64(number-1) * holeAngleStep
		bearing := angle * 180 / math.Pi
		offset := 200 + rng.Float64()*400
		position := geo.DestinationPoint(center, offset, bearing)

		holes = append(holes, pipeline.Hole{
			Number:         number,
			Par:            pipeline.DefaultPar(number),
			DistanceMeters: 120 + rng.Float64()*380,
			Coordinates:    pipeline.Coordinates{Lat: position.Lat, Lon: position.Lon},
		})
	}
	return holes
}

func parseHoleNumber(tags map[string]string) int {
	for _, key := range []string{"ref", "name"} {
		value := strings.TrimSpace(tags[key])
		if value == "" {
			continue
		}
		match := numberPattern.FindString(value)
		if match == "" {
			continue
		}
		if number, err := strconv.Atoi(match); err == nil && number > 0 {
			return number
		}
	}
	return 0
}

func parseHolePar(tags map[string]string, number int) int {
	if value := strings.TrimSpace(tags["par"]); value != "" {
		if par, err := strconv.Atoi(value); err == nil && par >= 3 && par <= 6 {
			return par
		}
	}
	return pipeline.DefaultPar(number)
}

func parseHoleDistance(tags map[string]string) float64 {
	if value := strings.TrimSpace(tags["dist"]); value != "" {
		match := numberPattern.FindString(value)
		if dist, err := strconv.ParseFloat(match, 64); err == nil && dist > 0 {
			return dist
		}
	}
	return 0
}

func holeFeatures(tags map[string]string) []string {
	var features []string
	if tags["natural"] == "water" || tags["golf"] == "water_hazard" {
		features = append(features, "water")
	}
	if tags["golf"] == "bunker" || tags["natural"] == "sand" {
		features = append(features, "bunker")
	}
	return features
}

func classifyAmenity(tags map[string]string) string {
	switch {
	case tags["golf"] == "clubhouse" || tags["building"] == "clubhouse":
		return "clubhouse"
	case tags["golf"] == "driving_range":
		return "driving_range"
	case tags["golf"] == "practice" || tags["golf"] == "putting_green":
		return "practice_green"
	case tags["shop"] == "golf":
		return "pro_shop"
	case tags["natural"] == "water":
		return "water"
	case tags["building"] != "":
		return "building"
	}
	return ""
}
