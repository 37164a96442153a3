package collect_test

import (
	"testing"

	"fairway/internal/collect"
	"fairway/internal/geo"
	"fairway/internal/pipeline"
	"fairway/internal/services/overpass"
)

func TestParseFeaturesExtractsHolesAndAmenities(t *testing.T) {
	elements := []overpass.Element{
		{Tags: map[string]string{"golf": "hole", "ref": "3", "par": "5", "dist": "480m"}, Lat: 1, Lon: 1},
		{Tags: map[string]string{"golf": "hole", "name": "Hole 1"}, Lat: 2, Lon: 2},
		{Tags: map[string]string{"golf": "hole", "ref": "3"}, Lat: 9, Lon: 9},
		{Tags: map[string]string{"golf": "hole", "name": "Clubhouse Loop"}},
		{Tags: map[string]string{"golf": "driving_range"}},
		{Tags: map[string]string{"natural": "water"}},
		{Tags: nil},
	}

	holes, amenities := collect.ParseFeatures(elements)
	if len(holes) != 2 {
		t.Fatalf("expected 2 holes, got %d", len(holes))
	}
	if holes[0].Number != 1 || holes[1].Number != 3 {
		t.Fatalf("expected holes 1,3 in order, got %d,%d", holes[0].Number, holes[1].Number)
	}
	if holes[1].Par != 5 {
		t.Fatalf("expected tagged par 5, got %d", holes[1].Par)
	}
	if holes[1].DistanceMeters != 480 {
		t.Fatalf("expected distance 480, got %f", holes[1].DistanceMeters)
	}
	if holes[1].Coordinates.Lat != 1 {
		t.Fatalf("expected first occurrence of hole 3 to win, got lat %f", holes[1].Coordinates.Lat)
	}
	if holes[0].Par != 3 {
		t.Fatalf("expected default par 3 for hole 1, got %d", holes[0].Par)
	}

	if len(amenities) != 2 || amenities[0] != "driving_range" || amenities[1] != "water" {
		t.Fatalf("unexpected amenities %v", amenities)
	}
}

func TestParseFeaturesTagsHazards(t *testing.T) {
	elements := []overpass.Element{
		{Tags: map[string]string{"golf": "hole", "ref": "7", "natural": "water"}},
	}
	holes, _ := collect.ParseFeatures(elements)
	if len(holes) != 1 {
		t.Fatalf("expected 1 hole, got %d", len(holes))
	}
	if len(holes[0].Features) != 1 || holes[0].Features[0] != "water" {
		t.Fatalf("expected water hazard feature, got %v", holes[0].Features)
	}
}

func TestParseFeaturesRejectsBadPar(t *testing.T) {
	holes, _ := collect.ParseFeatures([]overpass.Element{
		{Tags: map[string]string{"golf": "hole", "ref": "2", "par": "9"}},
	})
	if len(holes) != 1 {
		t.Fatalf("expected 1 hole, got %d", len(holes))
	}
	if holes[0].Par != 3 {
		t.Fatalf("expected out-of-range par replaced with default 3, got %d", holes[0].Par)
	}
}

func TestNearbyHolesDropsOutliers(t *testing.T) {
	center := geo.Point{Lat: 36.5683, Lon: -121.9496}
	holes := []pipeline.Hole{
		{Number: 1, Coordinates: pipeline.Coordinates{Lat: 36.5683, Lon: -121.9496}},
		{Number: 2, Coordinates: pipeline.Coordinates{Lat: 36.5690, Lon: -121.9500}},
		// A way centroid roughly 5.5 km north of the course.
		{Number: 3, Coordinates: pipeline.Coordinates{Lat: 36.6183, Lon: -121.9496}},
	}

	kept := collect.NearbyHoles(holes, center, 1000)
	if len(kept) != 2 {
		t.Fatalf("expected outlier dropped, got %d holes", len(kept))
	}
	if kept[0].Number != 1 || kept[1].Number != 2 {
		t.Fatalf("unexpected holes kept: %d,%d", kept[0].Number, kept[1].Number)
	}

	all := collect.NearbyHoles(holes, center, 0)
	if len(all) != 3 {
		t.Fatalf("expected zero radius to keep everything, got %d", len(all))
	}
}

func TestSynthesizeHolesDeterministic(t *testing.T) {
	center := geo.Point{Lat: 36.5683, Lon: -121.9496}

	first := collect.SynthesizeHoles(center, 42)
	second := collect.SynthesizeHoles(center, 42)
	if len(first) != 18 || len(second) != 18 {
		t.Fatalf("expected 18 holes, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Number != i+1 {
			t.Fatalf("expected hole numbers 1..18, got %d at index %d", first[i].Number, i)
		}
		if first[i].Coordinates != second[i].Coordinates || first[i].DistanceMeters != second[i].DistanceMeters {
			t.Fatalf("hole %d differs between runs with the same seed", i+1)
		}
	}

	other := collect.SynthesizeHoles(center, 43)
	same := true
	for i := range first {
		if first[i].Coordinates != other[i].Coordinates {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to produce different layouts")
	}
}
