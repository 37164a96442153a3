package collect_test

import (
	"context"
	"errors"
	"testing"

	"fairway/internal/collect"
	"fairway/internal/geo"
	"fairway/internal/logging"
	"fairway/internal/pipeline"
	"fairway/internal/services/nominatim"
	"fairway/internal/services/overpass"
	"fairway/internal/testsupport"
)

type fakeGeocoder struct {
	results []nominatim.Result
	err     error
	calls   int
}

func (f *fakeGeocoder) Search(ctx context.Context, query string) ([]nominatim.Result, error) {
	f.calls++
	return f.results, f.err
}

type fakeTerrain struct {
	value float64
	err   error
}

func (f *fakeTerrain) Lookup(ctx context.Context, lat, lon float64) (float64, error) {
	return f.value, f.err
}

type fakeFeatures struct {
	elements []overpass.Element
	err      error
}

func (f *fakeFeatures) CourseFeatures(ctx context.Context, box geo.BoundingBox) ([]overpass.Element, error) {
	return f.elements, f.err
}

func holeElement(number, par int, lat, lon float64) overpass.Element {
	return overpass.Element{
		Type: "node",
		ID:   int64(number),
		Lat:  lat,
		Lon:  lon,
		Tags: map[string]string{
			"golf": "hole",
			"ref":  string(rune('0' + number)),
			"par":  string(rune('0' + par)),
		},
	}
}

func TestExecuteCollectsCourseData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewCourse(t, store, "pebble beach golf links", 42)

	geocoder := &fakeGeocoder{results: []nominatim.Result{
		{Lat: 36.5673, Lon: -121.9500, DisplayName: "Pebble Beach", Importance: 0.8},
		{Lat: 10, Lon: 10, DisplayName: "Elsewhere", Importance: 0.2},
	}}
	terrain := &fakeTerrain{value: 22.5}
	features := &fakeFeatures{elements: []overpass.Element{
		holeElement(2, 4, 36.5674, -121.9501),
		holeElement(1, 3, 36.5675, -121.9502),
		{Type: "node", ID: 99, Tags: map[string]string{"golf": "clubhouse"}},
	}}

	collector := collect.NewCollectorWithDependencies(cfg, store, logging.NewNop(), geocoder, terrain, features, nil)
	if err := collector.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	data, err := pipeline.ParseCourseData(item.CourseDataJSON)
	if err != nil {
		t.Fatalf("ParseCourseData failed: %v", err)
	}
	if data.Name != "Pebble Beach Golf Links" {
		t.Fatalf("expected title-cased name, got %q", data.Name)
	}
	if data.Coordinates.Lat != 36.5673 || data.Coordinates.Lon != -121.9500 {
		t.Fatalf("expected highest-importance candidate, got %+v", data.Coordinates)
	}
	if data.ElevationMeters != 22.5 {
		t.Fatalf("expected elevation 22.5, got %f", data.ElevationMeters)
	}
	if len(data.Holes) != 2 {
		t.Fatalf("expected 2 holes, got %d", len(data.Holes))
	}
	if data.Holes[0].Number != 1 || data.Holes[1].Number != 2 {
		t.Fatalf("expected holes sorted by number, got %d,%d", data.Holes[0].Number, data.Holes[1].Number)
	}
	if len(data.Amenities) != 1 || data.Amenities[0] != "clubhouse" {
		t.Fatalf("expected clubhouse amenity, got %v", data.Amenities)
	}
	if item.ProgressPercent != 100 {
		t.Fatalf("expected progress 100, got %f", item.ProgressPercent)
	}
}

func TestExecuteGeocodeFailureFallsBackToConfiguredCoordinates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewCourse(t, store, "Unknown Valley", 7)

	geocoder := &fakeGeocoder{err: nominatim.ErrRateLimited}
	terrain := &fakeTerrain{value: 5}
	features := &fakeFeatures{elements: nil}

	collector := collect.NewCollectorWithDependencies(cfg, store, logging.NewNop(), geocoder, terrain, features, nil)
	if err := collector.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute should degrade rather than fail: %v", err)
	}

	data, err := pipeline.ParseCourseData(item.CourseDataJSON)
	if err != nil {
		t.Fatalf("ParseCourseData failed: %v", err)
	}
	if data.Coordinates.Lat != cfg.Geocoding.FallbackLat || data.Coordinates.Lon != cfg.Geocoding.FallbackLon {
		t.Fatalf("expected fallback coordinates, got %+v", data.Coordinates)
	}
	if len(data.Holes) != 18 {
		t.Fatalf("expected synthesized 18-hole layout, got %d holes", len(data.Holes))
	}
}

func TestExecuteSkipsGeocodingWhenCoordinatesProvided(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	req := pipeline.CourseRequest{
		CourseName:  "Augusta National",
		Coordinates: &pipeline.Coordinates{Lat: 33.5021, Lon: -82.0226},
		Seed:        1,
	}
	encoded, err := req.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	item, err := store.NewCourse(context.Background(), req.CourseName, req.Seed, encoded)
	if err != nil {
		t.Fatalf("NewCourse failed: %v", err)
	}

	geocoder := &fakeGeocoder{err: errors.New("should not be called")}
	collector := collect.NewCollectorWithDependencies(
		cfg, store, logging.NewNop(), geocoder, &fakeTerrain{value: 100}, &fakeFeatures{}, nil)
	if err := collector.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if geocoder.calls != 0 {
		t.Fatalf("expected geocoder to be skipped, got %d calls", geocoder.calls)
	}

	data, err := pipeline.ParseCourseData(item.CourseDataJSON)
	if err != nil {
		t.Fatalf("ParseCourseData failed: %v", err)
	}
	if data.Coordinates.Lat != 33.5021 {
		t.Fatalf("expected provided coordinates, got %+v", data.Coordinates)
	}
}

func TestExecuteElevationFailureDegradesToZero(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewCourse(t, store, "Hill Course", 3)

	geocoder := &fakeGeocoder{results: []nominatim.Result{{Lat: 1, Lon: 2, Importance: 1}}}
	terrain := &fakeTerrain{err: errors.New("provider down")}
	collector := collect.NewCollectorWithDependencies(
		cfg, store, logging.NewNop(), geocoder, terrain, &fakeFeatures{}, nil)
	if err := collector.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	data, err := pipeline.ParseCourseData(item.CourseDataJSON)
	if err != nil {
		t.Fatalf("ParseCourseData failed: %v", err)
	}
	if data.ElevationMeters != 0 {
		t.Fatalf("expected flat-plane elevation, got %f", data.ElevationMeters)
	}
}

func TestExecuteNilClientsDegrade(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewCourse(t, store, "Offline Course", 11)

	collector := collect.NewCollectorWithDependencies(
		cfg, store, logging.NewNop(), nil, nil, nil, nil)
	if err := collector.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute should degrade with no clients, got %v", err)
	}

	data, err := pipeline.ParseCourseData(item.CourseDataJSON)
	if err != nil {
		t.Fatalf("ParseCourseData failed: %v", err)
	}
	if data.Coordinates.Lat != cfg.Geocoding.FallbackLat {
		t.Fatalf("expected fallback coordinates, got %+v", data.Coordinates)
	}
	if data.ElevationMeters != 0 {
		t.Fatalf("expected zero elevation, got %f", data.ElevationMeters)
	}
	if len(data.Holes) != 18 {
		t.Fatalf("expected synthesized layout, got %d holes", len(data.Holes))
	}
}

func TestExecuteRejectsMissingRequest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item, err := store.NewCourse(context.Background(), "No Payload", 1, "")
	if err != nil {
		t.Fatalf("NewCourse failed: %v", err)
	}

	collector := collect.NewCollectorWithDependencies(
		cfg, store, logging.NewNop(), &fakeGeocoder{}, &fakeTerrain{}, &fakeFeatures{}, nil)
	if err := collector.Execute(context.Background(), item); err == nil {
		t.Fatal("expected error for missing request payload")
	}
}

func TestHealthCheckReportsMissingClients(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	healthy := collect.NewCollectorWithDependencies(
		cfg, store, logging.NewNop(), &fakeGeocoder{}, &fakeTerrain{}, &fakeFeatures{}, nil)
	if health := healthy.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy collector, got %q", health.Detail)
	}

	degraded := collect.NewCollectorWithDependencies(
		cfg, store, logging.NewNop(), nil, &fakeTerrain{}, &fakeFeatures{}, nil)
	if health := degraded.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy collector without geocoder")
	}
}
