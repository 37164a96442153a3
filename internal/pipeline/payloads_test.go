package pipeline

import (
	"strings"
	"testing"
)

func TestDefaultParBands(t *testing.T) {
	cases := []struct {
		hole int
		par  int
	}{
		{1, 3}, {4, 3}, {5, 4}, {14, 4}, {15, 5}, {18, 5}, {19, 5},
	}
	for _, tc := range cases {
		if got := DefaultPar(tc.hole); got != tc.par {
			t.Errorf("hole %d: expected par %d, got %d", tc.hole, tc.par, got)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := CourseData{
		Name:  "Pebble Beach",
		Holes: []Hole{{Number: 1, Par: 3}, {Number: 2, Par: 4}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid data, got %v", err)
	}

	noName := valid
	noName.Name = "  "
	if err := noName.Validate(); err == nil {
		t.Fatal("expected error for empty name")
	}

	noHoles := valid
	noHoles.Holes = nil
	if err := noHoles.Validate(); err == nil {
		t.Fatal("expected error for missing holes")
	}

	unsorted := valid
	unsorted.Holes = []Hole{{Number: 2}, {Number: 1}}
	if err := unsorted.Validate(); err == nil {
		t.Fatal("expected error for unsorted holes")
	}
}

func TestSortHoles(t *testing.T) {
	holes := []Hole{{Number: 9}, {Number: 1}, {Number: 4}}
	SortHoles(holes)
	if holes[0].Number != 1 || holes[1].Number != 4 || holes[2].Number != 9 {
		t.Fatalf("unexpected order %v", holes)
	}
}

func TestParseCourseRequest(t *testing.T) {
	req, err := ParseCourseRequest(`{"course_name":"Pebble Beach","seed":42}`)
	if err != nil {
		t.Fatalf("ParseCourseRequest failed: %v", err)
	}
	if req.CourseName != "Pebble Beach" || req.Seed != 42 || req.Coordinates != nil {
		t.Fatalf("unexpected request %+v", req)
	}

	if _, err := ParseCourseRequest(""); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, err := ParseCourseRequest(`{"seed":1}`); err == nil {
		t.Fatal("expected error for missing course name")
	}
	if _, err := ParseCourseRequest(`{broken`); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestRenderOutputStoryboard(t *testing.T) {
	primary := RenderOutput{ModelPath: "course.glb"}
	if fallback, _ := primary.Storyboard(); fallback {
		t.Fatal("expected no storyboard for primary render")
	}

	tagged := RenderOutput{FallbackUsed: true, FallbackReason: "renderer unreachable"}
	fallback, reason := tagged.Storyboard()
	if !fallback || reason != "renderer unreachable" {
		t.Fatalf("unexpected storyboard decision %v %q", fallback, reason)
	}

	blank := RenderOutput{FallbackUsed: true, FallbackReason: "  "}
	_, reason = blank.Storyboard()
	if reason != "render fallback" {
		t.Fatalf("expected default reason, got %q", reason)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data := CourseData{
		Name:            "Pebble Beach",
		Coordinates:     Coordinates{Lat: 36.5683, Lon: -121.9496},
		ElevationMeters: 20,
		Holes:           []Hole{{Number: 1, Par: 3, Features: []string{"water"}}},
		Amenities:       []string{"clubhouse"},
	}
	encoded, err := data.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(encoded, `"name":"Pebble Beach"`) {
		t.Fatalf("unexpected encoding %s", encoded)
	}

	decoded, err := ParseCourseData(encoded)
	if err != nil {
		t.Fatalf("ParseCourseData failed: %v", err)
	}
	if decoded.Name != data.Name || len(decoded.Holes) != 1 || decoded.Holes[0].Features[0] != "water" {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestOutcome(t *testing.T) {
	ok := Ok(3.5)
	if ok.Degraded() || ok.Reason() != "" || ok.Value != 3.5 {
		t.Fatalf("unexpected ok outcome %+v", ok)
	}
	degraded := Degraded(0.0, "provider down")
	if !degraded.Degraded() || degraded.Reason() != "provider down" {
		t.Fatalf("unexpected degraded outcome %+v", degraded)
	}
}
