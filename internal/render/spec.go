package render

import (
	"math"
	"math/rand"

	"fairway/internal/pipeline"
)

// Spec is the complete scene description handed to the renderer: a ground
// plane at course elevation, per-hole geometry with hazard features,
// decorative scatter, and a fixed cinematic camera path.
type Spec struct {
	CourseName  string              `json:"course_name"`
	Seed        int64               `json:"seed"`
	GroundPlane GroundPlane         `json:"ground_plane"`
	Holes       []HoleGeometry      `json:"holes"`
	Scatter     []ScatterObject     `json:"scatter"`
	CameraPath  pipeline.CameraPath `json:"camera_path"`
	Settings    pipeline.RenderSettings `json:"settings"`
}

// GroundPlane is the course terrain base.
type GroundPlane struct {
	ElevationMeters float64 `json:"elevation_meters"`
	SizeMeters      float64 `json:"size_meters"`
	Material        string  `json:"material"`
}

// HoleGeometry describes one hole's procedural geometry.
type HoleGeometry struct {
	Number         int        `json:"number"`
	Par            int        `json:"par"`
	Position       [3]float64 `json:"position"`
	FairwayLength  float64    `json:"fairway_length"`
	GreenRadius    float64    `json:"green_radius"`
	HazardFeatures []string   `json:"hazard_features,omitempty"`
}

// ScatterObject is a decorative object placed around the course.
type ScatterObject struct {
	Kind     string     `json:"kind"`
	Position [3]float64 `json:"position"`
	Scale    float64    `json:"scale"`
}

const (
	groundPlaneSize = 2000.0
	scatterPerHole  = 3
	orbitRadius     = 400.0
	orbitHeight     = 150.0
	defaultFOV      = 50.0
	cameraEasing    = "BEZIER"
	cameraPathName  = "cinematic orbit"
)

// BuildSpec derives the render specification from collected course data.
// Identical inputs always produce an identical specification; all randomness
// flows from the seed.
func BuildSpec(data pipeline.CourseData, seed int64, settings pipeline.RenderSettings) Spec {
	rng := rand.New(rand.NewSource(seed))

	holes := make([]HoleGeometry, 0, len(data.Holes))
	scatter := make([]ScatterObject, 0, len(data.Holes)*scatterPerHole)
	for i, hole := range data.Holes {
		position := holePosition(data.Coordinates, hole, i, len(data.Holes))
		length := hole.DistanceMeters
		if length <= 0 {
			length = 120 + float64(hole.Par-3)*140
		}
		holes = append(holes, HoleGeometry{
			Number:         hole.Number,
			Par:            hole.Par,
			Position:       position,
			FairwayLength:  length,
			GreenRadius:    8 + rng.Float64()*6,
			HazardFeatures: hole.Features,
		})

		for s := 0; s < scatterPerHole; s++ {
			scatter = append(scatter, ScatterObject{
				Kind: scatterKind(rng),
				Position: [3]float64{
					position[0] + (rng.Float64()-0.5)*80,
					position[1] + (rng.Float64()-0.5)*80,
					data.ElevationMeters,
				},
				Scale: 0.8 + rng.Float64()*1.4,
			})
		}
	}

	return Spec{
		CourseName: data.Name,
		Seed:       seed,
		GroundPlane: GroundPlane{
			ElevationMeters: data.ElevationMeters,
			SizeMeters:      groundPlaneSize,
			Material:        "grass",
		},
		Holes:      holes,
		Scatter:    scatter,
		CameraPath: buildCameraPath(data.ElevationMeters, settings.FrameCount),
		Settings:   settings,
	}
}

// buildCameraPath produces the fixed six-keyframe orbit: start position,
// three intermediate arcs, a far pass, and a return to start.
func buildCameraPath(elevation float64, frameCount int) pipeline.CameraPath {
	if frameCount <= 0 {
		frameCount = 250
	}

	keyframes := make([]pipeline.Keyframe, 0, 6)
	for i := 0; i < 6; i++ {
		fraction := float64(i) / 5
		angle := fraction * 2 * math.Pi
		keyframes = append(keyframes, pipeline.Keyframe{
			Frame: int(math.Round(fraction * float64(frameCount-1))),
			Position: [3]float64{
				orbitRadius * math.Cos(angle),
				orbitRadius * math.Sin(angle),
				elevation + orbitHeight,
			},
			Rotation: [3]float64{
				63,
				0,
				angle*180/math.Pi + 90,
			},
			FOV: defaultFOV,
		})
	}

	return pipeline.CameraPath{
		ID:             "orbit-01",
		Name:           cameraPathName,
		Keyframes:      keyframes,
		DurationFrames: frameCount,
		Easing:         cameraEasing,
	}
}

// holePosition maps a hole's geographic offset from the course center onto
// local scene coordinates in meters.
func holePosition(center pipeline.Coordinates, hole pipeline.Hole, index, total int) [3]float64 {
	const metersPerDegreeLat = 111320.0
	dLat := hole.Coordinates.Lat - center.Lat
	dLon := hole.Coordinates.Lon - center.Lon
	if dLat == 0 && dLon == 0 {
		// Provider gave no per-hole coordinate. Fan the hole out evenly so
		// geometry never stacks at the origin.
		angle := 2 * math.Pi * float64(index) / float64(max(total, 1))
		return [3]float64{300 * math.Cos(angle), 300 * math.Sin(angle), 0}
	}
	x := dLon * metersPerDegreeLat * math.Cos(center.Lat*math.Pi/180)
	y := dLat * metersPerDegreeLat
	return [3]float64{x, y, 0}
}

func scatterKind(rng *rand.Rand) string {
	kinds := []string{"tree", "bush", "rock"}
	return kinds[rng.Intn(len(kinds))]
}
