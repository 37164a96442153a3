package collect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fairway/internal/config"
	"fairway/internal/geo"
	"fairway/internal/logging"
	"fairway/internal/notifications"
	"fairway/internal/pipeline"
	"fairway/internal/queue"
	"fairway/internal/services"
	"fairway/internal/services/elevation"
	"fairway/internal/services/nominatim"
	"fairway/internal/services/overpass"
	"fairway/internal/stage"
)

// Geocoder resolves free-form queries to coordinate candidates.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]nominatim.Result, error)
}

// ElevationLookup resolves terrain elevation for a coordinate.
type ElevationLookup interface {
	Lookup(ctx context.Context, lat, lon float64) (float64, error)
}

// FeatureSource fetches tagged map features inside a bounding box.
type FeatureSource interface {
	CourseFeatures(ctx context.Context, box geo.BoundingBox) ([]overpass.Element, error)
}

// Collector manages the data collection workflow.
type Collector struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	geocoder Geocoder
	terrain  ElevationLookup
	features FeatureSource
	notifier notifications.Service
}

// NewCollector constructs the collection handler using default dependencies.
func NewCollector(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Collector {
	geocoder, err := nominatim.New(cfg.Geocoding.BaseURL, time.Duration(cfg.Geocoding.RequestTimeout)*time.Second, nil)
	if err != nil {
		logger.Warn("geocoding client unavailable", logging.Error(err))
	}
	terrain, err := elevation.New(
		cfg.Elevation.BaseURL,
		time.Duration(cfg.Elevation.RequestTimeout)*time.Second,
		cfg.Elevation.BatchSize,
		time.Duration(cfg.Elevation.BatchDelayMS)*time.Millisecond,
		nil,
	)
	if err != nil {
		logger.Warn("elevation client unavailable", logging.Error(err))
	}
	features, err := overpass.New(cfg.MapFeatures.BaseURL, time.Duration(cfg.MapFeatures.RequestTimeout)*time.Second, nil)
	if err != nil {
		logger.Warn("map feature client unavailable", logging.Error(err))
	}
	return NewCollectorWithDependencies(cfg, store, logger, geocoder, terrain, features, notifications.NewService(cfg))
}

// NewCollectorWithDependencies allows injecting all collaborators (used in tests).
func NewCollectorWithDependencies(
	cfg *config.Config,
	store *queue.Store,
	logger *slog.Logger,
	geocoder Geocoder,
	terrain ElevationLookup,
	features FeatureSource,
	notifier notifications.Service,
) *Collector {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "collector"))
	}
	return &Collector{
		store:    store,
		cfg:      cfg,
		logger:   stageLogger,
		geocoder: geocoder,
		terrain:  terrain,
		features: features,
		notifier: notifier,
	}
}

func (c *Collector) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Collecting"
	}
	item.ProgressMessage = "Starting data collection"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info("starting collection preparation", logging.String("course_name", strings.TrimSpace(item.CourseName)))
	return nil
}

func (c *Collector) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)

	req, err := pipeline.ParseCourseRequest(item.RequestJSON)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, "collect", "parse course request",
			"Course request missing or invalid; re-add the course", err)
	}

	c.applyProgress(ctx, item, "Collecting", "Resolving coordinates", 10)
	coords := c.resolveCoordinates(ctx, req)
	if coords.Degraded() {
		logger.Warn("geocoding fell back to configured coordinates",
			logging.String(logging.FieldFallback, coords.Reason()),
			logging.String("course_name", req.CourseName))
	}

	c.applyProgress(ctx, item, "Collecting", "Looking up elevation", 35)
	elev := c.resolveElevation(ctx, coords.Value)
	if elev.Degraded() {
		logger.Warn("elevation fell back to flat plane",
			logging.String(logging.FieldFallback, elev.Reason()))
	}

	c.applyProgress(ctx, item, "Collecting", "Fetching map features", 55)
	holes, amenities := c.resolveLayout(ctx, req, coords.Value, logger)

	title := cases.Title(language.English)
	data := pipeline.CourseData{
		Name:            title.String(strings.ToLower(strings.TrimSpace(req.CourseName))),
		Coordinates:     coords.Value,
		ElevationMeters: elev.Value,
		Holes:           holes.Value,
		Amenities:       amenities,
	}
	if err := data.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "collect", "validate course data",
			"Collected course data failed validation", err)
	}

	encoded, err := data.Encode()
	if err != nil {
		return services.Wrap(services.ErrTransient, "collect", "encode course data",
			"Failed to serialize collected course data", err)
	}
	item.CourseDataJSON = encoded
	item.ProgressStage = "Collected"
	item.ProgressPercent = 100
	item.ProgressMessage = "Course data collected"

	logger.Info("collection completed",
		logging.String("course_name", data.Name),
		logging.Int("holes", len(data.Holes)),
		logging.Bool("coordinates_fallback", coords.Degraded()),
		logging.Bool("elevation_fallback", elev.Degraded()),
		logging.Bool("holes_synthesized", holes.Degraded()))

	if c.notifier != nil {
		if err := c.notifier.NotifyCollectionCompleted(ctx, data.Name, len(data.Holes)); err != nil {
			logger.Warn("collection notification failed", logging.Error(err))
		}
	}
	return nil
}

// resolveCoordinates geocodes the course name unless the request already
// carries coordinates. Every failure degrades to the configured fallback pair.
func (c *Collector) resolveCoordinates(ctx context.Context, req pipeline.CourseRequest) pipeline.Outcome[pipeline.Coordinates] {
	if req.Coordinates != nil {
		return pipeline.Ok(*req.Coordinates)
	}

	fallback := pipeline.Coordinates{Lat: c.cfg.Geocoding.FallbackLat, Lon: c.cfg.Geocoding.FallbackLon}
	if c.geocoder == nil {
		return pipeline.Degraded(fallback, "geocoding client unavailable")
	}

	query := fmt.Sprintf("%s golf course", strings.TrimSpace(req.CourseName))
	results, err := c.geocoder.Search(ctx, query)
	if err != nil {
		logger := logging.WithContext(ctx, c.logger)
		if errors.Is(err, nominatim.ErrRateLimited) {
			logger.Warn("geocoding provider rate limited",
				logging.Bool(logging.FieldRateLimited, true),
				logging.String("query", query))
		}
		return pipeline.Degraded(fallback, fmt.Sprintf("geocoding failed: %v", err))
	}

	best := nominatim.Best(results)
	return pipeline.Ok(pipeline.Coordinates{Lat: best.Lat, Lon: best.Lon})
}

// resolveElevation looks up terrain height. Every failure degrades to zero.
func (c *Collector) resolveElevation(ctx context.Context, coords pipeline.Coordinates) pipeline.Outcome[float64] {
	if c.terrain == nil {
		return pipeline.Degraded(0.0, "elevation client unavailable")
	}
	elev, err := c.terrain.Lookup(ctx, coords.Lat, coords.Lon)
	if err != nil {
		logger := logging.WithContext(ctx, c.logger)
		if errors.Is(err, elevation.ErrRateLimited) {
			logger.Warn("elevation provider rate limited", logging.Bool(logging.FieldRateLimited, true))
		}
		return pipeline.Degraded(0.0, fmt.Sprintf("elevation lookup failed: %v", err))
	}
	return pipeline.Ok(elev)
}

// resolveLayout fetches map features and parses holes from them. Zero parsed
// holes, or any provider failure, degrades to a synthesized 18-hole layout.
func (c *Collector) resolveLayout(ctx context.Context, req pipeline.CourseRequest, coords pipeline.Coordinates, logger *slog.Logger) (pipeline.Outcome[[]pipeline.Hole], []string) {
	center := geo.Point{Lat: coords.Lat, Lon: coords.Lon}

	if c.features == nil {
		return pipeline.Degraded(SynthesizeHoles(center, req.Seed), "map feature client unavailable"), nil
	}

	box := geo.BoundAround(center, c.cfg.MapFeatures.RadiusMeters)
	elements, err := c.features.CourseFeatures(ctx, box)
	if err != nil {
		if errors.Is(err, overpass.ErrRateLimited) {
			logger.Warn("map feature provider rate limited", logging.Bool(logging.FieldRateLimited, true))
		}
		return pipeline.Degraded(SynthesizeHoles(center, req.Seed), fmt.Sprintf("map feature query failed: %v", err)), nil
	}

	holes, amenities := ParseFeatures(elements)
	holes = NearbyHoles(holes, center, c.cfg.MapFeatures.RadiusMeters)
	if len(holes) == 0 {
		logger.Warn("no holes parsed from map features",
			logging.String(logging.FieldFallback, "synthesized 18-hole layout"),
			logging.Int("elements", len(elements)))
		return pipeline.Degraded(SynthesizeHoles(center, req.Seed), "no holes in map features"), amenities
	}
	return pipeline.Ok(holes), amenities
}

// HealthCheck verifies collection dependencies.
func (c *Collector) HealthCheck(ctx context.Context) stage.Health {
	name := stage.CollectorName
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if c.geocoder == nil {
		return stage.Unhealthy(name, "geocoding client unavailable")
	}
	if c.terrain == nil {
		return stage.Unhealthy(name, "elevation client unavailable")
	}
	if c.features == nil {
		return stage.Unhealthy(name, "map feature client unavailable")
	}
	return stage.Healthy(name)
}

func (c *Collector) applyProgress(ctx context.Context, item *queue.Item, stageLabel, message string, percent float64) {
	item.SetProgress(stageLabel, message, percent)
	if c.store == nil {
		return
	}
	if err := c.store.UpdateProgress(ctx, item); err != nil {
		logging.WithContext(ctx, c.logger).Warn("failed to persist progress", logging.Error(err))
	}
}
