// Package pipeline defines the structured payloads passed between the three
// processing stages.
//
// Each stage consumes the previous stage's payload and produces its own:
// CourseRequest feeds data collection, CourseData feeds model generation, and
// RenderOutput feeds post-production, which terminates in a VideoOutput. The
// payloads are persisted as JSON on the queue item, so a stage never depends
// on in-process state from an earlier stage.
//
// # Lifecycle
//
// The coordinator enqueues a CourseRequest. Data collection fills CourseData
// with coordinates, elevation, and holes, substituting documented defaults for
// anything the providers could not supply. Model generation produces a
// RenderOutput whose Storyboard method tells post-production whether the full
// render or the lightweight fallback ran. Post-production writes the final
// VideoOutput, recording empty-string paths for enrichments that were skipped.
//
// # Entry Points
//
// ParseCourseData/ParseRenderOutput/ParseVideoOutput: load payloads from the
// JSON columns on a queue item. The Encode methods serialize them back.
// Outcome carries per-step degradation state through stage decision tables.
package pipeline
