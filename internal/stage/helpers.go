package stage

import (
	"fairway/internal/pipeline"
	"fairway/internal/services"
)

// ParseCourseData parses the collected course payload for a queue item.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func ParseCourseData(raw string) (pipeline.CourseData, error) {
	data, err := pipeline.ParseCourseData(raw)
	if err != nil {
		return pipeline.CourseData{}, services.Wrap(
			services.ErrValidation, "stage", "parse course data",
			"Course data missing or invalid; rerun collection", err)
	}
	return data, nil
}

// ParseRenderOutput parses the render payload for a queue item.
func ParseRenderOutput(raw string) (pipeline.RenderOutput, error) {
	out, err := pipeline.ParseRenderOutput(raw)
	if err != nil {
		return pipeline.RenderOutput{}, services.Wrap(
			services.ErrValidation, "stage", "parse render output",
			"Render output missing or invalid; rerun rendering", err)
	}
	return out, nil
}
