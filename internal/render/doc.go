// Package render implements the model generation stage. The primary path
// builds a deterministic render specification from collected course data and
// drives the external renderer; every failure short of a broken staging
// directory degrades to a 2-D storyboard asset instead of failing the job.
package render
