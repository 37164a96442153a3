// Package postprod implements the post-production stage: frame encoding or
// storyboard video, plus independently best-effort captions, audio mix,
// thumbnail, and voiceover enrichments.
package postprod
