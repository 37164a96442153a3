// Package ffmpeg wraps the encoder toolchain: frame-sequence encoding,
// storyboard card videos, caption overlay, audio mixing, thumbnail
// extraction, and media probing.
package ffmpeg
