package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EncodeProfile describes the fixed encoder settings applied to every video.
type EncodeProfile struct {
	Codec      string
	Preset     string
	CRF        int
	MaxBitrate string
	Threads    int
	Width      int
	Height     int
	FPS        int
}

// CaptionStyle describes overlay caption rendering.
type CaptionStyle struct {
	Font     string
	FontSize int
	Color    string
	Position string
	Style    string
}

// Encoder defines the behaviour required by the post-production handler.
type Encoder interface {
	Version(ctx context.Context) (string, error)
	EncodeFrames(ctx context.Context, framesDir, outPath string, profile EncodeProfile) error
	StoryboardVideo(ctx context.Context, title, outPath string, seconds int, profile EncodeProfile) error
	OverlayCaptions(ctx context.Context, videoPath, subtitlePath, outPath string, style CaptionStyle) error
	MixAudio(ctx context.Context, videoPath, musicPath, voicePath, outPath string, musicVolume, voiceVolume, fadeSeconds float64) error
	Thumbnail(ctx context.Context, videoPath, outPath string, atSeconds float64) error
	Duration(ctx context.Context, mediaPath string) (float64, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps encoder CLI interactions.
type Client struct {
	binary        string
	probeBinary   string
	encodeTimeout time.Duration
	exec          Executor
}

// New constructs an encoder client.
func New(binary, probeBinary string, encodeTimeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("encoder binary required")
	}
	probeBinary = strings.TrimSpace(probeBinary)
	if probeBinary == "" {
		probeBinary = "ffprobe"
	}
	client := &Client{
		binary:        binary,
		probeBinary:   probeBinary,
		encodeTimeout: encodeTimeout,
		exec:          commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Version probes the encoder executable and returns its version banner.
func (c *Client) Version(ctx context.Context) (string, error) {
	var banner string
	err := c.exec.Run(ctx, c.binary, []string{"-version"}, func(line string) {
		if banner == "" && strings.TrimSpace(line) != "" {
			banner = strings.TrimSpace(line)
		}
	})
	if err != nil {
		return "", fmt.Errorf("encoder version probe: %w", err)
	}
	return banner, nil
}

// EncodeFrames encodes a numbered PNG frame sequence into a video.
func (c *Client) EncodeFrames(ctx context.Context, framesDir, outPath string, profile EncodeProfile) error {
	if framesDir == "" {
		return errors.New("frames directory required")
	}
	pattern := filepath.Join(framesDir, "frame_%04d.png")

	args := []string{
		"-y",
		"-framerate", strconv.Itoa(profile.FPS),
		"-i", pattern,
		"-c:v", profile.Codec,
		"-preset", profile.Preset,
		"-crf", strconv.Itoa(profile.CRF),
		"-maxrate", profile.MaxBitrate,
		"-bufsize", profile.MaxBitrate,
		"-threads", strconv.Itoa(profile.Threads),
		"-vf", fmt.Sprintf("scale=%d:%d", profile.Width, profile.Height),
		"-pix_fmt", "yuv420p",
		outPath,
	}
	return c.run(ctx, args, "encode frames")
}

// StoryboardVideo renders a single-card title video with a silent audio
// track. Used when no rendered frames exist.
func (c *Client) StoryboardVideo(ctx context.Context, title, outPath string, seconds int, profile EncodeProfile) error {
	if seconds <= 0 {
		seconds = 30
	}
	background := fmt.Sprintf("color=c=0x1a3a1a:s=%dx%d:d=%d:r=%d", profile.Width, profile.Height, seconds, profile.FPS)
	drawtext := fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=72:x=(w-text_w)/2:y=(h-text_h)/2",
		escapeDrawtext(title),
	)

	args := []string{
		"-y",
		"-f", "lavfi", "-i", background,
		"-f", "lavfi", "-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=44100:d=%d", seconds),
		"-vf", drawtext,
		"-c:v", profile.Codec,
		"-preset", profile.Preset,
		"-crf", strconv.Itoa(profile.CRF),
		"-c:a", "aac",
		"-shortest",
		"-pix_fmt", "yuv420p",
		outPath,
	}
	return c.run(ctx, args, "storyboard video")
}

// OverlayCaptions burns a subtitle file into the video using the configured
// caption style.
func (c *Client) OverlayCaptions(ctx context.Context, videoPath, subtitlePath, outPath string, style CaptionStyle) error {
	alignment := map[string]string{"top": "8", "middle": "5", "bottom": "2"}[style.Position]
	if alignment == "" {
		alignment = "2"
	}
	forceStyle := fmt.Sprintf(
		"FontName=%s,FontSize=%d,PrimaryColour=%s,Alignment=%s",
		style.Font, style.FontSize, assColor(style.Color), alignment,
	)
	filter := fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(subtitlePath), forceStyle)

	args := []string{
		"-y",
		"-i", videoPath,
		"-vf", filter,
		"-c:a", "copy",
		outPath,
	}
	return c.run(ctx, args, "overlay captions")
}

// MixAudio mixes background music and an optional voiceover track into the
// video. Voice and music carry independent gains; the mix lasts as long as
// the longer input. An empty voicePath mixes music only.
func (c *Client) MixAudio(ctx context.Context, videoPath, musicPath, voicePath, outPath string, musicVolume, voiceVolume, fadeSeconds float64) error {
	if musicPath == "" && voicePath == "" {
		return errors.New("no audio inputs to mix")
	}

	args := []string{"-y", "-i", videoPath}
	var filter string
	switch {
	case musicPath != "" && voicePath != "":
		args = append(args, "-i", musicPath, "-i", voicePath)
		filter = fmt.Sprintf(
			"[1:a]volume=%.2f,afade=t=out:st=0:d=%.1f[music];[2:a]volume=%.2f[voice];[music][voice]amix=inputs=2:duration=longest[mix]",
			musicVolume, fadeSeconds, voiceVolume,
		)
	case musicPath != "":
		args = append(args, "-i", musicPath)
		filter = fmt.Sprintf("[1:a]volume=%.2f[mix]", musicVolume)
	default:
		args = append(args, "-i", voicePath)
		filter = fmt.Sprintf("[1:a]volume=%.2f[mix]", voiceVolume)
	}

	args = append(args,
		"-filter_complex", filter,
		"-map", "0:v",
		"-map", "[mix]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	)
	return c.run(ctx, args, "mix audio")
}

// Thumbnail extracts a single frame at the given offset.
func (c *Client) Thumbnail(ctx context.Context, videoPath, outPath string, atSeconds float64) error {
	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.2f", atSeconds),
		"-i", videoPath,
		"-frames:v", "1",
		outPath,
	}
	return c.run(ctx, args, "extract thumbnail")
}

// Duration probes a media file and returns its duration in seconds.
func (c *Client) Duration(ctx context.Context, mediaPath string) (float64, error) {
	var output string
	err := c.exec.Run(ctx, c.probeBinary, []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		mediaPath,
	}, func(line string) {
		if output == "" && strings.TrimSpace(line) != "" {
			output = strings.TrimSpace(line)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}
	duration, err := strconv.ParseFloat(output, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", output, err)
	}
	return duration, nil
}

func (c *Client) run(ctx context.Context, args []string, operation string) error {
	runCtx := ctx
	if c.encodeTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.encodeTimeout)
		defer cancel()
	}
	if err := c.exec.Run(runCtx, c.binary, args, nil); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`, `%`, `\%`)
	return replacer.Replace(text)
}

func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`)
	return replacer.Replace(path)
}

// assColor converts a #RRGGBB color into the &HBBGGRR& form the subtitle
// renderer expects. Unrecognized input passes through white.
func assColor(hex string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return "&HFFFFFF&"
	}
	return "&H" + strings.ToUpper(hex[4:6]+hex[2:4]+hex[0:2]) + "&"
}
