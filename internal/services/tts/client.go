package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Synthesizer defines the behaviour required by the post-production handler.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
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

// espeak-ng reads at 175 words per minute when -s is omitted.
const baseWordsPerMinute = 175

// WordsPerMinute converts a 1.0-based speaking-rate multiplier to the
// words-per-minute value the -s flag expects. Non-positive multipliers map
// to the engine's natural rate.
func WordsPerMinute(multiplier float64) int {
	if multiplier <= 0 {
		multiplier = 1
	}
	return int(baseWordsPerMinute * multiplier)
}

// Client wraps an espeak-ng style synthesis binary.
type Client struct {
	binary string
	voice  string
	speed  int
	pitch  int
	exec   Executor
}

// New constructs a speech synthesis client.
func New(binary, voice string, speed, pitch int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("tts binary required")
	}
	client := &Client{
		binary: binary,
		voice:  strings.TrimSpace(voice),
		speed:  speed,
		pitch:  pitch,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Synthesize renders text to a WAV file at outPath.
func (c *Client) Synthesize(ctx context.Context, text, outPath string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("no text to synthesize")
	}
	if outPath == "" {
		return errors.New("output path required")
	}

	args := []string{"-w", outPath}
	if c.voice != "" {
		args = append(args, "-v", c.voice)
	}
	if c.speed > 0 {
		args = append(args, "-s", strconv.Itoa(c.speed))
	}
	if c.pitch > 0 {
		args = append(args, "-p", strconv.Itoa(c.pitch))
	}
	args = append(args, text)

	if _, err := c.exec.Run(ctx, c.binary, args); err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		return errors.New("synthesis produced no audio")
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).CombinedOutput() //nolint:gosec
}
