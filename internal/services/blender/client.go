package blender

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ProgressUpdate captures renderer frame progress.
type ProgressUpdate struct {
	Frame   int
	Total   int
	Message string
}

// Renderer defines the behaviour required by the rendering handler.
type Renderer interface {
	Version(ctx context.Context) (string, error)
	ProbeGPU(ctx context.Context) (bool, error)
	Render(ctx context.Context, scriptPath, specPath, outputDir string, totalFrames int, progress func(ProgressUpdate)) error
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

// Client wraps renderer CLI interactions.
type Client struct {
	binary        string
	renderTimeout time.Duration
	exec          Executor
}

// New constructs a renderer client.
func New(binary string, renderTimeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("renderer binary required")
	}
	client := &Client{
		binary:        binary,
		renderTimeout: renderTimeout,
		exec:          commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Version probes the renderer executable and returns its version banner.
func (c *Client) Version(ctx context.Context) (string, error) {
	var banner string
	err := c.exec.Run(ctx, c.binary, []string{"--version"}, func(line string) {
		if banner == "" && strings.TrimSpace(line) != "" {
			banner = strings.TrimSpace(line)
		}
	})
	if err != nil {
		return "", fmt.Errorf("renderer version probe: %w", err)
	}
	if banner == "" {
		return "", errors.New("renderer version probe produced no output")
	}
	return banner, nil
}

const gpuProbeExpr = `import bpy
prefs = bpy.context.preferences.addons.get('cycles')
devices = []
if prefs:
    cycles = prefs.preferences
    cycles.refresh_devices()
    devices = [d for d in cycles.devices if d.type != 'CPU']
print('GPU_AVAILABLE' if devices else 'GPU_MISSING')
`

// ProbeGPU runs a throwaway script that enumerates compute devices. A failed
// probe reports GPU unavailable rather than an error so callers can downgrade
// to CPU rendering.
func (c *Client) ProbeGPU(ctx context.Context) (bool, error) {
	available := false
	err := c.exec.Run(ctx, c.binary, []string{
		"--background", "--factory-startup", "--python-expr", gpuProbeExpr,
	}, func(line string) {
		if strings.Contains(line, "GPU_AVAILABLE") {
			available = true
		}
	})
	if err != nil {
		return false, nil
	}
	return available, nil
}

// Render invokes the renderer with the generation script and spec file,
// blocking until the subprocess exits or the render timeout elapses.
func (c *Client) Render(ctx context.Context, scriptPath, specPath, outputDir string, totalFrames int, progress func(ProgressUpdate)) error {
	if scriptPath == "" {
		return errors.New("render script required")
	}
	if specPath == "" {
		return errors.New("render spec required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create render output dir: %w", err)
	}

	renderCtx := ctx
	if c.renderTimeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, c.renderTimeout)
		defer cancel()
	}

	args := []string{
		"--background", "--factory-startup",
		"--python", scriptPath,
		"--",
		"--spec", specPath,
		"--output", outputDir,
	}

	if err := c.exec.Run(renderCtx, c.binary, args, func(line string) {
		if progress == nil {
			return
		}
		if update, ok := parseFrameProgress(line, totalFrames); ok {
			progress(update)
		}
	}); err != nil {
		if errors.Is(renderCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("render timed out after %s: %w", c.renderTimeout, err)
		}
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// parseFrameProgress extracts frame numbers from renderer stdout lines of the
// form "Fra:42 ...".
func parseFrameProgress(line string, totalFrames int) (ProgressUpdate, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "Fra:") {
		return ProgressUpdate{}, false
	}
	rest := strings.TrimPrefix(trimmed, "Fra:")
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end == 0 {
		return ProgressUpdate{}, false
	}
	if end < 0 {
		end = len(rest)
	}
	frame, err := strconv.Atoi(rest[:end])
	if err != nil {
		return ProgressUpdate{}, false
	}
	return ProgressUpdate{Frame: frame, Total: totalFrames, Message: trimmed}, true
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	forward := func(line string) {
		if onStdout != nil {
			onStdout(line)
			return
		}
		fmt.Fprintln(os.Stderr, line)
	}

	wg.Add(2)
	go scan(stdout, forward)
	go scan(stderr, forward)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return err
	}
	return scanErr
}
