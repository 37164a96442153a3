package testsupport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with size bytes of filler, creating parent
// directories as needed. A size <= 0 writes a single byte so callers always
// get a non-empty artifact.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	const chunk = 32 * 1024
	filler := bytes.Repeat([]byte{0x42}, chunk)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	for remaining := size; remaining > 0; remaining -= chunk {
		n := int64(chunk)
		if remaining < n {
			n = remaining
		}
		if _, err := f.Write(filler[:n]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// WriteFrames seeds dir with count placeholder frames named the way the
// renderer emits them (frame_0001.png onward) and returns the directory.
func WriteFrames(t testing.TB, dir string, count int) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for i := 1; i <= count; i++ {
		WriteFile(t, filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i)), 64)
	}
	return dir
}
