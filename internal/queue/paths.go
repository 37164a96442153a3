package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StagingRoot returns the per-item working directory under the staging dir,
// creating it if needed. The directory name embeds the item identifier so two
// requests for the same course never collide.
func (i *Item) StagingRoot(stagingDir string) (string, error) {
	slug := slugify(i.CourseName)
	if slug == "" {
		slug = "course"
	}
	dir := filepath.Join(stagingDir, fmt.Sprintf("%s-%d", slug, i.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	return dir, nil
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
