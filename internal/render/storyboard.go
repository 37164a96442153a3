package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"fairway/internal/pipeline"
)

const storyboardFileName = "storyboard.svg"

// WriteStoryboard draws the 2-D fallback asset: a course outline with one
// marker per hole. It must succeed in circumstances where the renderer just
// failed, so it depends on nothing beyond a writable staging directory.
func WriteStoryboard(data pipeline.CourseData, stagingDir string) (string, error) {
	const (
		width   = 1920
		height  = 1080
		centerX = float64(width) / 2
		centerY = float64(height) / 2
		radius  = 400.0
	)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", width, height, width, height)
	fmt.Fprintf(&b, `  <rect width="%d" height="%d" fill="#1a3a1a"/>`+"\n", width, height)
	fmt.Fprintf(&b, `  <ellipse cx="%.0f" cy="%.0f" rx="%.0f" ry="%.0f" fill="#2d5a27" stroke="#8fbc8f" stroke-width="4"/>`+"\n",
		centerX, centerY, radius*1.1, radius*0.8)

	for i, hole := range data.Holes {
		angle := 2 * math.Pi * float64(i) / float64(len(data.Holes))
		x := centerX + radius*math.Cos(angle)
		y := centerY + radius*0.7*math.Sin(angle)
		fmt.Fprintf(&b, `  <circle cx="%.0f" cy="%.0f" r="18" fill="#f5f5dc" stroke="#333" stroke-width="2"/>`+"\n", x, y)
		fmt.Fprintf(&b, `  <text x="%.0f" y="%.0f" font-family="sans-serif" font-size="18" fill="#333" text-anchor="middle">%d</text>`+"\n",
			x, y+6, hole.Number)
	}

	fmt.Fprintf(&b, `  <text x="%.0f" y="80" font-family="sans-serif" font-size="56" fill="#f5f5dc" text-anchor="middle">%s</text>`+"\n",
		centerX, escapeXML(data.Name))
	b.WriteString("</svg>\n")

	path := filepath.Join(stagingDir, storyboardFileName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write storyboard: %w", err)
	}
	return path, nil
}

func escapeXML(text string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(text)
}
