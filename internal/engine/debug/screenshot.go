// Package debug holds developer conveniences around the viewer, currently
// frame screenshots.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// Screenshots writes captured frames as PNG files.
type Screenshots struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewScreenshots creates a writer that saves into outputDir. An empty
// prefix becomes "arviewer".
func NewScreenshots(outputDir, prefix string) *Screenshots {
	return &Screenshots{
		outputDir: outputDir,
		prefix:    Slug(prefix, "arviewer"),
		now:       time.Now,
	}
}

// SetPrefix changes the file name prefix, typically to the experience name.
func (s *Screenshots) SetPrefix(prefix string) {
	s.prefix = Slug(prefix, "arviewer")
}

// SetOutputDir sets the output directory for screenshots.
func (s *Screenshots) SetOutputDir(dir string) {
	s.outputDir = dir
}

// Filename returns the path the next screenshot would be written to.
func (s *Screenshots) Filename() string {
	name := fmt.Sprintf("%s_%s.png", s.prefix, s.now().Format("2006-01-02_15-04-05.000"))
	if s.outputDir != "" {
		name = filepath.Join(s.outputDir, name)
	}
	return name
}

// Save encodes img and returns the written path.
func (s *Screenshots) Save(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no image to save")
	}
	if s.outputDir != "" {
		if err := os.MkdirAll(s.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := s.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		os.Remove(filename)
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing file: %w", err)
	}
	return filename, nil
}

// Slug lowercases name and keeps letters and digits, joining runs of
// anything else with a single dash.
func Slug(name, fallback string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}
