package experience

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Experience is an ordered collection of assets shown together in one scene.
type Experience struct {
	ID          string  `json:"id" yaml:"id" toml:"id"`
	Title       string  `json:"title" yaml:"title" toml:"title"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Assets      []Asset `json:"assets" yaml:"assets" toml:"assets"`

	// BaseDir is the directory relative asset URLs resolve against.
	// Set by Load; empty for experiences decoded from memory.
	BaseDir string `json:"-" yaml:"-" toml:"-"`
}

// Format selects a decoder.
type Format int

// Supported encodings.
const (
	JSON Format = iota
	YAML
	TOML
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return 0, fmt.Errorf("unsupported experience file extension %q", filepath.Ext(path))
}

// Decode parses an experience and infers missing asset types from their MIME types.
func Decode(data []byte, format Format) (*Experience, error) {
	var exp Experience
	var err error
	switch format {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		err = dec.Decode(&exp)
	case YAML:
		err = yaml.Unmarshal(data, &exp)
	case TOML:
		err = toml.Unmarshal(data, &exp)
	default:
		return nil, fmt.Errorf("decode experience: unsupported format %v", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %v experience: %w", format, err)
	}
	if err := exp.normalize(); err != nil {
		return nil, err
	}
	return &exp, nil
}

// Load reads and decodes an experience file.
func Load(path string) (*Experience, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experience: %w", err)
	}
	exp, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		exp.BaseDir = filepath.Dir(abs)
	} else {
		exp.BaseDir = filepath.Dir(path)
	}
	return exp, nil
}

func (e *Experience) normalize() error {
	for i := range e.Assets {
		a := &e.Assets[i]
		if a.Type != 0 {
			continue
		}
		t, ok := AssetTypeFromMIME(a.MimeType)
		if !ok {
			return fmt.Errorf("asset %d (%s): %w: no type and no usable mime type", i, a.DisplayName(), ErrUnknownAssetType)
		}
		a.Type = t
	}
	return nil
}

// Issue is a non-fatal problem found by Validate.
type Issue struct {
	Index   int // asset index, -1 for the experience itself
	Message string
}

func (i Issue) String() string {
	if i.Index < 0 {
		return i.Message
	}
	return fmt.Sprintf("asset %d: %s", i.Index, i.Message)
}

// Validate reports data problems the engine tolerates but an author should fix.
func (e *Experience) Validate() []Issue {
	var issues []Issue
	if strings.TrimSpace(e.Title) == "" {
		issues = append(issues, Issue{Index: -1, Message: "experience has no title"})
	}
	if len(e.Assets) == 0 {
		issues = append(issues, Issue{Index: -1, Message: "experience has no assets"})
	}
	seen := make(map[string]int, len(e.Assets))
	for i, a := range e.Assets {
		if a.ID == "" {
			issues = append(issues, Issue{Index: i, Message: "missing id"})
		} else if prev, dup := seen[a.ID]; dup {
			issues = append(issues, Issue{Index: i, Message: fmt.Sprintf("duplicate id %q (also asset %d)", a.ID, prev)})
		} else {
			seen[a.ID] = i
		}
		switch a.Type {
		case Message:
			if strings.TrimSpace(a.TextContent) == "" {
				issues = append(issues, Issue{Index: i, Message: "message has no text content"})
			}
		case Model3D, Image, Video, WebContent:
			if strings.TrimSpace(a.URL) == "" {
				issues = append(issues, Issue{Index: i, Message: fmt.Sprintf("%v asset has no url", a.Type)})
			}
		}
	}
	return issues
}
