// Package experience defines the Experience and Asset values the scene engine consumes,
// plus decoders for the JSON, YAML and TOML files the viewer can open.
package experience

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAssetType is returned when an asset type name is not one of the known kinds.
var ErrUnknownAssetType = errors.New("unknown asset type")

// AssetType is the closed set of content kinds an experience can hold.
type AssetType uint8

// Asset types. The zero value is not a valid type.
const (
	Model3D AssetType = iota + 1
	Image
	Video
	Message
	WebContent
)

// NumAssetTypes sizes tables indexed by AssetType.
const NumAssetTypes = int(WebContent) + 1

var typeNames = [NumAssetTypes]string{
	Model3D:    "MODEL_3D",
	Image:      "IMAGE",
	Video:      "VIDEO",
	Message:    "MESSAGE",
	WebContent: "WEB_CONTENT",
}

// typeAliases maps normalized spellings (lowercase, no separators) to types.
var typeAliases = map[string]AssetType{
	"model3d":    Model3D,
	"3dmodel":    Model3D,
	"model":      Model3D,
	"image":      Image,
	"video":      Video,
	"message":    Message,
	"text":       Message,
	"webcontent": WebContent,
	"web":        WebContent,
}

// AllAssetTypes lists every valid type in declaration order.
func AllAssetTypes() []AssetType {
	return []AssetType{Model3D, Image, Video, Message, WebContent}
}

// Valid reports whether t is one of the known kinds.
func (t AssetType) Valid() bool {
	return t >= Model3D && t <= WebContent
}

func (t AssetType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("AssetType(%d)", uint8(t))
	}
	return typeNames[t]
}

// ParseAssetType parses a type name. Matching ignores case and '_', '-', ' '.
func ParseAssetType(s string) (AssetType, error) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
	if t, ok := typeAliases[key]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAssetType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t AssetType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAssetType, uint8(t))
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so JSON, YAML and TOML share one parser.
func (t *AssetType) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		// Left for Experience.normalize to infer from the MIME type.
		*t = 0
		return nil
	}
	v, err := ParseAssetType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// AssetTypeFromMIME guesses a type from a MIME string. ok is false when nothing matches.
func AssetTypeFromMIME(mime string) (AssetType, bool) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return Image, true
	case strings.HasPrefix(mime, "video/"):
		return Video, true
	case strings.HasPrefix(mime, "model/"):
		return Model3D, true
	case mime == "text/html", mime == "application/xhtml+xml":
		return WebContent, true
	case mime == "text/plain":
		return Message, true
	}
	return 0, false
}

// Asset is one content item of an experience.
type Asset struct {
	ID          string    `json:"id" yaml:"id" toml:"id"`
	Name        string    `json:"name" yaml:"name" toml:"name"`
	Type        AssetType `json:"type" yaml:"type" toml:"type"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	TextContent string    `json:"textContent,omitempty" yaml:"text_content,omitempty" toml:"text_content,omitempty"`
	MimeType    string    `json:"mimeType,omitempty" yaml:"mime_type,omitempty" toml:"mime_type,omitempty"`
}

// DisplayName returns the asset name, falling back to its id.
func (a Asset) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.ID != "" {
		return a.ID
	}
	return "Untitled"
}
