package experience

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "id": "exp-1",
  "title": "Gallery",
  "description": "Three things",
  "assets": [
    {"id": "a", "name": "Duck", "type": "MODEL_3D", "url": "duck.glb"},
    {"id": "b", "name": "Hello", "type": "message", "textContent": "Hello there"},
    {"id": "c", "name": "Poster", "mimeType": "image/png", "url": "https://example.com/p.png"}
  ]
}`

const sampleYAML = `
id: exp-1
title: Gallery
assets:
  - id: a
    name: Duck
    type: 3d_model
    url: duck.glb
  - id: b
    name: Hello
    type: TEXT
    text_content: Hello there
  - id: c
    name: Site
    type: web-content
    url: https://example.com
`

const sampleTOML = `
id = "exp-1"
title = "Gallery"

[[assets]]
id = "a"
name = "Clip"
type = "VIDEO"
url = "clip.mp4"

[[assets]]
id = "b"
name = "Hello"
type = "MESSAGE"
text_content = "Hello there"
`

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		types  []AssetType
	}{
		{"json", sampleJSON, JSON, []AssetType{Model3D, Message, Image}},
		{"yaml", sampleYAML, YAML, []AssetType{Model3D, Message, WebContent}},
		{"toml", sampleTOML, TOML, []AssetType{Video, Message}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := Decode([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, "Gallery", exp.Title)
			require.Len(t, exp.Assets, len(tt.types))
			for i, want := range tt.types {
				assert.Equal(t, want, exp.Assets[i].Type, "asset %d", i)
			}
			assert.Equal(t, "Hello there", exp.Assets[1].TextContent)
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"title":"x","assets":[{"id":"a","type":"HOLOGRAM"}]}`), JSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAssetType)
}

func TestDecodeMissingTypeWithoutMime(t *testing.T) {
	_, err := Decode([]byte(`{"title":"x","assets":[{"id":"a","url":"x.bin"}]}`), JSON)
	assert.ErrorIs(t, err, ErrUnknownAssetType)
}

func TestParseAssetTypeRoundTrip(t *testing.T) {
	for _, typ := range AllAssetTypes() {
		text, err := typ.MarshalText()
		require.NoError(t, err)
		got, err := ParseAssetType(string(text))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := AssetType(0).MarshalText()
	assert.Error(t, err)
}

func TestAssetTypeFromMIME(t *testing.T) {
	tests := map[string]AssetType{
		"image/jpeg":               Image,
		"video/mp4":                Video,
		"model/gltf-binary":        Model3D,
		"text/html; charset=utf-8": WebContent,
		"text/plain":               Message,
	}
	for mime, want := range tests {
		got, ok := AssetTypeFromMIME(mime)
		assert.True(t, ok, mime)
		assert.Equal(t, want, got, mime)
	}
	_, ok := AssetTypeFromMIME("application/octet-stream")
	assert.False(t, ok)
}

func TestLoadSetsBaseDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	exp, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, exp.BaseDir)

	_, err = Load(filepath.Join(dir, "exp.ini"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	exp := &Experience{
		Assets: []Asset{
			{ID: "a", Type: Image},
			{ID: "a", Type: Message, TextContent: "ok"},
			{Type: Message},
		},
	}
	issues := exp.Validate()
	var msgs []string
	for _, is := range issues {
		msgs = append(msgs, is.String())
	}
	assert.Contains(t, msgs, "experience has no title")
	assert.Contains(t, msgs, "asset 0: IMAGE asset has no url")
	assert.Contains(t, msgs, `asset 1: duplicate id "a" (also asset 0)`)
	assert.Contains(t, msgs, "asset 2: missing id")
	assert.Contains(t, msgs, "asset 2: message has no text content")
}
