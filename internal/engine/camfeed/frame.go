package camfeed

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/clone"
)

// V4L2 fourcc codes the capture path understands.
const (
	FormatMJPEG uint32 = 0x47504A4D // 'MJPG'
	FormatYUYV  uint32 = 0x56595559 // 'YUYV'
)

// decodeFrame turns a raw capture buffer into an RGBA image.
func decodeFrame(format uint32, data []byte, width, height int) (*image.RGBA, error) {
	switch format {
	case FormatMJPEG:
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode mjpeg frame: %w", err)
		}
		return clone.AsRGBA(img), nil
	case FormatYUYV:
		return yuyvToRGBA(data, width, height)
	}
	return nil, fmt.Errorf("unsupported pixel format %#x", format)
}

// yuyvToRGBA converts packed YUYV 4:2:2 (BT.601, limited range).
func yuyvToRGBA(data []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || width%2 != 0 {
		return nil, fmt.Errorf("invalid yuyv frame size %dx%d", width, height)
	}
	if len(data) < width*height*2 {
		return nil, fmt.Errorf("short yuyv frame: %d bytes for %dx%d", len(data), width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := data[y*width*2:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < width; x += 2 {
			y0 := int32(src[x*2])
			u := int32(src[x*2+1]) - 128
			y1 := int32(src[x*2+2])
			v := int32(src[x*2+3]) - 128
			putRGB(dst[x*4:], y0, u, v)
			putRGB(dst[x*4+4:], y1, u, v)
		}
	}
	return img, nil
}

func putRGB(dst []byte, y, u, v int32) {
	c := (y - 16) * 298
	dst[0] = clampByte((c + 409*v + 128) >> 8)
	dst[1] = clampByte((c - 100*u - 208*v + 128) >> 8)
	dst[2] = clampByte((c + 516*u + 128) >> 8)
	dst[3] = 0xff
}

func clampByte(x int32) byte {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return byte(x)
}

// rankDevices orders candidate devices by how well their card name matches
// the wanted facing. Ties keep the configured order.
func rankDevices(names []string, facing string) []int {
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	score := func(name string) int {
		name = strings.ToLower(name)
		var words []string
		switch facing {
		case "environment":
			words = []string{"back", "rear", "environment", "world"}
		case "user":
			words = []string{"front", "user", "face", "integrated"}
		}
		for _, w := range words {
			if strings.Contains(name, w) {
				return 0
			}
		}
		return 1
	}
	sort.SliceStable(order, func(a, b int) bool {
		return score(names[order[a]]) < score(names[order[b]])
	})
	return order
}
