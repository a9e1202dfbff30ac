package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types handled by DecodeTGA.
const (
	tgaTrueColor    = 2
	tgaGray         = 3
	tgaTrueColorRLE = 10
	tgaGrayRLE      = 11
)

const tgaHeaderSize = 18

var errTGATruncated = errors.New("tga: data truncated")

type tgaHeader struct {
	idLength     int
	colorMapType byte
	imageType    byte
	width        int
	height       int
	bpp          int
	topToBottom  bool
	rightToLeft  bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, errTGATruncated
	}
	h := tgaHeader{
		idLength:     int(data[0]),
		colorMapType: data[1],
		imageType:    data[2],
		width:        int(data[12]) | int(data[13])<<8,
		height:       int(data[14]) | int(data[15])<<8,
		bpp:          int(data[16]),
		topToBottom:  data[17]&0x20 != 0,
		rightToLeft:  data[17]&0x10 != 0,
	}
	if h.colorMapType != 0 {
		return h, fmt.Errorf("tga: color-mapped images not supported")
	}
	switch h.imageType {
	case tgaTrueColor, tgaTrueColorRLE:
		if h.bpp != 24 && h.bpp != 32 {
			return h, fmt.Errorf("tga: unsupported true-color depth %d", h.bpp)
		}
	case tgaGray, tgaGrayRLE:
		if h.bpp != 8 && h.bpp != 16 {
			return h, fmt.Errorf("tga: unsupported grayscale depth %d", h.bpp)
		}
	default:
		return h, fmt.Errorf("tga: unsupported image type %d", h.imageType)
	}
	if h.width == 0 || h.height == 0 {
		return h, fmt.Errorf("tga: empty image")
	}
	return h, nil
}

func (h tgaHeader) gray() bool { return h.imageType == tgaGray || h.imageType == tgaGrayRLE }
func (h tgaHeader) rle() bool  { return h.imageType == tgaTrueColorRLE || h.imageType == tgaGrayRLE }

// pixel converts one stored pixel (BGR(A) or gray(+alpha)) to RGBA.
func (h tgaHeader) pixel(p []byte) [4]byte {
	if h.gray() {
		a := byte(255)
		if len(p) == 2 {
			a = p[1]
		}
		return [4]byte{p[0], p[0], p[0], a}
	}
	a := byte(255)
	if len(p) == 4 {
		a = p[3]
	}
	return [4]byte{p[2], p[1], p[0], a}
}

// DecodeTGA decodes a Truevision TGA image: true-color (24/32 bit) or
// grayscale (8/16 bit), raw or run-length encoded.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}
	src := data[offset:]
	size := h.bpp / 8
	count := h.width * h.height

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	put := func(i int, c [4]byte) {
		x, y := i%h.width, i/h.width
		if h.rightToLeft {
			x = h.width - 1 - x
		}
		if !h.topToBottom {
			y = h.height - 1 - y
		}
		copy(img.Pix[img.PixOffset(x, y):], c[:])
	}

	if !h.rle() {
		if len(src) < count*size {
			return nil, errTGATruncated
		}
		for i := 0; i < count; i++ {
			put(i, h.pixel(src[i*size:(i+1)*size]))
		}
		return img, nil
	}

	for i, pos := 0, 0; i < count; {
		if pos >= len(src) {
			return nil, errTGATruncated
		}
		packet := src[pos]
		pos++
		n := int(packet&0x7f) + 1
		if i+n > count {
			n = count - i
		}

		if packet&0x80 != 0 {
			if pos+size > len(src) {
				return nil, errTGATruncated
			}
			c := h.pixel(src[pos : pos+size])
			pos += size
			for ; n > 0; n-- {
				put(i, c)
				i++
			}
			continue
		}

		if pos+n*size > len(src) {
			return nil, errTGATruncated
		}
		for ; n > 0; n-- {
			put(i, h.pixel(src[pos:pos+size]))
			pos += size
			i++
		}
	}
	return img, nil
}
