// Package clipboard places captured PNGs on the system clipboard.
package clipboard

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
)

var ErrUnsupported = errors.New("image clipboard is not supported on this platform")

// CopyImage decodes the PNG at path and places it on the clipboard.
func CopyImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("decode PNG: %w", err)
	}
	return copyDIB(EncodeDIB(img))
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// EncodeDIB renders img as a bottom-up 24-bit device independent bitmap
// with rows padded to four bytes.
func EncodeDIB(img image.Image) []byte {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	rowSize := ((width*3 + 3) / 4) * 4
	imageSize := rowSize * height

	header := bitmapInfoHeader{
		Size:      40,
		Width:     int32(width),
		Height:    int32(height),
		Planes:    1,
		BitCount:  24,
		SizeImage: uint32(imageSize),
	}

	buf := bytes.NewBuffer(make([]byte, 0, 40+imageSize))
	_ = binary.Write(buf, binary.LittleEndian, header)

	pixels := make([]byte, imageSize)
	for y := 0; y < height; y++ {
		row := (height - 1 - y) * rowSize
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			offset := row + x*3
			pixels[offset] = byte(b >> 8)
			pixels[offset+1] = byte(g >> 8)
			pixels[offset+2] = byte(r >> 8)
		}
	}
	buf.Write(pixels)
	return buf.Bytes()
}
