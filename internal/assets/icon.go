// Package assets builds the tray icon.
package assets

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"sync"
)

const iconSize = 32

var (
	iconOnce sync.Once
	iconPNG  []byte
)

// Icon returns the tray icon in the format systray expects for the running
// platform: ICO on Windows, PNG elsewhere.
func Icon() []byte {
	if runtime.GOOS == "windows" {
		return ICO()
	}
	return PNG()
}

// PNG returns the icon as a PNG image.
func PNG() []byte {
	iconOnce.Do(func() {
		var buf bytes.Buffer
		_ = png.Encode(&buf, draw())
		iconPNG = buf.Bytes()
	})
	return iconPNG
}

// ICO wraps the PNG in a single-image ICO container.
func ICO() []byte {
	data := PNG()
	var buf bytes.Buffer
	// ICONDIR: reserved, type 1 (icon), one image.
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.Write([]byte{iconSize, iconSize, 0, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bit count
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(data)
	return buf.Bytes()
}

// draw renders a folder with a camera lens on it.
func draw() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	folder := color.NRGBA{R: 0xf2, G: 0xb1, B: 0x34, A: 0xff}
	tab := color.NRGBA{R: 0xd9, G: 0x96, B: 0x1c, A: 0xff}
	lens := color.NRGBA{R: 0x2b, G: 0x3a, B: 0x55, A: 0xff}

	fill(img, image.Rect(2, 6, 14, 10), tab)
	fill(img, image.Rect(2, 9, 30, 28), folder)

	cx, cy, r := 16, 18, 6
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, lens)
			}
		}
	}
	return img
}

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
