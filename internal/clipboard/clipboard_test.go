package clipboard

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"
)

func TestEncodeDIB(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff})
	img.Set(1, 1, color.RGBA{R: 0xaa, G: 0xbb, B: 0xcc, A: 0xff})

	dib := EncodeDIB(img)
	// 2 pixels * 3 bytes padded to 8 per row.
	if len(dib) != 40+16 {
		t.Fatalf("unexpected length %d", len(dib))
	}
	if w := int32(binary.LittleEndian.Uint32(dib[4:8])); w != 2 {
		t.Fatalf("unexpected width %d", w)
	}
	if bits := binary.LittleEndian.Uint16(dib[14:16]); bits != 24 {
		t.Fatalf("unexpected bit count %d", bits)
	}

	pixels := dib[40:]
	// Bottom-up: image row 1 comes first.
	if got := pixels[3:6]; got[0] != 0xcc || got[1] != 0xbb || got[2] != 0xaa {
		t.Fatalf("unexpected bottom-right pixel % x", got)
	}
	if got := pixels[8:11]; got[0] != 0x33 || got[1] != 0x22 || got[2] != 0x11 {
		t.Fatalf("unexpected top-left pixel % x", got)
	}
}

func TestCopyImageMissingFile(t *testing.T) {
	if err := CopyImage("does-not-exist.png"); err == nil {
		t.Fatal("expected error")
	}
}
