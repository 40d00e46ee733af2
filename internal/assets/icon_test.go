package assets

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"
)

func TestPNGDecodes(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(PNG()))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestICOWrapsPNG(t *testing.T) {
	ico := ICO()
	if binary.LittleEndian.Uint16(ico[2:4]) != 1 || binary.LittleEndian.Uint16(ico[4:6]) != 1 {
		t.Fatal("bad ICONDIR header")
	}
	size := binary.LittleEndian.Uint32(ico[14:18])
	offset := binary.LittleEndian.Uint32(ico[18:22])
	if int(offset)+int(size) != len(ico) {
		t.Fatalf("entry offset %d size %d does not match length %d", offset, size, len(ico))
	}
	if !bytes.Equal(ico[offset:], PNG()) {
		t.Fatal("ICO payload should be the PNG")
	}
}
