package icydraw

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

func TestV1RoundTripUncompressed(t *testing.T) {
	buf := buffer.NewTextBuffer(6, 2)
	layer := buf.LayersMut()[0]
	attr := types.TextAttribute{Foreground: types.Palette(12), Background: types.Palette(4)}
	_ = layer.SetChar(2, 1, types.AttributedChar{Ch: 'Q', Attr: attr}, false)

	data, err := SaveV1(buf, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	loaded, _, err := LoadV1(data)
	if err != nil {
		t.Fatal(err)
	}
	c := loaded.CharAt(types.Position{X: 2, Y: 1})
	if c.Ch != 'Q' || c.Attr.Foreground.Index != 12 || c.Attr.Background.Index != 4 {
		t.Fatalf("unexpected cell after v1 roundtrip: %+v", c)
	}
}

func TestV1RoundTripZstdCompressed(t *testing.T) {
	buf := buffer.NewTextBuffer(8, 3)
	layer := buf.LayersMut()[0]
	for x := 0; x < 8; x++ {
		_ = layer.SetChar(x, 1, types.AttributedChar{Ch: 'X', Attr: types.DefaultAttribute()}, false)
	}

	data, err := SaveV1(buf, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	loaded, _, err := LoadV1(data)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 8; x++ {
		if c := loaded.CharAt(types.Position{X: x, Y: 1}); c.Ch != 'X' {
			t.Fatalf("cell %d: got %q want X", x, c.Ch)
		}
	}
}

func TestV1RoundTripRGBAttribute(t *testing.T) {
	buf := buffer.NewTextBuffer(3, 1)
	layer := buf.LayersMut()[0]
	attr := types.TextAttribute{Foreground: types.RGB(200, 30, 40)}
	_ = layer.SetChar(0, 0, types.AttributedChar{Ch: 'R', Attr: attr}, false)

	data, err := SaveV1(buf, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	loaded, _, err := LoadV1(data)
	if err != nil {
		t.Fatal(err)
	}
	c := loaded.CharAt(types.Position{X: 0, Y: 0})
	if c.Attr.Foreground.Kind != types.ColorRGB || c.Attr.Foreground.R != 200 {
		t.Fatalf("rgb attribute lost in roundtrip: %+v", c.Attr.Foreground)
	}
}

func TestLoadV1RejectsFutureVersion(t *testing.T) {
	hdr := icedV1{width: 1, height: 1}.encode()
	binary.LittleEndian.PutUint16(hdr[0:2], 2)
	chunks := []Chunk{
		{Type: "icYD", Data: icYDChunkData("ICED", hdr)},
		{Type: "icYD", Data: icYDChunkData("END", nil)},
	}
	data, err := writeContainer(chunks)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadV1(data); err == nil {
		t.Fatal("expected an error loading a version-2 icydraw file")
	}
}

// buildV0PNG hand-assembles a minimal v0 file: one zTXt ICED chunk (short
// form, no layers) so LoadV0 recognizes it without needing a real v0
// writer (spec §6.1: v0 is read-only in this engine).
func buildV0PNG(t *testing.T) []byte {
	t.Helper()
	iced := make([]byte, 19)
	binary.LittleEndian.PutUint16(iced[0:2], 0) // version 0
	// bytes 2..6 compression placeholder/sixel format/reserved, unused
	iced[6] = 0 // buffer_type = CP437
	iced[7] = 0 // ice_mode = Unlimited... (0)
	iced[8] = 0 // legacy palette_mode
	iced[9] = 0 // font_mode
	binary.LittleEndian.PutUint32(iced[10:14], 4)
	binary.LittleEndian.PutUint32(iced[14:18], 2)

	chunks := []Chunk{
		textChunk(t, "ICED", iced),
		textChunk(t, "END", nil),
	}
	data, err := writeContainer(chunks)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// textChunk builds a zTXt chunk matching splitTextChunk's expected layout:
// keyword, NUL, compression method byte, then zlib-compressed base64 text.
func textChunk(t *testing.T, keyword string, payload []byte) Chunk {
	t.Helper()
	encoded := base64.StdEncoding.EncodeToString(payload)

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write([]byte(encoded)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	out := append([]byte(keyword), 0, 0) // keyword, NUL, compression method 0
	out = append(out, compressed.Bytes()...)
	return Chunk{Type: "zTXt", Data: out}
}

func TestLoadV0RecognizesICEDHeader(t *testing.T) {
	data := buildV0PNG(t)
	buf, _, err := LoadV0(data)
	if err != nil {
		t.Fatal(err)
	}
	d := buf.Dimensions()
	if d.Width != 4 || d.Height != 2 {
		t.Fatalf("unexpected dimensions: %+v", d)
	}
}

func TestLoadV0RejectsNonIcyDrawPNG(t *testing.T) {
	data, err := writeContainer(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadV0(data); err == nil {
		t.Fatal("expected an error for a PNG with no ICED v0 chunk")
	}
}
