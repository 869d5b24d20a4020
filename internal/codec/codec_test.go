package codec

import (
	"testing"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

func TestRegistryLookupByExtension(t *testing.T) {
	r := NewRegistry()
	for _, ext := range []string{"ans", "asc", "xb", "bin", "avt", "pcb", "msg", "ren", "tnd", "adf", "idf", "seq", "ata", "vtx"} {
		if _, err := r.ByExtension(ext); err != nil {
			t.Errorf("expected format registered for %q: %v", ext, err)
		}
	}
}

func TestRegistryUnknownExtension(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ByExtension("xyz"); err == nil {
		t.Fatal("expected an error for an unregistered extension")
	}
}

func TestAsciiRoundTrip(t *testing.T) {
	buf := buffer.NewTextBuffer(5, 2)
	layer := buf.LayersMut()[0]
	for i, ch := range "HELLO" {
		_ = layer.SetChar(i, 0, types.AttributedChar{Ch: ch, Attr: types.DefaultAttribute()}, false)
	}
	out, err := AsciiFormat{}.ToBytes(buf, config.DefaultSaveOptions())
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := AsciiFormat{}.FromBytes(out, config.LoadOptions{DefaultWidth: 5})
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range "HELLO" {
		if c := loaded.CharAt(types.Position{X: i, Y: 0}); c.Ch != want {
			t.Fatalf("cell %d: got %q want %q", i, c.Ch, want)
		}
	}
}

func TestBinRoundTrip(t *testing.T) {
	buf := buffer.NewTextBuffer(4, 3)
	layer := buf.LayersMut()[0]
	attr := types.TextAttribute{Foreground: types.Palette(14), Background: types.Palette(1)}
	_ = layer.SetChar(2, 1, types.AttributedChar{Ch: 'Z', Attr: attr}, false)

	out, err := BinFormat{}.ToBytes(buf, config.DefaultSaveOptions())
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := BinFormat{}.FromBytes(out, config.LoadOptions{DefaultWidth: 4})
	if err != nil {
		t.Fatal(err)
	}
	c := loaded.CharAt(types.Position{X: 2, Y: 1})
	if c.Ch != 'Z' {
		t.Fatalf("got %q want Z", c.Ch)
	}
	if c.Attr.Foreground.Index != 14 || c.Attr.Background.Index != 1 {
		t.Fatalf("attr mismatch: %+v", c.Attr)
	}
}

func TestAnsiFromBytesHelloScenario(t *testing.T) {
	data := []byte("\x1b[1;37;44mHello\r\n")
	buf, err := AnsiFormat{}.FromBytes(data, config.DefaultLoadOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range "Hello" {
		c := buf.CharAt(types.Position{X: i, Y: 0})
		if c.Ch != want {
			t.Fatalf("cell %d: got %q want %q", i, c.Ch, want)
		}
	}
}

func TestPCBoardColorCodes(t *testing.T) {
	data := []byte("@X1FA@X00B")
	buf, err := PCBoardFormat{}.FromBytes(data, config.LoadOptions{DefaultWidth: 10})
	if err != nil {
		t.Fatal(err)
	}
	a := buf.CharAt(types.Position{X: 0, Y: 0})
	if a.Ch != 'A' || a.Attr.Foreground.Index != 0x0F || a.Attr.Background.Index != 1 {
		t.Fatalf("unexpected first cell: %+v", a)
	}
	b := buf.CharAt(types.Position{X: 1, Y: 0})
	if b.Ch != 'B' || b.Attr.Foreground.Index != 0 || b.Attr.Background.Index != 0 {
		t.Fatalf("unexpected second cell: %+v", b)
	}
}

func TestAvatarRepeatAndAttr(t *testing.T) {
	data := []byte{avatarSetAttr, 0x1F, avatarRepeat, 3, 'X'}
	buf, err := AvatarFormat{}.FromBytes(data, config.LoadOptions{DefaultWidth: 10})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		c := buf.CharAt(types.Position{X: i, Y: 0})
		if c.Ch != 'X' {
			t.Fatalf("cell %d: got %q", i, c.Ch)
		}
		if c.Attr.Foreground.Index != 0x0F || c.Attr.Background.Index != 1 {
			t.Fatalf("cell %d attr mismatch: %+v", i, c.Attr)
		}
	}
}

func TestJASCPaletteRoundTrip(t *testing.T) {
	p := &buffer.Palette{Colors: []types.Color{{R: 1, G: 2, B: 3}, {R: 10, G: 20, B: 30}}}
	data := SaveJASCPalette(p)
	colors, err := LoadJASCPalette(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(colors) != 2 || colors[1].G != 20 {
		t.Fatalf("round trip mismatch: %+v", colors)
	}
}

func TestLoadJASCPaletteRejectsBadMagic(t *testing.T) {
	if _, err := LoadJASCPalette([]byte("NOT-A-PALETTE\n")); err == nil {
		t.Fatal("expected an error for a non-JASC file")
	}
}

func TestArtworxRoundTrip(t *testing.T) {
	buf := buffer.NewTextBuffer(80, 1)
	layer := buf.LayersMut()[0]
	_ = layer.SetChar(0, 0, types.AttributedChar{Ch: 'Q', Attr: types.DefaultAttribute()}, false)
	out, err := ArtworxFormat{}.ToBytes(buf, config.DefaultSaveOptions())
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := ArtworxFormat{}.FromBytes(out, config.DefaultLoadOptions())
	if err != nil {
		t.Fatal(err)
	}
	if c := loaded.CharAt(types.Position{X: 0, Y: 0}); c.Ch != 'Q' {
		t.Fatalf("got %q want Q", c.Ch)
	}
}

func TestIceDrawRoundTrip(t *testing.T) {
	buf := buffer.NewTextBuffer(10, 2)
	layer := buf.LayersMut()[0]
	_ = layer.SetChar(3, 1, types.AttributedChar{Ch: 'K', Attr: types.DefaultAttribute()}, false)
	out, err := IceDrawFormat{}.ToBytes(buf, config.DefaultSaveOptions())
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := IceDrawFormat{}.FromBytes(out, config.DefaultLoadOptions())
	if err != nil {
		t.Fatal(err)
	}
	if c := loaded.CharAt(types.Position{X: 3, Y: 1}); c.Ch != 'K' {
		t.Fatalf("got %q want K", c.Ch)
	}
}

func TestTundraDrawRoundTrip(t *testing.T) {
	buf := buffer.NewTextBuffer(4, 1)
	layer := buf.LayersMut()[0]
	attr := types.TextAttribute{Foreground: types.RGB(200, 50, 10)}
	_ = layer.SetChar(1, 0, types.AttributedChar{Ch: 'M', Attr: attr}, false)
	out, err := TundraDrawFormat{}.ToBytes(buf, config.DefaultSaveOptions())
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := TundraDrawFormat{}.FromBytes(out, config.LoadOptions{DefaultWidth: 4})
	if err != nil {
		t.Fatal(err)
	}
	c := loaded.CharAt(types.Position{X: 1, Y: 0})
	if c.Ch != 'M' || c.Attr.Foreground.R != 200 {
		t.Fatalf("unexpected cell: %+v", c)
	}
}
