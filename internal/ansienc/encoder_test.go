package ansienc

import (
	"strings"
	"testing"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

func setChar(b *buffer.TextBuffer, x, y int, ch rune, fg, bg uint8) {
	attr := types.TextAttribute{Foreground: types.Palette(fg), Background: types.Palette(bg)}
	_ = b.SetChar(0, types.Position{X: x, Y: y}, types.AttributedChar{Ch: ch, Attr: attr})
}

func TestEncodeSimpleRowEmitsSGR(t *testing.T) {
	b := buffer.NewTextBuffer(3, 1)
	setChar(b, 0, 0, 'A', 4, 0)
	setChar(b, 1, 0, 'B', 4, 0)
	setChar(b, 2, 0, 'C', 4, 0)

	out, err := Encode(b, config.EncodingOptions{Level: config.IcyTerm})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, "ABC") {
		t.Fatalf("expected literal run ABC, got %q", s)
	}
	if !strings.Contains(s, "\x1b[") {
		t.Fatalf("expected an SGR escape, got %q", s)
	}
}

func TestEncodeFullWidthLineSkipsTrailingCRLF(t *testing.T) {
	b := buffer.NewTextBuffer(2, 2)
	setChar(b, 0, 0, 'X', 7, 0)
	setChar(b, 1, 0, 'Y', 7, 0)
	setChar(b, 0, 1, 'Z', 7, 0)
	setChar(b, 1, 1, 'W', 7, 0)

	out, err := Encode(b, config.EncodingOptions{Level: config.IcyTerm, PreserveLineLength: true})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if strings.Contains(s, "XY\r\n") {
		t.Fatalf("full-width row should not be followed by CRLF (autowrap advances): %q", s)
	}
	if !strings.Contains(s, "ZW") {
		t.Fatalf("expected second row content: %q", s)
	}
}

func TestEncodeShortLineEmitsCRLF(t *testing.T) {
	b := buffer.NewTextBuffer(5, 2)
	setChar(b, 0, 0, 'A', 7, 0)
	// rest of row 0 stays blank and gets trimmed.

	out, err := Encode(b, config.EncodingOptions{Level: config.IcyTerm})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "\r\n") {
		t.Fatalf("expected CRLF after a non-full-width row, got %q", out)
	}
}

func TestEncodeLongerTerminalOutputOmitsCRLFOnShortLine(t *testing.T) {
	// A non-full-width row would normally get a trailing CRLF
	// (TestEncodeShortLineEmitsCRLF above), but LongerTerminalOutput puts an
	// absolute CUP at the start of every row instead, so no CRLF is needed
	// or wanted between rows (original_source/.../ansi_v2.rs guards its
	// whole CRLF block on `!longer_terminal_output`).
	b := buffer.NewTextBuffer(5, 2)
	setChar(b, 0, 0, 'A', 7, 0)
	setChar(b, 0, 1, 'B', 7, 0)

	out, err := Encode(b, config.EncodingOptions{Level: config.IcyTerm, LongerTerminalOutput: true})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if strings.Contains(s, "\r\n") {
		t.Fatalf("expected no CRLF between rows under LongerTerminalOutput, got %q", s)
	}
	if !strings.Contains(s, "\x1b[1;1H") || !strings.Contains(s, "\x1b[2;1H") {
		t.Fatalf("expected absolute CUP at the start of both rows, got %q", s)
	}
}

func TestEncodeIceColorsBrackets(t *testing.T) {
	b := buffer.NewTextBuffer(1, 1)
	out, err := Encode(b, config.EncodingOptions{Level: config.IcyTerm, UseIceColors: true})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "\x1b[?33h") {
		t.Fatalf("expected leading ice-colors bracket, got %q", s)
	}
	if !strings.HasSuffix(s, "\x1b[?33l") {
		t.Fatalf("expected trailing ice-colors bracket, got %q", s)
	}
}

func TestEncodeRejectsInvalidOptions(t *testing.T) {
	b := buffer.NewTextBuffer(1, 1)
	_, err := Encode(b, config.EncodingOptions{Level: config.AnsiSys, OutputLineLength: 80})
	if err == nil {
		t.Fatal("expected Validate error: OutputLineLength needs cursor save/restore")
	}
}

func TestRoundTripPlainCellsSurviveEncodeDecode(t *testing.T) {
	b := buffer.NewTextBuffer(4, 2)
	setChar(b, 0, 0, 'H', 2, 0)
	setChar(b, 1, 0, 'I', 2, 0)
	setChar(b, 0, 1, '!', 12, 0)

	out, err := Encode(b, config.EncodingOptions{Level: config.IcyTerm, PreserveLineLength: true})
	if err != nil {
		t.Fatal(err)
	}

	got := Decode(out, 4, 2)
	for _, tc := range []struct {
		x, y int
		ch   rune
		fg   uint8
	}{
		{0, 0, 'H', 2},
		{1, 0, 'I', 2},
		{0, 1, '!', 12},
	} {
		c := got.CharAt(types.Position{X: tc.x, Y: tc.y})
		if c.Ch != tc.ch {
			t.Fatalf("(%d,%d): got char %q want %q", tc.x, tc.y, c.Ch, tc.ch)
		}
		if c.Attr.Foreground.Index != tc.fg {
			t.Fatalf("(%d,%d): got fg %d want %d", tc.x, tc.y, c.Attr.Foreground.Index, tc.fg)
		}
	}
}

func TestDecodeCursorPositioning(t *testing.T) {
	data := []byte("\x1b[3;5HZ")
	b := Decode(data, 10, 10)
	c := b.CharAt(types.Position{X: 4, Y: 2})
	if c.Ch != 'Z' {
		t.Fatalf("expected Z at row3 col5 (0-indexed 2,4), got %q at that cell", c.Ch)
	}
}

func TestDecodeUnknownEscapeDoesNotAbort(t *testing.T) {
	data := []byte("\x1b\x90A\x1b[5;10QB")
	b := Decode(data, 10, 1)
	c0 := b.CharAt(types.Position{X: 0, Y: 0})
	if c0.Ch != 'A' {
		t.Fatalf("decoding should continue past unknown escapes, got %q", c0.Ch)
	}
}

func TestRunCompressionUsesCUFForBlankRuns(t *testing.T) {
	b := buffer.NewTextBuffer(20, 1)
	setChar(b, 0, 0, 'X', 7, 0)
	// cells 1..19 remain default blank (space, fg7, bg0) -> long run.
	out, err := Encode(b, config.EncodingOptions{Level: config.IcyTerm, UseCompression: true, PreserveLineLength: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "C") {
		t.Fatalf("expected a CUF ('C') compressed run in output: %q", out)
	}
}
