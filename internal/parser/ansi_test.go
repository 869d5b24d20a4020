package parser

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/stlalpha/textmode/internal/types"
)

type recordingSink struct {
	cmds []QueuedCommand
}

func (s *recordingSink) Push(cmd QueuedCommand) { s.cmds = append(s.cmds, cmd) }

func runOneShot(data []byte, width, height int) []QueuedCommand {
	p := NewANSIParser(width, height)
	sink := &recordingSink{}
	p.Parse(data, sink)
	return sink.cmds
}

func TestFragmentationInvariance(t *testing.T) {
	data := []byte("\x1b[1;37;44mHello\r\n")

	whole := runOneShot(data, 80, 25)

	for split := 1; split < len(data); split++ {
		p := NewANSIParser(80, 25)
		sink := &recordingSink{}
		p.Parse(data[:split], sink)
		p.Parse(data[split:], sink)
		if !reflect.DeepEqual(whole, sink.cmds) {
			t.Fatalf("split at %d diverges from one-shot parse:\nwhole=%+v\nsplit=%+v", split, whole, sink.cmds)
		}
	}
}

func TestAtMostOneCommandPerCSI(t *testing.T) {
	cmds := runOneShot([]byte("\x1b[1;37;44m"), 80, 25)
	sgrCount := 0
	for _, c := range cmds {
		if c.Kind == CmdSGRUpdate {
			sgrCount++
		}
	}
	if sgrCount != 1 {
		t.Fatalf("expected exactly one SGR command for one CSI sequence, got %d", sgrCount)
	}
}

func TestHelloScenario(t *testing.T) {
	// spec §8 scenario 1: ESC[1;37;44m Hello CRLF -> 80x25 buffer with
	// "Hello" at (0..5,0), attr {bold, fg=15, bg=4}, caret at (0,1).
	cmds := runOneShot([]byte("\x1b[1;37;44mHello\r\n"), 80, 25)

	var written []QueuedCommand
	for _, c := range cmds {
		if c.Kind == CmdWriteChar {
			written = append(written, c)
		}
	}
	if len(written) != 5 {
		t.Fatalf("expected 5 written chars, got %d", len(written))
	}
	want := "Hello"
	for i, c := range written {
		if c.Ch != rune(want[i]) {
			t.Fatalf("char %d: got %q want %q", i, c.Ch, want[i])
		}
		if c.Attr.Foreground.Index != 15 || c.Attr.Background.Index != 4 {
			t.Fatalf("char %d: got fg=%d bg=%d want fg=15 bg=4", i, c.Attr.Foreground.Index, c.Attr.Background.Index)
		}
	}

	last := cmds[len(cmds)-1]
	if last.Kind != CmdCaretMove || last.Position.X != 0 || last.Position.Y != 1 {
		t.Fatalf("expected final caret move to (0,1), got %+v", last)
	}
}

func TestTruncatedCSIResumesOnNextParseCall(t *testing.T) {
	p := NewANSIParser(80, 25)
	sink := &recordingSink{}
	p.Parse([]byte("\x1b[1;3"), sink)
	if p.state != stateCsiParam {
		t.Fatalf("expected parser left mid-CSI, got state %v", p.state)
	}
	p.Parse([]byte("7m"), sink)
	found := false
	for _, c := range sink.cmds {
		if c.Kind == CmdSGRUpdate {
			found = true
		}
	}
	if !found {
		t.Fatal("expected SGR command once the CSI sequence completes across calls")
	}
}

func TestLineFeedGrowsHeightPastInitialScreenSize(t *testing.T) {
	p := NewANSIParser(80, 2)
	sink := &recordingSink{}

	p.Parse([]byte("a\r\nb\r\nc\r\nd\r\n"), sink)

	if p.height <= 2 {
		t.Fatalf("expected parser height to grow past the initial 2 rows, got %d", p.height)
	}
	if p.y != 4 {
		t.Fatalf("expected caret to have advanced to row 4 instead of clamping at row 1, got %d", p.y)
	}

	var resizes []QueuedCommand
	for _, c := range sink.cmds {
		if c.Kind == CmdResizeRequest {
			resizes = append(resizes, c)
		}
	}
	if len(resizes) == 0 {
		t.Fatal("expected at least one CmdResizeRequest as the stream outgrew its starting height")
	}
	for _, r := range resizes {
		if r.Width != 80 {
			t.Fatalf("expected resize requests to keep width unchanged at 80, got %d", r.Width)
		}
	}
}

func TestLineFeedLatchesHeightCapExceededAtMaxBufferHeight(t *testing.T) {
	p := NewANSIParser(1, 1)
	// Simulate having already grown to the hard cap and sitting on its last row.
	p.height = types.MaxBufferHeight
	p.y = types.MaxBufferHeight - 1
	sink := &recordingSink{}

	p.lineFeed(sink)

	if !p.HeightCapExceeded() {
		t.Fatal("expected HeightCapExceeded to latch once height is already at the hard cap and more room is needed")
	}
	if p.height != types.MaxBufferHeight {
		t.Fatalf("expected height to stay at the hard cap, got %d", p.height)
	}
	if p.y != types.MaxBufferHeight-1 {
		t.Fatalf("expected caret to stay clamped at the last row, got %d", p.y)
	}
}

func TestLineFeedDoesNotGrowHeightWhenCaretStaysWithinBounds(t *testing.T) {
	cmds := runOneShot(bytes.Repeat([]byte("x\r\n"), 3), 80, 25)
	for _, c := range cmds {
		if c.Kind == CmdResizeRequest {
			t.Fatalf("expected no resize requests while within the original 25-row height, got %+v", c)
		}
	}
}

func TestBadParameterDigitsClampToZero(t *testing.T) {
	// An empty parameter segment (e.g. a leading ';') is clamped to 0
	// rather than rejected (spec §4.5, "bad parameter digits are clamped").
	cmds := runOneShot([]byte("\x1b[;37m"), 80, 25)
	found := false
	for _, c := range cmds {
		if c.Kind == CmdSGRUpdate {
			found = true
		}
	}
	if !found {
		t.Fatal("expected parser to tolerate a non-numeric parameter and still dispatch")
	}
}
