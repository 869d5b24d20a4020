package animator

import (
	"testing"
	"time"

	"github.com/stlalpha/textmode/internal/types"
)

func waitDone(t *testing.T, a *Animator, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !a.Done() {
		if time.Now().After(deadline) {
			t.Fatal("animator did not finish in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestScriptCapturesFrameWithPrintedText(t *testing.T) {
	script := `
		b = new_buffer(5, 1)
		b:print("HI")
		next_frame(b)
	`
	a := Run(t.TempDir(), script)
	waitDone(t, a, time.Second)

	if !a.Success() {
		t.Fatalf("expected script to succeed, got err=%v", a.Err())
	}
	frames := a.Frames()
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	c := frames[0].Buffer.CharAt(types.Position{X: 0, Y: 0})
	if c.Ch != 'H' {
		t.Fatalf("expected H at (0,0), got %q", c.Ch)
	}
}

func TestHexColorShorthandIsRewrittenBeforeParsing(t *testing.T) {
	script := `
		b = new_buffer(1, 1)
		b:set_fg(#ff8800)
		b:set_char(0, 0, "X")
		next_frame(b)
	`
	a := Run(t.TempDir(), script)
	waitDone(t, a, time.Second)

	if !a.Success() {
		t.Fatalf("expected script to succeed, got err=%v", a.Err())
	}
	frames := a.Frames()
	if len(frames) != 1 {
		t.Fatal("expected 1 frame")
	}
	fg := frames[0].Buffer.CharAt(types.Position{X: 0, Y: 0}).Attr.Foreground
	if fg.Kind != types.ColorRGB || fg.R != 0xff || fg.G != 0x88 || fg.B != 0x00 {
		t.Fatalf("expected rgb(255,136,0) foreground, got %+v", fg)
	}
}

func TestGetFgReturnsPaletteOrRGBTuple(t *testing.T) {
	script := `
		b = new_buffer(1, 1)
		b:set_fg(4)
		kind, idx = b:get_fg()
		if kind ~= "palette" or idx ~= 4 then
			error("expected palette tuple, got " .. kind .. " " .. tostring(idx))
		end
		b:set_fg(10, 20, 30)
		kind2, r, g, bl = b:get_fg()
		if kind2 ~= "rgb" or r ~= 10 or g ~= 20 or bl ~= 30 then
			error("expected rgb tuple")
		end
	`
	a := Run(t.TempDir(), script)
	waitDone(t, a, time.Second)
	if !a.Success() {
		t.Fatalf("expected script to succeed, got err=%v", a.Err())
	}
}

func TestSetDelayIsReadableByGetDelay(t *testing.T) {
	script := `
		set_delay(250)
		if get_delay() ~= 250 then
			error("delay mismatch")
		end
	`
	a := Run(t.TempDir(), script)
	waitDone(t, a, time.Second)
	if !a.Success() {
		t.Fatalf("expected script to succeed, got err=%v", a.Err())
	}
}

func TestFrameCapEnforcedWithDroppedCount(t *testing.T) {
	script := `
		b = new_buffer(1, 1)
		for i = 1, 4200 do
			next_frame(b)
		end
	`
	a := Run(t.TempDir(), script)
	waitDone(t, a, 5*time.Second)

	if !a.Success() {
		t.Fatalf("expected script to succeed, got err=%v", a.Err())
	}
	if len(a.Frames()) != maxFrames {
		t.Fatalf("expected frame count capped at %d, got %d", maxFrames, len(a.Frames()))
	}
	if a.DroppedFrames() != 4200-maxFrames {
		t.Fatalf("expected %d dropped frames, got %d", 4200-maxFrames, a.DroppedFrames())
	}
}

func TestLogCapEnforcedWithDroppedCount(t *testing.T) {
	script := `
		for i = 1, 1050 do
			log("line")
		end
	`
	a := Run(t.TempDir(), script)
	waitDone(t, a, 5*time.Second)

	if !a.Success() {
		t.Fatalf("expected script to succeed, got err=%v", a.Err())
	}
	if len(a.Log()) != maxLogLines {
		t.Fatalf("expected log capped at %d, got %d", maxLogLines, len(a.Log()))
	}
	if a.DroppedLogLines() != 1050-maxLogLines {
		t.Fatalf("expected %d dropped log lines, got %d", 1050-maxLogLines, a.DroppedLogLines())
	}
}

func TestScriptErrorIsReported(t *testing.T) {
	a := Run(t.TempDir(), `error("boom")`)
	waitDone(t, a, time.Second)
	if a.Success() {
		t.Fatal("expected script failure")
	}
	if a.Err() == nil {
		t.Fatal("expected a non-nil error")
	}
}
