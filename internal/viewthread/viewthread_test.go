package viewthread

import (
	"testing"
	"time"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/codec"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/types"
)

func drainEvents(t *testing.T, events <-chan ViewEvent, want ViewEventKind, timeout time.Duration) ViewEvent {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed before seeing kind %v", want)
			}
			if evt.Kind == want {
				return evt
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %v", want)
		}
	}
}

func TestLoadAnsiTextStreamsInFullSpeed(t *testing.T) {
	buf := buffer.NewTextBuffer(10, 3)
	registry := codec.NewRegistry()
	cmds, events := Spawn(buf, registry, config.DefaultViewThreadOptions())
	defer func() { cmds <- Shutdown() }()

	cmds <- LoadData("hello.ans", []byte("HI"), false)

	drainEvents(t, events, EvtLoadingStarted, time.Second)
	drainEvents(t, events, EvtLoadingCompleted, time.Second)

	if c := buf.CharAt(types.Position{X: 0, Y: 0}); c.Ch != 'H' {
		t.Fatalf("expected H at (0,0), got %q", c.Ch)
	}
	if c := buf.CharAt(types.Position{X: 1, Y: 0}); c.Ch != 'I' {
		t.Fatalf("expected I at (1,0), got %q", c.Ch)
	}
}

func TestStartingNewLoadCancelsOld(t *testing.T) {
	buf := buffer.NewTextBuffer(8, 2)
	registry := codec.NewRegistry()
	opts := config.DefaultViewThreadOptions()
	opts.BaudRate = 30 // slow enough that the first load won't finish before the second arrives
	cmds, events := Spawn(buf, registry, opts)
	defer func() { cmds <- Shutdown() }()

	cmds <- LoadData("first.ans", []byte("AAAAAAAAAAAAAAAAAAAAAAAA"), false)
	drainEvents(t, events, EvtLoadingStarted, time.Second)

	cmds <- LoadData("second.ans", []byte("BB"), false)
	drainEvents(t, events, EvtLoadingStarted, time.Second)
	drainEvents(t, events, EvtLoadingCompleted, 2*time.Second)

	if c := buf.CharAt(types.Position{X: 0, Y: 0}); c.Ch == 'A' {
		t.Fatalf("expected the cancelled first load not to have painted 'A', got %q", c.Ch)
	}
}

func TestNonParserFormatPaintsCellsAndResizesScreen(t *testing.T) {
	buf := buffer.NewTextBuffer(1, 1)
	registry := codec.NewRegistry()
	cmds, events := Spawn(buf, registry, config.DefaultViewThreadOptions())
	defer func() { cmds <- Shutdown() }()

	src := buffer.NewTextBuffer(3, 1)
	_ = src.SetChar(0, types.Position{X: 1, Y: 0}, types.AttributedChar{Ch: 'Z', Attr: types.DefaultAttribute()})
	data, err := (&codec.XBinFormat{}).ToBytes(src, config.DefaultSaveOptions())
	if err != nil {
		t.Fatal(err)
	}

	cmds <- LoadData("plain.xb", data, false)
	drainEvents(t, events, EvtLoadingStarted, time.Second)
	drainEvents(t, events, EvtLoadingCompleted, time.Second)

	if d := buf.Dimensions(); d.Width != 3 || d.Height != 1 {
		t.Fatalf("expected screen resized to 3x1, got %+v", d)
	}
}

func TestParserStreamGrowsScreenPastInitialHeight(t *testing.T) {
	buf := buffer.NewTextBuffer(10, 2)
	buf.SetTerminalBuffer(true) // streaming targets grow on out-of-bounds writes (spec §4.1)
	registry := codec.NewRegistry()
	cmds, events := Spawn(buf, registry, config.DefaultViewThreadOptions())
	defer func() { cmds <- Shutdown() }()

	data := []byte("a\r\nb\r\nc\r\nd\r\ne\r\n")
	cmds <- LoadData("tall.ans", data, false)

	drainEvents(t, events, EvtLoadingStarted, time.Second)
	drainEvents(t, events, EvtLoadingCompleted, time.Second)

	if d := buf.Dimensions(); d.Height <= 2 {
		t.Fatalf("expected screen height to have grown past the initial 2 rows, got %d", d.Height)
	}
	if c := buf.CharAt(types.Position{X: 0, Y: 4}); c.Ch != 'e' {
		t.Fatalf("expected 'e' to have landed on row 4 instead of being clamped onto row 1, got %q", c.Ch)
	}
}

func TestBaudEmulatorAllowanceUnlimitedWhenDisabled(t *testing.T) {
	b := NewBaudEmulator(0)
	if got := b.Allowance(1000); got != 1000 {
		t.Fatalf("expected unlimited allowance to equal max, got %d", got)
	}
	if b.ChunkSize() != unlimitedChunkSize {
		t.Fatalf("expected unlimited chunk size, got %d", b.ChunkSize())
	}
}

func TestBaudEmulatorMetersOverTime(t *testing.T) {
	b := NewBaudEmulator(9600) // 960 bytes/sec
	time.Sleep(50 * time.Millisecond)
	allowed := b.Allowance(1000)
	if allowed <= 0 || allowed > 200 {
		t.Fatalf("expected a modest allowance after 50ms at 9600 baud, got %d", allowed)
	}
}
