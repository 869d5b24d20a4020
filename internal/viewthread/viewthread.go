package viewthread

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/codec"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/logging"
	"github.com/stlalpha/textmode/internal/parser"
	"github.com/stlalpha/textmode/internal/sauce"
	"github.com/stlalpha/textmode/internal/types"
)

// tickInterval paces the run loop's chunk-processing race against incoming
// commands (spec §4.7's "race chunk-processing against incoming commands").
const tickInterval = 4 * time.Millisecond

// ViewThread is the single background goroutine driving one viewer's
// playback (spec §4.7's "single background OS thread driving a
// single-threaded async runtime"). Screen mutation goes through scr's own
// locking (buffer.TextBuffer / editstate.EditState both guard themselves),
// so this type owns no mutex of its own.
type ViewThread struct {
	scr      buffer.Editable
	registry *codec.Registry
	opts     config.ViewThreadOptions
	baud     *BaudEmulator

	current *LoadOperation

	cmds   chan ViewCommand
	events chan ViewEvent
}

// Spawn starts a view thread writing to scr and returns its command/event
// channels (spec §6.4 "ViewThread::spawn"). The caller owns scr's lifetime;
// sending CmdShutdown stops the goroutine and closes the event channel.
func Spawn(scr buffer.Editable, registry *codec.Registry, opts config.ViewThreadOptions) (chan<- ViewCommand, <-chan ViewEvent) {
	if opts.LockBudgetMillis <= 0 {
		opts.LockBudgetMillis = 10
	}
	vt := &ViewThread{
		scr:      scr,
		registry: registry,
		opts:     opts,
		baud:     NewBaudEmulator(opts.BaudRate),
		cmds:     make(chan ViewCommand, 8),
		events:   make(chan ViewEvent, 32),
	}
	go vt.run()
	return vt.cmds, vt.events
}

func (vt *ViewThread) lockBudget() time.Duration {
	return time.Duration(vt.opts.LockBudgetMillis) * time.Millisecond
}

// run is the control loop (spec §4.7's three-state biased select): a
// pending command always gets a chance to run; while playing, chunk
// processing races against the command channel; idle, it blocks on
// commands alone.
func (vt *ViewThread) run() {
	defer close(vt.events)
	for {
		if vt.current != nil && vt.current.isPlaying {
			select {
			case cmd, ok := <-vt.cmds:
				if !ok || vt.handleCommand(cmd) {
					return
				}
			case <-time.After(tickInterval):
				vt.processChunk()
			}
			continue
		}
		cmd, ok := <-vt.cmds
		if !ok || vt.handleCommand(cmd) {
			return
		}
	}
}

// handleCommand applies cmd and reports whether the run loop should exit.
func (vt *ViewThread) handleCommand(cmd ViewCommand) bool {
	switch cmd.Kind {
	case CmdLoadData:
		vt.startLoad(cmd)
	case CmdStop:
		vt.stopCurrent()
	case CmdSetBaudEmulation:
		vt.baud = NewBaudEmulator(cmd.BaudRate)
	case CmdShutdown:
		vt.stopCurrent()
		return true
	}
	return false
}

// stopCurrent cancels the in-flight load's token before returning, so any
// writes already queued are dropped before the next load's writes begin
// (spec §5's cross-file ordering guarantee).
func (vt *ViewThread) stopCurrent() {
	if vt.current == nil {
		return
	}
	vt.current.cancel()
	vt.current = nil
}

// startLoad replaces the current LoadOperation (spec §4.7: "starting a new
// load replaces the current_load").
func (vt *ViewThread) startLoad(cmd ViewCommand) {
	vt.stopCurrent()

	rec, content := sauce.Parse(cmd.Data)
	vt.emit(ViewEvent{Kind: EvtLoadingStarted, Path: cmd.Path})
	vt.emit(ViewEvent{Kind: EvtSauceInfo, Sauce: rec, ContentSize: len(content)})

	format := vt.lookupFormat(cmd.Path)
	ctx, cancel := context.WithCancel(context.Background())
	op := &LoadOperation{
		ctx:               ctx,
		cancel:            cancel,
		path:              cmd.Path,
		fileData:          content,
		screenMode:        format.ScreenMode(),
		terminalEmulation: format.TerminalEmulation(),
		isPlaying:         true,
		autoScrollEnabled: cmd.AutoScroll,
	}

	if format.UsesParser() {
		d := vt.scr.Dimensions()
		if d.Width > types.MaxBufferWidth || d.Height > types.MaxBufferHeight {
			logging.Debug("viewthread: %s exceeds buffer cap (%dx%d)", cmd.Path, d.Width, d.Height)
			vt.emit(ViewEvent{Kind: EvtError, Message: "buffer exceeds maximum size"})
			vt.emit(ViewEvent{Kind: EvtLoadingCompleted})
			return
		}
		op.usesParser = true
		op.ansiParser = parser.NewANSIParser(d.Width, d.Height)
		op.sink = parser.NewQueueingSink()
		op.screenSink = parser.NewScreenSink(vt.scr)
	} else {
		decoded, err := format.FromBytes(content, config.DefaultLoadOptions())
		if err != nil {
			logging.Debug("viewthread: format decode failed for %s: %v", cmd.Path, err)
			vt.emit(ViewEvent{Kind: EvtLoadingCompleted})
			return
		}
		dims := decoded.Dimensions()
		if dims.Width > types.MaxBufferWidth || dims.Height > types.MaxBufferHeight {
			logging.Debug("viewthread: %s exceeds buffer cap (%dx%d)", cmd.Path, dims.Width, dims.Height)
			vt.emit(ViewEvent{Kind: EvtLoadingCompleted})
			return
		}
		if err := vt.scr.SetSize(dims); err != nil {
			logging.Debug("viewthread: resizing screen for %s failed: %v", cmd.Path, err)
			vt.emit(ViewEvent{Kind: EvtLoadingCompleted})
			return
		}
		op.decoded = decoded
		op.totalCells = dims.Width * dims.Height
	}

	vt.current = op
	if vt.baud.Enabled() {
		vt.emit(ViewEvent{Kind: EvtSetScrollMode, ScrollMode: ScrollClampToBottom})
	}
}

// lookupFormat resolves cmd's extension through the registry, falling back
// to raw ANSI streaming (the terminal-emulation default) for an unknown or
// missing extension so a view thread fed arbitrary bytes still does
// something useful.
func (vt *ViewThread) lookupFormat(path string) codec.FileFormat {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if f, err := vt.registry.ByExtension(ext); err == nil {
		return f
	}
	logging.Debug("viewthread: no format registered for %q, streaming as ANSI", path)
	return &codec.AnsiFormat{}
}

// processChunk advances the current load by one tick's worth of allowed
// bytes (spec §4.7's chunk processing / bounded-lock-budget drain).
func (vt *ViewThread) processChunk() {
	op := vt.current
	if op == nil {
		return
	}
	if op.cancelled() {
		vt.current = nil
		return
	}

	if op.usesParser {
		vt.processParserChunk(op)
	} else {
		vt.processFormatChunk(op)
	}

	if op.complete() {
		vt.finishLoad(op)
	}
}

func (vt *ViewThread) processParserChunk(op *LoadOperation) {
	remaining := len(op.fileData) - op.filePosition
	if remaining > 0 {
		want := vt.baud.ChunkSize()
		if want > remaining {
			want = remaining
		}
		if allowed := vt.baud.Allowance(want); allowed > 0 {
			slice := op.fileData[op.filePosition : op.filePosition+allowed]
			op.ansiParser.Parse(slice, op.sink)
			op.filePosition += allowed
		}
	}
	vt.drainQueue(op)

	// The parser requests screen growth via CmdResizeRequest as the stream
	// outgrows its starting height; once it can't grow any further (spec §5
	// hard cap at MAX_BUFFER_HEIGHT), stop playback instead of letting every
	// later line silently overwrite the last row.
	if op.ansiParser.HeightCapExceeded() {
		logging.Debug("viewthread: %s exceeded buffer height cap (%d rows)", op.path, types.MaxBufferHeight)
		vt.emit(ViewEvent{Kind: EvtError, Message: "stream exceeded maximum buffer height"})
		vt.stopCurrent()
	}
}

func (vt *ViewThread) processFormatChunk(op *LoadOperation) {
	allowed := vt.baud.Allowance(vt.baud.ChunkSize())
	cellsAllowed := allowed / formatBytesPerCell
	if cellsAllowed <= 0 {
		cellsAllowed = 1
	}
	vt.paintCells(op, cellsAllowed)
}

// drainQueue applies queued commands under the bounded-lock budget (spec
// §4.7): async commands (music, sixel decode) are handled outside the
// nominal lock-budget window, resetting it on return.
func (vt *ViewThread) drainQueue(op *LoadOperation) {
	deadline := time.Now().Add(vt.lockBudget())
	for op.sink.Len() > 0 {
		if op.cancelled() {
			return
		}
		cmd := op.sink.Drain(1)[0]
		if cmd.NeedsAsyncProcessing() {
			vt.applyAsync(op, cmd)
			deadline = time.Now().Add(vt.lockBudget())
			continue
		}
		op.screenSink.Push(cmd)
		if time.Now().After(deadline) {
			return
		}
	}
}

// applyAsync handles the two command kinds spec §4.5 classifies as
// needing async processing: music playback (a cancellable delay standing
// in for the sound engine's own timing, C9) and sixel emission (applied
// directly since the pixel payload is already decoded).
func (vt *ViewThread) applyAsync(op *LoadOperation, cmd parser.QueuedCommand) {
	switch cmd.Kind {
	case parser.CmdMusic:
		vt.cancellableSleep(op, 50*time.Millisecond)
		logging.Debug("viewthread: music cue %q", cmd.Melody)
	case parser.CmdSixelEmit:
		op.screenSink.Push(cmd)
	}
}

// cancellableSleep races a delay against the load's cancel token (spec
// §4.7's "cancellable sleeps" invariant).
func (vt *ViewThread) cancellableSleep(op *LoadOperation, d time.Duration) {
	select {
	case <-time.After(d):
	case <-op.ctx.Done():
	}
}

// paintCells reveals up to n more cells of a non-parser-decoded buffer
// into the live screen, row-major, under the same bounded lock budget.
func (vt *ViewThread) paintCells(op *LoadOperation, n int) {
	deadline := time.Now().Add(vt.lockBudget())
	layers := vt.scr.LayersMut()
	if len(layers) == 0 {
		return
	}
	target := layers[0]
	width := op.decoded.Dimensions().Width
	if width == 0 {
		return
	}
	for i := 0; i < n && op.paintedCells < op.totalCells; i++ {
		if op.cancelled() {
			return
		}
		x := op.paintedCells % width
		y := op.paintedCells / width
		c := op.decoded.CharAt(types.Position{X: x, Y: y})
		_ = target.SetChar(x, y, c, false)
		op.paintedCells++
		if time.Now().After(deadline) {
			return
		}
	}
}

func (vt *ViewThread) finishLoad(op *LoadOperation) {
	vt.emit(ViewEvent{Kind: EvtLoadingCompleted})
	mode := ScrollOff
	if op.autoScrollEnabled {
		mode = ScrollAutoScroll
	}
	vt.emit(ViewEvent{Kind: EvtSetScrollMode, ScrollMode: mode})
	vt.current = nil
}

// emit sends an event, dropping it instead of blocking forever if the
// consumer has stopped reading (the channel is buffered, so this only
// matters for a consumer that's gone away entirely).
func (vt *ViewThread) emit(evt ViewEvent) {
	select {
	case vt.events <- evt:
	default:
		logging.Debug("viewthread: event channel full, dropping %v", evt.Kind)
	}
}
