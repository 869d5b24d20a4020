package viewthread

import (
	"context"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/codec"
	"github.com/stlalpha/textmode/internal/parser"
)

// formatBytesPerCell estimates how many source bytes one cell of a
// non-parser format "costs" for baud-emulation purposes. Formats decoded
// by codec.FileFormat.FromBytes don't expose a byte-per-cell stream the
// way the ANSI parser does, so painting them onto the screen incrementally
// uses this as a stand-in transmission unit rather than a literal replay
// of the format's own bytes (documented in DESIGN.md).
const formatBytesPerCell = 2

// LoadOperation is the view thread's single in-flight load (spec §4.7).
// Dropping it (via cancel) aborts all further writes before the next
// chunk is processed — this is the cancellation invariant.
type LoadOperation struct {
	ctx    context.Context
	cancel context.CancelFunc

	path     string
	fileData []byte

	screenMode        codec.ScreenMode
	terminalEmulation codec.TerminalEmulation
	isPlaying         bool
	autoScrollEnabled bool

	usesParser bool

	// Parser-mode fields (ANSI and any future stream-driven format).
	filePosition int
	ansiParser   *parser.ANSIParser
	sink         *parser.QueueingSink
	screenSink   *parser.ScreenSink

	// Format-mode fields (everything codec.FileFormat decodes whole).
	decoded      *buffer.TextBuffer
	totalCells   int
	paintedCells int
}

func (op *LoadOperation) cancelled() bool {
	select {
	case <-op.ctx.Done():
		return true
	default:
		return false
	}
}

// complete reports whether this load has delivered everything it has to
// deliver (spec §4.7 "file_position == file_data.len() and queue drained").
func (op *LoadOperation) complete() bool {
	if op.usesParser {
		return op.filePosition >= len(op.fileData) && op.sink.Len() == 0
	}
	return op.paintedCells >= op.totalCells
}
