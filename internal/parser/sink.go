package parser

import (
	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/types"
)

// Sink consumes QueuedCommand values emitted by a Parser (spec §4.5).
type Sink interface {
	Push(cmd QueuedCommand)
}

// QueueingSink buffers commands for later draining, used by the streaming
// view thread (C7) so bounded-lock-budget draining can happen on its own
// schedule rather than inline with parsing.
type QueueingSink struct {
	queue []QueuedCommand
}

// NewQueueingSink returns an empty QueueingSink.
func NewQueueingSink() *QueueingSink { return &QueueingSink{} }

// Push appends cmd to the tail of the queue.
func (s *QueueingSink) Push(cmd QueuedCommand) { s.queue = append(s.queue, cmd) }

// Len reports the number of queued commands.
func (s *QueueingSink) Len() int { return len(s.queue) }

// Drain removes and returns up to max commands from the head of the queue,
// in FIFO order.
func (s *QueueingSink) Drain(max int) []QueuedCommand {
	if max <= 0 || max > len(s.queue) {
		max = len(s.queue)
	}
	out := s.queue[:max]
	s.queue = s.queue[max:]
	return out
}

// ScreenSink applies commands directly to an Editable screen (spec §4.5),
// used by the Animator and any scripting bridge that wants synchronous
// application instead of queueing.
type ScreenSink struct {
	Screen   buffer.Editable
	LayerIdx int
	caret    types.Position
	attr     types.TextAttribute
}

// NewScreenSink wires a ScreenSink to scr, writing to layer 0 by default.
func NewScreenSink(scr buffer.Editable) *ScreenSink {
	return &ScreenSink{Screen: scr, attr: types.DefaultAttribute()}
}

// Push applies cmd to the Screen immediately.
func (s *ScreenSink) Push(cmd QueuedCommand) {
	switch cmd.Kind {
	case CmdCaretMove:
		s.caret = cmd.Position
	case CmdWriteChar:
		s.attr = cmd.Attr
		_ = s.Screen.(interface {
			SetChar(layerIdx int, p types.Position, c types.AttributedChar) error
		}).SetChar(s.LayerIdx, s.caret, types.AttributedChar{Ch: cmd.Ch, Attr: cmd.Attr})
		s.caret.X++
	case CmdSGRUpdate:
		s.attr = cmd.Attr
	case CmdFontPageChange:
		s.attr.FontPage = cmd.FontSlot
	case CmdPaletteMutate:
		if cmd.PaletteIndex >= 0 && cmd.PaletteIndex < s.Screen.PaletteMut().Len() {
			s.Screen.PaletteMut().Colors[cmd.PaletteIndex] = cmd.PaletteColor
		}
	case CmdResizeRequest:
		_ = s.Screen.SetSize(types.Size{Width: cmd.Width, Height: cmd.Height})
	case CmdSixelEmit:
		layers := s.Screen.LayersMut()
		if len(layers) > 0 {
			layers[len(layers)-1].Sixels = append(layers[len(layers)-1].Sixels, cmd.Sixel)
		}
	}
}

// Caret returns the sink's current caret position.
func (s *ScreenSink) Caret() types.Position { return s.caret }
