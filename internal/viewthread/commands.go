// Package viewthread implements the streaming view thread (spec §4.7,
// component C7): a single background goroutine that owns at most one
// in-flight file load, metering its delivery to a shared screen under a
// baud-rate emulator and a bounded per-iteration lock budget, with
// cooperative cancellation when a new load replaces the old one.
//
// Grounded on stlalpha-vision3/cmd/vision3/config_watcher.go's
// watcher-goroutine shape (a background loop selecting over a done channel
// and fsnotify events) for the control-loop structure, generalized from a
// one-shot config reload into a chunked, cancellable playback loop.
package viewthread

import "github.com/stlalpha/textmode/internal/sauce"

// ScrollMode is published by the view thread as playback progresses
// (spec §4.7 "Scroll modes").
type ScrollMode int

const (
	ScrollOff ScrollMode = iota
	ScrollClampToBottom
	ScrollAutoScroll
)

func (m ScrollMode) String() string {
	switch m {
	case ScrollClampToBottom:
		return "clamp-to-bottom"
	case ScrollAutoScroll:
		return "auto-scroll"
	default:
		return "off"
	}
}

// ViewCommandKind discriminates ViewCommand's tagged union (spec §6.4).
type ViewCommandKind int

const (
	CmdLoadData ViewCommandKind = iota
	CmdStop
	CmdSetBaudEmulation
	CmdShutdown
)

// ViewCommand is sent to a spawned ViewThread over its command channel.
type ViewCommand struct {
	Kind ViewCommandKind

	// CmdLoadData
	Path       string
	Data       []byte
	AutoScroll bool

	// CmdSetBaudEmulation; 0 disables baud emulation.
	BaudRate int
}

// LoadData builds a CmdLoadData command.
func LoadData(path string, data []byte, autoScroll bool) ViewCommand {
	return ViewCommand{Kind: CmdLoadData, Path: path, Data: data, AutoScroll: autoScroll}
}

// Stop builds a CmdStop command.
func Stop() ViewCommand { return ViewCommand{Kind: CmdStop} }

// SetBaudEmulation builds a CmdSetBaudEmulation command.
func SetBaudEmulation(baud int) ViewCommand {
	return ViewCommand{Kind: CmdSetBaudEmulation, BaudRate: baud}
}

// Shutdown builds a CmdShutdown command.
func Shutdown() ViewCommand { return ViewCommand{Kind: CmdShutdown} }

// ViewEventKind discriminates ViewEvent's tagged union (spec §6.4).
type ViewEventKind int

const (
	EvtLoadingStarted ViewEventKind = iota
	EvtLoadingCompleted
	EvtSauceInfo
	EvtSetScrollMode
	EvtError
)

// ViewEvent is published by a spawned ViewThread over its event channel.
type ViewEvent struct {
	Kind ViewEventKind

	Path string // EvtLoadingStarted

	Sauce       *sauce.Record // EvtSauceInfo; nil if the file carried none
	ContentSize int           // EvtSauceInfo

	ScrollMode ScrollMode // EvtSetScrollMode

	Message string // EvtError; spec §7 "View thread errors reach the UI via ViewEvent::Error(String)"
}
