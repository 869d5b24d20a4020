package animator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"

	"github.com/stlalpha/textmode/internal/codec"
	"github.com/stlalpha/textmode/internal/config"
	"github.com/stlalpha/textmode/internal/logging"
)

// maxFrames and maxLogLines bound a runaway script's memory use (spec
// §4.8 / the SUPPLEMENT cap on frame assembly). Once either cap is hit,
// further entries are counted and dropped rather than appended.
const (
	maxFrames   = 4096
	maxLogLines = 1000
)

// Animator runs one script on a background goroutine (spec §4.8's
// worker-thread model, grounded on stlalpha-vision3/cmd/vision3
// /config_watcher.go's "launch a goroutine, poll its published state"
// shape). success()/error()/frames()/log()/cur_frame() are all read
// through the same mutex the worker writes under, so a caller can poll
// them from another goroutine at any time.
type Animator struct {
	mu sync.Mutex

	frames     []Frame
	droppedFr  int
	log        []string
	droppedLog int
	curFrame   int
	delayMs    int
	done       bool
	err        error
	registry   *codec.Registry
	parentDir  string
}

// Run preprocesses script's hex-color shorthand, then starts it running on
// a background goroutine against files rooted at parentDir. It returns
// immediately; poll Done/Success/Err/Frames/Log to observe progress.
func Run(parentDir, script string) *Animator {
	a := &Animator{
		delayMs:   100,
		registry:  codec.NewRegistry(),
		parentDir: parentDir,
	}
	go a.runScript(expandHexColors(script))
	return a
}

func (a *Animator) runScript(script string) {
	L := lua.NewState()
	defer L.Close()

	registerBufferType(L)
	a.registerGlobals(L)

	err := L.DoString(script)

	a.mu.Lock()
	a.done = true
	a.err = err
	a.mu.Unlock()
}

func (a *Animator) registerGlobals(L *lua.LState) {
	L.SetGlobal("new_buffer", L.NewFunction(func(L *lua.LState) int {
		w, h := L.CheckInt(1), L.CheckInt(2)
		L.Push(pushBuffer(L, newScriptBuffer(w, h)))
		return 1
	}))

	L.SetGlobal("load_buffer", L.NewFunction(func(L *lua.LState) int {
		path := L.CheckString(1)
		sb, err := a.loadBuffer(path)
		if err != nil {
			a.appendLog(fmt.Sprintf("load_buffer(%q): %v", path, err))
			L.Push(lua.LNil)
			return 1
		}
		L.Push(pushBuffer(L, sb))
		return 1
	}))

	L.SetGlobal("next_frame", L.NewFunction(func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		a.pushFrame(sb)
		return 0
	}))

	L.SetGlobal("set_delay", L.NewFunction(func(L *lua.LState) int {
		a.mu.Lock()
		a.delayMs = L.CheckInt(1)
		a.mu.Unlock()
		return 0
	}))

	L.SetGlobal("get_delay", L.NewFunction(func(L *lua.LState) int {
		a.mu.Lock()
		ms := a.delayMs
		a.mu.Unlock()
		L.Push(lua.LNumber(ms))
		return 1
	}))

	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		a.appendLog(L.CheckString(1))
		return 0
	}))
}

func (a *Animator) loadBuffer(path string) (*scriptBuffer, error) {
	full := filepath.Join(a.parentDir, path)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	format, err := a.registry.ByExtension(ext)
	if err != nil {
		return nil, err
	}
	buf, err := format.FromBytes(data, config.DefaultLoadOptions())
	if err != nil {
		return nil, err
	}
	return wrapScriptBuffer(buf), nil
}

func (a *Animator) pushFrame(sb *scriptBuffer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.frames) >= maxFrames {
		a.droppedFr++
		return
	}
	clone := sb.clone()
	a.frames = append(a.frames, Frame{
		ID:      uuid.New(),
		Buffer:  clone.buf,
		Monitor: DefaultMonitorSettings(),
		DelayMs: a.delayMs,
	})
	a.curFrame = len(a.frames) - 1
}

func (a *Animator) appendLog(line string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.log) >= maxLogLines {
		a.droppedLog++
		return
	}
	a.log = append(a.log, line)
	logging.Debug("animator: %s", line)
}

// Done reports whether the script has finished running.
func (a *Animator) Done() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// Success reports whether the script finished without error. It only
// becomes meaningful once Done is true.
func (a *Animator) Success() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done && a.err == nil
}

// Err returns the script's terminal error, if any.
func (a *Animator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Frames returns a snapshot of the frames captured so far.
func (a *Animator) Frames() []Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Frame, len(a.frames))
	copy(out, a.frames)
	return out
}

// Log returns a snapshot of the script's log lines so far.
func (a *Animator) Log() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.log))
	copy(out, a.log)
	return out
}

// CurFrame returns the index of the most recently captured frame, or -1
// if none has been captured yet.
func (a *Animator) CurFrame() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.frames) == 0 {
		return -1
	}
	return a.curFrame
}

// DroppedFrames reports how many next_frame calls were discarded once the
// frame cap was reached.
func (a *Animator) DroppedFrames() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.droppedFr
}

// DroppedLogLines reports how many log calls were discarded once the log
// cap was reached.
func (a *Animator) DroppedLogLines() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.droppedLog
}
