package viewthread

import (
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stlalpha/textmode/internal/logging"
)

// FileWatcher feeds CmdLoadData commands for a file that may still be
// growing (a download in progress, a tail -f style log). Grounded on
// stlalpha-vision3/cmd/vision3/config_watcher.go's watcher-goroutine shape
// (select over fsnotify Events/Errors plus a done channel, debounced),
// generalized here from "reload on write" to "re-read and re-deliver the
// whole file on write" for view-thread consumption.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

// WatchFile starts watching path and sends a CmdLoadData(path, ..., true)
// command to cmds every time the file grows, plus once immediately for
// its current contents. Close stops the watcher.
func WatchFile(path string, cmds chan<- ViewCommand) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	fw := &FileWatcher{watcher: w, path: path, done: make(chan struct{})}
	if data, err := os.ReadFile(path); err == nil {
		cmds <- LoadData(path, data, true)
	}
	go fw.loop(cmds)
	return fw, nil
}

func (fw *FileWatcher) loop(cmds chan<- ViewCommand) {
	var debounceTimer *time.Timer
	const debounce = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				data, err := os.ReadFile(fw.path)
				if err != nil {
					logging.Debug("viewthread: re-reading %s failed: %v", fw.path, err)
					return
				}
				cmds <- LoadData(fw.path, data, true)
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Debug("viewthread: file watcher error for %s: %v", fw.path, err)

		case <-fw.done:
			return
		}
	}
}

// Close stops the watcher goroutine.
func (fw *FileWatcher) Close() error {
	select {
	case <-fw.done:
	default:
		close(fw.done)
	}
	return fw.watcher.Close()
}
