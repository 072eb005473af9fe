package assets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima-content/engine/core"
)

const eventBuffer = 64

// Watch starts watching the content root and all sub-directories. A cached
// asset whose file is written, replaced or removed is evicted, and its name
// is published on Events.
func (cm *ContentManager) Watch() error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	if cm.closed {
		return core.ErrManagerClosed
	}
	if cm.watcher != nil {
		return nil
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	cm.watcher = fsWatch
	cm.done = make(chan struct{})
	cm.events = make(chan string, eventBuffer)
	cm.errors = make(chan error, eventBuffer)

	if err := cm.watchRecursive(cm.config.RootDir); err != nil {
		fsWatch.Close()
		cm.watcher = nil
		return err
	}

	cm.watchWg.Add(1)
	go cm.start()
	return nil
}

// Events publishes the names of evicted assets. It is nil until Watch is
// called and closed by Close.
func (cm *ContentManager) Events() <-chan string {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return cm.events
}

// Errors publishes watcher errors.
func (cm *ContentManager) Errors() <-chan error {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return cm.errors
}

func (cm *ContentManager) start() {
	defer cm.watchWg.Done()
	for {
		select {
		case e, ok := <-cm.watcher.Events:
			if !ok {
				return
			}
			cm.handleEvent(e)

		case err, ok := <-cm.watcher.Errors:
			if !ok {
				return
			}
			core.LogError("content watcher: %s", err)
			select {
			case cm.errors <- err:
			default:
			}

		case <-cm.done:
			cm.watcher.Close()
			close(cm.events)
			close(cm.errors)
			return
		}
	}
}

func (cm *ContentManager) handleEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := cm.watchRecursive(e.Name); err != nil {
				core.LogWarn("failed to watch '%s': %s", e.Name, err)
			}
			return
		}
	}
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	name, ok := cm.nameOf(e.Name)
	if !ok {
		return
	}

	cm.mutex.Lock()
	cm.changes[name]++
	_, cached := cm.assets[name]
	if cached {
		if err := cm.evictLocked(name); err != nil {
			core.LogWarn("failed to evict '%s': %s", name, err)
		}
	}
	cm.mutex.Unlock()
	if !cached {
		return
	}

	cm.metrics.RecordEviction()
	core.LogInfo("asset '%s' changed on disk (%s), evicted", name, e.Op)
	select {
	case cm.events <- name:
	default:
		core.LogDebug("event buffer full, dropping '%s'", name)
	}
}

// watchRecursive adds path and every directory below it to the watch list.
func (cm *ContentManager) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			// directories can vanish between the event and the walk
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return cm.watcher.Add(walkPath)
		}
		return nil
	})
}
