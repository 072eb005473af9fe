package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spaghettifunk/anima-content/engine/assets/loaders"
	"github.com/spaghettifunk/anima-content/engine/content"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-content/engine/systems"
	"golang.org/x/exp/slices"
)

// ContentManager loads compiled assets from a root directory and caches
// them by name. Shared resources are resolved per file by the decoder;
// the manager owns the lifetime of what it hands out.
type ContentManager struct {
	config   core.ContentConfig
	registry *content.Registry
	jobs     *systems.JobSystem
	handles  *core.Identifiers
	metrics  *core.LoadMetrics

	mutex  sync.RWMutex
	assets map[string]*metadata.Resource
	closed bool
	// changes counts on-disk changes per asset name, cached or not, so a
	// load racing a change can tell that what it decoded is already stale.
	changes map[string]uint64
	// afterRead runs between decoding and caching. Tests only.
	afterRead func(name string)

	watcher *fsnotify.Watcher
	done    chan struct{}
	events  chan string
	errors  chan error
	watchWg sync.WaitGroup
}

func NewContentManager(config core.ContentConfig) (*ContentManager, error) {
	if config.Extension == "" {
		config.Extension = core.DefaultExtension
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	jobs, err := systems.NewJobSystem(config.Workers, config.QueueSize)
	if err != nil {
		return nil, err
	}

	cm := &ContentManager{
		config:   config,
		registry: content.NewRegistry(),
		jobs:     jobs,
		handles:  core.NewIdentifiers(16),
		metrics:  core.NewLoadMetrics(),
		assets:   make(map[string]*metadata.Resource),
		changes:  make(map[string]uint64),
	}
	if err := loaders.RegisterDefaults(cm.registry); err != nil {
		_ = jobs.Shutdown()
		return nil, err
	}
	if config.Watch {
		if err := cm.Watch(); err != nil {
			_ = jobs.Shutdown()
			return nil, err
		}
	}
	core.LogInfo("Content manager initialized with root '%s'.", config.RootDir)
	return cm, nil
}

// Registry exposes the type readers so callers can add their own.
func (cm *ContentManager) Registry() *content.Registry {
	return cm.registry
}

// Path returns the file an asset name resolves to.
func (cm *ContentManager) Path(name string) string {
	return filepath.Join(cm.config.RootDir, filepath.FromSlash(name)+cm.config.Extension)
}

func (cm *ContentManager) nameOf(path string) (string, bool) {
	rel, err := filepath.Rel(cm.config.RootDir, path)
	if err != nil || !strings.HasSuffix(rel, cm.config.Extension) {
		return "", false
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, cm.config.Extension)), true
}

// Attempts made by Load when the file keeps changing under it.
const maxReadAttempts = 3

// Load returns the cached resource for name, decoding it on first use.
// A result whose file changed while it was being decoded is not cached.
func (cm *ContentManager) Load(name string) (*metadata.Resource, error) {
	for attempt := 1; ; attempt++ {
		cm.mutex.RLock()
		closed := cm.closed
		res, exists := cm.assets[name]
		generation := cm.changes[name]
		cm.mutex.RUnlock()
		if closed {
			return nil, core.ErrManagerClosed
		}
		if exists {
			return res, nil
		}

		res, err := cm.read(name)
		if err != nil {
			cm.metrics.RecordFailure()
			return nil, err
		}
		if cm.afterRead != nil {
			cm.afterRead(name)
		}

		cm.mutex.Lock()
		if cm.closed {
			cm.mutex.Unlock()
			return nil, core.ErrManagerClosed
		}
		// another loader may have won the race
		if existing, ok := cm.assets[name]; ok {
			cm.mutex.Unlock()
			return existing, nil
		}
		if cm.changes[name] != generation {
			cm.mutex.Unlock()
			if attempt < maxReadAttempts {
				core.LogDebug("'%s' changed while loading, reading it again", name)
				continue
			}
			core.LogWarn("'%s' keeps changing, returning it uncached", name)
			return res, nil
		}
		res.Handle = cm.handles.Acquire(res)
		cm.assets[name] = res
		cm.mutex.Unlock()
		return res, nil
	}
}

func (cm *ContentManager) read(name string) (*metadata.Resource, error) {
	path := cm.Path(name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, core.ErrAssetNotFound)
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	clock := core.NewClock()
	clock.Start()
	data, rt, err := content.Decode(f, cm.registry, name)
	clock.Stop()
	if err != nil {
		core.LogError("failed to load '%s': %s", name, err)
		return nil, err
	}
	cm.metrics.RecordLoad(clock.Elapsed())
	core.LogDebug("loaded '%s' (%s) in %s", name, rt, clock.Elapsed())

	return &metadata.Resource{
		ID:       uuid.New(),
		Name:     name,
		FullPath: path,
		DataSize: uint64(info.Size()),
		Type:     rt,
		Data:     data,
	}, nil
}

// LoadAs loads name and checks that its object is a T.
func LoadAs[T any](cm *ContentManager, name string) (T, error) {
	var zero T
	res, err := cm.Load(name)
	if err != nil {
		return zero, err
	}
	v, ok := res.Data.(T)
	if !ok {
		return zero, fmt.Errorf("%s holds %T: %w", name, res.Data, core.ErrTypeMismatch)
	}
	return v, nil
}

// LoadAsync loads name on the job system and reports through onComplete,
// which runs on a worker goroutine.
func (cm *ContentManager) LoadAsync(name string, onComplete func(*metadata.Resource, error)) error {
	var (
		res *metadata.Resource
		err error
	)
	return cm.jobs.Submit(metadata.JobTask{
		InputParams: name,
		OnStart: func(params interface{}, _ chan<- interface{}) error {
			res, err = cm.Load(params.(string))
			return err
		},
		OnCompletionCallback: func() {
			if onComplete != nil {
				onComplete(res, err)
			}
		},
	})
}

// Unload drops name from the cache.
func (cm *ContentManager) Unload(name string) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	return cm.evictLocked(name)
}

func (cm *ContentManager) evictLocked(name string) error {
	res, ok := cm.assets[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, core.ErrAssetNotFound)
	}
	delete(cm.assets, name)
	return cm.handles.Release(res.Handle)
}

// Loaded returns the names of cached assets, sorted.
func (cm *ContentManager) Loaded() []string {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	names := make([]string, 0, len(cm.assets))
	for name := range cm.assets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (cm *ContentManager) Stats() core.LoadStats {
	return cm.metrics.Snapshot()
}

// Close stops the watcher and the job system. Pending asynchronous loads
// finish first.
func (cm *ContentManager) Close() error {
	cm.mutex.Lock()
	if cm.closed {
		cm.mutex.Unlock()
		return core.ErrManagerClosed
	}
	cm.closed = true
	cm.mutex.Unlock()

	var errs []error
	if cm.watcher != nil {
		close(cm.done)
		cm.watchWg.Wait()
	}
	errs = append(errs, cm.jobs.Shutdown())

	cm.mutex.Lock()
	for name := range cm.assets {
		errs = append(errs, cm.evictLocked(name))
	}
	cm.mutex.Unlock()
	return errors.Join(errs...)
}
