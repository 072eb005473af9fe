// Package content implements the binary content format: a header, a table of
// the type readers used by the file, the primary object and the shared
// resources it references. Type readers decode one record type each and are
// resolved by name through a Registry.
package content

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/spaghettifunk/anima-content/engine/core"
	"golang.org/x/exp/slices"
)

// TypeReader decodes and encodes one record type.
type TypeReader interface {
	// Name is the stable identifier written to the type table.
	Name() string
	Version() int32
	// Target is the Go type produced by Read and accepted by Write.
	Target() reflect.Type
	Read(r *Reader) (interface{}, error)
	Write(w *Writer, v interface{}) error
}

// Registry resolves type readers by wire name and by Go type.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]TypeReader
	byType map[reflect.Type]TypeReader
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]TypeReader),
		byType: make(map[reflect.Type]TypeReader),
	}
}

func (reg *Registry) Register(tr TypeReader) error {
	if isNil(tr) {
		return fmt.Errorf("register type reader: %w", core.ErrNilArgument)
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.byName[tr.Name()]; ok {
		return fmt.Errorf("%s: %w", tr.Name(), core.ErrDuplicateReader)
	}
	if other, ok := reg.byType[tr.Target()]; ok {
		return fmt.Errorf("%s already handled by %s: %w", tr.Target(), other.Name(), core.ErrDuplicateReader)
	}
	reg.byName[tr.Name()] = tr
	reg.byType[tr.Target()] = tr
	core.LogDebug("type reader %s (v%d) registered for %s", tr.Name(), tr.Version(), tr.Target())
	return nil
}

func (reg *Registry) Lookup(name string) (TypeReader, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	tr, ok := reg.byName[name]
	return tr, ok
}

// ForValue returns the reader whose Target is exactly the dynamic type of v.
func (reg *Registry) ForValue(v interface{}) (TypeReader, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	tr, ok := reg.byType[reflect.TypeOf(v)]
	return tr, ok
}

// Names returns the registered reader names, sorted.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.byName))
	for name := range reg.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
