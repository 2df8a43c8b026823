// Package source provides the file adapters that turn user exports into
// core.Record values.
//
// Each format (json, csv, xml) registers a ReadFunc at init time. Callers
// describe the files to read with a Spec and call ReadAll, which opens each
// file, normalizes its encoding, and dispatches to the registered adapter.
package source

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/JonMunkholm/userdb/internal/core"
)

// ReadFunc decodes one source document. label identifies the source in
// record references and error messages.
type ReadFunc func(r io.Reader, label string) ([]core.Record, error)

var (
	registry   = make(map[string]ReadFunc)
	registryMu sync.RWMutex
)

// Register adds an adapter for format to the registry.
// Panics if an adapter with the same format is already registered.
func Register(format string, fn ReadFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[format]; exists {
		panic(fmt.Sprintf("source format already registered: %s", format))
	}
	registry[format] = fn
}

// Get returns the adapter for format.
// Returns false if not found.
func Get(format string) (ReadFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	fn, ok := registry[format]
	return fn, ok
}

// Formats returns all registered format tags, sorted.
func Formats() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	formats := make([]string, 0, len(registry))
	for f := range registry {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
