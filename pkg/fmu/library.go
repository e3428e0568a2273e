package fmu

import (
	"context"
	"sort"
	"sync"
)

// DefaultLibrary is the name under which the FMPy namespace registers.
const DefaultLibrary = "fmpy"

// ReadModelDescriptionFunc parses the model description of an FMU file.
type ReadModelDescriptionFunc func(ctx context.Context, filename string) (*ModelDescription, error)

// SimulateFMUFunc runs a simulation of an FMU file and returns its result
// table.
type SimulateFMUFunc func(ctx context.Context, filename string, opts SimulateOptions) (*SimulationResult, error)

// Namespace holds the current binding of each library entry point. A nil
// binding means the library does not provide that entry point.
type Namespace struct {
	ReadModelDescription ReadModelDescriptionFunc
	SimulateFMU          SimulateFMUFunc
}

var (
	namespacesMu sync.RWMutex
	namespaces   = make(map[string]*Namespace)
)

// Register makes a library namespace available under name. Registering the
// same name twice replaces the earlier namespace.
func Register(name string, ns *Namespace) {
	if ns == nil {
		panic("fmu: Register namespace is nil")
	}
	namespacesMu.Lock()
	defer namespacesMu.Unlock()
	namespaces[name] = ns
}

// Unregister removes the namespace registered under name.
func Unregister(name string) {
	namespacesMu.Lock()
	defer namespacesMu.Unlock()
	delete(namespaces, name)
}

// Lookup returns the namespace registered under name.
func Lookup(name string) (*Namespace, bool) {
	namespacesMu.RLock()
	defer namespacesMu.RUnlock()
	ns, ok := namespaces[name]
	return ns, ok
}

// Libraries returns the sorted names of the registered namespaces.
func Libraries() []string {
	namespacesMu.RLock()
	defer namespacesMu.RUnlock()
	names := make([]string, 0, len(namespaces))
	for name := range namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
