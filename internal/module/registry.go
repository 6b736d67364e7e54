package module

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// MaxNamespaceKeyLength is the store's key-length limit for namespaces.
const MaxNamespaceKeyLength = 15

// ErrRequirementOrder is returned when a module tries to require a module
// constructed after it. Requirements only point backwards in construction
// order, which keeps the dependency graph acyclic.
var ErrRequirementOrder = errors.New("requirement must be constructed before its dependent")

// Registry owns every module in construction order and the dependency graph
// between them. Modules are referenced by their ID, the index at which they
// were registered.
type Registry struct {
	mu         sync.RWMutex
	modules    []*Module
	namespaces map[string]int
	requires   [][]int
	dependents [][]int
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{
		namespaces: make(map[string]int),
	}
}

// Register appends m and assigns its ID. Returns an error if the namespace
// key is empty, too long or already claimed.
func (r *Registry) Register(m *Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := m.spec.NamespaceKey
	if key == "" {
		return fmt.Errorf("module %s has no namespace key", m.spec.Name)
	}
	if len(key) > MaxNamespaceKeyLength {
		return fmt.Errorf("module %s namespace key %q exceeds %d characters", m.spec.Name, key, MaxNamespaceKeyLength)
	}
	if owner, exists := r.namespaces[key]; exists {
		return fmt.Errorf("module %s namespace key %q already claimed by %s", m.spec.Name, key, r.modules[owner].spec.Name)
	}

	m.id = len(r.modules)
	r.modules = append(r.modules, m)
	r.namespaces[key] = m.id
	r.requires = append(r.requires, nil)
	r.dependents = append(r.dependents, nil)
	return nil
}

// Modules returns every registered module in construction order.
// The returned slice is a copy and can be safely modified.
func (r *Registry) Modules() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Module(nil), r.modules...)
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// addEdge records that dependent requires required.
func (r *Registry) addEdge(dependent, required int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dependent < 0 || dependent >= len(r.modules) || required < 0 || required >= len(r.modules) {
		return fmt.Errorf("module %d or %d is not registered", dependent, required)
	}
	if required >= dependent {
		return fmt.Errorf("%s cannot require %s: %w",
			r.modules[dependent].spec.Name, r.modules[required].spec.Name, ErrRequirementOrder)
	}
	for _, id := range r.requires[dependent] {
		if id == required {
			return nil
		}
	}
	r.requires[dependent] = append(r.requires[dependent], required)
	r.dependents[required] = append(r.dependents[required], dependent)
	return nil
}

// Requirements returns the modules id directly requires.
func (r *Registry) Requirements(id int) []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.requires[id])
}

// Dependents returns every module that transitively requires id, ordered
// so that a module always comes before the modules it requires.
func (r *Registry) Dependents(id int) []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int]bool)
	queue := append([]int(nil), r.dependents[id]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		queue = append(queue, r.dependents[next]...)
	}

	ids := make([]int, 0, len(seen))
	for dep := range seen {
		ids = append(ids, dep)
	}
	// a dependent always has a higher ID than anything it requires
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	return r.lookup(ids)
}

func (r *Registry) lookup(ids []int) []*Module {
	out := make([]*Module, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.modules[id])
	}
	return out
}
