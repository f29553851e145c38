package commands

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command
	aliases map[string]string // alias -> primary name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		aliases: make(map[string]string),
	}
}

// Register adds c under its name and aliases. A name or alias may be taken
// only once across both namespaces.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if r.takenLocked(name) {
		return fmt.Errorf("command already registered: %s", name)
	}
	for _, alias := range c.Aliases() {
		if alias == name || r.takenLocked(alias) {
			return fmt.Errorf("command alias already registered: %s", alias)
		}
	}

	r.byName[name] = c
	for _, alias := range c.Aliases() {
		r.aliases[alias] = name
	}
	return nil
}

func (r *Registry) takenLocked(key string) bool {
	_, isName := r.byName[key]
	_, isAlias := r.aliases[key]
	return isName || isAlias
}

// Find resolves a name or alias.
func (r *Registry) Find(key string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.aliases[key]; ok {
		key = name
	}
	c, ok := r.byName[key]
	return c, ok
}

// All lists each command once, ordered by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]Command, 0, len(r.byName))
	for _, name := range slices.Sorted(maps.Keys(r.byName)) {
		cmds = append(cmds, r.byName[name])
	}
	return cmds
}

// DefaultRegistry holds the commands registered from init.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
