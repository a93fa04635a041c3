package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[EntityType]TemplateDefinition)
	registryMu sync.RWMutex
)

// RegisterTemplate adds a template definition to the registry.
// Panics if the entity type is already registered.
func RegisterTemplate(def TemplateDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Entity]; exists {
		panic(fmt.Sprintf("template already registered: %s", def.Entity))
	}

	registry[def.Entity] = def
}

// GetTemplate returns the template definition for an entity type.
// Deterministic and side-effect free.
func GetTemplate(entity EntityType) (TemplateDefinition, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[entity]
	if !ok {
		return TemplateDefinition{}, unknownEntityType(string(entity))
	}
	return def, nil
}

// AllTemplates returns every registered definition, sorted by entity
// type for consistent ordering.
func AllTemplates() []TemplateDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]TemplateDefinition, 0, len(registry))
	for _, def := range registry {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Entity < out[j].Entity
	})
	return out
}
