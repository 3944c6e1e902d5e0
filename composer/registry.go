package composer

import "github.com/arborcode/agentcore/registry"

// Registry holds named agents so a pipeline definition can reference a
// previously-built agent by name instead of embedding it inline.
type Registry struct {
	*registry.BaseRegistry[Agent]
}

func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[Agent]()}
}
