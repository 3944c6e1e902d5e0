package provider

import (
	"fmt"
	"strings"

	"github.com/arborcode/agentcore/registry"
)

// Registry holds named Provider instances, mirroring the teacher's
// llms.LLMRegistry built on the shared generic registry.
type Registry struct {
	*registry.BaseRegistry[Provider]
}

func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[Provider]()}
}

func (r *Registry) RegisterProvider(name string, p Provider) error {
	if p == nil {
		return fmt.Errorf("provider: cannot register nil provider %q", name)
	}
	return r.Register(name, p)
}

// defaultRetryClassifier treats network-shaped errors (those whose
// message mentions common transient conditions) as retryable and
// everything else as terminal. Hosts that want provider-specific
// transient/terminal classification (e.g. reading an HTTP status code)
// should supply their own RetryClassifier instead of this default.
type defaultRetryClassifier struct{}

func NewDefaultRetryClassifier() RetryClassifier { return defaultRetryClassifier{} }

func (defaultRetryClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"timeout", "connection reset", "eof", "temporary", "429", "503", "502"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
