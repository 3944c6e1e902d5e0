package tool

import (
	"fmt"

	"github.com/arborcode/agentcore/registry"
)

// Repository mirrors the teacher's ToolSource split between a local,
// pre-registered set of tools and a remote discovery surface (MCP
// servers). LocalRepository holds a plain map of pre-registered tools;
// MCPRepository wraps a client that discovers its tool set at connect time.
type Repository interface {
	Name() string
	Kind() string // "local" or "mcp"
	DiscoverTools() error
	ListTools() []Info
	GetTool(name string) (Tool, bool)
}

// Registry aggregates tools from multiple repositories into a single
// name->Tool lookup, the same shape as the teacher's tools.ToolRegistry
// but built on the generic registry package rather than a bespoke map.
type Registry struct {
	*registry.BaseRegistry[Tool]
	repos []Repository
}

func NewRegistry() *Registry {
	return &Registry{BaseRegistry: registry.NewBaseRegistry[Tool]()}
}

// RegisterRepository discovers the repository's tools and merges them
// into the flat registry. A name collision across repositories is an
// error: tool names must be globally unique so the model's tool-call
// dispatch is unambiguous.
func (r *Registry) RegisterRepository(repo Repository) error {
	if err := repo.DiscoverTools(); err != nil {
		return fmt.Errorf("tool: discover %s: %w", repo.Name(), err)
	}
	for _, info := range repo.ListTools() {
		t, ok := repo.GetTool(info.Name)
		if !ok {
			continue
		}
		if err := r.Register(info.Name, t); err != nil {
			return fmt.Errorf("tool: register %s from %s: %w", info.Name, repo.Name(), err)
		}
	}
	r.repos = append(r.repos, repo)
	return nil
}

// ListInfo returns the Info of every registered tool, sorted by name, for
// surfacing to the model as the tool-call menu.
func (r *Registry) ListInfo() []Info {
	names := r.Names()
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		t, ok := r.Get(name)
		if !ok {
			continue
		}
		infos = append(infos, t.Info())
	}
	return infos
}

// LocalRepository is a pre-registered, in-process set of tools — the
// canonical bundle plus anything a host adds before startup.
type LocalRepository struct {
	name  string
	tools map[string]Tool
}

func NewLocalRepository(name string) *LocalRepository {
	return &LocalRepository{name: name, tools: make(map[string]Tool)}
}

func (l *LocalRepository) Name() string { return l.name }
func (l *LocalRepository) Kind() string { return "local" }

func (l *LocalRepository) Add(t Tool) error {
	info := t.Info()
	if info.Name == "" {
		return fmt.Errorf("tool: name cannot be empty")
	}
	if _, exists := l.tools[info.Name]; exists {
		return fmt.Errorf("tool: %s already registered in %s", info.Name, l.name)
	}
	l.tools[info.Name] = t
	return nil
}

func (l *LocalRepository) DiscoverTools() error { return nil } // pre-registered, nothing to discover

func (l *LocalRepository) ListTools() []Info {
	infos := make([]Info, 0, len(l.tools))
	for _, t := range l.tools {
		info := t.Info()
		info.Source = l.name
		infos = append(infos, info)
	}
	return infos
}

func (l *LocalRepository) GetTool(name string) (Tool, bool) {
	t, ok := l.tools[name]
	return t, ok
}

// NewCanonicalRepository builds the bundled tool set the core ships with:
// Read, Write, Edit, MultiEdit, LS, Glob, Grep, Bash, Cwd, CodebaseSearch.
// Task is registered separately by the host once a SpawnerHandle exists,
// since it closes over the spawner rather than just the filesystem.
func NewCanonicalRepository() (*LocalRepository, error) {
	repo := NewLocalRepository("local")
	tools := []Tool{
		NewReadTool(),
		NewWriteTool(),
		NewEditTool(),
		NewMultiEditTool(),
		NewLSTool(),
		NewGlobTool(),
		NewGrepTool(),
		NewBashTool(BashConfig{}),
		NewCwdTool(),
		NewCodebaseSearchTool(),
	}
	for _, t := range tools {
		if err := repo.Add(t); err != nil {
			return nil, err
		}
	}
	return repo, nil
}
