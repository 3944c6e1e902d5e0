package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// MCPConfig configures a connection to a remote MCP tool server, mirroring
// the teacher's mcptoolset.Config but trimmed to the stdio/HTTP transports
// this core actually wires up.
type MCPConfig struct {
	Name      string
	URL       string
	Transport string // "stdio" (or empty) runs Command; any other value connects to URL over SSE
	Command   string
	Args      []string
	Filter    []string // tool names to expose; empty means expose all
	Timeout   time.Duration
}

// MCPRepository is a Repository backed by a remote MCP server, connecting
// lazily on first DiscoverTools call the way the teacher's mcptoolset does.
type MCPRepository struct {
	cfg MCPConfig

	mu        sync.Mutex
	mcpClient *client.Client
	tools     map[string]Tool
	filterSet map[string]bool
}

func NewMCPRepository(cfg MCPConfig) (*MCPRepository, error) {
	if cfg.URL == "" && cfg.Command == "" {
		return nil, fmt.Errorf("tool: mcp repository requires either URL or Command")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}
	var filterSet map[string]bool
	if len(cfg.Filter) > 0 {
		filterSet = make(map[string]bool, len(cfg.Filter))
		for _, name := range cfg.Filter {
			filterSet[name] = true
		}
	}
	return &MCPRepository{cfg: cfg, tools: make(map[string]Tool), filterSet: filterSet}, nil
}

func (m *MCPRepository) Name() string { return m.cfg.Name }
func (m *MCPRepository) Kind() string { return "mcp" }

// DiscoverTools connects to the MCP server (if not already connected) and
// lists its tools, wrapping each as an mcpTool adapter.
func (m *MCPRepository) DiscoverTools() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mcpClient == nil {
		c, err := m.connect()
		if err != nil {
			return fmt.Errorf("tool: mcp connect to %s: %w", m.cfg.Name, err)
		}
		m.mcpClient = c
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout)
	defer cancel()

	listed, err := m.mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("tool: mcp list tools from %s: %w", m.cfg.Name, err)
	}

	for _, td := range listed.Tools {
		if m.filterSet != nil && !m.filterSet[td.Name] {
			continue
		}
		m.tools[td.Name] = &mcpTool{client: m.mcpClient, def: td, source: m.cfg.Name, timeout: m.cfg.Timeout}
	}
	return nil
}

func (m *MCPRepository) connect() (*client.Client, error) {
	switch m.cfg.Transport {
	case "stdio", "":
		c, err := client.NewStdioMCPClient(m.cfg.Command, nil, m.cfg.Args...)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout)
		defer cancel()
		if _, err := c.Initialize(ctx, mcp.InitializeRequest{}); err != nil {
			return nil, fmt.Errorf("initialize: %w", err)
		}
		return c, nil
	default:
		c, err := client.NewSSEMCPClient(m.cfg.URL)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout)
		defer cancel()
		if err := c.Start(ctx); err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		if _, err := c.Initialize(ctx, mcp.InitializeRequest{}); err != nil {
			return nil, fmt.Errorf("initialize: %w", err)
		}
		return c, nil
	}
}

func (m *MCPRepository) ListTools() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]Info, 0, len(m.tools))
	for _, t := range m.tools {
		infos = append(infos, t.Info())
	}
	return infos
}

func (m *MCPRepository) GetTool(name string) (Tool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tools[name]
	return t, ok
}

// mcpTool adapts a single remote MCP tool definition to the local Tool
// interface, round-tripping Execute through the MCP client's CallTool.
type mcpTool struct {
	client  *client.Client
	def     mcp.Tool
	source  string
	timeout time.Duration
}

func (t *mcpTool) Info() Info {
	return Info{
		Name:           t.def.Name,
		Description:    t.def.Description,
		IsParallelSafe: false, // remote side effects are unknown; treat conservatively
		DefaultRisk:    RiskSafeWrite,
		Source:         t.source,
	}
}

func (t *mcpTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	callCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = t.def.Name
	req.Params.Arguments = args

	resp, err := t.client.CallTool(callCtx, req)
	if err != nil {
		return Result{Success: false, ToolName: t.def.Name, Error: err.Error()}, err
	}

	var content string
	for _, item := range resp.Content {
		if tc, ok := item.(mcp.TextContent); ok {
			content += tc.Text
		}
	}

	if resp.IsError {
		return Result{Success: false, ToolName: t.def.Name, Error: content}, fmt.Errorf("mcp tool %s reported an error: %s", t.def.Name, content)
	}
	return Result{Success: true, ToolName: t.def.Name, Content: content}, nil
}
