package quality

import (
	"fmt"
	"log/slog"
	"net/rpc"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"
)

// handshakeConfig is the out-of-process gate's magic cookie, the same
// handshake shape hashicorp/go-plugin uses across the ecosystem: a
// protocol version plus a key/value pair a client and server must agree
// on before anything else is trusted.
var handshakeConfig = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "AGENTCORE_QUALITY_PLUGIN",
	MagicCookieValue: "agentcore_quality_plugin_v1",
}

// ValidationRequest is what the host sends an out-of-process validator.
type ValidationRequest struct {
	ProjectRoot string
	Diff        string
}

// ValidationResponse is what a plugin returns — the same shape a
// PipelineGateResult is built from, minus the bookkeeping fields the host
// fills in itself (id, name, phase, duration).
type ValidationResponse struct {
	Status   Status
	Message  string
	Findings []Finding
}

// Validator is the interface an out-of-process quality-gate plugin must
// implement. It is dispensed over net/rpc rather than gRPC: a plugin this
// narrow (one synchronous call, no streaming) gets nothing from gRPC's
// extra wire complexity that net/rpc's Go-native codec doesn't already
// give it for free.
type Validator interface {
	Validate(req ValidationRequest) (ValidationResponse, error)
}

type validatorRPCServer struct {
	Impl Validator
}

func (s *validatorRPCServer) Validate(req ValidationRequest, resp *ValidationResponse) error {
	out, err := s.Impl.Validate(req)
	if err != nil {
		return err
	}
	*resp = out
	return nil
}

type validatorRPCClient struct {
	client *rpc.Client
}

func (c *validatorRPCClient) Validate(req ValidationRequest) (ValidationResponse, error) {
	var resp ValidationResponse
	err := c.client.Call("Plugin.Validate", req, &resp)
	return resp, err
}

// ValidatorPlugin is the goplugin.Plugin implementation both the host and
// a plugin binary register with goplugin.Serve / goplugin.ClientConfig.
type ValidatorPlugin struct {
	Impl Validator
}

func (p *ValidatorPlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return &validatorRPCServer{Impl: p.Impl}, nil
}

func (p *ValidatorPlugin) Client(b *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &validatorRPCClient{client: c}, nil
}

// slogHClog bridges hclog's interface onto the module's log/slog logger,
// so an out-of-process plugin's handshake/negotiation chatter lands in
// the same structured log stream as the rest of the host.
type slogHClog struct {
	hclog.Logger
	logger *slog.Logger
}

func newSlogHClog(logger *slog.Logger) hclog.Logger {
	base := hclog.New(&hclog.LoggerOptions{Name: "agentcore-quality-plugin", Level: hclog.Warn})
	return &slogHClog{Logger: base, logger: logger}
}

func (l *slogHClog) Info(msg string, args ...interface{})  { l.logger.Info(msg, args...) }
func (l *slogHClog) Warn(msg string, args ...interface{})  { l.logger.Warn(msg, args...) }
func (l *slogHClog) Error(msg string, args ...interface{}) { l.logger.Error(msg, args...) }
func (l *slogHClog) Debug(msg string, args ...interface{}) { l.logger.Debug(msg, args...) }

// PluginGate runs an out-of-process validator binary via hashicorp/
// go-plugin, launching it once and reusing the client for the gate's
// lifetime (the caller is responsible for calling Close when the
// pipeline that owns this gate is done).
type PluginGate struct {
	id, name string
	path     string
	logger   *slog.Logger

	client *goplugin.Client
	impl   Validator
}

func NewPluginGate(id, name, path string, logger *slog.Logger) *PluginGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &PluginGate{id: id, name: name, path: path, logger: logger}
}

func (g *PluginGate) ID() string   { return g.id }
func (g *PluginGate) Name() string { return g.name }
func (g *PluginGate) Phase() Phase { return PhasePlugin }

func (g *PluginGate) connect() (Validator, error) {
	if g.impl != nil {
		return g.impl, nil
	}
	g.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: handshakeConfig,
		Plugins:         map[string]goplugin.Plugin{"validator": &ValidatorPlugin{}},
		Cmd:             exec.Command(g.path),
		Logger:          newSlogHClog(g.logger),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
	})

	rpcClient, err := g.client.Client()
	if err != nil {
		g.client.Kill()
		return nil, fmt.Errorf("quality plugin %s: %w", g.id, err)
	}
	raw, err := rpcClient.Dispense("validator")
	if err != nil {
		g.client.Kill()
		return nil, fmt.Errorf("quality plugin %s: dispense: %w", g.id, err)
	}
	impl, ok := raw.(Validator)
	if !ok {
		g.client.Kill()
		return nil, fmt.Errorf("quality plugin %s: does not implement Validator", g.id)
	}
	g.impl = impl
	return impl, nil
}

func (g *PluginGate) Close() {
	if g.client != nil {
		g.client.Kill()
	}
}

func (g *PluginGate) Run(pctx Context) PipelineGateResult {
	status, message, findings, duration := timed(func() (Status, string, []Finding) {
		impl, err := g.connect()
		if err != nil {
			return StatusSkipped, err.Error(), nil
		}
		resp, err := impl.Validate(ValidationRequest{ProjectRoot: pctx.ProjectRoot, Diff: pctx.Diff})
		if err != nil {
			return StatusFailed, err.Error(), nil
		}
		return resp.Status, resp.Message, resp.Findings
	})

	return PipelineGateResult{
		GateID:     g.id,
		Name:       g.name,
		Phase:      g.Phase(),
		Status:     status,
		DurationMs: duration.Milliseconds(),
		Message:    message,
		Findings:   findings,
	}
}
