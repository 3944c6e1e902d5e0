// Package permission implements the async approval gate that sits between
// a tool call the model wants to make and that call actually running: an
// agentic loop checks a call before executing it, and — unless the call is
// already covered by the session's always-allow set or the session's
// permission level auto-approves its risk class — the check blocks until a
// host resolves the matching request.
package permission

import (
	"context"
	"sync"

	"github.com/arborcode/agentcore/errors"
	"github.com/arborcode/agentcore/event"
	"github.com/arborcode/agentcore/tool"
)

// Level controls how much risk a session's checks auto-approve without
// ever emitting a PermissionRequest.
type Level string

const (
	LevelStrict     Level = "strict"     // only ReadOnly auto-approves
	LevelStandard   Level = "standard"   // ReadOnly and SafeWrite auto-approve
	LevelPermissive Level = "permissive" // everything auto-approves, including Dangerous
)

// Decision is the resolved outcome of a permission check.
type Decision struct {
	Allowed     bool
	AlwaysAllow bool
}

// session holds one conversation's approval state: its risk level and the
// tool names it has been told to always-allow.
type session struct {
	mu          sync.Mutex
	level       Level
	alwaysAllow map[string]bool
}

// Gate is the permission rendezvous point. One Gate typically serves an
// entire host process; sessions are independent within it.
type Gate struct {
	mu       sync.Mutex
	sessions map[string]*session
	pending  map[string]chan Decision // requestID -> one-shot reply slot
	newID    func() string
	store    SessionStore
}

func NewGate(idGen func() string) *Gate {
	return &Gate{
		sessions: make(map[string]*session),
		pending:  make(map[string]chan Decision),
		newID:    idGen,
		store:    NewMemorySessionStore(),
	}
}

// WithStore swaps the gate's SessionStore (e.g. for the etcd-backed
// implementation), for hosts that want approval state to survive restarts
// or be shared across processes.
func (g *Gate) WithStore(store SessionStore) *Gate {
	g.store = store
	return g
}

func (g *Gate) sessionFor(sessionID string) *session {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if ok {
		return s
	}

	s = &session{level: LevelStandard, alwaysAllow: make(map[string]bool)}
	if snap, found, err := g.store.Load(context.Background(), sessionID); err == nil && found {
		s.level = snap.Level
		for _, name := range snap.AlwaysAllow {
			s.alwaysAllow[name] = true
		}
	}
	g.sessions[sessionID] = s
	return s
}

func (g *Gate) persist(sessionID string, s *session) {
	s.mu.Lock()
	snap := SessionSnapshot{Level: s.level}
	for name := range s.alwaysAllow {
		snap.AlwaysAllow = append(snap.AlwaysAllow, name)
	}
	s.mu.Unlock()
	_ = g.store.Save(context.Background(), sessionID, snap)
}

// SetLevel changes a session's auto-approve threshold.
func (g *Gate) SetLevel(sessionID string, level Level) {
	s := g.sessionFor(sessionID)
	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
	g.persist(sessionID, s)
}

// EndSession drops a session's level and always-allow state, both in
// memory and in the SessionStore. It does not touch pending requests: a
// Check still blocked for that session stays blocked until Resolve or
// Cancel is called with its request id.
func (g *Gate) EndSession(sessionID string) {
	g.mu.Lock()
	delete(g.sessions, sessionID)
	g.mu.Unlock()
	_ = g.store.Delete(context.Background(), sessionID)
}

// autoApproved reports whether risk is covered by level without asking.
func autoApproved(level Level, risk tool.RiskClass) bool {
	switch level {
	case LevelPermissive:
		return true
	case LevelStandard:
		return risk == tool.RiskReadOnly || risk == tool.RiskSafeWrite
	case LevelStrict:
		return risk == tool.RiskReadOnly
	default:
		return risk == tool.RiskReadOnly
	}
}

// riskOf consults a tool's RiskClassifier if it implements one, falling
// back to its declared default risk otherwise.
func riskOf(t tool.Tool, args map[string]any) tool.RiskClass {
	if rc, ok := t.(tool.RiskClassifier); ok {
		return rc.ClassifyRisk(args)
	}
	return t.Info().DefaultRisk
}

// Check runs a call through the gate. It returns immediately for
// auto-approved or always-allowed calls; otherwise it emits a
// PermissionRequest on emit and blocks — without a timeout, per this
// gate's contract — until Resolve is called with the matching request id,
// or Cancel is called with it, which fails the check closed.
func (g *Gate) Check(sessionID string, t tool.Tool, args map[string]any, emit func(event.Event)) (Decision, error) {
	toolName := t.Info().Name
	s := g.sessionFor(sessionID)

	s.mu.Lock()
	if s.alwaysAllow[toolName] {
		s.mu.Unlock()
		return Decision{Allowed: true}, nil
	}
	level := s.level
	s.mu.Unlock()

	risk := riskOf(t, args)
	if autoApproved(level, risk) {
		return Decision{Allowed: true}, nil
	}

	if emit == nil {
		return Decision{Allowed: false}, errors.New("permission", "check", errors.Permission,
			"no emit channel to raise a permission request on; failing closed", nil)
	}

	requestID := g.newID()
	replyCh := make(chan Decision, 1)

	g.mu.Lock()
	g.pending[requestID] = replyCh
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, requestID)
		g.mu.Unlock()
	}()

	emit(event.PermissionRequest(requestID, toolName, string(risk), args))

	decision, ok := <-replyCh
	if !ok {
		return Decision{}, errors.New("permission", "check", errors.Permission,
			"permission request channel closed before a decision was made", nil)
	}

	if decision.AlwaysAllow {
		s.mu.Lock()
		s.alwaysAllow[toolName] = true
		s.mu.Unlock()
		g.persist(sessionID, s)
	}

	emit(event.PermissionResponse(requestID, decision.Allowed, decision.AlwaysAllow))

	return decision, nil
}

// Resolve delivers a human/host decision for a pending request. It fails
// closed (returns an error, delivers nothing) if the request id has no
// matching pending slot — either it was never requested, already
// resolved, or dropped by Cancel.
func (g *Gate) Resolve(requestID string, allowed, alwaysAllow bool) error {
	g.mu.Lock()
	ch, ok := g.pending[requestID]
	g.mu.Unlock()

	if !ok {
		return errors.New("permission", "resolve", errors.Permission,
			"no pending permission request with id "+requestID, nil)
	}

	select {
	case ch <- Decision{Allowed: allowed, AlwaysAllow: alwaysAllow}:
		return nil
	default:
		return errors.New("permission", "resolve", errors.Internal,
			"reply slot for request "+requestID+" was already filled", nil)
	}
}

// Cancel drops a single pending request without resolving it, closing its
// channel so any blocked Check returns the fail-closed error immediately.
func (g *Gate) Cancel(requestID string) {
	g.mu.Lock()
	ch, ok := g.pending[requestID]
	delete(g.pending, requestID)
	g.mu.Unlock()
	if ok {
		close(ch)
	}
}
