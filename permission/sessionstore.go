package permission

import (
	"context"
	"encoding/json"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// SessionSnapshot is the persisted shape of one session's approval state,
// letting a host survive a restart without re-prompting for approvals the
// user already granted "always allow" for.
type SessionSnapshot struct {
	Level       Level    `json:"level"`
	AlwaysAllow []string `json:"always_allow"`
}

// SessionStore persists session approval state outside the process. The
// in-memory default is adequate for a single desktop process; a host
// running the orchestration core across multiple replicas (e.g. a team
// server fronting several worker processes) can supply the etcd-backed
// implementation instead so "always allow" decisions are shared.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (SessionSnapshot, bool, error)
	Save(ctx context.Context, sessionID string, snap SessionSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// MemorySessionStore is the default, process-local SessionStore.
type MemorySessionStore struct {
	data map[string]SessionSnapshot
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{data: make(map[string]SessionSnapshot)}
}

func (m *MemorySessionStore) Load(_ context.Context, sessionID string) (SessionSnapshot, bool, error) {
	snap, ok := m.data[sessionID]
	return snap, ok, nil
}

func (m *MemorySessionStore) Save(_ context.Context, sessionID string, snap SessionSnapshot) error {
	m.data[sessionID] = snap
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

// EtcdSessionStore persists session snapshots under a key prefix in etcd,
// for hosts that run several orchestrator processes sharing one set of
// sessions.
type EtcdSessionStore struct {
	client *clientv3.Client
	prefix string
}

func NewEtcdSessionStore(client *clientv3.Client, prefix string) *EtcdSessionStore {
	if prefix == "" {
		prefix = "/agentcore/permission/sessions/"
	}
	return &EtcdSessionStore{client: client, prefix: prefix}
}

func (e *EtcdSessionStore) key(sessionID string) string {
	return e.prefix + sessionID
}

func (e *EtcdSessionStore) Load(ctx context.Context, sessionID string) (SessionSnapshot, bool, error) {
	resp, err := e.client.Get(ctx, e.key(sessionID))
	if err != nil {
		return SessionSnapshot{}, false, fmt.Errorf("permission: etcd get %s: %w", sessionID, err)
	}
	if len(resp.Kvs) == 0 {
		return SessionSnapshot{}, false, nil
	}
	var snap SessionSnapshot
	if err := json.Unmarshal(resp.Kvs[0].Value, &snap); err != nil {
		return SessionSnapshot{}, false, fmt.Errorf("permission: decode snapshot for %s: %w", sessionID, err)
	}
	return snap, true, nil
}

func (e *EtcdSessionStore) Save(ctx context.Context, sessionID string, snap SessionSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("permission: encode snapshot for %s: %w", sessionID, err)
	}
	if _, err := e.client.Put(ctx, e.key(sessionID), string(b)); err != nil {
		return fmt.Errorf("permission: etcd put %s: %w", sessionID, err)
	}
	return nil
}

func (e *EtcdSessionStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := e.client.Delete(ctx, e.key(sessionID)); err != nil {
		return fmt.Errorf("permission: etcd delete %s: %w", sessionID, err)
	}
	return nil
}
