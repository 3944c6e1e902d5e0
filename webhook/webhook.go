// Package webhook dispatches orchestration-core lifecycle events (task
// complete, task failed, progress milestones) to configured outbound
// channels. Actual delivery transports (Slack, Discord, a generic HTTP
// endpoint) are explicitly out of scope for the core — Dispatcher
// consumes them through the narrow Sender interface, and a host wires
// concrete transports behind it.
package webhook

import (
	"errors"
	"time"
)

// ChannelType names a delivery transport. The core never implements
// one itself; it only routes by this key to a registered Sender.
type ChannelType string

const (
	ChannelSlack    ChannelType = "slack"
	ChannelFeishu   ChannelType = "feishu"
	ChannelTelegram ChannelType = "telegram"
	ChannelDiscord  ChannelType = "discord"
	ChannelCustom   ChannelType = "custom"
)

// EventType is a lifecycle event that can trigger a webhook.
type EventType string

const (
	EventTaskComplete      EventType = "task_complete"
	EventTaskFailed        EventType = "task_failed"
	EventTaskCancelled     EventType = "task_cancelled"
	EventProgressMilestone EventType = "progress_milestone"
)

// Scope restricts which sessions a channel fires for.
type Scope struct {
	Global     bool
	SessionIDs []string
}

func (s Scope) matches(sessionID string) bool {
	if s.Global {
		return true
	}
	if sessionID == "" {
		return false
	}
	for _, id := range s.SessionIDs {
		if id == sessionID {
			return true
		}
	}
	return false
}

// ChannelConfig is one configured outbound channel.
type ChannelConfig struct {
	ID          string
	Name        string
	Type        ChannelType
	Enabled     bool
	URL         string
	Secret      string // hydrated from a secret store by the host, never logged
	Scope       Scope
	Events      []EventType
	RatePerSec  float64 // 0 means DefaultRatePerSec
	RateBurst   int     // 0 means DefaultRateBurst
}

func (c ChannelConfig) wantsEvent(e EventType) bool {
	for _, want := range c.Events {
		if want == e {
			return true
		}
	}
	return false
}

// TokenUsage summarises token spend for inclusion in a payload.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Payload is the event data handed to a Sender.
type Payload struct {
	EventType    EventType
	SessionID    string
	SessionName  string
	ProjectPath  string
	Summary      string
	Details      map[string]any
	Timestamp    time.Time
	DurationMs   int64
	TokenUsage   *TokenUsage
	RemoteSource string
}

// DeliveryStatus is the outcome of one send attempt.
type DeliveryStatus string

const (
	DeliveryPending  DeliveryStatus = "pending"
	DeliverySuccess  DeliveryStatus = "success"
	DeliveryFailed   DeliveryStatus = "failed"
	DeliveryRetrying DeliveryStatus = "retrying"
)

// Delivery records one attempt (or attempt history) of sending a
// Payload to a channel, for audit and retry scheduling.
type Delivery struct {
	ID            string
	ChannelID     string
	EventType     EventType
	Payload       Payload
	Status        DeliveryStatus
	ResponseBody  string
	Attempts      int
	LastAttemptAt time.Time
	CreatedAt     time.Time
}

var (
	ErrChannelNotFound = errors.New("webhook: channel not found")
	ErrRateLimited     = errors.New("webhook: rate limit exceeded")
)
