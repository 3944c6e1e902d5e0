package webhook

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultRatePerSec = 1.0
	DefaultRateBurst  = 5
	DefaultMaxAttempts = 5
)

// Sender delivers one payload to one channel. Concrete implementations
// (HTTP POST to Slack/Discord/a generic webhook URL) live outside this
// package; the core depends only on this interface.
type Sender interface {
	Send(ctx context.Context, payload Payload, config ChannelConfig) error
}

// ChannelStore is the persistence boundary for channel configuration.
// The core ships no implementation; a host backs it with its own
// config store or database.
type ChannelStore interface {
	ListEnabled() ([]ChannelConfig, error)
	Get(channelID string) (ChannelConfig, bool, error)
}

// DeliveryStore is the persistence boundary for delivery audit/retry
// records, deliberately unimplemented here for the same reason
// ChannelStore is — database schemas are out of scope for the core.
type DeliveryStore interface {
	Save(d Delivery) error
	UpdateStatus(d Delivery) error
	ListFailedForRetry(maxAttempts int) ([]Delivery, error)
}

// Dispatcher matches events to enabled channels, rate-limits and sends
// via the registered Sender for each channel's type, and records
// delivery outcomes through DeliveryStore.
type Dispatcher struct {
	senders  map[ChannelType]Sender
	channels ChannelStore
	deliveries DeliveryStore

	mu       sync.Mutex
	limiters map[string]*rate.Limiter // keyed by channel ID
}

func NewDispatcher(channels ChannelStore, deliveries DeliveryStore, senders map[ChannelType]Sender) *Dispatcher {
	return &Dispatcher{
		senders:    senders,
		channels:   channels,
		deliveries: deliveries,
		limiters:   make(map[string]*rate.Limiter),
	}
}

func (d *Dispatcher) limiterFor(config ChannelConfig) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	if lim, ok := d.limiters[config.ID]; ok {
		return lim
	}
	perSec := config.RatePerSec
	if perSec <= 0 {
		perSec = DefaultRatePerSec
	}
	burst := config.RateBurst
	if burst <= 0 {
		burst = DefaultRateBurst
	}
	lim := rate.NewLimiter(rate.Limit(perSec), burst)
	d.limiters[config.ID] = lim
	return lim
}

// Dispatch routes payload to every enabled channel whose event and
// scope filters match, rate-limiting per channel and recording one
// Delivery per attempted send. A channel without a registered Sender
// for its type is skipped, not failed — it is a configuration gap the
// dispatcher cannot itself resolve.
func (d *Dispatcher) Dispatch(ctx context.Context, payload Payload) ([]Delivery, error) {
	configs, err := d.channels.ListEnabled()
	if err != nil {
		return nil, err
	}

	var deliveries []Delivery
	for _, config := range configs {
		if !config.Enabled || !config.wantsEvent(payload.EventType) || !config.Scope.matches(payload.SessionID) {
			continue
		}
		sender, ok := d.senders[config.Type]
		if !ok {
			continue
		}

		delivery := Delivery{
			ChannelID:     config.ID,
			EventType:     payload.EventType,
			Payload:       payload,
			Status:        DeliveryPending,
			Attempts:      1,
			LastAttemptAt: payload.Timestamp,
			CreatedAt:     payload.Timestamp,
		}

		if err := d.limiterFor(config).Wait(ctx); err != nil {
			delivery.Status = DeliveryFailed
			delivery.ResponseBody = ErrRateLimited.Error()
		} else if err := sender.Send(ctx, payload, config); err != nil {
			delivery.Status = DeliveryFailed
			delivery.ResponseBody = err.Error()
		} else {
			delivery.Status = DeliverySuccess
		}

		if d.deliveries != nil {
			_ = d.deliveries.Save(delivery)
		}
		deliveries = append(deliveries, delivery)
	}
	return deliveries, nil
}

// RetryFailed re-attempts failed deliveries whose exponential backoff
// window (2^attempts seconds since the last attempt) has elapsed,
// up to maxAttempts total attempts.
func (d *Dispatcher) RetryFailed(ctx context.Context, maxAttempts int, now time.Time) ([]Delivery, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	failed, err := d.deliveries.ListFailedForRetry(maxAttempts)
	if err != nil {
		return nil, err
	}

	var retried []Delivery
	for _, delivery := range failed {
		if !backoffElapsed(delivery, now) {
			continue
		}
		config, ok, err := d.channels.Get(delivery.ChannelID)
		if err != nil || !ok {
			continue
		}
		sender, ok := d.senders[config.Type]
		if !ok {
			continue
		}

		delivery.Status = DeliveryRetrying
		delivery.Attempts++
		delivery.LastAttemptAt = now

		if err := d.limiterFor(config).Wait(ctx); err != nil {
			delivery.Status = DeliveryFailed
			delivery.ResponseBody = ErrRateLimited.Error()
		} else if err := sender.Send(ctx, delivery.Payload, config); err != nil {
			delivery.Status = DeliveryFailed
			delivery.ResponseBody = err.Error()
		} else {
			delivery.Status = DeliverySuccess
		}

		_ = d.deliveries.UpdateStatus(delivery)
		retried = append(retried, delivery)
	}
	return retried, nil
}

func backoffElapsed(d Delivery, now time.Time) bool {
	backoff := time.Duration(1<<uint(d.Attempts)) * time.Second
	return now.After(d.LastAttemptAt.Add(backoff)) || now.Equal(d.LastAttemptAt.Add(backoff))
}
