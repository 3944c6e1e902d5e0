package webhook

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannelStore struct {
	configs []ChannelConfig
}

func (f *fakeChannelStore) ListEnabled() ([]ChannelConfig, error) { return f.configs, nil }
func (f *fakeChannelStore) Get(id string) (ChannelConfig, bool, error) {
	for _, c := range f.configs {
		if c.ID == id {
			return c, true, nil
		}
	}
	return ChannelConfig{}, false, nil
}

type fakeDeliveryStore struct {
	mu     sync.Mutex
	saved  []Delivery
	failed []Delivery
}

func (f *fakeDeliveryStore) Save(d Delivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, d)
	if d.Status == DeliveryFailed {
		f.failed = append(f.failed, d)
	}
	return nil
}

func (f *fakeDeliveryStore) UpdateStatus(d Delivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.failed {
		if f.failed[i].ChannelID == d.ChannelID {
			f.failed[i] = d
		}
	}
	return nil
}

func (f *fakeDeliveryStore) ListFailedForRetry(maxAttempts int) ([]Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Delivery
	for _, d := range f.failed {
		if d.Attempts < maxAttempts {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeSender struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSender) Send(ctx context.Context, payload Payload, config ChannelConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func TestDispatch_SendsOnlyToMatchingEnabledChannels(t *testing.T) {
	sender := &fakeSender{}
	channels := &fakeChannelStore{configs: []ChannelConfig{
		{ID: "c1", Type: ChannelSlack, Enabled: true, Events: []EventType{EventTaskComplete}, Scope: Scope{Global: true}},
		{ID: "c2", Type: ChannelSlack, Enabled: true, Events: []EventType{EventTaskFailed}, Scope: Scope{Global: true}},
		{ID: "c3", Type: ChannelSlack, Enabled: false, Events: []EventType{EventTaskComplete}, Scope: Scope{Global: true}},
	}}
	d := NewDispatcher(channels, &fakeDeliveryStore{}, map[ChannelType]Sender{ChannelSlack: sender})

	deliveries, err := d.Dispatch(context.Background(), Payload{EventType: EventTaskComplete, Timestamp: time.Now()})
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, "c1", deliveries[0].ChannelID)
	assert.Equal(t, DeliverySuccess, deliveries[0].Status)
	assert.Equal(t, 1, sender.calls)
}

func TestDispatch_RespectsSessionScope(t *testing.T) {
	sender := &fakeSender{}
	channels := &fakeChannelStore{configs: []ChannelConfig{
		{ID: "c1", Type: ChannelSlack, Enabled: true, Events: []EventType{EventTaskComplete}, Scope: Scope{SessionIDs: []string{"s1"}}},
	}}
	d := NewDispatcher(channels, &fakeDeliveryStore{}, map[ChannelType]Sender{ChannelSlack: sender})

	deliveries, err := d.Dispatch(context.Background(), Payload{EventType: EventTaskComplete, SessionID: "other", Timestamp: time.Now()})
	require.NoError(t, err)
	assert.Empty(t, deliveries)
}

func TestDispatch_SkipsChannelWithNoRegisteredSender(t *testing.T) {
	channels := &fakeChannelStore{configs: []ChannelConfig{
		{ID: "c1", Type: ChannelDiscord, Enabled: true, Events: []EventType{EventTaskComplete}, Scope: Scope{Global: true}},
	}}
	d := NewDispatcher(channels, &fakeDeliveryStore{}, map[ChannelType]Sender{})

	deliveries, err := d.Dispatch(context.Background(), Payload{EventType: EventTaskComplete, Timestamp: time.Now()})
	require.NoError(t, err)
	assert.Empty(t, deliveries)
}

func TestDispatch_SenderErrorRecordsFailedDelivery(t *testing.T) {
	sender := &fakeSender{err: errors.New("boom")}
	channels := &fakeChannelStore{configs: []ChannelConfig{
		{ID: "c1", Type: ChannelSlack, Enabled: true, Events: []EventType{EventTaskComplete}, Scope: Scope{Global: true}},
	}}
	store := &fakeDeliveryStore{}
	d := NewDispatcher(channels, store, map[ChannelType]Sender{ChannelSlack: sender})

	deliveries, err := d.Dispatch(context.Background(), Payload{EventType: EventTaskComplete, Timestamp: time.Now()})
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, DeliveryFailed, deliveries[0].Status)
	assert.Equal(t, "boom", deliveries[0].ResponseBody)
}

func TestRetryFailed_SkipsBeforeBackoffWindowElapses(t *testing.T) {
	sender := &fakeSender{}
	channels := &fakeChannelStore{configs: []ChannelConfig{{ID: "c1", Type: ChannelSlack, Enabled: true}}}
	now := time.Now()
	store := &fakeDeliveryStore{failed: []Delivery{
		{ChannelID: "c1", Attempts: 1, LastAttemptAt: now, Status: DeliveryFailed},
	}}
	d := NewDispatcher(channels, store, map[ChannelType]Sender{ChannelSlack: sender})

	retried, err := d.RetryFailed(context.Background(), 5, now.Add(time.Second))
	require.NoError(t, err)
	assert.Empty(t, retried)
	assert.Equal(t, 0, sender.calls)
}

func TestRetryFailed_RetriesAfterBackoffWindowElapses(t *testing.T) {
	sender := &fakeSender{}
	channels := &fakeChannelStore{configs: []ChannelConfig{{ID: "c1", Type: ChannelSlack, Enabled: true}}}
	now := time.Now()
	store := &fakeDeliveryStore{failed: []Delivery{
		{ChannelID: "c1", Attempts: 1, LastAttemptAt: now, Status: DeliveryFailed},
	}}
	d := NewDispatcher(channels, store, map[ChannelType]Sender{ChannelSlack: sender})

	retried, err := d.RetryFailed(context.Background(), 5, now.Add(10*time.Second))
	require.NoError(t, err)
	require.Len(t, retried, 1)
	assert.Equal(t, DeliverySuccess, retried[0].Status)
	assert.Equal(t, 2, retried[0].Attempts)
	assert.Equal(t, 1, sender.calls)
}

func TestRetryFailed_DoesNotExceedMaxAttempts(t *testing.T) {
	store := &fakeDeliveryStore{failed: []Delivery{
		{ChannelID: "c1", Attempts: 5, LastAttemptAt: time.Now(), Status: DeliveryFailed},
	}}
	channels := &fakeChannelStore{configs: []ChannelConfig{{ID: "c1", Type: ChannelSlack, Enabled: true}}}
	d := NewDispatcher(channels, store, map[ChannelType]Sender{ChannelSlack: &fakeSender{}})

	retried, err := d.RetryFailed(context.Background(), 5, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, retried)
}
