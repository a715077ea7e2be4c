package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Type is the severity of a notification.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// DefaultDuration is how long the UI keeps a notification visible.
const DefaultDuration = 4 * time.Second

// Notification is one message pushed to the visible UI surface.
type Notification struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Message    string    `json:"message"`
	DurationMs int64     `json:"duration"`
	Timestamp  time.Time `json:"timestamp"`
}

// Subscription receives the notifications of one channel until it is closed.
type Subscription struct {
	ID      string
	Channel string
	Events  chan Notification
}

// Bus fans notifications out to the subscribers of a channel. A channel is
// the workspace id of one browser.
type Bus struct {
	mu       sync.RWMutex
	channels map[string]map[string]*Subscription
	buffer   int
}

// NewBus creates a bus whose subscriptions buffer up to buffer notifications.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{
		channels: make(map[string]map[string]*Subscription),
		buffer:   buffer,
	}
}

// Subscribe attaches a new subscriber to channel.
func (b *Bus) Subscribe(channel string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		ID:      uuid.NewString(),
		Channel: channel,
		Events:  make(chan Notification, b.buffer),
	}
	if b.channels[channel] == nil {
		b.channels[channel] = make(map[string]*Subscription)
	}
	b.channels[channel][sub.ID] = sub
	log.Debug().Str("channel", channel).Str("subscription_id", sub.ID).Msg("Notification subscriber attached")
	return sub
}

// Unsubscribe detaches sub and closes its channel. Calling it twice is safe.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.channels[sub.Channel]
	if !ok {
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	close(sub.Events)
	delete(subs, sub.ID)
	if len(subs) == 0 {
		delete(b.channels, sub.Channel)
	}
	log.Debug().Str("channel", sub.Channel).Str("subscription_id", sub.ID).Msg("Notification subscriber detached")
}

// Publish delivers n to every subscriber of channel.
// Non-blocking: a full subscriber buffer drops the notification.
func (b *Bus) Publish(channel string, n Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.channels[channel] {
		select {
		case sub.Events <- n:
		default:
			log.Warn().Str("channel", channel).Str("subscription_id", sub.ID).Msg("Notification buffer full, dropping")
		}
	}
}

// Subscribers returns the number of subscribers of channel.
func (b *Bus) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels[channel])
}
