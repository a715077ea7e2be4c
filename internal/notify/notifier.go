package notify

import (
	"time"

	"github.com/google/uuid"
)

// Notifier is what services use to tell a user something.
type Notifier interface {
	Success(channel, message string)
	Error(channel, message string)
	Warning(channel, message string)
	Info(channel, message string)
}

// BusNotifier implements Notifier on top of a Bus.
type BusNotifier struct {
	bus *Bus
}

// NewBusNotifier creates a notifier backed by the given Bus.
func NewBusNotifier(bus *Bus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

func (n *BusNotifier) Success(channel, message string) { n.publish(channel, TypeSuccess, message) }
func (n *BusNotifier) Error(channel, message string)   { n.publish(channel, TypeError, message) }
func (n *BusNotifier) Warning(channel, message string) { n.publish(channel, TypeWarning, message) }
func (n *BusNotifier) Info(channel, message string)    { n.publish(channel, TypeInfo, message) }

func (n *BusNotifier) publish(channel string, t Type, message string) {
	if channel == "" || n.bus.Subscribers(channel) == 0 {
		return
	}
	n.bus.Publish(channel, Notification{
		ID:         uuid.NewString()[:8],
		Type:       t,
		Message:    message,
		DurationMs: DefaultDuration.Milliseconds(),
		Timestamp:  time.Now(),
	})
}

// NopNotifier is a no-op implementation for when nobody listens.
type NopNotifier struct{}

func (NopNotifier) Success(channel, message string) {}
func (NopNotifier) Error(channel, message string)   {}
func (NopNotifier) Warning(channel, message string) {}
func (NopNotifier) Info(channel, message string)    {}
