package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bamboofin/bamboo_portal/internal/notify"
)

// keepAlive is the ping interval of idle streams.
const keepAlive = 30 * time.Second

// NotificationHandler streams workspace notifications as Server-Sent Events.
type NotificationHandler struct {
	bus *notify.Bus
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(bus *notify.Bus) *NotificationHandler {
	return &NotificationHandler{bus: bus}
}

// Stream handles GET /api/notifications/stream
// The channel is the workspace bound by the workspace cookie.
func (h *NotificationHandler) Stream(c *gin.Context) {
	channel := c.GetString("workspace_id")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	sub := h.bus.Subscribe(channel)
	defer h.bus.Unsubscribe(sub)

	c.SSEvent("connected", gin.H{
		"subscriptionId": sub.ID,
		"timestamp":      time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Debug().Str("workspace_id", channel).Str("subscription_id", sub.ID).Msg("Notification stream started")

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case n, ok := <-sub.Events:
			if !ok {
				return false
			}
			c.SSEvent("notification", n)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
