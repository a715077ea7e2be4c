package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamboofin/bamboo_portal/internal/notify"
)

func TestNotificationHandler_StreamsWorkspaceNotices(t *testing.T) {
	bus := notify.NewBus(4)
	h := NewNotificationHandler(bus)

	r := gin.New()
	r.GET("/stream", func(c *gin.Context) {
		c.Set("workspace_id", "ws-1")
		h.Stream(c)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q", prefix)
		return ""
	}

	assert.Equal(t, "event:connected", next("event:"))

	notify.NewBusNotifier(bus).Success("ws-2", "ailleurs")
	notify.NewBusNotifier(bus).Success("ws-1", "Comparaison terminée avec succès !")

	assert.Equal(t, "event:notification", next("event:"))
	data := next("data:")
	assert.Contains(t, data, "Comparaison terminée avec succès !")
	assert.NotContains(t, data, "ailleurs")
}
