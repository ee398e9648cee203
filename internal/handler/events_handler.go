package handler

import (
	"io"
	"time"

	"socialnet/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

const (
	eventBufferSize   = 16
	keepAliveInterval = 25 * time.Second
)

// EventsHandler streams intimate request events to the browser.
type EventsHandler struct {
	Hub *hub.Hub
}

// StreamEvents godoc
// @Summary      Event stream
// @Description  Server-sent events for intimate requests the authenticated user sends or receives.
// @Tags         intimates
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/events [get]
func (h *EventsHandler) StreamEvents(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)

	client := make(hub.Client, eventBufferSize)
	h.Hub.Subscribe(viewerID, client)
	defer h.Hub.Unsubscribe(viewerID, client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("intimate", string(msg))
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", "")
			return true
		}
	})
}
