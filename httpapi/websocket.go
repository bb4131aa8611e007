package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"i4.energy/sms-gateway/eventbus"
)

// subscribeFrameWindow is how long serveWebSocket waits for an
// optional subscription frame before falling back to no filter.
const subscribeFrameWindow = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Operator-facing appliance API; browsers connecting cross-origin
	// are the normal case for a dashboard served from elsewhere.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type subscribeFrame struct {
	Filter []eventbus.Kind `json:"filter"`
}

type eventFrame struct {
	EventID uint64        `json:"event_id"`
	Kind    eventbus.Kind `json:"kind"`
	Payload any           `json:"payload"`
}

// serveWebSocket godoc
// @Summary Live event feed
// @Description Upgrades to a WebSocket. Clients may send one subscribeFrame to filter event kinds before any events are pushed; an empty or omitted filter delivers everything.
// @Tags Events
// @Router /ws [get]
func (h *Handler) serveWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var filter []eventbus.Kind
	conn.SetReadDeadline(time.Now().Add(subscribeFrameWindow))
	if _, data, err := conn.ReadMessage(); err == nil {
		var frame subscribeFrame
		if json.Unmarshal(data, &frame) == nil {
			filter = frame.Filter
		}
	}
	conn.SetReadDeadline(time.Time{})

	sub := h.bus.Subscribe(filter, eventbus.LagDrop, eventbus.DefaultQueueSize)
	defer sub.Close()

	for ev := range sub.C() {
		if err := conn.WriteJSON(eventFrame{EventID: ev.ID, Kind: ev.Kind, Payload: ev.Payload}); err != nil {
			return
		}
	}
}
