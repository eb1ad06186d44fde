package controller

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danmakutv/server/internal/repository/connection"
)

// Output is the event envelope every subscriber receives.
type Output struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

const (
	eventRoomJoined      = "room_joined"
	eventViewerCount     = "viewer_count"
	eventNewComment      = "new_comment"
	eventCommentRejected = "comment_rejected"
	eventCommentDeleted  = "comment_deleted"
	eventError           = "error"
)

func newOutput(eventType string, data any) *Output {
	return &Output{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

const writeWait = 10 * time.Second

// send enqueues one event for a single client without blocking. A full
// buffer means the subscriber is too slow: its connection is closed and
// the read loop performs the usual leave cleanup.
func (c controller) send(ctx context.Context, client *connection.Client, output *Output) {
	frame, err := json.Marshal(output)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to marshal output", "error", err)
		return
	}

	if !client.Enqueue(frame) {
		c.metrics.droppedSubscribers.Inc()
		c.logger.InfoContext(ctx, "dropping slow subscriber", "client_id", client.Id)
		client.Conn.Close()
	}
}

// broadcast publishes the event to every given client, best-effort.
func (c controller) broadcast(ctx context.Context, clients []*connection.Client, output *Output) {
	c.metrics.broadcastsTotal.Inc()
	for _, client := range clients {
		c.send(ctx, client, output)
	}
}

// writePump owns the socket for writes: queued frames and liveness
// pings. It exits on the first write error; the read side then fails and
// cleans up.
func (c controller) writePump(client *connection.Client) {
	ticker := time.NewTicker(c.heartbeatInterval)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case frame := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
