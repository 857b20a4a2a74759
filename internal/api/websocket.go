// websocket.go - WebSocket event feed pushing snapshots and notifications
// to the drop zone UI
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/filedrop/backend/internal/notify"
	"github.com/filedrop/backend/internal/tracker"
)

// WebSocket message types pushed to clients.
const (
	MsgTypeConnected    = "connected"
	MsgTypeSnapshot     = "snapshot"
	MsgTypeNotification = "notification"
)

// WSMessage is the envelope for every server-to-client message.
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WebSocketHandler pushes tracker snapshots and notifications to connected
// UI clients.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	tracker  *tracker.Tracker
	hub      *notify.Hub
}

// NewWebSocketHandler creates a new WebSocket event handler.
func NewWebSocketHandler(trk *tracker.Tracker, hub *notify.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The widget is served from this process; cross-origin dev
				// servers are allowed too.
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
		},
		tracker: trk,
		hub:     hub,
	}
}

// HandleEvents upgrades the connection and streams snapshot versions and
// notifications until the client disconnects.
func (wsh *WebSocketHandler) HandleEvents(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	fmt.Println("[WebSocket] Client connected to event feed")

	watchID, snaps := wsh.tracker.Subscribe()
	defer wsh.tracker.Unsubscribe(watchID)
	noteID, notes := wsh.hub.Subscribe()
	defer wsh.hub.Unsubscribe(noteID)

	wsh.sendMessage(ws, WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})
	wsh.sendMessage(ws, WSMessage{
		Type:      MsgTypeSnapshot,
		Payload:   mustJSON(wsh.tracker.Snapshot()),
		Timestamp: time.Now().UnixMilli(),
	})

	// Reads only serve to detect disconnects and process control frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					fmt.Printf("[WebSocket] Connection error: %v\n", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			fmt.Println("[WebSocket] Client disconnected")
			return nil
		case snap, ok := <-snaps:
			if !ok {
				return nil
			}
			wsh.sendMessage(ws, WSMessage{
				Type:      MsgTypeSnapshot,
				Payload:   mustJSON(snap),
				Timestamp: time.Now().UnixMilli(),
			})
		case n, ok := <-notes:
			if !ok {
				return nil
			}
			wsh.sendMessage(ws, WSMessage{
				Type:      MsgTypeNotification,
				Payload:   mustJSON(n),
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}
}

func (wsh *WebSocketHandler) sendMessage(ws *websocket.Conn, msg WSMessage) {
	if err := ws.WriteJSON(msg); err != nil {
		fmt.Printf("[WebSocket] Failed to send message: %v\n", err)
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
