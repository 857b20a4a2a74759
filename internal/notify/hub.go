// Package notify broadcasts transient user-facing notifications to connected
// UI clients. Delivery is fire-and-forget: a slow subscriber loses messages
// rather than blocking the publisher.
package notify

import (
	"fmt"
	"sync"
	"time"
)

// Kind identifies the event a notification reports.
type Kind string

const (
	KindUploadComplete  Kind = "upload:complete"
	KindFileRemoved     Kind = "file:removed"
	KindDownloadStarted Kind = "download:started"
)

// Notification is a transient user-facing message.
type Notification struct {
	Kind      Kind   `json:"kind"`
	RecordID  string `json:"recordId,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// UploadComplete builds the notification for a successful simulated upload.
func UploadComplete(recordID, fileName string) Notification {
	return Notification{
		Kind:      KindUploadComplete,
		RecordID:  recordID,
		FileName:  fileName,
		Message:   fmt.Sprintf("%s uploaded successfully!", fileName),
		Timestamp: time.Now().UnixMilli(),
	}
}

// FileRemoved builds the notification for a record removal.
func FileRemoved(recordID, fileName string) Notification {
	return Notification{
		Kind:      KindFileRemoved,
		RecordID:  recordID,
		FileName:  fileName,
		Message:   "File removed",
		Timestamp: time.Now().UnixMilli(),
	}
}

// DownloadStarted builds the notification for a client-side save action.
func DownloadStarted(recordID, fileName string) Notification {
	return Notification{
		Kind:      KindDownloadStarted,
		RecordID:  recordID,
		FileName:  fileName,
		Message:   "Download started",
		Timestamp: time.Now().UnixMilli(),
	}
}

const subscriberBuffer = 16

// Hub fans notifications out to subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan Notification
	nextID int
	closed bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Notification)}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (h *Hub) Subscribe() (int, <-chan Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Notification, subscriberBuffer)
	h.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers a notification to every subscriber without blocking.
// Messages to a full subscriber are dropped.
func (h *Hub) Publish(n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Close shuts down the hub and closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
