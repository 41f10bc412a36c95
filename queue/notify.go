// ABOUTME: User-facing notification plumbing for the sync layer
// ABOUTME: Non-blocking advisory messages; a ring log keeps the recent history for UI readers
package queue

import (
	"log"
	"sync"
	"time"
)

// Notification levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification is one advisory message shown to the operator.
type Notification struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives advisory messages. Implementations must not block.
type Notifier interface {
	Notify(level, message string)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(level, message string) {
	log.Printf("notify [%s] %s", level, message)
}

// NotificationLog keeps the most recent notifications in a ring so UI
// consumers can render them; it also forwards to an optional next
// notifier.
type NotificationLog struct {
	mu   sync.Mutex
	ring []Notification
	max  int
	next Notifier
}

// NewNotificationLog creates a ring holding up to max entries.
func NewNotificationLog(max int, next Notifier) *NotificationLog {
	if max <= 0 {
		max = 50
	}
	return &NotificationLog{max: max, next: next}
}

func (l *NotificationLog) Notify(level, message string) {
	l.mu.Lock()
	l.ring = append(l.ring, Notification{Level: level, Message: message, At: time.Now().UTC()})
	if len(l.ring) > l.max {
		l.ring = l.ring[len(l.ring)-l.max:]
	}
	l.mu.Unlock()

	if l.next != nil {
		l.next.Notify(level, message)
	}
}

// Recent returns the notifications in oldest-first order.
func (l *NotificationLog) Recent() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notification(nil), l.ring...)
}
