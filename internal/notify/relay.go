// Package notify implements the toast contract the session controller relies
// on: at most one notification is visible at a time, and showing a new one
// retracts the previous.
package notify

import "time"

type Severity string

const (
	SeverityMessage Severity = "message"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is the currently displayed toast.
type Notification struct {
	ID       int64    `json:"id"`
	Message  string   `json:"message"`
	Duration int      `json:"duration_sec"`
	Severity Severity `json:"severity"`
	ShownAt  int64    `json:"shown_at"`
}

// Relay holds one session's notification slot. It is not safe for concurrent
// use on its own; callers serialize per session.
type Relay struct {
	current *Notification
	nextID  int64
	now     func() time.Time
}

func NewRelay() *Relay { return &Relay{now: time.Now} }

// Show replaces any currently displayed notification. Fire-and-forget: there
// is no acknowledgment and no retry.
func (r *Relay) Show(message string, durationSec int, severity Severity) Notification {
	r.nextID++
	n := Notification{
		ID:       r.nextID,
		Message:  message,
		Duration: durationSec,
		Severity: severity,
		ShownAt:  r.now().Unix(),
	}
	r.current = &n
	return n
}

// Current returns the visible notification, nil once expired or never shown.
func (r *Relay) Current() *Notification {
	if r.current == nil {
		return nil
	}
	age := r.now().Unix() - r.current.ShownAt
	if r.current.Duration > 0 && age >= int64(r.current.Duration) {
		r.current = nil
		return nil
	}
	return r.current
}

// Clear retracts the visible notification.
func (r *Relay) Clear() { r.current = nil }
