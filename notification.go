package atelier

import (
	"sync"
)

type Severity string

const (
	Success     Severity = "success"
	Destructive Severity = "destructive"
)

// Notification is a recoverable message surfaced to the user. Failures that
// the user can retry are reported this way instead of being returned.
type Notification struct {
	Severity    Severity
	Title       string
	Description string
}

type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Recorder keeps every notification it receives. It is safe for
// concurrent use.
type Recorder struct {
	mu            sync.Locker
	notifications []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{
		mu:            &sync.Mutex{},
		notifications: make([]Notification, 0),
	}
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = append(r.notifications, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Notification(nil), r.notifications...)
}

// Last returns the most recent notification, false if there is none.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}
