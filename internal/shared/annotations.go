// internal/shared/annotations.go
package shared

import (
	"sync"
	"time"
)

const (
	// DefaultAnnotationCap bounds the accumulated annotation text (bytes).
	DefaultAnnotationCap = 200

	annotationSep   = ";"
	truncatedMarker = "..."
	stampLayout     = "15:04:05"
)

// Annotations accumulates timestamped error notes for the next heartbeat.
// Any component may Add; only the resilience controller drains.
// When the cap is exceeded the oldest text is cut and prefixed with "...".
type Annotations struct {
	mu   sync.Mutex
	text string
	cap  int
}

// NewAnnotations creates a queue with the given cap; <=0 selects the default.
func NewAnnotations(capacity int) *Annotations {
	if capacity <= len(truncatedMarker) {
		capacity = DefaultAnnotationCap
	}
	return &Annotations{cap: capacity}
}

// Add appends "[hh:mm:ss] msg".
func (a *Annotations) Add(at time.Time, msg string) {
	entry := "[" + at.UTC().Format(stampLayout) + "] " + msg

	a.mu.Lock()
	defer a.mu.Unlock()
	a.text = a.bound(join(a.text, entry))
}

// Take returns the accumulated text and clears the queue.
func (a *Annotations) Take() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.text
	a.text = ""
	return out
}

// Requeue puts undelivered text back in front of anything added since Take.
func (a *Annotations) Requeue(text string) {
	if text == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.text = a.bound(join(text, a.text))
}

// Len reports the current text length.
func (a *Annotations) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.text)
}

func (a *Annotations) bound(s string) string {
	if len(s) <= a.cap {
		return s
	}
	keep := a.cap - len(truncatedMarker)
	return truncatedMarker + s[len(s)-keep:]
}

func join(head, tail string) string {
	switch {
	case head == "":
		return tail
	case tail == "":
		return head
	}
	return head + annotationSep + tail
}
