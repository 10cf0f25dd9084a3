// internal/shared/mailbox.go
package shared

import "sync"

// MaxPayload is the largest barcode payload the mailbox retains (bytes).
const MaxPayload = 255

// Mailbox is a single-slot handoff between the capture engine and the
// resilience controller. Last write wins: an undelivered payload is replaced.
type Mailbox struct {
	mu      sync.Mutex
	payload string
	pending bool

	overwritten uint64
}

// Put stores payload (truncated to MaxPayload) and marks it pending.
// It reports whether an undelivered payload was discarded.
func (m *Mailbox) Put(payload string) bool {
	if len(payload) > MaxPayload {
		payload = payload[:MaxPayload]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := m.pending
	if dropped {
		m.overwritten++
	}
	m.payload = payload
	m.pending = true
	return dropped
}

// Take returns the pending payload and clears the pending flag in one step.
// ok is false when nothing is pending.
func (m *Mailbox) Take() (payload string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.pending {
		return "", false
	}
	m.pending = false
	return m.payload, true
}

// Peek reads the slot without consuming it.
func (m *Mailbox) Peek() (payload string, length int, pending bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payload, len(m.payload), m.pending
}

// Overwritten counts payloads replaced before delivery.
func (m *Mailbox) Overwritten() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overwritten
}
