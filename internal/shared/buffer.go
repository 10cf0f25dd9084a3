// internal/shared/buffer.go
package shared

import (
	"sync"
	"time"
)

// Buffer is the raw capture buffer.
// Owned by the capture engine; every access takes mu.
// len(data) never exceeds cap(data).
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	lastAt time.Time
}

// NewBuffer allocates a buffer with a fixed capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacity)}
}

// Room reports how many more bytes fit.
func (b *Buffer) Room() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cap(b.data) - len(b.data)
}

// Append copies p into the buffer and stamps the last-byte time.
// Bytes beyond capacity are not accepted; the count appended is returned.
func (b *Buffer) Append(p []byte, at time.Time) int {
	if len(p) == 0 {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	room := cap(b.data) - len(b.data)
	if len(p) > room {
		p = p[:room]
	}
	b.data = append(b.data, p...)
	if len(p) > 0 {
		b.lastAt = at
	}
	return len(p)
}

// DrainIfIdle copies out and resets the buffer when it holds data and either
// the silence since the last byte exceeds silence or the buffer is full.
// The returned slice is owned by the caller.
func (b *Buffer) DrainIfIdle(now time.Time, silence time.Duration) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.data) == 0 {
		return nil, false
	}

	full := len(b.data) == cap(b.data)
	if !full && now.Sub(b.lastAt) <= silence {
		return nil, false
	}

	out := make([]byte, len(b.data))
	copy(out, b.data)
	b.data = b.data[:0]
	return out, true
}

// Len reports the buffered byte count.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
