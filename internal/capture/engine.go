// internal/capture/engine.go
package capture

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saadimalik211/cv-scanner/internal/shared"
)

// Source abstracts the scanner UART.
// Poll is non-blocking: it returns 0, nil when no byte is available.
type Source interface {
	Poll(p []byte) (int, error)
}

// Config is the minimal runtime config the engine needs.
type Config struct {
	Silence  time.Duration // end-of-message silence threshold
	Interval time.Duration // Run loop yield
}

// Engine turns the scanner byte stream into classified messages.
// Producer side of the mailbox; sole writer of the capture buffer.
type Engine struct {
	cfg   Config
	src   Source
	buf   *shared.Buffer
	mb    *shared.Mailbox
	log   *zap.Logger
	now   func() time.Time
	chunk []byte
}

const readChunk = 64

// New creates an engine with immutable config.
func New(cfg Config, src Source, state *shared.State, log *zap.Logger) (*Engine, error) {
	if src == nil {
		return nil, errors.New("capture: source required")
	}
	if state == nil || state.Buffer == nil || state.Mailbox == nil {
		return nil, errors.New("capture: shared state required")
	}
	if cfg.Silence <= 0 {
		return nil, errors.New("capture: silence must be > 0")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("capture: interval must be > 0")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		cfg:   cfg,
		src:   src,
		buf:   state.Buffer,
		mb:    state.Mailbox,
		log:   log,
		now:   time.Now,
		chunk: make([]byte, readChunk),
	}, nil
}

// Ingest drains whatever the source has ready into the capture buffer.
// It never reads more than the buffer has room for, so a full buffer
// leaves the remaining bytes in the UART until the next flush.
func (e *Engine) Ingest() (int, error) {
	total := 0

	for {
		room := e.buf.Room()
		if room == 0 {
			return total, nil
		}

		p := e.chunk
		if room < len(p) {
			p = p[:room]
		}

		n, err := e.src.Poll(p)
		if err != nil {
			return total, fmt.Errorf("capture: read: %w", err)
		}
		if n == 0 {
			return total, nil
		}

		total += e.buf.Append(p[:n], e.now())
	}
}

// MaybeFlush frames a message once the line has been silent long enough
// (or the buffer is full). Classification and publishing happen after the
// buffer lock is released.
func (e *Engine) MaybeFlush() (Result, bool) {
	now := e.now()

	data, ok := e.buf.DrainIfIdle(now, e.cfg.Silence)
	if !ok {
		return Result{}, false
	}

	msg := Message{Data: data, Len: len(data), At: now}
	kind, printable := Classify(msg)
	res := Result{Message: msg, Kind: kind, Printable: printable}

	switch kind {
	case KindProtocol:
		e.log.Debug("scanner protocol frame", zap.Binary("frame", data))

	case KindBarcode:
		res.Replaced = e.mb.Put(string(data))
		e.log.Info("barcode",
			zap.String("data", printable),
			zap.Int("length", msg.Len),
			zap.Bool("replaced_pending", res.Replaced),
		)

	default:
		e.log.Debug("discarded non-printable frame", zap.Int("length", msg.Len))
	}

	return res, true
}
