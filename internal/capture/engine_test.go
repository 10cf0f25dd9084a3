// internal/capture/engine_test.go
package capture

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadimalik211/cv-scanner/internal/shared"
)

// ---- fake source ----

type fakeSource struct {
	mu      sync.Mutex
	pending []byte
	err     error
	polls   int
}

func (f *fakeSource) feed(b ...byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, b...)
}

func (f *fakeSource) Poll(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.err != nil {
		return 0, f.err
	}
	n := copy(p, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

// ---- fake clock ----

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
}

func newEngine(t *testing.T, bufSize int) (*Engine, *fakeSource, *shared.State, *clock) {
	t.Helper()
	src := &fakeSource{}
	state := shared.NewState(bufSize, 0)
	e, err := New(Config{Silence: 100 * time.Millisecond, Interval: 10 * time.Millisecond}, src, state, nil)
	require.NoError(t, err)
	c := newClock()
	e.now = c.now
	return e, src, state, c
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	state := shared.NewState(512, 0)
	_, err := New(Config{Silence: time.Millisecond, Interval: time.Millisecond}, nil, state, nil)
	assert.Error(t, err)
	_, err = New(Config{Interval: time.Millisecond}, &fakeSource{}, state, nil)
	assert.Error(t, err)
	_, err = New(Config{Silence: time.Millisecond}, &fakeSource{}, state, nil)
	assert.Error(t, err)
	_, err = New(Config{Silence: time.Millisecond, Interval: time.Millisecond}, &fakeSource{}, nil, nil)
	assert.Error(t, err)
}

// Printable barcode, 150 ms pause, 100 ms threshold.
func TestFlush_PrintableFramePublished(t *testing.T) {
	e, src, state, c := newEngine(t, 512)
	src.feed([]byte("ABC123\r")...)

	n, err := e.Ingest()
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	c.advance(50 * time.Millisecond)
	_, flushed := e.MaybeFlush()
	assert.False(t, flushed, "must wait for silence")

	c.advance(100 * time.Millisecond)
	res, flushed := e.MaybeFlush()
	require.True(t, flushed)
	assert.Equal(t, KindBarcode, res.Kind)

	payload, length, pending := state.Mailbox.Peek()
	assert.True(t, pending)
	assert.Equal(t, "ABC123\r", payload)
	assert.Equal(t, 7, length)

	// exactly one flush
	_, flushed = e.MaybeFlush()
	assert.False(t, flushed)
}

// A protocol acknowledgment never reaches the mailbox.
func TestFlush_AckFrameNotPublished(t *testing.T) {
	e, src, state, c := newEngine(t, 512)
	src.feed(0x02, 0x00, 0x01, 0x00, 0x33, 0x31)

	_, err := e.Ingest()
	require.NoError(t, err)
	c.advance(150 * time.Millisecond)

	res, flushed := e.MaybeFlush()
	require.True(t, flushed)
	assert.Equal(t, KindProtocol, res.Kind)

	_, _, pending := state.Mailbox.Peek()
	assert.False(t, pending)
}

func TestProtocolMarker_AnyTailNeverPublishes(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		tail := make([]byte, r.Intn(64))
		r.Read(tail)
		msg := append([]byte{0x02, 0x00}, tail...)

		kind, _ := Classify(Message{Data: msg, Len: len(msg)})
		assert.Equal(t, KindProtocol, kind)
	}
}

func TestPrintable_EqualsFilteredInput(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		in := make([]byte, r.Intn(128))
		r.Read(in)

		var want []byte
		for _, b := range in {
			if b >= 0x20 && b <= 0x7E {
				want = append(want, b)
			}
		}
		assert.Equal(t, string(want), Printable(in))
	}
}

func TestClassify_Cases(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		kind Kind
		text string
	}{
		{"plain", []byte("4006381333931"), KindBarcode, "4006381333931"},
		{"control bytes skipped", []byte{0x1B, 'Q', 0x00, 'R', '\n'}, KindBarcode, "QR"},
		{"only control bytes", []byte{0x00, 0x0D, 0x0A}, KindEmpty, ""},
		{"marker needs two bytes", []byte{0x02}, KindEmpty, ""},
		{"marker reversed", []byte{0x00, 0x02, 'A'}, KindBarcode, "A"},
		{"bare marker", []byte{0x02, 0x00}, KindProtocol, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, text := Classify(Message{Data: tc.in, Len: len(tc.in)})
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.text, text)
		})
	}
}

func TestNonPrintableFrame_NoMailboxWrite(t *testing.T) {
	e, src, state, c := newEngine(t, 512)
	src.feed(0x00, 0x0A, 0x0D)
	_, _ = e.Ingest()
	c.advance(time.Second)

	res, flushed := e.MaybeFlush()
	require.True(t, flushed)
	assert.Equal(t, KindEmpty, res.Kind)
	_, _, pending := state.Mailbox.Peek()
	assert.False(t, pending)
}

func TestSecondScanReplacesUndelivered(t *testing.T) {
	e, src, state, c := newEngine(t, 512)

	src.feed([]byte("FIRST")...)
	_, _ = e.Ingest()
	c.advance(200 * time.Millisecond)
	e.MaybeFlush()

	src.feed([]byte("SECOND")...)
	_, _ = e.Ingest()
	c.advance(200 * time.Millisecond)
	res, _ := e.MaybeFlush()

	assert.True(t, res.Replaced)
	got, ok := state.Mailbox.Take()
	require.True(t, ok)
	assert.Equal(t, "SECOND", got)
}

func TestFullBufferForcesFlushWithoutLoss(t *testing.T) {
	e, src, state, _ := newEngine(t, 512)

	in := make([]byte, 600)
	for i := range in {
		in[i] = 'A' + byte(i%26)
	}
	src.feed(in...)

	n, err := e.Ingest()
	require.NoError(t, err)
	assert.Equal(t, 512, n, "ingest stops at capacity")

	// no silence has elapsed, but the buffer is full
	res, flushed := e.MaybeFlush()
	require.True(t, flushed)
	assert.Equal(t, 512, res.Message.Len)

	// the remaining bytes are still waiting in the source
	n, err = e.Ingest()
	require.NoError(t, err)
	assert.Equal(t, 88, n)

	// oversized payload truncated to the mailbox cap
	_, length, _ := state.Mailbox.Peek()
	assert.Equal(t, shared.MaxPayload, length)
}

func TestIngest_SourceError(t *testing.T) {
	e, src, _, _ := newEngine(t, 512)
	src.err = errors.New("device unplugged")

	_, err := e.Ingest()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
}

func TestEmptyBufferFlushIsNoop(t *testing.T) {
	e, _, _, c := newEngine(t, 512)
	c.advance(time.Hour)
	_, flushed := e.MaybeFlush()
	assert.False(t, flushed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	src := &fakeSource{}
	state := shared.NewState(512, 0)
	e, err := New(Config{Silence: 20 * time.Millisecond, Interval: 2 * time.Millisecond}, src, state, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	src.feed([]byte("LIVE-1")...)
	require.Eventually(t, func() bool {
		_, _, pending := state.Mailbox.Peek()
		return pending
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}

	got, _ := state.Mailbox.Take()
	assert.Equal(t, "LIVE-1", got)
}
