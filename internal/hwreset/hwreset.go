// internal/hwreset/hwreset.go
package hwreset

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnsupported is returned by the no-op line when a reset is requested.
var ErrUnsupported = errors.New("hwreset: no reset line configured")

// Line drives the network controller's reset input.
// Set(true) asserts reset; Set(false) releases it.
type Line interface {
	Set(active bool) error
	Close() error
}

// Resetter pulses a Line: assert, hold, release, settle.
type Resetter struct {
	line   Line
	hold   time.Duration
	settle time.Duration
}

func New(line Line, hold, settle time.Duration) *Resetter {
	return &Resetter{line: line, hold: hold, settle: settle}
}

// Pulse performs one hardware reset of the network controller.
// The line is always released, even if ctx ends during the hold.
func (r *Resetter) Pulse(ctx context.Context) error {
	if err := r.line.Set(true); err != nil {
		return fmt.Errorf("hwreset: assert: %w", err)
	}

	holdErr := sleep(ctx, r.hold)

	if err := r.line.Set(false); err != nil {
		return fmt.Errorf("hwreset: release: %w", err)
	}
	if holdErr != nil {
		return holdErr
	}

	return sleep(ctx, r.settle)
}

// Close releases the underlying line.
func (r *Resetter) Close() error {
	return r.line.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ---- no-op line ----

// Noop is used when no reset wiring exists. Pulse fails with ErrUnsupported
// so the controller still falls back to an interface restart.
type Noop struct{}

func (Noop) Set(bool) error { return ErrUnsupported }
func (Noop) Close() error   { return nil }
