// internal/resilience/controller.go
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saadimalik211/cv-scanner/internal/collector"
	"github.com/saadimalik211/cv-scanner/internal/link"
	"github.com/saadimalik211/cv-scanner/internal/shared"
	"github.com/saadimalik211/cv-scanner/internal/status"
)

// Link is the tier-1 remedy and the source of lifecycle events.
type Link interface {
	Restart(ctx context.Context) error
	Events() <-chan link.Event
}

// Resetter is the tier-2 remedy: pulse the network controller's reset line.
type Resetter interface {
	Pulse(ctx context.Context) error
}

// Collector is the remote endpoint. A non-nil error means "not 2xx".
type Collector interface {
	Heartbeat(ctx context.Context, annotations string) (int, error)
	RecordCode(ctx context.Context, data string) (int, error)
}

// Announcer optionally mirrors forwarded scans (UDP broadcast).
type Announcer interface {
	Announce(data string, at time.Time) error
}

// Feeder is the tier-3 backstop: the platform watchdog.
type Feeder interface {
	Feed() error
}

// Config is the controller's timing policy.
type Config struct {
	SuperviseEvery   time.Duration // supervision pass period
	HeartbeatEvery   time.Duration // heartbeat period
	Inactivity       time.Duration // "up but silent" limit before a chip reset
	FailureThreshold int           // consecutive heartbeat failures before a chip reset
	LoopEvery        time.Duration // Run loop yield
	RestartTimeout   time.Duration // bound on one interface restart
}

// Deps are the controller's collaborators. Announcer may be nil.
type Deps struct {
	Link      Link
	Reset     Resetter
	Collector Collector
	Announcer Announcer
	Watchdog  Feeder
	State     *shared.State
}

// Controller keeps the link usable, proves liveness and forwards scans.
// All health state is owned by the goroutine calling Step/Run; the only
// state shared with the capture side is the mailbox and annotation queue.
type Controller struct {
	cfg  Config
	deps Deps
	log  *zap.Logger
	now  func() time.Time

	net status.Network

	nextSupervise time.Time
	nextHeartbeat time.Time
	started       bool
}

const maxErrText = 60

// New creates a controller with immutable config.
func New(cfg Config, deps Deps, log *zap.Logger) (*Controller, error) {
	switch {
	case cfg.SuperviseEvery <= 0, cfg.HeartbeatEvery <= 0, cfg.LoopEvery <= 0:
		return nil, errors.New("resilience: periods must be > 0")
	case cfg.Inactivity <= 0:
		return nil, errors.New("resilience: inactivity must be > 0")
	case cfg.FailureThreshold <= 0:
		return nil, errors.New("resilience: failure threshold must be > 0")
	case deps.Link == nil, deps.Reset == nil, deps.Collector == nil, deps.Watchdog == nil:
		return nil, errors.New("resilience: link, reset, collector and watchdog required")
	case deps.State == nil || deps.State.Mailbox == nil || deps.State.Annotations == nil:
		return nil, errors.New("resilience: shared state required")
	}
	if cfg.RestartTimeout <= 0 {
		cfg.RestartTimeout = 45 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Controller{cfg: cfg, deps: deps, log: log, now: time.Now}, nil
}

// Snapshot returns the current health view.
// Call only from the goroutine running the controller.
func (c *Controller) Snapshot() status.Snapshot {
	return status.Evaluate(c.net, c.now(), c.cfg.Inactivity)
}

// ------------------------------------------------------------
// LINK EVENTS
// ------------------------------------------------------------

// HandleEvent applies one lifecycle notification.
// Link loss is only recorded here; recovery is timer-driven.
func (c *Controller) HandleEvent(ev link.Event) {
	switch ev {
	case link.EventAddressAcquired:
		c.net.LinkUp = true
		c.net.LastActivityAt = c.now()
	case link.EventDisconnected, link.EventStopped:
		c.net.LinkUp = false
	}
	c.log.Info("link state", zap.Stringer("event", ev), zap.Bool("up", c.net.LinkUp))
}

func (c *Controller) drainEvents() {
	for {
		select {
		case ev := <-c.deps.Link.Events():
			c.HandleEvent(ev)
		default:
			return
		}
	}
}

// ------------------------------------------------------------
// SUPERVISION (tiers 1 and 2)
// ------------------------------------------------------------

// Supervise runs one supervision pass:
//  1. link down: restart the interface; on success heartbeat at once.
//  2. no successful traffic for Inactivity: chip reset.
//  3. FailureThreshold consecutive heartbeat failures: chip reset.
//
// 2 and 3 in the same pass cause a single reset.
func (c *Controller) Supervise(ctx context.Context) {
	if !c.net.LinkUp {
		if c.reconnect(ctx) {
			c.feed()
			c.Heartbeat(ctx)
		}
		c.feed()
	}

	now := c.now()
	var reason string

	if !c.net.LastActivityAt.IsZero() && now.Sub(c.net.LastActivityAt) >= c.cfg.Inactivity {
		reason = fmt.Sprintf("no network activity for %s", now.Sub(c.net.LastActivityAt).Round(time.Second))
	}
	if c.net.ConsecutiveFailures >= c.cfg.FailureThreshold {
		reason = fmt.Sprintf("%d consecutive heartbeat failures", c.net.ConsecutiveFailures)
	}

	if reason != "" {
		c.hardReset(ctx, reason)
		c.feed()
	}

	snap := c.Snapshot()
	c.log.Info("network status",
		zap.String("health", status.HealthName(snap.Health)),
		zap.Bool("link_up", snap.LinkUp),
		zap.Int("failed_heartbeats", snap.ConsecutiveFailures),
		zap.Time("last_activity", snap.LastActivityAt),
		zap.Int("hard_resets", snap.HardResets),
	)
}

func (c *Controller) reconnect(ctx context.Context) bool {
	c.net.Reconnects++
	c.log.Warn("link down, restarting interface")

	rctx, cancel := context.WithTimeout(ctx, c.cfg.RestartTimeout)
	defer cancel()

	if err := c.deps.Link.Restart(rctx); err != nil {
		c.log.Warn("interface restart failed", zap.Error(err))
		c.annotate("link restart failed: " + shortErr(err))
		return false
	}

	c.net.LinkUp = true
	c.net.LastActivityAt = c.now()
	c.log.Info("interface restarted")
	return true
}

// hardReset pulses the controller chip, then brings the interface back.
// Counters are cleared first so the same condition cannot fire again
// on the next pass.
func (c *Controller) hardReset(ctx context.Context, reason string) {
	c.log.Warn("hardware reset of network controller", zap.String("reason", reason))
	c.annotate("hw reset: " + reason)

	c.net.HardResets++
	c.net.ConsecutiveFailures = 0
	c.net.LastActivityAt = c.now()
	c.net.LinkUp = false

	if err := c.deps.Reset.Pulse(ctx); err != nil {
		c.log.Warn("reset pulse failed", zap.Error(err))
		c.annotate("hw reset pulse failed: " + shortErr(err))
	}
	c.feed()

	c.reconnect(ctx)
}

// ------------------------------------------------------------
// HEARTBEAT
// ------------------------------------------------------------

// Heartbeat sends one liveness request with any pending annotations.
// It reports whether the collector answered 2xx. No-op while the link is down.
func (c *Controller) Heartbeat(ctx context.Context) bool {
	if !c.net.LinkUp {
		return false
	}

	notes := c.deps.State.Annotations.Take()
	code, err := c.deps.Collector.Heartbeat(ctx, notes)
	now := c.now()

	if err == nil && collector.Success(code) {
		c.net.ConsecutiveFailures = 0
		c.net.LastHeartbeatAt = now
		c.net.LastActivityAt = now
		c.log.Debug("heartbeat ok", zap.Int("status", code), zap.Int("annotations", len(notes)))
		return true
	}

	c.net.ConsecutiveFailures++
	c.deps.State.Annotations.Requeue(notes)
	c.annotate("heartbeat failed: " + outcome(code, err))
	c.log.Warn("heartbeat failed",
		zap.Int("status", code),
		zap.Error(err),
		zap.Int("consecutive", c.net.ConsecutiveFailures),
	)
	return false
}

// ------------------------------------------------------------
// PAYLOAD FORWARDING
// ------------------------------------------------------------

// Forward submits the pending scan, if any. The mailbox slot is cleared
// whatever the outcome; a failed submission is recorded, never resent.
func (c *Controller) Forward(ctx context.Context) bool {
	if !c.net.LinkUp {
		return false
	}

	data, ok := c.deps.State.Mailbox.Take()
	if !ok {
		return false
	}
	at := c.now()

	if c.deps.Announcer != nil {
		if err := c.deps.Announcer.Announce(data, at); err != nil {
			c.log.Warn("scan broadcast failed", zap.Error(err))
			c.annotate("broadcast failed: " + shortErr(err))
		}
	}

	code, err := c.deps.Collector.RecordCode(ctx, data)
	if err == nil && collector.Success(code) {
		c.net.LastActivityAt = c.now()
		c.log.Info("scan recorded", zap.String("data", data), zap.Int("status", code))
		return true
	}

	c.annotate("payload failed: " + outcome(code, err))
	c.log.Warn("scan submission failed", zap.String("data", data), zap.Int("status", code), zap.Error(err))
	return false
}

// ------------------------------------------------------------
// LOOP
// ------------------------------------------------------------

// Step is one controller iteration: feed the watchdog, apply link events,
// run due timers, forward the mailbox.
func (c *Controller) Step(ctx context.Context) {
	now := c.now()
	if !c.started {
		c.started = true
		c.nextSupervise = now.Add(c.cfg.SuperviseEvery)
		c.nextHeartbeat = now.Add(c.cfg.HeartbeatEvery)
	}

	c.feed()
	c.drainEvents()

	if !now.Before(c.nextSupervise) {
		c.Supervise(ctx)
		c.nextSupervise = c.now().Add(c.cfg.SuperviseEvery)
	}

	if !now.Before(c.nextHeartbeat) {
		c.Heartbeat(ctx)
		c.nextHeartbeat = c.now().Add(c.cfg.HeartbeatEvery)
	}

	c.Forward(ctx)
}

// ---- helpers ----

func (c *Controller) feed() {
	if err := c.deps.Watchdog.Feed(); err != nil {
		c.log.Error("watchdog feed failed", zap.Error(err))
	}
}

func (c *Controller) annotate(msg string) {
	c.deps.State.Annotations.Add(c.now(), msg)
}

func outcome(code int, err error) string {
	if code > 0 {
		return fmt.Sprintf("HTTP %d", code)
	}
	if err == nil {
		return "no response"
	}
	return shortErr(err)
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > maxErrText {
		s = s[:maxErrText]
	}
	return s
}
