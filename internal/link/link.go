// internal/link/link.go
package link

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Event is a link lifecycle notification.
type Event uint8

const (
	// EventAddressAcquired: interface is up and holds a usable address.
	EventAddressAcquired Event = iota + 1
	// EventDisconnected: interface exists but lost carrier or address.
	EventDisconnected
	// EventStopped: interface disappeared (driver unloaded, device gone).
	EventStopped
)

func (e Event) String() string {
	switch e {
	case EventAddressAcquired:
		return "address-acquired"
	case EventDisconnected:
		return "disconnected"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrNoAddress is returned when the interface does not get an address in time.
var ErrNoAddress = errors.New("link: no address acquired")

// Runner executes one external command.
type Runner func(ctx context.Context, name string, args ...string) error

// Probe reports the interface state.
// exists=false means the interface is gone.
type Probe func(name string) (exists, ready bool, err error)

// Config is minimal link config.
type Config struct {
	Interface string

	Static  bool
	Address string // CIDR
	Gateway string
	DNS     []string

	DHCPCommand []string

	ConnectTimeout time.Duration
	MonitorEvery   time.Duration
}

// Interface manages one wired network interface.
// Restart is tier-1 recovery; Monitor turns interface state into Events.
type Interface struct {
	cfg    Config
	run    Runner
	probe  Probe
	log    *zap.Logger
	events chan Event
	poll   time.Duration
}

const eventBuffer = 8

// New creates an interface manager backed by iproute2 commands.
func New(cfg Config, log *zap.Logger) (*Interface, error) {
	if cfg.Interface == "" {
		return nil, errors.New("link: interface required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	if cfg.MonitorEvery <= 0 {
		cfg.MonitorEvery = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Interface{
		cfg:    cfg,
		run:    execRunner,
		probe:  netProbe,
		log:    log,
		events: make(chan Event, eventBuffer),
		poll:   250 * time.Millisecond,
	}, nil
}

// Events delivers lifecycle notifications. Never closed.
func (i *Interface) Events() <-chan Event {
	return i.events
}

// Restart tears the interface down, brings it back, reapplies static or
// DHCP addressing and waits up to ConnectTimeout for an address.
func (i *Interface) Restart(ctx context.Context) error {
	ifc := i.cfg.Interface
	i.log.Info("restarting interface", zap.String("interface", ifc), zap.Bool("static", i.cfg.Static))

	steps := [][]string{
		{"ip", "link", "set", "dev", ifc, "down"},
		{"ip", "link", "set", "dev", ifc, "up"},
	}

	if i.cfg.Static {
		steps = append(steps,
			[]string{"ip", "addr", "flush", "dev", ifc},
			[]string{"ip", "addr", "add", i.cfg.Address, "dev", ifc},
		)
		if i.cfg.Gateway != "" {
			steps = append(steps, []string{"ip", "route", "replace", "default", "via", i.cfg.Gateway, "dev", ifc})
		}
		if len(i.cfg.DNS) > 0 {
			steps = append(steps, append([]string{"resolvectl", "dns", ifc}, i.cfg.DNS...))
		}
	} else if len(i.cfg.DHCPCommand) > 0 {
		steps = append(steps, i.cfg.DHCPCommand)
	}

	for _, s := range steps {
		if err := i.run(ctx, s[0], s[1:]...); err != nil {
			return fmt.Errorf("link: %s: %w", strings.Join(s, " "), err)
		}
	}

	return i.WaitAddress(ctx)
}

// WaitAddress blocks until the interface is ready or ConnectTimeout elapses.
func (i *Interface) WaitAddress(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, i.cfg.ConnectTimeout)
	defer cancel()

	t := time.NewTicker(i.poll)
	defer t.Stop()

	for {
		_, ready, err := i.probe(i.cfg.Interface)
		if err == nil && ready {
			return nil
		}

		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("%w: %v", ErrNoAddress, err)
			}
			return ErrNoAddress
		case <-t.C:
		}
	}
}

// Monitor polls the interface and emits an Event on every state change.
// The first observation is always reported.
func (i *Interface) Monitor(ctx context.Context) error {
	t := time.NewTicker(i.cfg.MonitorEvery)
	defer t.Stop()

	var last Event
	for {
		ev := i.observe()
		if ev != last {
			i.log.Info("link event", zap.String("interface", i.cfg.Interface), zap.Stringer("event", ev))
			i.emit(ev)
			last = ev
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (i *Interface) observe() Event {
	exists, ready, err := i.probe(i.cfg.Interface)
	switch {
	case err != nil || !exists:
		return EventStopped
	case ready:
		return EventAddressAcquired
	default:
		return EventDisconnected
	}
}

// emit never blocks. When the consumer is stalled the oldest queued event
// is discarded, so the newest state is always the last one delivered.
// Monitor is the only sender.
func (i *Interface) emit(ev Event) {
	for {
		select {
		case i.events <- ev:
			return
		default:
		}

		select {
		case old := <-i.events:
			i.log.Warn("link event dropped", zap.Stringer("event", old))
		default:
		}
	}
}

// ---- defaults ----

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func netProbe(name string) (bool, bool, error) {
	ifc, err := net.InterfaceByName(name)
	if err != nil {
		return false, false, nil
	}
	if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagRunning == 0 {
		return true, false, nil
	}

	addrs, err := ifc.Addrs()
	if err != nil {
		return true, false, err
	}
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipn.IP.To4(); ip4 != nil && !ip4.IsLinkLocalUnicast() {
			return true, true, nil
		}
	}
	return true, false, nil
}
