// internal/status/snapshot.go
package status

import "time"

// Network is the resilience controller's view of the link.
// Mutated only by the controller goroutine; never shared by reference.
type Network struct {
	LinkUp              bool
	LastHeartbeatAt     time.Time // last 2xx heartbeat
	LastActivityAt      time.Time // last 2xx heartbeat or payload
	ConsecutiveFailures int       // failed heartbeats since the last success

	HardResets int
	Reconnects int
}

// Snapshot is a read-only copy for logs and tests.
type Snapshot struct {
	Network
	Health uint16
}

// Evaluate derives a health code. No IO. No side effects.
func Evaluate(n Network, now time.Time, inactivity time.Duration) Snapshot {
	s := Snapshot{Network: n}

	switch {
	case !n.LinkUp:
		s.Health = HealthDown
	case n.ConsecutiveFailures > 0:
		s.Health = HealthError
	case !n.LastActivityAt.IsZero() && now.Sub(n.LastActivityAt) >= inactivity:
		s.Health = HealthStale
	case n.LastHeartbeatAt.IsZero():
		s.Health = HealthUnknown
	default:
		s.Health = HealthOK
	}
	return s
}
