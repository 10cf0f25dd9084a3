// internal/status/constants.go
package status

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state: no heartbeat attempted yet.
const HealthUnknown uint16 = 0

// HealthOK represents a link that is up with a successful last heartbeat.
const HealthOK uint16 = 1

// HealthError represents a link that is up but failing heartbeats.
const HealthError uint16 = 2

// HealthStale represents a link with no successful traffic for a long time.
const HealthStale uint16 = 3

// HealthDown represents a link that is down.
const HealthDown uint16 = 4

// HealthName returns a short label for logs.
func HealthName(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	case HealthDown:
		return "down"
	default:
		return "unknown"
	}
}
