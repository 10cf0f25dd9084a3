// internal/status/snapshot_test.go
package status

import (
	"testing"
	"time"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	inactivity := 15 * time.Minute

	cases := []struct {
		name string
		n    Network
		want uint16
	}{
		{"down", Network{LinkUp: false, LastHeartbeatAt: now}, HealthDown},
		{"boot", Network{LinkUp: true}, HealthUnknown},
		{"failing", Network{LinkUp: true, LastHeartbeatAt: now, LastActivityAt: now, ConsecutiveFailures: 2}, HealthError},
		{"stale", Network{LinkUp: true, LastHeartbeatAt: now.Add(-time.Hour), LastActivityAt: now.Add(-16 * time.Minute)}, HealthStale},
		{"ok", Network{LinkUp: true, LastHeartbeatAt: now, LastActivityAt: now}, HealthOK},
	}

	for _, tc := range cases {
		got := Evaluate(tc.n, now, inactivity)
		if got.Health != tc.want {
			t.Fatalf("%s: health=%s want=%s", tc.name, HealthName(got.Health), HealthName(tc.want))
		}
	}
}
