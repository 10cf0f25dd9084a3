// internal/hwreset/hwreset_test.go
package hwreset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake line ----

type fakeLine struct {
	levels  []bool
	failSet bool
}

func (f *fakeLine) Set(active bool) error {
	if f.failSet {
		return errors.New("bus error")
	}
	f.levels = append(f.levels, active)
	return nil
}

func (f *fakeLine) Close() error { return nil }

// ---- fake coil writer ----

type fakeCoils struct {
	writes [][2]uint16
}

func (f *fakeCoils) WriteSingleCoil(address, value uint16) ([]byte, error) {
	f.writes = append(f.writes, [2]uint16{address, value})
	return nil, nil
}

// ---- tests ----

func TestPulse_AssertThenRelease(t *testing.T) {
	line := &fakeLine{}
	r := New(line, time.Millisecond, time.Millisecond)

	require.NoError(t, r.Pulse(context.Background()))
	assert.Equal(t, []bool{true, false}, line.levels)
}

func TestPulse_ReleasesOnCancel(t *testing.T) {
	line := &fakeLine{}
	r := New(line, time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Pulse(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []bool{true, false}, line.levels)
}

func TestPulse_LineError(t *testing.T) {
	r := New(&fakeLine{failSet: true}, 0, 0)
	require.Error(t, r.Pulse(context.Background()))
}

func TestNoop_Unsupported(t *testing.T) {
	r := New(Noop{}, 0, 0)
	assert.ErrorIs(t, r.Pulse(context.Background()), ErrUnsupported)
}

func TestGPIO_SysfsWrites(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "gpio9"), 0o755))

	g, err := OpenGPIO(root, 9, true)
	require.NoError(t, err)

	read := func(name string) string {
		b, err := os.ReadFile(filepath.Join(root, "gpio9", name))
		require.NoError(t, err)
		return string(b)
	}

	// active-low line starts released (high)
	assert.Equal(t, "high", read("direction"))

	require.NoError(t, g.Set(true))
	assert.Equal(t, "0", read("value"))
	require.NoError(t, g.Set(false))
	assert.Equal(t, "1", read("value"))
}

func TestGPIO_ActiveHigh(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "gpio4"), 0o755))

	g, err := OpenGPIO(root, 4, false)
	require.NoError(t, err)
	require.NoError(t, g.Set(true))

	b, err := os.ReadFile(filepath.Join(root, "gpio4", "value"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(b))
}

func TestModbusRelay_CoilValues(t *testing.T) {
	coils := &fakeCoils{}
	m := &ModbusRelay{client: coils, coil: 3}

	r := New(m, 0, 0)
	require.NoError(t, r.Pulse(context.Background()))

	assert.Equal(t, [][2]uint16{{3, 0xFF00}, {3, 0x0000}}, coils.writes)
	assert.NoError(t, m.Close())
}
