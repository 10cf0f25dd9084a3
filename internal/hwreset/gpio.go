// internal/hwreset/gpio.go
package hwreset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
)

// DefaultSysfsRoot is the legacy sysfs GPIO tree.
const DefaultSysfsRoot = "/sys/class/gpio"

// GPIO is a reset line on a sysfs GPIO pin.
type GPIO struct {
	root      string
	pin       int
	activeLow bool
}

// OpenGPIO exports the pin and configures it as an output, released.
func OpenGPIO(root string, pin int, activeLow bool) (*GPIO, error) {
	if root == "" {
		root = DefaultSysfsRoot
	}
	g := &GPIO{root: root, pin: pin, activeLow: activeLow}

	if _, err := os.Stat(g.dir()); errors.Is(err, fs.ErrNotExist) {
		err := write(filepath.Join(root, "export"), strconv.Itoa(pin))
		if err != nil && !errors.Is(err, syscall.EBUSY) {
			return nil, fmt.Errorf("hwreset gpio: export %d: %w", pin, err)
		}
	}

	// "high"/"low" set direction and initial level atomically
	initial := "low"
	if activeLow {
		initial = "high"
	}
	if err := write(filepath.Join(g.dir(), "direction"), initial); err != nil {
		return nil, fmt.Errorf("hwreset gpio: direction %d: %w", pin, err)
	}
	return g, nil
}

func (g *GPIO) Set(active bool) error {
	level := active != g.activeLow
	v := "0"
	if level {
		v = "1"
	}
	if err := write(filepath.Join(g.dir(), "value"), v); err != nil {
		return fmt.Errorf("hwreset gpio: value %d: %w", g.pin, err)
	}
	return nil
}

func (g *GPIO) Close() error {
	return write(filepath.Join(g.root, "unexport"), strconv.Itoa(g.pin))
}

func (g *GPIO) dir() string {
	return filepath.Join(g.root, "gpio"+strconv.Itoa(g.pin))
}

func write(path, v string) error {
	return os.WriteFile(path, []byte(v), 0o644)
}
