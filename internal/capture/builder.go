// internal/capture/builder.go
package capture

import (
	"time"

	"go.uber.org/zap"

	cfg "github.com/saadimalik211/cv-scanner/internal/config"
	cserial "github.com/saadimalik211/cv-scanner/internal/capture/serial"
	"github.com/saadimalik211/cv-scanner/internal/shared"
)

// Build opens the scanner UART and constructs the Engine.
// Fails fast at startup if the port cannot be opened.
func Build(s cfg.ScannerConfig, state *shared.State, log *zap.Logger) (*Engine, func() error, error) {
	port, err := cserial.Open(cserial.Config{
		Address:     s.Port,
		BaudRate:    s.BaudRate,
		DataBits:    s.DataBits,
		StopBits:    s.StopBits,
		Parity:      s.Parity,
		ReadTimeout: time.Duration(s.ReadTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	e, err := New(
		Config{
			Silence:  time.Duration(s.SilenceMs) * time.Millisecond,
			Interval: time.Duration(s.LoopMs) * time.Millisecond,
		},
		port,
		state,
		log,
	)
	if err != nil {
		_ = port.Close()
		return nil, nil, err
	}

	return e, port.Close, nil
}
