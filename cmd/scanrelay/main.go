// cmd/scanrelay/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saadimalik211/cv-scanner/internal/broadcast"
	"github.com/saadimalik211/cv-scanner/internal/capture"
	"github.com/saadimalik211/cv-scanner/internal/collector"
	"github.com/saadimalik211/cv-scanner/internal/config"
	"github.com/saadimalik211/cv-scanner/internal/hwreset"
	"github.com/saadimalik211/cv-scanner/internal/link"
	"github.com/saadimalik211/cv-scanner/internal/logging"
	"github.com/saadimalik211/cv-scanner/internal/resilience"
	"github.com/saadimalik211/cv-scanner/internal/shared"
	"github.com/saadimalik211/cv-scanner/internal/watchdog"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: scanrelay <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("scanrelay stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }

	logger.Info("scanrelay starting",
		zap.String("node_uuid", cfg.Node.NodeUUID),
		zap.String("reader_uuid", cfg.Node.ReaderUUID),
		zap.String("scanner", cfg.Scanner.Port),
		zap.String("interface", cfg.Network.Interface),
		zap.String("collector", cfg.Collector.BaseURL),
	)

	state := shared.NewState(cfg.Scanner.BufferSize, shared.DefaultAnnotationCap)

	// ---- watchdog (armed first) ----
	wd, err := openWatchdog(cfg.Watchdog, logger)
	if err != nil {
		return err
	}
	defer func() { _ = wd.Close() }()

	// ---- capture ----
	engine, closeScanner, err := capture.Build(cfg.Scanner, state, logger.Named("capture"))
	if err != nil {
		return fmt.Errorf("scanner open failed: %w", err)
	}
	defer func() { _ = closeScanner() }()

	// ---- collector ----
	coll, err := collector.New(collector.Config{
		BaseURL:    cfg.Collector.BaseURL,
		NodeUUID:   cfg.Node.NodeUUID,
		ReaderUUID: cfg.Node.ReaderUUID,
		Timeout:    ms(cfg.Collector.TimeoutMs),
	})
	if err != nil {
		return err
	}

	// ---- link ----
	ifc, err := link.New(link.Config{
		Interface:      cfg.Network.Interface,
		Static:         cfg.Network.Static,
		Address:        cfg.Network.Address,
		Gateway:        cfg.Network.Gateway,
		DNS:            cfg.Network.DNS,
		DHCPCommand:    cfg.Network.DHCPCommand,
		ConnectTimeout: ms(cfg.Network.ConnectTimeoutMs),
		MonitorEvery:   ms(cfg.Network.MonitorMs),
	}, logger.Named("link"))
	if err != nil {
		return err
	}

	// ---- reset line ----
	reset, err := hwreset.Build(cfg.Reset)
	if err != nil {
		return fmt.Errorf("reset line open failed: %w", err)
	}
	defer func() { _ = reset.Close() }()

	deps := resilience.Deps{
		Link:      ifc,
		Reset:     reset,
		Collector: coll,
		Watchdog:  wd,
		State:     state,
	}

	// ---- broadcast (optional) ----
	if cfg.Broadcast.Enabled {
		bc, err := broadcast.New(broadcast.Config{
			Address:    cfg.Broadcast.Address,
			Port:       cfg.Broadcast.Port,
			NodeUUID:   cfg.Node.NodeUUID,
			ReaderUUID: cfg.Node.ReaderUUID,
		})
		if err != nil {
			return err
		}
		deps.Announcer = bc
	}

	ctrl, err := resilience.New(resilience.Config{
		SuperviseEvery:   ms(cfg.Resilience.SuperviseMs),
		HeartbeatEvery:   ms(cfg.Resilience.HeartbeatMs),
		Inactivity:       ms(cfg.Resilience.InactivityMs),
		FailureThreshold: cfg.Resilience.FailureThreshold,
		LoopEvery:        ms(cfg.Resilience.LoopMs),
		RestartTimeout:   ms(cfg.Network.ConnectTimeoutMs + config.RestartMarginMs),
	}, deps, logger.Named("resilience"))
	if err != nil {
		return err
	}

	// --------------------
	// Run until signalled
	// --------------------

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error { return ifc.Monitor(gctx) })
	g.Go(func() error { return ctrl.Run(gctx) })

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("scanrelay shutting down")
		return nil
	}
	return err
}

// openWatchdog arms the kernel watchdog when configured, else the
// in-process one, which terminates the process so the supervisor restarts it.
func openWatchdog(c config.WatchdogConfig, logger *zap.Logger) (watchdog.Feeder, error) {
	timeout := time.Duration(c.TimeoutMs) * time.Millisecond

	if c.Device != "" {
		d, err := watchdog.OpenDevice(c.Device, timeout)
		if err != nil {
			return nil, err
		}
		if d.TimeoutErr != nil {
			logger.Warn("watchdog kept driver timeout", zap.Error(d.TimeoutErr))
		}
		logger.Info("kernel watchdog armed", zap.String("device", c.Device), zap.Duration("timeout", timeout))
		return d, nil
	}

	sw, err := watchdog.NewSoftware(timeout, func() {
		logger.Error("watchdog expired, exiting", zap.Duration("timeout", timeout))
		_ = logger.Sync()
		os.Exit(1)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("software watchdog armed", zap.Duration("timeout", timeout))
	return sw, nil
}
