package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"i4.energy/sms-gateway/eventbus"
	"i4.energy/sms-gateway/httpapi"
	"i4.energy/sms-gateway/modem"
	"i4.energy/sms-gateway/store"
	"i4.energy/sms-gateway/webhook"
)

func main() {
	os.Exit(run())
}

// run wires every component together and blocks until shutdown,
// returning the process exit code (0 clean, 1 config/validation, 2
// hardware/link failure at startup, 130 on signal).
func run() int {
	var configPath string
	fs := flag.NewFlagSet("sms-gateway", flag.ContinueOnError)
	fs.StringVar(&configPath, "c", "", "path to YAML config file")
	fs.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the modem")
	fs.Int("baud-rate", 115200, "Baud rate for serial communication")
	fs.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.String("sim-pin", "", "SIM card PIN code (if required)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 1
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	config, err := LoadConfig(WithDefaults(), WithYAMLFile(configPath), WithEnv(), WithFlags(fs))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLogLevel(config.LogLevel))
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))

	encryptionKey, err := hex.DecodeString(config.EncryptionKeyHex)
	if err != nil || len(encryptionKey) == 0 {
		logger.Error("SMS_ENCRYPTION_KEY must be set to a hex-encoded 32-byte key", "error", err)
		return 1
	}

	webhookConfigs, err := config.webhookConfigs()
	if err != nil {
		logger.Error("invalid webhook configuration", "error", err)
		return 1
	}

	var cache store.Cache
	if config.RedisAddress != "" {
		redisCache, err := store.NewRedisCache(context.Background(), config.RedisAddress)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			return 2
		}
		defer redisCache.Close()
		cache = redisCache
	}

	db, err := store.Connect(store.Config{
		DSN:           config.DatabaseDSN,
		EncryptionKey: encryptionKey,
		Cache:         cache,
		CacheTTL:      config.CacheTTL,
	})
	if err != nil {
		logger.Error("failed to open message store", "error", err)
		return 2
	}
	defer db.Close()

	bus := eventbus.New()

	dialer := modem.NewSerialDialer(config.SerialPort)
	dialer.Mode.BaudRate = config.BaudRate

	builder := modem.NewConfigBuilder().
		WithDialer(dialer).
		WithSimPIN(config.SimPIN).
		WithATTimeout(10 * time.Second).
		WithInitTimeout(30 * time.Second).
		WithMaxRetries(5).
		WithMinSendInterval(2 * time.Second).
		WithEvents(bus).
		WithStore(db)
	if config.GNSSEnabled {
		builder = builder.WithGNSS(config.GNSSReportInterval)
	}
	modemConfig, err := builder.Build()
	if err != nil {
		logger.Error("failed to build modem config", "error", err)
		return 1
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, err := modem.New(rootCtx, modemConfig)
	if err != nil {
		logger.Error("failed to initialize modem", "error", err)
		return 2
	}

	dispatcher, err := webhook.NewDispatcher(bus, logger, webhookConfigs)
	if err != nil {
		logger.Error("failed to build webhook dispatcher", "error", err)
		return 1
	}

	httpapi.Version = version
	api := httpapi.NewHandler(httpapi.Config{
		Addr:      config.BindAddress,
		AuthToken: config.AuthToken,
		Modem:     m,
		Store:     db,
		Bus:       bus,
		LogLevel:  levelVar,
		Logger:    logger,
	})

	if ok, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
		logger.Warn("systemd readiness notification failed", "error", notifyErr)
	} else if ok {
		logger.Info("notified systemd readiness")
	}

	g, gctx := errgroup.WithContext(rootCtx)
	g.Go(func() error { return m.Loop(gctx) })
	g.Go(func() error { return m.RunMaintenance(gctx, 10*time.Minute) })
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error {
		logger.Info("starting HTTP server", "address", config.BindAddress)
		return api.Run()
	})
	if config.SystemdWatchdog {
		g.Go(func() error { return watchdogLoop(gctx, bus, logger) })
	}

	<-gctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := api.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := m.Close(); err != nil {
		logger.Error("modem close error", "error", err)
	}

	waitErr := g.Wait()
	if rootCtx.Err() != nil {
		return 130
	}
	if waitErr != nil {
		logger.Error("gateway exited with error", "error", waitErr)
		return 1
	}
	return 0
}

// version is stamped at build time via -ldflags; "dev" otherwise.
var version = "dev"

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// knownEventKinds lists every eventbus.Kind a webhook config entry
// may filter on.
var knownEventKinds = map[eventbus.Kind]bool{
	eventbus.KindIncomingSms:          true,
	eventbus.KindDeliveryReport:       true,
	eventbus.KindOutgoingSmsCompleted: true,
	eventbus.KindOutgoingSmsFailed:    true,
	eventbus.KindSignalStrength:       true,
	eventbus.KindNetworkRegistration:  true,
	eventbus.KindGnssFix:              true,
	eventbus.KindModemLinkState:       true,
}

func parseEventKinds(names []string) ([]eventbus.Kind, error) {
	out := make([]eventbus.Kind, 0, len(names))
	for _, name := range names {
		kind := eventbus.Kind(name)
		if !knownEventKinds[kind] {
			return nil, fmt.Errorf("main: unknown webhook event kind %q", name)
		}
		out = append(out, kind)
	}
	return out, nil
}

// watchdogLoop pings the systemd watchdog on half its configured
// interval, but only while the modem link is up — a wedged or
// disconnected modem lets the watchdog lapse so systemd restarts the
// service instead of leaving a half-dead gateway running.
func watchdogLoop(ctx context.Context, bus *eventbus.Bus, logger *slog.Logger) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return nil
	}

	var online atomic.Bool
	online.Store(true)
	sub := bus.Subscribe([]eventbus.Kind{eventbus.KindModemLinkState}, eventbus.LagDrop, 4)
	defer sub.Close()
	go func() {
		for ev := range sub.C() {
			if state, ok := ev.Payload.(modem.LinkState); ok {
				online.Store(state.Online)
			}
		}
	}()

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !online.Load() {
				continue
			}
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				logger.Warn("systemd watchdog notify failed", "error", err)
			}
		}
	}
}
