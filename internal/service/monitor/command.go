package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/gas-alarm-notifier/internal/api/grpc/status"
	"github.com/oshokin/gas-alarm-notifier/internal/config"
	domain "github.com/oshokin/gas-alarm-notifier/internal/domain/alarm"
	"github.com/oshokin/gas-alarm-notifier/internal/logger"
	"github.com/oshokin/gas-alarm-notifier/internal/notify"
	"github.com/oshokin/gas-alarm-notifier/internal/sensor"
)

// Options controls the notifier daemon behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// PollInterval overrides the fixed polling interval, for tests.
	PollInterval time.Duration
}

// DefaultPollInterval is the fixed polling interval backstopping a missed
// edge event.
const DefaultPollInterval = 500 * time.Millisecond

// Run starts the notifier daemon and blocks until the context is canceled.
// It loads configuration, wires the log file, opens the sensor line, seeds
// the state machine from the first reading and then evaluates readings from
// the periodic poll and the edge callback until stopped.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// The file sink must be in place before the context logger is scoped,
	// or everything logged through ctx would miss the log file.
	if err = setupLogging(cfg); err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	ctx = logger.WithName(ctx, "gas-alarm-notifier")

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	logger.InfoKV(ctx, "Notifier starting",
		"chip", cfg.Sensor.Chip,
		"pin", cfg.Sensor.Pin,
		"cooldown", cfg.Policy.Cooldown().String(),
		"send_clear", cfg.Policy.SendClearEnabled())

	// Both triggering sources are funneled into the loop goroutine: the edge
	// handler only signals, the loop does the read and evaluation. A missed
	// signal is harmless, the next tick re-samples anyway.
	edges := make(chan struct{}, 1)

	reader, err := sensor.Open(&cfg.Sensor, func() {
		select {
		case edges <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("open sensor: %w", err)
	}

	defer func() {
		_ = reader.Close()
	}()

	asserted, err := reader.Read()
	if err != nil {
		return fmt.Errorf("initial sensor read: %w", err)
	}

	initial := domain.FromAsserted(asserted)
	logger.Infof(ctx, "Initial state: %s", initial)

	statusServer := startStatusServer(ctx, cfg, initial)

	channels := buildChannels(cfg)
	defer closeChannels(channels)

	dispatcher := notify.NewDispatcher(channels...)

	mach := newMachine(cfg, initial, dispatcher, func(state domain.State) {
		if statusServer != nil {
			statusServer.SetAlarmState(state)
		}
	})

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			step(ctx, reader, mach)
		case <-edges:
			step(ctx, reader, mach)
		}
	}
}

// step samples the sensor once and feeds the reading into the machine.
// A transient read failure is logged and mitigated by the next tick.
func step(ctx context.Context, reader sensor.Reader, mach *machine) {
	asserted, err := reader.Read()
	if err != nil {
		logger.ErrorKV(ctx, "Sensor read failed", "error", err)

		return
	}

	mach.Evaluate(ctx, time.Now(), asserted)
}

// setupLogging replaces the global logger with one teeing into the
// configured append-only log file.
func setupLogging(cfg *config.Config) error {
	level := logger.Level()
	if parsed, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		level = parsed
	}

	l, err := logger.NewWithFile(level, cfg.LogFile)
	if err != nil {
		return err
	}

	logger.SetLogger(l)

	return nil
}

// buildChannels assembles the configured channels in fixed priority order:
// Twilio SMS first, mail relay second, MQTT publish last.
func buildChannels(cfg *config.Config) []notify.Channel {
	channels := make([]notify.Channel, 0, 3)

	if cfg.Twilio.Configured() {
		channels = append(channels, notify.NewTwilioChannel(&cfg.Twilio))
	}

	if cfg.Email.Configured() {
		channels = append(channels, notify.NewEmailChannel(&cfg.Email, cfg.Messaging.SiteName))
	}

	if cfg.MQTT.Configured() {
		channels = append(channels, notify.NewMQTTChannel(&cfg.MQTT))
	}

	return channels
}

// closeChannels releases channels holding long-lived connections.
func closeChannels(channels []notify.Channel) {
	for _, channel := range channels {
		if closer, ok := channel.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// startStatusServer starts the optional health listener when configured.
// A listener failure is logged, not fatal: supervision is a convenience,
// alerting is the daemon's job.
func startStatusServer(ctx context.Context, cfg *config.Config, initial domain.State) *status.Server {
	if cfg.StatusAddress == "" {
		return nil
	}

	srv := status.NewServer()
	srv.SetAlarmState(initial)

	go func() {
		if err := srv.Run(ctx, cfg.StatusAddress); err != nil {
			logger.ErrorKV(ctx, "Status server stopped", "error", err)
		}
	}()

	return srv
}
