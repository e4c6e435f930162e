package main

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/notify"
	"github.com/mmynk/settleup/internal/reminder"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/logging"
)

// app holds the components shared by the commands.
type app struct {
	cfg        *config.Config
	store      *sqlite.SQLiteStore
	ledger     *ledger.Ledger
	metrics    *metrics.Metrics
	dispatcher *reminder.Dispatcher
	minimum    decimal.Decimal
}

// loadConfig reads and validates the configuration and installs the logger.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.SetupWithFormat(cfg.Log.Format, cfg.SlogLevel())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newApp opens storage and builds the ledger and reminder dispatcher.
func newApp(cfg *config.Config) (*app, error) {
	minimum, err := decimal.NewFromString(cfg.Reminders.DefaultMinimum)
	if err != nil {
		return nil, fmt.Errorf("invalid reminders.default_minimum %q: %w", cfg.Reminders.DefaultMinimum, err)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	m := metrics.New()
	l := ledger.New(store)
	dispatcher := reminder.NewDispatcher(l, store, newSender(cfg.SMS),
		reminder.WithConcurrency(cfg.Reminders.Concurrency),
		reminder.WithMetrics(m),
	)

	return &app{
		cfg:        cfg,
		store:      store,
		ledger:     l,
		metrics:    m,
		dispatcher: dispatcher,
		minimum:    minimum,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func newSender(cfg config.SMSConfig) notify.Sender {
	if cfg.Provider == "twilio" {
		slog.Info("SMS via Twilio", "from", cfg.FromNumber, "rate_per_second", cfg.RatePerSecond)
		return notify.NewTwilioSender(notify.TwilioConfig{
			AccountSID:         cfg.AccountSID,
			AuthToken:          cfg.AuthToken,
			FromNumber:         cfg.FromNumber,
			DefaultCountryCode: cfg.DefaultCountryCode,
			RatePerSecond:      cfg.RatePerSecond,
			Burst:              cfg.Burst,
		})
	}
	slog.Info("SMS messages will be logged, not sent")
	return notify.LogSender{}
}
