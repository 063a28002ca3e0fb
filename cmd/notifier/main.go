// Command notifier consumes BookingConfirmed events and emails the tickets.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/metinatakli/cinex/internal/app"
	"github.com/metinatakli/cinex/internal/events"
	"github.com/metinatakli/cinex/internal/mailer"
)

type config struct {
	GroupID string `env:"KAFKA_GROUP_ID" env-default:"cinex-notifier"`
	Events  app.EventsConfig
	SMTP    app.SMTPConfig
}

type consumer interface {
	Run(ctx context.Context, handle events.Handler) error
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	err := run(logger)
	if err != nil {
		logger.Error("notifier exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	var cfg config

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	err = cleanenv.ReadEnv(&cfg)
	if err != nil {
		return fmt.Errorf("failed to read config from environment: %w", err)
	}

	var c consumer

	switch cfg.Events.Driver {
	case app.EventsDriverKafka:
		kc := events.NewKafkaConsumer(cfg.Events.KafkaBrokers, cfg.Events.Topic, cfg.GroupID, logger)
		defer kc.Close()
		c = kc
	case app.EventsDriverAMQP:
		c = events.NewAMQPConsumer(cfg.Events.AMQPURL, cfg.Events.Topic, logger)
	default:
		return fmt.Errorf("events driver %q has no stream to consume", cfg.Events.Driver)
	}

	m := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier started", "driver", cfg.Events.Driver, "topic", cfg.Events.Topic)

	err = c.Run(ctx, events.SendTicket(m))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("notifier stopped")

	return nil
}
