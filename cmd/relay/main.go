// Command relay drains the Postgres outbox into Kafka, or into the log when
// no brokers are configured.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	postgresRepo "github.com/iho/cardledger/internal/adapter/repository/postgres"
	"github.com/iho/cardledger/internal/infrastructure/config"
	"github.com/iho/cardledger/internal/infrastructure/eventpublisher"
	"github.com/iho/cardledger/internal/infrastructure/logger"
	"github.com/iho/cardledger/internal/infrastructure/metrics"
	"github.com/iho/cardledger/internal/infrastructure/postgres"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = l

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Fatal().Err(err).Msg("relay failed")
	}
	l.Info().Msg("relay stopped")
}

func run(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	if cfg.StorageDriver != config.DriverPostgres {
		return errors.New("relay needs STORAGE_DRIVER=postgres; the memory driver relays in-process")
	}

	pool, err := postgres.ConnectWithRetry(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	}, cfg.StartupMaxRetries, l)
	if err != nil {
		return err
	}
	defer pool.Close()

	publisher, closePublisher := newPublisher(cfg, l)
	defer closePublisher()

	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		Outbox:    postgresRepo.NewOutboxRepository(pool),
		Publisher: publisher,
		Logger:    l,
		Metrics:   metrics.New(prometheus.DefaultRegisterer),
		BatchSize: cfg.OutboxBatchSize,
		Interval:  cfg.OutboxPollInterval,
	})

	if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newPublisher(cfg *config.Config, l zerolog.Logger) (eventpublisher.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		l.Warn().Msg("KAFKA_BROKERS not set, events will only be logged")
		return eventpublisher.NewLogPublisher(l), func() {}
	}

	kp := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	l.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing to kafka")
	return kp, func() {
		if err := kp.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close kafka writer")
		}
	}
}
