package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cardledger/internal/infrastructure/config"
	"github.com/iho/cardledger/internal/infrastructure/eventpublisher"
)

func TestRun_RejectsMemoryDriver(t *testing.T) {
	err := run(context.Background(), &config.Config{StorageDriver: config.DriverMemory}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}

func TestNewPublisher_FallsBackToLog(t *testing.T) {
	p, closeFn := newPublisher(&config.Config{}, zerolog.Nop())
	defer closeFn()

	assert.IsType(t, &eventpublisher.LogPublisher{}, p)
}

func TestNewPublisher_Kafka(t *testing.T) {
	p, closeFn := newPublisher(&config.Config{
		KafkaBrokers: []string{"localhost:9092"},
		KafkaTopic:   "cardledger.purchases",
	}, zerolog.Nop())
	defer closeFn()

	assert.IsType(t, &eventpublisher.KafkaPublisher{}, p)
}
