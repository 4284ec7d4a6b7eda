// Package kafka consumes dataset refresh notifications from the data
// platform and turns them into cache invalidations.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/klimakart/choropleth-styling-service/internal/config"
	"github.com/klimakart/choropleth-styling-service/internal/domain"
	"github.com/klimakart/choropleth-styling-service/internal/observability"
)

// Invalidator drops cached entries covered by a refresh notification and
// reports how many were removed.
type Invalidator interface {
	Invalidate(event domain.RefreshEvent) int
}

// Consumer reads refresh notifications from the configured topic and applies
// them to the cache. It runs until its context is cancelled.
type Consumer struct {
	reader      *kafkago.Reader
	invalidator Invalidator
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewConsumer creates a refresh notification consumer.
func NewConsumer(cfg *config.Config, invalidator Invalidator, logger *slog.Logger, metrics *observability.Metrics) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaRefreshTopic,
		GroupID: cfg.KafkaGroupID,
	})
	return &Consumer{
		reader:      r,
		invalidator: invalidator,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run consumes refresh notifications until ctx is cancelled. Cancellation is
// a clean shutdown, not an error.
func (c *Consumer) Run(ctx context.Context) error {
	c.metrics.ConsumerRunning.Set(1)
	defer c.metrics.ConsumerRunning.Set(0)

	c.logger.Info("refresh consumer started", "topic", c.reader.Config().Topic)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.logger.Info("refresh consumer stopping")
				return nil
			}
			return fmt.Errorf("read refresh notification: %w", err)
		}
		c.handle(msg)
	}
}

// handle applies one notification. Malformed payloads are logged and skipped
// so a poison message cannot stall the consumer.
func (c *Consumer) handle(msg kafkago.Message) {
	var event domain.RefreshEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Warn("skipping malformed refresh notification",
			"offset", msg.Offset, "error", err)
		return
	}

	c.metrics.RefreshEventsReceived.Inc()
	removed := c.invalidator.Invalidate(event)

	c.logger.Info("cache invalidated by refresh notification",
		"index", event.IndexCode,
		"scenario", event.Scenario,
		"period", event.Period,
		"entries_removed", removed)
}

// Close closes the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
