//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/klimakart/choropleth-styling-service/internal/adapter/climateapi"
	kafkaadapter "github.com/klimakart/choropleth-styling-service/internal/adapter/kafka"
	"github.com/klimakart/choropleth-styling-service/internal/config"
	"github.com/klimakart/choropleth-styling-service/internal/domain"
	"github.com/klimakart/choropleth-styling-service/internal/observability"
)

const testRefreshTopic = "test-dataset-refresh"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// countingProvider serves canned data and counts upstream fetches, so cache
// hits and post-invalidation refetches are observable.
type countingProvider struct {
	mu            sync.Mutex
	featureCalls  int
	metadataCalls int
}

func (p *countingProvider) Municipalities(_ context.Context, index, scenario, period string) (domain.FeatureCollection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.featureCalls++

	v := 2.5
	return domain.FeatureCollection{Features: []domain.Feature{
		{ID: "f-1", MunicipalityCode: "GM0001", DistrictCode: "DR01", Value: &v,
			IndexCode: index, Scenario: scenario, Period: period},
	}}, nil
}

func (p *countingProvider) IndexMetadata(_ context.Context, code string) (domain.IndexMetadata, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metadataCalls++
	return domain.IndexMetadata{Code: code, PaletteFamily: domain.PaletteRdBuReversed}, nil
}

func (p *countingProvider) calls() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.featureCalls, p.metadataCalls
}

// TestRefreshNotificationInvalidatesCache publishes a dataset refresh event
// through real Kafka and verifies the consumer drops the matching cache
// entries, forcing the next request back to the upstream.
func TestRefreshNotificationInvalidatesCache(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testRefreshTopic)

	cfg := &config.Config{
		KafkaBrokers:      []string{broker},
		KafkaRefreshTopic: testRefreshTopic,
		KafkaGroupID:      fmt.Sprintf("test-refresh-%d", time.Now().UnixNano()),
	}

	inner := &countingProvider{}
	metrics := observability.NewMetricsForTesting()
	cached := climateapi.NewCachedProvider(inner, 16, metrics)

	// Prime the cache: second round of requests must not reach the upstream.
	_, err := cached.Municipalities(ctx, "heat_days", "rcp85", "2050")
	require.NoError(t, err)
	_, err = cached.IndexMetadata(ctx, "heat_days")
	require.NoError(t, err)
	_, err = cached.Municipalities(ctx, "heat_days", "rcp85", "2050")
	require.NoError(t, err)
	_, err = cached.IndexMetadata(ctx, "heat_days")
	require.NoError(t, err)

	features, metadata := inner.calls()
	require.Equal(t, 1, features)
	require.Equal(t, 1, metadata)

	consumer := kafkaadapter.NewConsumer(cfg, cached, discardLogger(), metrics)
	t.Cleanup(func() { _ = consumer.Close() })

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- consumer.Run(consumerCtx) }()

	// Publish the refresh event for the cached slice.
	payload, err := json.Marshal(domain.RefreshEvent{
		IndexCode:   "heat_days",
		Scenario:    "rcp85",
		Period:      "2050",
		PublishedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testRefreshTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{Value: payload}))

	// Wait for the invalidation to land: the next feature request must reach
	// the upstream again.
	require.Eventually(t, func() bool {
		_, err := cached.Municipalities(ctx, "heat_days", "rcp85", "2050")
		if err != nil {
			return false
		}
		features, _ := inner.calls()
		return features > 1
	}, 60*time.Second, 500*time.Millisecond, "cache was never invalidated")

	// Metadata for the refreshed index was dropped too.
	_, err = cached.IndexMetadata(ctx, "heat_days")
	require.NoError(t, err)
	_, metadata = inner.calls()
	assert.Equal(t, 2, metadata)

	consumerCancel()
	require.NoError(t, <-errCh)
}
