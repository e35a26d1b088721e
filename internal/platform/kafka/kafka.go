// Package kafka builds the franz-go client used for audit events.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"partnersearch/internal/platform/config"
)

// NewClient returns a producer client for the configured brokers, or nil when
// KAFKA_BROKERS is empty.
func NewClient(cfg config.Kafka) (*kgo.Client, error) {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.ClientID("partnersearch"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates topic if it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, logger *slog.Logger) error {
	admin := kadm.NewClient(client)

	topics, err := admin.ListTopics(ctx, topic)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if detail, ok := topics[topic]; ok && detail.Err == nil {
		return nil
	}

	resp, err := admin.CreateTopic(ctx, partitions, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	logger.InfoContext(ctx, "kafka topic created", "topic", topic, "partitions", partitions)
	return nil
}
