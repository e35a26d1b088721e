//go:build integration

package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"partnersearch/internal/audit"
	"partnersearch/internal/platform/config"
	"partnersearch/internal/platform/kafka"
	"partnersearch/internal/platform/logger"
	"partnersearch/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	broker string
	topic  string
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.broker = containers.GetManager().GetKafka(s.T()).Broker
	s.topic = "partnersearch.exports.test"
}

func (s *KafkaPublisherSuite) TestEmitProducesJSONRecord() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log := logger.NewWithWriter(&bytes.Buffer{}, "error", "text")

	producer, err := kafka.NewClient(config.Kafka{Brokers: s.broker, AuditTopic: s.topic})
	s.Require().NoError(err)
	defer producer.Close()
	s.Require().NoError(kafka.EnsureTopic(ctx, producer, s.topic, 1, log))

	pub := audit.NewKafkaPublisher(producer, s.topic, log)
	s.Require().NoError(pub.Emit(ctx, audit.Event{
		Action:      audit.ActionHierarchyExported,
		Subject:     "804735132",
		EntityCount: 7,
	}))
	s.Require().NoError(pub.Flush(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	var got audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal("804735132", string(records[0].Key))
	s.Equal(audit.ActionHierarchyExported, got.Action)
	s.Equal(7, got.EntityCount)
}
