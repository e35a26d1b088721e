package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher delivers audit events to a sink.
type Publisher interface {
	Emit(ctx context.Context, e Event) error
}

// LogPublisher writes events to the structured log.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, e Event) error {
	e = Enrich(ctx, e)
	p.logger.InfoContext(ctx, "audit event",
		"action", string(e.Action),
		"subject", e.Subject,
		"entity_count", e.EntityCount,
		"user_id", e.UserID,
		"username", e.Username,
		"file_name", e.FileName,
		"language", e.Language,
		"client_ip", e.ClientIP,
		"browser", e.Browser,
		"request_id", e.RequestID,
	)
	return nil
}

// KafkaPublisher produces events as JSON records keyed by subject.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func NewKafkaPublisher(client *kgo.Client, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic, logger: logger}
}

// Emit enqueues the record and returns once it is buffered. Delivery failures
// are logged from the produce callback.
func (p *KafkaPublisher) Emit(ctx context.Context, e Event) error {
	e = Enrich(ctx, e)
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.Subject),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(e.Action)},
		},
	}
	p.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to publish audit event",
				"error", err,
				"topic", r.Topic,
				"action", string(e.Action),
				"subject", e.Subject,
			)
		}
	})
	return nil
}

// Flush waits for buffered records to be delivered.
func (p *KafkaPublisher) Flush(ctx context.Context) error {
	return p.client.Flush(ctx)
}
