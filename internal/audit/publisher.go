package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaMirror publishes appended audit records to a Kafka topic for
// downstream compliance consumers. The topic is a mirror, not the ledger:
// the store copy is authoritative and a publish failure is logged, not
// retried here. Because record timestamps are coordinator-supplied, the
// mirrored copy carries the same time as the stored one.
type KafkaMirror struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaMirror connects to the brokers and ensures the topic exists.
func NewKafkaMirror(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaMirror, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, err
	}
	for _, t := range resp.Sorted() {
		// Already-exists is the steady state on restart; anything else is
		// worth a warning but not a startup failure.
		if t.Err != nil {
			logger.Warn("audit topic creation", "topic", t.Topic, "error", t.Err)
		}
	}

	return &KafkaMirror{client: client, topic: topic, logger: logger}, nil
}

// mirrorPayload is the JSON structure published to Kafka.
type mirrorPayload struct {
	ID        string            `json:"id"`
	ActorID   string            `json:"actor_id"`
	Action    string            `json:"action"`
	TargetID  string            `json:"target_id"`
	Timestamp string            `json:"timestamp"`
	Outcome   string            `json:"outcome"`
	Reason    string            `json:"reason,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Publish sends the record asynchronously, keyed by target so one target's
// history stays ordered within a partition.
func (m *KafkaMirror) Publish(ctx context.Context, rec Record) {
	payload, err := json.Marshal(mirrorPayload{
		ID:        rec.ID.String(),
		ActorID:   rec.ActorID.String(),
		Action:    rec.Action.String(),
		TargetID:  rec.TargetID,
		Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
		Outcome:   string(rec.Outcome),
		Reason:    rec.Reason,
		Details:   rec.Details,
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "marshal audit mirror payload", "error", err)
		return
	}

	m.client.Produce(ctx, &kgo.Record{
		Topic: m.topic,
		Key:   []byte(rec.TargetID),
		Value: payload,
	}, func(r *kgo.Record, err error) {
		if err != nil {
			m.logger.Error("audit mirror publish failed",
				"audit_id", rec.ID.String(),
				"error", err,
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (m *KafkaMirror) Close(ctx context.Context) error {
	if err := m.client.Flush(ctx); err != nil {
		return err
	}
	m.client.Close()
	return nil
}
