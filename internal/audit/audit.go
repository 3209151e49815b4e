// Package audit ships authorization decisions to a Redis list, drained by the
// worker into the audit_log table. Recording is fire-and-forget: an
// unavailable queue never blocks or fails the authorizing request.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/autostock/backend/internal/scope"
)

const (
	// QueueDecisions is the Redis list key for authorization decisions.
	QueueDecisions = "audit:decisions"
	// QueueDLQ holds events that failed persistence after retries.
	QueueDLQ = "audit:dlq"
	// MaxAttempts is how many times the worker retries one event.
	MaxAttempts = 3
)

// Event is the queued envelope around a decision.
type Event struct {
	ID       uuid.UUID      `json:"id"`
	Decision scope.Decision `json:"decision"`
	Attempt  int            `json:"attempt"`
	QueuedAt time.Time      `json:"queued_at"`
}

// Sink receives authorization decisions, including denials.
type Sink interface {
	Record(ctx context.Context, d scope.Decision)
}

// Recorder is the Redis-backed Sink.
type Recorder struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(client *redis.Client, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{client: client, logger: logger}
}

// Record enqueues one decision. Failures are logged and dropped.
func (r *Recorder) Record(ctx context.Context, d scope.Decision) {
	ev := Event{ID: uuid.New(), Decision: d, QueuedAt: time.Now().UTC()}
	raw, err := json.Marshal(ev)
	if err != nil {
		r.logger.Error("marshal audit event", zap.Error(err))
		return
	}
	if err := r.client.RPush(ctx, QueueDecisions, raw).Err(); err != nil {
		r.logger.Warn("enqueue audit event", zap.Error(err), zap.String("event_id", ev.ID.String()))
	}
}

// Dequeue blocks up to timeout for the next event. A nil event with nil error
// means the timeout elapsed.
func (r *Recorder) Dequeue(ctx context.Context, timeout time.Duration) (*Event, error) {
	res, err := r.client.BLPop(ctx, timeout, QueueDecisions).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ev Event
	if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Requeue puts a failed event back, or dead-letters it once attempts run out.
func (r *Recorder) Requeue(ctx context.Context, ev *Event) error {
	ev.Attempt++
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	key := QueueDecisions
	if ev.Attempt >= MaxAttempts {
		key = QueueDLQ
		r.logger.Warn("audit event dead-lettered", zap.String("event_id", ev.ID.String()))
	}
	return r.client.RPush(ctx, key, raw).Err()
}

// NopSink discards decisions; used in tests.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(context.Context, scope.Decision) {}
