// Package worker drains background queues.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/autostock/backend/internal/audit"
)

// EventWriter persists one drained audit event.
type EventWriter interface {
	Insert(ctx context.Context, ev *audit.Event) error
}

// AuditDrain moves authorization decisions from the Redis queue into the
// audit_log table, retrying failures and dead-lettering after MaxAttempts.
type AuditDrain struct {
	recorder *audit.Recorder
	writer   EventWriter
	logger   *zap.Logger
}

// NewAuditDrain creates an audit drain worker.
func NewAuditDrain(recorder *audit.Recorder, writer EventWriter, logger *zap.Logger) *AuditDrain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditDrain{recorder: recorder, writer: writer, logger: logger}
}

// Process persists one event, requeueing on failure.
func (d *AuditDrain) Process(ctx context.Context, ev *audit.Event) {
	if err := d.writer.Insert(ctx, ev); err != nil {
		d.logger.Warn("persist audit event", zap.Error(err), zap.String("event_id", ev.ID.String()))
		if rqErr := d.recorder.Requeue(ctx, ev); rqErr != nil {
			d.logger.Error("requeue audit event", zap.Error(rqErr), zap.String("event_id", ev.ID.String()))
		}
	}
}

// Run blocks draining the queue until ctx is cancelled.
func (d *AuditDrain) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("audit drain stopping")
			return
		default:
		}

		ev, err := d.recorder.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Warn("dequeue audit event", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if ev == nil {
			continue
		}
		d.Process(ctx, ev)
	}
}
