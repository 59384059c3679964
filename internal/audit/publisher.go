package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/lnk-io/lnk-console/internal/shared"
)

// MutationCounter counts recorded mutations. *observability.Metrics
// satisfies it.
type MutationCounter interface {
	CountRoleMutation(action string)
}

// Publisher enqueues audit events. It satisfies the AuditRecorder ports of
// the roles and teams services. Enqueue failures are logged and swallowed:
// auditing must never fail the mutation it describes.
type Publisher struct {
	client  *asynq.Client
	logger  *slog.Logger
	counter MutationCounter
}

// NewPublisher builds Publisher instance. counter may be nil.
func NewPublisher(client *asynq.Client, logger *slog.Logger, counter MutationCounter) *Publisher {
	return &Publisher{client: client, logger: logger, counter: counter}
}

// Record publishes one event, attributing it to the session actor when one
// is present.
func (p *Publisher) Record(ctx context.Context, action, scope, subject string, payload any) {
	if p == nil || p.client == nil {
		return
	}
	if p.counter != nil {
		p.counter.CountRoleMutation(action)
	}
	event := Event{Action: action, Scope: scope, Subject: subject}
	if sess := shared.SessionFromContext(ctx); sess != nil {
		event.ActorID = sess.ActorID
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			p.warn(ctx, "audit payload marshal", err)
			return
		}
		event.Payload = raw
	}
	task, err := NewRecordTask(event)
	if err != nil {
		p.warn(ctx, "audit task build", err)
		return
	}
	if _, err := p.client.EnqueueContext(ctx, task); err != nil {
		p.warn(ctx, "audit enqueue", err)
	}
}

func (p *Publisher) warn(ctx context.Context, msg string, err error) {
	if p.logger != nil {
		p.logger.WarnContext(ctx, msg, slog.Any("error", err))
	}
}
