// Package audit records role and team mutations as an append-only trail.
// Mutating services publish events through the asynq queue; the worker
// persists them, so a slow audit store never blocks a console request.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskTypeRecord is the asynq task type carrying one audit event.
	TaskTypeRecord = "audit:record"
	// TaskTypePrune is the scheduled task trimming events past retention.
	TaskTypePrune = "audit:prune"
)

// Event is one recorded mutation.
type Event struct {
	ID        int64           `json:"id"`
	Action    string          `json:"action"`
	Scope     string          `json:"scope"`
	Subject   string          `json:"subject"`
	ActorID   string          `json:"actorId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewRecordTask wraps an event into an asynq task.
func NewRecordTask(event Event) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRecord, data), nil
}

// DecodeRecordTask unpacks an audit event from a task payload.
func DecodeRecordTask(t *asynq.Task) (Event, error) {
	var event Event
	err := json.Unmarshal(t.Payload(), &event)
	return event, err
}

// Store persists events. Implemented by Repository.
type Store interface {
	Insert(ctx context.Context, event Event) error
}

// NewRecordHandler builds the worker-side handler for TaskTypeRecord.
// Malformed payloads are dropped rather than retried.
func NewRecordHandler(store Store) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		event, err := DecodeRecordTask(t)
		if err != nil {
			return asynq.SkipRetry
		}
		return store.Insert(ctx, event)
	}
}

type prunePayload struct {
	Retention string `json:"retention"`
}

// NewPruneTask builds a TaskTypePrune task for the given retention window.
func NewPruneTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(prunePayload{Retention: retention.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePrune, data), nil
}

// Pruner removes events created before a cutoff. Implemented by Repository.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewPruneHandler builds the worker-side handler for TaskTypePrune.
func NewPruneHandler(store Pruner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload prunePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		retention, err := time.ParseDuration(payload.Retention)
		if err != nil || retention <= 0 {
			return asynq.SkipRetry
		}
		removed, err := store.DeleteOlderThan(ctx, time.Now().Add(-retention))
		if err != nil {
			return err
		}
		if logger != nil && removed > 0 {
			logger.Info("pruned audit events", slog.Int64("removed", removed))
		}
		return nil
	}
}
