package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	events []Event
	cutoff time.Time
}

func (m *memoryStore) Insert(ctx context.Context, event Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.cutoff = cutoff
	return 3, nil
}

func TestRecordTaskRoundTrip(t *testing.T) {
	payload, _ := json.Marshal(map[string]any{"roleId": 7})
	task, err := NewRecordTask(Event{
		Action:  "role.updated",
		Scope:   "team-1",
		Subject: "Editors",
		ActorID: "user-3",
		Payload: payload,
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeRecord, task.Type())

	store := &memoryStore{}
	handler := NewRecordHandler(store)
	require.NoError(t, handler(context.Background(), task))

	require.Len(t, store.events, 1)
	got := store.events[0]
	assert.Equal(t, "role.updated", got.Action)
	assert.Equal(t, "team-1", got.Scope)
	assert.Equal(t, "user-3", got.ActorID)
	assert.JSONEq(t, `{"roleId":7}`, string(got.Payload))
}

func TestRecordHandlerDropsMalformedPayload(t *testing.T) {
	store := &memoryStore{}
	handler := NewRecordHandler(store)

	err := handler(context.Background(), asynq.NewTask(TaskTypeRecord, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, store.events)
}

func TestPruneHandlerCutoff(t *testing.T) {
	task, err := NewPruneTask(90 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, TaskTypePrune, task.Type())

	store := &memoryStore{}
	handler := NewPruneHandler(store, nil)
	require.NoError(t, handler(context.Background(), task))

	want := time.Now().Add(-90 * 24 * time.Hour)
	assert.WithinDuration(t, want, store.cutoff, time.Minute)
}

func TestPruneHandlerRejectsBadRetention(t *testing.T) {
	store := &memoryStore{}
	handler := NewPruneHandler(store, nil)

	err := handler(context.Background(), asynq.NewTask(TaskTypePrune, []byte(`{"retention":"nope"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.True(t, store.cutoff.IsZero())
}
