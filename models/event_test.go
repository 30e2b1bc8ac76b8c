package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	actorID := uuid.New().String()
	event, err := NewEvent("note.created", "note", "create", actorID, map[string]interface{}{
		"note_id": uuid.New().String(),
	})
	assert.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "note.created", event.Event)
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, "note", event.Entity)
	assert.Equal(t, "create", event.Operation)
	assert.Equal(t, actorID, event.ActorID)
	assert.Equal(t, "pending", event.Status)
	assert.False(t, event.Dispatched)
	assert.False(t, event.Timestamp.IsZero())

	var data map[string]interface{}
	assert.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Contains(t, data, "note_id")
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("note.created", "note", "create", "", make(chan int))
	assert.Error(t, err)
}
