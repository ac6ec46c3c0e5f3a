package events

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus {
	logger := zerolog.New(io.Discard)
	return NewBus(&logger)
}

func TestBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := newTestBus()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	bus.now = func() time.Time { return fixed }

	var got []Event
	bus.Subscribe(func(e Event) error {
		got = append(got, e)
		return nil
	}, "a", "b")

	bus.Publish("a", 1)
	bus.Publish("b", "two")
	bus.Publish("c", nil)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Type)
	assert.Equal(t, 1, got[0].Payload)
	assert.Equal(t, "two", got[1].Payload)
	assert.Equal(t, fixed, got[0].CreatedAt)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	_, err := uuid.Parse(got[0].ID)
	assert.NoError(t, err)
}

func TestBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := newTestBus()
	calls := 0
	bus.Subscribe(func(Event) error { calls++; return errors.New("boom") }, "x")
	bus.Subscribe(func(Event) error { calls++; return nil }, "x")

	bus.Publish("x", nil)
	assert.Equal(t, 2, calls)
}
