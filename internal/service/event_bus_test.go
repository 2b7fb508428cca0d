package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingForwarder struct {
	mu       sync.Mutex
	received []events.Event
}

func (r *recordingForwarder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, event)
	return nil
}

func (r *recordingForwarder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.received)
}

func TestPublishedEventsReachForwarder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer bus.Close()

	forwarder := &recordingForwarder{}
	consumer := NewConsumerService(bus, "pm.events", forwarder, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("pm.events", bus)
	require.NoError(t, publisher.Publish(ctx, events.New(events.TypeProjectSubmitted, map[string]interface{}{
		"session_id": "s1",
	})))

	require.Eventually(t, func() bool { return forwarder.count() == 1 }, time.Second, 10*time.Millisecond)

	forwarder.mu.Lock()
	got := forwarder.received[0]
	forwarder.mu.Unlock()
	assert.Equal(t, events.TypeProjectSubmitted, got.EventType())
	assert.Equal(t, "s1", got.Payload()["session_id"])
}

func TestConsumerWithoutForwarderAcks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer bus.Close()

	consumer := NewConsumerService(bus, "pm.events", nil, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	// Publish returns only after the consumer acked
	done := make(chan error, 1)
	go func() {
		done <- NewPublisherService("pm.events", bus).Publish(ctx, events.New(events.TypeAdviceGenerated, nil))
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("publish did not complete")
	}
}
