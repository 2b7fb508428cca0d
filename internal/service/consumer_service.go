// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder ships events out of the process. *nats.Publisher implements it.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  EventForwarder
	logger     logger.ILogger
}

// NewConsumerService writes every domain event to the audit log and, when a
// forwarder is given, relays it to the external bus.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forwarder EventForwarder,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		msg.Ack() // malformed payloads will never succeed
		return
	}

	cs.logger.Info("Audit", event.Type, event.Data)

	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, event); err != nil {
			// the audit line above is the record of truth; the bus is best effort
			cs.logger.Warn("Consumer", "Failed to forward event", map[string]interface{}{
				"event_type": event.Type,
				"error":      err,
			})
		}
	}
	msg.Ack()
}
