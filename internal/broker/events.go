package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"releaf-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishPostPublished publishes a PostPublished event
func (ep *EventPublisher) PublishPostPublished(ctx context.Context, event *models.PostPublishedEvent) error {
	key := fmt.Sprintf("post-%s", event.PostID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishRedemptionCompleted publishes a RedemptionCompleted event. Keyed
// by user so one principal's redemptions stay ordered.
func (ep *EventPublisher) PublishRedemptionCompleted(ctx context.Context, event *models.RedemptionCompletedEvent) error {
	key := fmt.Sprintf("user-%s", event.UserID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onRedemptionCompleted func(context.Context, *models.RedemptionCompletedEvent) error
	onPostPublished       func(context.Context, *models.PostPublishedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnRedemptionCompleted registers a handler for RedemptionCompleted events
func (eh *EventHandler) OnRedemptionCompleted(handler func(context.Context, *models.RedemptionCompletedEvent) error) {
	eh.onRedemptionCompleted = handler
}

// OnPostPublished registers a handler for PostPublished events
func (eh *EventHandler) OnPostPublished(handler func(context.Context, *models.PostPublishedEvent) error) {
	eh.onPostPublished = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeRedemptionCompleted:
		if eh.onRedemptionCompleted != nil {
			var event models.RedemptionCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal RedemptionCompleted event: %w", err)
			}
			return eh.onRedemptionCompleted(ctx, &event)
		}

	case models.EventTypePostPublished:
		if eh.onPostPublished != nil {
			var event models.PostPublishedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PostPublished event: %w", err)
			}
			return eh.onPostPublished(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
