package broker

import (
	"context"
	"fmt"
	"time"

	"kitchen-analytics/internal/models"
	"kitchen-analytics/internal/util"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventSink accepts keyed events
type EventSink interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing analytics events
type EventPublisher struct {
	sink EventSink
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(sink EventSink) *EventPublisher {
	return &EventPublisher{sink: sink}
}

// NewBaseEvent stamps a fresh event envelope
func NewBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// PublishForecastCompleted publishes ForecastCompleted event
func (ep *EventPublisher) PublishForecastCompleted(ctx context.Context, event *models.ForecastCompletedEvent) error {
	return ep.publish(ctx, "forecast", event.EventType, event)
}

// PublishIngredientShortage publishes IngredientShortage event
func (ep *EventPublisher) PublishIngredientShortage(ctx context.Context, event *models.IngredientShortageEvent) error {
	key := fmt.Sprintf("ingredient-%s", event.IngredientID)
	return ep.publish(ctx, key, event.EventType, event)
}

func (ep *EventPublisher) publish(ctx context.Context, key, eventType string, event interface{}) error {
	if err := ep.sink.PublishEvent(ctx, key, event); err != nil {
		return err
	}
	util.EventsPublishedTotal.WithLabelValues(eventType).Inc()
	return nil
}

// EventHandler handles incoming events
type EventHandler struct {
	onForecastRequested func(context.Context, *models.ForecastRequestedEvent) error
	logger              *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.ComponentLogger("event_handler")}
}

// OnForecastRequested registers a handler for ForecastRequested events
func (eh *EventHandler) OnForecastRequested(handler func(context.Context, *models.ForecastRequestedEvent) error) {
	eh.onForecastRequested = handler
}

// HandleMessage routes messages to appropriate handlers. Undecodable payloads
// are logged and dropped so they do not block the partition.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		eh.logger.Warn("Dropping undecodable message", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeForecastRequested:
		if eh.onForecastRequested != nil {
			var event models.ForecastRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ForecastRequested event: %w", err)
			}
			if err := eh.onForecastRequested(ctx, &event); err != nil {
				return fmt.Errorf("%s %s failed: %w", baseEvent.EventType, baseEvent.EventID, err)
			}
		}

	default:
		eh.logger.Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
