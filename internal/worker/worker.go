package worker

import (
	"context"
	"fmt"
	"time"

	"kitchen-analytics/internal/broker"
	"kitchen-analytics/internal/models"
	"kitchen-analytics/internal/service"
	"kitchen-analytics/internal/util"

	"go.uber.org/zap"
)

const (
	forecastLockName = "forecast"
	forecastLockTTL  = 5 * time.Minute
	processedTTL     = 24 * time.Hour
)

// Forecaster runs one ingredient forecast
type Forecaster interface {
	Forecast(ctx context.Context) (*service.ForecastResult, error)
}

// Publisher emits forecast outcome events
type Publisher interface {
	PublishForecastCompleted(ctx context.Context, event *models.ForecastCompletedEvent) error
	PublishIngredientShortage(ctx context.Context, event *models.IngredientShortageEvent) error
}

// Coordinator provides the cross-replica lock and idempotency keys
type Coordinator interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, name, token string) error
	CheckIdempotencyKey(ctx context.Context, key string) (bool, error)
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// MessageSource delivers raw broker messages to a handler
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// ForecastWorker runs forecasts on request and on a schedule and publishes
// the results
type ForecastWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
	forecaster   Forecaster
	publisher    Publisher
	coord        Coordinator
	interval     time.Duration
	logger       *zap.Logger
}

// NewForecastWorker creates a new forecast worker. A zero interval disables
// scheduled runs.
func NewForecastWorker(
	consumer MessageSource,
	forecaster Forecaster,
	publisher Publisher,
	coord Coordinator,
	interval time.Duration,
) *ForecastWorker {
	w := &ForecastWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		forecaster:   forecaster,
		publisher:    publisher,
		coord:        coord,
		interval:     interval,
		logger:       util.ComponentLogger("forecast_worker"),
	}
	w.eventHandler.OnForecastRequested(w.HandleForecastRequested)
	return w
}

// Start starts the worker and blocks until ctx is done
func (w *ForecastWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting forecast worker", zap.Duration("interval", w.interval))

	if w.interval > 0 {
		go w.schedule(ctx)
	}
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ForecastWorker) Stop() error {
	w.logger.Info("Stopping forecast worker")
	return w.consumer.Close()
}

func (w *ForecastWorker) schedule(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx, ""); err != nil {
				w.logger.Error("Scheduled forecast failed", zap.Error(err))
			}
		}
	}
}

// HandleForecastRequested runs a forecast for a request event. Redelivered
// events are skipped.
func (w *ForecastWorker) HandleForecastRequested(ctx context.Context, event *models.ForecastRequestedEvent) error {
	key := "forecast:" + event.EventID

	seen, err := w.coord.CheckIdempotencyKey(ctx, key)
	if err != nil {
		w.logger.Warn("Idempotency check failed, running anyway", zap.Error(err))
	}
	if seen {
		w.logger.Info("Forecast request already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := w.RunOnce(ctx, event.EventID); err != nil {
		return err
	}

	if err := w.coord.SetIdempotencyKey(ctx, key, time.Now().Unix(), processedTTL); err != nil {
		w.logger.Warn("Failed to record processed forecast request", zap.Error(err))
	}
	return nil
}

// RunOnce runs one forecast under the cluster-wide lock and publishes its
// outcome. It is a no-op while another replica holds the lock.
func (w *ForecastWorker) RunOnce(ctx context.Context, requestID string) error {
	token, ok, err := w.coord.AcquireLock(ctx, forecastLockName, forecastLockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire forecast lock: %w", err)
	}
	if !ok {
		w.logger.Info("Forecast already running elsewhere", zap.String("request_id", requestID))
		return nil
	}
	defer func() {
		if err := w.coord.ReleaseLock(context.Background(), forecastLockName, token); err != nil {
			w.logger.Warn("Failed to release forecast lock", zap.Error(err))
		}
	}()

	result, err := w.forecaster.Forecast(ctx)
	if err != nil {
		return fmt.Errorf("forecast failed: %w", err)
	}

	for _, line := range result.Lines {
		if line.Status != models.ForecastStatusCritical {
			continue
		}
		shortage := &models.IngredientShortageEvent{
			BaseEvent:     broker.NewBaseEvent(models.EventTypeIngredientShortage),
			IngredientID:  line.IngredientID,
			Name:          line.Name,
			Unit:          line.Unit,
			CurrentStock:  line.CurrentStock,
			PredictedNeed: line.PredictedNeed,
			Deficit:       line.Deficit,
		}
		if err := w.publisher.PublishIngredientShortage(ctx, shortage); err != nil {
			w.logger.Error("Failed to publish shortage",
				zap.String("ingredient_id", line.IngredientID),
				zap.Error(err))
		}
	}

	counts := result.Counts()
	completed := &models.ForecastCompletedEvent{
		BaseEvent:  broker.NewBaseEvent(models.EventTypeForecastCompleted),
		RequestID:  requestID,
		OrderCount: result.OrderCount,
		Critical:   counts[models.ForecastStatusCritical],
		Warning:    counts[models.ForecastStatusWarning],
		Safe:       counts[models.ForecastStatusSafe],
		Message:    result.Message,
	}
	if err := w.publisher.PublishForecastCompleted(ctx, completed); err != nil {
		return fmt.Errorf("failed to publish forecast result: %w", err)
	}

	w.logger.Info("Forecast published",
		zap.String("request_id", requestID),
		zap.Int("critical", completed.Critical),
		zap.Int("warning", completed.Warning),
		zap.Int("safe", completed.Safe))
	return nil
}
