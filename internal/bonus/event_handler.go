package bonus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/performance-bonus/internal/core/events"
)

// EventHandler records saved allocations for operators.
type EventHandler struct {
	metrics *Metrics
	logger  *slog.Logger
}

func NewEventHandler(metrics *Metrics, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		metrics: metrics,
		logger:  logger,
	}
}

func (h *EventHandler) HandleAllocationSaved(ctx context.Context, event events.Event) error {
	saved, ok := event.(*events.AllocationSavedEvent)
	if !ok {
		h.logger.Error("invalid event type for allocation saved handler", "event_type", event.EventType())
		return fmt.Errorf("expected AllocationSavedEvent, got %T", event)
	}

	h.metrics.IncrementSaved(saved.Status, saved.Exceeded)

	level := slog.LevelInfo
	if saved.Exceeded {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, "allocation recorded",
		"event_id", saved.EventID(),
		"department_id", saved.DepartmentID,
		"year", saved.Year,
		"version", saved.Version,
		"status", saved.Status,
		"actor_id", saved.ActorID,
		"total_budget", saved.TotalBudget,
		"allocated", saved.Allocated,
		"exceeded", saved.Exceeded)

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeAllocationSaved, h.HandleAllocationSaved)
	eventBus.Subscribe(events.EventTypeAllocationFinalized, h.HandleAllocationSaved)

	h.logger.Info("allocation event handlers registered",
		"handlers", []string{events.EventTypeAllocationSaved, events.EventTypeAllocationFinalized})
}
