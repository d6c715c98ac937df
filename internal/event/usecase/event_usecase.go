package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/authware/authority/internal/event/domain"
)

// AuditEventUseCase implements EventUseCase and the fire-and-forget emitter
// consumed by the token and identity use cases.
//
// Emit never surfaces errors to the caller: audit recording and webhook
// delivery must not fail the business operation that triggered them.
type AuditEventUseCase struct {
	eventRepo  EventRepository
	dispatcher Dispatcher
	retention  time.Duration
	logger     *slog.Logger

	wg sync.WaitGroup
}

// NewEventUseCase creates a new event use case. The dispatcher may be nil when
// webhook delivery is disabled.
func NewEventUseCase(
	eventRepo EventRepository,
	dispatcher Dispatcher,
	retention time.Duration,
	logger *slog.Logger,
) *AuditEventUseCase {
	return &AuditEventUseCase{
		eventRepo:  eventRepo,
		dispatcher: dispatcher,
		retention:  retention,
		logger:     logger,
	}
}

// Emit records the event and hands it to the webhook dispatcher. Persistence
// failures are logged and swallowed; delivery runs in the background, detached
// from the request's cancellation.
func (e *AuditEventUseCase) Emit(ctx context.Context, event *domain.Event) {
	if err := event.Validate(); err != nil {
		e.logger.Error("dropping invalid audit event",
			slog.String("event_type", string(event.EventType)),
			slog.Any("error", err))
		return
	}

	if err := e.eventRepo.Create(ctx, event); err != nil {
		e.logger.Error("failed to record audit event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", string(event.EventType)),
			slog.Any("error", err))
		return
	}

	if e.dispatcher == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.dispatcher.Dispatch(detached, event)
	}()
}

// Wait blocks until all in-flight webhook deliveries finish. Called on shutdown.
func (e *AuditEventUseCase) Wait() {
	e.wg.Wait()
}

// List retrieves events matching the filter, newest first.
func (e *AuditEventUseCase) List(
	ctx context.Context,
	filter *domain.EventFilter,
	offset, limit int,
) ([]*domain.Event, error) {
	return e.eventRepo.List(ctx, filter, offset, limit)
}

// DeleteExpired removes events older than the retention window.
func (e *AuditEventUseCase) DeleteExpired(ctx context.Context) (int64, error) {
	before := time.Now().UTC().Add(-e.retention)
	return e.eventRepo.DeleteExpired(ctx, before)
}
