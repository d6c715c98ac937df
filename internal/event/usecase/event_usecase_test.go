package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/authware/authority/internal/errors"
	"github.com/authware/authority/internal/event/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockEventRepository is a mock implementation of EventRepository for testing.
type mockEventRepository struct {
	mock.Mock
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventRepository) List(
	ctx context.Context,
	filter *domain.EventFilter,
	offset, limit int,
) ([]*domain.Event, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

func (m *mockEventRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// recordingDispatcher captures dispatched events, safe for concurrent use.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []*domain.Event
}

func (r *recordingDispatcher) Dispatch(ctx context.Context, event *domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingDispatcher) dispatched() []*domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Event(nil), r.events...)
}

func testEvent() *domain.Event {
	return &domain.Event{
		ID:           uuid.Must(uuid.NewV7()),
		EventType:    domain.EventTokenGenerated,
		MembershipID: uuid.Must(uuid.NewV7()),
		EventTime:    time.Now().UTC(),
	}
}

func TestAuditEventUseCaseEmit(t *testing.T) {
	ctx := context.Background()

	t.Run("records the event and dispatches it", func(t *testing.T) {
		eventRepo := new(mockEventRepository)
		dispatcher := &recordingDispatcher{}
		useCase := NewEventUseCase(eventRepo, dispatcher, time.Hour, discardLogger())

		event := testEvent()
		eventRepo.On("Create", mock.Anything, event).Return(nil)

		useCase.Emit(ctx, event)
		useCase.Wait()

		eventRepo.AssertExpectations(t)
		require.Len(t, dispatcher.dispatched(), 1)
		assert.Equal(t, event.ID, dispatcher.dispatched()[0].ID)
	})

	t.Run("drops an event with an unknown type", func(t *testing.T) {
		eventRepo := new(mockEventRepository)
		dispatcher := &recordingDispatcher{}
		useCase := NewEventUseCase(eventRepo, dispatcher, time.Hour, discardLogger())

		event := testEvent()
		event.EventType = "not-a-real-type"

		useCase.Emit(ctx, event)
		useCase.Wait()

		eventRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, dispatcher.dispatched())
	})

	t.Run("swallows persistence failures and skips dispatch", func(t *testing.T) {
		eventRepo := new(mockEventRepository)
		dispatcher := &recordingDispatcher{}
		useCase := NewEventUseCase(eventRepo, dispatcher, time.Hour, discardLogger())

		eventRepo.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrUnavailable)

		useCase.Emit(ctx, testEvent())
		useCase.Wait()

		assert.Empty(t, dispatcher.dispatched())
	})

	t.Run("dispatch outlives the request context", func(t *testing.T) {
		eventRepo := new(mockEventRepository)
		dispatcher := &recordingDispatcher{}
		useCase := NewEventUseCase(eventRepo, dispatcher, time.Hour, discardLogger())

		eventRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		requestCtx, cancel := context.WithCancel(ctx)
		useCase.Emit(requestCtx, testEvent())
		cancel()
		useCase.Wait()

		assert.Len(t, dispatcher.dispatched(), 1)
	})

	t.Run("works without a dispatcher", func(t *testing.T) {
		eventRepo := new(mockEventRepository)
		useCase := NewEventUseCase(eventRepo, nil, time.Hour, discardLogger())

		eventRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		useCase.Emit(ctx, testEvent())
		useCase.Wait()

		eventRepo.AssertExpectations(t)
	})
}

func TestAuditEventUseCaseDeleteExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes events older than the retention window", func(t *testing.T) {
		eventRepo := new(mockEventRepository)
		useCase := NewEventUseCase(eventRepo, nil, 720*time.Hour, discardLogger())

		eventRepo.On("DeleteExpired", mock.Anything, mock.MatchedBy(func(before time.Time) bool {
			expected := time.Now().UTC().Add(-720 * time.Hour)
			return before.Sub(expected).Abs() < time.Minute
		})).Return(int64(42), nil)

		deleted, err := useCase.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(42), deleted)
	})
}

func TestAuditEventUseCaseList(t *testing.T) {
	ctx := context.Background()

	t.Run("passes the filter through", func(t *testing.T) {
		eventRepo := new(mockEventRepository)
		useCase := NewEventUseCase(eventRepo, nil, time.Hour, discardLogger())

		filter := &domain.EventFilter{EventType: domain.EventTokenRevoked}
		expected := []*domain.Event{testEvent()}
		eventRepo.On("List", mock.Anything, filter, 0, 50).Return(expected, nil)

		events, err := useCase.List(ctx, filter, 0, 50)
		require.NoError(t, err)
		assert.Equal(t, expected, events)
	})
}
