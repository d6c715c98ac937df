package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/authware/authority/internal/event/domain"
)

// webhookPayload is the JSON body POSTed to subscribed webhooks.
type webhookPayload struct {
	ID           uuid.UUID       `json:"id"`
	EventType    string          `json:"event_type"`
	MembershipID uuid.UUID       `json:"membership_id"`
	UtilizerID   uuid.UUID       `json:"utilizer_id,omitempty"`
	Document     json.RawMessage `json:"document,omitempty"`
	Prior        json.RawMessage `json:"prior,omitempty"`
	EventTime    time.Time       `json:"event_time"`
}

// WebhookDispatcher delivers events to a membership's subscribed webhooks as
// JSON POST requests. Delivery is best effort: a failing endpoint is logged
// and skipped, there is no retry queue.
type WebhookDispatcher struct {
	webhookRepo    WebhookRepository
	client         *http.Client
	timeout        time.Duration
	maxConcurrency int
	logger         *slog.Logger
}

// NewWebhookDispatcher creates a new WebhookDispatcher.
func NewWebhookDispatcher(
	webhookRepo WebhookRepository,
	timeout time.Duration,
	maxConcurrency int,
	logger *slog.Logger,
) *WebhookDispatcher {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &WebhookDispatcher{
		webhookRepo:    webhookRepo,
		client:         &http.Client{Timeout: timeout},
		timeout:        timeout,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

// Dispatch delivers the event to every active subscription of its membership.
// Deliveries run in parallel, bounded by the configured concurrency.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.Event) {
	webhooks, err := d.webhookRepo.ListByMembership(ctx, event.MembershipID)
	if err != nil {
		d.logger.Error("failed to load webhooks for event",
			slog.String("event_id", event.ID.String()),
			slog.Any("error", err))
		return
	}

	body, err := json.Marshal(webhookPayload{
		ID:           event.ID,
		EventType:    string(event.EventType),
		MembershipID: event.MembershipID,
		UtilizerID:   event.UtilizerID,
		Document:     event.Document,
		Prior:        event.Prior,
		EventTime:    event.EventTime,
	})
	if err != nil {
		d.logger.Error("failed to marshal webhook payload",
			slog.String("event_id", event.ID.String()),
			slog.Any("error", err))
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(d.maxConcurrency)

	for _, webhook := range webhooks {
		if !webhook.Subscribed(event.EventType) {
			continue
		}
		group.Go(func() error {
			if err := d.deliver(groupCtx, webhook, event, body); err != nil {
				d.logger.Error("webhook delivery failed",
					slog.String("event_id", event.ID.String()),
					slog.String("webhook_id", webhook.ID.String()),
					slog.String("url", webhook.URL),
					slog.Any("error", err))
			}
			// Failures never cancel sibling deliveries.
			return nil
		})
	}

	_ = group.Wait()
}

// deliver POSTs the payload to a single webhook, bounded by the delivery timeout.
func (d *WebhookDispatcher) deliver(
	ctx context.Context,
	webhook *domain.Webhook,
	event *domain.Event,
	body []byte,
) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Authority-Event", string(event.EventType))
	req.Header.Set("X-Authority-Delivery", event.ID.String())

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, webhook.URL)
	}
	return nil
}
