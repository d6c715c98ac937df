package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/authware/authority/internal/database"
	apperrors "github.com/authware/authority/internal/errors"
	eventDomain "github.com/authware/authority/internal/event/domain"
)

// MySQLEventRepository implements Event persistence for MySQL.
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQL event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Create stores an audit event. Events are immutable once written.
func (m *MySQLEventRepository) Create(ctx context.Context, event *eventDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO events (id, event_type, membership_id, utilizer_id, document, prior, event_time)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	var utilizerID any
	if event.UtilizerID != uuid.Nil {
		utilizerID = event.UtilizerID.String()
	}

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID.String(),
		string(event.EventType),
		event.MembershipID.String(),
		utilizerID,
		nullableJSON(event.Document),
		nullableJSON(event.Prior),
		event.EventTime,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create event")
	}
	return nil
}

// List retrieves events matching the filter, newest first.
func (m *MySQLEventRepository) List(
	ctx context.Context,
	filter *eventDomain.EventFilter,
	offset, limit int,
) ([]*eventDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := "SELECT " + eventSelectColumns + " FROM events WHERE 1=1"
	args := []any{}

	if filter != nil {
		if filter.MembershipID != uuid.Nil {
			query += " AND membership_id = ?"
			args = append(args, filter.MembershipID.String())
		}
		if filter.EventType != "" {
			query += " AND event_type = ?"
			args = append(args, string(filter.EventType))
		}
		if filter.UtilizerID != uuid.Nil {
			query += " AND utilizer_id = ?"
			args = append(args, filter.UtilizerID.String())
		}
	}

	query += " ORDER BY event_time DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list events")
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []*eventDomain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list events")
	}
	return events, nil
}

// DeleteExpired removes events older than the cutoff.
func (m *MySQLEventRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM events WHERE event_time < ?`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired events")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired events")
	}
	return rows, nil
}

// MySQLWebhookRepository implements Webhook persistence for MySQL. Event type
// lists are stored as JSON columns since MySQL has no array type.
type MySQLWebhookRepository struct {
	db *sql.DB
}

// NewMySQLWebhookRepository creates a new MySQL webhook repository.
func NewMySQLWebhookRepository(db *sql.DB) *MySQLWebhookRepository {
	return &MySQLWebhookRepository{db: db}
}

// Create stores a webhook subscription.
func (m *MySQLWebhookRepository) Create(ctx context.Context, webhook *eventDomain.Webhook) error {
	querier := database.GetTx(ctx, m.db)

	eventTypes, err := marshalEventTypes(webhook.EventTypes)
	if err != nil {
		return err
	}

	query := `INSERT INTO webhooks (id, membership_id, name, url, event_types, is_active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`

	_, err = querier.ExecContext(
		ctx,
		query,
		webhook.ID.String(),
		webhook.MembershipID.String(),
		webhook.Name,
		webhook.URL,
		eventTypes,
		webhook.IsActive,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create webhook")
	}
	return nil
}

// Update modifies a webhook subscription.
func (m *MySQLWebhookRepository) Update(ctx context.Context, webhook *eventDomain.Webhook) error {
	querier := database.GetTx(ctx, m.db)

	eventTypes, err := marshalEventTypes(webhook.EventTypes)
	if err != nil {
		return err
	}

	query := `UPDATE webhooks
			  SET name = ?, url = ?, event_types = ?, is_active = ?, updated_at = NOW()
			  WHERE id = ? AND membership_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		webhook.Name,
		webhook.URL,
		eventTypes,
		webhook.IsActive,
		webhook.ID.String(),
		webhook.MembershipID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update webhook")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update webhook")
	}
	if rows == 0 {
		return eventDomain.ErrWebhookNotFound
	}
	return nil
}

// Get retrieves a webhook by id within a membership.
func (m *MySQLWebhookRepository) Get(
	ctx context.Context,
	membershipID, webhookID uuid.UUID,
) (*eventDomain.Webhook, error) {
	querier := database.GetTx(ctx, m.db)

	query := "SELECT " + webhookSelectColumns + " FROM webhooks WHERE id = ? AND membership_id = ?"

	return scanMySQLWebhook(querier.QueryRowContext(ctx, query, webhookID.String(), membershipID.String()))
}

// ListByMembership retrieves every webhook of a membership.
func (m *MySQLWebhookRepository) ListByMembership(
	ctx context.Context,
	membershipID uuid.UUID,
) ([]*eventDomain.Webhook, error) {
	querier := database.GetTx(ctx, m.db)

	query := "SELECT " + webhookSelectColumns + " FROM webhooks WHERE membership_id = ? ORDER BY created_at"

	rows, err := querier.QueryContext(ctx, query, membershipID.String())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list webhooks")
	}
	defer func() {
		_ = rows.Close()
	}()

	var webhooks []*eventDomain.Webhook
	for rows.Next() {
		webhook, err := scanMySQLWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, webhook)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list webhooks")
	}
	return webhooks, nil
}

// Delete removes a webhook subscription.
func (m *MySQLWebhookRepository) Delete(ctx context.Context, membershipID, webhookID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM webhooks WHERE id = ? AND membership_id = ?`

	result, err := querier.ExecContext(ctx, query, webhookID.String(), membershipID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete webhook")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete webhook")
	}
	if rows == 0 {
		return eventDomain.ErrWebhookNotFound
	}
	return nil
}

func scanMySQLWebhook(row rowScanner) (*eventDomain.Webhook, error) {
	var (
		webhook        eventDomain.Webhook
		eventTypesJSON []byte
	)
	err := row.Scan(
		&webhook.ID,
		&webhook.MembershipID,
		&webhook.Name,
		&webhook.URL,
		&eventTypesJSON,
		&webhook.IsActive,
		&webhook.CreatedAt,
		&webhook.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eventDomain.ErrWebhookNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan webhook")
	}
	if eventTypesJSON != nil {
		if err := json.Unmarshal(eventTypesJSON, &webhook.EventTypes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal webhook event types")
		}
	}
	return &webhook, nil
}

func marshalEventTypes(types []eventDomain.EventType) ([]byte, error) {
	out, err := json.Marshal(types)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal webhook event types")
	}
	return out, nil
}
