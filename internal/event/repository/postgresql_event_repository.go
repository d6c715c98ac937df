// Package repository implements persistence for audit events and webhook
// subscriptions.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/authware/authority/internal/database"
	apperrors "github.com/authware/authority/internal/errors"
	eventDomain "github.com/authware/authority/internal/event/domain"
)

const eventSelectColumns = "id, event_type, membership_id, utilizer_id, document, prior, event_time"

// PostgreSQLEventRepository implements Event persistence for PostgreSQL.
// Uses transaction support via database.GetTx().
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQL event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Create stores an audit event. Events are immutable once written.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *eventDomain.Event) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO events (id, event_type, membership_id, utilizer_id, document, prior, event_time)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
		string(event.EventType),
		event.MembershipID,
		nullableUUID(event.UtilizerID),
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
func (p *PostgreSQLEventRepository) List(
	ctx context.Context,
	filter *eventDomain.EventFilter,
	offset, limit int,
) ([]*eventDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := "SELECT " + eventSelectColumns + " FROM events WHERE 1=1"
	args := []any{}

	if filter != nil {
		if filter.MembershipID != uuid.Nil {
			args = append(args, filter.MembershipID)
			query += fmt.Sprintf(" AND membership_id = $%d", len(args))
		}
		if filter.EventType != "" {
			args = append(args, string(filter.EventType))
			query += fmt.Sprintf(" AND event_type = $%d", len(args))
		}
		if filter.UtilizerID != uuid.Nil {
			args = append(args, filter.UtilizerID)
			query += fmt.Sprintf(" AND utilizer_id = $%d", len(args))
		}
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY event_time DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list events")
	}
	defer rows.Close()

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
func (p *PostgreSQLEventRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM events WHERE event_time < $1`

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

// scanEvent scans a single event row.
func scanEvent(rows *sql.Rows) (*eventDomain.Event, error) {
	var (
		event      eventDomain.Event
		eventType  string
		utilizerID uuid.NullUUID
		document   []byte
		prior      []byte
	)
	err := rows.Scan(
		&event.ID,
		&eventType,
		&event.MembershipID,
		&utilizerID,
		&document,
		&prior,
		&event.EventTime,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan event")
	}
	event.EventType = eventDomain.EventType(eventType)
	if utilizerID.Valid {
		event.UtilizerID = utilizerID.UUID
	}
	event.Document = document
	event.Prior = prior
	return &event, nil
}

// nullableUUID maps the zero uuid to SQL NULL.
func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

// nullableJSON maps an empty document to SQL NULL.
func nullableJSON(doc []byte) any {
	if len(doc) == 0 {
		return nil
	}
	return doc
}

const webhookSelectColumns = "id, membership_id, name, url, event_types, is_active, created_at, updated_at"

// PostgreSQLWebhookRepository implements Webhook persistence for PostgreSQL.
type PostgreSQLWebhookRepository struct {
	db *sql.DB
}

// NewPostgreSQLWebhookRepository creates a new PostgreSQL webhook repository.
func NewPostgreSQLWebhookRepository(db *sql.DB) *PostgreSQLWebhookRepository {
	return &PostgreSQLWebhookRepository{db: db}
}

// Create stores a webhook subscription.
func (p *PostgreSQLWebhookRepository) Create(ctx context.Context, webhook *eventDomain.Webhook) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO webhooks (id, membership_id, name, url, event_types, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		webhook.ID,
		webhook.MembershipID,
		webhook.Name,
		webhook.URL,
		pq.Array(eventTypesToStrings(webhook.EventTypes)),
		webhook.IsActive,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create webhook")
	}
	return nil
}

// Update modifies a webhook subscription.
func (p *PostgreSQLWebhookRepository) Update(ctx context.Context, webhook *eventDomain.Webhook) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE webhooks
			  SET name = $1, url = $2, event_types = $3, is_active = $4, updated_at = NOW()
			  WHERE id = $5 AND membership_id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		webhook.Name,
		webhook.URL,
		pq.Array(eventTypesToStrings(webhook.EventTypes)),
		webhook.IsActive,
		webhook.ID,
		webhook.MembershipID,
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
func (p *PostgreSQLWebhookRepository) Get(
	ctx context.Context,
	membershipID, webhookID uuid.UUID,
) (*eventDomain.Webhook, error) {
	querier := database.GetTx(ctx, p.db)

	query := "SELECT " + webhookSelectColumns + " FROM webhooks WHERE id = $1 AND membership_id = $2"

	return scanWebhookRow(querier.QueryRowContext(ctx, query, webhookID, membershipID))
}

// ListByMembership retrieves every webhook of a membership.
func (p *PostgreSQLWebhookRepository) ListByMembership(
	ctx context.Context,
	membershipID uuid.UUID,
) ([]*eventDomain.Webhook, error) {
	querier := database.GetTx(ctx, p.db)

	query := "SELECT " + webhookSelectColumns + " FROM webhooks WHERE membership_id = $1 ORDER BY created_at"

	rows, err := querier.QueryContext(ctx, query, membershipID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list webhooks")
	}
	defer rows.Close()

	var webhooks []*eventDomain.Webhook
	for rows.Next() {
		webhook, err := scanWebhookRow(rows)
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
func (p *PostgreSQLWebhookRepository) Delete(ctx context.Context, membershipID, webhookID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM webhooks WHERE id = $1 AND membership_id = $2`

	result, err := querier.ExecContext(ctx, query, webhookID, membershipID)
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

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebhookRow(row rowScanner) (*eventDomain.Webhook, error) {
	var (
		webhook    eventDomain.Webhook
		eventTypes []string
	)
	err := row.Scan(
		&webhook.ID,
		&webhook.MembershipID,
		&webhook.Name,
		&webhook.URL,
		pq.Array(&eventTypes),
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
	webhook.EventTypes = stringsToEventTypes(eventTypes)
	return &webhook, nil
}

func eventTypesToStrings(types []eventDomain.EventType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func stringsToEventTypes(values []string) []eventDomain.EventType {
	out := make([]eventDomain.EventType, len(values))
	for i, v := range values {
		out[i] = eventDomain.EventType(v)
	}
	return out
}
