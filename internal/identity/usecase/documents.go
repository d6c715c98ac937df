package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	eventDomain "github.com/authware/authority/internal/event/domain"
	"github.com/authware/authority/internal/identity/domain"
)

// Audit event documents are sanitized snapshots: signing keys, password
// hashes and application secrets never reach the event store.

type membershipDocument struct {
	ID                    uuid.UUID             `json:"id"`
	Name                  string                `json:"name"`
	Slug                  string                `json:"slug"`
	ExpiresIn             int64                 `json:"expires_in"`
	RefreshTokenExpiresIn int64                 `json:"refresh_token_expires_in"`
	HashAlgorithm         domain.HashAlgorithm  `json:"hash_algorithm"`
	DefaultEncoding       domain.SecretEncoding `json:"default_encoding"`
}

func membershipSnapshot(m *domain.Membership) json.RawMessage {
	doc, _ := json.Marshal(membershipDocument{
		ID:                    m.ID,
		Name:                  m.Name,
		Slug:                  m.Slug,
		ExpiresIn:             m.ExpiresIn,
		RefreshTokenExpiresIn: m.RefreshTokenExpiresIn,
		HashAlgorithm:         m.HashAlgorithm,
		DefaultEncoding:       m.DefaultEncoding,
	})
	return doc
}

type userDocument struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
}

func userSnapshot(u *domain.User) json.RawMessage {
	doc, _ := json.Marshal(userDocument{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
	})
	return doc
}

type applicationDocument struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

func applicationSnapshot(a *domain.Application) json.RawMessage {
	doc, _ := json.Marshal(applicationDocument{
		ID:       a.ID,
		Name:     a.Name,
		Role:     a.Role,
		IsActive: a.IsActive,
	})
	return doc
}

type roleDocument struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	Forbidden   []string  `json:"forbidden"`
}

func roleSnapshot(r *domain.Role) json.RawMessage {
	doc, _ := json.Marshal(roleDocument{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		Forbidden:   r.Forbidden,
	})
	return doc
}

// emitAudit builds and emits an audit event. The utilizer is the principal
// attached to the context; operations run outside a request (CLI seeding)
// emit with a nil utilizer.
func emitAudit(
	ctx context.Context,
	events EventEmitter,
	eventType eventDomain.EventType,
	membershipID uuid.UUID,
	document, prior json.RawMessage,
) {
	var utilizerID uuid.UUID
	if principal, ok := domain.PrincipalFromContext(ctx); ok {
		utilizerID = principal.ID
	}

	events.Emit(ctx, &eventDomain.Event{
		ID:           uuid.Must(uuid.NewV7()),
		EventType:    eventType,
		MembershipID: membershipID,
		UtilizerID:   utilizerID,
		Document:     document,
		Prior:        prior,
		EventTime:    time.Now().UTC(),
	})
}
