package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"mailguard/pkg/domain"

	"github.com/google/uuid"
)

type PgRefreshEvent struct {
	ID uuid.UUID `db:"id"`

	Trigger     string         `db:"trigger"`
	ClientID    sql.NullString `db:"client_id"`
	Status      string         `db:"status"`
	DenyReason  sql.NullString `db:"deny_reason"`
	Version     int64          `db:"version"`
	DomainCount int            `db:"domain_count"`
	Error       sql.NullString `db:"error"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (p *PgRefreshEvent) ToDomain() domain.RefreshEvent {
	return domain.RefreshEvent{
		ID:          domain.RefreshEventID(p.ID),
		Trigger:     domain.RefreshTrigger(p.Trigger),
		ClientID:    p.ClientID.String,
		Status:      domain.RefreshStatus(p.Status),
		DenyReason:  domain.DenyReason(p.DenyReason.String),
		Version:     uint64(p.Version), //nolint: gosec
		DomainCount: p.DomainCount,
		Error:       p.Error.String,
		CreatedAt:   p.CreatedAt,
	}
}

func (p *PgRefreshEvent) FromDomain(event domain.RefreshEvent) {
	id := uuid.UUID(event.ID)
	if id == uuid.Nil {
		id = uuid.New()
	}

	*p = PgRefreshEvent{
		ID:          id,
		Trigger:     string(event.Trigger),
		ClientID:    nullString(event.ClientID),
		Status:      string(event.Status),
		DenyReason:  nullString(string(event.DenyReason)),
		Version:     int64(event.Version), //nolint: gosec
		DomainCount: event.DomainCount,
		Error:       nullString(event.Error),
		CreatedAt:   event.CreatedAt,
	}
}

type PgSnapshot struct {
	ID int64 `db:"id" goqu:"skipinsert"`

	Version     int64           `db:"version"`
	Domains     json.RawMessage `db:"domains"`
	DomainCount int             `db:"domain_count"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgSnapshot) ToDomain() (*domain.Snapshot, error) {
	var domains []string
	if err := json.Unmarshal(p.Domains, &domains); err != nil {
		return nil, fmt.Errorf("could not unmarshal snapshot domains: %w", err)
	}

	return &domain.Snapshot{
		Domains:   domains,
		Version:   uint64(p.Version), //nolint: gosec
		CreatedAt: p.CreatedAt,
	}, nil
}

func (p *PgSnapshot) FromDomain(snapshot domain.Snapshot) error {
	domains := snapshot.Domains
	if domains == nil {
		domains = []string{}
	}
	b, err := json.Marshal(domains)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot domains: %w", err)
	}

	*p = PgSnapshot{
		Version:     int64(snapshot.Version), //nolint: gosec
		Domains:     b,
		DomainCount: len(domains),
	}

	return nil
}

func pgRefreshEventsToDomain(rows []PgRefreshEvent) []domain.RefreshEvent {
	out := make([]domain.RefreshEvent, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out
}
