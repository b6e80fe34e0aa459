package postgres

import (
	"context"
	"fmt"

	"mailguard/pkg/domain"

	"github.com/doug-martin/goqu/v9"
)

const (
	refreshEventsTable = "refresh_events"
	snapshotsTable     = "domain_snapshots"
)

func (p *PgSQL) StoreRefreshEvents(ctx context.Context, events ...domain.RefreshEvent) ([]domain.RefreshEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}

	rows := make([]PgRefreshEvent, len(events))
	for i := range events {
		rows[i].FromDomain(events[i])
	}

	var result []PgRefreshEvent
	if err := p.Builder.Insert(refreshEventsTable).
		Rows(rows).
		Returning(&PgRefreshEvent{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store refresh events into pg: %w", err)
	}

	return pgRefreshEventsToDomain(result), nil
}

// RecentRefreshEvents returns the newest events first. Ties on created_at are
// broken by id so that pages are stable.
func (p *PgSQL) RecentRefreshEvents(ctx context.Context, limit uint) ([]domain.RefreshEvent, error) {
	if limit == 0 {
		return nil, nil
	}

	var rows []PgRefreshEvent
	if err := p.Builder.From(refreshEventsTable).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(limit).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch refresh events from pg: %w", err)
	}

	return pgRefreshEventsToDomain(rows), nil
}

func (p *PgSQL) StoreSnapshot(ctx context.Context, snapshot domain.Snapshot) (*domain.Snapshot, error) {
	var row PgSnapshot
	if err := row.FromDomain(snapshot); err != nil {
		return nil, err
	}

	var stored PgSnapshot
	if _, err := p.Builder.Insert(snapshotsTable).
		Rows(row).
		Returning(&PgSnapshot{}).
		Executor().ScanStructContext(ctx, &stored); err != nil {
		return nil, fmt.Errorf("could not store snapshot into pg: %w", err)
	}

	return stored.ToDomain()
}

// LatestSnapshot returns nil when no snapshot has been stored yet.
func (p *PgSQL) LatestSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	var row PgSnapshot
	found, err := p.Builder.From(snapshotsTable).
		Order(goqu.I("id").Desc()).
		Limit(1).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch latest snapshot: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}
