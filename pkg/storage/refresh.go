package storage

import (
	"context"

	"mailguard/pkg/domain"
)

// RefreshStorage keeps the audit trail of refresh attempts.
type RefreshStorage interface {
	// StoreRefreshEvents inserts the events and returns them as stored,
	// including generated ids and timestamps.
	StoreRefreshEvents(ctx context.Context, events ...domain.RefreshEvent) ([]domain.RefreshEvent, error)
	// RecentRefreshEvents returns at most limit events, newest first.
	RecentRefreshEvents(ctx context.Context, limit uint) ([]domain.RefreshEvent, error)
}

// SnapshotStorage keeps copies of successfully applied domain lists so that a
// restarted process can serve the last known list when the upstream is down.
type SnapshotStorage interface {
	// StoreSnapshot persists snapshot and returns it as stored.
	StoreSnapshot(ctx context.Context, snapshot domain.Snapshot) (*domain.Snapshot, error)
	// LatestSnapshot returns the most recently stored snapshot, or nil when none exists.
	LatestSnapshot(ctx context.Context) (*domain.Snapshot, error)
}
