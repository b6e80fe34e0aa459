package postgres_test

import (
	"context"
	"testing"
	"time"

	"mailguard/pkg/domain"
	"mailguard/pkg/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPgSQL_RefreshEvents(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()

	t.Run("empty history", func(t *testing.T) {
		events, err := pgSQL.RecentRefreshEvents(ctx, 10)
		require.NoError(t, err)
		require.Empty(t, events)
	})

	t.Run("store and list newest first", func(t *testing.T) {
		id := domain.RefreshEventID(uuid.New())
		stored, err := pgSQL.StoreRefreshEvents(ctx, domain.RefreshEvent{
			ID:          id,
			Trigger:     domain.RefreshTriggerStartup,
			Status:      domain.RefreshStatusSucceeded,
			Version:     1,
			DomainCount: 3,
		})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		require.Equal(t, id, stored[0].ID)
		require.False(t, stored[0].CreatedAt.IsZero())

		time.Sleep(5 * time.Millisecond)

		stored, err = pgSQL.StoreRefreshEvents(ctx, domain.RefreshEvent{
			Trigger:    domain.RefreshTriggerManual,
			ClientID:   "intruder",
			Status:     domain.RefreshStatusDenied,
			DenyReason: domain.DenyInsufficientRole,
		})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		require.NotEqual(t, domain.RefreshEventID(uuid.Nil), stored[0].ID)

		events, err := pgSQL.RecentRefreshEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, domain.RefreshStatusDenied, events[0].Status)
		require.Equal(t, domain.DenyInsufficientRole, events[0].DenyReason)
		require.Equal(t, "intruder", events[0].ClientID)
		require.Equal(t, domain.RefreshStatusSucceeded, events[1].Status)
		require.Equal(t, uint64(1), events[1].Version)
		require.Equal(t, 3, events[1].DomainCount)
		require.Empty(t, events[1].ClientID)

		events, err = pgSQL.RecentRefreshEvents(ctx, 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
	})

	t.Run("no events is a no-op", func(t *testing.T) {
		stored, err := pgSQL.StoreRefreshEvents(ctx)
		require.NoError(t, err)
		require.Nil(t, stored)
	})
}

func TestPgSQL_Snapshots(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()

	latest, err := pgSQL.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.Nil(t, latest)

	_, err = pgSQL.StoreSnapshot(ctx, domain.Snapshot{Domains: []string{"a.com"}, Version: 1})
	require.NoError(t, err)
	stored, err := pgSQL.StoreSnapshot(ctx, domain.Snapshot{Domains: []string{"b.com", "c.com"}, Version: 2})
	require.NoError(t, err)
	require.Equal(t, uint64(2), stored.Version)
	require.False(t, stored.CreatedAt.IsZero())

	latest, err = pgSQL.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, uint64(2), latest.Version)
	require.Equal(t, []string{"b.com", "c.com"}, latest.Domains)
	require.True(t, latest.Set().Contains("c.com"))
}

func TestPgSQL_WithTx_SnapshotAndEvent(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()

	err := pgSQL.WithTx(ctx, func(s storage.AllStorage) error {
		if _, err := s.StoreSnapshot(ctx, domain.Snapshot{Domains: []string{"a.com"}, Version: 7}); err != nil {
			return err
		}
		_, err := s.StoreRefreshEvents(ctx, domain.RefreshEvent{
			Trigger: domain.RefreshTriggerScheduled,
			Status:  domain.RefreshStatusSucceeded,
			Version: 7,
		})

		return err
	})
	require.NoError(t, err)

	latest, err := pgSQL.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(7), latest.Version)

	events, err := pgSQL.RecentRefreshEvents(ctx, 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, domain.RefreshTriggerScheduled, events[0].Trigger)
}
