package postgres_test

import (
	"context"
	"errors"
	"testing"

	"mailguard/pkg/domain"
	"mailguard/pkg/storage"
	"mailguard/pkg/storage/postgres"

	"github.com/stretchr/testify/require"
)

func manualRefresh(clientID string) domain.RefreshEvent {
	return domain.RefreshEvent{
		Trigger:  domain.RefreshTriggerManual,
		ClientID: clientID,
		Status:   domain.RefreshStatusSucceeded,
		Version:  1,
	}
}

func auditedClients(t *testing.T, pg *postgres.PgSQL) []string {
	t.Helper()
	events, err := pg.RecentRefreshEvents(context.Background(), 50)
	require.NoError(t, err)

	clients := make([]string, 0, len(events))
	for _, e := range events {
		clients = append(clients, e.ClientID)
	}

	return clients
}

func TestPgSQL_Begin_SuccessAndAlreadyInTx(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.StoreRefreshEvents(ctx, manualRefresh("ops-bot"))
	require.NoError(t, err)

	// nested transactions are not supported
	_, err = tx.(*postgres.PgSQL).Begin(ctx)
	require.ErrorIs(t, err, storage.ErrAlreadyInTx)

	// uncommitted events stay out of the history
	require.Empty(t, auditedClients(t, pg))
}

func TestPgSQL_Commit_SuccessAndNotInTx(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.StoreRefreshEvents(ctx, manualRefresh("ops-bot"))
	require.NoError(t, err)
	_, err = tx.StoreSnapshot(ctx, domain.Snapshot{Domains: []string{"mailinator.com"}, Version: 1})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Equal(t, []string{"ops-bot"}, auditedClients(t, pg))
	latest, err := pg.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, []string{"mailinator.com"}, latest.Domains)

	require.ErrorIs(t, pg.Commit(), storage.ErrNotInTx)
}

func TestPgSQL_Rollback_SuccessAndNotInTx(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.StoreSnapshot(ctx, domain.Snapshot{Domains: []string{"mailinator.com"}, Version: 1})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	latest, err := pg.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.Nil(t, latest)

	require.ErrorIs(t, pg.Rollback(), storage.ErrNotInTx)
}

func TestPgSQL_WithTx_CommitAndRollback(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	err := pg.WithTx(ctx, func(s storage.AllStorage) error {
		_, err := s.StoreRefreshEvents(ctx, manualRefresh("ops-bot"))

		return err
	})
	require.NoError(t, err)

	errSnapshot := errors.New("snapshot failed")
	err = pg.WithTx(ctx, func(s storage.AllStorage) error {
		if _, err := s.StoreRefreshEvents(ctx, manualRefresh("half-done")); err != nil {
			return err
		}

		return errSnapshot
	})
	require.ErrorIs(t, err, errSnapshot)

	require.Equal(t, []string{"ops-bot"}, auditedClients(t, pg))
}

func TestPgSQL_WithTx_RollsBackOnPanic(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	require.Panics(t, func() {
		_ = pg.WithTx(ctx, func(s storage.AllStorage) error {
			if _, err := s.StoreRefreshEvents(ctx, manualRefresh("panicked")); err != nil {
				return err
			}
			panic("boom")
		})
	})

	require.Empty(t, auditedClients(t, pg))
}
