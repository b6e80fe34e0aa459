package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivertype"

	"mailguard/pkg/storage"
)

// AddJob queues a River job. Inside a transaction the job is written with the
// transaction and only becomes visible on commit. It reports false when River
// skipped the job as a duplicate of a unique job that is already queued, which
// is how repeated startup refresh retries collapse into one.
func (p *PgSQL) AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	var (
		res *rivertype.JobInsertResult
		err error
	)
	switch db := p.DB.(type) {
	case *sql.Tx:
		client, cerr := insertClient(nil)
		if cerr != nil {
			return false, cerr
		}
		res, err = client.InsertTx(ctx, db, args, opts)
	case *sql.DB:
		client, cerr := insertClient(db)
		if cerr != nil {
			return false, cerr
		}
		res, err = client.Insert(ctx, args, opts)
	default:
		return false, storage.ErrNotConnected
	}
	if err != nil {
		return false, fmt.Errorf("could not queue %s job: %w", args.Kind(), err)
	}

	return !res.UniqueSkippedAsDuplicate, nil
}

// insertClient returns a River client that only inserts jobs. db may be nil
// when every insert goes through InsertTx.
func insertClient(db *sql.DB) (*river.Client[*sql.Tx], error) {
	client, err := river.NewClient(riverdatabasesql.New(db), &river.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create river insert client: %w", err)
	}

	return client, nil
}
