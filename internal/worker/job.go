package worker

import (
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"mailguard/pkg/domain"
)

// defaultMaxAttempts is how often a failed refresh job is retried before River
// discards it. The next periodic run starts a fresh job anyway.
const defaultMaxAttempts = 5

// RefreshJobArgs contains the arguments of a disposable domain list refresh
// job. At most one unfinished job per trigger exists at any time.
type RefreshJobArgs struct {
	// Trigger is recorded with the refresh; empty means scheduled.
	Trigger domain.RefreshTrigger `json:"trigger" river:"unique"`
}

// Kind returns the River job kind used to register and dispatch the refresh worker.
func (args RefreshJobArgs) Kind() string { return "RefreshDomainListJob" }

// InsertOpts returns the River options that keep a single pending refresh per
// trigger. Completed jobs are not considered so the next period can run.
func (args RefreshJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: defaultMaxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
