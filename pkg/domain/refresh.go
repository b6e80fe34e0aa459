package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshTrigger describes what started a refresh.
type RefreshTrigger string

const (
	// RefreshTriggerStartup is the unconditional refresh run while the service starts.
	RefreshTriggerStartup RefreshTrigger = "startup"
	// RefreshTriggerManual is a refresh requested through the admin endpoint.
	RefreshTriggerManual RefreshTrigger = "manual"
	// RefreshTriggerScheduled is a refresh run by the periodic background job.
	RefreshTriggerScheduled RefreshTrigger = "scheduled"
)

// RefreshStatus represents the result state of a refresh attempt.
type RefreshStatus string

const (
	// RefreshStatusSucceeded indicates a new DomainSet was installed.
	RefreshStatusSucceeded RefreshStatus = "SUCCEEDED"
	// RefreshStatusFailed indicates the upstream fetch failed and the cache was left untouched.
	RefreshStatusFailed RefreshStatus = "FAILED"
	// RefreshStatusDenied indicates the caller was not allowed to refresh.
	RefreshStatusDenied RefreshStatus = "DENIED"
)

// RefreshOutcome is the ephemeral result of a refresh returned to the caller.
type RefreshOutcome struct {
	// Status is either RefreshStatusSucceeded or RefreshStatusFailed.
	Status RefreshStatus
	// Version is the cache version installed by a successful refresh.
	Version uint64
	// DomainCount is the number of domains in the installed set.
	DomainCount int
	// Error is a non-sensitive summary of why the refresh failed.
	Error string
}

// Succeeded reports whether the outcome installed a new set.
func (o RefreshOutcome) Succeeded() bool {
	return o.Status == RefreshStatusSucceeded
}

// RefreshEventID uniquely identifies a persisted refresh event.
type RefreshEventID uuid.UUID

func (id RefreshEventID) String() string {
	return uuid.UUID(id).String()
}

// RefreshEvent is the audit record of a refresh attempt, including denied ones.
type RefreshEvent struct {
	// ID is the unique identifier of the event.
	ID RefreshEventID `json:"id"`
	// Trigger is what started the refresh.
	Trigger RefreshTrigger `json:"trigger"`
	// ClientID is the non-secret identifier of the calling client, if any.
	ClientID string `json:"clientId,omitempty"`
	// Status is the result of the attempt.
	Status RefreshStatus `json:"status"`
	// DenyReason is set for denied attempts.
	DenyReason DenyReason `json:"denyReason,omitempty"`
	// Version is the cache version installed by a successful refresh.
	Version uint64 `json:"version,omitempty"`
	// DomainCount is the size of the installed set.
	DomainCount int `json:"domainCount,omitempty"`
	// Error is the failure summary of a failed refresh.
	Error string `json:"error,omitempty"`
	// CreatedAt is when the attempt was recorded.
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is a persisted copy of the last successfully applied domain list.
type Snapshot struct {
	// Domains holds the normalized members of the set.
	Domains []string
	// Version is the cache version the snapshot was installed as.
	Version uint64
	// CreatedAt is when the snapshot was stored.
	CreatedAt time.Time
}

// Set rebuilds the DomainSet held by the snapshot.
func (s Snapshot) Set() *DomainSet {
	return NewDomainSet(s.Domains...)
}
