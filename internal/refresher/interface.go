package refresher

import (
	"context"

	"mailguard/pkg/domain"
)

// RefreshRequest describes who asked for a refresh and why.
type RefreshRequest struct {
	// Trigger is what started the refresh.
	Trigger domain.RefreshTrigger
	// ClientID is the admitted caller for manual refreshes.
	ClientID string
}

// Refresher replaces the active disposable domain list.
//
//go:generate mockgen -package mockrefresher -source=interface.go -destination=mock/mockrefresher.go *
type Refresher interface {
	// Refresh fetches the upstream list and installs it. Failures are reported
	// through the outcome and leave the active list untouched.
	Refresh(ctx context.Context, req RefreshRequest) domain.RefreshOutcome
	// RecordDenied keeps an audit record of a refused refresh attempt.
	RecordDenied(ctx context.Context, clientID string, reason domain.DenyReason)
	// RecentEvents returns the latest refresh attempts, newest first. It returns
	// nothing when no storage is configured.
	RecentEvents(ctx context.Context, limit uint) ([]domain.RefreshEvent, error)
}
