package v1handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"mailguard/pkg/domain"
	"mailguard/pkg/logger"
)

// Status reports the active domain list and, when storage is configured, the
// most recent refresh attempts. It is guarded by the same gate as the refresh
// endpoint.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if !h.realmServed(w, r) {
		return
	}

	if _, decision := h.authorize(r); !decision.Admitted {
		denial(decision.Reason).Write(w)

		return
	}

	state := h.deps.Cache.Snapshot()
	events, err := h.deps.Refresher.RecentEvents(r.Context(), h.options.RecentEvents)
	if err != nil {
		// The cache state is still worth returning.
		logger.Error(r.Context(), "could not load refresh events", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, func(enc *jx.Encoder) {
		enc.ObjStart()
		enc.FieldStart("version")
		enc.UInt64(state.Version)
		enc.FieldStart("domainCount")
		enc.Int(state.Set.Len())
		enc.FieldStart("lastRefresh")
		if state.RefreshedAt.IsZero() {
			enc.Null()
		} else {
			enc.Str(state.RefreshedAt.UTC().Format(time.RFC3339))
		}
		enc.FieldStart("events")
		enc.ArrStart()
		for _, e := range events {
			encodeEvent(enc, e)
		}
		enc.ArrEnd()
		enc.ObjEnd()
	})
}

func encodeEvent(enc *jx.Encoder, e domain.RefreshEvent) {
	enc.ObjStart()
	enc.FieldStart("id")
	enc.Str(e.ID.String())
	enc.FieldStart("trigger")
	enc.Str(string(e.Trigger))
	if e.ClientID != "" {
		enc.FieldStart("clientId")
		enc.Str(e.ClientID)
	}
	enc.FieldStart("status")
	enc.Str(string(e.Status))
	if e.DenyReason != "" {
		enc.FieldStart("denyReason")
		enc.Str(string(e.DenyReason))
	}
	enc.FieldStart("version")
	enc.UInt64(e.Version)
	enc.FieldStart("domainCount")
	enc.Int(e.DomainCount)
	if e.Error != "" {
		enc.FieldStart("error")
		enc.Str(e.Error)
	}
	enc.FieldStart("createdAt")
	enc.Str(e.CreatedAt.UTC().Format(time.RFC3339))
	enc.ObjEnd()
}
