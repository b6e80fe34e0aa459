package v1handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"mailguard/internal/refresher"
	"mailguard/pkg/domain"
	"mailguard/pkg/logger"
)

const (
	MessageRefreshed         = "Disposable email domains refreshed successfully"
	MessageRefreshFailed     = "Failed to refresh disposable email domains"
	MessageRefreshError      = "Error refreshing disposable email domains"
	MessageNotAuthenticated  = "User is not authenticated."
	MessageMissingToken      = "Authorization token is missing."
	MessageMalformedRequest  = "Malformed refresh request."
	MessageUnauthorizedRetry = "Unauthorized attempt to refresh disposable email domains"
)

// RefreshResponse is the body of every refresh endpoint response.
type RefreshResponse struct {
	StatusCode int
	Success    bool
	Message    string
}

// Write encodes the response as {"success": ..., "message": ...}.
func (res *RefreshResponse) Write(w http.ResponseWriter) {
	writeJSON(w, res.StatusCode, func(enc *jx.Encoder) {
		enc.ObjStart()
		enc.FieldStart("success")
		enc.Bool(res.Success)
		enc.FieldStart("message")
		enc.Str(res.Message)
		enc.ObjEnd()
	})
}

// denial resolves a gate decision into the response returned to the caller.
func denial(reason domain.DenyReason) *RefreshResponse {
	switch reason {
	case domain.DenyNotAuthenticated:
		return &RefreshResponse{StatusCode: http.StatusUnauthorized, Message: MessageNotAuthenticated}
	case domain.DenyMissingToken:
		return &RefreshResponse{StatusCode: http.StatusUnauthorized, Message: MessageMissingToken}
	case domain.DenyMalformedRequest:
		return &RefreshResponse{StatusCode: http.StatusBadRequest, Message: MessageMalformedRequest}
	default:
		return &RefreshResponse{StatusCode: http.StatusForbidden, Message: MessageUnauthorizedRetry}
	}
}

// RefreshDomainList replaces the active domain list with a fresh copy of the
// upstream list. Only admitted service accounts may call it.
func (h *Handler) RefreshDomainList(w http.ResponseWriter, r *http.Request) {
	if !h.realmServed(w, r) {
		return
	}

	id, decision := h.authorize(r)
	if !decision.Admitted {
		clientID := ""
		if id != nil {
			clientID = id.ClientID
		}
		h.deps.Refresher.RecordDenied(r.Context(), clientID, decision.Reason)
		denial(decision.Reason).Write(w)

		return
	}

	outcome := h.deps.Refresher.Refresh(r.Context(), refresher.RefreshRequest{
		Trigger:  domain.RefreshTriggerManual,
		ClientID: id.ClientID,
	})
	if !outcome.Succeeded() {
		logger.Error(r.Context(), MessageRefreshFailed, zap.String("error", outcome.Error))
		(&RefreshResponse{StatusCode: http.StatusInternalServerError, Message: MessageRefreshFailed}).Write(w)

		return
	}

	(&RefreshResponse{StatusCode: http.StatusOK, Success: true, Message: MessageRefreshed}).Write(w)
}

func (h *Handler) refreshPanicked(w http.ResponseWriter, _ *http.Request) {
	(&RefreshResponse{StatusCode: http.StatusInternalServerError, Message: MessageRefreshError}).Write(w)
}
