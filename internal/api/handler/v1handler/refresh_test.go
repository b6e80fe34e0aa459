package v1handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"mailguard/internal/api/handler/v1handler"
	"mailguard/internal/refresher"
	"mailguard/pkg/domain"
)

func TestRefresh_AdminServiceAccount(t *testing.T) {
	f := newFixture(t)
	tok := f.sign(t, serviceBot, "view-users", "realm-admin")
	f.refresher.EXPECT().
		Refresh(gomock.Any(), refresher.RefreshRequest{Trigger: domain.RefreshTriggerManual, ClientID: serviceBot}).
		Return(domain.RefreshOutcome{Status: domain.RefreshStatusSucceeded, Version: 1, DomainCount: 3})

	rec, body := f.do(refreshRequest("Bearer " + tok))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, true, body["success"])
	require.Equal(t, v1handler.MessageRefreshed, body["message"])
}

func TestRefresh_UpstreamFailure(t *testing.T) {
	f := newFixture(t)
	tok := f.sign(t, serviceBot, "realm-admin")
	f.refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).
		Return(domain.RefreshOutcome{Status: domain.RefreshStatusFailed, Error: "upstream returned 503"})

	rec, body := f.do(refreshRequest("Bearer " + tok))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, false, body["success"])
	require.Equal(t, v1handler.MessageRefreshFailed, body["message"])
}

func TestRefresh_PanicIsRecovered(t *testing.T) {
	f := newFixture(t)
	tok := f.sign(t, serviceBot, "realm-admin")
	f.refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, _ any) domain.RefreshOutcome { panic("nil map") })

	rec, body := f.do(refreshRequest("Bearer " + tok))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, v1handler.MessageRefreshError, body["message"])
}

func TestRefresh_Denied(t *testing.T) {
	cases := []struct {
		name    string
		request func(t *testing.T, f *fixture) *http.Request
		client  string
		reason  domain.DenyReason
		status  int
		message string
	}{
		{
			name:    "no authorization header and no session",
			request: func(*testing.T, *fixture) *http.Request { return refreshRequest() },
			reason:  domain.DenyNotAuthenticated,
			status:  http.StatusUnauthorized,
			message: v1handler.MessageNotAuthenticated,
		},
		{
			name: "invalid token",
			request: func(*testing.T, *fixture) *http.Request {
				return refreshRequest("Bearer not-a-jwt")
			},
			reason:  domain.DenyNotAuthenticated,
			status:  http.StatusUnauthorized,
			message: v1handler.MessageNotAuthenticated,
		},
		{
			name: "authenticated session without authorization header",
			request: func(t *testing.T, f *fixture) *http.Request {
				req := refreshRequest()
				req.AddCookie(&http.Cookie{Name: testCookie, Value: f.sign(t, serviceBot, "realm-admin")})

				return req
			},
			client:  serviceBot,
			reason:  domain.DenyMissingToken,
			status:  http.StatusUnauthorized,
			message: v1handler.MessageMissingToken,
		},
		{
			name: "not a service account",
			request: func(t *testing.T, f *fixture) *http.Request {
				return refreshRequest("Bearer " + f.sign(t, "web-frontend", "realm-admin"))
			},
			client:  "web-frontend",
			reason:  domain.DenyNotServiceAccount,
			status:  http.StatusForbidden,
			message: v1handler.MessageUnauthorizedRetry,
		},
		{
			name: "missing admin role",
			request: func(t *testing.T, f *fixture) *http.Request {
				return refreshRequest("Bearer " + f.sign(t, serviceBot, "view-users"))
			},
			client:  serviceBot,
			reason:  domain.DenyInsufficientRole,
			status:  http.StatusForbidden,
			message: v1handler.MessageUnauthorizedRetry,
		},
		{
			name: "ambiguous authorization header",
			request: func(t *testing.T, f *fixture) *http.Request {
				tok := f.sign(t, serviceBot, "realm-admin")

				return refreshRequest("Bearer "+tok, "Bearer "+tok)
			},
			client:  serviceBot,
			reason:  domain.DenyMalformedRequest,
			status:  http.StatusBadRequest,
			message: v1handler.MessageMalformedRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.refresher.EXPECT().RecordDenied(gomock.Any(), tc.client, tc.reason)
			f.refresher.EXPECT().Refresh(gomock.Any(), gomock.Any()).Times(0)

			rec, body := f.do(tc.request(t, f))
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, false, body["success"])
			require.Equal(t, tc.message, body["message"])
		})
	}
}

func TestRefresh_UnknownRealm(t *testing.T) {
	f := newFixture(t)
	tok := f.sign(t, serviceBot, "realm-admin")

	req := refreshRequest("Bearer " + tok)
	req.URL.Path = "/realms/other/disposable-email/refresh-domain-list"
	rec, body := f.do(req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", body["code"])
}

func TestRefresh_MethodNotAllowed(t *testing.T) {
	f := newFixture(t)

	req := refreshRequest()
	req.Method = http.MethodGet
	rec, _ := f.do(req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
