package v1handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"mailguard/internal/api/handler/v1handler"
	"mailguard/pkg/domain"
)

const statusPath = "/realms/shop/disposable-email/status"

func TestStatus_ReportsCacheAndEvents(t *testing.T) {
	f := newFixture(t)
	f.cache.Replace(domain.NewDomainSet("mailinator.com", "yopmail.com"))
	tok := f.sign(t, serviceBot, "realm-admin")

	id := uuid.New()
	f.refresher.EXPECT().RecentEvents(gomock.Any(), uint(v1handler.DefaultRecentEvents)).Return([]domain.RefreshEvent{{
		ID:          domain.RefreshEventID(id),
		Trigger:     domain.RefreshTriggerManual,
		ClientID:    serviceBot,
		Status:      domain.RefreshStatusSucceeded,
		Version:     1,
		DomainCount: 2,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, statusPath, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec, body := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.InDelta(t, 1, body["version"], 0)
	require.InDelta(t, 2, body["domainCount"], 0)
	require.NotNil(t, body["lastRefresh"])

	events, ok := body["events"].([]any)
	require.True(t, ok)
	require.Len(t, events, 1)
	ev := events[0].(map[string]any)
	require.Equal(t, id.String(), ev["id"])
	require.Equal(t, "manual", ev["trigger"])
	require.Equal(t, "SUCCEEDED", ev["status"])
	require.Equal(t, "2026-01-02T03:04:05Z", ev["createdAt"])
}

func TestStatus_StorageErrorStillReportsCache(t *testing.T) {
	f := newFixture(t)
	tok := f.sign(t, serviceBot, "realm-admin")
	f.refresher.EXPECT().RecentEvents(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, statusPath, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec, body := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.InDelta(t, 0, body["version"], 0)
	require.Nil(t, body["lastRefresh"])
	require.Empty(t, body["events"])
}

func TestStatus_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	tok := f.sign(t, serviceBot, "view-users")
	f.refresher.EXPECT().RecentEvents(gomock.Any(), gomock.Any()).Times(0)
	f.refresher.EXPECT().RecordDenied(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	req := httptest.NewRequest(http.MethodGet, statusPath, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec, _ := f.do(req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
