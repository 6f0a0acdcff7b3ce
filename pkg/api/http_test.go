package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredr0ck/honey-potter/pkg/api"
)

func TestListEventsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "inc-1", r.URL.Query().Get("incident_id"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"events": []map[string]any{
				{"id": "e1", "event_type": "ssh_auth_attempt", "level": 2, "source_ip": "198.51.100.34"},
			},
			"total": 1,
		})
	}))
	defer srv.Close()

	c := api.NewHTTPClient(srv.URL, "tok-1")
	events, err := c.ListEvents(context.Background(), api.EventFilter{IncidentID: "inc-1", Limit: 25})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ssh_auth_attempt", events[0].EventType)
	assert.Equal(t, api.LevelBruteForce, events[0].Level)
}

func TestListEventsDefaultLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]any{"events": []any{}, "total": 0})
	}))
	defer srv.Close()

	_, err := api.NewHTTPClient(srv.URL, "").ListEvents(context.Background(), api.EventFilter{})
	require.NoError(t, err)
}

func TestListHoneytokensEnvelopeAndFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/credentials", r.URL.Path)
		assert.Equal(t, "postgres", r.URL.Query().Get("service_type"))
		assert.Equal(t, "true", r.URL.Query().Get("used_only"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"credentials": []map[string]any{{"id": "t1", "username": "backup_svc"}},
			"total":       1,
		})
	}))
	defer srv.Close()

	toks, err := api.NewHTTPClient(srv.URL, "tok").ListHoneytokens(context.Background(),
		api.HoneytokenFilter{ServiceType: "postgres", UsedOnly: true})
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "backup_svc", toks[0].Username)
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
	}))
	defer srv.Close()

	_, err := api.NewHTTPClient(srv.URL, "expired").ListHoneypots(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestServerDetailSurfacesInError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "port 2222 already in use"})
	}))
	defer srv.Close()

	err := api.NewHTTPClient(srv.URL, "tok").StartHoneypot(context.Background(), "hp-1")
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "port 2222 already in use", apiErr.Error())
}

func TestErrorWithoutDetailBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := api.NewHTTPClient(srv.URL, "tok").DeleteHoneypot(context.Background(), "hp-1")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "502")
}

func TestBulkDeleteSendsIDList(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/honeypots/bulk-delete", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	err := api.NewHTTPClient(srv.URL, "tok").BulkDeleteHoneypots(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestBulkDeleteValidatedLocally(t *testing.T) {
	// No server: an invalid batch must never reach the wire.
	c := api.NewHTTPClient("http://127.0.0.1:0", "tok")
	err := c.BulkDeleteHoneypots(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestUpdateNotificationSettingsOmitsNilFields(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/notifications/settings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "s1", "telegram_enabled": true})
	}))
	defer srv.Close()

	enabled := true
	s, err := api.NewHTTPClient(srv.URL, "tok").UpdateNotificationSettings(context.Background(),
		api.NotificationSettingsUpdate{TelegramEnabled: &enabled})
	require.NoError(t, err)
	assert.True(t, s.TelegramEnabled)

	assert.Equal(t, map[string]any{"telegram_enabled": true}, body,
		"nil fields must not appear in the payload")
}
