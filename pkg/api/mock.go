package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockClient implements Client against in-memory state, for development and
// testing. Mutations behave like the real control plane: ids are generated
// server-side, deletes reject unknown ids, bulk deletes are atomic.
// Individual operations can be forced to fail through the *Err fields.
type MockClient struct {
	mu sync.Mutex

	honeypots   map[string]Honeypot
	honeytokens map[string]Honeytoken
	events      []Event
	incidents   map[string]Incident
	settings    NotificationSettings
	user        User

	// Failure injection: when non-nil, the matching operation returns the
	// error without touching state.
	StartErr      error
	StopErr       error
	DeleteErr     error
	BulkDeleteErr error
	GenerateErr   error
	UpdateErr     error
	MeErr         error
}

var _ Client = (*MockClient)(nil)

// NewMockClient returns a mock pre-seeded with a small plausible fleet.
func NewMockClient() *MockClient {
	m := &MockClient{
		honeypots:   map[string]Honeypot{},
		honeytokens: map[string]Honeytoken{},
		incidents:   map[string]Incident{},
	}
	m.seed()
	return m
}

func (m *MockClient) seed() {
	now := time.Now()

	hpSSH := Honeypot{
		ID: uuid.NewString(), Name: "edge-ssh", Type: "ssh", Port: 2222,
		Address: "0.0.0.0", Status: "running",
		Config:             map[string]any{"banner": "OpenSSH_8.9"},
		NotificationLevels: map[string]bool{"1": false, "2": true, "3": true},
		CreatedAt:          now.Add(-72 * time.Hour),
	}
	hpHTTP := Honeypot{
		ID: uuid.NewString(), Name: "fake-admin", Type: "http", Port: 8080,
		Address: "0.0.0.0", Status: "stopped",
		Config:             map[string]any{},
		NotificationLevels: map[string]bool{"1": false, "2": true, "3": true},
		CreatedAt:          now.Add(-48 * time.Hour),
	}
	hpPG := Honeypot{
		ID: uuid.NewString(), Name: "shadow-db", Type: "postgres", Port: 5433,
		Address: "0.0.0.0", Status: "running",
		Config:             map[string]any{"database": "customers"},
		NotificationLevels: map[string]bool{"1": false, "2": true, "3": true},
		CreatedAt:          now.Add(-24 * time.Hour),
	}
	for _, hp := range []Honeypot{hpSSH, hpHTTP, hpPG} {
		m.honeypots[hp.ID] = hp
	}

	used := now.Add(-2 * time.Hour)
	tok := Honeytoken{
		ID: uuid.NewString(), ServiceType: "postgres", ServiceID: hpPG.ID,
		Username: "backup_svc", Password: "wXr4!qLm92", MetaData: "planted in /etc/backup.conf",
		GeneratedAt: now.Add(-20 * time.Hour), UsedAt: &used,
	}
	m.honeytokens[tok.ID] = tok
	spare := Honeytoken{
		ID: uuid.NewString(), ServiceType: "ssh",
		Username: "deploy", Password: "N0t4re4l-pw",
		GeneratedAt: now.Add(-20 * time.Hour),
	}
	m.honeytokens[spare.ID] = spare

	inc := Incident{
		ID: uuid.NewString(), HoneypotID: hpPG.ID, SourceIP: "203.0.113.7",
		ThreatLevel: LevelCompromise, Status: "new", EventCount: 2,
		FirstSeen: now.Add(-3 * time.Hour), LastSeen: used,
		Details: map[string]any{},
	}
	m.incidents[inc.ID] = inc

	m.events = []Event{
		{
			ID: uuid.NewString(), HoneypotID: hpPG.ID, IncidentID: inc.ID,
			EventType: "postgres_auth_attempt", Level: LevelBruteForce,
			SourceIP: "203.0.113.7", Timestamp: now.Add(-3 * time.Hour),
			Details: map[string]any{"username": "postgres", "password": "postgres", "database": "customers"},
		},
		{
			ID: uuid.NewString(), HoneypotID: hpPG.ID, IncidentID: inc.ID,
			EventType: "postgres_query", Level: LevelCompromise,
			SourceIP: "203.0.113.7", HoneytokenID: tok.ID, Timestamp: used,
			Details: map[string]any{
				"username": "backup_svc", "database": "customers",
				"query": "SELECT * FROM customers LIMIT 100", "honeytoken_username": "backup_svc",
			},
		},
		{
			ID: uuid.NewString(), HoneypotID: hpSSH.ID,
			EventType: "ssh_connection", Level: LevelRecon,
			SourceIP: "198.51.100.34", Timestamp: now.Add(-30 * time.Minute),
			Details: map[string]any{"username": "root", "method": "none", "remote_version": "SSH-2.0-libssh_0.9.6"},
		},
	}

	m.settings = NotificationSettings{
		ID: uuid.NewString(), UserID: uuid.NewString(),
		TelegramEnabled: true, Level2Enabled: true, Level3Enabled: true,
	}
	m.user = User{
		ID: m.settings.UserID, Username: "operator", IsActive: true,
		CreatedAt: now.Add(-30 * 24 * time.Hour),
	}
}

func (m *MockClient) ListHoneypots(ctx context.Context) ([]Honeypot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hps := make([]Honeypot, 0, len(m.honeypots))
	for _, hp := range m.honeypots {
		hps = append(hps, hp)
	}
	sort.Slice(hps, func(i, j int) bool { return hps[i].CreatedAt.Before(hps[j].CreatedAt) })
	return hps, nil
}

func (m *MockClient) CreateHoneypot(ctx context.Context, req HoneypotCreate) (*Honeypot, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	hp := Honeypot{
		ID: uuid.NewString(), Name: req.Name, Description: req.Description,
		Type: req.Type, Port: req.Port, Address: req.Address, Status: "stopped",
		Config: req.Config, NotificationLevels: req.NotificationLevels,
		CreatedAt: time.Now(),
	}
	if hp.Config == nil {
		hp.Config = map[string]any{}
	}
	if hp.NotificationLevels == nil {
		hp.NotificationLevels = map[string]bool{"1": false, "2": true, "3": true}
	}
	m.honeypots[hp.ID] = hp
	return &hp, nil
}

func (m *MockClient) setStatus(id, status string, forced error) error {
	if forced != nil {
		return forced
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	hp, ok := m.honeypots[id]
	if !ok {
		return &Error{StatusCode: 404, Detail: fmt.Sprintf("honeypot %s not found", id)}
	}
	hp.Status = status
	now := time.Now()
	hp.UpdatedAt = &now
	m.honeypots[id] = hp
	return nil
}

func (m *MockClient) StartHoneypot(ctx context.Context, id string) error {
	return m.setStatus(id, "running", m.StartErr)
}

func (m *MockClient) StopHoneypot(ctx context.Context, id string) error {
	return m.setStatus(id, "stopped", m.StopErr)
}

func (m *MockClient) DeleteHoneypot(ctx context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.honeypots[id]; !ok {
		return &Error{StatusCode: 404, Detail: fmt.Sprintf("honeypot %s not found", id)}
	}
	delete(m.honeypots, id)
	return nil
}

func (m *MockClient) BulkDeleteHoneypots(ctx context.Context, ids []string) error {
	if err := ValidateIDs(ids); err != nil {
		return err
	}
	if m.BulkDeleteErr != nil {
		return m.BulkDeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Atomic: reject the whole batch before removing anything.
	for _, id := range ids {
		if _, ok := m.honeypots[id]; !ok {
			return &Error{StatusCode: 404, Detail: fmt.Sprintf("honeypot %s not found", id)}
		}
	}
	for _, id := range ids {
		delete(m.honeypots, id)
	}
	return nil
}

func (m *MockClient) ListHoneytokens(ctx context.Context, filter HoneytokenFilter) ([]Honeytoken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	toks := make([]Honeytoken, 0, len(m.honeytokens))
	for _, t := range m.honeytokens {
		if filter.ServiceType != "" && t.ServiceType != filter.ServiceType {
			continue
		}
		if filter.ServiceID != "" && t.ServiceID != filter.ServiceID {
			continue
		}
		if filter.UsedOnly && t.UsedAt == nil {
			continue
		}
		toks = append(toks, t)
	}
	sort.Slice(toks, func(i, j int) bool { return toks[i].GeneratedAt.Before(toks[j].GeneratedAt) })
	return toks, nil
}

func (m *MockClient) GenerateHoneytokens(ctx context.Context, req HoneytokenGenerate) ([]Honeytoken, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if m.GenerateErr != nil {
		return nil, m.GenerateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	count := req.Count
	if len(req.Items) > 0 {
		count = len(req.Items)
	}
	if count < 1 {
		return nil, &Error{StatusCode: 400, Detail: "Count must be at least 1"}
	}
	out := make([]Honeytoken, 0, count)
	for i := 0; i < count; i++ {
		t := Honeytoken{
			ID:          uuid.NewString(),
			ServiceType: req.ServiceType,
			ServiceID:   req.ServiceID,
			Username:    fmt.Sprintf("svc_%s", uuid.NewString()[:8]),
			Password:    uuid.NewString(),
			GeneratedAt: time.Now(),
		}
		if len(req.Items) > 0 {
			t.Username = req.Items[i].Username
			t.MetaData = req.Items[i].MetaData
		}
		m.honeytokens[t.ID] = t
		out = append(out, t)
	}
	return out, nil
}

func (m *MockClient) DeleteHoneytoken(ctx context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.honeytokens[id]; !ok {
		return &Error{StatusCode: 404, Detail: fmt.Sprintf("credential %s not found", id)}
	}
	delete(m.honeytokens, id)
	return nil
}

func (m *MockClient) BulkDeleteHoneytokens(ctx context.Context, ids []string) error {
	if err := ValidateIDs(ids); err != nil {
		return err
	}
	if m.BulkDeleteErr != nil {
		return m.BulkDeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if _, ok := m.honeytokens[id]; !ok {
			return &Error{StatusCode: 404, Detail: fmt.Sprintf("credential %s not found", id)}
		}
	}
	for _, id := range ids {
		delete(m.honeytokens, id)
	}
	return nil
}

func (m *MockClient) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	out := make([]Event, 0, len(m.events))
	for _, e := range m.events {
		if filter.IncidentID != "" && e.IncidentID != filter.IncidentID {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockClient) ListIncidents(ctx context.Context) ([]Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	incs := make([]Incident, 0, len(m.incidents))
	for _, inc := range m.incidents {
		incs = append(incs, inc)
	}
	sort.Slice(incs, func(i, j int) bool { return incs[i].LastSeen.After(incs[j].LastSeen) })
	return incs, nil
}

func (m *MockClient) GetNotificationSettings(ctx context.Context) (*NotificationSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.settings
	return &s, nil
}

func (m *MockClient) UpdateNotificationSettings(ctx context.Context, req NotificationSettingsUpdate) (*NotificationSettings, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.TelegramEnabled != nil {
		m.settings.TelegramEnabled = *req.TelegramEnabled
	}
	if req.TelegramBotToken != nil {
		m.settings.TelegramBotToken = *req.TelegramBotToken
	}
	if req.TelegramChatID != nil {
		m.settings.TelegramChatID = *req.TelegramChatID
	}
	if req.EmailEnabled != nil {
		m.settings.EmailEnabled = *req.EmailEnabled
	}
	if req.EmailAddress != nil {
		m.settings.EmailAddress = *req.EmailAddress
	}
	if req.Level1Enabled != nil {
		m.settings.Level1Enabled = *req.Level1Enabled
	}
	if req.Level2Enabled != nil {
		m.settings.Level2Enabled = *req.Level2Enabled
	}
	if req.Level3Enabled != nil {
		m.settings.Level3Enabled = *req.Level3Enabled
	}
	s := m.settings
	return &s, nil
}

func (m *MockClient) Me(ctx context.Context) (*User, error) {
	if m.MeErr != nil {
		return nil, m.MeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.user
	return &u, nil
}

// HoneypotIDs returns the current sensor ids, ordered by creation time.
// Test helper.
func (m *MockClient) HoneypotIDs() []string {
	hps, _ := m.ListHoneypots(context.Background())
	ids := make([]string, 0, len(hps))
	for _, hp := range hps {
		ids = append(ids, hp.ID)
	}
	return ids
}
