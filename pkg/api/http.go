package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPClient talks to the control plane REST API with bearer-token auth.
type HTTPClient struct {
	baseURL string
	token   string
	hc      *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

// detailBody is the error envelope the control plane uses for rejections.
type detailBody struct {
	Detail string `json:"detail"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var d detailBody
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(data, &d)
		return &Error{StatusCode: resp.StatusCode, Detail: d.Detail}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (c *HTTPClient) ListHoneypots(ctx context.Context) ([]Honeypot, error) {
	var hps []Honeypot
	if err := c.do(ctx, http.MethodGet, "/honeypots", nil, &hps); err != nil {
		return nil, err
	}
	return hps, nil
}

func (c *HTTPClient) CreateHoneypot(ctx context.Context, req HoneypotCreate) (*Honeypot, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	var hp Honeypot
	if err := c.do(ctx, http.MethodPost, "/honeypots", req, &hp); err != nil {
		return nil, err
	}
	return &hp, nil
}

func (c *HTTPClient) StartHoneypot(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/honeypots/"+id+"/start", nil, nil)
}

func (c *HTTPClient) StopHoneypot(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/honeypots/"+id+"/stop", nil, nil)
}

func (c *HTTPClient) DeleteHoneypot(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/honeypots/"+id, nil, nil)
}

func (c *HTTPClient) BulkDeleteHoneypots(ctx context.Context, ids []string) error {
	if err := ValidateIDs(ids); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/honeypots/bulk-delete", ids, nil)
}

// credentialList is the wire envelope for honeytoken listings.
type credentialList struct {
	Credentials []Honeytoken `json:"credentials"`
	Total       int          `json:"total"`
}

func (c *HTTPClient) ListHoneytokens(ctx context.Context, filter HoneytokenFilter) ([]Honeytoken, error) {
	q := url.Values{}
	if filter.ServiceType != "" {
		q.Set("service_type", filter.ServiceType)
	}
	if filter.ServiceID != "" {
		q.Set("service_id", filter.ServiceID)
	}
	if filter.UsedOnly {
		q.Set("used_only", "true")
	}
	path := "/credentials"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var list credentialList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Credentials, nil
}

func (c *HTTPClient) GenerateHoneytokens(ctx context.Context, req HoneytokenGenerate) ([]Honeytoken, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 && req.Count < 1 {
		return nil, fmt.Errorf("%w: count must be at least 1 when no explicit items are given", ErrValidation)
	}
	var list credentialList
	if err := c.do(ctx, http.MethodPost, "/credentials/generate", req, &list); err != nil {
		return nil, err
	}
	return list.Credentials, nil
}

func (c *HTTPClient) DeleteHoneytoken(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/credentials/"+id, nil, nil)
}

func (c *HTTPClient) BulkDeleteHoneytokens(ctx context.Context, ids []string) error {
	if err := ValidateIDs(ids); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/credentials/bulk-delete", ids, nil)
}

// eventList is the wire envelope for event listings.
type eventList struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
}

func (c *HTTPClient) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	q := url.Values{}
	if filter.IncidentID != "" {
		if err := ValidateID(filter.IncidentID); err != nil {
			return nil, err
		}
		q.Set("incident_id", filter.IncidentID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	q.Set("limit", strconv.Itoa(limit))
	var list eventList
	if err := c.do(ctx, http.MethodGet, "/events?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Events, nil
}

// incidentList is the wire envelope for incident listings.
type incidentList struct {
	Incidents []Incident `json:"incidents"`
	Total     int        `json:"total"`
}

func (c *HTTPClient) ListIncidents(ctx context.Context) ([]Incident, error) {
	var list incidentList
	if err := c.do(ctx, http.MethodGet, "/incidents", nil, &list); err != nil {
		return nil, err
	}
	return list.Incidents, nil
}

func (c *HTTPClient) GetNotificationSettings(ctx context.Context) (*NotificationSettings, error) {
	var s NotificationSettings
	if err := c.do(ctx, http.MethodGet, "/notifications/settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) UpdateNotificationSettings(ctx context.Context, req NotificationSettingsUpdate) (*NotificationSettings, error) {
	var s NotificationSettings
	if err := c.do(ctx, http.MethodPut, "/notifications/settings", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
